package domain

// RawDocument represents opaque bytes read from a source tree.
// It is the walker's output before normalisation.
type RawDocument struct {
	// URI is the source location, relative to the synchronised root.
	URI string

	// DeclaredMIME is the advisory content type (derived from the file
	// extension). Content sniffing overrides it on mismatch.
	DeclaredMIME string

	// Content is the raw bytes.
	Content []byte

	// Hash is the content hash of Content, when already computed.
	Hash string

	// Metadata contains walker-specific key-value pairs.
	Metadata map[string]string
}
