package driven

import "github.com/custodia-labs/docmirror/internal/core/domain"

// Codec renders documents into one interchange format and reads them back.
// Encoding is deterministic: equal documents produce identical bytes.
type Codec interface {
	// Format returns the canonical format this codec produces.
	Format() domain.Format

	// Extension returns the file extension for artifacts, without a dot.
	Extension() string

	// Encode renders a document.
	Encode(doc *domain.NormalizedDocument) ([]byte, error)

	// Decode parses bytes produced by Encode.
	Decode(data []byte) (*domain.NormalizedDocument, error)
}

// Converter dispatches conversions to the codec for each format.
type Converter interface {
	// Convert renders a document into the target format.
	// Unknown formats fail with UnsupportedTargetFormat.
	Convert(doc *domain.NormalizedDocument, format domain.Format) ([]byte, error)

	// Decode parses data previously produced for format.
	Decode(data []byte, format domain.Format) (*domain.NormalizedDocument, error)

	// Extension returns the artifact file extension for format.
	Extension(format domain.Format) (string, error)

	// Formats returns the registered formats.
	Formats() []domain.Format
}

// OutputTree owns the mirrored artifacts under the output directory.
// An artifact for source path "a/b.txt" and extension "json" lives at
// "<root>/a/b.txt.json".
type OutputTree interface {
	// Write atomically replaces the artifact and returns its absolute path.
	Write(relPath, ext string, data []byte) (string, error)

	// Remove deletes the artifact. Removing an absent artifact is a no-op.
	Remove(relPath, ext string) error

	// Path returns where the artifact for relPath would live.
	Path(relPath, ext string) string

	// Root returns the output directory.
	Root() string
}

// OutputTreeOpener opens the output tree rooted at dir, creating it when
// missing.
type OutputTreeOpener func(dir string) (OutputTree, error)
