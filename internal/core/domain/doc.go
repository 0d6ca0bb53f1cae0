// Package domain defines the core business entities for docmirror.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceEntry / Snapshot: the observed state of a source tree
//   - Changeset: what one synchronisation pass added, modified or removed
//   - NormalizedDocument: the canonical record produced by normalisation
//   - RawDocument: opaque bytes handed to a normaliser
//   - ConversionJob: an interactive request to export a document
//   - SessionToken: an opaque collaborative-access credential
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
