// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Walker: Enumerates regular files under a root, cycle-safe
//   - Normaliser: Extracts one family of formats into a NormalizedDocument
//   - NormaliserRegistry: Resolves the content type and selects a Normaliser
//   - Converter: Renders documents into the interchange formats
//   - OutputTree: Materialises converted documents under the output directory
//   - DocumentStore: Document persistence keyed by content hash
//   - SnapshotStore: Per-root snapshot persistence
//   - DocumentIndex: Keyword, filename and semantic indexes
//   - TokenStore: Session token storage
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Without it, context search reports IndexUnavailable.
//   - SummaryService: Without it, documents carry no summary.
//   - OCRService: Without it, images and text-less PDF pages are unsupported.
//   - Watcher: Only needed for watch mode.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
