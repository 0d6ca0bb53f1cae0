// Package converters renders normalized documents into the interchange
// formats mirrored to the output tree: structured markup (XML), record
// (JSON), tabular (CSV) and YAML.
//
// Codecs are pure and deterministic. Map keys and entities are emitted in
// sorted order, floats use the shortest 'g' representation, and the time
// a document was normalised is never written, so equal documents always
// produce identical bytes.
package converters
