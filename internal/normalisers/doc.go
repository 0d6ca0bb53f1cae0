// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// Normalisers are registered with the Registry at startup. The Registry
// resolves the content type of each raw document, applies the extraction
// deadline and runs the enrichment pipeline.
package normalisers
