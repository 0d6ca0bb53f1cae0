// Package analysis holds the text analysis rules shared by the index and the
// enrichment pipeline: keyword tokenisation and stemming, filename
// fragmentation, entity detection and language detection.
//
// The tokenisation rule is fixed for the lifetime of an index. Changing it
// requires rebuilding the index.
package analysis
