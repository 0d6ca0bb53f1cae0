// Package memory provides the in-memory document index: an inverted
// keyword index, a filename fragment trie and a vector store.
//
// Updates to one content hash are serialised by a striped lock; updates to
// different hashes run in parallel. Records live in hash-sharded maps and
// postings in term-sharded maps, each guarded by its own RWMutex, so
// queries never wait on a global lock.
//
// A record is published by a single map store after its postings are in
// place, and retracted before its postings are removed. Queries score each
// candidate from the one record they loaded, so they never mix two
// versions of a document.
package memory
