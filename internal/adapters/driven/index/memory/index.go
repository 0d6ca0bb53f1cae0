package memory

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/docmirror/internal/analysis"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.DocumentIndex = (*Index)(nil)

// Index is a sharded in-memory DocumentIndex.
type Index struct {
	locks     [lockStripes]sync.Mutex
	records   [shardCount]recordShard
	postings  [shardCount]postingShard
	fragments [shardCount]fragmentShard

	count      atomic.Int64
	dimensions atomic.Int64
}

// New creates an empty index.
func New() *Index {
	x := &Index{}
	for i := range x.records {
		x.records[i].m = make(map[string]*record)
		x.postings[i].m = make(map[string]map[string]*termStats)
		x.fragments[i] = newFragmentShard()
	}
	return x
}

// Len returns the number of indexed documents.
func (x *Index) Len() int {
	return int(x.count.Load())
}

// Dimensions returns the vector dimension fixed by the first embedding.
func (x *Index) Dimensions() int {
	return int(x.dimensions.Load())
}

// Get returns the record for a hash.
func (x *Index) Get(hash string) (driven.IndexRecord, bool) {
	r := x.load(hash)
	if r == nil {
		return driven.IndexRecord{}, false
	}
	return driven.IndexRecord{Doc: r.doc, Paths: slices.Clone(r.paths), ModTime: r.modTime}, true
}

// Upsert publishes doc at its path, merging the path into the existing
// record for the hash.
func (x *Index) Upsert(in driven.IndexDocument) bool {
	if in.Doc == nil || in.Doc.Hash == "" {
		return false
	}
	hash := in.Doc.Hash

	mu := x.stripe(hash)
	mu.Lock()
	defer mu.Unlock()

	old := x.load(hash)
	next := &record{
		doc:     in.Doc,
		modTime: in.ModTime,
		vector:  x.acceptVector(hash, in.Doc.Embedding),
	}
	if old != nil {
		next.paths = old.paths
		if old.modTime.After(next.modTime) {
			next.modTime = old.modTime
		}
	}
	if in.Path != "" && !slices.Contains(next.paths, in.Path) {
		next.paths = append(slices.Clone(next.paths), in.Path)
		slices.Sort(next.paths)
	}

	if old != nil && sameRecord(old, next) {
		return false
	}

	if old != nil && old.doc.Text == next.doc.Text {
		next.terms = old.terms
	} else {
		next.terms = analyse(next.doc.Text)
	}
	next.fragments = fragmentSet(next.paths)

	x.publish(hash, old, next)
	return true
}

// Detach removes one path from a hash's record, dropping the record when
// no path remains.
func (x *Index) Detach(hash, path string) bool {
	mu := x.stripe(hash)
	mu.Lock()
	defer mu.Unlock()

	old := x.load(hash)
	if old == nil || !slices.Contains(old.paths, path) {
		return false
	}

	paths := slices.DeleteFunc(slices.Clone(old.paths), func(p string) bool { return p == path })
	if len(paths) == 0 {
		x.retract(hash, old)
		return true
	}

	next := *old
	next.paths = paths
	next.fragments = fragmentSet(paths)
	x.publish(hash, old, &next)
	return true
}

// Remove drops a document regardless of how many paths reference it.
func (x *Index) Remove(hash string) bool {
	mu := x.stripe(hash)
	mu.Lock()
	defer mu.Unlock()

	old := x.load(hash)
	if old == nil {
		return false
	}
	x.retract(hash, old)
	return true
}

// publish inserts the postings next needs, swaps it in, then removes the
// postings only old had. Callers hold the hash stripe.
func (x *Index) publish(hash string, old, next *record) {
	var oldTerms map[string]*termStats
	var oldFrags map[string]struct{}
	if old != nil {
		oldTerms, oldFrags = old.terms, old.fragments
	}

	if old == nil || !sameTerms(oldTerms, next.terms) {
		for term, st := range next.terms {
			x.addPosting(term, hash, st)
		}
	}
	for frag := range next.fragments {
		if _, ok := oldFrags[frag]; !ok {
			x.addFragment(frag, hash)
		}
	}

	x.store(hash, next)
	if old == nil {
		x.count.Add(1)
	}

	for term := range oldTerms {
		if _, ok := next.terms[term]; !ok {
			x.removePosting(term, hash)
		}
	}
	for frag := range oldFrags {
		if _, ok := next.fragments[frag]; !ok {
			x.removeFragment(frag, hash)
		}
	}
}

// retract unpublishes old, then removes its postings. Callers hold the
// hash stripe.
func (x *Index) retract(hash string, old *record) {
	x.store(hash, nil)
	x.count.Add(-1)

	for term := range old.terms {
		x.removePosting(term, hash)
	}
	for frag := range old.fragments {
		x.removeFragment(frag, hash)
	}
}

// acceptVector fixes the index dimension on the first vector and drops
// vectors of any other size.
func (x *Index) acceptVector(hash string, v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}
	dims := int64(len(v))
	if x.dimensions.CompareAndSwap(0, dims) || x.dimensions.Load() == dims {
		return v
	}
	logger.Warn("index: dropping %d-dimension vector for %s, index uses %d", len(v), hash, x.dimensions.Load())
	return nil
}

func analyse(text string) map[string]*termStats {
	terms := make(map[string]*termStats)
	for _, tok := range analysis.Tokens(text) {
		st := terms[tok.Term]
		if st == nil {
			st = &termStats{}
			terms[tok.Term] = st
		}
		st.tf++
		st.positions = append(st.positions, tok.Position)
	}
	return terms
}

func fragmentSet(paths []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, p := range paths {
		for _, f := range analysis.Fragments(p) {
			out[f] = struct{}{}
		}
	}
	return out
}

func sameTerms(a, b map[string]*termStats) bool {
	if len(a) != len(b) {
		return false
	}
	for k, st := range a {
		o, ok := b[k]
		if !ok || o != st {
			return false
		}
	}
	return true
}

// sameRecord reports whether publishing next would change nothing
// observable.
func sameRecord(old, next *record) bool {
	a, b := old.doc, next.doc
	return a.Text == b.Text &&
		a.Title == b.Title &&
		a.Summary == b.Summary &&
		a.Metadata.Language == b.Metadata.Language &&
		maps.Equal(a.Metadata.Extra, b.Metadata.Extra) &&
		old.modTime.Equal(next.modTime) &&
		slices.Equal(old.paths, next.paths) &&
		slices.Equal(old.vector, next.vector)
}
