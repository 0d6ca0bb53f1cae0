package memory

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

const (
	lockStripes = 64
	shardCount  = 32
)

// termStats is one posting: the term frequency and positions of a term in
// one document.
type termStats struct {
	tf        int
	positions []int
}

// record is an immutable published version of a document.
type record struct {
	doc       *domain.NormalizedDocument
	paths     []string // sorted
	modTime   time.Time
	terms     map[string]*termStats
	fragments map[string]struct{}
	vector    []float32
}

type recordShard struct {
	mu sync.RWMutex
	m  map[string]*record
}

type postingShard struct {
	mu sync.RWMutex
	m  map[string]map[string]*termStats // term -> hash -> stats
}

func fnv32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func (x *Index) stripe(hash string) *sync.Mutex {
	return &x.locks[fnv32(hash)%lockStripes]
}

func (x *Index) recordShard(hash string) *recordShard {
	return &x.records[fnv32(hash)%shardCount]
}

func (x *Index) postingShard(term string) *postingShard {
	return &x.postings[fnv32(term)%shardCount]
}

func (x *Index) load(hash string) *record {
	s := x.recordShard(hash)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[hash]
}

func (x *Index) store(hash string, r *record) {
	s := x.recordShard(hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	if r == nil {
		delete(s.m, hash)
		return
	}
	s.m[hash] = r
}

func (x *Index) addPosting(term, hash string, st *termStats) {
	s := x.postingShard(term)
	s.mu.Lock()
	defer s.mu.Unlock()
	hashes := s.m[term]
	if hashes == nil {
		hashes = make(map[string]*termStats)
		s.m[term] = hashes
	}
	hashes[hash] = st
}

func (x *Index) removePosting(term, hash string) {
	s := x.postingShard(term)
	s.mu.Lock()
	defer s.mu.Unlock()
	hashes := s.m[term]
	delete(hashes, hash)
	if len(hashes) == 0 {
		delete(s.m, term)
	}
}

// postingHashes returns the hashes posted under term.
func (x *Index) postingHashes(term string) []string {
	s := x.postingShard(term)
	s.mu.RLock()
	defer s.mu.RUnlock()
	hashes := s.m[term]
	out := make([]string, 0, len(hashes))
	for h := range hashes {
		out = append(out, h)
	}
	return out
}
