package memory

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"

	"github.com/custodia-labs/docmirror/internal/analysis"
	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// Filename match scores.
const (
	scoreExact  = 3.0
	scorePrefix = 2.0
)

// KeywordSearch ranks documents by Σ (1 + ln tf) · ln(1 + N/df) over the
// distinct analysed query terms. Ties go to the most recently modified
// document, then the smaller hash.
func (x *Index) KeywordSearch(query string) []domain.SearchHit {
	terms := analysis.UniqueTerms(query)
	if len(terms) == 0 {
		return nil
	}

	// Load every candidate once so each is scored from a single version.
	recs := make(map[string]*record)
	for _, term := range terms {
		for _, h := range x.postingHashes(term) {
			if _, seen := recs[h]; seen {
				continue
			}
			if r := x.load(h); r != nil {
				recs[h] = r
			}
		}
	}
	if len(recs) == 0 {
		return nil
	}

	df := make(map[string]int, len(terms))
	for _, r := range recs {
		for _, term := range terms {
			if _, ok := r.terms[term]; ok {
				df[term]++
			}
		}
	}
	n := max(x.Len(), len(recs))

	hits := make([]domain.SearchHit, 0, len(recs))
	for h, r := range recs {
		var score float64
		for _, term := range terms {
			st, ok := r.terms[term]
			if !ok || st.tf == 0 {
				continue
			}
			score += (1 + math.Log(float64(st.tf))) * math.Log(1+float64(n)/float64(df[term]))
		}
		if score <= 0 {
			continue
		}
		hits = append(hits, hit(h, r, score))
	}

	slices.SortFunc(hits, func(a, b domain.SearchHit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}
		return strings.Compare(a.Hash, b.Hash)
	})
	return hits
}

// FilenameSearch scores each path of each candidate document: 3 for an
// exact fragment, 2 for a fragment prefix and 1/(1+d) for a fragment
// within edit distance max(1, len/4). A document is reported under its
// best path; ties go to the smaller path.
func (x *Index) FilenameSearch(query string) []domain.SearchHit {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	maxDist := max(1, utf8.RuneCountInString(q)/4)

	candidates := x.withPrefix(q)
	for h := range x.within(func(frag string) bool { return withinDistance(q, frag, maxDist) }) {
		candidates[h] = struct{}{}
	}

	hits := make([]domain.SearchHit, 0, len(candidates))
	for h := range candidates {
		r := x.load(h)
		if r == nil {
			continue
		}
		best := domain.SearchHit{}
		for _, p := range r.paths {
			s := pathScore(q, p, maxDist)
			if s > best.Score || (s == best.Score && s > 0 && p < best.Path) {
				best = domain.SearchHit{Hash: h, Path: p, Score: s, ModTime: r.modTime}
			}
		}
		if best.Score > 0 {
			hits = append(hits, best)
		}
	}

	slices.SortFunc(hits, func(a, b domain.SearchHit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Hash, b.Hash)
	})
	return hits
}

func pathScore(q, p string, maxDist int) float64 {
	var best float64
	for _, frag := range analysis.Fragments(p) {
		var s float64
		switch {
		case frag == q:
			s = scoreExact
		case strings.HasPrefix(frag, q):
			s = scorePrefix
		default:
			if d := levenshtein.Distance(q, frag, nil); d <= maxDist {
				s = 1 / (1 + float64(d))
			}
		}
		best = max(best, s)
	}
	return best
}

func withinDistance(q, frag string, maxDist int) bool {
	diff := utf8.RuneCountInString(q) - utf8.RuneCountInString(frag)
	if diff > maxDist || -diff > maxDist {
		return false
	}
	return levenshtein.Distance(q, frag, nil) <= maxDist
}

// VectorSearch ranks documents with an embedding by cosine similarity to
// vec. Ties go to the smaller hash.
func (x *Index) VectorSearch(vec []float32) ([]domain.SearchHit, error) {
	dims := x.Dimensions()
	if dims == 0 {
		return nil, domain.NewError(domain.KindIndexUnavailable, "no vectors indexed")
	}
	if len(vec) != dims {
		return nil, domain.NewError(domain.KindIndexUnavailable, "query has %d dimensions, index has %d", len(vec), dims)
	}
	qnorm := norm(vec)
	if qnorm == 0 {
		return nil, nil
	}

	var hits []domain.SearchHit
	for i := range x.records {
		s := &x.records[i]
		s.mu.RLock()
		for h, r := range s.m {
			if len(r.vector) != dims {
				continue
			}
			rnorm := norm(r.vector)
			if rnorm == 0 {
				continue
			}
			hits = append(hits, hit(h, r, dot(vec, r.vector)/(qnorm*rnorm)))
		}
		s.mu.RUnlock()
	}

	slices.SortFunc(hits, func(a, b domain.SearchHit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Hash, b.Hash)
	})
	return hits, nil
}

func hit(hash string, r *record, score float64) domain.SearchHit {
	h := domain.SearchHit{Hash: hash, Score: score, ModTime: r.modTime}
	if len(r.paths) > 0 {
		h.Path = r.paths[0]
	}
	return h
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
