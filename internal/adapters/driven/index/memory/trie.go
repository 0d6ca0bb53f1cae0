package memory

import (
	"sync"
	"unicode/utf8"
)

type trieNode struct {
	children map[rune]*trieNode
	terminal bool
}

// fragmentShard holds the filename fragments starting with runes that
// hash to it: a trie for prefix lookup and a map of fragment to hashes.
type fragmentShard struct {
	mu    sync.RWMutex
	root  *trieNode
	index map[string]map[string]struct{}
}

func newFragmentShard() fragmentShard {
	return fragmentShard{root: &trieNode{}, index: make(map[string]map[string]struct{})}
}

func (x *Index) fragmentShard(fragment string) *fragmentShard {
	r, _ := utf8.DecodeRuneInString(fragment)
	return &x.fragments[uint32(r)%shardCount]
}

func (x *Index) addFragment(fragment, hash string) {
	s := x.fragmentShard(fragment)
	s.mu.Lock()
	defer s.mu.Unlock()

	hashes := s.index[fragment]
	if hashes == nil {
		hashes = make(map[string]struct{})
		s.index[fragment] = hashes
		s.insert(fragment)
	}
	hashes[hash] = struct{}{}
}

func (x *Index) removeFragment(fragment, hash string) {
	s := x.fragmentShard(fragment)
	s.mu.Lock()
	defer s.mu.Unlock()

	hashes := s.index[fragment]
	if hashes == nil {
		return
	}
	delete(hashes, hash)
	if len(hashes) == 0 {
		delete(s.index, fragment)
		s.delete(fragment)
	}
}

func (s *fragmentShard) insert(fragment string) {
	n := s.root
	for _, r := range fragment {
		child := n.children[r]
		if child == nil {
			if n.children == nil {
				n.children = make(map[rune]*trieNode)
			}
			child = &trieNode{}
			n.children[r] = child
		}
		n = child
	}
	n.terminal = true
}

// delete unmarks fragment and prunes branches left empty.
func (s *fragmentShard) delete(fragment string) {
	runes := []rune(fragment)
	path := make([]*trieNode, 0, len(runes)+1)
	n := s.root
	path = append(path, n)
	for _, r := range runes {
		n = n.children[r]
		if n == nil {
			return
		}
		path = append(path, n)
	}
	n.terminal = false
	for i := len(runes) - 1; i >= 0; i-- {
		child := path[i+1]
		if child.terminal || len(child.children) > 0 {
			return
		}
		delete(path[i].children, runes[i])
	}
}

// withPrefix returns the hashes of every fragment starting with prefix.
func (x *Index) withPrefix(prefix string) map[string]struct{} {
	s := x.fragmentShard(prefix)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]struct{})
	n := s.root
	for _, r := range prefix {
		n = n.children[r]
		if n == nil {
			return out
		}
	}
	var walk func(n *trieNode, acc []rune)
	walk = func(n *trieNode, acc []rune) {
		if n.terminal {
			for h := range s.index[string(acc)] {
				out[h] = struct{}{}
			}
		}
		for r, child := range n.children {
			walk(child, append(acc, r))
		}
	}
	walk(n, []rune(prefix))
	return out
}

// within returns the hashes of every fragment accepted by match.
func (x *Index) within(match func(fragment string) bool) map[string]struct{} {
	out := make(map[string]struct{})
	for i := range x.fragments {
		s := &x.fragments[i]
		s.mu.RLock()
		for frag, hashes := range s.index {
			if !match(frag) {
				continue
			}
			for h := range hashes {
				out[h] = struct{}{}
			}
		}
		s.mu.RUnlock()
	}
	return out
}
