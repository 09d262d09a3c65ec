// Package orderedset is a membership set with O(1) lookup that enumerates
// in insertion order.
package orderedset

import "sort"

type Set[K comparable] struct {
	seq  map[K]uint64
	next uint64
}

func New[K comparable]() *Set[K] {
	return &Set[K]{seq: map[K]uint64{}}
}

// Add inserts k at the end; re-adding a member keeps its position.
// It reports whether k was inserted.
func (s *Set[K]) Add(k K) bool {
	if _, ok := s.seq[k]; ok {
		return false
	}
	s.next++
	s.seq[k] = s.next
	return true
}

// Remove deletes k and returns its position token for Restore
func (s *Set[K]) Remove(k K) (uint64, bool) {
	pos, ok := s.seq[k]
	if ok {
		delete(s.seq, k)
	}
	return pos, ok
}

// Restore puts k back at the position returned by Remove
func (s *Set[K]) Restore(k K, pos uint64) {
	s.seq[k] = pos
}

func (s *Set[K]) Has(k K) bool {
	_, ok := s.seq[k]
	return ok
}

func (s *Set[K]) Len() int {
	return len(s.seq)
}

// Items returns the members in insertion order
func (s *Set[K]) Items() []K {
	res := make([]K, 0, len(s.seq))
	for k := range s.seq {
		res = append(res, k)
	}
	sort.Slice(res, func(i, j int) bool {
		return s.seq[res[i]] < s.seq[res[j]]
	})
	return res
}
