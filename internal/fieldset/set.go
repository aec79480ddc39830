// Package fieldset provides a concurrency-safe set of field IDs used to
// accumulate scan results across parallel document workers.
package fieldset

import (
	"sort"
	"sync"
)

// Set is a mutex-guarded set of field IDs. The zero value is not usable;
// construct with New.
type Set struct {
	mu sync.Mutex
	m  map[string]struct{}
}

// New returns an empty set.
func New() *Set {
	return &Set{m: make(map[string]struct{})}
}

// Insert adds id to the set.
func (s *Set) Insert(id string) {
	s.mu.Lock()
	s.m[id] = struct{}{}
	s.mu.Unlock()
}

// InsertAll adds every id to the set under a single lock acquisition.
func (s *Set) InsertAll(ids []string) {
	s.mu.Lock()
	for _, id := range ids {
		s.m[id] = struct{}{}
	}
	s.mu.Unlock()
}

// Remove deletes id from the set if present.
func (s *Set) Remove(id string) {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	_, ok := s.m[id]
	s.mu.Unlock()
	return ok
}

// Len returns the number of IDs in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	n := len(s.m)
	s.mu.Unlock()
	return n
}

// Values returns the IDs in sorted order.
func (s *Set) Values() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.m))
	for id := range s.m {
		out = append(out, id)
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out
}

// Diff returns the sorted IDs present in s but absent from other.
func (s *Set) Diff(other *Set) []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.m))
	for id := range s.m {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	out := ids[:0]
	for _, id := range ids {
		if !other.Contains(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
