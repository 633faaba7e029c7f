package scan

import "sync"

// Selection is an insertion-ordered, duplicate-free set of body indices that is safe
// for concurrent use.
type Selection struct {
	mu    sync.Mutex
	items []int
	seen  map[int]struct{}
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{seen: make(map[int]struct{})}
}

// Add appends i unless it is already present. It reports whether i was added.
func (s *Selection) Add(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[i]; ok {
		return false
	}
	s.seen[i] = struct{}{}
	s.items = append(s.items, i)
	return true
}

// Contains reports whether i has been added.
func (s *Selection) Contains(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[i]
	return ok
}

// Len returns the number of selected indices.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns a copy of the indices in insertion order.
func (s *Selection) Items() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.items))
	copy(out, s.items)
	return out
}
