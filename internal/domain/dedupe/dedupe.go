// Package dedupe provides an insertion-ordered set used to track distinct ids.
package dedupe

// OrderedSet records string ids once each, remembering the order in which they
// were first seen. It is not safe for concurrent use.
type OrderedSet struct {
	seen  map[string]int // id -> position in order
	order []string
}

// NewOrderedSet creates an empty set with configuration options.
func NewOrderedSet(opts ...Option) *OrderedSet {
	s := &OrderedSet{}

	for _, opt := range opts {
		opt(s)
	}

	if s.seen == nil {
		s.seen = make(map[string]int)
	}
	return s
}

// SeenAndRecord reports whether id was already present and records it if not.
// Returns true if id was already seen, false if it was newly recorded.
func (s *OrderedSet) SeenAndRecord(id string) bool {
	if _, ok := s.seen[id]; ok {
		return true
	}
	s.seen[id] = len(s.order)
	s.order = append(s.order, id)
	return false
}

// Contains reports whether id has been recorded.
func (s *OrderedSet) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Index returns the first-seen position of id, or -1.
func (s *OrderedSet) Index(id string) int {
	if i, ok := s.seen[id]; ok {
		return i
	}
	return -1
}

// Len returns the number of distinct ids recorded.
func (s *OrderedSet) Len() int {
	return len(s.order)
}

// Items returns a copy of the ids in first-seen order.
func (s *OrderedSet) Items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
