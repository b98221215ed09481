package dedupe

// Option applies a configuration option to the OrderedSet.
type Option func(*OrderedSet)

// WithCapacity preallocates room for n ids.
func WithCapacity(n int) Option {
	return func(s *OrderedSet) {
		if n > 0 {
			s.seen = make(map[string]int, n)
			s.order = make([]string, 0, n)
		}
	}
}
