// Package sequence tracks per-entity production counters.
//
// Each entity key owns an independent counter that starts at zero and
// advances by exactly one on every production of that entity. Counters are
// never removed; a global reset rewinds every tracked counter to zero
// while keeping the set of known keys intact.
package sequence

import "sync"

// Store maps entity keys to monotonically increasing counters.
//
// The zero value is not usable; construct with NewStore. All methods are
// safe for concurrent use, though sequence numbers are only meaningful in
// call order when productions of the same key do not overlap.
type Store struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{counters: make(map[string]int)}
}

// Next returns the current counter value for key and advances the stored
// counter by one. Unseen keys start at zero.
func (s *Store) Next(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.counters[key]
	s.counters[key] = n + 1
	return n
}

// Peek returns the value the next call to Next would yield, without
// advancing the counter.
func (s *Store) Peek(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key]
}

// Track seeds key at zero so it participates in ResetAll even before any
// production occurs. Tracking an already-known key is a no-op.
func (s *Store) Track(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.counters[key]; !ok {
		s.counters[key] = 0
	}
}

// ResetAll rewinds every tracked counter to zero. Keys stay known; only a
// later Next call advances them again.
func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.counters {
		s.counters[k] = 0
	}
}
