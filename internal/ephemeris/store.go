package ephemeris

import (
	"sync/atomic"
	"time"
)

// Store provides thread-safe access to the current element set. The set is
// replaced wholesale and never partially mutated, so readers holding an old
// pointer keep a consistent pair of lines for in-progress predictions.
type Store struct {
	current atomic.Pointer[ElementSet]
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current element set, or nil if none has been loaded.
func (s *Store) Get() *ElementSet {
	return s.current.Load()
}

// Set atomically replaces the current element set.
func (s *Store) Set(es *ElementSet) {
	s.current.Store(es)
}

// AgeSeconds returns the age of the current set in seconds, or -1 if none
// is loaded.
func (s *Store) AgeSeconds() float64 {
	es := s.current.Load()
	if es == nil {
		return -1
	}
	return time.Since(es.FetchedAt).Seconds()
}
