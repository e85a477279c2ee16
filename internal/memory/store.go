package memory

import "sync"

// Store caches one Unit per user for the life of the process. A unit is
// built once, on first request, and never invalidated afterwards, so a
// user's profile reflects whichever trajectory was seen first.
type Store struct {
	mu    sync.Mutex
	units map[string]*Unit
}

func NewStore() *Store {
	return &Store{units: make(map[string]*Unit)}
}

// GetOrCreate returns the user's cached unit, invoking build only when the
// user has none yet. Repeated calls return the identical instance.
func (s *Store) GetOrCreate(userID string, build func() *Unit) *Unit {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.units[userID]; ok {
		return u
	}
	u := build()
	s.units[userID] = u
	return u
}

// Len reports how many users currently have cached units.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.units)
}
