package memory

import (
	"codeberg.org/miketth/kanatafocus/pkg/allowlist"
	"sync"
)

// Store is an in-memory allow-list. A Store with no entries added still
// resolves to an empty, non-nil set, which restricts everything.
type Store struct {
	names map[string]struct{}
	lock  sync.Mutex
}

func NewStore(names ...string) *Store {
	s := &Store{names: make(map[string]struct{})}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

func (s *Store) Resolve() (allowlist.Set, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	set := make(allowlist.Set, len(s.names))
	for n := range s.names {
		set[n] = struct{}{}
	}
	return set, nil
}

func (s *Store) Add(name string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.names[name] = struct{}{}
}

func (s *Store) Remove(name string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.names, name)
}
