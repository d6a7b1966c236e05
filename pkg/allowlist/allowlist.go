package allowlist

// Set is an immutable set of identifiers. A nil Set means no restriction is
// configured.
type Set map[string]struct{}

func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports membership. A nil Set contains nothing.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Provider resolves the current allow-list. Implementations re-read their
// source on every call so that edits apply without a restart.
type Provider interface {
	Resolve() (Set, error)
}

// Unrestricted is the policy used when nothing is configured.
type Unrestricted struct{}

func (Unrestricted) Resolve() (Set, error) {
	return nil, nil
}
