package express

import (
	"strconv"

	"github.com/broady/tycon/tycongen/emit"
)

// Scope hands out binding names that are valid identifiers, not reserved,
// and distinct from every name in the scope and its parents.
type Scope struct {
	parent *Scope
	names  map[string]bool
}

// NewScope returns a child of parent (which may be nil) with reserved
// already taken.
func NewScope(parent *Scope, reserved ...string) *Scope {
	s := &Scope{parent: parent, names: make(map[string]bool)}
	for _, r := range reserved {
		s.names[r] = true
	}
	return s
}

// Declare binds a name derived from want and returns it. The result is
// want itself when possible, else want with a numeric suffix.
func (s *Scope) Declare(want string) string {
	base := emit.Sanitize(want)
	name := base
	for i := 2; s.taken(name); i++ {
		name = base + strconv.Itoa(i)
	}
	s.names[name] = true
	return name
}

func (s *Scope) taken(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.names[name] {
			return true
		}
	}
	return emit.IsReserved(name)
}
