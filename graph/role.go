package graph

import (
	"github.com/pkg/errors"
)

// Role is the part a vertex plays in an edge.
type Role byte

const (
	// Source is the vertex an edge leaves.
	Source Role = iota
	// Target is the vertex an edge enters.
	Target
	// Any is either part.
	Any
	// Unknown is reserved and rejected by queries.
	Unknown
)

// Invert maps Source to Target and Any to Unknown, and back. A value outside
// the four roles is returned unchanged, every operation rejects it.
func Invert(r Role) Role {
	switch r {
	case Source:
		return Target
	case Target:
		return Source
	case Any:
		return Unknown
	case Unknown:
		return Any
	}
	return r
}

var roleNames = [...]st{"source", "target", "any", "unknown"}

func (r Role) String() string {
	if r > Unknown {
		return "invalid"
	}
	return roleNames[r]
}

// ParseRole reads the name of a role.
func ParseRole(s st) (r Role, err er) {
	for i, n := range roleNames {
		if n == s {
			return Role(i), nil
		}
	}
	err = errors.Errorf("unknown role '%s'", s)
	return
}

// sides lists the records a query of role r reads, in output order.
func (r Role) sides() (roles []Role, err er) {
	switch r {
	case Source:
		return []Role{Source}, nil
	case Target:
		return []Role{Target}, nil
	case Any:
		return []Role{Source, Target}, nil
	}
	err = errors.Wrapf(ErrUnknownRole, "role %s", r)
	return
}
