package invmap

// Role identifies the structural position of a particle within a term.
// Two-particle terms use I and J, three-particle terms add K, and
// four-particle terms use all four.
type Role int

const (
	RoleI Role = iota
	RoleJ
	RoleK
	RoleL

	NumRoles = 4
)

func (r Role) String() string {
	switch r {
	case RoleI:
		return "I"
	case RoleJ:
		return "J"
	case RoleK:
		return "K"
	case RoleL:
		return "L"
	}
	return "?"
}

// Ref records that a term slot references a particle in some role.
type Ref struct {
	Particle int
	Slot     int32
}
