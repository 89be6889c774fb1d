package model

import "fmt"

// Role is the closed set of roles used both for the account-level role
// carried in access tokens and for organization memberships. Authorization
// checks operate on this enumeration, never on raw integers; anything
// outside the set is denied.
type Role int

const (
	RoleOwner Role = iota + 1
	RoleAdmin
	RoleMember
)

// Valid reports whether r is a member of the enumeration.
func (r Role) Valid() bool {
	return r >= RoleOwner && r <= RoleMember
}

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleAdmin:
		return "admin"
	case RoleMember:
		return "member"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole maps a wire name back to a Role. Unknown names return an
// invalid zero Role and an error.
func ParseRole(s string) (Role, error) {
	switch s {
	case "owner":
		return RoleOwner, nil
	case "admin":
		return RoleAdmin, nil
	case "member":
		return RoleMember, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// AtLeast reports whether r grants the privileges of want. Owner outranks
// admin, admin outranks member.
func (r Role) AtLeast(want Role) bool {
	if !r.Valid() || !want.Valid() {
		return false
	}
	return r <= want
}
