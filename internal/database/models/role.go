package models

import "database/sql/driver"

// Role is a member's rank inside one organization. Variants are declared in
// ascending order of privilege, so numeric comparison is rank comparison.
type Role uint8

const (
	RoleMember Role = iota
	RoleManager
	RoleAdmin
	RoleOwner
)

var roleNames = []string{"member", "manager", "admin", "owner"}

// Roles lists every role from least to most privileged.
func Roles() []Role {
	return []Role{RoleMember, RoleManager, RoleAdmin, RoleOwner}
}

func ParseRole(s string) (Role, error) {
	i, err := lookupName("role", roleNames, s)
	return Role(i), err
}

func (r Role) String() string { return nameOf(roleNames, int(r)) }

func (r Role) Valid() bool { return int(r) < len(roleNames) }

// Rank is the role's index in the privilege order (member=0 .. owner=3).
func (r Role) Rank() int { return int(r) }

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (r Role) Value() (driver.Value, error) { return r.String(), nil }

func (r *Role) Scan(value interface{}) error {
	s, err := scanName("role", value)
	if err != nil {
		return err
	}
	return r.UnmarshalText([]byte(s))
}
