package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRole is returned when a role string does not name a known tier.
var ErrInvalidRole = errors.New("domain: invalid role")

// Role is an account's privilege tier. Values are ordered so that comparing
// two roles is a single integer comparison.
type Role uint8

const (
	RoleUser Role = iota
	RoleCreator
	RoleAdmin
	RoleSuperAdmin
)

var roleNames = [...]string{
	RoleUser:       "user",
	RoleCreator:    "creator",
	RoleAdmin:      "admin",
	RoleSuperAdmin: "super_admin",
}

// Roles lists every role from least to most privileged.
func Roles() []Role {
	return []Role{RoleUser, RoleCreator, RoleAdmin, RoleSuperAdmin}
}

// ParseRole converts a stored or submitted role name into a Role.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for idx, name := range roleNames {
		if name == normalized {
			return Role(idx), nil
		}
	}
	return RoleUser, fmt.Errorf("%w: %q", ErrInvalidRole, value)
}

// Valid reports whether r is one of the declared tiers.
func (r Role) Valid() bool {
	return int(r) < len(roleNames)
}

// Level returns the integer privilege level of the role.
func (r Role) Level() int {
	return int(r)
}

// AtLeast reports whether r grants at least the privileges of other.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("role(%d)", uint8(r))
	}
	return roleNames[r]
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role by name so rows stay readable.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}
	return r.String(), nil
}

// Scan reads a role name; NULL maps to RoleUser.
func (r *Role) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*r = RoleUser
		return nil
	case string:
		return r.UnmarshalText([]byte(value))
	case []byte:
		return r.UnmarshalText(value)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidRole, src)
	}
}
