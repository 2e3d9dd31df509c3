package domain

import internaldomain "github.com/wynotes/go-notes/internal/domain"

// Role is an account's privilege tier.
type Role = internaldomain.Role

// AccountStatus is the vetting state of an account.
type AccountStatus = internaldomain.AccountStatus

// RoleInfo pairs an account's role with its status.
type RoleInfo = internaldomain.RoleInfo

const (
	// RoleUser is a signed-in reader without backend access.
	RoleUser = internaldomain.RoleUser
	// RoleCreator may author content once vetted.
	RoleCreator = internaldomain.RoleCreator
	// RoleAdmin manages accounts and all content.
	RoleAdmin = internaldomain.RoleAdmin
	// RoleSuperAdmin manages roles.
	RoleSuperAdmin = internaldomain.RoleSuperAdmin
)

const (
	// StatusPending marks an account awaiting approval.
	StatusPending = internaldomain.StatusPending
	// StatusActive marks a vetted account.
	StatusActive = internaldomain.StatusActive
	// StatusSuspended marks an account frozen by an administrator.
	StatusSuspended = internaldomain.StatusSuspended
)

// ParseRole converts a role name into a Role.
func ParseRole(value string) (Role, error) {
	return internaldomain.ParseRole(value)
}

// ParseStatus converts a status name into an AccountStatus.
func ParseStatus(value string) (AccountStatus, error) {
	return internaldomain.ParseStatus(value)
}
