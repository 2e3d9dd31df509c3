package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStatus is returned when an account status string is unknown.
var ErrInvalidStatus = errors.New("domain: invalid account status")

// AccountStatus represents the vetting state of an account.
type AccountStatus uint8

const (
	StatusPending AccountStatus = iota
	StatusActive
	StatusSuspended
)

var statusNames = [...]string{
	StatusPending:   "pending",
	StatusActive:    "active",
	StatusSuspended: "suspended",
}

// ParseStatus converts a stored or submitted status name into an AccountStatus.
func ParseStatus(value string) (AccountStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for idx, name := range statusNames {
		if name == normalized {
			return AccountStatus(idx), nil
		}
	}
	return StatusPending, fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

func (s AccountStatus) Valid() bool {
	return int(s) < len(statusNames)
}

func (s AccountStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("status(%d)", uint8(s))
	}
	return statusNames[s]
}

func (s AccountStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *AccountStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s AccountStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}
	return s.String(), nil
}

// Scan reads a status name; NULL maps to StatusPending.
func (s *AccountStatus) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*s = StatusPending
		return nil
	case string:
		return s.UnmarshalText([]byte(value))
	case []byte:
		return s.UnmarshalText(value)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidStatus, src)
	}
}

// RoleInfo pairs an account's role with its status.
type RoleInfo struct {
	Role   Role          `json:"role"`
	Status AccountStatus `json:"status"`
}

// DefaultRoleInfo is what an account without a profile row is treated as.
func DefaultRoleInfo() RoleInfo {
	return RoleInfo{Role: RoleUser, Status: StatusPending}
}

// Vetted reports whether the account has been approved and not suspended.
func (i RoleInfo) Vetted() bool {
	return i.Status == StatusActive
}
