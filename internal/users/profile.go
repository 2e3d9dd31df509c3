package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/wynotes/go-notes/internal/domain"
)

// Profile is the per-account row carrying display data plus the role and
// status the access gate reads.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID          uuid.UUID            `bun:"id,pk,type:uuid" json:"user_id"`
	DisplayName string               `bun:"display_name,notnull" json:"display_name"`
	AvatarURL   string               `bun:"avatar_url" json:"avatar_url,omitempty"`
	Role        domain.Role          `bun:"role,notnull,type:varchar(32)" json:"role"`
	Status      domain.AccountStatus `bun:"status,notnull,type:varchar(32)" json:"status"`
	CreatedAt   time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// RoleInfo returns the role and status pair of the profile.
func (p *Profile) RoleInfo() domain.RoleInfo {
	if p == nil {
		return domain.DefaultRoleInfo()
	}
	return domain.RoleInfo{Role: p.Role, Status: p.Status}
}

func cloneProfile(p *Profile) *Profile {
	if p == nil {
		return nil
	}
	cloned := *p
	return &cloned
}
