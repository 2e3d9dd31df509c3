package users

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProfileRepository exposes persistence operations for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) (*Profile, error)
	Update(ctx context.Context, profile *Profile) (*Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
}

// NotFoundError is returned when a profile cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewProfileRepository creates a go-repository-bun repository for profiles.
func NewProfileRepository(db *bun.DB) repository.Repository[*Profile] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(p *Profile) string {
			return p.ID.String()
		},
	})
}
