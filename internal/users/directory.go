package users

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/wynotes/go-notes/internal/domain"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

// Directory resolves role information from the profile repository.
type Directory struct {
	repo ProfileRepository
}

var _ interfaces.UserDirectory = (*Directory)(nil)

// NewDirectory wraps repo as a UserDirectory.
func NewDirectory(repo ProfileRepository) *Directory {
	return &Directory{repo: repo}
}

// Lookup returns (nil, nil) when the account has no profile yet.
func (d *Directory) Lookup(ctx context.Context, accountID uuid.UUID) (*domain.RoleInfo, error) {
	profile, err := d.repo.GetByID(ctx, accountID)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}
	info := profile.RoleInfo()
	return &info, nil
}
