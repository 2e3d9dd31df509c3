package users

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunProfileRepository implements ProfileRepository on top of go-repository-bun.
type BunProfileRepository struct {
	repo repository.Repository[*Profile]
}

var _ ProfileRepository = (*BunProfileRepository)(nil)

// NewBunProfileRepository creates a profile repository backed by db.
func NewBunProfileRepository(db *bun.DB) *BunProfileRepository {
	return &BunProfileRepository{repo: NewProfileRepository(db)}
}

func (r *BunProfileRepository) Create(ctx context.Context, profile *Profile) (*Profile, error) {
	record, err := r.repo.Create(ctx, profile)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunProfileRepository) Update(ctx context.Context, profile *Profile) (*Profile, error) {
	updated, err := r.repo.Update(ctx, profile,
		repository.UpdateByID(profile.ID.String()),
		repository.UpdateColumns(
			"display_name",
			"avatar_url",
			"role",
			"status",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, profile.ID.String())
	}
	return updated, nil
}

func (r *BunProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

// List returns every profile, newest first.
func (r *BunProfileRepository) List(ctx context.Context) ([]*Profile, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at DESC").OrderExpr("?TableAlias.id ASC")
	}))
	return records, err
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: "profile", Key: key}
	}
	return fmt.Errorf("profile repository error: %w", err)
}
