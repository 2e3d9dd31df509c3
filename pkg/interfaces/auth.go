package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/wynotes/go-notes/internal/domain"
)

// UserDirectory resolves the current role and status of an account. Lookup
// returns (nil, nil) when the account has no profile row yet.
type UserDirectory interface {
	Lookup(ctx context.Context, accountID uuid.UUID) (*domain.RoleInfo, error)
}

// IdentityProvider exposes the authenticated account bound to a request
// context by the session layer.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (uuid.UUID, bool)
}
