package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

type contextKey struct{}

// WithAccount binds accountID to ctx.
func WithAccount(ctx context.Context, accountID uuid.UUID) context.Context {
	if accountID == uuid.Nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, accountID)
}

// FromContext returns the account bound by the middleware, if any.
func FromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	accountID, ok := ctx.Value(contextKey{}).(uuid.UUID)
	if !ok || accountID == uuid.Nil {
		return uuid.Nil, false
	}
	return accountID, true
}

// Provider adapts FromContext to interfaces.IdentityProvider.
type Provider struct{}

var _ interfaces.IdentityProvider = Provider{}

// CurrentIdentity implements interfaces.IdentityProvider.
func (Provider) CurrentIdentity(ctx context.Context) (uuid.UUID, bool) {
	return FromContext(ctx)
}
