package access

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"github.com/wynotes/go-notes/internal/domain"
	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

const (
	LoginPath   = "/login"
	PendingPath = "/admin/pending"
)

// Identity is the explicit per-call context handed to every gate check.
// ReturnTo is the path the caller was trying to reach.
type Identity struct {
	AccountID uuid.UUID
	ReturnTo  string
}

// Account is the signed-in account resolved by RequireSignedIn.
type Account struct {
	ID uuid.UUID
}

// Gate evaluates gate checks against a UserDirectory. It holds no per-request
// state and never caches lookups.
type Gate struct {
	directory interfaces.UserDirectory
	logger    interfaces.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger overrides the gate logger.
func WithLogger(logger interfaces.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate builds a gate backed by directory.
func NewGate(directory interfaces.UserDirectory, opts ...GateOption) *Gate {
	g := &Gate{
		directory: directory,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// LoginLocation builds the login redirect for returnTo.
func LoginLocation(returnTo string) string {
	if returnTo == "" {
		returnTo = "/"
	}
	return LoginPath + "?returnTo=" + url.QueryEscape(returnTo)
}

// RequireSignedIn fails with an unauthenticated redirect when no identity is
// present.
func (g *Gate) RequireSignedIn(_ context.Context, id Identity) (Account, error) {
	if id.AccountID == uuid.Nil {
		return Account{}, redirectTo(KindUnauthenticated, LoginLocation(id.ReturnTo), "sign in required")
	}
	return Account{ID: id.AccountID}, nil
}

// RequireActiveRole resolves the caller's role and status and redirects to
// the pending page unless the account is active with at least creator tier.
// Accounts without a directory row are treated as pending users.
func (g *Gate) RequireActiveRole(ctx context.Context, id Identity) (domain.RoleInfo, error) {
	account, err := g.RequireSignedIn(ctx, id)
	if err != nil {
		return domain.RoleInfo{}, err
	}

	info := g.lookup(ctx, account.ID)
	if !info.Vetted() || !CanAccessAdmin(info.Role) {
		g.logger.Debug("access.unvetted", "account_id", account.ID.String(), "role", info.Role.String(), "status", info.Status.String())
		return info, redirectTo(KindUnvetted, PendingPath, "account awaiting approval")
	}
	return info, nil
}

// RequireAdmin requires an active admin or super admin.
func (g *Gate) RequireAdmin(ctx context.Context, id Identity) (domain.RoleInfo, error) {
	info, err := g.RequireActiveRole(ctx, id)
	if err != nil {
		return info, err
	}
	if !info.Role.AtLeast(domain.RoleAdmin) {
		return info, deny("admin role required")
	}
	return info, nil
}

// RequireSuperAdmin requires an active super admin.
func (g *Gate) RequireSuperAdmin(ctx context.Context, id Identity) (domain.RoleInfo, error) {
	info, err := g.RequireActiveRole(ctx, id)
	if err != nil {
		return info, err
	}
	if info.Role != domain.RoleSuperAdmin {
		return info, deny("super admin role required")
	}
	return info, nil
}

func (g *Gate) lookup(ctx context.Context, accountID uuid.UUID) domain.RoleInfo {
	if g.directory == nil {
		return domain.DefaultRoleInfo()
	}
	info, err := g.directory.Lookup(ctx, accountID)
	if err != nil {
		g.logger.Error("access.lookup.failed", "account_id", accountID.String(), "error", err)
		return domain.DefaultRoleInfo()
	}
	if info == nil {
		return domain.DefaultRoleInfo()
	}
	return *info
}

// SessionFlags summarises the caller's tier for admin layouts.
type SessionFlags struct {
	IsCreator    bool `json:"is_creator"`
	IsAdmin      bool `json:"is_admin"`
	IsSuperAdmin bool `json:"is_super_admin"`
}

// Flags derives the admin layout flags from info.
func Flags(info domain.RoleInfo) SessionFlags {
	return SessionFlags{
		IsCreator:    info.Role == domain.RoleCreator,
		IsAdmin:      info.Role.AtLeast(domain.RoleAdmin),
		IsSuperAdmin: info.Role == domain.RoleSuperAdmin,
	}
}
