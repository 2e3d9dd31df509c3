package access

import (
	"strings"

	"github.com/google/uuid"
	"github.com/wynotes/go-notes/internal/domain"
)

const (
	ScopeMine = "mine"
	ScopeAll  = "all"
)

// Scope is the resolved row visibility for listing queries. When All is
// false, queries must filter on OwnerID.
type Scope struct {
	All     bool      `json:"all"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// Name returns the scope keyword.
func (s Scope) Name() string {
	if s.All {
		return ScopeAll
	}
	return ScopeMine
}

// ResolveScope decides which rows an actor may list. Only admins and super
// admins may widen to "all"; everyone else is pinned to their own rows
// whatever they requested.
func ResolveScope(info domain.RoleInfo, actorID uuid.UUID, requested string) Scope {
	wantsAll := strings.EqualFold(strings.TrimSpace(requested), ScopeAll)
	if wantsAll && info.Vetted() && info.Role.AtLeast(domain.RoleAdmin) {
		return Scope{All: true}
	}
	return Scope{OwnerID: actorID}
}

// AuthorizeOwner rejects access to a single row owned by someone else unless
// the actor is an active admin or super admin.
func AuthorizeOwner(info domain.RoleInfo, actorID, ownerID uuid.UUID) error {
	if actorID != uuid.Nil && actorID == ownerID {
		return nil
	}
	if info.Vetted() && info.Role.AtLeast(domain.RoleAdmin) {
		return nil
	}
	return deny("row belongs to another account")
}
