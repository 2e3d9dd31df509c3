package access

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/wynotes/go-notes/internal/domain"
)

func TestResolveScopePinsCreatorsToOwnRows(t *testing.T) {
	actor := uuid.New()
	creator := domain.RoleInfo{Role: domain.RoleCreator, Status: domain.StatusActive}

	scope := ResolveScope(creator, actor, "all")
	if scope.All || scope.OwnerID != actor {
		t.Fatalf("expected creator to be pinned to mine, got %+v", scope)
	}
	if scope.Name() != ScopeMine {
		t.Fatalf("expected mine, got %s", scope.Name())
	}
}

func TestResolveScopeAllowsAdminsToWiden(t *testing.T) {
	actor := uuid.New()
	admin := domain.RoleInfo{Role: domain.RoleAdmin, Status: domain.StatusActive}

	if scope := ResolveScope(admin, actor, " ALL "); !scope.All {
		t.Fatalf("expected admin to see all, got %+v", scope)
	}
	if scope := ResolveScope(admin, actor, ""); scope.All || scope.OwnerID != actor {
		t.Fatalf("expected default scope to be mine, got %+v", scope)
	}

	suspended := domain.RoleInfo{Role: domain.RoleAdmin, Status: domain.StatusSuspended}
	if scope := ResolveScope(suspended, actor, "all"); scope.All {
		t.Fatalf("expected suspended admin to be pinned, got %+v", scope)
	}
}

func TestAuthorizeOwner(t *testing.T) {
	actor := uuid.New()
	other := uuid.New()
	creator := domain.RoleInfo{Role: domain.RoleCreator, Status: domain.StatusActive}
	admin := domain.RoleInfo{Role: domain.RoleAdmin, Status: domain.StatusActive}

	if err := AuthorizeOwner(creator, actor, actor); err != nil {
		t.Fatalf("expected owner access, got %v", err)
	}
	if err := AuthorizeOwner(creator, actor, other); !errors.Is(err, ErrInsufficientPrivilege) {
		t.Fatalf("expected cross-account access to be denied, got %v", err)
	}
	if err := AuthorizeOwner(admin, actor, other); err != nil {
		t.Fatalf("expected admin access, got %v", err)
	}
}
