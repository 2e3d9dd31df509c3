package access

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/wynotes/go-notes/internal/domain"
)

func TestCanAccessAdminFollowsTierOrder(t *testing.T) {
	for _, role := range domain.Roles() {
		want := role.Level() >= domain.RoleCreator.Level()
		if got := CanAccessAdmin(role); got != want {
			t.Fatalf("CanAccessAdmin(%s) = %v, want %v", role, got, want)
		}
	}
}

func TestCanManageRoleOnlySuperAdminOverNonSuperAdmin(t *testing.T) {
	for _, actor := range domain.Roles() {
		for _, target := range domain.Roles() {
			want := actor == domain.RoleSuperAdmin && target != domain.RoleSuperAdmin
			if got := CanManageRole(actor, target); got != want {
				t.Fatalf("CanManageRole(%s, %s) = %v, want %v", actor, target, got, want)
			}
		}
	}
}

func TestDecideSuspend(t *testing.T) {
	actorID := uuid.New()
	targetID := uuid.New()

	cases := []struct {
		name   string
		actor  Subject
		target Subject
		kind   Kind
	}{
		{"admin suspends creator", Subject{actorID, domain.RoleAdmin}, Subject{targetID, domain.RoleCreator}, ""},
		{"super admin suspends admin", Subject{actorID, domain.RoleSuperAdmin}, Subject{targetID, domain.RoleAdmin}, ""},
		{"admin suspends admin", Subject{actorID, domain.RoleAdmin}, Subject{targetID, domain.RoleAdmin}, KindInsufficientPrivilege},
		{"admin suspends super admin", Subject{actorID, domain.RoleAdmin}, Subject{targetID, domain.RoleSuperAdmin}, KindInvalidTarget},
		{"super admin suspends super admin", Subject{actorID, domain.RoleSuperAdmin}, Subject{targetID, domain.RoleSuperAdmin}, KindInvalidTarget},
		{"creator suspends user", Subject{actorID, domain.RoleCreator}, Subject{targetID, domain.RoleUser}, KindInsufficientPrivilege},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Decide(ActionSuspend, tc.actor, tc.target)
			assertKind(t, err, tc.kind)
		})
	}
}

func TestDecideRejectsSelfSuspendForEveryRole(t *testing.T) {
	id := uuid.New()
	for _, role := range domain.Roles() {
		self := Subject{ID: id, Role: role}
		if err := Decide(ActionSuspend, self, self); err == nil {
			t.Fatalf("expected self suspend to be rejected for %s", role)
		}
		if err := Decide(ActionDemoteCreator, self, self); err == nil {
			t.Fatalf("expected self demote to be rejected for %s", role)
		}
	}
}

func TestDecideNeverTargetsSuperAdmin(t *testing.T) {
	target := Subject{ID: uuid.New(), Role: domain.RoleSuperAdmin}
	for _, action := range Actions() {
		for _, role := range domain.Roles() {
			actor := Subject{ID: uuid.New(), Role: role}
			if err := Decide(action, actor, target); err == nil {
				t.Fatalf("expected %s by %s on super admin to be rejected", action, role)
			}
		}
	}
}

func TestDecidePromoteAndDemoteRequireSuperAdmin(t *testing.T) {
	target := Subject{ID: uuid.New(), Role: domain.RoleCreator}

	err := Decide(ActionPromoteAdmin, Subject{ID: uuid.New(), Role: domain.RoleAdmin}, target)
	assertKind(t, err, KindInsufficientPrivilege)

	if err := Decide(ActionPromoteAdmin, Subject{ID: uuid.New(), Role: domain.RoleSuperAdmin}, target); err != nil {
		t.Fatalf("expected super admin promote to succeed, got %v", err)
	}

	adminTarget := Subject{ID: uuid.New(), Role: domain.RoleAdmin}
	if err := Decide(ActionDemoteCreator, Subject{ID: uuid.New(), Role: domain.RoleSuperAdmin}, adminTarget); err != nil {
		t.Fatalf("expected super admin demote to succeed, got %v", err)
	}
}

func TestDecideApproveRequiresAdmin(t *testing.T) {
	target := Subject{ID: uuid.New(), Role: domain.RoleUser}

	assertKind(t, Decide(ActionApprove, Subject{ID: uuid.New(), Role: domain.RoleCreator}, target), KindInsufficientPrivilege)
	assertKind(t, Decide(ActionApprove, Subject{ID: uuid.New(), Role: domain.RoleAdmin}, target), "")
}

func TestDecideUnknownAction(t *testing.T) {
	err := Decide(Action("delete"), Subject{ID: uuid.New(), Role: domain.RoleSuperAdmin}, Subject{ID: uuid.New()})
	assertKind(t, err, KindInvalidTarget)
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func assertKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if kind == "" {
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		return
	}
	accessErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected access error of kind %s, got %v", kind, err)
	}
	if accessErr.Kind != kind {
		t.Fatalf("expected kind %s, got %s", kind, accessErr.Kind)
	}
	if accessErr.Reason == "" {
		t.Fatal("expected a caller visible reason")
	}
	if !errors.Is(err, accessErr.Unwrap()) {
		t.Fatalf("expected error to match sentinel %v", accessErr.Unwrap())
	}
}
