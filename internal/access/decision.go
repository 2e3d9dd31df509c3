package access

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/wynotes/go-notes/internal/domain"
)

// Action names an administrative mutation on another account.
type Action string

const (
	ActionApprove       Action = "approve"
	ActionSuspend       Action = "suspend"
	ActionPromoteAdmin  Action = "promote_admin"
	ActionDemoteCreator Action = "demote_creator"
)

// Actions lists every administrative action in a stable order.
func Actions() []Action {
	return []Action{ActionApprove, ActionSuspend, ActionPromoteAdmin, ActionDemoteCreator}
}

// Subject identifies one side of an administrative action.
type Subject struct {
	ID   uuid.UUID
	Role domain.Role
}

type rule struct {
	minimum      domain.Role
	forbidSelf   bool
	forbidPeers  bool
	verbPastForm string
}

var rules = map[Action]rule{
	ActionApprove:       {minimum: domain.RoleAdmin, verbPastForm: "approved"},
	ActionSuspend:       {minimum: domain.RoleAdmin, forbidSelf: true, forbidPeers: true, verbPastForm: "suspended"},
	ActionPromoteAdmin:  {minimum: domain.RoleSuperAdmin, verbPastForm: "promoted"},
	ActionDemoteCreator: {minimum: domain.RoleSuperAdmin, forbidSelf: true, verbPastForm: "demoted"},
}

// CanAccessAdmin reports whether role reaches the creator tier.
func CanAccessAdmin(role domain.Role) bool {
	return role.Valid() && role.AtLeast(domain.RoleCreator)
}

// CanManageRole reports whether actor may change the role of target.
func CanManageRole(actor, target domain.Role) bool {
	return actor == domain.RoleSuperAdmin && target != domain.RoleSuperAdmin
}

// Decide applies the administrative decision table. A nil result allows the
// action; every denial is an *Error wrapped with a go-errors category. Tier
// checks run before target checks.
func Decide(action Action, actor, target Subject) error {
	r, ok := rules[action]
	if !ok {
		return reject(fmt.Sprintf("unknown action %q", action))
	}
	if !actor.Role.Valid() || !actor.Role.AtLeast(r.minimum) {
		return deny(fmt.Sprintf("%s requires the %s role", action, r.minimum))
	}
	if r.forbidSelf && actor.ID == target.ID {
		return reject(fmt.Sprintf("accounts cannot be %s by themselves", r.verbPastForm))
	}
	if target.Role == domain.RoleSuperAdmin {
		return reject(fmt.Sprintf("super admins cannot be %s", r.verbPastForm))
	}
	if r.forbidPeers && actor.Role == domain.RoleAdmin && target.Role == domain.RoleAdmin {
		return deny(fmt.Sprintf("admins cannot be %s by other admins", r.verbPastForm))
	}
	return nil
}
