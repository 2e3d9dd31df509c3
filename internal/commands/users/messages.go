package userscmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/wynotes/go-notes/internal/access"
	"github.com/wynotes/go-notes/internal/users"
)

const (
	approveAccountMessageType = "notes.users.approve"
	suspendAccountMessageType = "notes.users.suspend"
	promoteAdminMessageType   = "notes.users.promote_admin"
	demoteCreatorMessageType  = "notes.users.demote_creator"
)

// AccountMutation carries the acting account and the profile being changed.
// OnApplied, when set, receives the updated profile after a successful write.
type AccountMutation struct {
	ActorID   uuid.UUID            `json:"actor_id"`
	TargetID  uuid.UUID            `json:"target_id"`
	ReturnTo  string               `json:"return_to,omitempty"`
	OnApplied func(*users.Profile) `json:"-"`
}

func (m AccountMutation) identity() access.Identity {
	return access.Identity{AccountID: m.ActorID, ReturnTo: m.ReturnTo}
}

// validate only checks the target. An anonymous actor is left to the access gate.
func (m AccountMutation) validate(code string) error {
	errs := validation.Errors{}
	if m.TargetID == uuid.Nil {
		errs["target_id"] = validation.NewError(code+".target_required", "target_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ApproveAccountCommand activates a pending or suspended account.
type ApproveAccountCommand struct {
	AccountMutation
}

// Type implements command.Message.
func (ApproveAccountCommand) Type() string { return approveAccountMessageType }

// Validate ensures the target account is present.
func (m ApproveAccountCommand) Validate() error {
	return m.validate(approveAccountMessageType)
}

func (ApproveAccountCommand) action() access.Action { return access.ActionApprove }

func (m ApproveAccountCommand) mutation() AccountMutation { return m.AccountMutation }

// SuspendAccountCommand suspends an account.
type SuspendAccountCommand struct {
	AccountMutation
}

// Type implements command.Message.
func (SuspendAccountCommand) Type() string { return suspendAccountMessageType }

// Validate ensures the target account is present.
func (m SuspendAccountCommand) Validate() error {
	return m.validate(suspendAccountMessageType)
}

func (SuspendAccountCommand) action() access.Action { return access.ActionSuspend }

func (m SuspendAccountCommand) mutation() AccountMutation { return m.AccountMutation }

// PromoteAdminCommand grants the admin role.
type PromoteAdminCommand struct {
	AccountMutation
}

// Type implements command.Message.
func (PromoteAdminCommand) Type() string { return promoteAdminMessageType }

// Validate ensures the target account is present.
func (m PromoteAdminCommand) Validate() error {
	return m.validate(promoteAdminMessageType)
}

func (PromoteAdminCommand) action() access.Action { return access.ActionPromoteAdmin }

func (m PromoteAdminCommand) mutation() AccountMutation { return m.AccountMutation }

// DemoteCreatorCommand returns an account to the creator role.
type DemoteCreatorCommand struct {
	AccountMutation
}

// Type implements command.Message.
func (DemoteCreatorCommand) Type() string { return demoteCreatorMessageType }

// Validate ensures the target account is present.
func (m DemoteCreatorCommand) Validate() error {
	return m.validate(demoteCreatorMessageType)
}

func (DemoteCreatorCommand) action() access.Action { return access.ActionDemoteCreator }

func (m DemoteCreatorCommand) mutation() AccountMutation { return m.AccountMutation }
