package users

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/wynotes/go-notes/internal/access"
	"github.com/wynotes/go-notes/internal/domain"
	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

var (
	ErrRepositoryRequired = errors.New("users: repository required")
	ErrGateRequired       = errors.New("users: access gate required")
	ErrAccountRequired    = errors.New("users: account id required")
	ErrProfileNotFound    = errors.New("users: profile not found")
)

const (
	defaultDisplayName  = "User"
	maxDisplayNameRunes = 64
	activityChannel     = "admin"
	activityObjectType  = "profile"
)

// UpdateProfileInput captures the self-service profile fields. Empty
// DisplayName keeps the current name; empty AvatarURL clears the avatar.
type UpdateProfileInput struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Validate checks the submitted profile fields.
func (in UpdateProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.DisplayName, validation.RuneLength(0, maxDisplayNameRunes)),
		validation.Field(&in.AvatarURL, validation.By(func(value any) error {
			raw := strings.TrimSpace(value.(string))
			if raw == "" {
				return nil
			}
			parsed, err := url.Parse(raw)
			if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
				return validation.NewError("notes.users.avatar_url.invalid", "avatar url must be an absolute http(s) url")
			}
			return nil
		})),
	)
}

// ServiceOption configures the users service.
type ServiceOption func(*Service)

// WithActivitySink records every administrative mutation.
func WithActivitySink(sink interfaces.ActivitySink) ServiceOption {
	return func(s *Service) {
		s.activity = sink
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service administers accounts. Every mutation on another account passes the
// gate and the access decision table before touching the repository.
type Service struct {
	repo     ProfileRepository
	gate     *access.Gate
	activity interfaces.ActivitySink
	logger   interfaces.Logger
	now      func() time.Time
}

// NewService builds the users service.
func NewService(repo ProfileRepository, gate *access.Gate, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if gate == nil {
		return nil, ErrGateRequired
	}
	s := &Service{
		repo:   repo,
		gate:   gate,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// EnsureProfile returns the profile of accountID, creating a pending user
// profile on first sign-in.
func (s *Service) EnsureProfile(ctx context.Context, accountID uuid.UUID, displayName string) (*Profile, error) {
	if accountID == uuid.Nil {
		return nil, ErrAccountRequired
	}
	existing, err := s.repo.GetByID(ctx, accountID)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()
	info := domain.DefaultRoleInfo()
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = defaultDisplayName
	}
	created, err := s.repo.Create(ctx, &Profile{
		ID:          accountID,
		DisplayName: name,
		Role:        info.Role,
		Status:      info.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("users.profile.created", "account_id", accountID.String())
	return created, nil
}

// Get returns the profile of accountID.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	profile, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, accountID)
		}
		return nil, err
	}
	return profile, nil
}

// List returns every profile. Admins and super admins only.
func (s *Service) List(ctx context.Context, actor access.Identity) ([]*Profile, error) {
	if _, err := s.gate.RequireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Approve activates a pending or suspended account.
func (s *Service) Approve(ctx context.Context, actor access.Identity, target uuid.UUID) (*Profile, error) {
	return s.mutate(ctx, access.ActionApprove, actor, target, func(p *Profile) {
		p.Status = domain.StatusActive
	})
}

// Suspend blocks an account from every privileged action.
func (s *Service) Suspend(ctx context.Context, actor access.Identity, target uuid.UUID) (*Profile, error) {
	return s.mutate(ctx, access.ActionSuspend, actor, target, func(p *Profile) {
		p.Status = domain.StatusSuspended
	})
}

// PromoteAdmin grants the admin role and activates the account.
func (s *Service) PromoteAdmin(ctx context.Context, actor access.Identity, target uuid.UUID) (*Profile, error) {
	return s.mutate(ctx, access.ActionPromoteAdmin, actor, target, func(p *Profile) {
		p.Role = domain.RoleAdmin
		p.Status = domain.StatusActive
	})
}

// DemoteCreator moves an account back to the creator role.
func (s *Service) DemoteCreator(ctx context.Context, actor access.Identity, target uuid.UUID) (*Profile, error) {
	return s.mutate(ctx, access.ActionDemoteCreator, actor, target, func(p *Profile) {
		p.Role = domain.RoleCreator
	})
}

// Mutate dispatches action by name; it backs the command and HTTP layers.
func (s *Service) Mutate(ctx context.Context, action access.Action, actor access.Identity, target uuid.UUID) (*Profile, error) {
	switch action {
	case access.ActionApprove:
		return s.Approve(ctx, actor, target)
	case access.ActionSuspend:
		return s.Suspend(ctx, actor, target)
	case access.ActionPromoteAdmin:
		return s.PromoteAdmin(ctx, actor, target)
	case access.ActionDemoteCreator:
		return s.DemoteCreator(ctx, actor, target)
	default:
		return nil, access.Decide(action, access.Subject{}, access.Subject{})
	}
}

// UpdateProfile edits the caller's own display name and avatar. It only
// requires a signed-in account and never touches role or status.
func (s *Service) UpdateProfile(ctx context.Context, actor access.Identity, input UpdateProfileInput) (*Profile, error) {
	account, err := s.gate.RequireSignedIn(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.EnsureProfile(ctx, account.ID, input.DisplayName)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.DisplayName); name != "" {
		profile.DisplayName = name
	}
	profile.AvatarURL = strings.TrimSpace(input.AvatarURL)
	profile.UpdatedAt = s.now().UTC()

	return s.repo.Update(ctx, profile)
}

func (s *Service) mutate(ctx context.Context, action access.Action, actor access.Identity, targetID uuid.UUID, apply func(*Profile)) (*Profile, error) {
	info, err := s.gate.RequireAdmin(ctx, actor)
	if err != nil {
		return nil, err
	}

	logger := logging.WithAccountContext(s.logger, actor.AccountID, targetID, string(action))

	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	err = access.Decide(action,
		access.Subject{ID: actor.AccountID, Role: info.Role},
		access.Subject{ID: target.ID, Role: target.Role},
	)
	if err != nil {
		logger.Warn("users.mutation.denied", "error", err)
		return nil, err
	}

	before := target.RoleInfo()
	apply(target)
	target.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, target)
	if err != nil {
		return nil, err
	}
	logger.Info("users.mutation.applied", "role", updated.Role.String(), "status", updated.Status.String())
	s.record(ctx, logger, action, actor.AccountID, before, updated)
	return updated, nil
}

func (s *Service) record(ctx context.Context, logger interfaces.Logger, action access.Action, actorID uuid.UUID, before domain.RoleInfo, after *Profile) {
	if s.activity == nil {
		return
	}
	record := interfaces.ActivityRecord{
		ActorID:    actorID,
		UserID:     after.ID,
		Verb:       "account." + string(action),
		ObjectType: activityObjectType,
		ObjectID:   after.ID.String(),
		Channel:    activityChannel,
		Data: map[string]any{
			"from_role":   before.Role.String(),
			"to_role":     after.Role.String(),
			"from_status": before.Status.String(),
			"to_status":   after.Status.String(),
		},
		OccurredAt: after.UpdatedAt,
	}
	if err := s.activity.Log(ctx, record); err != nil {
		logger.Error("users.activity.failed", "error", err)
	}
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
