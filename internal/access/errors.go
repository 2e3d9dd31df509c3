package access

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Kind classifies a gate or decision failure.
type Kind string

const (
	KindUnauthenticated       Kind = "unauthenticated"
	KindUnvetted              Kind = "unvetted"
	KindInsufficientPrivilege Kind = "insufficient_privilege"
	KindInvalidTarget         Kind = "invalid_target"
)

var (
	ErrUnauthenticated       = errors.New("access: unauthenticated")
	ErrUnvetted              = errors.New("access: account not vetted")
	ErrInsufficientPrivilege = errors.New("access: insufficient privilege")
	ErrInvalidTarget         = errors.New("access: invalid target")
)

const (
	codeUnauthenticated       = "ACCESS_UNAUTHENTICATED"
	codeUnvetted              = "ACCESS_UNVETTED"
	codeInsufficientPrivilege = "ACCESS_INSUFFICIENT_PRIVILEGE"
	codeInvalidTarget         = "ACCESS_INVALID_TARGET"
)

// Error is the typed failure produced by the gate and the decision table.
// Location is only set for redirect dispositions.
type Error struct {
	Kind     Kind
	Reason   string
	Location string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Reason) == "" {
		return "access: " + string(e.Kind)
	}
	return "access: " + string(e.Kind) + ": " + e.Reason
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindUnvetted:
		return ErrUnvetted
	case KindInsufficientPrivilege:
		return ErrInsufficientPrivilege
	case KindInvalidTarget:
		return ErrInvalidTarget
	default:
		return nil
	}
}

// Redirect reports whether the caller should redirect instead of surfacing
// the reason.
func (e *Error) Redirect() bool {
	return e != nil && e.Location != ""
}

// Status maps the failure to the HTTP status an adapter should answer with.
func (e *Error) Status() int {
	if e == nil {
		return http.StatusOK
	}
	switch e.Kind {
	case KindUnauthenticated, KindUnvetted:
		return http.StatusSeeOther
	case KindInsufficientPrivilege:
		return http.StatusForbidden
	case KindInvalidTarget:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AsError extracts the typed access failure from err, looking through any
// go-errors wrapping.
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

func redirectTo(kind Kind, location, reason string) error {
	return categorise(&Error{Kind: kind, Reason: reason, Location: location})
}

func deny(reason string) error {
	return categorise(&Error{Kind: KindInsufficientPrivilege, Reason: reason})
}

func reject(reason string) error {
	return categorise(&Error{Kind: KindInvalidTarget, Reason: reason})
}

func categorise(err *Error) error {
	switch err.Kind {
	case KindUnauthenticated:
		return goerrors.Wrap(err, goerrors.CategoryAuth, err.Error()).WithTextCode(codeUnauthenticated)
	case KindUnvetted:
		return goerrors.Wrap(err, goerrors.CategoryAuthz, err.Error()).WithTextCode(codeUnvetted)
	case KindInsufficientPrivilege:
		return goerrors.Wrap(err, goerrors.CategoryAuthz, err.Error()).WithTextCode(codeInsufficientPrivilege)
	default:
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).WithTextCode(codeInvalidTarget)
	}
}
