package identity

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

// DefaultCookieName is the cookie carrying the session token for browser requests.
const DefaultCookieName = "notes_session"

// Middleware resolves the session token on each request. Missing or invalid
// tokens leave the request anonymous; the access gate decides what that means.
type Middleware struct {
	issuer     *Issuer
	cookieName string
	logger     interfaces.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*Middleware)

// WithCookieName overrides DefaultCookieName.
func WithCookieName(name string) MiddlewareOption {
	return func(m *Middleware) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			m.cookieName = trimmed
		}
	}
}

// WithLogger sets the logger used for rejected tokens.
func WithLogger(logger interfaces.Logger) MiddlewareOption {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMiddleware builds the session middleware around issuer.
func NewMiddleware(issuer *Issuer, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		issuer:     issuer,
		cookieName: DefaultCookieName,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Handler is a chi-compatible middleware.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.token(r)
		if token == "" || m.issuer == nil {
			next.ServeHTTP(w, r)
			return
		}
		accountID, err := m.issuer.Parse(token)
		if err != nil {
			m.logger.Debug("identity.token.rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		ctx := WithAccount(r.Context(), accountID)
		ctx = logging.ContextWithAccount(ctx, accountID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate validates token and returns the account it was issued for.
func (m *Middleware) Authenticate(token string) (uuid.UUID, error) {
	if m == nil || m.issuer == nil {
		return uuid.Nil, ErrInvalidToken
	}
	return m.issuer.Parse(token)
}

// SetCookie writes the session cookie for token.
func (m *Middleware) SetCookie(w http.ResponseWriter, token string, secure bool) {
	ttl := DefaultTokenTTL
	if m.issuer != nil {
		ttl = m.issuer.ttl
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
}

// ClearCookie expires the session cookie.
func (m *Middleware) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (m *Middleware) token(r *http.Request) string {
	if token, ok := bearerToken(r); ok {
		return token
	}
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

func bearerToken(r *http.Request) (string, bool) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
