package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wynotes/go-notes/internal/access"
	userscmd "github.com/wynotes/go-notes/internal/commands/users"
	"github.com/wynotes/go-notes/internal/domain"
	"github.com/wynotes/go-notes/internal/identity"
	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/internal/users"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

// actionAliases accepts the short verbs used by the admin UI.
var actionAliases = map[string]access.Action{
	"approve":        access.ActionApprove,
	"suspend":        access.ActionSuspend,
	"promote":        access.ActionPromoteAdmin,
	"promote_admin":  access.ActionPromoteAdmin,
	"demote":         access.ActionDemoteCreator,
	"demote_creator": access.ActionDemoteCreator,
}

const defaultLogLimit = 100

type sessionResponse struct {
	AccountID uuid.UUID            `json:"account_id"`
	Role      domain.Role          `json:"role"`
	Status    domain.AccountStatus `json:"status"`
	Flags     access.SessionFlags  `json:"flags"`
}

type sessionLoginRequest struct {
	Token string `json:"token"`
}

type sessionLoginResponse struct {
	AccountID uuid.UUID            `json:"account_id"`
	Role      domain.Role          `json:"role"`
	Status    domain.AccountStatus `json:"status"`
}

type profileResponse struct {
	*users.Profile
	IsSelf bool `json:"is_self,omitempty"`
}

type usersResponse struct {
	Users         []profileResponse `json:"users"`
	CurrentUserID uuid.UUID         `json:"current_user_id"`
	CurrentRole   domain.Role       `json:"current_user_role"`
}

type scopeResponse struct {
	Scope   string    `json:"scope"`
	All     bool      `json:"all"`
	OwnerID uuid.UUID `json:"owner_id,omitempty"`
}

type activityResponse struct {
	Verb       string         `json:"verb"`
	ActorID    uuid.UUID      `json:"actor_id"`
	ObjectType string         `json:"object_type"`
	ObjectID   string         `json:"object_id"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func (api *API) registerAccountRoutes(r chi.Router) {
	r.Get("/session", api.handleSession)
	r.Post("/session", api.handleSessionLogin)
	r.Delete("/session", api.handleSessionLogout)
	r.Get("/scope", api.handleScope)
	r.Get("/users", api.handleUserList)
	r.Post("/users/{id}/{action}", api.handleUserAction)
	r.Put("/profile", api.handleProfileUpdate)
	r.Get("/logs", api.handleActivityLog)
}

func (api *API) handleSession(w http.ResponseWriter, r *http.Request) {
	id := identityFor(r)
	info, err := api.gate.RequireActiveRole(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		AccountID: id.AccountID,
		Role:      info.Role,
		Status:    info.Status,
		Flags:     access.Flags(info),
	})
}

// provisionProfile creates the pending profile of an authenticated account on
// its first admin request so administrators can see and approve it.
func (api *API) provisionProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.users != nil {
			if accountID, ok := identity.FromContext(r.Context()); ok {
				if _, err := api.users.EnsureProfile(r.Context(), accountID, ""); err != nil {
					logging.ForRequest(r.Context(), api.logger).Warn("http.profile.provision_failed", "error", err)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// handleSessionLogin exchanges a session token for the session cookie.
func (api *API) handleSessionLogin(w http.ResponseWriter, r *http.Request) {
	if api.sessions == nil || api.users == nil {
		unavailable(w)
		return
	}
	var req sessionLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid session payload")
		return
	}
	token := strings.TrimSpace(req.Token)
	accountID, err := api.sessions.Authenticate(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: string(access.KindUnauthenticated), Message: "invalid session token"})
		return
	}
	profile, err := api.users.EnsureProfile(r.Context(), accountID, "")
	if err != nil {
		writeError(w, err)
		return
	}
	api.sessions.SetCookie(w, token, api.secure)
	writeJSON(w, http.StatusOK, sessionLoginResponse{
		AccountID: profile.ID,
		Role:      profile.Role,
		Status:    profile.Status,
	})
}

// handleSessionLogout clears the session cookie.
func (api *API) handleSessionLogout(w http.ResponseWriter, _ *http.Request) {
	if api.sessions != nil {
		api.sessions.ClearCookie(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleScope(w http.ResponseWriter, r *http.Request) {
	id := identityFor(r)
	info, err := api.gate.RequireActiveRole(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	scope := access.ResolveScope(info, id.AccountID, r.URL.Query().Get("scope"))
	writeJSON(w, http.StatusOK, scopeResponse{Scope: scope.Name(), All: scope.All, OwnerID: scope.OwnerID})
}

func (api *API) handleUserList(w http.ResponseWriter, r *http.Request) {
	if api.users == nil {
		unavailable(w)
		return
	}
	id := identityFor(r)
	info, err := api.gate.RequireAdmin(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	profiles, err := api.users.List(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]profileResponse, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, profileResponse{Profile: profile, IsSelf: profile.ID == id.AccountID})
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: out, CurrentUserID: id.AccountID, CurrentRole: info.Role})
}

func (api *API) handleUserAction(w http.ResponseWriter, r *http.Request) {
	if api.commands == nil {
		unavailable(w)
		return
	}
	action, ok := actionAliases[chi.URLParam(r, "action")]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "unknown account action"})
		return
	}
	targetID, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}

	id := identityFor(r)
	var updated *users.Profile
	err = api.commands.Dispatch(r.Context(), action, userscmd.AccountMutation{
		ActorID:   id.AccountID,
		TargetID:  targetID,
		ReturnTo:  id.ReturnTo,
		OnApplied: func(p *users.Profile) { updated = p },
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: updated, IsSelf: targetID == id.AccountID})
}

func (api *API) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	if api.users == nil {
		unavailable(w)
		return
	}
	var input users.UpdateProfileInput
	if err := decodeJSON(r, &input); err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	id := identityFor(r)
	profile, err := api.users.UpdateProfile(r.Context(), id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: profile, IsSelf: true})
}

func (api *API) handleActivityLog(w http.ResponseWriter, r *http.Request) {
	if api.activity == nil {
		unavailable(w)
		return
	}
	if _, err := api.gate.RequireAdmin(r.Context(), identityFor(r)); err != nil {
		writeError(w, err)
		return
	}

	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	records := api.activity.Records()
	if len(records) > limit {
		records = records[:limit]
	}
	out := make([]activityResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toActivityResponse(record))
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": out})
}

func toActivityResponse(record interfaces.ActivityRecord) activityResponse {
	return activityResponse{
		Verb:       record.Verb,
		ActorID:    record.ActorID,
		ObjectType: record.ObjectType,
		ObjectID:   record.ObjectID,
		Data:       record.Data,
		OccurredAt: record.OccurredAt,
	}
}
