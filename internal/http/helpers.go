package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/wynotes/go-notes/internal/access"
	"github.com/wynotes/go-notes/internal/identity"
	"github.com/wynotes/go-notes/internal/markdown"
	"github.com/wynotes/go-notes/internal/media"
	"github.com/wynotes/go-notes/internal/users"
)

type errorResponse struct {
	Error    string            `json:"error"`
	Message  string            `json:"message,omitempty"`
	Location string            `json:"location,omitempty"`
	Issues   map[string]string `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	if payload.Location != "" {
		w.Header().Set("Location", payload.Location)
	}
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func unavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if accessErr, ok := access.AsError(err); ok {
		resp := errorResponse{Error: string(accessErr.Kind)}
		if accessErr.Redirect() {
			resp.Location = accessErr.Location
		} else {
			resp.Message = accessErr.Reason
		}
		return accessErr.Status(), resp
	}

	var notFound *users.NotFoundError
	if errors.As(err, &notFound) || errors.Is(err, users.ErrProfileNotFound) ||
		errors.Is(err, markdown.ErrDocumentNotFound) || errors.Is(err, markdown.ErrUnknownTheme) {
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	}

	var issues validation.Errors
	if errors.As(err, &issues) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  flattenIssues(issues),
		}
	}

	if errors.Is(err, media.ErrUploadTooLarge) {
		return http.StatusRequestEntityTooLarge, errorResponse{Error: "too_large", Message: err.Error()}
	}

	if errors.Is(err, media.ErrUploadEmpty) ||
		errors.Is(err, media.ErrUnknownUploadKind) ||
		errors.Is(err, media.ErrOwnerRequired) ||
		errors.Is(err, users.ErrAccountRequired) ||
		goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

func flattenIssues(errs validation.Errors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for field, err := range errs {
		if err != nil {
			out[field] = err.Error()
		}
	}
	return out
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

// identityFor reads the session account and the path to return to after
// signing in. An explicit returnTo query parameter wins over the request path.
func identityFor(r *http.Request) access.Identity {
	accountID, _ := identity.FromContext(r.Context())
	returnTo := strings.TrimSpace(r.URL.Query().Get("returnTo"))
	if returnTo == "" || !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") {
		returnTo = r.URL.Path
	}
	return access.Identity{AccountID: accountID, ReturnTo: returnTo}
}
