package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wynotes/go-notes/internal/media"
)

const (
	maxMultipartMemory = 8 << 20
	formFieldFile      = "file"
)

type cleanupDeletePayload struct {
	Files []string `json:"files"`
}

func (api *API) registerMediaRoutes(r chi.Router) {
	r.Post("/media/cleanup", api.handleCleanupScan)
	r.Delete("/media/cleanup", api.handleCleanupDelete)
}

func (api *API) handleCleanupScan(w http.ResponseWriter, r *http.Request) {
	if api.media == nil {
		unavailable(w)
		return
	}
	if _, err := api.gate.RequireAdmin(r.Context(), identityFor(r)); err != nil {
		writeError(w, err)
		return
	}
	report, err := api.media.Scan(r.Context())
	if err != nil {
		api.logger.Error("http.media.scan_failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (api *API) handleCleanupDelete(w http.ResponseWriter, r *http.Request) {
	if api.media == nil {
		unavailable(w)
		return
	}
	if _, err := api.gate.RequireAdmin(r.Context(), identityFor(r)); err != nil {
		writeError(w, err)
		return
	}
	var payload cleanupDeletePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if len(payload.Files) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"message": "No files to delete"})
		return
	}
	result, err := api.media.Delete(r.Context(), payload.Files)
	if err != nil {
		api.logger.Error("http.media.delete_failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": result.Deleted, "skipped": result.Skipped})
}

func (api *API) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	id := identityFor(r)
	account, err := api.gate.RequireSignedIn(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	api.storeUpload(w, r, media.Upload{Kind: media.UploadAvatar, OwnerID: account.ID})
}

func (api *API) handleArticleImageUpload(w http.ResponseWriter, r *http.Request) {
	id := identityFor(r)
	if _, err := api.gate.RequireActiveRole(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	api.storeUpload(w, r, media.Upload{Kind: media.UploadArticleImage, OwnerID: id.AccountID})
}

func (api *API) storeUpload(w http.ResponseWriter, r *http.Request, upload media.Upload) {
	if api.media == nil {
		unavailable(w)
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			badRequest(w, "No file uploaded")
			return
		}
		badRequest(w, "invalid file")
		return
	}
	defer file.Close()

	upload.Filename = header.Filename
	upload.ContentType = header.Header.Get("Content-Type")
	upload.Size = header.Size
	upload.Body = file

	result, err := api.media.Upload(r.Context(), upload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "url": result.PublicURL, "publicUrl": result.PublicURL, "key": result.Key})
}
