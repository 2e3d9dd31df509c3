package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"

	"github.com/wynotes/go-notes/internal/access"
	userscmd "github.com/wynotes/go-notes/internal/commands/users"
	"github.com/wynotes/go-notes/internal/domain"
	"github.com/wynotes/go-notes/internal/identity"
	"github.com/wynotes/go-notes/internal/markdown"
	"github.com/wynotes/go-notes/internal/media"
	"github.com/wynotes/go-notes/internal/users"
)

const filesBase = "https://files.example.com"

type testEnv struct {
	handler  http.Handler
	repo     users.ProfileRepository
	store    *media.MemoryStore
	activity *users.MemoryActivitySink
	issuer   *identity.Issuer
	ids      map[string]uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	repo := users.NewMemoryRepository()
	gate := access.NewGate(users.NewDirectory(repo))
	activity := users.NewMemoryActivitySink(0)
	userSvc, err := users.NewService(repo, gate, users.WithActivitySink(activity))
	if err != nil {
		t.Fatalf("users.NewService: %v", err)
	}
	commands, err := userscmd.RegisterUserCommands(nil, userSvc, nil)
	if err != nil {
		t.Fatalf("RegisterUserCommands: %v", err)
	}

	ids := map[string]uuid.UUID{}
	seed := []struct {
		name   string
		role   domain.Role
		status domain.AccountStatus
		avatar string
	}{
		{"super", domain.RoleSuperAdmin, domain.StatusActive, ""},
		{"admin", domain.RoleAdmin, domain.StatusActive, ""},
		{"admin2", domain.RoleAdmin, domain.StatusActive, ""},
		{"creator", domain.RoleCreator, domain.StatusActive, filesBase + "/storage/v1/object/public/wyNotes/avatars/creator.png"},
		{"pending", domain.RoleUser, domain.StatusPending, ""},
	}
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for i, s := range seed {
		id := uuid.New()
		ids[s.name] = id
		if _, err := repo.Create(ctx, &users.Profile{
			ID: id, DisplayName: s.name, AvatarURL: s.avatar, Role: s.role, Status: s.status,
			CreatedAt: now.Add(time.Duration(i) * time.Minute), UpdatedAt: now,
		}); err != nil {
			t.Fatalf("seed %s: %v", s.name, err)
		}
	}

	library := fstest.MapFS{
		"articles/hello.md": &fstest.MapFile{Data: []byte("---\ntitle: Hello\ncover_image: " + filesBase + "/storage/v1/object/public/wyNotes/articles/cover.png\n---\n## Getting Started\n\nBody text.\n")},
		"articles/draft.md": &fstest.MapFile{Data: []byte("---\ntitle: Draft\npublished: false\n---\nNot yet.\n")},
	}
	loader := markdown.NewLoader(library, "articles")
	markdownSvc := markdown.NewService(nil, loader)

	store := media.NewMemoryStore("wyNotes")
	locator, err := media.NewLocator(filesBase, "wyNotes")
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}
	mediaSvc, err := media.NewService(store, locator, media.WithReferenceSources(
		users.AvatarReferences{Repo: repo},
		markdown.DocumentReferences{Source: loader},
	))
	if err != nil {
		t.Fatalf("media.NewService: %v", err)
	}

	issuer, err := identity.NewIssuer("http-test-secret")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	api := NewAPI(
		WithGate(gate),
		WithUserService(userSvc),
		WithUserCommands(commands),
		WithMarkdownService(markdownSvc),
		WithMediaService(mediaSvc),
		WithActivityLog(activity),
		WithSessions(identity.NewMiddleware(issuer)),
	)
	handler, err := api.Router()
	if err != nil {
		t.Fatalf("Router: %v", err)
	}
	return &testEnv{handler: handler, repo: repo, store: store, activity: activity, issuer: issuer, ids: ids}
}

func (e *testEnv) do(t *testing.T, as, method, path string, body any, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	e.authorize(t, req, as)
	return e.serve(t, req, wantStatus)
}

func (e *testEnv) authorize(t *testing.T, req *http.Request, as string) {
	t.Helper()
	if as == "" {
		return
	}
	id, ok := e.ids[as]
	if !ok {
		id = uuid.New()
		e.ids[as] = id
	}
	token, err := e.issuer.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func (e *testEnv) serve(t *testing.T, req *http.Request, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s: expected status %d got %d (%s)", req.Method, req.URL.Path, wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestSessionRedirectsAnonymousAndPending(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "", http.MethodGet, "/admin/api/session", nil, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/login?returnTo=%2Fadmin%2Fapi%2Fsession" {
		t.Fatalf("unexpected login location %q", loc)
	}

	rec = env.do(t, "", http.MethodGet, "/admin/api/session?returnTo=/admin/articles", nil, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/login?returnTo=%2Fadmin%2Farticles" {
		t.Fatalf("expected explicit returnTo, got %q", loc)
	}

	rec = env.do(t, "pending", http.MethodGet, "/admin/api/session", nil, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != access.PendingPath {
		t.Fatalf("expected pending redirect, got %q", loc)
	}

	rec = env.do(t, "newcomer", http.MethodGet, "/admin/api/session", nil, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != access.PendingPath {
		t.Fatalf("expected account without profile to be pending, got %q", loc)
	}
}

func TestSessionReportsFlags(t *testing.T) {
	env := newTestEnv(t)

	var session sessionResponse
	decodeJSONBody(t, env.do(t, "creator", http.MethodGet, "/admin/api/session", nil, http.StatusOK), &session)
	if session.Role != domain.RoleCreator || !session.Flags.IsCreator || session.Flags.IsAdmin || session.Flags.IsSuperAdmin {
		t.Fatalf("unexpected creator session %+v", session)
	}

	decodeJSONBody(t, env.do(t, "super", http.MethodGet, "/admin/api/session", nil, http.StatusOK), &session)
	if !session.Flags.IsAdmin || !session.Flags.IsSuperAdmin {
		t.Fatalf("unexpected super admin flags %+v", session.Flags)
	}
}

func TestUserListRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	var denied errorResponse
	decodeJSONBody(t, env.do(t, "creator", http.MethodGet, "/admin/api/users", nil, http.StatusForbidden), &denied)
	if denied.Error != string(access.KindInsufficientPrivilege) {
		t.Fatalf("unexpected error body %+v", denied)
	}

	var list struct {
		Users         []map[string]any `json:"users"`
		CurrentUserID string           `json:"current_user_id"`
		CurrentRole   string           `json:"current_user_role"`
	}
	decodeJSONBody(t, env.do(t, "admin", http.MethodGet, "/admin/api/users", nil, http.StatusOK), &list)
	if len(list.Users) != 5 || list.CurrentRole != "admin" || list.CurrentUserID != env.ids["admin"].String() {
		t.Fatalf("unexpected list response %+v", list)
	}
	if list.Users[0]["display_name"] != "pending" {
		t.Fatalf("expected newest profile first, got %v", list.Users[0]["display_name"])
	}
}

func TestUserActionsFollowDecisionTable(t *testing.T) {
	env := newTestEnv(t)
	path := func(name, action string) string {
		return "/admin/api/users/" + env.ids[name].String() + "/" + action
	}

	var approved map[string]any
	decodeJSONBody(t, env.do(t, "admin", http.MethodPost, path("pending", "approve"), nil, http.StatusOK), &approved)
	if approved["status"] != "active" {
		t.Fatalf("expected active status, got %v", approved)
	}
	if records := env.activity.Records(); len(records) != 1 || records[0].Verb != "account.approve" {
		t.Fatalf("expected one approve record, got %+v", records)
	}

	var peer errorResponse
	decodeJSONBody(t, env.do(t, "admin", http.MethodPost, path("admin2", "suspend"), nil, http.StatusForbidden), &peer)
	if peer.Error != string(access.KindInsufficientPrivilege) || peer.Message == "" {
		t.Fatalf("unexpected peer suspend body %+v", peer)
	}

	var super errorResponse
	decodeJSONBody(t, env.do(t, "admin", http.MethodPost, path("super", "suspend"), nil, http.StatusBadRequest), &super)
	if super.Error != string(access.KindInvalidTarget) {
		t.Fatalf("unexpected super suspend body %+v", super)
	}

	env.do(t, "admin", http.MethodPost, path("admin", "suspend"), nil, http.StatusBadRequest)
	env.do(t, "admin", http.MethodPost, path("creator", "promote"), nil, http.StatusForbidden)
	env.do(t, "admin", http.MethodPost, path("creator", "delete"), nil, http.StatusNotFound)
	env.do(t, "admin", http.MethodPost, "/admin/api/users/not-a-uuid/approve", nil, http.StatusBadRequest)
	env.do(t, "admin", http.MethodPost, "/admin/api/users/"+uuid.NewString()+"/approve", nil, http.StatusNotFound)

	var promoted map[string]any
	decodeJSONBody(t, env.do(t, "super", http.MethodPost, path("creator", "promote_admin"), nil, http.StatusOK), &promoted)
	if promoted["role"] != "admin" {
		t.Fatalf("expected admin role, got %v", promoted)
	}
	env.do(t, "super", http.MethodPost, path("admin2", "demote"), nil, http.StatusOK)
	env.do(t, "super", http.MethodPost, path("super", "demote"), nil, http.StatusBadRequest)
}

func TestRoleChangesApplyOnNextRequest(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, "admin2", http.MethodGet, "/admin/api/users", nil, http.StatusOK)
	env.do(t, "super", http.MethodPost, "/admin/api/users/"+env.ids["admin2"].String()+"/suspend", nil, http.StatusOK)

	rec := env.do(t, "admin2", http.MethodGet, "/admin/api/users", nil, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != access.PendingPath {
		t.Fatalf("expected suspended admin to be redirected to pending, got %q", loc)
	}
}

func TestProfileUpdateIsSelfService(t *testing.T) {
	env := newTestEnv(t)

	var updated map[string]any
	decodeJSONBody(t, env.do(t, "pending", http.MethodPut, "/admin/api/profile", map[string]any{
		"display_name": "  Reader  ",
		"avatar_url":   filesBase + "/storage/v1/object/public/wyNotes/avatars/p.png",
	}, http.StatusOK), &updated)
	if updated["display_name"] != "Reader" || updated["role"] != "user" || updated["status"] != "pending" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	var invalid errorResponse
	decodeJSONBody(t, env.do(t, "pending", http.MethodPut, "/admin/api/profile", map[string]any{
		"avatar_url": "javascript:alert(1)",
	}, http.StatusUnprocessableEntity), &invalid)
	if invalid.Issues["avatar_url"] == "" {
		t.Fatalf("expected avatar_url issue, got %+v", invalid)
	}

	env.do(t, "", http.MethodPut, "/admin/api/profile", map[string]any{"display_name": "x"}, http.StatusSeeOther)
}

func TestScopeIsPinnedForCreators(t *testing.T) {
	env := newTestEnv(t)

	var scope scopeResponse
	decodeJSONBody(t, env.do(t, "creator", http.MethodGet, "/admin/api/scope?scope=all", nil, http.StatusOK), &scope)
	if scope.All || scope.Scope != access.ScopeMine || scope.OwnerID != env.ids["creator"] {
		t.Fatalf("expected creator pinned to own rows, got %+v", scope)
	}

	decodeJSONBody(t, env.do(t, "admin", http.MethodGet, "/admin/api/scope?scope=all", nil, http.StatusOK), &scope)
	if !scope.All || scope.Scope != access.ScopeAll {
		t.Fatalf("expected admin to widen scope, got %+v", scope)
	}
}

func TestMarkdownPreviewAndArticles(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, "pending", http.MethodPost, "/admin/api/markdown/preview", previewPayload{Markdown: "# x"}, http.StatusSeeOther)

	var preview struct {
		HTML        string `json:"html"`
		ReadMinutes int    `json:"read_minutes"`
		TOC         []struct {
			ID string `json:"id"`
		} `json:"toc"`
	}
	decodeJSONBody(t, env.do(t, "creator", http.MethodPost, "/admin/api/markdown/preview", previewPayload{
		Markdown: "## Setup\n\n```go\nfmt.Println(1)\n```\n",
	}, http.StatusOK), &preview)
	if !strings.Contains(preview.HTML, `id="setup"`) || !strings.Contains(preview.HTML, "code-block") {
		t.Fatalf("unexpected preview html %q", preview.HTML)
	}
	if len(preview.TOC) != 1 || preview.TOC[0].ID != "setup" || preview.ReadMinutes < 1 {
		t.Fatalf("unexpected preview metadata %+v", preview)
	}

	var list struct {
		Articles []articleSummary `json:"articles"`
	}
	decodeJSONBody(t, env.do(t, "", http.MethodGet, "/articles", nil, http.StatusOK), &list)
	if len(list.Articles) != 1 || list.Articles[0].Slug != "hello" {
		t.Fatalf("expected only published articles, got %+v", list.Articles)
	}

	var article map[string]any
	decodeJSONBody(t, env.do(t, "", http.MethodGet, "/articles/hello", nil, http.StatusOK), &article)
	if article["title"] != "Hello" || !strings.Contains(article["html"].(string), `id="getting-started"`) {
		t.Fatalf("unexpected article %+v", article)
	}

	env.do(t, "", http.MethodGet, "/articles/draft", nil, http.StatusNotFound)
	env.do(t, "", http.MethodGet, "/articles/missing", nil, http.StatusNotFound)
}

func TestThemeCSS(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "", http.MethodGet, "/code-themes/github.css", nil, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), ".chroma") {
		t.Fatalf("expected chroma classes in css")
	}
	env.do(t, "", http.MethodGet, "/code-themes/no-such-theme.css", nil, http.StatusNotFound)
}

func TestUploadsAndCleanup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, key := range []string{"avatars/creator.png", "articles/cover.png", "articles/stale.png"} {
		if err := env.store.Put(ctx, key, strings.NewReader("x"), 1, "image/png"); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}

	upload := func(as, path string, want int) *httptest.ResponseRecorder {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", "photo.png")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = part.Write([]byte("png-bytes"))
		_ = writer.Close()
		req := httptest.NewRequest(http.MethodPost, path, &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		env.authorize(t, req, as)
		return env.serve(t, req, want)
	}

	var uploaded map[string]any
	decodeJSONBody(t, upload("pending", "/api/uploads/avatar", http.StatusCreated), &uploaded)
	key, _ := uploaded["key"].(string)
	if !strings.HasPrefix(key, "avatars/"+env.ids["pending"].String()+"/") {
		t.Fatalf("unexpected avatar key %q", key)
	}
	upload("pending", "/api/uploads/article-image", http.StatusSeeOther)
	upload("", "/api/uploads/avatar", http.StatusSeeOther)
	upload("creator", "/api/uploads/article-image", http.StatusCreated)

	env.do(t, "creator", http.MethodPost, "/admin/api/media/cleanup", nil, http.StatusForbidden)

	var report media.Report
	decodeJSONBody(t, env.do(t, "admin", http.MethodPost, "/admin/api/media/cleanup", nil, http.StatusOK), &report)
	if report.TotalFiles != 5 || report.OrphanCount != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	found := false
	for _, orphan := range report.Orphans {
		if orphan == "articles/stale.png" {
			found = true
		}
		if orphan == "avatars/creator.png" || orphan == "articles/cover.png" {
			t.Fatalf("referenced file reported as orphan: %s", orphan)
		}
	}
	if !found {
		t.Fatalf("expected stale file among orphans %v", report.Orphans)
	}

	var deleted struct {
		Deleted []string `json:"deleted"`
		Skipped []string `json:"skipped"`
	}
	decodeJSONBody(t, env.do(t, "admin", http.MethodDelete, "/admin/api/media/cleanup", cleanupDeletePayload{
		Files: []string{"articles/stale.png", "avatars/creator.png"},
	}, http.StatusOK), &deleted)
	if len(deleted.Deleted) != 1 || deleted.Deleted[0] != "articles/stale.png" || len(deleted.Skipped) != 1 {
		t.Fatalf("unexpected delete result %+v", deleted)
	}
}

func TestActivityLogRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "admin", http.MethodPost, "/admin/api/users/"+env.ids["pending"].String()+"/approve", nil, http.StatusOK)

	env.do(t, "creator", http.MethodGet, "/admin/api/logs", nil, http.StatusForbidden)

	var logs struct {
		Logs []activityResponse `json:"logs"`
	}
	decodeJSONBody(t, env.do(t, "admin", http.MethodGet, "/admin/api/logs?limit=10", nil, http.StatusOK), &logs)
	if len(logs.Logs) != 1 || logs.Logs[0].Verb != "account.approve" || logs.Logs[0].ActorID != env.ids["admin"] {
		t.Fatalf("unexpected logs %+v", logs.Logs)
	}
}

func TestRegisterRequiresGate(t *testing.T) {
	if _, err := NewAPI().Router(); err == nil {
		t.Fatal("expected error without a gate")
	}
}
