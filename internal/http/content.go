package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wynotes/go-notes/internal/markdown"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

type previewPayload struct {
	Markdown     string   `json:"markdown"`
	Theme        string   `json:"theme,omitempty"`
	Transformers []string `json:"transformers,omitempty"`
}

type articleSummary struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Category    string    `json:"category,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"`
	Date        time.Time `json:"date,omitempty"`
}

type articleResponse struct {
	articleSummary
	Custom map[string]any `json:"custom,omitempty"`
	*interfaces.RenderedDocument
}

func summarise(doc *interfaces.Document) articleSummary {
	fm := doc.FrontMatter
	return articleSummary{
		Slug:        doc.Slug,
		Title:       fm.Title,
		Description: fm.Description,
		Tags:        fm.Tags,
		Category:    fm.Category,
		CoverImage:  fm.CoverImage,
		Date:        fm.Date,
	}
}

func renderOptions(r *http.Request) interfaces.RenderOptions {
	opts := interfaces.RenderOptions{Theme: strings.TrimSpace(r.URL.Query().Get("theme"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("transformers")); raw != "" {
		opts.Transformers = strings.Split(raw, ",")
	}
	return opts
}

func (api *API) registerMarkdownRoutes(r chi.Router) {
	r.Post("/markdown/preview", api.handleMarkdownPreview)
}

func (api *API) registerPublicRoutes(r chi.Router) {
	r.Get("/articles", api.handleArticleList)
	r.Get("/articles/{slug}", api.handleArticleGet)
	r.Get("/code-themes/{theme}.css", api.handleThemeCSS)
	r.Post("/api/uploads/avatar", api.handleAvatarUpload)
	r.Post("/api/uploads/article-image", api.handleArticleImageUpload)
}

func (api *API) handleMarkdownPreview(w http.ResponseWriter, r *http.Request) {
	if api.markdown == nil {
		unavailable(w)
		return
	}
	if _, err := api.gate.RequireActiveRole(r.Context(), identityFor(r)); err != nil {
		writeError(w, err)
		return
	}
	var payload previewPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	rendered, err := api.markdown.Render(r.Context(), []byte(payload.Markdown), interfaces.RenderOptions{
		Theme:        payload.Theme,
		Transformers: payload.Transformers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (api *API) handleArticleList(w http.ResponseWriter, r *http.Request) {
	if api.markdown == nil {
		unavailable(w)
		return
	}
	docs, err := api.markdown.Documents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]articleSummary, 0, len(docs))
	for _, doc := range docs {
		if doc == nil || !doc.FrontMatter.Published {
			continue
		}
		out = append(out, summarise(doc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": out})
}

func (api *API) handleArticleGet(w http.ResponseWriter, r *http.Request) {
	if api.markdown == nil {
		unavailable(w)
		return
	}
	article, err := api.markdown.Article(r.Context(), chi.URLParam(r, "slug"), renderOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articleResponse{
		articleSummary:   summarise(article.Document),
		Custom:           article.Document.FrontMatter.Custom,
		RenderedDocument: article.Rendered,
	})
}

func (api *API) handleThemeCSS(w http.ResponseWriter, r *http.Request) {
	css, err := markdown.ThemeCSS(chi.URLParam(r, "theme"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(css))
}
