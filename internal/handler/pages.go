// Package handler contains the HTTP request handlers: the page handlers that
// render HTML and the API handlers that speak JSON. Handlers are glue — they
// parse requests, call services, and write responses; business logic lives in
// the service layer.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/sakif/birthday-board/internal/auth"
)

// PageHandler renders the two pages of the app: the login page and the
// dashboard. Templates are parsed once at startup and reused per request.
//
// The pages are pure view: the dashboard's contact list, sync button and
// logout link all talk to the JSON endpoints — no business logic renders
// server-side beyond "is this browser logged in".
type PageHandler struct {
	index     *template.Template
	dashboard *template.Template
	logger    *slog.Logger
}

// NewPageHandler parses the HTML templates from templateDir.
//
// base.html defines the page skeleton with a {{template "content" .}}
// placeholder; index.html and dashboard.html each {{define}} a content
// block. Each page gets its own template set — both define "content", and
// within one set the second definition would silently win.
func NewPageHandler(templateDir string, logger *slog.Logger) (*PageHandler, error) {
	base := filepath.Join(templateDir, "base.html")

	index, err := template.ParseFiles(base, filepath.Join(templateDir, "index.html"))
	if err != nil {
		return nil, err
	}
	dashboard, err := template.ParseFiles(base, filepath.Join(templateDir, "dashboard.html"))
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		index:     index,
		dashboard: dashboard,
		logger:    logger,
	}, nil
}

// HandleIndex serves the login page.
//
// HTTP: GET /
// An already-authenticated browser is sent straight to the dashboard (the
// OptionalSession middleware decodes the cookie if one is present).
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	h.render(w, h.index, map[string]interface{}{
		"Title": "Birthday Board — Sign in",
	})
}

// HandleDashboard serves the dashboard page.
//
// HTTP: GET /dashboard
// An anonymous browser is bounced to the login page rather than shown a 401 —
// this is a navigation, not an API call.
func (h *PageHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SessionFromContext(r.Context()); !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.render(w, h.dashboard, map[string]interface{}{
		"Title": "Birthday Board — Upcoming birthdays",
	})
}

func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
