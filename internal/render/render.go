// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded html/template pages and renders them
// with the session flash and preserved form values.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/olegiv/campus-cms/internal/session"
	"github.com/olegiv/campus-cms/internal/store"
)

// Layouts by page directory. Every page is parsed together with the base
// layout, its section layout and all partials.
var sectionLayouts = map[string]string{
	"public": "layouts/public.html",
	"admin":  "layouts/admin.html",
	"auth":   "layouts/auth.html",
}

const baseLayout = "layouts/base.html"

// SessionStore supplies read-once session values.
type SessionStore interface {
	PopFlash(ctx context.Context) (session.Flash, bool)
	PopForm(ctx context.Context) map[string]string
}

// Renderer handles template rendering with parsed templates cached by name.
type Renderer struct {
	templates map[string]*template.Template
	sessions  SessionStore
	logger    *slog.Logger
	now       func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS fs.FS
	Sessions    SessionStore
	Logger      *slog.Logger
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	r := &Renderer{
		templates: make(map[string]*template.Template),
		sessions:  cfg.Sessions,
		logger:    cfg.Logger,
		now:       time.Now,
	}
	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("listing partials: %w", err)
	}

	for section, layout := range sectionLayouts {
		pages, err := fs.Glob(templatesFS, section+"/*.html")
		if err != nil {
			return fmt.Errorf("listing %s templates: %w", section, err)
		}
		for _, page := range pages {
			name := section + "/" + strings.TrimSuffix(path.Base(page), ".html")

			files := append([]string{baseLayout, layout}, partials...)
			files = append(files, page)

			tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}
	return nil
}

// Has reports whether a template named name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Flash       *session.Flash
	Form        map[string]string
	Admin       *store.Admin
	Path        string
	CurrentYear int
}

// FormValue returns a preserved form value, or fallback when none was saved.
func (d TemplateData) FormValue(field, fallback string) string {
	if v, ok := d.Form[field]; ok {
		return v
	}
	return fallback
}

// Render executes the named page with status. The page is rendered into a
// buffer first so a template error never produces a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = r.now().Year()
	data.Path = req.URL.Path
	if r.sessions != nil {
		if flash, ok := r.sessions.PopFlash(req.Context()); ok {
			data.Flash = &flash
		}
		if form := r.sessions.PopForm(req.Context()); form != nil && data.Form == nil {
			data.Form = form
		}
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
