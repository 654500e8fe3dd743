// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-cms/internal/session"
)

type stubSessions struct {
	flash *session.Flash
	form  map[string]string
}

func (s *stubSessions) PopFlash(context.Context) (session.Flash, bool) {
	if s.flash == nil {
		return session.Flash{}, false
	}
	f := *s.flash
	s.flash = nil
	return f, true
}

func (s *stubSessions) PopForm(context.Context) map[string]string {
	f := s.form
	s.form = nil
	return f
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html":   {Data: []byte(`{{define "base"}}<title>{{.Title}}</title>{{template "layout" .}}{{end}}`)},
		"layouts/public.html": {Data: []byte(`{{define "layout"}}[public]{{template "flash" .}}{{template "content" .}}{{end}}`)},
		"layouts/admin.html":  {Data: []byte(`{{define "layout"}}[admin]{{template "content" .}}{{end}}`)},
		"layouts/auth.html":   {Data: []byte(`{{define "layout"}}[auth]{{template "content" .}}{{end}}`)},
		"partials/flash.html": {Data: []byte(`{{define "flash"}}{{with .Flash}}<p class="{{.Type}}">{{.Message}}</p>{{end}}{{end}}`)},
		"public/home.html":    {Data: []byte(`{{define "content"}}home {{.Data}} {{.CurrentYear}}{{end}}`)},
		"admin/form.html":     {Data: []byte(`{{define "content"}}<input value="{{.FormValue "title" "orig"}}">{{end}}`)},
		"auth/login.html":     {Data: []byte(`{{define "content"}}login{{end}}`)},
		"public/broken.html":  {Data: []byte(`{{define "content"}}{{template "missing" .}}{{end}}`)},
	}
}

func newTestRenderer(t *testing.T, s SessionStore) *Renderer {
	t.Helper()
	r, err := New(Config{TemplatesFS: testFS(), Sessions: s})
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return r
}

func TestNewParsesEverySection(t *testing.T) {
	r := newTestRenderer(t, nil)

	for _, name := range []string{"public/home", "admin/form", "auth/login"} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has("public/missing"))
}

func TestNewRejectsInvalidTemplate(t *testing.T) {
	fsys := testFS()
	fsys["public/bad.html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{.Title`)}

	_, err := New(Config{TemplatesFS: fsys})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "public/bad")
}

func TestRenderWritesPageWithLayout(t *testing.T) {
	sessions := &stubSessions{flash: &session.Flash{Type: "success", Message: "Saved"}}
	r := newTestRenderer(t, sessions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := r.Render(w, req, http.StatusOK, "public/home", TemplateData{Title: "Home", Data: "welcome"})
	require.NoError(t, err)

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "<title>Home</title>")
	assert.Contains(t, body, "[public]")
	assert.Contains(t, body, `<p class="success">Saved</p>`)
	assert.Contains(t, body, "home welcome 2026")

	// Flash is read once.
	w = httptest.NewRecorder()
	require.NoError(t, r.Render(w, req, http.StatusOK, "public/home", TemplateData{}))
	assert.NotContains(t, w.Body.String(), "Saved")
}

func TestRenderRestoresSavedForm(t *testing.T) {
	sessions := &stubSessions{form: map[string]string{"title": "draft"}}
	r := newTestRenderer(t, sessions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/photos/new", nil)
	require.NoError(t, r.Render(w, req, http.StatusBadRequest, "admin/form", TemplateData{}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `value="draft"`)

	w = httptest.NewRecorder()
	require.NoError(t, r.Render(w, req, http.StatusOK, "admin/form", TemplateData{}))
	assert.Contains(t, w.Body.String(), `value="orig"`)
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := newTestRenderer(t, nil)

	w := httptest.NewRecorder()
	err := r.Render(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "public/nope", TemplateData{})
	require.Error(t, err)
	assert.Zero(t, w.Body.Len())
}

func TestRenderExecutionErrorWritesNothing(t *testing.T) {
	r := newTestRenderer(t, nil)

	w := httptest.NewRecorder()
	err := r.Render(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "public/broken", TemplateData{})
	require.Error(t, err)
	assert.Zero(t, w.Body.Len())
}

func TestMarkdownSanitizes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			input:    "Classes **resume** Monday",
			contains: []string{"<strong>resume</strong>"},
		},
		{
			name:     "script stripped",
			input:    "hello <script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
		{
			name:     "javascript link dropped",
			input:    "[x](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "plain link kept",
			input:    "[site](https://example.edu)",
			contains: []string{`href="https://example.edu"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(Markdown(tt.input))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "héll…", Truncate("héllo world", 4))
	assert.True(t, strings.HasSuffix(Truncate(strings.Repeat("a", 50), 10), "…"))
}
