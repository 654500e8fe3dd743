// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-cms/internal/auth"
	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/render"
	"github.com/olegiv/campus-cms/internal/service"
	"github.com/olegiv/campus-cms/internal/session"
	"github.com/olegiv/campus-cms/internal/testutil"
	"github.com/olegiv/campus-cms/web"
)

const (
	testUsername = "registrar"
	testPassword = "correct horse battery"
)

type testApp struct {
	server  *httptest.Server
	client  *http.Client
	content *service.ContentService
	blobs   *testutil.MemoryBackend
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	logger := testutil.TestLoggerSilent()

	creds := auth.NewCredentialStore(db, logger)
	require.NoError(t, creds.Bootstrap(context.Background(), auth.BootstrapConfig{
		Username: testUsername,
		Password: testPassword,
		Email:    "registrar@example.edu",
	}))
	sessions := session.New(db, creds, session.Config{})

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templates, Sessions: sessions, Logger: logger})
	require.NoError(t, err)

	gw, backend := testutil.NewMemoryGateway()
	content := service.NewContentService(db, gw, logger)

	router := NewRouter(RouterConfig{
		Renderer: renderer,
		Sessions: sessions,
		Content:  content,
		Messages: service.NewMessageService(db, logger),
		Events:   service.NewEventService(db),
		Health:   NewHealthHandler(db, HealthConfig{Auth: sessions}),
		SEO:      NewSEOHandler(content, "https://college.example.edu", false),
		Security: middleware.DefaultSecurityHeadersConfig(true),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		content: content,
		blobs:   backend,
	}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *testApp) postForm(t *testing.T, path string, values url.Values) *http.Response {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, values)
	require.NoError(t, err)
	readBody(t, resp)
	return resp
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	resp := a.postForm(t, "/admin/login", url.Values{
		"username": {testUsername},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin"},
		{http.MethodGet, "/admin/photos"},
		{http.MethodGet, "/admin/announcements/new"},
		{http.MethodPost, "/admin/videos"},
		{http.MethodPost, "/admin/photos/1/delete"},
		{http.MethodGet, "/admin/messages"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, app.server.URL+tt.path, nil)
			require.NoError(t, err)

			resp, _ := app.do(t, req)
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, middleware.LoginPath, resp.Header.Get("Location"))
		})
	}
}

func TestAdminAPIRequiresSession(t *testing.T) {
	app := newTestApp(t)

	req, err := http.NewRequest(http.MethodDelete, app.server.URL+"/api/admin/photos/1", nil)
	require.NoError(t, err)
	resp, body := app.do(t, req)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.Contains(t, body, `"success":false`)
}

func TestLoginFailureKeepsUsername(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/admin/login", url.Values{
		"username": {testUsername},
		"password": {"wrong password"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))

	resp, body := app.get(t, "/admin/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Invalid username or password")
	assert.Contains(t, body, `value="`+testUsername+`"`)

	// Still anonymous.
	resp, _ = app.get(t, "/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLoginAndLogout(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, body := app.get(t, "/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome back, "+testUsername)
	assert.Contains(t, body, "Dashboard")

	// The login page sends signed-in admins to the dashboard.
	resp, _ = app.get(t, "/admin/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = app.postForm(t, "/admin/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))

	resp, body = app.get(t, "/admin/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "You have been logged out")

	resp, _ = app.get(t, "/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestCreateAnnouncementFlow(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.postForm(t, "/admin/announcements", url.Values{
		"title":    {"Enrollment opens"},
		"content":  {"Enrollment for the **spring** term opens on Monday."},
		"isActive": {"true"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/announcements", resp.Header.Get("Location"))

	resp, body := app.get(t, "/admin/announcements")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Announcement created")
	assert.Contains(t, body, "Enrollment opens")

	resp, body = app.get(t, "/announcements")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<strong>spring</strong>")
}

func TestCreateAnnouncementValidationRestoresForm(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.postForm(t, "/admin/announcements", url.Values{
		"title":   {""},
		"content": {"Body kept after the failed submit"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/announcements/new", resp.Header.Get("Location"))

	resp, body := app.get(t, "/admin/announcements/new")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "is required")
	assert.Contains(t, body, "Body kept after the failed submit")
	// The unchecked box is restored as unchecked.
	assert.NotContains(t, body, `value="true" checked`)

	page, err := app.content.ListAnnouncements(context.Background(), service.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestUpdateAnnouncementWithMethodOverride(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	created, err := app.content.CreateAnnouncement(context.Background(), service.AnnouncementInput{
		Title:   ptr("Library hours"),
		Content: ptr("Open until 8pm."),
	}, 0)
	require.NoError(t, err)

	resp, body := app.get(t, sprintfID("/admin/announcements/%d/edit", created.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Library hours")
	assert.Contains(t, body, sprintfID("/admin/announcements/%d?_method=PUT", created.ID))

	resp = app.postForm(t, sprintfID("/admin/announcements/%d?_method=PUT", created.ID), url.Values{
		"title":   {"Library hours extended"},
		"content": {"Open until 10pm."},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	got, err := app.content.GetAnnouncement(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Library hours extended", got.Title)
	assert.False(t, got.IsActive)
}

func TestEditMissingRecordRedirectsToList(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, _ := app.get(t, "/admin/videos/999/edit")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/videos", resp.Header.Get("Location"))

	_, body := app.get(t, "/admin/videos")
	assert.Contains(t, body, "Video not found")
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	b, err := io.ReadAll(testutil.JPEGUpload("x.jpg").Reader)
	require.NoError(t, err)
	return b
}

func TestCreatePhotoUpload(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	body, contentType := multipartBody(t, map[string]string{
		"title":       "Campus in autumn",
		"description": "The main quad.",
		"isFeatured":  "true",
	}, "image", "quad.jpg", jpegBytes(t))

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/admin/photos", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, _ := app.do(t, req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/photos", resp.Header.Get("Location"))
	assert.Len(t, app.blobs.Keys(), 1)

	page, err := app.content.ListPhotos(context.Background(), service.ListOptions{PublicOnly: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Campus in autumn", page.Items[0].Title)
	assert.True(t, page.Items[0].IsFeatured)
}

func TestCreatePhotoRejectsNonImage(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	body, contentType := multipartBody(t, map[string]string{
		"title":       "Not a photo",
		"description": "Plain text.",
	}, "image", "notes.jpg", []byte("just some text, not media\n"))

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/admin/photos", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, _ := app.do(t, req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/photos/new", resp.Header.Get("Location"))
	assert.Empty(t, app.blobs.Keys())

	_, page := app.get(t, "/admin/photos/new")
	assert.Contains(t, page, "Not a photo")
}

func TestDeleteWithMethodOverride(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	photo, err := app.content.CreatePhoto(context.Background(), service.PhotoInput{
		Title:       ptr("Old photo"),
		Description: ptr("To be removed."),
		Image:       testutil.JPEGUpload("old.jpg"),
	}, 0)
	require.NoError(t, err)
	require.Len(t, app.blobs.Keys(), 1)

	resp := app.postForm(t, sprintfID("/admin/photos/%d", photo.ID), url.Values{"_method": {"DELETE"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/photos", resp.Header.Get("Location"))

	_, err = app.content.GetPhoto(context.Background(), photo.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Empty(t, app.blobs.Keys())
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)

	_, err := app.content.CreateAnnouncement(context.Background(), service.AnnouncementInput{
		Title:    ptr("Hidden notice"),
		Content:  ptr("Not yet public."),
		IsActive: ptr(false),
	}, 0)
	require.NoError(t, err)

	tests := []struct {
		path     string
		contains string
	}{
		{"/", "<html"},
		{"/about", "About"},
		{"/contact", `name="email"`},
		{"/gallery", "Gallery"},
		{"/videos", "Videos"},
		{"/announcements", "Announcements"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := app.get(t, tt.path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
			assert.Contains(t, body, tt.contains)
			assert.NotContains(t, body, "Hidden notice")
		})
	}
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/no-such-page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "does not exist")

	resp, body = app.get(t, "/api/no-such-endpoint")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"success":false`)
}

func TestContactFormSubmission(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/contact", url.Values{
		"name":    {"Ana"},
		"email":   {"not-an-email"},
		"subject": {"Admissions"},
		"message": {"When is the deadline?"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/contact", resp.Header.Get("Location"))

	_, body := app.get(t, "/contact")
	assert.Contains(t, body, "valid email address")
	assert.Contains(t, body, "When is the deadline?")

	resp = app.postForm(t, "/contact", url.Values{
		"name":    {"Ana"},
		"email":   {"ana@example.com"},
		"subject": {"Admissions"},
		"message": {"When is the deadline?"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = app.get(t, "/contact")
	assert.Contains(t, body, "Thank you for your message")

	app.login(t)
	_, body = app.get(t, "/admin/messages")
	assert.Contains(t, body, "ana@example.com")
}

func TestAPIListAndContact(t *testing.T) {
	app := newTestApp(t)

	_, err := app.content.CreateAnnouncement(context.Background(), service.AnnouncementInput{
		Title:   ptr("Graduation"),
		Content: ptr("Ceremony on June 12."),
	}, 0)
	require.NoError(t, err)

	resp, body := app.get(t, "/api/announcements")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Graduation", page.Items[0].Title)

	resp, _ = app.get(t, "/api/photos?cursor=garbage")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/contact",
		strings.NewReader(`{"name":"Ben","email":"ben@example.com","subject":"Tour","message":"Can I visit?"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, body = app.do(t, req)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, `"success":true`)

	req, err = http.NewRequest(http.MethodPost, app.server.URL+"/api/contact",
		strings.NewReader(`{"name":"Ben"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, body = app.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var failure struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &failure))
	assert.Contains(t, failure.Errors, "email")
	assert.Contains(t, failure.Errors, "message")
}

func TestAdminAPIDelete(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	video, err := app.content.CreateVideo(context.Background(), service.VideoInput{
		Title:       ptr("Welcome"),
		Description: ptr("Orientation week."),
		Source:      ptr("upload"),
		Video:       testutil.MP4Upload("welcome.mp4"),
	}, 0)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete, app.server.URL+sprintfID("/api/admin/videos/%d", video.ID), nil)
	require.NoError(t, err)
	resp, body := app.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Video deleted")

	resp, _ = app.do(t, mustRequest(t, http.MethodDelete, app.server.URL+sprintfID("/api/admin/videos/%d", video.ID)))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func mustRequest(t *testing.T, method, target string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	return req
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, body)

	resp, body = app.get(t, "/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"alive"}`, body)

	app.login(t)
	_, body = app.get(t, "/health")
	var status HealthStatus
	require.NoError(t, json.Unmarshal([]byte(body), &status))
	assert.Equal(t, statusHealthy, status.Status)
	assert.Contains(t, status.Checks, "database")
}

func TestRobotsAndSitemap(t *testing.T) {
	app := newTestApp(t)

	_, err := app.content.CreateAnnouncement(context.Background(), service.AnnouncementInput{
		Title:   ptr("Exam schedule"),
		Content: ptr("Posted on the notice board."),
	}, 0)
	require.NoError(t, err)

	resp, body := app.get(t, "/robots.txt")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Disallow: /admin")
	assert.Contains(t, body, "Sitemap: https://college.example.edu/sitemap.xml")

	resp, body = app.get(t, "/sitemap.xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")
	assert.Contains(t, body, "<loc>https://college.example.edu/announcements</loc>")
	assert.Contains(t, body, "<lastmod>")
	assert.NotContains(t, body, "/admin")
}

func TestSecurityHeaders(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.get(t, "/about")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
}

func ptr[T any](v T) *T { return &v }
