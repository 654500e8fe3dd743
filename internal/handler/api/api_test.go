// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-cms/internal/service"
	"github.com/olegiv/campus-cms/internal/testutil"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        &service.ValidationError{Fields: map[string]string{"title": "is required"}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Title is required",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("lookup: %w", service.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "Photo not found",
		},
		{
			name:       "storage",
			err:        &service.StorageError{Op: "upload", Err: errors.New("bucket unreachable")},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "The file could not be stored. Please try again.",
		},
		{
			name:       "persistence",
			err:        &service.PersistenceError{Op: "insert photo", Err: errors.New("disk I/O error")},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/photos", nil)

			writeServiceError(rec, req, "Photo", tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.NotContains(t, rec.Body.String(), "bucket unreachable")
			assert.NotContains(t, rec.Body.String(), "disk I/O error")
		})
	}
}

func TestWriteValidationErrorListsFields(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, &service.ValidationError{Fields: map[string]string{
		"email":   "must be a valid email address",
		"message": "is required",
	}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "is required", errs["message"])
	assert.Equal(t, "must be a valid email address", errs["email"])
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusCreated, map[string]any{"id": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"id":7}`, rec.Body.String())
}

func TestListOptions(t *testing.T) {
	tests := []struct {
		query     string
		wantLimit int
		wantCur   string
	}{
		{"", DefaultPhotosLimit, ""},
		{"?limit=5", 5, ""},
		{"?limit=-3", DefaultPhotosLimit, ""},
		{"?limit=abc&cursor=xyz", DefaultPhotosLimit, "xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/photos"+tt.query, nil)
			opts := listOptions(req, DefaultPhotosLimit, true)
			assert.Equal(t, tt.wantLimit, opts.Limit)
			assert.Equal(t, tt.wantCur, opts.Cursor)
			assert.True(t, opts.PublicOnly)
		})
	}
}

func newTestHandler(t *testing.T) (*Handler, *service.ContentService) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	gw, _ := testutil.NewMemoryGateway()
	content := service.NewContentService(db, gw, testutil.TestLoggerSilent())
	return NewHandler(content, service.NewMessageService(db, testutil.TestLoggerSilent())), content
}

func TestListAnnouncementsHidesInactive(t *testing.T) {
	h, content := newTestHandler(t)
	ctx := context.Background()

	active, inactive := true, false
	for _, in := range []service.AnnouncementInput{
		{Title: ptr("Open day"), Content: ptr("Saturday."), IsActive: &active},
		{Title: ptr("Draft"), Content: ptr("Not ready."), IsActive: &inactive},
	} {
		_, err := content.CreateAnnouncement(ctx, in, 0)
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	h.ListAnnouncements(rec, httptest.NewRequest(http.MethodGet, "/api/announcements", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Open day")
	assert.NotContains(t, rec.Body.String(), "Draft")

	rec = httptest.NewRecorder()
	h.AdminListAnnouncements(rec, httptest.NewRequest(http.MethodGet, "/api/admin/announcements", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Draft")
}

func TestCreateMessage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
	}{
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"name":"Ana","email":"ana@example.com","subject":"Fees","message":"What are the fees?"}`,
			wantStatus:  http.StatusCreated,
		},
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        "name=Ana&email=ana%40example.com&subject=Fees&message=What+are+the+fees%3F",
			wantStatus:  http.StatusCreated,
		},
		{
			name:        "malformed json",
			contentType: "application/json",
			body:        `{"name":`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "invalid email",
			contentType: "application/json",
			body:        `{"name":"Ana","email":"nope","subject":"Fees","message":"Hi"}`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "too large",
			contentType: "application/json",
			body:        `{"name":"` + strings.Repeat("a", maxJSONBody) + `"}`,
			wantStatus:  http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()

			h.CreateMessage(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				body := decode(t, rec)
				assert.Equal(t, true, body["success"])
				assert.NotZero(t, body["id"])
			}
		})
	}
}

func TestDeleteRejectsBadID(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/photos/abc", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "abc")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.DeletePhoto(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func ptr[T any](v T) *T { return &v }
