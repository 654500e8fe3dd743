// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/service"
)

// Default page sizes of the public listings.
const (
	DefaultAnnouncementsLimit = 10
	DefaultPhotosLimit        = 12
	DefaultVideosLimit        = 6

	adminLimit = service.DefaultListLimit
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 64 << 10

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	content  *service.ContentService
	messages *service.MessageService
}

// NewHandler creates a new API handler.
func NewHandler(content *service.ContentService, messages *service.MessageService) *Handler {
	return &Handler{content: content, messages: messages}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess writes data with "success": true added.
func WriteSuccess(w http.ResponseWriter, statusCode int, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	WriteJSON(w, statusCode, data)
}

// WriteError writes {"success":false,"message":...}.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	middleware.WriteJSONError(w, statusCode, message)
}

// WriteValidationError writes a 400 response listing the field errors.
func WriteValidationError(w http.ResponseWriter, ve *service.ValidationError) {
	WriteJSON(w, http.StatusBadRequest, map[string]any{
		"success": false,
		"message": ve.Message(),
		"errors":  ve.Fields,
	})
}

// writeServiceError maps the service error taxonomy to a status code.
// Backend failure details are logged, never returned.
func writeServiceError(w http.ResponseWriter, r *http.Request, entity string, err error) {
	var ve *service.ValidationError
	var se *service.StorageError
	switch {
	case errors.As(err, &ve):
		WriteValidationError(w, ve)
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, http.StatusNotFound, entity+" not found")
	case errors.As(err, &se):
		slog.Error("api storage failure", "entity", entity, "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, "The file could not be stored. Please try again.")
	default:
		slog.Error("api request failed", "entity", entity, "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// listOptions reads ?limit= and ?cursor=. A malformed limit falls back to
// defaultLimit.
func listOptions(r *http.Request, defaultLimit int, publicOnly bool) service.ListOptions {
	q := r.URL.Query()
	limit := defaultLimit
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		limit = n
	}
	return service.ListOptions{PublicOnly: publicOnly, Limit: limit, Cursor: q.Get("cursor")}
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
