// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/service"
)

type lister[T any] func(context.Context, service.ListOptions) (service.Page[T], error)

func list[T any](w http.ResponseWriter, r *http.Request, entity string, opts service.ListOptions, fn lister[T]) {
	page, err := fn(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, entity, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

func remove(w http.ResponseWriter, r *http.Request, entity string, fn func(context.Context, int64) error) {
	id, ok := parseID(r)
	if !ok {
		WriteError(w, http.StatusNotFound, entity+" not found")
		return
	}
	if err := fn(r.Context(), id); err != nil {
		writeServiceError(w, r, entity, err)
		return
	}
	slog.Info("content deleted", "entity", entity, "id", id, "admin_id", middleware.GetAdminID(r))
	WriteSuccess(w, http.StatusOK, map[string]any{"message": entity + " deleted"})
}

// ListAnnouncements handles GET /api/announcements.
func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	list(w, r, "Announcement", listOptions(r, DefaultAnnouncementsLimit, true), h.content.ListAnnouncements)
}

// ListPhotos handles GET /api/photos.
func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	list(w, r, "Photo", listOptions(r, DefaultPhotosLimit, true), h.content.ListPhotos)
}

// ListVideos handles GET /api/videos.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	list(w, r, "Video", listOptions(r, DefaultVideosLimit, true), h.content.ListVideos)
}

// AdminListAnnouncements handles GET /api/admin/announcements, including
// inactive ones.
func (h *Handler) AdminListAnnouncements(w http.ResponseWriter, r *http.Request) {
	list(w, r, "Announcement", listOptions(r, adminLimit, false), h.content.ListAnnouncements)
}

// AdminListPhotos handles GET /api/admin/photos.
func (h *Handler) AdminListPhotos(w http.ResponseWriter, r *http.Request) {
	list(w, r, "Photo", listOptions(r, adminLimit, false), h.content.ListPhotos)
}

// AdminListVideos handles GET /api/admin/videos.
func (h *Handler) AdminListVideos(w http.ResponseWriter, r *http.Request) {
	list(w, r, "Video", listOptions(r, adminLimit, false), h.content.ListVideos)
}

// DeleteAnnouncement handles DELETE /api/admin/announcements/{id}.
func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	remove(w, r, "Announcement", h.content.DeleteAnnouncement)
}

// DeletePhoto handles DELETE /api/admin/photos/{id}.
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	remove(w, r, "Photo", h.content.DeletePhoto)
}

// DeleteVideo handles DELETE /api/admin/videos/{id}.
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	remove(w, r, "Video", h.content.DeleteVideo)
}
