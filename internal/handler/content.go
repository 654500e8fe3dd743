// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/render"
	"github.com/olegiv/campus-cms/internal/service"
)

// adminPageSize is the page size of the admin content tables.
const adminPageSize = 20

// FormData is passed to the create and edit templates. Item is nil on the
// create form.
type FormData struct {
	Item   any
	Action string
	IsEdit bool
}

// ListData is passed to the admin list templates.
type ListData[T any] struct {
	Items      []T
	NextCursor string
}

// ContentHandler serves the admin forms and JSON endpoints for
// announcements, photos and videos.
type ContentHandler struct {
	renderer *render.Renderer
	flash    Flasher
	content  *service.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(renderer *render.Renderer, f Flasher, content *service.ContentService) *ContentHandler {
	return &ContentHandler{
		renderer: renderer,
		flash:    f,
		content:  content,
	}
}

func (h *ContentHandler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	renderPage(w, r, h.renderer, http.StatusOK, name, render.TemplateData{
		Title: title,
		Data:  data,
		Admin: middleware.GetAdmin(r),
	})
}

// renderList renders an admin table page.
func renderList[T any](h *ContentHandler, w http.ResponseWriter, r *http.Request, name, title string,
	list func(context.Context, service.ListOptions) (service.Page[T], error)) {
	page, err := list(r.Context(), listOptions(r, adminPageSize, false))
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		// Stale or hand-edited cursor: start over.
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}
	if err != nil {
		logAndInternalError(w, "failed to list content", "template", name, "error", err)
		return
	}
	h.render(w, r, name, title, ListData[T]{Items: page.Items, NextCursor: page.NextCursor})
}

// renderEdit loads the record for an edit form.
func renderEdit[T any](h *ContentHandler, w http.ResponseWriter, r *http.Request, name, title, entity, listURL, action string,
	get func(context.Context, int64) (T, error)) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.flash, listURL, entity+" not found")
		return
	}

	item, err := get(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		flashError(w, r, h.flash, listURL, entity+" not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "failed to load "+entity, "id", id, "error", err)
		return
	}

	h.render(w, r, name, title, FormData{Item: item, Action: sprintfID(action, id), IsEdit: true})
}

// deleteForm handles the form delete routes.
func (h *ContentHandler) deleteForm(w http.ResponseWriter, r *http.Request, entity, listURL string,
	del func(context.Context, int64) error) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.flash, listURL, entity+" not found")
		return
	}

	if err := del(r.Context(), id); err != nil {
		failForm(w, r, h.flash, formFailure{FormURL: listURL, ListURL: listURL, Entity: entity}, err)
		return
	}

	slog.Info("content deleted", "entity", entity, "id", id, "admin_id", middleware.GetAdminID(r))
	flashSuccess(w, r, h.flash, listURL, entity+" deleted")
}
