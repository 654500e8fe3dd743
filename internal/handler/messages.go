// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/render"
	"github.com/olegiv/campus-cms/internal/service"
)

const entityMessage = "Message"

// MessagesHandler serves the admin contact message inbox.
type MessagesHandler struct {
	renderer *render.Renderer
	flash    Flasher
	messages *service.MessageService
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(renderer *render.Renderer, f Flasher, messages *service.MessageService) *MessagesHandler {
	return &MessagesHandler{renderer: renderer, flash: f, messages: messages}
}

// List handles GET /admin/messages.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.List(r.Context(), service.MaxListLimit)
	if err != nil {
		logAndInternalError(w, "failed to list messages", "error", err)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/messages", render.TemplateData{
		Title: "Messages",
		Data:  messages,
		Admin: middleware.GetAdmin(r),
	})
}

// Delete handles DELETE /admin/messages/{id} and POST /admin/messages/{id}/delete.
func (h *MessagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.flash, redirectAdminMessages, entityMessage+" not found")
		return
	}

	if err := h.messages.Delete(r.Context(), id); err != nil {
		failForm(w, r, h.flash, formFailure{
			FormURL: redirectAdminMessages,
			ListURL: redirectAdminMessages,
			Entity:  entityMessage,
		}, err)
		return
	}

	slog.Info("message deleted", "id", id, "admin_id", middleware.GetAdminID(r))
	flashSuccess(w, r, h.flash, redirectAdminMessages, entityMessage+" deleted")
}
