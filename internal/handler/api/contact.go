// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/olegiv/campus-cms/internal/service"
)

// CreateMessage handles POST /api/contact. Both JSON and url-encoded
// bodies are accepted.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var in service.MessageInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		in = service.MessageInput{
			Name:    r.PostFormValue("name"),
			Email:   r.PostFormValue("email"),
			Subject: r.PostFormValue("subject"),
			Message: r.PostFormValue("message"),
		}
	}

	msg, err := h.messages.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, "Message", err)
		return
	}
	WriteSuccess(w, http.StatusCreated, map[string]any{
		"message": "Message sent",
		"id":      msg.ID,
	})
}
