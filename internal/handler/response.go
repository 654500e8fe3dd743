// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/campus-cms/internal/render"
	"github.com/olegiv/campus-cms/internal/service"
)

// Flash types understood by the templates.
const (
	flashTypeSuccess = "success"
	flashTypeError   = "error"
)

// User-facing messages for failures whose details stay in the logs.
const (
	msgStorageFailed = "The file could not be stored. Please try again."
	msgInternal      = "Something went wrong. Please try again."
)

// Flasher stores one-shot session values for the next render.
type Flasher interface {
	SetFlash(ctx context.Context, flashType, message string)
	SaveForm(ctx context.Context, values map[string]string)
}

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) so the browser follows with a GET.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, f Flasher, url, message, messageType string) {
	f.SetFlash(r.Context(), messageType, message)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, f Flasher, url, message string) {
	flashAndRedirect(w, r, f, url, message, flashTypeError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, f Flasher, url, message string) {
	flashAndRedirect(w, r, f, url, message, flashTypeSuccess)
}

// formFailure describes where a failed form submission goes.
type formFailure struct {
	// FormURL is the form to return to for correctable errors.
	FormURL string
	// ListURL is used when the record no longer exists.
	ListURL string
	// Entity names the record in messages, e.g. "Photo".
	Entity string
	// Values are the submitted fields, restored on the form.
	Values map[string]string
}

// failForm maps a service error to a redirect with a flash message.
// Validation and backend failures keep the submitted values so the form
// can be corrected and resent.
func failForm(w http.ResponseWriter, r *http.Request, f Flasher, ff formFailure, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		f.SaveForm(r.Context(), ff.Values)
		flashError(w, r, f, ff.FormURL, ve.Message())
	case errors.Is(err, service.ErrNotFound):
		flashError(w, r, f, ff.ListURL, ff.Entity+" not found")
	default:
		logFailure(r, ff.Entity, err)
		f.SaveForm(r.Context(), ff.Values)
		flashError(w, r, f, ff.FormURL, failureMessage(err))
	}
}

func failureMessage(err error) string {
	var se *service.StorageError
	if errors.As(err, &se) {
		return msgStorageFailed
	}
	return msgInternal
}

func logFailure(r *http.Request, entity string, err error) {
	slog.Error("request failed",
		"entity", entity,
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
}

// renderPage renders a template and logs failures. Nothing is written
// before a template executes, so a failure still answers with a plain 500.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.TemplateData) {
	if err := renderer.Render(w, r, status, name, data); err != nil {
		logAndInternalError(w, "failed to render template", "template", name, "error", err)
	}
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}
