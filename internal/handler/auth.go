// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/campus-cms/internal/auth"
	"github.com/olegiv/campus-cms/internal/metrics"
	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/render"
	"github.com/olegiv/campus-cms/internal/session"
)

// Login outcomes recorded in metrics.
const (
	loginOK        = "ok"
	loginInvalid   = "invalid"
	loginThrottled = "throttled"
)

// AuthHandler handles authentication routes.
type AuthHandler struct {
	renderer        *render.Renderer
	sessions        *session.Manager
	loginProtection *middleware.LoginProtection
	metrics         *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler. lp and m may be nil.
func NewAuthHandler(renderer *render.Renderer, sm *session.Manager, lp *middleware.LoginProtection, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		renderer:        renderer,
		sessions:        sm,
		loginProtection: lp,
		metrics:         m,
	}
}

// LoginForm renders the login page. Signed-in admins go to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.Authenticate(r.Context()); err == nil {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "auth/login", render.TemplateData{
		Title: "Admin Login",
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseBody(w, r, maxFormBody, "form"); err != nil {
		flashError(w, r, h.sessions, redirectLogin, "Invalid form data")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		flashError(w, r, h.sessions, redirectLogin, "Username and password are required")
		return
	}

	key := auth.NormalizeUsername(username)
	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsLocked(key); locked {
			h.metrics.ObserveLogin(loginThrottled)
			slog.Warn("login attempt on locked account", "username", key)
			flashError(w, r, h.sessions, redirectLogin,
				fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	admin, err := h.sessions.Login(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.metrics.ObserveLogin(loginInvalid)
		slog.Warn("login failed", "username", key)
		h.sessions.SaveForm(r.Context(), map[string]string{"username": username})
		flashError(w, r, h.sessions, redirectLogin, h.failedLoginMessage(key))
		return
	}
	if err != nil {
		slog.Error("login error", "error", err)
		flashError(w, r, h.sessions, redirectLogin, msgInternal)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccess(key)
	}
	h.metrics.ObserveLogin(loginOK)
	slog.Info("admin logged in", "admin_id", admin.ID)

	flashSuccess(w, r, h.sessions, redirectAdmin, "Welcome back, "+admin.Username)
}

// failedLoginMessage records the failure and words the flash. The message
// never says whether the username exists.
func (h *AuthHandler) failedLoginMessage(key string) string {
	const invalid = "Invalid username or password"
	if h.loginProtection == nil {
		return invalid
	}
	if locked, d := h.loginProtection.RecordFailure(key); locked {
		return fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(d))
	}
	if remaining := h.loginProtection.RemainingAttempts(key); remaining > 0 && remaining <= 2 {
		return fmt.Sprintf("%s. %d attempts remaining.", invalid, remaining)
	}
	return invalid
}

// Logout destroys the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		slog.Error("logout failed", "error", err)
	}
	// The old session is gone; the flash goes into a fresh one.
	flashSuccess(w, r, h.sessions, redirectLogin, "You have been logged out")
}

// formatDuration formats a lockout duration for display, rounded up to
// whole minutes.
func formatDuration(d time.Duration) string {
	minutes := int((d + time.Minute - 1) / time.Minute)
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
