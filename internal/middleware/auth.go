// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// request shaping and response hardening.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/campus-cms/internal/session"
	"github.com/olegiv/campus-cms/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyAdmin holds the authenticated store.Admin.
const ContextKeyAdmin ContextKey = "admin"

// LoginPath is where unauthenticated form requests are sent.
const LoginPath = "/admin/login"

// Authenticator resolves the principal of the current session.
type Authenticator interface {
	Authenticate(ctx context.Context) (store.Admin, error)
}

// RequireAdmin guards HTML admin routes. Requests without a valid session
// are redirected to the login page before the handler, and therefore before
// any request body is parsed.
func RequireAdmin(auth Authenticator) func(http.Handler) http.Handler {
	return requireAdmin(auth, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
	})
}

// RequireAdminAPI guards JSON admin routes and answers 401 instead of
// redirecting.
func RequireAdminAPI(auth Authenticator) func(http.Handler) http.Handler {
	return requireAdmin(auth, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusUnauthorized, "Authentication required")
	})
}

func requireAdmin(auth Authenticator, deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, err := auth.Authenticate(r.Context())
			switch {
			case errors.Is(err, session.ErrUnauthenticated):
				deny(w, r)
				return
			case err != nil:
				slog.Error("session lookup failed", "error", err, "path", r.URL.Path)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdmin, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdmin retrieves the authenticated admin from the request context.
// Returns nil outside RequireAdmin.
func GetAdmin(r *http.Request) *store.Admin {
	admin, ok := r.Context().Value(ContextKeyAdmin).(store.Admin)
	if !ok {
		return nil
	}
	return &admin
}

// GetAdminID returns the authenticated admin's ID, or 0.
func GetAdminID(r *http.Request) int64 {
	if admin := GetAdmin(r); admin != nil {
		return admin.ID
	}
	return 0
}

// WriteJSONError writes {"success":false,"message":...} with status.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
