// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session manages administrator sessions on top of scs with the
// SQLite store. The sessions table is authoritative: a cookie whose token
// has no row is treated as a fresh, unauthenticated session.
package session

import (
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/campus-cms/internal/auth"
	"github.com/olegiv/campus-cms/internal/store"
)

// CookieName is the name of the session cookie.
const CookieName = "campus_session"

const (
	keyAdminID   = "admin_id"
	keyFlash     = "flash"
	keyFlashType = "flash_type"
	keyForm      = "form"
)

// ErrUnauthenticated is returned when the session carries no valid principal.
var ErrUnauthenticated = errors.New("not authenticated")

func init() {
	gob.Register(map[string]string{})
}

// Config holds session timing and cookie settings.
type Config struct {
	// IdleTimeout is the sliding expiry, extended on every request.
	IdleTimeout time.Duration
	// Lifetime is the absolute cap from login.
	Lifetime time.Duration
	// Secure marks the cookie Secure; disable only for local development.
	Secure bool
}

// Credentials is the part of the credential store the manager needs.
type Credentials interface {
	Verify(ctx context.Context, username, password string) (store.Admin, error)
	Admin(ctx context.Context, id int64) (store.Admin, error)
}

// Manager wraps scs.SessionManager with login, logout and flash helpers.
type Manager struct {
	*scs.SessionManager
	creds Credentials
}

// New creates a session manager persisting sessions in db.
func New(db *sql.DB, creds Credentials, cfg Config) *Manager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.IdleTimeout = cfg.IdleTimeout
	if cfg.IdleTimeout <= 0 {
		sm.IdleTimeout = 2 * time.Hour
	}
	sm.Lifetime = cfg.Lifetime
	if cfg.Lifetime <= 0 {
		sm.Lifetime = 24 * time.Hour
	}

	sm.Cookie.Name = CookieName
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = cfg.Secure

	return &Manager{SessionManager: sm, creds: creds}
}

// Login verifies the credentials and binds the principal to a fresh token.
func (m *Manager) Login(ctx context.Context, username, password string) (store.Admin, error) {
	admin, err := m.creds.Verify(ctx, username, password)
	if err != nil {
		return store.Admin{}, err
	}

	if err := m.RenewToken(ctx); err != nil {
		return store.Admin{}, fmt.Errorf("renewing session token: %w", err)
	}
	m.Put(ctx, keyAdminID, admin.ID)

	return admin, nil
}

// Authenticate resolves the principal bound to the current session. A
// session whose principal has disappeared is destroyed.
func (m *Manager) Authenticate(ctx context.Context) (store.Admin, error) {
	id := m.GetInt64(ctx, keyAdminID)
	if id == 0 {
		return store.Admin{}, ErrUnauthenticated
	}

	admin, err := m.creds.Admin(ctx, id)
	if errors.Is(err, auth.ErrAdminNotFound) {
		_ = m.Destroy(ctx)
		return store.Admin{}, ErrUnauthenticated
	}
	if err != nil {
		return store.Admin{}, err
	}
	return admin, nil
}

// Logout deletes the server-side record. Calling it on an already
// destroyed session is not an error.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

// Flash is a one-shot message shown on the next render.
type Flash struct {
	Type    string
	Message string
}

// SetFlash stores a flash message for the next request.
func (m *Manager) SetFlash(ctx context.Context, flashType, message string) {
	m.Put(ctx, keyFlash, message)
	m.Put(ctx, keyFlashType, flashType)
}

// PopFlash returns and clears the pending flash message, if any.
func (m *Manager) PopFlash(ctx context.Context) (Flash, bool) {
	msg := m.PopString(ctx, keyFlash)
	typ := m.PopString(ctx, keyFlashType)
	if msg == "" {
		return Flash{}, false
	}
	if typ == "" {
		typ = "info"
	}
	return Flash{Type: typ, Message: msg}, true
}

// SaveForm keeps submitted form values for the next render of the form.
func (m *Manager) SaveForm(ctx context.Context, values map[string]string) {
	m.Put(ctx, keyForm, values)
}

// PopForm returns and clears previously saved form values.
func (m *Manager) PopForm(ctx context.Context) map[string]string {
	values, _ := m.Pop(ctx, keyForm).(map[string]string)
	return values
}
