// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/olegiv/campus-cms/internal/auth"
	"github.com/olegiv/campus-cms/internal/testutil"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	creds := auth.NewCredentialStore(db, testutil.TestLoggerSilent())
	if err := creds.Bootstrap(context.Background(), auth.BootstrapConfig{
		Username: "admin",
		Password: "correct horse",
		Email:    "admin@example.edu",
	}); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	return New(db, creds, Config{Secure: true})
}

// load returns a context carrying the session for token, as LoadAndSave would.
func load(t *testing.T, m *Manager, token string) context.Context {
	t.Helper()
	ctx, err := m.Load(context.Background(), token)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return ctx
}

func TestNew_Settings(t *testing.T) {
	m := newTestManager(t)

	if m.Cookie.Name != CookieName {
		t.Errorf("Cookie.Name = %q, want %q", m.Cookie.Name, CookieName)
	}
	if !m.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if !m.Cookie.Secure {
		t.Error("expected Cookie.Secure = true")
	}
	if m.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", m.Cookie.SameSite)
	}
	if m.IdleTimeout != 2*time.Hour {
		t.Errorf("IdleTimeout = %v, want 2h", m.IdleTimeout)
	}
	if m.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", m.Lifetime)
	}
	if m.Store == nil {
		t.Error("expected store to be initialized")
	}
}

func TestLoginAuthenticateLogout(t *testing.T) {
	m := newTestManager(t)

	ctx := load(t, m, "")
	admin, err := m.Login(ctx, "Admin", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	token, _, err := m.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	ctx = load(t, m, token)
	got, err := m.Authenticate(ctx)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != admin.ID {
		t.Errorf("principal = %d, want %d", got.ID, admin.ID)
	}

	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("second Logout: %v", err)
	}

	// The old token no longer has a server-side record.
	if _, err := m.Authenticate(load(t, m, token)); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("after logout err = %v, want ErrUnauthenticated", err)
	}
}

func TestAuthenticate_UnknownTokens(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"never issued", "3q2-7wAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
		{"garbage", "not a token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Authenticate(load(t, m, tt.token))
			if !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("err = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	m := newTestManager(t)

	ctx := load(t, m, "")
	if _, err := m.Login(ctx, "admin", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := m.Authenticate(ctx); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("failed login must not authenticate the session, err = %v", err)
	}
}

func TestLogin_RenewsToken(t *testing.T) {
	m := newTestManager(t)

	ctx := load(t, m, "")
	m.Put(ctx, "visited", true)
	before, _, err := m.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	ctx = load(t, m, before)
	if _, err := m.Login(ctx, "admin", "correct horse"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	after, _, err := m.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if after == before {
		t.Error("login should issue a new token")
	}
	if _, err := m.Authenticate(load(t, m, before)); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("pre-login token should be dead, err = %v", err)
	}
}

func TestFlash_ReadOnce(t *testing.T) {
	m := newTestManager(t)

	ctx := load(t, m, "")
	m.SetFlash(ctx, "success", "Photo uploaded")

	f, ok := m.PopFlash(ctx)
	if !ok {
		t.Fatal("expected a flash message")
	}
	if f.Type != "success" || f.Message != "Photo uploaded" {
		t.Errorf("flash = %+v", f)
	}
	if _, ok := m.PopFlash(ctx); ok {
		t.Error("flash should be cleared after the first read")
	}
}

func TestForm_Preserved(t *testing.T) {
	m := newTestManager(t)

	ctx := load(t, m, "")
	m.SaveForm(ctx, map[string]string{"title": "Draft"})
	token, _, err := m.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	ctx = load(t, m, token)
	values := m.PopForm(ctx)
	if values["title"] != "Draft" {
		t.Errorf("values = %v", values)
	}
	if values := m.PopForm(ctx); values != nil {
		t.Errorf("second PopForm = %v, want nil", values)
	}
}
