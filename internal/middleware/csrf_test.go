// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var testAuthKey = []byte("12345678901234567890123456789012")

func TestDefaultCSRFConfig(t *testing.T) {
	dev := DefaultCSRFConfig(testAuthKey, true, "campus.local:8080")
	want := []string{"campus.local:8080", "localhost:8080", "127.0.0.1:8080"}
	if strings.Join(dev.TrustedOrigins, ",") != strings.Join(want, ",") {
		t.Errorf("TrustedOrigins = %v, want %v", dev.TrustedOrigins, want)
	}
	for _, origin := range dev.TrustedOrigins {
		if strings.HasPrefix(origin, "http") {
			t.Errorf("TrustedOrigin should be host:port, not a URL: %s", origin)
		}
	}

	prod := DefaultCSRFConfig(testAuthKey, false, "0.0.0.0:8080")
	if len(prod.TrustedOrigins) != 0 {
		t.Errorf("expected no TrustedOrigins in production, got %v", prod.TrustedOrigins)
	}
}

func TestCSRF_FetchMetadata(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(testAuthKey, false, ""))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		method     string
		path       string
		fetchSite  string
		wantStatus int
		wantJSON   bool
	}{
		{"same origin post", http.MethodPost, "/admin/photos", "same-origin", http.StatusOK, false},
		{"cross site post", http.MethodPost, "/admin/photos", "cross-site", http.StatusForbidden, false},
		{"cross site api post", http.MethodPost, "/api/contact", "cross-site", http.StatusForbidden, true},
		{"cross site get", http.MethodGet, "/gallery", "cross-site", http.StatusOK, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Sec-Fetch-Site", tt.fetchSite)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantJSON && !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
				t.Errorf("Content-Type = %q, want JSON", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestCSRF_WithCustomErrorHandler(t *testing.T) {
	called := false
	cfg := DefaultCSRFConfig(testAuthKey, false, "")
	cfg.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CSRF(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	req := httptest.NewRequest(http.MethodDelete, "/admin/videos/1", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusTeapot {
		t.Errorf("custom handler called = %v, status = %d", called, rec.Code)
	}
}
