// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// MethodOverrideField is the form and query parameter name.
const MethodOverrideField = "_method"

// MethodOverrideHeader is honoured on POST requests from scripts.
const MethodOverrideHeader = "X-HTTP-Method-Override"

var overridableMethods = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride lets HTML forms issue PUT, PATCH and DELETE through POST.
// The method is read from the query string, the override header, or a
// url-encoded body. Multipart bodies are never parsed here: forms with file
// uploads must carry _method in their action URL.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if m := overrideMethod(w, r); overridableMethods[m] {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func overrideMethod(w http.ResponseWriter, r *http.Request) string {
	if m := r.URL.Query().Get(MethodOverrideField); m != "" {
		return strings.ToUpper(m)
	}
	if m := r.Header.Get(MethodOverrideHeader); m != "" {
		return strings.ToUpper(m)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" {
		return ""
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return strings.ToUpper(r.PostForm.Get(MethodOverrideField))
}

// maxFormBytes caps url-encoded bodies read before routing.
const maxFormBytes = 1 << 20
