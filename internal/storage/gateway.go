// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/olegiv/campus-cms/internal/metrics"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 60 * time.Second

// Gateway validates uploads and forwards them to a Backend.
type Gateway struct {
	backend  Backend
	policies map[Category]Policy
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// GatewayOption customises a Gateway.
type GatewayOption func(*Gateway)

// WithTimeout sets the per-call backend timeout.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithPolicies replaces the default upload policies.
func WithPolicies(p map[Category]Policy) GatewayOption {
	return func(g *Gateway) { g.policies = p }
}

// WithMetrics attaches upload and delete counters.
func WithMetrics(m *metrics.Metrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// WithClock overrides the clock used for key prefixes.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

// NewGateway creates a gateway over backend.
func NewGateway(backend Backend, logger *slog.Logger, opts ...GatewayOption) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		backend:  backend,
		policies: DefaultPolicies(),
		timeout:  DefaultTimeout,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Backend returns the name of the configured backend.
func (g *Gateway) Backend() string {
	return g.backend.Name()
}

// Policy returns the policy for category.
func (g *Gateway) Policy(category Category) (Policy, bool) {
	p, ok := g.policies[category]
	return p, ok
}

// Store validates up against the category policy and writes it under folder.
// Nothing reaches the backend unless every check passes.
func (g *Gateway) Store(ctx context.Context, up Upload, category Category, folder string) (Ref, error) {
	policy, ok := g.policies[category]
	if !ok {
		return Ref{}, fmt.Errorf("unknown upload category %q", category)
	}

	size, err := measure(up.Reader)
	if err != nil {
		return Ref{}, fmt.Errorf("reading upload: %w", err)
	}
	if up.Size > size {
		size = up.Size
	}
	if size == 0 {
		return Ref{}, &PolicyError{Err: ErrEmptyFile}
	}
	if size > policy.MaxSize {
		return Ref{}, &PolicyError{
			Err:    ErrFileTooLarge,
			Detail: fmt.Sprintf("limit is %d MiB", policy.MaxSize/MiB),
		}
	}

	if declared := normalizeMimeType(up.MimeType); declared != "" && declared != "application/octet-stream" {
		if !slices.Contains(policy.AllowedTypes, declared) {
			return Ref{}, &PolicyError{Err: ErrTypeNotAllowed, Detail: declared}
		}
	}

	detected, err := mimetype.DetectReader(up.Reader)
	if err != nil {
		return Ref{}, fmt.Errorf("detecting content type: %w", err)
	}
	contentType, ok := allowedType(detected, policy)
	if !ok {
		return Ref{}, &PolicyError{Err: ErrTypeNotAllowed, Detail: detected.String()}
	}
	if _, err := up.Reader.Seek(0, io.SeekStart); err != nil {
		return Ref{}, fmt.Errorf("rewinding upload: %w", err)
	}

	key := g.newKey(folder, extensionFor(up.Filename, detected, policy))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err = g.backend.Put(ctx, key, up.Reader, size, contentType)
	g.metrics.ObserveUpload(g.backend.Name(), string(category), err, size)
	if err != nil {
		return Ref{}, &BackendError{Backend: g.backend.Name(), Op: "put", Err: err}
	}

	url, expiresAt, err := g.backend.URL(ctx, key)
	if err != nil {
		g.Delete(context.WithoutCancel(ctx), key)
		return Ref{}, &BackendError{Backend: g.backend.Name(), Op: "url", Err: err}
	}

	return Ref{Key: key, URL: url, ExpiresAt: expiresAt, Size: size, MimeType: contentType}, nil
}

// URL returns a retrievable URL for key and when it stops working.
func (g *Gateway) URL(ctx context.Context, key string) (string, time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	url, expiresAt, err := g.backend.URL(ctx, key)
	if err != nil {
		return "", time.Time{}, &BackendError{Backend: g.backend.Name(), Op: "url", Err: err}
	}
	return url, expiresAt, nil
}

// Delete removes key and reports whether the backend confirmed it. Failures
// are logged and never returned.
func (g *Gateway) Delete(ctx context.Context, key string) bool {
	if key == "" {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := g.backend.Delete(ctx, key)
	g.metrics.ObserveBlobDelete(g.backend.Name(), err == nil)
	if err != nil {
		g.logger.Warn("blob delete failed",
			"backend", g.backend.Name(),
			"key", key,
			"error", err,
		)
		return false
	}
	return true
}

// newKey builds "<folder>/<yyyymmddHHMMSS>-<uuid><ext>".
func (g *Gateway) newKey(folder, ext string) string {
	name := g.now().UTC().Format("20060102150405") + "-" + uuid.NewString() + ext
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

func measure(r io.Seeker) (int64, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

func normalizeMimeType(v string) string {
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	if mt == "image/jpg" || mt == "image/pjpeg" {
		return "image/jpeg"
	}
	return mt
}

// allowedType walks the detected type and its parents looking for a match.
func allowedType(detected *mimetype.MIME, policy Policy) (string, bool) {
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range policy.AllowedTypes {
			if m.Is(allowed) {
				return allowed, true
			}
		}
	}
	return "", false
}

func extensionFor(filename string, detected *mimetype.MIME, policy Policy) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if slices.Contains(policy.Extensions, ext) {
		return ext
	}
	return detected.Extension()
}
