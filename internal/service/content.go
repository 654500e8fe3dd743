// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the content repository: validation, blob handling
// and persistence of announcements, photos, videos and contact messages.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/campus-cms/internal/cache"
	"github.com/olegiv/campus-cms/internal/metrics"
	"github.com/olegiv/campus-cms/internal/model"
	"github.com/olegiv/campus-cms/internal/storage"
	"github.com/olegiv/campus-cms/internal/store"
)

// Blob folders per content kind.
const (
	PhotoFolder = "images"
	VideoFolder = "videos"
)

// Blobs is the part of the storage gateway the service uses.
type Blobs interface {
	Store(ctx context.Context, up storage.Upload, category storage.Category, folder string) (storage.Ref, error)
	URL(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) bool
}

// ContentService implements create, list, get, update and delete for the
// three content kinds. Blobs are uploaded before the record is written and
// removed again if the write fails.
type ContentService struct {
	queries *store.Queries
	blobs   Blobs
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	listings      cache.Cache
	announcements *cache.TypedCache[Page[model.Announcement]]
	photos        *cache.TypedCache[Page[model.Photo]]
	videos        *cache.TypedCache[Page[model.Video]]
}

// Option customises a ContentService.
type Option func(*ContentService)

// WithListingCache caches the first page of public listings in c.
func WithListingCache(c cache.Cache, ttl time.Duration, m *metrics.Metrics) Option {
	return func(s *ContentService) {
		s.listings = c
		s.announcements = cache.NewTypedCache[Page[model.Announcement]](c, ttl)
		s.photos = cache.NewTypedCache[Page[model.Photo]](c, ttl)
		s.videos = cache.NewTypedCache[Page[model.Video]](c, ttl)
		if m != nil {
			s.announcements.OnLookup = m.ObserveCacheLookup
			s.photos.OnLookup = m.ObserveCacheLookup
			s.videos.OnLookup = m.ObserveCacheLookup
		}
	}
}

// WithMetrics records signed URL refresh outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ContentService) { s.metrics = m }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ContentService) { s.now = now }
}

// NewContentService creates the service. db may be any store.DBTX, which
// lets tests substitute a mock connection.
func NewContentService(db store.DBTX, blobs Blobs, logger *slog.Logger, opts ...Option) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ContentService{
		queries: store.New(db),
		blobs:   blobs,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats are the dashboard counters.
type Stats struct {
	Announcements int64
	Photos        int64
	Videos        int64
	Messages      int64
}

// Stats counts every kind of record.
func (s *ContentService) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.Announcements, err = s.queries.CountAnnouncements(ctx); err != nil {
		return st, &PersistenceError{Op: "count announcements", Err: err}
	}
	if st.Photos, err = s.queries.CountPhotos(ctx); err != nil {
		return st, &PersistenceError{Op: "count photos", Err: err}
	}
	if st.Videos, err = s.queries.CountVideos(ctx); err != nil {
		return st, &PersistenceError{Op: "count videos", Err: err}
	}
	if st.Messages, err = s.queries.CountMessages(ctx); err != nil {
		return st, &PersistenceError{Op: "count messages", Err: err}
	}
	return st, nil
}

// invalidate drops cached listings after a mutation.
func (s *ContentService) invalidate(ctx context.Context) {
	if s.listings == nil {
		return
	}
	if err := s.listings.Clear(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("failed to clear listing cache", "error", err)
	}
}

// cached serves the first public page from tc when caching is enabled.
func cached[T any](ctx context.Context, tc *cache.TypedCache[Page[T]], key string, opts ListOptions, load func() (Page[T], error)) (Page[T], error) {
	if tc == nil || !opts.PublicOnly || opts.Cursor != "" {
		return load()
	}
	return tc.GetOrSet(ctx, key, load)
}

// discardBlob removes a blob whose record was never written, or whose
// record has moved on to a newer blob. It runs even if ctx is cancelled.
func (s *ContentService) discardBlob(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	if !s.blobs.Delete(context.WithoutCancel(ctx), key) {
		s.logger.Warn("orphaned blob left in storage", "key", key, "reason", reason)
	}
}

func persistence(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return &PersistenceError{Op: op, Err: err}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}
