// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/campus-cms/internal/store"
)

const (
	// DefaultRefreshMargin re-signs URLs that expire within a day.
	DefaultRefreshMargin = 24 * time.Hour
	refreshBatchSize     = 500
)

// RefreshResult counts the outcome of one refresh pass.
type RefreshResult struct {
	Refreshed int
	// Skipped rows changed their blob between the scan and the write.
	Skipped int
	Failed  int
}

func (r RefreshResult) String() string {
	return fmt.Sprintf("refreshed=%d skipped=%d failed=%d", r.Refreshed, r.Skipped, r.Failed)
}

func (r *RefreshResult) add(o RefreshResult) {
	r.Refreshed += o.Refreshed
	r.Skipped += o.Skipped
	r.Failed += o.Failed
}

// RefreshSignedURLs re-signs stored photo and video URLs that expire within
// margin. Each row is written only if it still points at the same blob, so a
// concurrent edit always wins. Rows whose URL cannot be signed are counted as
// failed and retried on the next pass.
func (s *ContentService) RefreshSignedURLs(ctx context.Context, margin time.Duration) (RefreshResult, error) {
	if margin <= 0 {
		margin = DefaultRefreshMargin
	}
	before := s.now().Add(margin)
	var total RefreshResult

	photos, err := s.queries.ListPhotosWithExpiringURLs(ctx, store.ListPhotosWithExpiringURLsParams{
		Before: before,
		Limit:  refreshBatchSize,
	})
	if err != nil {
		return total, &PersistenceError{Op: "list expiring photos", Err: err}
	}
	for _, p := range photos {
		total.add(s.refreshOne(ctx, "photo", p.ID, p.StorageKey, func(url string, exp time.Time) (int64, error) {
			return s.queries.RefreshPhotoURL(ctx, store.RefreshPhotoURLParams{
				ImageUrl:     url,
				UrlExpiresAt: nullTime(exp),
				ID:           p.ID,
				StorageKey:   p.StorageKey,
			})
		}))
	}

	videos, err := s.queries.ListVideosWithExpiringURLs(ctx, store.ListVideosWithExpiringURLsParams{
		Before: before,
		Limit:  refreshBatchSize,
	})
	if err != nil {
		return total, &PersistenceError{Op: "list expiring videos", Err: err}
	}
	for _, v := range videos {
		total.add(s.refreshOne(ctx, "video", v.ID, v.StorageKey.String, func(url string, exp time.Time) (int64, error) {
			return s.queries.RefreshVideoURL(ctx, store.RefreshVideoURLParams{
				VideoUrl:     url,
				UrlExpiresAt: nullTime(exp),
				ID:           v.ID,
				StorageKey:   v.StorageKey.String,
			})
		}))
	}

	if total.Refreshed+total.Skipped+total.Failed > 0 {
		s.invalidate(ctx)
	}
	return total, nil
}

func (s *ContentService) refreshOne(ctx context.Context, kind string, id int64, key string, write func(string, time.Time) (int64, error)) RefreshResult {
	url, exp, err := s.blobs.URL(ctx, key)
	if err != nil {
		s.logger.Warn("signed url refresh failed", "kind", kind, "id", id, "error", err)
		s.metrics.ObserveURLRefresh(kind, "failed")
		return RefreshResult{Failed: 1}
	}

	n, err := write(url, exp)
	switch {
	case err != nil:
		s.logger.Warn("signed url write failed", "kind", kind, "id", id, "error", err)
		s.metrics.ObserveURLRefresh(kind, "failed")
		return RefreshResult{Failed: 1}
	case n == 0:
		s.metrics.ObserveURLRefresh(kind, "skipped")
		return RefreshResult{Skipped: 1}
	default:
		s.metrics.ObserveURLRefresh(kind, "refreshed")
		return RefreshResult{Refreshed: 1}
	}
}
