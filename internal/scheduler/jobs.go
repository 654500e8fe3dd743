// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/campus-cms/internal/service"
)

// URLRefreshJobName is the name of the signed URL refresh job.
const URLRefreshJobName = "signed-url-refresh"

// DefaultURLRefreshSchedule runs the refresh every six hours.
const DefaultURLRefreshSchedule = "0 */6 * * *"

// URLRefresher re-signs stored blob URLs that are about to expire.
type URLRefresher interface {
	RefreshSignedURLs(ctx context.Context, margin time.Duration) (service.RefreshResult, error)
}

// URLRefreshJob returns the job that keeps presigned photo and video URLs
// valid. Backends with non-expiring URLs leave nothing to refresh.
func URLRefreshJob(r URLRefresher, schedule string, margin time.Duration, logger *slog.Logger) Job {
	if schedule == "" {
		schedule = DefaultURLRefreshSchedule
	}
	return Job{
		Name:        URLRefreshJobName,
		Description: "Re-sign stored photo and video URLs before they expire",
		Schedule:    schedule,
		Run: func(ctx context.Context) error {
			res, err := r.RefreshSignedURLs(ctx, margin)
			if err != nil {
				return err
			}
			switch {
			case res.Failed > 0:
				logger.Warn("signed url refresh incomplete", "result", res.String())
			case res.Refreshed > 0 || res.Skipped > 0:
				logger.Info("signed urls refreshed", "result", res.String())
			}
			return nil
		},
	}
}
