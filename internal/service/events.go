// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"

	"github.com/olegiv/campus-cms/internal/model"
	"github.com/olegiv/campus-cms/internal/store"
)

// DefaultEventLimit is the number of events shown on the dashboard.
const DefaultEventLimit = 10

// EventService reads the event log written by logging.EventLogHandler.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db store.DBTX) *EventService {
	return &EventService{queries: store.New(db)}
}

// Recent returns the newest events.
func (s *EventService) Recent(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	rows, err := s.queries.ListRecentEvents(ctx, int64(limit))
	if err != nil {
		return nil, &PersistenceError{Op: "list events", Err: err}
	}
	events := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, model.EventFromStore(r))
	}
	return events, nil
}
