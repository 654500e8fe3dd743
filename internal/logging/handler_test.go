// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/olegiv/campus-cms/internal/model"
	"github.com/olegiv/campus-cms/internal/store"
	"github.com/olegiv/campus-cms/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func TestEventLogHandler_Levels(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Info("server started")
	logger.Debug("noise")
	logger.Warn("blob delete failed", "key", "images/a.jpg")
	logger.Error("database unavailable", "category", model.EventCategorySystem)

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	byMsg := map[string]store.Event{}
	for _, e := range events {
		byMsg[e.Message] = e
	}

	warn := byMsg["blob delete failed"]
	if warn.Level != model.EventLevelWarning || warn.Category != model.EventCategoryStorage {
		t.Errorf("warn event = %+v", warn)
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(warn.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["key"] != "images/a.jpg" {
		t.Errorf("metadata = %v", meta)
	}

	errEvent := byMsg["database unavailable"]
	if errEvent.Level != model.EventLevelError || errEvent.Category != model.EventCategorySystem {
		t.Errorf("error event = %+v", errEvent)
	}
	if errEvent.Metadata != "{}" {
		t.Errorf("category attr should not be copied to metadata: %s", errEvent.Metadata)
	}
}

func TestEventLogHandler_WithAttrsAndRedaction(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).
		With("request_id", "r-1").
		WithGroup("login")
	logger.Warn("failed login", "username", "admin", "password", "hunter2")

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["request_id"] != "r-1" {
		t.Errorf("request_id missing: %v", meta)
	}
	if meta["login.username"] != "admin" {
		t.Errorf("grouped attr missing: %v", meta)
	}
	if meta["login.password"] == "hunter2" {
		t.Error("password must not be stored")
	}
	if events[0].Category != model.EventCategoryAuth {
		t.Errorf("Category = %q, want auth", events[0].Category)
	}
}
