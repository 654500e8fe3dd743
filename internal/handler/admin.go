// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP handlers: public pages, the admin
// panel with its content forms, and the JSON API.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/render"
	"github.com/olegiv/campus-cms/internal/scheduler"
	"github.com/olegiv/campus-cms/internal/service"
)

// JobRunner is the part of the scheduler the dashboard uses.
type JobRunner interface {
	List() []scheduler.JobInfo
	TriggerNow(ctx context.Context, name string) error
	UpdateSchedule(name, schedule string) error
}

// DashboardData holds everything shown on the admin dashboard.
type DashboardData struct {
	Stats  service.Stats
	Events []EventView
	Jobs   []scheduler.JobInfo
}

// AdminHandler handles the dashboard and background job controls.
type AdminHandler struct {
	renderer *render.Renderer
	flash    Flasher
	content  *service.ContentService
	events   *service.EventService
	jobs     JobRunner
}

// NewAdminHandler creates a new AdminHandler. jobs may be nil.
func NewAdminHandler(renderer *render.Renderer, f Flasher, content *service.ContentService, events *service.EventService, jobs JobRunner) *AdminHandler {
	return &AdminHandler{
		renderer: renderer,
		flash:    f,
		content:  content,
		events:   events,
		jobs:     jobs,
	}
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var data DashboardData

	stats, err := h.content.Stats(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load dashboard stats", "error", err)
		return
	}
	data.Stats = stats

	// The event log is informational; the dashboard still renders without it.
	if events, err := h.events.Recent(r.Context(), service.DefaultEventLimit); err != nil {
		slog.Error("failed to load recent events", "error", err)
	} else {
		data.Events = eventViews(events)
	}

	if h.jobs != nil {
		data.Jobs = h.jobs.List()
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		Data:  data,
		Admin: middleware.GetAdmin(r),
	})
}

// TriggerJob handles POST /admin/jobs/{name}/run.
func (h *AdminHandler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		http.NotFound(w, r)
		return
	}

	err := h.jobs.TriggerNow(r.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		flashError(w, r, h.flash, redirectAdmin, "Job not found")
	case err != nil:
		slog.Error("manual job run failed", "job", name, "error", err)
		flashError(w, r, h.flash, redirectAdmin, "Job "+name+" failed. See the event log for details.")
	default:
		flashSuccess(w, r, h.flash, redirectAdmin, "Job "+name+" finished")
	}
}

// UpdateJobSchedule handles POST /admin/jobs/{name}/schedule.
func (h *AdminHandler) UpdateJobSchedule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		http.NotFound(w, r)
		return
	}
	if err := parseBody(w, r, maxFormBody, "schedule"); err != nil {
		flashError(w, r, h.flash, redirectAdmin, "Invalid form data")
		return
	}

	schedule := strings.TrimSpace(r.PostFormValue("schedule"))
	if schedule == "" {
		flashError(w, r, h.flash, redirectAdmin, "Schedule is required")
		return
	}

	err := h.jobs.UpdateSchedule(name, schedule)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		flashError(w, r, h.flash, redirectAdmin, "Job not found")
	case err != nil:
		flashError(w, r, h.flash, redirectAdmin, "Invalid schedule: "+schedule)
	default:
		slog.Info("job schedule updated", "job", name, "schedule", schedule)
		flashSuccess(w, r, h.flash, redirectAdmin, "Schedule updated")
	}
}
