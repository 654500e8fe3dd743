// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/service"
)

const entityAnnouncement = "Announcement"

var announcementFields = []string{"title", "content", "mediaTitle", "mediaDescription", "mediaUrl"}

func announcementInput(r *http.Request) (service.AnnouncementInput, map[string]string) {
	in := service.AnnouncementInput{
		Title:            formString(r, "title"),
		Content:          formString(r, "content"),
		MediaTitle:       formString(r, "mediaTitle"),
		MediaDescription: formString(r, "mediaDescription"),
		MediaURL:         formString(r, "mediaUrl"),
		IsActive:         formCheckbox(r, "isActive"),
	}
	values := formValues(r, announcementFields...)
	checkboxValue(values, "isActive", in.IsActive)
	return in, values
}

// ListAnnouncements handles GET /admin/announcements.
func (h *ContentHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	renderList(h, w, r, "admin/announcements", "Announcements", h.content.ListAnnouncements)
}

// NewAnnouncement handles GET /admin/announcements/new.
func (h *ContentHandler) NewAnnouncement(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin/announcement_form", "New Announcement", FormData{Action: redirectAdminAnnouncements})
}

// CreateAnnouncement handles POST /admin/announcements.
func (h *ContentHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	ff := formFailure{
		FormURL: redirectAdminAnnouncements + RouteSuffixNew,
		ListURL: redirectAdminAnnouncements,
		Entity:  entityAnnouncement,
	}
	if err := parseBody(w, r, maxFormBody, "form"); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}

	in, values := announcementInput(r)
	ff.Values = values

	if _, err := h.content.CreateAnnouncement(r.Context(), in, middleware.GetAdminID(r)); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}
	flashSuccess(w, r, h.flash, redirectAdminAnnouncements, "Announcement created")
}

// EditAnnouncement handles GET /admin/announcements/{id}/edit.
func (h *ContentHandler) EditAnnouncement(w http.ResponseWriter, r *http.Request) {
	renderEdit(h, w, r, "admin/announcement_form", "Edit Announcement", entityAnnouncement,
		redirectAdminAnnouncements, actionAnnouncementUpdate, h.content.GetAnnouncement)
}

// UpdateAnnouncement handles PUT /admin/announcements/{id}.
func (h *ContentHandler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.flash, redirectAdminAnnouncements, entityAnnouncement+" not found")
		return
	}
	ff := formFailure{
		FormURL: sprintfID(redirectAdminAnnouncementsEdit, id),
		ListURL: redirectAdminAnnouncements,
		Entity:  entityAnnouncement,
	}
	if err := parseBody(w, r, maxFormBody, "form"); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}

	in, values := announcementInput(r)
	ff.Values = values

	if _, err := h.content.UpdateAnnouncement(r.Context(), id, in); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}
	flashSuccess(w, r, h.flash, redirectAdminAnnouncements, "Announcement updated")
}

// DeleteAnnouncement handles DELETE /admin/announcements/{id} and
// POST /admin/announcements/{id}/delete.
func (h *ContentHandler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	h.deleteForm(w, r, entityAnnouncement, redirectAdminAnnouncements, h.content.DeleteAnnouncement)
}
