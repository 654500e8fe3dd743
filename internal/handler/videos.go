// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/service"
)

const entityVideo = "Video"

var videoFields = []string{"title", "description", "source", "youtubeUrl"}

func videoInput(r *http.Request) (service.VideoInput, map[string]string, func(), error) {
	in := service.VideoInput{
		Title:       formString(r, "title"),
		Description: formString(r, "description"),
		Source:      formString(r, "source"),
		YouTubeURL:  formString(r, "youtubeUrl"),
		IsFeatured:  formCheckbox(r, "isFeatured"),
	}
	values := formValues(r, videoFields...)
	checkboxValue(values, "isFeatured", in.IsFeatured)

	video, closeFile, err := formFile(r, fieldVideo)
	if err != nil {
		return in, values, closeFile, &service.ValidationError{Fields: map[string]string{fieldVideo: "could not be read"}}
	}
	in.Video = video
	return in, values, closeFile, nil
}

// ListVideos handles GET /admin/videos.
func (h *ContentHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	renderList(h, w, r, "admin/videos", "Videos", h.content.ListVideos)
}

// NewVideo handles GET /admin/videos/new.
func (h *ContentHandler) NewVideo(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin/video_form", "New Video", FormData{Action: redirectAdminVideos})
}

// CreateVideo handles POST /admin/videos.
func (h *ContentHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	ff := formFailure{
		FormURL: redirectAdminVideos + RouteSuffixNew,
		ListURL: redirectAdminVideos,
		Entity:  entityVideo,
	}
	if err := parseBody(w, r, maxVideoBody, fieldVideo); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}

	in, values, closeFile, err := videoInput(r)
	defer closeFile()
	ff.Values = values
	if err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}

	if _, err := h.content.CreateVideo(r.Context(), in, middleware.GetAdminID(r)); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}
	flashSuccess(w, r, h.flash, redirectAdminVideos, "Video added")
}

// EditVideo handles GET /admin/videos/{id}/edit.
func (h *ContentHandler) EditVideo(w http.ResponseWriter, r *http.Request) {
	renderEdit(h, w, r, "admin/video_form", "Edit Video", entityVideo,
		redirectAdminVideos, actionVideoUpdate, h.content.GetVideo)
}

// UpdateVideo handles PUT /admin/videos/{id}.
func (h *ContentHandler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.flash, redirectAdminVideos, entityVideo+" not found")
		return
	}
	ff := formFailure{
		FormURL: sprintfID(redirectAdminVideosEdit, id),
		ListURL: redirectAdminVideos,
		Entity:  entityVideo,
	}
	if err := parseBody(w, r, maxVideoBody, fieldVideo); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}

	in, values, closeFile, err := videoInput(r)
	defer closeFile()
	ff.Values = values
	if err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}

	if _, err := h.content.UpdateVideo(r.Context(), id, in); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}
	flashSuccess(w, r, h.flash, redirectAdminVideos, "Video updated")
}

// DeleteVideo handles DELETE /admin/videos/{id} and POST /admin/videos/{id}/delete.
func (h *ContentHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	h.deleteForm(w, r, entityVideo, redirectAdminVideos, h.content.DeleteVideo)
}
