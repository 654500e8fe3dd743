// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/service"
)

const entityPhoto = "Photo"

var photoFields = []string{"title", "description"}

// photoInput reads the photo form. The returned close function releases
// the uploaded file.
func photoInput(r *http.Request) (service.PhotoInput, map[string]string, func(), error) {
	in := service.PhotoInput{
		Title:       formString(r, "title"),
		Description: formString(r, "description"),
		IsFeatured:  formCheckbox(r, "isFeatured"),
	}
	values := formValues(r, photoFields...)
	checkboxValue(values, "isFeatured", in.IsFeatured)

	image, closeFile, err := formFile(r, fieldImage)
	if err != nil {
		return in, values, closeFile, &service.ValidationError{Fields: map[string]string{fieldImage: "could not be read"}}
	}
	in.Image = image
	return in, values, closeFile, nil
}

// ListPhotos handles GET /admin/photos.
func (h *ContentHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	renderList(h, w, r, "admin/photos", "Photos", h.content.ListPhotos)
}

// NewPhoto handles GET /admin/photos/new.
func (h *ContentHandler) NewPhoto(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin/photo_form", "New Photo", FormData{Action: redirectAdminPhotos})
}

// CreatePhoto handles POST /admin/photos. The body is parsed here, after
// RequireAdmin has accepted the session.
func (h *ContentHandler) CreatePhoto(w http.ResponseWriter, r *http.Request) {
	ff := formFailure{
		FormURL: redirectAdminPhotos + RouteSuffixNew,
		ListURL: redirectAdminPhotos,
		Entity:  entityPhoto,
	}
	if err := parseBody(w, r, maxPhotoBody, fieldImage); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}

	in, values, closeFile, err := photoInput(r)
	defer closeFile()
	ff.Values = values
	if err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}

	if _, err := h.content.CreatePhoto(r.Context(), in, middleware.GetAdminID(r)); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}
	flashSuccess(w, r, h.flash, redirectAdminPhotos, "Photo uploaded")
}

// EditPhoto handles GET /admin/photos/{id}/edit.
func (h *ContentHandler) EditPhoto(w http.ResponseWriter, r *http.Request) {
	renderEdit(h, w, r, "admin/photo_form", "Edit Photo", entityPhoto,
		redirectAdminPhotos, actionPhotoUpdate, h.content.GetPhoto)
}

// UpdatePhoto handles PUT /admin/photos/{id}. Without a new image the
// stored one is kept.
func (h *ContentHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.flash, redirectAdminPhotos, entityPhoto+" not found")
		return
	}
	ff := formFailure{
		FormURL: sprintfID(redirectAdminPhotosEdit, id),
		ListURL: redirectAdminPhotos,
		Entity:  entityPhoto,
	}
	if err := parseBody(w, r, maxPhotoBody, fieldImage); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}

	in, values, closeFile, err := photoInput(r)
	defer closeFile()
	ff.Values = values
	if err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}

	if _, err := h.content.UpdatePhoto(r.Context(), id, in); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}
	flashSuccess(w, r, h.flash, redirectAdminPhotos, "Photo updated")
}

// DeletePhoto handles DELETE /admin/photos/{id} and POST /admin/photos/{id}/delete.
func (h *ContentHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	h.deleteForm(w, r, entityPhoto, redirectAdminPhotos, h.content.DeletePhoto)
}
