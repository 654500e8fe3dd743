// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-cms/internal/service"
	"github.com/olegiv/campus-cms/internal/storage"
)

// Request body ceilings. Multipart overhead on top of the file is small,
// one extra MiB covers the text fields.
const (
	maxFormBody  = 1 * storage.MiB
	maxPhotoBody = storage.MaxImageSize + storage.MiB
	maxVideoBody = storage.MaxVideoSize + storage.MiB

	multipartMemory = 8 * storage.MiB
)

// errBadID is returned for a malformed {id} route parameter.
var errBadID = errors.New("invalid id")

// parseIDParam parses the {id} URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// parseBody reads a form or multipart body of at most maxBytes. A body over
// the limit becomes a validation error on field.
func parseBody(w http.ResponseWriter, r *http.Request, maxBytes int64, field string) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	var err error
	if strings.HasPrefix(r.Header.Get(HeaderContentType), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &service.ValidationError{Fields: map[string]string{
			field: fmt.Sprintf("is too large (limit %d MiB)", maxBytes/storage.MiB),
		}}
	}
	return &service.ValidationError{Fields: map[string]string{"form": "could not be read"}}
}

// formString returns a pointer to the submitted value, or nil when the
// field was not part of the form.
func formString(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// formCheckbox reads an HTML checkbox. An unchecked box is absent from the
// form, so absence means false.
func formCheckbox(r *http.Request, key string) *bool {
	v := isTruthy(r.PostFormValue(key))
	return &v
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// formFile returns the uploaded file for field, or nil when none was sent.
// The returned close function is always safe to call.
func formFile(r *http.Request, field string) (*storage.Upload, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, fmt.Errorf("reading %s upload: %w", field, err)
	}
	if header.Size == 0 && header.Filename == "" {
		_ = file.Close()
		return nil, noop, nil
	}

	return uploadFrom(file, header), func() { _ = file.Close() }, nil
}

func uploadFrom(file multipart.File, header *multipart.FileHeader) *storage.Upload {
	return &storage.Upload{
		Reader:   file,
		Size:     header.Size,
		MimeType: header.Header.Get(HeaderContentType),
		Filename: header.Filename,
	}
}

// formValues collects the submitted text fields for restoring a form.
func formValues(r *http.Request, keys ...string) map[string]string {
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := r.PostForm[k]; ok && len(v) > 0 {
			values[k] = v[0]
		}
	}
	return values
}

// listOptions reads ?limit= and ?cursor=. A malformed limit falls back to
// defaultLimit; the service clamps the upper bound.
func listOptions(r *http.Request, defaultLimit int, publicOnly bool) service.ListOptions {
	q := r.URL.Query()
	limit := defaultLimit
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return service.ListOptions{
		PublicOnly: publicOnly,
		Limit:      limit,
		Cursor:     q.Get("cursor"),
	}
}

func sprintfID(format string, id int64) string {
	return fmt.Sprintf(format, id)
}

// checkboxValue stores a checkbox state in restored form values.
func checkboxValue(values map[string]string, key string, checked *bool) {
	values[key] = strconv.FormatBool(checked != nil && *checked)
}
