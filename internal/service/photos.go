// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/campus-cms/internal/model"
	"github.com/olegiv/campus-cms/internal/storage"
	"github.com/olegiv/campus-cms/internal/store"
)

// PhotoInput carries submitted photo fields. Image is required on create and
// optional on update, where it replaces the stored image.
type PhotoInput struct {
	Title       *string
	Description *string
	IsFeatured  *bool
	Image       *storage.Upload
}

type photoDraft struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=2000"`
}

// CreatePhoto uploads the image and stores the photo record.
func (s *ContentService) CreatePhoto(ctx context.Context, in PhotoInput, authorID int64) (model.Photo, error) {
	d := photoDraft{
		Title:       trimmed(in.Title, ""),
		Description: trimmed(in.Description, ""),
	}
	err := validateStruct(d)
	if in.Image == nil {
		err = addField(err, "image", "is required")
	}
	if err != nil {
		return model.Photo{}, err
	}

	ref, err := s.blobs.Store(ctx, *in.Image, storage.CategoryImage, PhotoFolder)
	if err != nil {
		return model.Photo{}, uploadError("image", err)
	}

	now := s.now()
	row, err := s.queries.CreatePhoto(ctx, store.CreatePhotoParams{
		Title:        d.Title,
		Description:  d.Description,
		ImageUrl:     ref.URL,
		StorageKey:   ref.Key,
		UrlExpiresAt: nullTime(ref.ExpiresAt),
		IsFeatured:   boolOr(in.IsFeatured, false),
		UploadedBy:   nullID(authorID),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.discardBlob(ctx, ref.Key, "photo insert failed")
		return model.Photo{}, &PersistenceError{Op: "create photo", Err: err}
	}

	s.invalidate(ctx)
	s.logger.Info("photo created", "id", row.ID, "key", row.StorageKey, "size", ref.Size)
	return model.PhotoFromStore(row), nil
}

// ListPhotos returns a page of photos, newest first.
func (s *ContentService) ListPhotos(ctx context.Context, opts ListOptions) (Page[model.Photo], error) {
	after, err := decodeCursor(opts.Cursor)
	if err != nil {
		return Page[model.Photo]{}, err
	}
	limit := opts.limit()
	key := fmt.Sprintf("photos:public:%d", limit)

	return cached(ctx, s.photos, key, opts, func() (Page[model.Photo], error) {
		rows, err := s.queries.ListPhotos(ctx, store.ListPhotosParams{After: after, Limit: int64(limit + 1)})
		if err != nil {
			return Page[model.Photo]{}, &PersistenceError{Op: "list photos", Err: err}
		}
		return paginate(rows, limit, model.PhotoFromStore, func(p store.Photo) (time.Time, int64) {
			return p.CreatedAt, p.ID
		}), nil
	})
}

// GetPhoto returns one photo or ErrNotFound.
func (s *ContentService) GetPhoto(ctx context.Context, id int64) (model.Photo, error) {
	row, err := s.queries.GetPhotoByID(ctx, id)
	if err != nil {
		return model.Photo{}, persistence("get photo", err)
	}
	return model.PhotoFromStore(row), nil
}

// UpdatePhoto applies the non-nil fields of in. A new image is uploaded
// before the write; the previous blob is released once the write succeeded.
func (s *ContentService) UpdatePhoto(ctx context.Context, id int64, in PhotoInput) (model.Photo, error) {
	cur, err := s.queries.GetPhotoByID(ctx, id)
	if err != nil {
		return model.Photo{}, persistence("get photo", err)
	}

	d := photoDraft{
		Title:       trimmed(in.Title, cur.Title),
		Description: trimmed(in.Description, cur.Description),
	}
	if err := validateStruct(d); err != nil {
		return model.Photo{}, err
	}

	arg := store.UpdatePhotoParams{
		Title:        d.Title,
		Description:  d.Description,
		ImageUrl:     cur.ImageUrl,
		StorageKey:   cur.StorageKey,
		UrlExpiresAt: cur.UrlExpiresAt,
		IsFeatured:   boolOr(in.IsFeatured, cur.IsFeatured),
		UpdatedAt:    s.now(),
		ID:           id,
	}

	var newKey string
	if in.Image != nil {
		ref, err := s.blobs.Store(ctx, *in.Image, storage.CategoryImage, PhotoFolder)
		if err != nil {
			return model.Photo{}, uploadError("image", err)
		}
		newKey = ref.Key
		arg.ImageUrl = ref.URL
		arg.StorageKey = ref.Key
		arg.UrlExpiresAt = nullTime(ref.ExpiresAt)
	}

	row, err := s.queries.UpdatePhoto(ctx, arg)
	if err != nil {
		s.discardBlob(ctx, newKey, "photo update failed")
		return model.Photo{}, persistence("update photo", err)
	}
	if newKey != "" {
		s.discardBlob(ctx, cur.StorageKey, "photo image replaced")
	}

	s.invalidate(ctx)
	return model.PhotoFromStore(row), nil
}

// DeletePhoto removes the record and then its blob. A failed blob delete is
// logged and does not fail the call.
func (s *ContentService) DeletePhoto(ctx context.Context, id int64) error {
	cur, err := s.queries.GetPhotoByID(ctx, id)
	if err != nil {
		return persistence("get photo", err)
	}

	n, err := s.queries.DeletePhoto(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "delete photo", Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}

	s.discardBlob(ctx, cur.StorageKey, "photo deleted")
	s.invalidate(ctx)
	s.logger.Info("photo deleted", "id", id)
	return nil
}
