// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const photoColumns = `id, title, description, image_url, storage_key, url_expires_at, is_featured,
uploaded_by, created_at, updated_at`

const createPhoto = `
INSERT INTO photos (title, description, image_url, storage_key, url_expires_at, is_featured,
    uploaded_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + photoColumns

type CreatePhotoParams struct {
	Title        string
	Description  string
	ImageUrl     string
	StorageKey   string
	UrlExpiresAt sql.NullTime
	IsFeatured   bool
	UploadedBy   sql.NullInt64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Queries) CreatePhoto(ctx context.Context, arg CreatePhotoParams) (Photo, error) {
	row := q.db.QueryRowContext(ctx, createPhoto,
		arg.Title,
		arg.Description,
		arg.ImageUrl,
		arg.StorageKey,
		arg.UrlExpiresAt,
		arg.IsFeatured,
		arg.UploadedBy,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanPhoto(row)
}

const getPhotoByID = `SELECT ` + photoColumns + ` FROM photos WHERE id = ?`

func (q *Queries) GetPhotoByID(ctx context.Context, id int64) (Photo, error) {
	return scanPhoto(q.db.QueryRowContext(ctx, getPhotoByID, id))
}

const listPhotos = `SELECT ` + photoColumns + ` FROM photos
WHERE (? = 0 OR created_at < ? OR (created_at = ? AND id < ?))
ORDER BY created_at DESC, id DESC
LIMIT ?`

type ListPhotosParams struct {
	After Cursor
	Limit int64
}

func (q *Queries) ListPhotos(ctx context.Context, arg ListPhotosParams) ([]Photo, error) {
	rows, err := q.db.QueryContext(ctx, listPhotos,
		!arg.After.IsZero(),
		arg.After.CreatedAt,
		arg.After.CreatedAt,
		arg.After.ID,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	return collectPhotos(rows)
}

const listPhotosWithExpiringURLs = `SELECT ` + photoColumns + ` FROM photos
WHERE url_expires_at IS NOT NULL AND url_expires_at < ?
ORDER BY url_expires_at
LIMIT ?`

type ListPhotosWithExpiringURLsParams struct {
	Before time.Time
	Limit  int64
}

func (q *Queries) ListPhotosWithExpiringURLs(ctx context.Context, arg ListPhotosWithExpiringURLsParams) ([]Photo, error) {
	rows, err := q.db.QueryContext(ctx, listPhotosWithExpiringURLs, arg.Before, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectPhotos(rows)
}

const countPhotos = `SELECT COUNT(*) FROM photos`

func (q *Queries) CountPhotos(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPhotos).Scan(&count)
	return count, err
}

const updatePhoto = `
UPDATE photos
SET title = ?, description = ?, image_url = ?, storage_key = ?, url_expires_at = ?, is_featured = ?,
    updated_at = ?
WHERE id = ?
RETURNING ` + photoColumns

type UpdatePhotoParams struct {
	Title        string
	Description  string
	ImageUrl     string
	StorageKey   string
	UrlExpiresAt sql.NullTime
	IsFeatured   bool
	UpdatedAt    time.Time
	ID           int64
}

func (q *Queries) UpdatePhoto(ctx context.Context, arg UpdatePhotoParams) (Photo, error) {
	row := q.db.QueryRowContext(ctx, updatePhoto,
		arg.Title,
		arg.Description,
		arg.ImageUrl,
		arg.StorageKey,
		arg.UrlExpiresAt,
		arg.IsFeatured,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanPhoto(row)
}

// The storage_key guard turns the write into a no-op when the photo got a
// new blob after it was read.
const refreshPhotoURL = `
UPDATE photos SET image_url = ?, url_expires_at = ?
WHERE id = ? AND storage_key = ?
`

type RefreshPhotoURLParams struct {
	ImageUrl     string
	UrlExpiresAt sql.NullTime
	ID           int64
	StorageKey   string
}

func (q *Queries) RefreshPhotoURL(ctx context.Context, arg RefreshPhotoURLParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, refreshPhotoURL, arg.ImageUrl, arg.UrlExpiresAt, arg.ID, arg.StorageKey)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deletePhoto = `DELETE FROM photos WHERE id = ?`

func (q *Queries) DeletePhoto(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePhoto, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func collectPhotos(rows *sql.Rows) ([]Photo, error) {
	defer func() { _ = rows.Close() }()

	var items []Photo
	for rows.Next() {
		i, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanPhoto(row rowScanner) (Photo, error) {
	var i Photo
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.ImageUrl,
		&i.StorageKey,
		&i.UrlExpiresAt,
		&i.IsFeatured,
		&i.UploadedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
