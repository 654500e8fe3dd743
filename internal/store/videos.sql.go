// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const videoColumns = `id, title, description, source, video_url, storage_key, url_expires_at, is_featured,
uploaded_by, created_at, updated_at`

const createVideo = `
INSERT INTO videos (title, description, source, video_url, storage_key, url_expires_at, is_featured,
    uploaded_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + videoColumns

type CreateVideoParams struct {
	Title        string
	Description  string
	Source       string
	VideoUrl     string
	StorageKey   sql.NullString
	UrlExpiresAt sql.NullTime
	IsFeatured   bool
	UploadedBy   sql.NullInt64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Queries) CreateVideo(ctx context.Context, arg CreateVideoParams) (Video, error) {
	row := q.db.QueryRowContext(ctx, createVideo,
		arg.Title,
		arg.Description,
		arg.Source,
		arg.VideoUrl,
		arg.StorageKey,
		arg.UrlExpiresAt,
		arg.IsFeatured,
		arg.UploadedBy,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanVideo(row)
}

const getVideoByID = `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`

func (q *Queries) GetVideoByID(ctx context.Context, id int64) (Video, error) {
	return scanVideo(q.db.QueryRowContext(ctx, getVideoByID, id))
}

const listVideos = `SELECT ` + videoColumns + ` FROM videos
WHERE (? = 0 OR created_at < ? OR (created_at = ? AND id < ?))
ORDER BY created_at DESC, id DESC
LIMIT ?`

type ListVideosParams struct {
	After Cursor
	Limit int64
}

func (q *Queries) ListVideos(ctx context.Context, arg ListVideosParams) ([]Video, error) {
	rows, err := q.db.QueryContext(ctx, listVideos,
		!arg.After.IsZero(),
		arg.After.CreatedAt,
		arg.After.CreatedAt,
		arg.After.ID,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

const listVideosWithExpiringURLs = `SELECT ` + videoColumns + ` FROM videos
WHERE source = 'upload' AND url_expires_at IS NOT NULL AND url_expires_at < ?
ORDER BY url_expires_at
LIMIT ?`

type ListVideosWithExpiringURLsParams struct {
	Before time.Time
	Limit  int64
}

func (q *Queries) ListVideosWithExpiringURLs(ctx context.Context, arg ListVideosWithExpiringURLsParams) ([]Video, error) {
	rows, err := q.db.QueryContext(ctx, listVideosWithExpiringURLs, arg.Before, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

const countVideos = `SELECT COUNT(*) FROM videos`

func (q *Queries) CountVideos(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countVideos).Scan(&count)
	return count, err
}

const updateVideo = `
UPDATE videos
SET title = ?, description = ?, source = ?, video_url = ?, storage_key = ?, url_expires_at = ?,
    is_featured = ?, updated_at = ?
WHERE id = ?
RETURNING ` + videoColumns

type UpdateVideoParams struct {
	Title        string
	Description  string
	Source       string
	VideoUrl     string
	StorageKey   sql.NullString
	UrlExpiresAt sql.NullTime
	IsFeatured   bool
	UpdatedAt    time.Time
	ID           int64
}

func (q *Queries) UpdateVideo(ctx context.Context, arg UpdateVideoParams) (Video, error) {
	row := q.db.QueryRowContext(ctx, updateVideo,
		arg.Title,
		arg.Description,
		arg.Source,
		arg.VideoUrl,
		arg.StorageKey,
		arg.UrlExpiresAt,
		arg.IsFeatured,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanVideo(row)
}

const refreshVideoURL = `
UPDATE videos SET video_url = ?, url_expires_at = ?
WHERE id = ? AND source = 'upload' AND storage_key = ?
`

type RefreshVideoURLParams struct {
	VideoUrl     string
	UrlExpiresAt sql.NullTime
	ID           int64
	StorageKey   string
}

func (q *Queries) RefreshVideoURL(ctx context.Context, arg RefreshVideoURLParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, refreshVideoURL, arg.VideoUrl, arg.UrlExpiresAt, arg.ID, arg.StorageKey)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteVideo = `DELETE FROM videos WHERE id = ?`

func (q *Queries) DeleteVideo(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteVideo, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func collectVideos(rows *sql.Rows) ([]Video, error) {
	defer func() { _ = rows.Close() }()

	var items []Video
	for rows.Next() {
		i, err := scanVideo(rows)
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

func scanVideo(row rowScanner) (Video, error) {
	var i Video
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.Source,
		&i.VideoUrl,
		&i.StorageKey,
		&i.UrlExpiresAt,
		&i.IsFeatured,
		&i.UploadedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
