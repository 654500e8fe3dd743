// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const announcementColumns = `id, title, content, media_title, media_description, media_url, media_type,
is_active, author_id, created_at, updated_at`

const createAnnouncement = `
INSERT INTO announcements (title, content, media_title, media_description, media_url, media_type,
    is_active, author_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + announcementColumns

type CreateAnnouncementParams struct {
	Title            string
	Content          string
	MediaTitle       sql.NullString
	MediaDescription sql.NullString
	MediaUrl         sql.NullString
	MediaType        sql.NullString
	IsActive         bool
	AuthorID         sql.NullInt64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (q *Queries) CreateAnnouncement(ctx context.Context, arg CreateAnnouncementParams) (Announcement, error) {
	row := q.db.QueryRowContext(ctx, createAnnouncement,
		arg.Title,
		arg.Content,
		arg.MediaTitle,
		arg.MediaDescription,
		arg.MediaUrl,
		arg.MediaType,
		arg.IsActive,
		arg.AuthorID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanAnnouncement(row)
}

const getAnnouncementByID = `SELECT ` + announcementColumns + ` FROM announcements WHERE id = ?`

func (q *Queries) GetAnnouncementByID(ctx context.Context, id int64) (Announcement, error) {
	return scanAnnouncement(q.db.QueryRowContext(ctx, getAnnouncementByID, id))
}

const listAnnouncements = `SELECT ` + announcementColumns + ` FROM announcements
WHERE (? = 0 OR is_active = 1)
  AND (? = 0 OR created_at < ? OR (created_at = ? AND id < ?))
ORDER BY created_at DESC, id DESC
LIMIT ?`

type ListAnnouncementsParams struct {
	ActiveOnly bool
	After      Cursor
	Limit      int64
}

func (q *Queries) ListAnnouncements(ctx context.Context, arg ListAnnouncementsParams) ([]Announcement, error) {
	rows, err := q.db.QueryContext(ctx, listAnnouncements,
		arg.ActiveOnly,
		!arg.After.IsZero(),
		arg.After.CreatedAt,
		arg.After.CreatedAt,
		arg.After.ID,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Announcement
	for rows.Next() {
		i, err := scanAnnouncement(rows)
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

const countAnnouncements = `SELECT COUNT(*) FROM announcements`

func (q *Queries) CountAnnouncements(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAnnouncements).Scan(&count)
	return count, err
}

const updateAnnouncement = `
UPDATE announcements
SET title = ?, content = ?, media_title = ?, media_description = ?, media_url = ?, media_type = ?,
    is_active = ?, updated_at = ?
WHERE id = ?
RETURNING ` + announcementColumns

type UpdateAnnouncementParams struct {
	Title            string
	Content          string
	MediaTitle       sql.NullString
	MediaDescription sql.NullString
	MediaUrl         sql.NullString
	MediaType        sql.NullString
	IsActive         bool
	UpdatedAt        time.Time
	ID               int64
}

func (q *Queries) UpdateAnnouncement(ctx context.Context, arg UpdateAnnouncementParams) (Announcement, error) {
	row := q.db.QueryRowContext(ctx, updateAnnouncement,
		arg.Title,
		arg.Content,
		arg.MediaTitle,
		arg.MediaDescription,
		arg.MediaUrl,
		arg.MediaType,
		arg.IsActive,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanAnnouncement(row)
}

const deleteAnnouncement = `DELETE FROM announcements WHERE id = ?`

func (q *Queries) DeleteAnnouncement(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAnnouncement, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanAnnouncement(row rowScanner) (Announcement, error) {
	var i Announcement
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Content,
		&i.MediaTitle,
		&i.MediaDescription,
		&i.MediaUrl,
		&i.MediaType,
		&i.IsActive,
		&i.AuthorID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
