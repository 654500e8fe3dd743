// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type Admin struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  sql.NullTime
}

type Announcement struct {
	ID               int64
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

type Photo struct {
	ID           int64
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

type Video struct {
	ID           int64
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

type Message struct {
	ID        int64
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}
