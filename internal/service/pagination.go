// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/campus-cms/internal/store"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListOptions selects a page of content, newest first.
type ListOptions struct {
	// PublicOnly hides content that is not meant for visitors.
	PublicOnly bool
	// Limit is clamped to [1, MaxListLimit]; zero means DefaultListLimit.
	Limit int
	// Cursor is the NextCursor of the previous page, empty for the first.
	Cursor string
}

func (o ListOptions) limit() int {
	switch {
	case o.Limit <= 0:
		return DefaultListLimit
	case o.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return o.Limit
	}
}

// Page is one page of a listing. NextCursor is empty on the last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Cursors encode the (created_at, id) of the last row, so rows inserted
// while paging never shift later pages.
func encodeCursor(createdAt time.Time, id int64) string {
	raw := strconv.FormatInt(createdAt.UnixNano(), 10) + ":" + strconv.FormatInt(id, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(s string) (store.Cursor, error) {
	if s == "" {
		return store.Cursor{}, nil
	}
	invalid := newValidationError("cursor", "is invalid")

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return store.Cursor{}, invalid
	}
	nanos, idStr, ok := strings.Cut(string(raw), ":")
	if !ok {
		return store.Cursor{}, invalid
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return store.Cursor{}, invalid
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return store.Cursor{}, invalid
	}
	return store.Cursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}

// paginate trims the extra probe row and sets NextCursor.
func paginate[R any, T any](rows []R, limit int, convert func(R) T, key func(R) (time.Time, int64)) Page[T] {
	page := Page[T]{Items: make([]T, 0, min(len(rows), limit))}
	more := len(rows) > limit
	if more {
		rows = rows[:limit]
	}
	for _, r := range rows {
		page.Items = append(page.Items, convert(r))
	}
	if more && len(rows) > 0 {
		page.NextCursor = encodeCursor(key(rows[len(rows)-1]))
	}
	return page
}
