// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/campus-cms/internal/model"
	"github.com/olegiv/campus-cms/internal/store"
)

// AnnouncementInput carries submitted announcement fields. Nil fields keep
// their current value on update and take the default on create.
type AnnouncementInput struct {
	Title            *string
	Content          *string
	MediaTitle       *string
	MediaDescription *string
	MediaURL         *string
	IsActive         *bool
}

type announcementDraft struct {
	Title   string     `json:"title" validate:"required,max=100"`
	Content string     `json:"content" validate:"required,max=10000"`
	Media   mediaDraft `json:"media"`
}

type mediaDraft struct {
	Title       string `json:"title" validate:"max=100"`
	Description string `json:"description" validate:"max=500"`
	URL         string `json:"url" validate:"omitempty,max=2048,http_url"`
}

func (d announcementDraft) mediaType() string {
	return InferMediaType(d.Media.URL)
}

// CreateAnnouncement validates and stores a new announcement.
func (s *ContentService) CreateAnnouncement(ctx context.Context, in AnnouncementInput, authorID int64) (model.Announcement, error) {
	d := announcementDraft{
		Title:   trimmed(in.Title, ""),
		Content: trimmed(in.Content, ""),
		Media: mediaDraft{
			Title:       trimmed(in.MediaTitle, ""),
			Description: trimmed(in.MediaDescription, ""),
			URL:         trimmed(in.MediaURL, ""),
		},
	}
	if err := validateStruct(d); err != nil {
		return model.Announcement{}, err
	}

	now := s.now()
	row, err := s.queries.CreateAnnouncement(ctx, store.CreateAnnouncementParams{
		Title:            d.Title,
		Content:          d.Content,
		MediaTitle:       nullString(d.Media.Title),
		MediaDescription: nullString(d.Media.Description),
		MediaUrl:         nullString(d.Media.URL),
		MediaType:        nullString(d.mediaType()),
		IsActive:         boolOr(in.IsActive, true),
		AuthorID:         nullID(authorID),
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return model.Announcement{}, &PersistenceError{Op: "create announcement", Err: err}
	}

	s.invalidate(ctx)
	s.logger.Info("announcement created", "id", row.ID, "author_id", authorID)
	return model.AnnouncementFromStore(row), nil
}

// ListAnnouncements returns a page of announcements, newest first. Public
// listings only include active announcements.
func (s *ContentService) ListAnnouncements(ctx context.Context, opts ListOptions) (Page[model.Announcement], error) {
	after, err := decodeCursor(opts.Cursor)
	if err != nil {
		return Page[model.Announcement]{}, err
	}
	limit := opts.limit()
	key := fmt.Sprintf("announcements:public:%d", limit)

	return cached(ctx, s.announcements, key, opts, func() (Page[model.Announcement], error) {
		rows, err := s.queries.ListAnnouncements(ctx, store.ListAnnouncementsParams{
			ActiveOnly: opts.PublicOnly,
			After:      after,
			Limit:      int64(limit + 1),
		})
		if err != nil {
			return Page[model.Announcement]{}, &PersistenceError{Op: "list announcements", Err: err}
		}
		return paginate(rows, limit, model.AnnouncementFromStore, func(a store.Announcement) (time.Time, int64) {
			return a.CreatedAt, a.ID
		}), nil
	})
}

// GetAnnouncement returns one announcement or ErrNotFound.
func (s *ContentService) GetAnnouncement(ctx context.Context, id int64) (model.Announcement, error) {
	row, err := s.queries.GetAnnouncementByID(ctx, id)
	if err != nil {
		return model.Announcement{}, persistence("get announcement", err)
	}
	return model.AnnouncementFromStore(row), nil
}

// UpdateAnnouncement applies the non-nil fields of in. Clearing the media
// URL clears the inferred media type too.
func (s *ContentService) UpdateAnnouncement(ctx context.Context, id int64, in AnnouncementInput) (model.Announcement, error) {
	cur, err := s.queries.GetAnnouncementByID(ctx, id)
	if err != nil {
		return model.Announcement{}, persistence("get announcement", err)
	}

	d := announcementDraft{
		Title:   trimmed(in.Title, cur.Title),
		Content: trimmed(in.Content, cur.Content),
		Media: mediaDraft{
			Title:       trimmed(in.MediaTitle, cur.MediaTitle.String),
			Description: trimmed(in.MediaDescription, cur.MediaDescription.String),
			URL:         trimmed(in.MediaURL, cur.MediaUrl.String),
		},
	}
	if err := validateStruct(d); err != nil {
		return model.Announcement{}, err
	}

	row, err := s.queries.UpdateAnnouncement(ctx, store.UpdateAnnouncementParams{
		Title:            d.Title,
		Content:          d.Content,
		MediaTitle:       nullString(d.Media.Title),
		MediaDescription: nullString(d.Media.Description),
		MediaUrl:         nullString(d.Media.URL),
		MediaType:        nullString(d.mediaType()),
		IsActive:         boolOr(in.IsActive, cur.IsActive),
		UpdatedAt:        s.now(),
		ID:               id,
	})
	if err != nil {
		return model.Announcement{}, persistence("update announcement", err)
	}

	s.invalidate(ctx)
	return model.AnnouncementFromStore(row), nil
}

// DeleteAnnouncement removes an announcement.
func (s *ContentService) DeleteAnnouncement(ctx context.Context, id int64) error {
	n, err := s.queries.DeleteAnnouncement(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "delete announcement", Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx)
	s.logger.Info("announcement deleted", "id", id)
	return nil
}
