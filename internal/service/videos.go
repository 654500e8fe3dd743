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

// VideoInput carries submitted video fields. Video is the uploaded file for
// source "upload"; YouTubeURL is used for source "youtube".
type VideoInput struct {
	Title       *string
	Description *string
	Source      *string
	YouTubeURL  *string
	IsFeatured  *bool
	Video       *storage.Upload
}

type videoDraft struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=2000"`
	Source      string `json:"source" validate:"required,oneof=upload youtube"`
	YouTubeURL  string `json:"youtubeUrl" validate:"max=2048"`
}

// check validates the draft. hasFile reports whether an upload is present
// or already stored. It returns the embed URL for youtube sources.
func (d videoDraft) check(hasFile bool) (string, error) {
	err := validateStruct(d)
	var embed string
	switch d.Source {
	case model.VideoSourceYouTube:
		if d.YouTubeURL == "" {
			err = addField(err, "youtubeUrl", "is required")
		} else if id, ok := ParseYouTubeID(d.YouTubeURL); ok {
			embed = YouTubeEmbedURL(id)
		} else {
			err = addField(err, "youtubeUrl", "must be a valid YouTube URL")
		}
	case model.VideoSourceUpload:
		if !hasFile {
			err = addField(err, "video", "is required")
		}
	}
	return embed, err
}

// CreateVideo stores an uploaded or embedded video. For youtube sources any
// attached file is ignored.
func (s *ContentService) CreateVideo(ctx context.Context, in VideoInput, authorID int64) (model.Video, error) {
	d := videoDraft{
		Title:       trimmed(in.Title, ""),
		Description: trimmed(in.Description, ""),
		Source:      trimmed(in.Source, model.VideoSourceUpload),
		YouTubeURL:  trimmed(in.YouTubeURL, ""),
	}
	embed, err := d.check(in.Video != nil)
	if err != nil {
		return model.Video{}, err
	}

	now := s.now()
	arg := store.CreateVideoParams{
		Title:       d.Title,
		Description: d.Description,
		Source:      d.Source,
		VideoUrl:    embed,
		IsFeatured:  boolOr(in.IsFeatured, false),
		UploadedBy:  nullID(authorID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var key string
	if d.Source == model.VideoSourceUpload {
		ref, err := s.blobs.Store(ctx, *in.Video, storage.CategoryVideo, VideoFolder)
		if err != nil {
			return model.Video{}, uploadError("video", err)
		}
		key = ref.Key
		arg.VideoUrl = ref.URL
		arg.StorageKey = nullString(ref.Key)
		arg.UrlExpiresAt = nullTime(ref.ExpiresAt)
	}

	row, err := s.queries.CreateVideo(ctx, arg)
	if err != nil {
		s.discardBlob(ctx, key, "video insert failed")
		return model.Video{}, &PersistenceError{Op: "create video", Err: err}
	}

	s.invalidate(ctx)
	s.logger.Info("video created", "id", row.ID, "source", row.Source)
	return model.VideoFromStore(row), nil
}

// ListVideos returns a page of videos, newest first.
func (s *ContentService) ListVideos(ctx context.Context, opts ListOptions) (Page[model.Video], error) {
	after, err := decodeCursor(opts.Cursor)
	if err != nil {
		return Page[model.Video]{}, err
	}
	limit := opts.limit()
	key := fmt.Sprintf("videos:public:%d", limit)

	return cached(ctx, s.videos, key, opts, func() (Page[model.Video], error) {
		rows, err := s.queries.ListVideos(ctx, store.ListVideosParams{After: after, Limit: int64(limit + 1)})
		if err != nil {
			return Page[model.Video]{}, &PersistenceError{Op: "list videos", Err: err}
		}
		return paginate(rows, limit, model.VideoFromStore, func(v store.Video) (time.Time, int64) {
			return v.CreatedAt, v.ID
		}), nil
	})
}

// GetVideo returns one video or ErrNotFound.
func (s *ContentService) GetVideo(ctx context.Context, id int64) (model.Video, error) {
	row, err := s.queries.GetVideoByID(ctx, id)
	if err != nil {
		return model.Video{}, persistence("get video", err)
	}
	return model.VideoFromStore(row), nil
}

// UpdateVideo applies the non-nil fields of in. Switching to youtube releases
// the uploaded blob after the write; switching to upload requires a file.
func (s *ContentService) UpdateVideo(ctx context.Context, id int64, in VideoInput) (model.Video, error) {
	cur, err := s.queries.GetVideoByID(ctx, id)
	if err != nil {
		return model.Video{}, persistence("get video", err)
	}

	source := trimmed(in.Source, cur.Source)
	ytFallback := ""
	if cur.Source == model.VideoSourceYouTube {
		ytFallback = cur.VideoUrl
	}
	d := videoDraft{
		Title:       trimmed(in.Title, cur.Title),
		Description: trimmed(in.Description, cur.Description),
		Source:      source,
		YouTubeURL:  trimmed(in.YouTubeURL, ytFallback),
	}
	hasFile := in.Video != nil || (cur.Source == model.VideoSourceUpload && cur.StorageKey.Valid)
	embed, err := d.check(hasFile)
	if err != nil {
		return model.Video{}, err
	}

	arg := store.UpdateVideoParams{
		Title:       d.Title,
		Description: d.Description,
		Source:      d.Source,
		IsFeatured:  boolOr(in.IsFeatured, cur.IsFeatured),
		UpdatedAt:   s.now(),
		ID:          id,
	}

	var newKey string
	switch {
	case d.Source == model.VideoSourceYouTube:
		arg.VideoUrl = embed
	case in.Video != nil:
		ref, err := s.blobs.Store(ctx, *in.Video, storage.CategoryVideo, VideoFolder)
		if err != nil {
			return model.Video{}, uploadError("video", err)
		}
		newKey = ref.Key
		arg.VideoUrl = ref.URL
		arg.StorageKey = nullString(ref.Key)
		arg.UrlExpiresAt = nullTime(ref.ExpiresAt)
	default:
		arg.VideoUrl = cur.VideoUrl
		arg.StorageKey = cur.StorageKey
		arg.UrlExpiresAt = cur.UrlExpiresAt
	}

	row, err := s.queries.UpdateVideo(ctx, arg)
	if err != nil {
		s.discardBlob(ctx, newKey, "video update failed")
		return model.Video{}, persistence("update video", err)
	}
	if oldKey := cur.StorageKey.String; oldKey != "" && oldKey != arg.StorageKey.String {
		s.discardBlob(ctx, oldKey, "video file replaced")
	}

	s.invalidate(ctx)
	return model.VideoFromStore(row), nil
}

// DeleteVideo removes the record and then its blob, if any.
func (s *ContentService) DeleteVideo(ctx context.Context, id int64) error {
	cur, err := s.queries.GetVideoByID(ctx, id)
	if err != nil {
		return persistence("get video", err)
	}

	n, err := s.queries.DeleteVideo(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "delete video", Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}

	if cur.StorageKey.Valid {
		s.discardBlob(ctx, cur.StorageKey.String, "video deleted")
	}
	s.invalidate(ctx)
	s.logger.Info("video deleted", "id", id)
	return nil
}
