// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the content types exposed to templates and the JSON
// API, and their conversion from database rows.
package model

import (
	"time"

	"github.com/olegiv/campus-cms/internal/store"
)

// Media types inferred from an announcement media URL.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Video sources.
const (
	VideoSourceUpload  = "upload"
	VideoSourceYouTube = "youtube"
)

// Media is the optional attachment of an announcement.
type Media struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Type        string `json:"type,omitempty"`
}

// IsZero reports whether no media field is set.
func (m Media) IsZero() bool {
	return m == Media{}
}

// Announcement is a news item on the public site.
type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Media     *Media    `json:"media,omitempty"`
	IsActive  bool      `json:"isActive"`
	AuthorID  int64     `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Photo is a gallery image.
type Photo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	StorageKey  string    `json:"-"`
	IsFeatured  bool      `json:"isFeatured"`
	UploadedBy  int64     `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Video is either an uploaded file or an embedded YouTube video.
type Video struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	VideoURL    string    `json:"videoUrl"`
	StorageKey  string    `json:"-"`
	IsFeatured  bool      `json:"isFeatured"`
	UploadedBy  int64     `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsEmbed reports whether the video is played through an iframe.
func (v Video) IsEmbed() bool {
	return v.Source == VideoSourceYouTube
}

// Message is a contact form submission.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// AnnouncementFromStore converts a database row.
func AnnouncementFromStore(a store.Announcement) Announcement {
	out := Announcement{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		IsActive:  a.IsActive,
		AuthorID:  a.AuthorID.Int64,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	m := Media{
		Title:       a.MediaTitle.String,
		Description: a.MediaDescription.String,
		URL:         a.MediaUrl.String,
		Type:        a.MediaType.String,
	}
	if !m.IsZero() {
		out.Media = &m
	}
	return out
}

// PhotoFromStore converts a database row.
func PhotoFromStore(p store.Photo) Photo {
	return Photo{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageUrl,
		StorageKey:  p.StorageKey,
		IsFeatured:  p.IsFeatured,
		UploadedBy:  p.UploadedBy.Int64,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// VideoFromStore converts a database row.
func VideoFromStore(v store.Video) Video {
	return Video{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Source:      v.Source,
		VideoURL:    v.VideoUrl,
		StorageKey:  v.StorageKey.String,
		IsFeatured:  v.IsFeatured,
		UploadedBy:  v.UploadedBy.Int64,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// MessageFromStore converts a database row.
func MessageFromStore(m store.Message) Message {
	return Message{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}
