// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-cms/internal/cache"
	"github.com/olegiv/campus-cms/internal/service"
	"github.com/olegiv/campus-cms/internal/testutil"
)

func TestPublicListingCache(t *testing.T) {
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mc.Close() })
	f := newFixture(t, service.WithListingCache(mc, time.Minute, nil))
	ctx := context.Background()

	page, err := f.svc.ListPhotos(ctx, service.ListOptions{PublicOnly: true})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, mc.Len(), "first public page is cached")

	_, err = f.svc.ListPhotos(ctx, service.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, mc.Len(), "admin listings bypass the cache")

	_, err = f.svc.CreatePhoto(ctx, service.PhotoInput{
		Title:       ptr("Gate"),
		Description: ptr("Main gate"),
		Image:       testutil.JPEGUpload("gate.jpg"),
	}, 0)
	require.NoError(t, err)
	assert.Zero(t, mc.Len(), "writes clear cached listings")

	page, err = f.svc.ListPhotos(ctx, service.ListOptions{PublicOnly: true})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestRefreshSignedURLs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.URLTTL = time.Hour
	f.backend.Now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	p, err := f.svc.CreatePhoto(ctx, service.PhotoInput{
		Title:       ptr("Hall"),
		Description: ptr("Assembly hall"),
		Image:       testutil.JPEGUpload("hall.png.jpg"),
	}, 0)
	require.NoError(t, err)
	v, err := f.svc.CreateVideo(ctx, service.VideoInput{
		Title:       ptr("Intro"),
		Description: ptr("Welcome video"),
		Video:       testutil.MP4Upload("intro.mp4"),
	}, 0)
	require.NoError(t, err)
	_, err = f.svc.CreateVideo(ctx, service.VideoInput{
		Title:       ptr("Embed"),
		Description: ptr("Not refreshed"),
		Source:      ptr("youtube"),
		YouTubeURL:  ptr("https://youtu.be/dQw4w9WgXcQ"),
	}, 0)
	require.NoError(t, err)

	res, err := f.svc.RefreshSignedURLs(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, service.RefreshResult{}, res, "nothing expires within a minute")

	res, err = f.svc.RefreshSignedURLs(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, service.RefreshResult{Refreshed: 2}, res)

	p2, err := f.svc.GetPhoto(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, p.ImageURL, p2.ImageURL)
	assert.Equal(t, p.StorageKey, p2.StorageKey)
	v2, err := f.svc.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.NotEqual(t, v.VideoURL, v2.VideoURL)

	f.backend.URLErr = errors.New("credentials expired")
	res, err = f.svc.RefreshSignedURLs(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, service.RefreshResult{Failed: 2}, res)

	p3, err := f.svc.GetPhoto(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p2.ImageURL, p3.ImageURL, "failed refresh leaves the stored URL")
}

func TestMessageService(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	svc := service.NewMessageService(db, testutil.TestLoggerSilent())
	ctx := context.Background()

	_, err := svc.Create(ctx, service.MessageInput{Name: "Ann", Email: "not-an-email", Subject: "Hi"})
	requireFields(t, err, "email", "message")

	m, err := svc.Create(ctx, service.MessageInput{
		Name:    " Ann ",
		Email:   "ann@example.edu",
		Subject: "Admissions",
		Message: "When does enrolment open?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", m.Name)

	list, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)

	require.NoError(t, svc.Delete(ctx, m.ID))
	assert.ErrorIs(t, svc.Delete(ctx, m.ID), service.ErrNotFound)
}

func TestEventService_Recent(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	for i, msg := range []string{"first", "second", "third"} {
		_, err := db.ExecContext(ctx,
			`INSERT INTO events (level, category, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
			"warning", "storage", msg, "{}", time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC))
		require.NoError(t, err)
	}

	events, err := service.NewEventService(db).Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "third", events[0].Message)
	assert.Equal(t, "second", events[1].Message)
}
