// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/campus-cms/internal/model"
	"github.com/olegiv/campus-cms/internal/seo"
	"github.com/olegiv/campus-cms/internal/service"
)

// SEOHandler serves robots.txt and sitemap.xml.
type SEOHandler struct {
	content     *service.ContentService
	siteURL     string
	disallowAll bool
}

// NewSEOHandler creates a new SEOHandler. With disallowAll set, crawlers
// are turned away from the whole site.
func NewSEOHandler(content *service.ContentService, siteURL string, disallowAll bool) *SEOHandler {
	return &SEOHandler{content: content, siteURL: siteURL, disallowAll: disallowAll}
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(HeaderContentType, "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(seo.BuildRobots(seo.RobotsConfig{
		SiteURL:     h.siteURL,
		DisallowAll: h.disallowAll,
	})))
}

// Sitemap handles GET /sitemap.xml. Listing pages carry the creation time
// of their newest public item.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	b := seo.NewSitemapBuilder(h.siteURL)
	b.AddPage(seo.SitemapPage{Path: RouteRoot, ChangeFreq: seo.ChangeFreqDaily, Priority: "1.0"})
	b.AddPage(seo.SitemapPage{
		Path:       RouteAnnouncements,
		LastMod:    newest(ctx, h.content.ListAnnouncements, announcementTime),
		ChangeFreq: seo.ChangeFreqDaily,
		Priority:   "0.8",
	})
	b.AddPage(seo.SitemapPage{
		Path:       RouteGallery,
		LastMod:    newest(ctx, h.content.ListPhotos, photoTime),
		ChangeFreq: seo.ChangeFreqWeekly,
		Priority:   "0.7",
	})
	b.AddPage(seo.SitemapPage{
		Path:       RouteVideos,
		LastMod:    newest(ctx, h.content.ListVideos, videoTime),
		ChangeFreq: seo.ChangeFreqWeekly,
		Priority:   "0.7",
	})
	b.AddPage(seo.SitemapPage{Path: RouteAbout, ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.5"})
	b.AddPage(seo.SitemapPage{Path: RouteContact, ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.5"})

	out, err := b.Build()
	if err != nil {
		logAndInternalError(w, "failed to build sitemap", "error", err)
		return
	}

	w.Header().Set(HeaderContentType, "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(out)
}

// newest returns the timestamp of the first public item, or the zero time.
func newest[T any](ctx context.Context, list func(context.Context, service.ListOptions) (service.Page[T], error), at func(T) time.Time) time.Time {
	page, err := list(ctx, service.ListOptions{PublicOnly: true, Limit: 1})
	if err != nil {
		slog.Warn("sitemap listing failed", "error", err)
		return time.Time{}
	}
	if len(page.Items) == 0 {
		return time.Time{}
	}
	return at(page.Items[0])
}

func announcementTime(a model.Announcement) time.Time {
	return a.CreatedAt
}

func photoTime(p model.Photo) time.Time {
	return p.CreatedAt
}

func videoTime(v model.Video) time.Time {
	return v.CreatedAt
}
