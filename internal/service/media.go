// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/olegiv/campus-cms/internal/model"
)

// youTubeID matches watch, embed, v/, e/, shorts-less channel paths and
// youtu.be short links, capturing the 11 character video id.
var youTubeID = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})(?:[?&#].*)?$`)

var imageExt = regexp.MustCompile(`(?i)\.(jpe?g|png|gif)$`)

// ParseYouTubeID extracts the video id from a YouTube URL.
func ParseYouTubeID(raw string) (string, bool) {
	m := youTubeID.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// YouTubeEmbedURL returns the canonical embed URL for a video id.
func YouTubeEmbedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}

// InferMediaType classifies an announcement media URL: known video hosts
// give "video", an image extension on the path gives "image", anything else
// gives "". The result depends only on the URL.
func InferMediaType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	switch host {
	case "youtube.com", "youtu.be", "vimeo.com", "player.vimeo.com":
		return model.MediaTypeVideo
	}

	if imageExt.MatchString(u.Path) {
		return model.MediaTypeImage
	}
	return ""
}
