// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixEdit is the suffix for edit form routes.
	RouteSuffixEdit = "/edit"
	// RouteSuffixDelete is the suffix for form-based delete routes.
	RouteSuffixDelete = "/delete"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	RouteAbout         = "/about"
	RouteContact       = "/contact"
	RouteGallery       = "/gallery"
	RouteVideos        = "/videos"
	RouteAnnouncements = "/announcements"
	RoutePhotos        = "/photos"
	RouteMessages      = "/messages"
	RouteJobs          = "/jobs"
	RouteEvents        = "/events"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
)

const (
	redirectAdmin              = "/admin"
	redirectLogin              = redirectAdmin + RouteLogin
	redirectAdminAnnouncements = redirectAdmin + RouteAnnouncements
	redirectAdminPhotos        = redirectAdmin + RoutePhotos
	redirectAdminVideos        = redirectAdmin + RouteVideos
	redirectAdminMessages      = redirectAdmin + RouteMessages

	redirectAdminAnnouncementsEdit = redirectAdminAnnouncements + "/%d" + RouteSuffixEdit
	redirectAdminPhotosEdit        = redirectAdminPhotos + "/%d" + RouteSuffixEdit
	redirectAdminVideosEdit        = redirectAdminVideos + "/%d" + RouteSuffixEdit

	// Edit forms post with a method override so one form serves PUT.
	actionAnnouncementUpdate = redirectAdminAnnouncements + "/%d?_method=PUT"
	actionPhotoUpdate        = redirectAdminPhotos + "/%d?_method=PUT"
	actionVideoUpdate        = redirectAdminVideos + "/%d?_method=PUT"
)

// Upload form field names.
const (
	fieldImage = "image"
	fieldVideo = "video"
)

// Home page block sizes.
const (
	homeAnnouncements = 3
	homeVideos        = 3
	homePhotos        = 6
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
