// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/campus-cms/internal/model"
	"github.com/olegiv/campus-cms/internal/render"
	"github.com/olegiv/campus-cms/internal/service"
)

// Page sizes of the public listing pages.
const (
	publicAnnouncementsPage = 10
	publicPhotosPage        = 12
	publicVideosPage        = 6
)

var contactFields = []string{"name", "email", "subject", "message"}

// HomeData holds the home page blocks.
type HomeData struct {
	Announcements []model.Announcement
	Videos        []model.Video
	Photos        []model.Photo
}

// FrontendHandler serves the public site.
type FrontendHandler struct {
	renderer *render.Renderer
	flash    Flasher
	content  *service.ContentService
	messages *service.MessageService
	logger   *slog.Logger
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(renderer *render.Renderer, f Flasher, content *service.ContentService, messages *service.MessageService, logger *slog.Logger) *FrontendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontendHandler{
		renderer: renderer,
		flash:    f,
		content:  content,
		messages: messages,
		logger:   logger,
	}
}

func (h *FrontendHandler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	renderPage(w, r, h.renderer, status, name, render.TemplateData{Title: title, Data: data})
}

// Home handles GET /. A block that fails to load is logged and left empty.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data HomeData

	if page, err := h.content.ListAnnouncements(ctx, service.ListOptions{PublicOnly: true, Limit: homeAnnouncements}); err != nil {
		h.logger.Error("failed to load home announcements", "error", err)
	} else {
		data.Announcements = page.Items
	}
	if page, err := h.content.ListVideos(ctx, service.ListOptions{PublicOnly: true, Limit: homeVideos}); err != nil {
		h.logger.Error("failed to load home videos", "error", err)
	} else {
		data.Videos = page.Items
	}
	if page, err := h.content.ListPhotos(ctx, service.ListOptions{PublicOnly: true, Limit: homePhotos}); err != nil {
		h.logger.Error("failed to load home photos", "error", err)
	} else {
		data.Photos = page.Items
	}

	h.render(w, r, http.StatusOK, "public/home", "Home", data)
}

// About handles GET /about.
func (h *FrontendHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "public/about", "About Us", nil)
}

// Contact handles GET /contact.
func (h *FrontendHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "public/contact", "Contact", nil)
}

// SubmitContact handles POST /contact.
func (h *FrontendHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	ff := formFailure{FormURL: RouteContact, ListURL: RouteContact, Entity: "Message"}
	if err := parseBody(w, r, maxFormBody, "message"); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}
	ff.Values = formValues(r, contactFields...)

	in := service.MessageInput{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}
	if _, err := h.messages.Create(r.Context(), in); err != nil {
		failForm(w, r, h.flash, ff, err)
		return
	}
	flashSuccess(w, r, h.flash, RouteContact, "Thank you for your message. We will get back to you soon.")
}

// Gallery handles GET /gallery.
func (h *FrontendHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	publicList(h, w, r, "public/gallery", "Gallery", publicPhotosPage, h.content.ListPhotos)
}

// Videos handles GET /videos.
func (h *FrontendHandler) Videos(w http.ResponseWriter, r *http.Request) {
	publicList(h, w, r, "public/videos", "Videos", publicVideosPage, h.content.ListVideos)
}

// Announcements handles GET /announcements.
func (h *FrontendHandler) Announcements(w http.ResponseWriter, r *http.Request) {
	publicList(h, w, r, "public/announcements", "Announcements", publicAnnouncementsPage, h.content.ListAnnouncements)
}

// NotFound renders the 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "public/error", "Page Not Found", "The page you are looking for does not exist.")
}

func publicList[T any](h *FrontendHandler, w http.ResponseWriter, r *http.Request, name, title string, size int,
	list func(context.Context, service.ListOptions) (service.Page[T], error)) {
	page, err := list(r.Context(), listOptions(r, size, true))
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}
	if err != nil {
		h.logger.Error("failed to load public listing", "page", name, "error", err)
		h.render(w, r, http.StatusInternalServerError, "public/error", "Error", msgInternal)
		return
	}
	h.render(w, r, http.StatusOK, name, title, ListData[T]{Items: page.Items, NextCursor: page.NextCursor})
}
