// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/campus-cms/internal/handler/api"
	"github.com/olegiv/campus-cms/internal/metrics"
	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/render"
	"github.com/olegiv/campus-cms/internal/service"
	"github.com/olegiv/campus-cms/internal/session"
)

// RouterConfig wires the handlers into a router. Optional fields may be nil.
type RouterConfig struct {
	Renderer *render.Renderer
	Sessions *session.Manager
	Content  *service.ContentService
	Messages *service.MessageService
	Events   *service.EventService
	Health   *HealthHandler
	SEO      *SEOHandler

	Jobs            JobRunner
	LoginProtection *middleware.LoginProtection
	Metrics         *metrics.Metrics

	Security middleware.SecurityHeadersConfig
	// CSRF protects every unsafe request when set.
	CSRF func(http.Handler) http.Handler

	// Static is served at /static/.
	Static fs.FS
	// Uploads serves /uploads/ for the local storage backend.
	Uploads http.Handler
	// RequestLogging enables chi's request logger.
	RequestLogging bool
}

// crudHandlers defines the standard CRUD handler methods.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers the form routes for a content kind:
// GET /, GET /new, POST /, GET /{id}/edit, PUT|POST /{id}, DELETE /{id},
// POST /{id}/delete.
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	baseID := base + RouteParamID
	r.Get(base, h.List)
	r.Get(base+RouteSuffixNew, h.NewForm)
	r.Post(base, h.Create)
	r.Get(baseID+RouteSuffixEdit, h.EditForm)
	r.Put(baseID, h.Update)
	r.Post(baseID, h.Update) // HTML forms without a method override
	r.Delete(baseID, h.Delete)
	r.Post(baseID+RouteSuffixDelete, h.Delete)
}

// NewRouter builds the application router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.RequestLogging {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.SecurityHeaders(cfg.Security))
	r.Use(middleware.MethodOverride)
	r.Use(cfg.Sessions.LoadAndSave)
	if cfg.CSRF != nil {
		r.Use(cfg.CSRF)
	}

	frontend := NewFrontendHandler(cfg.Renderer, cfg.Sessions, cfg.Content, cfg.Messages, nil)
	authH := NewAuthHandler(cfg.Renderer, cfg.Sessions, cfg.LoginProtection, cfg.Metrics)
	adminH := NewAdminHandler(cfg.Renderer, cfg.Sessions, cfg.Content, cfg.Events, cfg.Jobs)
	eventsH := NewEventsHandler(cfg.Renderer, cfg.Events)
	contentH := NewContentHandler(cfg.Renderer, cfg.Sessions, cfg.Content)
	messagesH := NewMessagesHandler(cfg.Renderer, cfg.Sessions, cfg.Messages)
	apiH := api.NewHandler(cfg.Content, cfg.Messages)

	// Operations
	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Health)
		r.Get("/health/live", cfg.Health.Liveness)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}
	if cfg.SEO != nil {
		r.Get("/robots.txt", cfg.SEO.Robots)
		r.Get("/sitemap.xml", cfg.SEO.Sitemap)
	}
	if cfg.Static != nil {
		r.Handle("/static/*", middleware.StaticCache(24*time.Hour, false)(
			http.StripPrefix("/static/", http.FileServerFS(cfg.Static))))
	}
	if cfg.Uploads != nil {
		// Blob keys are unique, so uploaded files never change.
		r.Handle("/uploads/*", middleware.StaticCache(365*24*time.Hour, true)(
			http.StripPrefix("/uploads/", cfg.Uploads)))
	}

	// Public site
	r.Get(RouteRoot, frontend.Home)
	r.Get(RouteAbout, frontend.About)
	r.Get(RouteContact, frontend.Contact)
	r.Post(RouteContact, frontend.SubmitContact)
	r.Get(RouteGallery, frontend.Gallery)
	r.Get(RouteVideos, frontend.Videos)
	r.Get(RouteAnnouncements, frontend.Announcements)

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Get(RouteAnnouncements, apiH.ListAnnouncements)
		r.Get(RoutePhotos, apiH.ListPhotos)
		r.Get(RouteVideos, apiH.ListVideos)
		r.Post(RouteContact, apiH.CreateMessage)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdminAPI(cfg.Sessions))
			r.Get(RouteAnnouncements, apiH.AdminListAnnouncements)
			r.Delete(RouteAnnouncements+RouteParamID, apiH.DeleteAnnouncement)
			r.Get(RoutePhotos, apiH.AdminListPhotos)
			r.Delete(RoutePhotos+RouteParamID, apiH.DeletePhoto)
			r.Get(RouteVideos, apiH.AdminListVideos)
			r.Delete(RouteVideos+RouteParamID, apiH.DeleteVideo)
		})
	})

	// Admin panel
	r.Route("/admin", func(r chi.Router) {
		r.Get(RouteLogin, authH.LoginForm)
		if cfg.LoginProtection != nil {
			r.With(cfg.LoginProtection.Middleware()).Post(RouteLogin, authH.Login)
		} else {
			r.Post(RouteLogin, authH.Login)
		}
		r.Get(RouteLogout, authH.Logout)
		r.Post(RouteLogout, authH.Logout)

		// RequireAdmin runs before any handler parses a request body.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(cfg.Sessions))

			r.Get(RouteRoot, adminH.Dashboard)
			r.Get(RouteEvents, eventsH.List)
			r.Post(RouteJobs+"/{name}/run", adminH.TriggerJob)
			r.Post(RouteJobs+"/{name}/schedule", adminH.UpdateJobSchedule)

			registerCRUD(r, RouteAnnouncements, crudHandlers{
				List: contentH.ListAnnouncements, NewForm: contentH.NewAnnouncement, Create: contentH.CreateAnnouncement,
				EditForm: contentH.EditAnnouncement, Update: contentH.UpdateAnnouncement, Delete: contentH.DeleteAnnouncement,
			})
			registerCRUD(r, RoutePhotos, crudHandlers{
				List: contentH.ListPhotos, NewForm: contentH.NewPhoto, Create: contentH.CreatePhoto,
				EditForm: contentH.EditPhoto, Update: contentH.UpdatePhoto, Delete: contentH.DeletePhoto,
			})
			registerCRUD(r, RouteVideos, crudHandlers{
				List: contentH.ListVideos, NewForm: contentH.NewVideo, Create: contentH.CreateVideo,
				EditForm: contentH.EditVideo, Update: contentH.UpdateVideo, Delete: contentH.DeleteVideo,
			})

			r.Get(RouteMessages, messagesH.List)
			r.Delete(RouteMessages+RouteParamID, messagesH.Delete)
			r.Post(RouteMessages+RouteParamID+RouteSuffixDelete, messagesH.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/") {
			api.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		frontend.NotFound(w, req)
	})

	return r
}
