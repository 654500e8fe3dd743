// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/olegiv/campus-cms/internal/auth"
	"github.com/olegiv/campus-cms/internal/cache"
	"github.com/olegiv/campus-cms/internal/config"
	"github.com/olegiv/campus-cms/internal/handler"
	"github.com/olegiv/campus-cms/internal/logging"
	"github.com/olegiv/campus-cms/internal/metrics"
	"github.com/olegiv/campus-cms/internal/middleware"
	"github.com/olegiv/campus-cms/internal/render"
	"github.com/olegiv/campus-cms/internal/scheduler"
	"github.com/olegiv/campus-cms/internal/service"
	"github.com/olegiv/campus-cms/internal/session"
	"github.com/olegiv/campus-cms/internal/storage"
	"github.com/olegiv/campus-cms/internal/store"
	"github.com/olegiv/campus-cms/internal/version"
	"github.com/olegiv/campus-cms/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// refreshMargin is how close to expiry a signed URL must be before the
// refresh job re-signs it.
const refreshMargin = 24 * time.Hour

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "campus - college website and admin panel\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_DB_PATH           SQLite database path (default: ./data/campus.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_ADMIN_USERNAME    First administrator, used while no admin exists\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_ADMIN_PASSWORD    Password of the first administrator\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_ADMIN_EMAIL       Email of the first administrator\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_STORAGE_BACKEND   local|s3|cloudinary (default: local)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_REDIS_URL         Redis URL for the listing cache (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.Long("campus"))
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := cfg.LogLevelValue()
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Warnings and errors also go to the event log shown on the dashboard.
	logger := slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("database ready", "version", info.String())

	ctx := context.Background()

	creds := auth.NewCredentialStore(db, logger)
	if err := creds.Bootstrap(ctx, auth.BootstrapConfig{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	}); err != nil {
		return fmt.Errorf("bootstrapping administrator: %w", err)
	}

	sessions := session.New(db, creds, session.Config{
		IdleTimeout: cfg.SessionIdleTimeout,
		Lifetime:    cfg.SessionLifetime,
		Secure:      !cfg.IsDevelopment(),
	})

	m := metrics.New()

	backend, uploads, mediaOrigins, err := newStorageBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing %s storage: %w", cfg.StorageBackend, err)
	}
	blobs := storage.NewGateway(backend, logger,
		storage.WithTimeout(cfg.UploadTimeout),
		storage.WithMetrics(m),
	)
	slog.Info("blob storage ready", "backend", blobs.Backend())

	listingCache := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTL,
		MaxEntries: cfg.CacheMaxSize,
	}, logger)
	defer func() {
		if err := listingCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	content := service.NewContentService(db, blobs, logger,
		service.WithListingCache(listingCache, cfg.CacheTTL, m),
		service.WithMetrics(m),
	)
	messages := service.NewMessageService(db, logger)
	events := service.NewEventService(db)

	jobs := scheduler.New(logger)
	if err := jobs.Register(scheduler.URLRefreshJob(content, cfg.URLRefreshSchedule, refreshMargin, logger)); err != nil {
		return fmt.Errorf("registering jobs: %w", err)
	}
	jobs.Start()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, Sessions: sessions, Logger: logger})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}

	health := handler.HealthConfig{Auth: sessions, Version: info}
	if pinger, ok := listingCache.(handler.Pinger); ok {
		health.Cache = pinger
	}
	if cfg.StorageBackend == config.StorageLocal {
		health.UploadsDir = cfg.UploadsDir
	}

	csrf := middleware.CSRF(middleware.DefaultCSRFConfig(
		[]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr()))

	router := handler.NewRouter(handler.RouterConfig{
		Renderer:        renderer,
		Sessions:        sessions,
		Content:         content,
		Messages:        messages,
		Events:          events,
		Health:          handler.NewHealthHandler(db, health),
		SEO:             handler.NewSEOHandler(content, cfg.SiteURL, cfg.IsDevelopment()),
		Jobs:            jobs,
		LoginProtection: loginProtection,
		Metrics:         m,
		Security:        middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment(), mediaOrigins...),
		CSRF:            csrf,
		Static:          staticFS,
		Uploads:         uploads,
		RequestLogging:  cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       5 * time.Minute, // video uploads up to 50 MB
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	jobs.Stop(shutdownCtx)

	slog.Info("server stopped")
	return nil
}

// newStorageBackend builds the configured blob backend. For the local
// backend it also returns the handler serving /uploads/; remote backends
// return the origins their media URLs live on.
func newStorageBackend(ctx context.Context, cfg *config.Config) (storage.Backend, http.Handler, []string, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		b, err := storage.NewS3Backend(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
			SignedURLTTL:    cfg.SignedURLTTL,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		var origins []string
		for _, o := range []string{cfg.S3.Endpoint, cfg.S3.PublicBaseURL} {
			if o != "" {
				origins = append(origins, o)
			}
		}
		return b, nil, origins, nil

	case config.StorageCloudinary:
		b, err := storage.NewCloudinaryBackend(storage.CloudinaryConfig{
			CloudName: cfg.Cloudinary.CloudName,
			APIKey:    cfg.Cloudinary.APIKey,
			APISecret: cfg.Cloudinary.APISecret,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return b, nil, []string{"https://res.cloudinary.com"}, nil

	default:
		b, err := storage.NewLocalBackend(cfg.UploadsDir, "/uploads")
		if err != nil {
			return nil, nil, nil, err
		}
		return b, http.FileServer(http.Dir(b.Root())), nil, nil
	}
}
