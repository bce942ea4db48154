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

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/olegiv/furnishop/internal/api"
	"github.com/olegiv/furnishop/internal/config"
	"github.com/olegiv/furnishop/internal/handler"
	"github.com/olegiv/furnishop/internal/i18n"
	"github.com/olegiv/furnishop/internal/imaging"
	"github.com/olegiv/furnishop/internal/logging"
	"github.com/olegiv/furnishop/internal/middleware"
	"github.com/olegiv/furnishop/internal/render"
	"github.com/olegiv/furnishop/internal/session"
	"github.com/olegiv/furnishop/internal/store"
	"github.com/olegiv/furnishop/internal/version"
	"github.com/olegiv/furnishop/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Login and registration attempts allowed per client IP.
const (
	authRateLimit = 0.2 // one every five seconds once the burst is used
	authRateBurst = 10
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "furnishop - furniture marketplace dashboard\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FURNISHOP_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FURNISHOP_API_BASE_URL      Marketplace API root (overrides FURNISHOP_API_TARGET)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FURNISHOP_API_TARGET        Marketplace API root\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FURNISHOP_PUBLIC_HOST       Public host, selects the hosted API on preview hosts\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FURNISHOP_DB_PATH           SQLite session database (default: ./data/furnishop.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FURNISHOP_REDIS_URL         Keep sessions in Redis instead (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FURNISHOP_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FURNISHOP_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FURNISHOP_IMAGE_MAX_PIXELS  Largest accepted image area in pixels (default: 40000000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FURNISHOP_LOG_LEVEL         debug|info|warn|error (default: info)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	isDev := cfg.IsDevelopment()

	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}
	slog.Info("i18n system initialized", "languages", i18n.SupportedLanguages)

	// The database only holds sessions, but /health probes it either way
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
	slog.Info("database ready")

	sessionManager, closeSessions, err := newSessionManager(cfg, db)
	if err != nil {
		return err
	}
	defer closeSessions()

	apiBase := cfg.APIBaseURL()
	client := api.New(apiBase, cfg.APITimeout,
		api.WithUserAgent(info.UserAgent()),
		api.WithLogger(logger),
	)
	slog.Info("marketplace API configured", "base_url", apiBase, "timeout", cfg.APITimeout)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		APIBaseURL:     apiBase,
		IsDev:          isDev,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	authLimiter := middleware.NewRateLimiter(authRateLimit, authRateBurst)
	routes := handler.Routes{
		Auth: handler.NewAuthHandler(client, renderer, sessionManager),
		Dashboard: handler.NewDashboardHandler(client, renderer,
			imaging.NewProcessor(cfg.ImageMaxDimension, cfg.ImageMaxPixels, cfg.MaxUploadBytes()), cfg.MaxUploadBytes()),
		Health:   handler.NewHealthHandler(db, info),
		Renderer: renderer,
		AuthLimit: authLimiter.HTMLMiddleware(func(r *http.Request) string {
			return i18n.T(middleware.GetLang(r), "error.rate_limited")
		}),
	}

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestPath)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(isDev, apiBase)))
	r.Use(middleware.StripTrailingSlash)

	r.Handle("/static/*", middleware.StaticCache(handler.StaticMaxAge)(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.LoadSession(sessionManager, logger))
		r.Use(middleware.Language(sessionManager))
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), isDev, cfg.ServerAddr())))
		routes.Mount(r)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      75 * time.Second, // above the request timeout, uploads are relayed to the API
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newSessionManager keeps sessions in Redis when configured, otherwise in
// the SQLite database. The returned func releases the Redis client.
func newSessionManager(cfg *config.Config, db *sql.DB) (*scs.SessionManager, func(), error) {
	if !cfg.UseRedisSessions() {
		slog.Info("session manager initialized", "store", "sqlite")
		return session.New(db, cfg.IsDevelopment()), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	slog.Info("session manager initialized", "store", "redis")
	return session.NewRedis(client, cfg.IsDevelopment()), func() {
		if err := client.Close(); err != nil {
			slog.Error("error closing redis client", "error", err)
		}
	}, nil
}
