// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/handlers"
	"folio/internal/moderation"
	"folio/internal/router"
	"folio/internal/secret"
	"folio/internal/session"
	"folio/internal/storage"
	"folio/internal/store"
	"folio/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Connects to PostgreSQL (and Valkey for the valkey session backend), applies
pending migrations, seeds sample data in development, and serves until
SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"session_backend", cfg.SessionBackend,
	)

	if err := database.Migrate(db); err != nil {
		return err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	secure := cfg.SecureCookies()

	// Sessions live in Valkey or in a signed cookie. The category list
	// cache needs Valkey and is skipped without it.
	var (
		sessions  session.Store
		responses *cache.Responses
	)
	switch cfg.SessionBackend {
	case config.SessionBackendJWT:
		sessions = session.NewTokenStore([]byte(cfg.SessionSecret), cfg.SessionTTL, secure)
	default:
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			return err
		}
		defer valkeyClient.Close()
		sessions = session.NewValkeyStore(valkeyClient, cfg.SessionTTL, secure)
		responses = cache.NewResponses(valkeyClient, cache.DefaultResponseTTL)
	}

	// S3-compatible object storage (optional; thumbnails are stored
	// inline without it).
	var thumbs *storage.Client
	if cfg.S3Enabled() {
		thumbs, err = storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return fmt.Errorf("initialize s3 storage: %w", err)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, thumbnails stored inline")
	}

	categoryStore := store.NewCategoryStore(db)
	projectStore := store.NewProjectStore(db)
	commentStore := store.NewCommentStore(db)
	visitorStore := store.NewVisitorStore(db)

	comments := handlers.NewComments(commentStore, projectStore, secret.New(cfg.CommentSecretMode), cfg.AdminName)
	if mod := moderation.New(cfg.ModerationAPIKey, cfg.ModerationBaseURL, cfg.ModerationModel); mod != nil {
		comments.SetModerator(mod)
		slog.Info("comment moderation enabled")
	}

	limits := router.DefaultLimits()
	defer limits.Stop()

	r := router.New(router.Handlers{
		Sessions: sessions,
		Visits:   visitorStore,
		Auth: handlers.NewAuth(sessions, handlers.Credentials{
			Email:      cfg.AdminEmail,
			Password:   cfg.AdminPassword,
			Name:       cfg.AdminName,
			TOTPSecret: cfg.AdminTOTPSecret,
		}),
		Categories: handlers.NewCategories(categoryStore, responses),
		Projects:   handlers.NewProjects(projectStore, categoryStore, thumbs),
		Comments:   comments,
		Admin:      handlers.NewAdmin(projectStore, commentStore, visitorStore),
		Public:     handlers.NewPublic(web.IntroPage()),
	}, limits, secure)

	// Request contexts derive from base, cancelled on shutdown so open
	// session event streams end instead of holding the drain.
	base, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	// WriteTimeout covers ordinary responses; the session event stream
	// lifts it per request.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancelBase)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
