package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rbarros/podcast-hub/app/api"
	"github.com/rbarros/podcast-hub/app/auth"
	"github.com/rbarros/podcast-hub/app/catalog"
	"github.com/rbarros/podcast-hub/app/cfg"
	"github.com/rbarros/podcast-hub/app/database"
	"github.com/rbarros/podcast-hub/app/feed"
	"github.com/rbarros/podcast-hub/app/tasks"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was requested
		return
	}

	logLevel := slog.LevelInfo
	if c.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Podcast Hub server", "version", c.Version, "environment", c.Environment)

	db, err := database.NewConnection(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	episodeRepo := database.NewMissingEpisodeRepository(db)
	subscriptionRepo := database.NewSubscriptionRepository(db)
	userRepo := database.NewUserRepository(db)

	authService := auth.NewAuth(userRepo, c.JWTSecret, time.Duration(c.TokenTTL)*time.Hour)
	fetcher := feed.NewFetcher(&http.Client{}, c.UserAgent, time.Duration(c.FetchTimeout)*time.Second)
	reconciler := feed.NewReconciler(episodeRepo)
	importer := catalog.NewImporter(episodeRepo)
	maintainer := catalog.NewMaintainer(episodeRepo)

	scheduler := tasks.NewScheduler(importer, maintainer)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(fetcher, reconciler, episodeRepo, subscriptionRepo,
		userRepo, importer, maintainer, authService)
	server := api.NewServer(handler, authService, c.AllowedOrigin)

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Podcast Hub server shutdown complete")
}
