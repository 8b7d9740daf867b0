package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olivierg1729/jobfinder/internal/config"
	"github.com/olivierg1729/jobfinder/internal/detector"
	"github.com/olivierg1729/jobfinder/internal/fetcher"
	"github.com/olivierg1729/jobfinder/internal/notifier"
	"github.com/olivierg1729/jobfinder/internal/scheduler"
	"github.com/olivierg1729/jobfinder/internal/search"
	"github.com/olivierg1729/jobfinder/internal/server"
	"github.com/olivierg1729/jobfinder/internal/storage"
)

//go:embed selectors.json
var embeddedSelectors embed.FS

func main() {
	slog.Info("Starting jobfinder server...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := newStore(ctx, cfg)
	if err != nil {
		slog.Error("Critical error initializing storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	f := newFetcher(cfg)
	engine := search.NewEngine(f, search.NewCache(cfg.CacheTTL, nil), cfg.MaxPages, cfg.Concurrency)

	d := detector.New(engine, store, store, newNotifier(cfg), cfg.CheckWindow)
	sched := scheduler.New(d, cfg.CheckInterval)
	if err := sched.Start(ctx); err != nil {
		slog.Error("Critical error starting scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.New(engine, store)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "firestore":
		return storage.NewFirestore(ctx, cfg.ProjectID)
	case "redis":
		return storage.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "memory":
		slog.Warn("Using in-memory storage, saved searches will not survive a restart")
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newFetcher(cfg *config.Config) fetcher.PageFetcher {
	if cfg.FetchMode == "api" {
		return fetcher.NewAPIFetcher(cfg.BaseURL, cfg.PageSize, cfg.HTTPTimeout, cfg.RequestsPerSec)
	}

	selectors, err := loadSelectorsWithFallback(cfg.SelectorsPath)
	if err != nil {
		slog.Warn("Failed to load selectors. Using defaults.", "error", err)
		selectors = fetcher.DefaultSelectors()
	}
	return fetcher.NewAjaxFetcher(cfg.BaseURL, cfg.PageSize, selectors, cfg.HTTPTimeout, cfg.RequestsPerSec)
}

// loadSelectorsWithFallback tries the embedded selectors first, then the
// external override file when one is configured.
func loadSelectorsWithFallback(path string) (fetcher.SelectorConfig, error) {
	if path != "" {
		return fetcher.LoadSelectors(path)
	}

	data, err := embeddedSelectors.ReadFile("selectors.json")
	if err != nil {
		return fetcher.SelectorConfig{}, err
	}
	sel, parseErr := fetcher.LoadSelectorsFromBytes(data)
	if parseErr != nil {
		return fetcher.SelectorConfig{}, parseErr
	}
	slog.Info("Loaded selectors from embedded config.")
	return sel, nil
}

func newNotifier(cfg *config.Config) *notifier.Multi {
	var channels []notifier.Notifier
	if cfg.SMTPHost != "" {
		channels = append(channels,
			notifier.NewEmail(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom))
	}
	if cfg.NtfyTopicURL != "" {
		channels = append(channels, notifier.NewNtfy(cfg.NtfyTopicURL))
	}
	if len(channels) == 0 {
		slog.Warn("No notification channel configured, saved searches are checked but never delivered")
	}
	return notifier.NewMulti(channels...)
}
