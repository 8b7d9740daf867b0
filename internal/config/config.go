package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Upstream fetching.
	FetchMode      string // "ajax" or "api"
	BaseURL        string
	HTTPTimeout    time.Duration
	RequestsPerSec float64
	SelectorsPath  string

	// Search engine.
	CacheTTL    time.Duration
	Concurrency int
	MaxPages    int
	PageSize    int

	// Persistence: "memory", "redis" or "firestore".
	StorageBackend string
	ProjectID      string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// Change detection.
	CheckInterval time.Duration
	CheckWindow   int

	// Notification channels.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	NtfyTopicURL string
}

func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		FetchMode:      getenv("FETCH_MODE", "ajax"),
		BaseURL:        os.Getenv("BASE_URL"),
		SelectorsPath:  os.Getenv("SELECTORS_PATH"),
		StorageBackend: getenv("STORAGE_BACKEND", "memory"),
		ProjectID:      os.Getenv("GOOGLE_CLOUD_PROJECT"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:       os.Getenv("SMTP_FROM"),
		NtfyTopicURL:   os.Getenv("NTFY_TOPIC_URL"),
	}

	if cfg.FetchMode != "ajax" && cfg.FetchMode != "api" {
		return nil, fmt.Errorf("invalid FETCH_MODE %q: want ajax or api", cfg.FetchMode)
	}

	switch cfg.StorageBackend {
	case "memory", "redis":
	case "firestore":
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the firestore backend")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: want memory, redis or firestore", cfg.StorageBackend)
	}

	var err error
	if cfg.HTTPTimeout, err = durationEnv("HTTP_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.CheckInterval, err = durationEnv("CHECK_INTERVAL", 120*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = intEnv("FETCH_CONCURRENCY", 5); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = intEnv("MAX_PAGES", 500); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = intEnv("UPSTREAM_PAGE_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.CheckWindow, err = intEnv("CHECK_WINDOW", 50); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = intEnv("SMTP_PORT", 587); err != nil {
		return nil, err
	}

	rps := getenv("REQUESTS_PER_SEC", "2")
	cfg.RequestsPerSec, err = strconv.ParseFloat(rps, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUESTS_PER_SEC %q: %w", rps, err)
	}

	if cfg.SMTPHost == "" {
		slog.Warn("SMTP_HOST not set, email notifications will be skipped")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
