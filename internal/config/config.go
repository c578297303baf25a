package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for the settings key-value store.
const (
	BackendPebble   = "pebble"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	HTTPAddr    string // MODFLAGS_HTTP_ADDR (default ":8080")
	GRPCAddr    string // MODFLAGS_GRPC_ADDR (default ":9090")
	NATSURL     string // MODFLAGS_NATS_URL (optional, empty = no events)
	AuthToken   string // MODFLAGS_AUTH_TOKEN (optional, empty = auth disabled)
	SettingsKey string // MODFLAGS_SETTINGS_KEY (default "mod_settings_v1")

	Backend     string // MODFLAGS_BACKEND (pebble|postgres|memory, default pebble)
	PebblePath  string // MODFLAGS_PEBBLE_PATH (default "modflags.db")
	DatabaseURL string // MODFLAGS_DATABASE_URL (required for postgres)

	// Location is the time zone deleted-message captions are rendered in.
	Location *time.Location // MODFLAGS_TIMEZONE (default "UTC")

	// Sync settings
	SyncInterval   time.Duration // MODFLAGS_SYNC_INTERVAL (default 5m; 0 = disabled)
	SyncS3Bucket   string        // MODFLAGS_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // MODFLAGS_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // MODFLAGS_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // MODFLAGS_SYNC_S3_KEY (default "modflags/settings.json")
}

// Load reads the configuration from the environment. Variables from the
// file named by MODFLAGS_ENV_FILE (default ".env") are applied first
// without overriding anything already set; a missing file is ignored.
func Load() (*Config, error) {
	_ = godotenv.Load(envOrDefault("MODFLAGS_ENV_FILE", ".env"))

	c := &Config{
		HTTPAddr:       envOrDefault("MODFLAGS_HTTP_ADDR", ":8080"),
		GRPCAddr:       envOrDefault("MODFLAGS_GRPC_ADDR", ":9090"),
		NATSURL:        os.Getenv("MODFLAGS_NATS_URL"),
		AuthToken:      os.Getenv("MODFLAGS_AUTH_TOKEN"),
		SettingsKey:    envOrDefault("MODFLAGS_SETTINGS_KEY", "mod_settings_v1"),
		Backend:        envOrDefault("MODFLAGS_BACKEND", BackendPebble),
		PebblePath:     envOrDefault("MODFLAGS_PEBBLE_PATH", "modflags.db"),
		DatabaseURL:    os.Getenv("MODFLAGS_DATABASE_URL"),
		SyncS3Bucket:   os.Getenv("MODFLAGS_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("MODFLAGS_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("MODFLAGS_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("MODFLAGS_SYNC_S3_KEY", "modflags/settings.json"),
	}

	switch c.Backend {
	case BackendPebble, BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("MODFLAGS_DATABASE_URL is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("MODFLAGS_BACKEND: unknown backend %q", c.Backend)
	}

	loc, err := time.LoadLocation(envOrDefault("MODFLAGS_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("MODFLAGS_TIMEZONE: %w", err)
	}
	c.Location = loc

	intervalStr := envOrDefault("MODFLAGS_SYNC_INTERVAL", "5m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("MODFLAGS_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
