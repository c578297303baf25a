package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allEnvVars = []string{
	"MODFLAGS_HTTP_ADDR", "MODFLAGS_GRPC_ADDR", "MODFLAGS_NATS_URL",
	"MODFLAGS_AUTH_TOKEN", "MODFLAGS_SETTINGS_KEY", "MODFLAGS_BACKEND",
	"MODFLAGS_PEBBLE_PATH", "MODFLAGS_DATABASE_URL", "MODFLAGS_TIMEZONE",
	"MODFLAGS_SYNC_INTERVAL", "MODFLAGS_SYNC_S3_BUCKET", "MODFLAGS_SYNC_S3_ENDPOINT",
	"MODFLAGS_SYNC_S3_REGION", "MODFLAGS_SYNC_S3_KEY",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
	t.Setenv("MODFLAGS_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantBackend  string
		wantGRPCAddr string
		wantHTTPAddr string
		wantNATSURL  string
	}{
		{
			name:         "Defaults",
			env:          map[string]string{},
			wantBackend:  BackendPebble,
			wantGRPCAddr: ":9090",
			wantHTTPAddr: ":8080",
		},
		{
			name: "CustomAddresses",
			env: map[string]string{
				"MODFLAGS_GRPC_ADDR": ":5050",
				"MODFLAGS_HTTP_ADDR": ":3000",
				"MODFLAGS_NATS_URL":  "nats://localhost:4222",
			},
			wantBackend:  BackendPebble,
			wantGRPCAddr: ":5050",
			wantHTTPAddr: ":3000",
			wantNATSURL:  "nats://localhost:4222",
		},
		{
			name:         "MemoryBackend",
			env:          map[string]string{"MODFLAGS_BACKEND": "memory"},
			wantBackend:  BackendMemory,
			wantGRPCAddr: ":9090",
			wantHTTPAddr: ":8080",
		},
		{
			name: "PostgresBackend",
			env: map[string]string{
				"MODFLAGS_BACKEND":      "postgres",
				"MODFLAGS_DATABASE_URL": "postgres://localhost/modflags",
			},
			wantBackend:  BackendPostgres,
			wantGRPCAddr: ":9090",
			wantHTTPAddr: ":8080",
		},
		{
			name:    "PostgresWithoutURL",
			env:     map[string]string{"MODFLAGS_BACKEND": "postgres"},
			wantErr: true,
		},
		{
			name:    "UnknownBackend",
			env:     map[string]string{"MODFLAGS_BACKEND": "redis"},
			wantErr: true,
		},
		{
			name:    "BadTimezone",
			env:     map[string]string{"MODFLAGS_TIMEZONE": "Mars/Olympus_Mons"},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Backend != tc.wantBackend {
				t.Errorf("Backend = %q, want %q", cfg.Backend, tc.wantBackend)
			}
			if cfg.GRPCAddr != tc.wantGRPCAddr {
				t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, tc.wantGRPCAddr)
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearAllEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SettingsKey != "mod_settings_v1" {
		t.Errorf("SettingsKey = %q", cfg.SettingsKey)
	}
	if cfg.PebblePath != "modflags.db" {
		t.Errorf("PebblePath = %q", cfg.PebblePath)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
	if cfg.SyncInterval != 5*time.Minute {
		t.Errorf("SyncInterval = %v, want 5m", cfg.SyncInterval)
	}
	if cfg.SyncS3Bucket != "" {
		t.Errorf("SyncS3Bucket = %q, want empty", cfg.SyncS3Bucket)
	}
	if cfg.SyncS3Region != "us-east-1" {
		t.Errorf("SyncS3Region = %q, want %q", cfg.SyncS3Region, "us-east-1")
	}
	if cfg.SyncS3Key != "modflags/settings.json" {
		t.Errorf("SyncS3Key = %q", cfg.SyncS3Key)
	}
}

func TestLoadSyncCustom(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("MODFLAGS_SYNC_INTERVAL", "10m")
	t.Setenv("MODFLAGS_SYNC_S3_BUCKET", "my-bucket")
	t.Setenv("MODFLAGS_SYNC_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("MODFLAGS_SYNC_S3_REGION", "eu-west-1")
	t.Setenv("MODFLAGS_SYNC_S3_KEY", "custom/settings.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 10*time.Minute {
		t.Errorf("SyncInterval = %v, want 10m", cfg.SyncInterval)
	}
	if cfg.SyncS3Bucket != "my-bucket" {
		t.Errorf("SyncS3Bucket = %q", cfg.SyncS3Bucket)
	}
	if cfg.SyncS3Endpoint != "http://minio:9000" {
		t.Errorf("SyncS3Endpoint = %q", cfg.SyncS3Endpoint)
	}
	if cfg.SyncS3Region != "eu-west-1" {
		t.Errorf("SyncS3Region = %q", cfg.SyncS3Region)
	}
	if cfg.SyncS3Key != "custom/settings.json" {
		t.Errorf("SyncS3Key = %q", cfg.SyncS3Key)
	}
}

func TestLoadSyncInvalidInterval(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("MODFLAGS_SYNC_INTERVAL", "not-a-duration")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid MODFLAGS_SYNC_INTERVAL")
	}
}

func TestLoadSyncDisabled(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("MODFLAGS_SYNC_INTERVAL", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 0 {
		t.Errorf("SyncInterval = %v, want 0 (disabled)", cfg.SyncInterval)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearAllEnv(t)
	// godotenv never overrides a variable that exists, even if empty.
	os.Unsetenv("MODFLAGS_SETTINGS_KEY")
	os.Unsetenv("MODFLAGS_HTTP_ADDR")
	t.Setenv("MODFLAGS_GRPC_ADDR", ":7070")

	path := filepath.Join(t.TempDir(), "test.env")
	content := "MODFLAGS_SETTINGS_KEY=from_file\nMODFLAGS_HTTP_ADDR=:8181\nMODFLAGS_GRPC_ADDR=:1111\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MODFLAGS_ENV_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SettingsKey != "from_file" {
		t.Errorf("SettingsKey = %q, want value from env file", cfg.SettingsKey)
	}
	if cfg.HTTPAddr != ":8181" {
		t.Errorf("HTTPAddr = %q, want value from env file", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":7070" {
		t.Errorf("GRPCAddr = %q, env file must not override the environment", cfg.GRPCAddr)
	}
}

func TestEnvOrDefault(t *testing.T) {
	for _, tc := range []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"EmptyUsesDefault", "TEST_ENVDEFAULT_EMPTY", "", "default-val", "default-val"},
		{"SetUsesEnv", "TEST_ENVDEFAULT_SET", "custom", "default-val", "custom"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envVal)
			got := envOrDefault(tc.key, tc.fallback)
			if got != tc.want {
				t.Errorf("envOrDefault(%q, %q) = %q, want %q", tc.key, tc.fallback, got, tc.want)
			}
		})
	}
}
