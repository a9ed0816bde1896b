package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/pashuvision/internal/config"
)

const baseConfig = `
shutdown_timeout = "20s"
version = "0.3.0"

[server]
port = 8080
write_timeout = "3m"

[local]
driver = "sqlite"
path = "pashu.db"

[storage]
provider = "filesystem"
root = "blobs"

[api]
base_path = "/api"
max_upload_size = "5MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[agent]
model = "gemini-2.5-flash"

[sync]
interval = "1m"
remote = "simulated"
concurrency = 2
`

const overlayConfig = `
[server]
port = 9090

[sync]
remote = "http"
remote_url = "https://registry.example.org"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.WriteTimeoutDuration() != 3*time.Minute {
		t.Errorf("write timeout: got %s, want 3m", cfg.Server.WriteTimeoutDuration())
	}
	if cfg.Local.Path != "pashu.db" {
		t.Errorf("local path: got %s", cfg.Local.Path)
	}
	if !cfg.Local.Seed() {
		t.Error("seed samples should default to true")
	}
	if cfg.API.MaxUploadSizeBytes() != 5<<20 {
		t.Errorf("max upload: got %d, want %d", cfg.API.MaxUploadSizeBytes(), 5<<20)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 || cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination: got %+v", cfg.API.Pagination)
	}
	if cfg.Sync.IntervalDuration() != time.Minute {
		t.Errorf("sync interval: got %s", cfg.Sync.IntervalDuration())
	}
	if cfg.Sync.SimulatedDelayDuration() != 750*time.Millisecond {
		t.Errorf("simulated delay: got %s, want 750ms", cfg.Sync.SimulatedDelayDuration())
	}
	if cfg.ShutdownTimeoutDuration() != 20*time.Second {
		t.Errorf("shutdown timeout: got %s", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.field.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("PASHU_ENV", "field")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Sync.Remote != config.RemoteHTTP {
		t.Errorf("sync remote: got %s, want http", cfg.Sync.Remote)
	}
	if cfg.Sync.Concurrency != 2 {
		t.Errorf("sync concurrency: got %d, want 2 (from base)", cfg.Sync.Concurrency)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("PASHU_VERSION", "2.0.0")
	t.Setenv("PASHU_SERVER_PORT", "3000")
	t.Setenv("PASHU_LOCAL_SEED_SAMPLES", "false")
	t.Setenv("PASHU_AGENT_API_KEY", "key-from-env")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Local.Seed() {
		t.Error("seed samples should be disabled by env")
	}
	if cfg.Agent.APIKey != "key-from-env" {
		t.Errorf("agent api key: got %q", cfg.Agent.APIKey)
	}
}

func TestLoadGeminiKeyFallback(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GEMINI_API_KEY", "gemini")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Agent.APIKey != "gemini" {
		t.Errorf("agent api key: got %q, want gemini", cfg.Agent.APIKey)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Local.Driver != config.StoreSQLite {
		t.Errorf("local driver default: got %s", cfg.Local.Driver)
	}
	if cfg.Agent.Model != "gemini-2.5-flash" {
		t.Errorf("agent model default: got %s", cfg.Agent.Model)
	}
	if cfg.Sync.Remote != config.RemoteSimulated || !cfg.Sync.IsEnabled() {
		t.Errorf("sync defaults: got %+v", cfg.Sync)
	}
	if cfg.Registry.Enabled {
		t.Error("registry should be disabled by default")
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "custom.toml", baseConfig)
	chdir(t, t.TempDir())

	t.Setenv("PASHU_CONFIG", filepath.Join(dir, "custom.toml"))

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Version != "0.3.0" {
		t.Errorf("version: got %s, want 0.3.0", cfg.Version)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{
			name:    "bad toml",
			content: "[server\nport = 1",
			want:    "parse config",
		},
		{
			name:    "bad port",
			content: "[server]\nport = 70000\n",
			want:    "invalid port",
		},
		{
			name:    "unknown driver",
			content: "[local]\ndriver = \"bolt\"\n",
			want:    "unknown local driver",
		},
		{
			name:    "http remote without url",
			content: "[sync]\nremote = \"http\"\n",
			want:    "remote_url required",
		},
		{
			name:    "postgres remote without registry",
			content: "[sync]\nremote = \"postgres\"\n",
			want:    "requires [registry]",
		},
		{
			name:    "registry without database name",
			content: "[registry]\nenabled = true\n",
			want:    "registry",
		},
		{
			name:    "auth without issuer",
			content: "[api.auth]\nenabled = true\n",
			want:    "auth",
		},
		{
			name:    "bad upload size",
			content: "[api]\nmax_upload_size = \"lots\"\n",
			want:    "max_upload_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.content)
			chdir(t, dir)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestRegistryMergeKeepsEnabled(t *testing.T) {
	base := config.RegistryConfig{Enabled: true}
	base.Merge(&config.RegistryConfig{})
	if !base.Enabled {
		t.Error("empty overlay should not disable registry")
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)
	t.Setenv("PASHU_SYNC_SOURCE", "field-07")
	t.Setenv(config.EnvServerIdleTimeout, "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.IdleTimeoutDuration() != 2*time.Minute {
		t.Errorf("idle timeout: got %s, want 2m", cfg.Server.IdleTimeoutDuration())
	}
	if cfg.Sync.Source != "field-07" {
		t.Errorf("sync source: got %q, want field-07", cfg.Sync.Source)
	}
	if cfg.Registry.Enabled || cfg.Registry.AutoMigrate {
		t.Errorf("registry should be disabled by default: %+v", cfg.Registry)
	}
}

func TestRegistryMergeAutoMigrate(t *testing.T) {
	base := config.RegistryConfig{}
	base.Merge(&config.RegistryConfig{AutoMigrate: true})
	if !base.AutoMigrate {
		t.Error("overlay auto_migrate should apply")
	}
}
