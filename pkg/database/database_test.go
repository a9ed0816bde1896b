package database_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/pashuvision/pkg/database"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := database.Config{Name: "registry", User: "pashu"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"host", cfg.Host, "localhost"},
		{"port", cfg.Port, 5432},
		{"ssl_mode", cfg.SSLMode, "disable"},
		{"max_open_conns", cfg.MaxOpenConns, 10},
		{"max_idle_conns", cfg.MaxIdleConns, 2},
		{"conn_max_lifetime", cfg.ConnMaxLifetime, "15m"},
		{"conn_timeout", cfg.ConnTimeout, "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("PASHU_TEST_DB_HOST", "central")
	t.Setenv("PASHU_TEST_DB_PORT", "6543")
	t.Setenv("PASHU_TEST_DB_NAME", "envdb")
	t.Setenv("PASHU_TEST_DB_USER", "envuser")
	t.Setenv("PASHU_TEST_DB_MAX_OPEN", "40")

	cfg := database.Config{}
	err := cfg.Finalize(&database.Env{
		Host:         "PASHU_TEST_DB_HOST",
		Port:         "PASHU_TEST_DB_PORT",
		Name:         "PASHU_TEST_DB_NAME",
		User:         "PASHU_TEST_DB_USER",
		MaxOpenConns: "PASHU_TEST_DB_MAX_OPEN",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Host != "central" || cfg.Port != 6543 || cfg.Name != "envdb" || cfg.User != "envuser" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.MaxOpenConns != 40 {
		t.Errorf("max_open_conns: got %d, want 40", cfg.MaxOpenConns)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"missing name", database.Config{User: "u"}, "name required"},
		{"missing user", database.Config{Name: "n"}, "user required"},
		{"bad lifetime", database.Config{Name: "n", User: "u", ConnMaxLifetime: "soon"}, "conn_max_lifetime"},
		{"dsn only", database.Config{DSN: "postgres://u@h/db"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := database.Config{Host: "localhost", Port: 5432, Name: "registry"}
	base.Merge(&database.Config{Host: "db.internal", MaxIdleConns: 4})

	if base.Host != "db.internal" || base.Port != 5432 || base.Name != "registry" || base.MaxIdleConns != 4 {
		t.Errorf("merge result: %+v", base)
	}
}

func TestDsn(t *testing.T) {
	cfg := database.Config{Host: "h", Port: 1, Name: "n", User: "u", Password: "p", SSLMode: "disable"}
	if got := cfg.Dsn(); got != "host=h port=1 dbname=n user=u password=p sslmode=disable" {
		t.Errorf("dsn: got %s", got)
	}

	cfg.DSN = "postgres://u:p@h:1/n"
	if got := cfg.Dsn(); got != cfg.DSN {
		t.Errorf("dsn override: got %s", got)
	}
}

func TestNewDoesNotConnect(t *testing.T) {
	cfg := database.Config{Name: "n", User: "u"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	sys, err := database.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if sys.Ready() {
		t.Error("should not be ready before ping")
	}
}
