package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/pashuvision/internal/analytics"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		cfgFile, serverURL, basePath, token = "", "", "/api", ""
		seedValue, seedForce = 0, false
		statsUpcoming = 0
		syncStatusOnly = false
		exportOutput = analytics.ExportFilename
		migrateDSN = ""
	})
}

func writeLocalConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := `
[local]
driver = "sqlite"
path = "` + filepath.ToSlash(filepath.Join(dir, "pashu.db")) + `"
seed_samples = false

[storage]
provider = "filesystem"
root = "` + filepath.ToSlash(filepath.Join(dir, "blobs")) + `"

[sync]
enabled = false
simulated_delay = "0s"
`
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	want := map[string]bool{"seed": false, "export": false, "stats": false, "sync": false, "migrate": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing command %s", name)
		}
	}

	sub := map[string]bool{}
	for _, c := range migrateCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, name := range []string{"up", "down", "steps", "force", "version"} {
		if !sub[name] {
			t.Errorf("missing migrate subcommand %s", name)
		}
	}
}

func TestSeedThenExportLocal(t *testing.T) {
	resetFlags(t)
	cfg := writeLocalConfig(t)

	out, err := execute(t, "seed", "--config", cfg, "--seed", "7")
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "seeded 120 registrations") {
		t.Errorf("seed output: %q", out)
	}

	if _, err := execute(t, "seed", "--config", cfg); err == nil {
		t.Error("second seed without --force should fail")
	}

	csvPath := filepath.Join(t.TempDir(), "out.csv")
	if out, err := execute(t, "export", "--config", cfg, "-o", csvPath); err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) < 121 {
		t.Errorf("rows: got %d, want at least one per registration plus header", len(rows))
	}
	if rows[0][0] != "Registration ID" {
		t.Errorf("header: got %q", rows[0][0])
	}
}

func TestStatsLocal(t *testing.T) {
	resetFlags(t)
	cfg := writeLocalConfig(t)

	if _, err := execute(t, "seed", "--config", cfg, "--seed", "3"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	out, err := execute(t, "stats", "--config", cfg)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	var summary struct {
		TotalRegistrations int `json:"total_registrations"`
		Unsynced           int `json:"unsynced"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if summary.TotalRegistrations != 120 || summary.Unsynced != 0 {
		t.Errorf("got %+v", summary)
	}
}

func TestSyncRemoteServer(t *testing.T) {
	resetFlags(t)

	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.Method + " " + r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"pending":2,"pushed":2,"failed":0}`))
	}))
	defer srv.Close()

	out, err := execute(t, "sync", "--server", srv.URL, "--token", "abc")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if gotPath != "POST /api/sync" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("auth: got %q", gotAuth)
	}
	if !strings.Contains(out, `"pushed": 2`) {
		t.Errorf("output: %q", out)
	}
}

func TestSeedRejectsServer(t *testing.T) {
	resetFlags(t)
	if _, err := execute(t, "seed", "--server", "http://localhost:1"); err == nil {
		t.Error("seed against a server should fail")
	}
}

func TestMigrateRequiresDSN(t *testing.T) {
	resetFlags(t)
	cfg := writeLocalConfig(t)
	if _, err := execute(t, "migrate", "version", "--config", cfg); err == nil {
		t.Error("migrate without registry or --dsn should fail")
	}
}
