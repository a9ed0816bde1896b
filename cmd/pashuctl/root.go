package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/pashuvision/internal/api"
	"github.com/JaimeStill/pashuvision/internal/config"
	"github.com/JaimeStill/pashuvision/internal/infrastructure"
	"github.com/JaimeStill/pashuvision/pkg/httpclient"
)

var (
	cfgFile   string
	serverURL string
	basePath  string
	token     string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "pashuctl",
	Short: "Administer a PashuVision registration service",
	Long: `pashuctl works against the local registration store described by the
service configuration, or against a running server when --server is set.

Examples:
  # Fill an empty local store with the sample set
  pashuctl seed

  # Export completed registrations from a running server
  pashuctl export --server http://localhost:8080 -o registrations.csv

  # Push unsynced registrations to the configured remote once
  pashuctl sync`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: PASHU_CONFIG or config.toml)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "",
		"base URL of a running server; local store is used when empty")
	rootCmd.PersistentFlags().StringVar(&basePath, "base-path", "/api",
		"API base path on the server")
	rootCmd.PersistentFlags().StringVar(&token, "token", "",
		"bearer token for an authenticated server")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log subsystem activity to stderr")
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.Load()
}

func remote() bool {
	return serverURL != ""
}

func newClient() (*httpclient.Client, error) {
	client, err := httpclient.New(serverURL, 0)
	if err != nil {
		return nil, err
	}
	client.Token = token
	return client, nil
}

func apiPath(p string) string {
	return strings.TrimRight(basePath, "/") + p
}

func logger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// local is an opened local instance. Close releases the store and storage.
type local struct {
	cfg    *config.Config
	infra  *infrastructure.Infrastructure
	domain *api.Domain
}

func openLocal(ctx context.Context) (*local, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	infra, err := infrastructure.NewWithLogger(cfg, logger())
	if err != nil {
		return nil, err
	}
	if err := infra.Start(); err != nil {
		return nil, err
	}
	infra.Lifecycle.WaitForStartup()

	domain, err := api.NewDomain(ctx, cfg, api.NewRuntime(cfg, infra))
	if err != nil {
		infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
		return nil, err
	}
	return &local{cfg: cfg, infra: infra, domain: domain}, nil
}

func (l *local) Close() error {
	return l.infra.Lifecycle.Shutdown(l.cfg.ShutdownTimeoutDuration())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRaw(w io.Writer, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		_, err = w.Write(data)
		return err
	}
	return printJSON(w, v)
}

func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
