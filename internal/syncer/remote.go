package syncer

import (
	"context"
	"net/http"
	"time"

	"github.com/JaimeStill/pashuvision/internal/registrations"
	"github.com/JaimeStill/pashuvision/internal/registry"
	"github.com/JaimeStill/pashuvision/pkg/httpclient"
)

// RegistryPath is where a central instance accepts pushed registrations.
const RegistryPath = "/api/registry"

// Remote is the backend completed registrations are pushed to.
type Remote interface {
	Name() string
	// Online reports whether a pass should run now.
	Online(ctx context.Context) bool
	Push(ctx context.Context, reg registrations.Registration) error
}

type simulated struct {
	delay time.Duration
}

// NewSimulated returns a Remote that is always online and accepts every
// push after delay.
func NewSimulated(delay time.Duration) Remote {
	return &simulated{delay: delay}
}

func (s *simulated) Name() string { return "simulated" }

func (s *simulated) Online(context.Context) bool { return true }

func (s *simulated) Push(ctx context.Context, _ registrations.Registration) error {
	t := time.NewTimer(s.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type httpRemote struct {
	client *httpclient.Client
	source string
}

// NewHTTP returns a Remote posting to the registry endpoint of the central
// instance client points at. Online probes its /healthz.
func NewHTTP(client *httpclient.Client, source string) Remote {
	return &httpRemote{client: client, source: source}
}

func (h *httpRemote) Name() string { return "http" }

func (h *httpRemote) Online(ctx context.Context) bool {
	return h.client.DoJSON(ctx, http.MethodGet, "/healthz", nil, nil, nil) == nil
}

func (h *httpRemote) Push(ctx context.Context, reg registrations.Registration) error {
	cmd := registry.PushCommand{Source: h.source, Registration: reg}
	return h.client.DoJSON(ctx, http.MethodPost, RegistryPath, nil, cmd, nil)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type registryRemote struct {
	registry registry.System
	db       Pinger
	source   string
}

// NewRegistry returns a Remote writing straight into the central registry
// database. A nil db is treated as always reachable.
func NewRegistry(sys registry.System, db Pinger, source string) Remote {
	return &registryRemote{registry: sys, db: db, source: source}
}

func (r *registryRemote) Name() string { return "postgres" }

func (r *registryRemote) Online(ctx context.Context) bool {
	return r.db == nil || r.db.Ping(ctx) == nil
}

func (r *registryRemote) Push(ctx context.Context, reg registrations.Registration) error {
	_, err := r.registry.Upsert(ctx, reg, r.source)
	return err
}
