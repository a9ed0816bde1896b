// Package syncer pushes completed registrations to a remote backend on a
// ticker and on demand. Pushes are best effort: a failed record keeps its
// unsynced flag and is retried on the next pass.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/pashuvision/internal/registrations"
	"github.com/JaimeStill/pashuvision/pkg/lifecycle"
)

// Reasons a pass did not run.
const (
	SkipOffline    = "offline"
	SkipInProgress = "in progress"
)

// Store is the registration state the loop reads and updates.
type Store interface {
	Unsynced(ctx context.Context) ([]registrations.Registration, error)
	MarkSynced(ctx context.Context, id string) error
}

// Result summarizes one pass.
type Result struct {
	Skipped  string        `json:"skipped,omitempty"`
	Pending  int           `json:"pending"`
	Pushed   int           `json:"pushed"`
	Failed   int           `json:"failed"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
}

// Status reports the loop state.
type Status struct {
	Remote   string     `json:"remote"`
	Online   bool       `json:"online"`
	Syncing  bool       `json:"syncing"`
	Interval string     `json:"interval"`
	Unsynced int        `json:"unsynced"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	Last     *Result    `json:"last,omitempty"`
}

// Config tunes the loop.
type Config struct {
	// Interval between ticker passes. Zero runs on demand only.
	Interval    time.Duration
	Concurrency int
	// PushTimeout bounds each push. Zero leaves pushes unbounded.
	PushTimeout time.Duration
}

// System defines the public contract for the sync loop.
type System interface {
	Handler() *Handler
	// Start registers the ticker worker with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator)
	// Run performs one pass.
	Run(ctx context.Context) Result
	Status(ctx context.Context) (*Status, error)
}

type loop struct {
	store  Store
	remote Remote
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	syncing atomic.Bool

	mu   sync.RWMutex
	last *Result
}

// New creates the sync loop.
func New(store Store, remote Remote, cfg Config, logger *slog.Logger) System {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &loop{
		store:  store,
		remote: remote,
		cfg:    cfg,
		logger: logger.With("system", "sync", "remote", remote.Name()),
		now:    time.Now,
	}
}

func (l *loop) Handler() *Handler {
	return NewHandler(l, l.logger)
}

func (l *loop) Start(lc *lifecycle.Coordinator) {
	if l.cfg.Interval <= 0 {
		l.logger.Info("sync ticker disabled")
		return
	}

	lc.Go(func(ctx context.Context) {
		l.logger.Info("sync loop started", "interval", l.cfg.Interval)
		ticker := time.NewTicker(l.cfg.Interval)
		defer ticker.Stop()

		l.Run(ctx)
		for {
			select {
			case <-ctx.Done():
				l.logger.Info("sync loop stopped")
				return
			case <-ticker.C:
				l.Run(ctx)
			}
		}
	})
}

func (l *loop) Run(ctx context.Context) Result {
	result := Result{Started: l.now().UTC()}

	if !l.syncing.CompareAndSwap(false, true) {
		result.Skipped = SkipInProgress
		return result
	}
	defer l.syncing.Store(false)

	if !l.remote.Online(ctx) {
		result.Skipped = SkipOffline
		l.logger.Debug("sync skipped, remote offline")
		l.record(&result)
		return result
	}

	pending, err := l.store.Unsynced(ctx)
	if err != nil {
		l.logger.Error("load unsynced registrations failed", "error", err)
		l.record(&result)
		return result
	}
	result.Pending = len(pending)
	if len(pending) == 0 {
		l.record(&result)
		return result
	}

	var pushed, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(l.cfg.Concurrency)

	for _, reg := range pending {
		g.Go(func() error {
			if err := l.push(ctx, reg); err != nil {
				failed.Add(1)
				l.logger.Warn("sync push failed", "id", reg.ID, "error", err)
				return nil
			}
			if err := l.store.MarkSynced(ctx, reg.ID); err != nil {
				failed.Add(1)
				l.logger.Error("mark synced failed", "id", reg.ID, "error", err)
				return nil
			}
			pushed.Add(1)
			return nil
		})
	}
	g.Wait()

	result.Pushed = int(pushed.Load())
	result.Failed = int(failed.Load())
	l.record(&result)

	l.logger.Info("sync pass complete", "pending", result.Pending, "pushed", result.Pushed, "failed", result.Failed)
	return result
}

func (l *loop) push(ctx context.Context, reg registrations.Registration) error {
	if l.cfg.PushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.PushTimeout)
		defer cancel()
	}
	return l.remote.Push(ctx, reg)
}

// record stamps the pass duration and keeps r as the last result.
func (l *loop) record(r *Result) {
	r.Duration = l.now().Sub(r.Started)
	last := *r
	l.mu.Lock()
	l.last = &last
	l.mu.Unlock()
}

func (l *loop) Status(ctx context.Context) (*Status, error) {
	pending, err := l.store.Unsynced(ctx)
	if err != nil {
		return nil, err
	}

	s := &Status{
		Remote:   l.remote.Name(),
		Online:   l.remote.Online(ctx),
		Syncing:  l.syncing.Load(),
		Interval: l.cfg.Interval.String(),
		Unsynced: len(pending),
	}

	l.mu.RLock()
	if l.last != nil {
		last := *l.last
		s.Last = &last
		s.LastRun = &last.Started
	}
	l.mu.RUnlock()
	return s, nil
}
