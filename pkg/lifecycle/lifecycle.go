// Package lifecycle coordinates startup, background work, and shutdown for
// the service's subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator manages startup hooks, long-running workers, and shutdown hooks.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	readyMu    sync.RWMutex
	ready      bool

	mu      sync.Mutex
	started bool
	workers []func(ctx context.Context)
	closers []func()
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Go registers a background worker. Workers registered before
// WaitForStartup are held until every startup hook has returned. The worker
// receives the coordinator context and must return once it is cancelled;
// Shutdown waits for it alongside the shutdown hooks.
func (c *Coordinator) Go(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		c.workers = append(c.workers, fn)
		return
	}
	c.launch(fn)
}

func (c *Coordinator) launch(fn func(ctx context.Context)) {
	c.shutdownWg.Go(func() {
		if c.ctx.Err() != nil {
			return
		}
		fn(c.ctx)
	})
}

// OnClose registers a function that runs once every shutdown hook and worker
// has returned. Closers run in reverse registration order.
func (c *Coordinator) OnClose(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, fn)
}

// Ready returns true after all startup hooks have completed.
func (c *Coordinator) Ready() bool {
	c.readyMu.RLock()
	defer c.readyMu.RUnlock()
	return c.ready
}

// WaitForStartup blocks until all startup hooks have completed, launches
// pending workers, and sets the ready flag.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()

	c.mu.Lock()
	if !c.started {
		c.started = true
		for _, fn := range c.workers {
			c.launch(fn)
		}
		c.workers = nil
	}
	c.mu.Unlock()

	c.readyMu.Lock()
	c.ready = true
	c.readyMu.Unlock()
}

// Shutdown cancels the context, waits for shutdown hooks and workers, then
// runs the closers, all within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	c.readyMu.Lock()
	c.ready = false
	c.readyMu.Unlock()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()

		c.mu.Lock()
		closers := c.closers
		c.closers = nil
		c.mu.Unlock()

		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
