// Package lifecycle coordinates process bring-up and clean shutdown
// across the audio orchestrator, frame scheduler, tunable store, plugin
// manager, and discovery advertiser: every subsystem that owns a
// goroutine or durable state registers here so shutdown has one place
// to wait on.
package lifecycle

import (
	"context"
	"sync"

	"github.com/lightwaveos/core/internal/logx"
)

// Stopper is anything lifecycle can shut down in dependency order.
// Stop must be idempotent and must not return until the component has
// fully quiesced (flushed durable state, closed its sources).
type Stopper interface {
	Stop()
}

// Orchestrator sequences bring-up and shutdown of every registered
// component. Components are stopped in reverse registration order, so
// the first thing started (typically the thing everything else depends
// on) is the last thing stopped.
type Orchestrator struct {
	log       logx.Logger
	mu        sync.Mutex
	stoppers  []Stopper
	shutdownC chan struct{}
	once      sync.Once
}

// New returns an Orchestrator.
func New(log logx.Logger) *Orchestrator {
	return &Orchestrator{log: log, shutdownC: make(chan struct{})} //nolint:exhaustruct
}

// Register adds s to the shutdown sequence. Call this as each
// component finishes bring-up, in dependency order.
func (o *Orchestrator) Register(s Stopper) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stoppers = append(o.stoppers, s)
}

// Done returns a channel closed when Shutdown has been called, so
// long-running loops (the audio task, the render task) can select on it
// alongside their normal suspension points.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.shutdownC
}

// Shutdown signals Done and stops every registered component in
// reverse registration order. It is safe to call more than once; only
// the first call has effect.
func (o *Orchestrator) Shutdown() {
	o.once.Do(func() {
		close(o.shutdownC)

		o.mu.Lock()
		stoppers := make([]Stopper, len(o.stoppers))
		copy(stoppers, o.stoppers)
		o.mu.Unlock()

		for i := len(stoppers) - 1; i >= 0; i-- {
			if o.log != nil {
				o.log.Debug("lifecycle: stopping component", "index", i)
			}

			stoppers[i].Stop()
		}

		if o.log != nil {
			o.log.Info("lifecycle: shutdown complete", "components", len(stoppers))
		}
	})
}

// WaitForSignal blocks until ctx is cancelled (typically by an OS
// signal handler wired at the entrypoint) and then calls Shutdown.
func (o *Orchestrator) WaitForSignal(ctx context.Context) {
	<-ctx.Done()
	o.Shutdown()
}
