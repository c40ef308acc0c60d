// Package udevsrc watches for USB sound-card hotplug events via udev
// and wraps an underlying audiosrc.Source so the audio orchestrator
// keeps running (with graceful "no data" reads) across an unplug, and
// resumes automatically when a replacement device reopens it.
package udevsrc

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jochenvg/go-udev"

	"github.com/lightwaveos/core/internal/audiosrc"
	"github.com/lightwaveos/core/internal/logx"
)

// Opener (re)creates the underlying source, e.g. pasrc.Open bound to
// fixed sample rate and buffer size.
type Opener func() (audiosrc.Source, error)

// Watcher monitors the udev "sound" subsystem and keeps a Source alive
// across device add/remove, delegating Read to whatever source is
// currently open and returning a short read while none is.
type Watcher struct {
	open Opener
	log  logx.Logger

	mu      sync.Mutex
	current audiosrc.Source

	present atomic.Bool
	cancel  context.CancelFunc
}

// New returns a Watcher that calls open to (re)acquire a source each
// time a "sound" subsystem "add" event is observed.
func New(open Opener, log logx.Logger) *Watcher {
	return &Watcher{open: open, log: log} //nolint:exhaustruct
}

// Start begins monitoring udev events in a background goroutine and
// makes an initial attempt to open the source immediately, so a device
// already present at boot is used without waiting for a hotplug event.
func (w *Watcher) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.tryOpen()

	go w.watch(runCtx)
}

func (w *Watcher) watch(ctx context.Context) {
	u := udev.Udev{}

	monitor := u.NewMonitorFromNetlink("udev")
	if err := monitor.FilterAddMatchSubsystem("sound"); err != nil {
		if w.log != nil {
			w.log.Warn("udevsrc: filter setup failed", "err", err)
		}

		return
	}

	events, err := monitor.DeviceChan(ctx)
	if err != nil {
		if w.log != nil {
			w.log.Warn("udevsrc: device channel setup failed", "err", err)
		}

		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case dev, ok := <-events:
			if !ok {
				return
			}

			w.handleEvent(dev.Action())
		}
	}
}

func (w *Watcher) handleEvent(action string) {
	switch action {
	case "add":
		w.tryOpen()
	case "remove":
		w.closeCurrent()
	}
}

func (w *Watcher) tryOpen() {
	src, err := w.open()
	if err != nil {
		if w.log != nil {
			w.log.Warn("udevsrc: open failed, will retry on next hotplug event", "err", err)
		}

		return
	}

	w.mu.Lock()
	if w.current != nil {
		_ = w.current.Close()
	}

	w.current = src
	w.mu.Unlock()

	w.present.Store(true)

	if w.log != nil {
		w.log.Info("udevsrc: source opened")
	}
}

func (w *Watcher) closeCurrent() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current != nil {
		_ = w.current.Close()
		w.current = nil
	}

	w.present.Store(false)
}

// Read delegates to the current source, or returns (0, nil) — a short
// read, never an error — if no device is currently present.
func (w *Watcher) Read(ctx context.Context, into []float32) (int, error) {
	w.mu.Lock()
	src := w.current
	w.mu.Unlock()

	if src == nil {
		return 0, nil
	}

	return src.Read(ctx, into)
}

// SampleRate returns the current source's rate, or 0 if none is open.
func (w *Watcher) SampleRate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return 0
	}

	return w.current.SampleRate()
}

// Close stops the watcher and closes any currently-open source.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}

	w.closeCurrent()

	return nil
}

// Present reports whether a source is currently open.
func (w *Watcher) Present() bool {
	return w.present.Load()
}
