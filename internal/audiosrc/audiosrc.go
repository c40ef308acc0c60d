// Package audiosrc defines the abstract audio sample source boundary
// (spec §6): "pull a window of N PCM samples at rate R", implemented
// on-target by an I²S driver and, for host/dev builds, by the pasrc and
// udevsrc sub-packages.
package audiosrc

import "context"

// Source pulls a fresh window of PCM samples per call. Read blocks until a
// window is available, returns a fresh window each call (never a stale
// one), and may return a short or empty read on shutdown — callers treat
// a short read as "no data", never as an error to retry.
type Source interface {
	// Read fills into, returning the number of samples actually written.
	// n < len(into) signals a short read (e.g. on shutdown).
	Read(ctx context.Context, into []float32) (n int, err error)

	// SampleRate is the fixed rate this source produces, in Hz.
	SampleRate() float64

	// Close releases any underlying device handle.
	Close() error
}
