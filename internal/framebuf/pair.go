package framebuf

import (
	"sync/atomic"

	"github.com/lightwaveos/core/internal/ledgeo"
)

// Pair is two equally-sized LED arrays plus an atomic index selecting which
// one is "ready to show". Back is exclusively writable by the renderer;
// front is read-only everywhere else until the next Publish. The pair is
// created once at boot and lives for the process lifetime — there is no
// destroy path.
type Pair struct {
	buffers  [2][ledgeo.TotalLEDs]RGB
	frontIdx atomic.Uint32 // index into buffers[] currently exposed as front
	backIdx  uint32        // index into buffers[] currently owned by the renderer; renderer-only, never read concurrently
}

// NewPair returns a frame buffer pair with both buffers cleared to black.
func NewPair() *Pair {
	p := &Pair{} //nolint:exhaustruct
	p.frontIdx.Store(0)
	p.backIdx = 1

	return p
}

// BackMut returns the buffer the renderer may freely mutate this frame.
// Only the renderer may call this.
func (p *Pair) BackMut() *[ledgeo.TotalLEDs]RGB {
	return &p.buffers[p.backIdx]
}

// Front returns the buffer currently ready for the driver or the stream
// publisher to read. It must not be mutated.
func (p *Pair) Front() *[ledgeo.TotalLEDs]RGB {
	idx := p.frontIdx.Load()

	return &p.buffers[idx]
}

// Publish atomically swaps front and back: the buffer the renderer just
// finished becomes the new front, and the renderer's next BackMut call
// returns the previous front buffer (now safe to overwrite since no reader
// holds a reference past the swap by contract). After Publish returns, no
// code but the driver or stream copier may read the new front buffer until
// the next Publish.
func (p *Pair) Publish() {
	done := p.backIdx
	p.frontIdx.Store(done)
	p.backIdx = 1 - done
}

// CentrePair writes rgb to the four strip indices symmetric about the
// centre at distance d: strip-0 indices (CentreLow-d, CentreHigh+d) and
// their strip-1 mirrors. An out-of-range d is a silent no-op, never a
// fault — callers sweeping d outward need not bounds-check themselves.
func (p *Pair) CentrePair(d int, rgb RGB) {
	s0Low, s0High, s1Low, s1High, ok := ledgeo.CentreIndices(d)
	if !ok {
		return
	}

	back := p.BackMut()
	back[s0Low] = rgb
	back[s0High] = rgb
	back[s1Low] = rgb
	back[s1High] = rgb
}
