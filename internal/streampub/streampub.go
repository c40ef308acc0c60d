// Package streampub implements the throttled LED stream publisher: on
// each render publish, if at least one subscriber is attached and the
// minimum interval has elapsed, it copies the front buffer into a
// fixed-format wire frame and hands it to the transport layer without
// ever blocking the renderer.
package streampub

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/lightwaveos/core/internal/framebuf"
	"github.com/lightwaveos/core/internal/ledgeo"
)

// Magic identifies the wire frame format; Version allows the consumer
// to detect a format change without guessing from length alone.
const (
	Magic        uint16 = 0x4C57 // "LW"
	Version      uint8  = 1
	NumStrips    uint8  = ledgeo.StripCount
	LEDsPerStrip uint16 = ledgeo.LEDsPerStrip
)

// headerSize is {magic(2) + version(1) + num_strips(1) + leds_per_strip(2)}.
const headerSize = 2 + 1 + 1 + 2

// stripBlockSize is one strip's 160×RGB payload. A block carries no
// strip_id byte: identity is positional (strip 0's block first, strip
// 1's second), which is what keeps FrameSize at 966 bytes rather than
// 966 + NumStrips.
const stripBlockSize = ledgeo.LEDsPerStrip * 3

// FrameSize is the total wire size: header plus one block per strip.
// For the compile-time geometry (2 strips, 160 LEDs) this is 966 bytes.
const FrameSize = headerSize + ledgeo.StripCount*stripBlockSize

// DefaultMinInterval is the default throttle: 20 fps.
const DefaultMinInterval = 50 * time.Millisecond

// Sink receives completed wire frames. Implementations must not block;
// the publisher calls Send synchronously from the render path's publish
// step and a slow sink would stall frame production.
type Sink interface {
	Send(frame []byte)
}

// Publisher throttles and serialises front-buffer copies for external
// subscribers. It holds no reference into the renderer's buffers beyond
// the duration of one Publish call.
type Publisher struct {
	mu          sync.Mutex
	subscribers int
	minInterval time.Duration
	lastSent    time.Time
	sink        Sink
	scratch     [FrameSize]byte
}

// New returns a Publisher with the given sink and minimum interval.
// minInterval <= 0 uses DefaultMinInterval.
func New(sink Sink, minInterval time.Duration) *Publisher {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}

	return &Publisher{sink: sink, minInterval: minInterval} //nolint:exhaustruct
}

// Subscribe increments the subscriber count.
func (p *Publisher) Subscribe() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers++
}

// Unsubscribe decrements the subscriber count, floored at 0.
func (p *Publisher) Unsubscribe() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subscribers > 0 {
		p.subscribers--
	}
}

// SubscriberCount reports the current number of subscribers.
func (p *Publisher) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.subscribers
}

// Publish is called once per render publish with the new front buffer.
// It is a no-op unless there is at least one subscriber and minInterval
// has elapsed since the last stream frame, and never blocks on the sink
// beyond whatever Sink.Send itself does (sinks are expected to be
// non-blocking, e.g. a buffered channel or best-effort socket write).
func (p *Publisher) Publish(front *[ledgeo.TotalLEDs]framebuf.RGB, now time.Time) {
	p.mu.Lock()

	if p.subscribers == 0 || now.Sub(p.lastSent) < p.minInterval {
		p.mu.Unlock()

		return
	}

	p.lastSent = now
	encodeFrame(&p.scratch, front)
	frame := p.scratch
	sink := p.sink

	p.mu.Unlock()

	if sink != nil {
		sink.Send(frame[:])
	}
}

func encodeFrame(dst *[FrameSize]byte, front *[ledgeo.TotalLEDs]framebuf.RGB) {
	binary.LittleEndian.PutUint16(dst[0:2], Magic)
	dst[2] = Version
	dst[3] = NumStrips
	binary.LittleEndian.PutUint16(dst[4:6], LEDsPerStrip)

	offset := headerSize

	for strip := range ledgeo.StripCount {
		base := strip * ledgeo.LEDsPerStrip

		for i := range ledgeo.LEDsPerStrip {
			px := front[base+i]
			dst[offset] = px.R
			dst[offset+1] = px.G
			dst[offset+2] = px.B
			offset += 3
		}
	}
}
