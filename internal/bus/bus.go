// Package bus implements the bounded command/event queue between
// producers (network handlers, the UI poller, plugin reload requests)
// and the single consumer: the frame scheduler. The queue favours
// freshness over completeness under load — when full, the oldest
// non-critical message is dropped rather than blocking a producer or
// dropping the newest message outright.
package bus

import (
	"sync"

	"github.com/lightwaveos/core/internal/effect"
)

// Kind tags the variant held by a Message.
type Kind int

const (
	KindSetEffect Kind = iota
	KindSetPalette
	KindSetBrightness
	KindSetParam
	KindReloadPlugins
	KindSubscribeStream
	KindUnsubscribeStream
	KindShutdown
)

// Message is a tagged union of every command/event the bus carries. Only
// the fields relevant to Kind are meaningful.
type Message struct {
	Kind Kind

	// SetEffect
	EffectID           uint8
	TransitionDuration float64 // seconds; 0 means no transition
	TransitionCurve    int     // index into render's closed curve set; meaningless if TransitionDuration <= 0

	// SetPalette
	PaletteID int

	// SetBrightness
	Brightness uint8

	// SetParam
	ParamEffectID uint8
	ParamName     string
	ParamValue    effect.Value
}

// IsCritical reports whether m must never be dropped by the full-queue
// policy. Only Shutdown is critical; everything else is a convenience
// signal that a later message (or a future poll) will supersede.
func (m Message) IsCritical() bool {
	return m.Kind == KindShutdown
}

// DefaultCapacity is the bounded queue's default depth. It is sized for
// a handful of UI/network commands accumulating between frames at 120
// fps, not for sustained high-rate traffic.
const DefaultCapacity = 64

// Bus is a bounded, multi-producer single-consumer FIFO. Producers call
// Send; the consumer (the frame scheduler) calls Drain once per frame
// to take everything queued since the previous drain.
type Bus struct {
	mu       sync.Mutex
	cap      int
	messages []Message
}

// New returns a Bus with the given capacity. Capacity <= 0 uses
// DefaultCapacity.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Bus{cap: capacity, messages: make([]Message, 0, capacity)} //nolint:exhaustruct
}

// Send enqueues m. If the queue is full, the oldest non-critical
// message is evicted to make room; if every queued message is critical
// (Shutdown) and the queue is still full, m is dropped in their favour
// — Shutdown messages are never evicted to make room for anything else,
// including another Shutdown.
func (b *Bus) Send(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.messages) < b.cap {
		b.messages = append(b.messages, m)

		return
	}

	if idx := b.oldestDroppableLocked(); idx >= 0 {
		b.messages = append(b.messages[:idx], b.messages[idx+1:]...)
		b.messages = append(b.messages, m)

		return
	}

	// Queue is saturated with critical messages; m is dropped.
}

// oldestDroppableLocked returns the index of the oldest non-critical
// message, or -1 if every queued message is critical. Caller must hold
// mu.
func (b *Bus) oldestDroppableLocked() int {
	for i, m := range b.messages {
		if !m.IsCritical() {
			return i
		}
	}

	return -1
}

// Drain removes and returns every message queued since the previous
// Drain, in FIFO order. It never blocks.
func (b *Bus) Drain() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.messages) == 0 {
		return nil
	}

	out := b.messages
	b.messages = make([]Message, 0, b.cap)

	return out
}

// Len reports the number of messages currently queued.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.messages)
}
