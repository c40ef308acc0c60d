// Package tunable implements the durable, typed, named key-value store.
// Writes to persistent tunables are coalesced by a debounce window and
// flushed as a transactional batch; non-persistent tunables are boot-time
// defaults only and never touch the backing file.
package tunable

import (
	"sync"
	"time"

	"github.com/lightwaveos/core/internal/lwerr"
	"github.com/lightwaveos/core/internal/logx"
)

type record struct {
	desc  Descriptor
	value any
	dirty bool
}

// Store is the runtime key-value store. Enumeration order matches
// registration order, for UI reproducibility.
type Store struct {
	mu       sync.Mutex
	order    []string
	records  map[string]*record
	loaded   map[string]persistedRecord // parsed from the backing file at construction, consumed by Register
	epoch    int
	debounce time.Duration
	timer    *time.Timer
	backing  Backing
	log      logx.Logger
}

// Backing is the durable write-back target. It is an interface so tests
// can substitute an in-memory fake instead of touching a filesystem.
type Backing interface {
	Load() (map[string]persistedRecord, error)
	Save(epoch int, records map[string]persistedRecord) error
}

// NewStore constructs a Store backed by b, tagging freshly-flushed records
// with firmwareEpoch and coalescing persistent writes over debounce.
func NewStore(b Backing, firmwareEpoch int, debounce time.Duration, log logx.Logger) *Store {
	s := &Store{
		records:  make(map[string]*record),
		epoch:    firmwareEpoch,
		debounce: debounce,
		backing:  b,
		log:      log,
	} //nolint:exhaustruct

	loaded, err := b.Load()
	if err != nil {
		if log != nil {
			log.Warn("tunable store: failed to load backing file, starting empty", "err", err)
		}

		loaded = nil
	}

	s.loaded = loaded

	return s
}

// Register declares a tunable at boot, in the order tunables should
// enumerate in. If a persisted value exists for name, it is adopted unless
// its kind or declared range has changed since it was written (the
// firmware-version-epoch migration rule), in which case it is discarded
// with a logged warning and the default is used instead.
func Register[T bool | uint8 | int32 | float32](s *Store, desc Descriptor, defaultValue T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc.Kind = kindOf[T]()

	rec := &record{desc: desc, value: defaultValue, dirty: false}

	if pr, ok := s.loaded[desc.Name]; ok {
		if compatible(desc, pr) {
			rec.value = pr.typedValue(desc.Kind)
		} else if s.log != nil {
			s.log.Warn("tunable store: discarding persisted value, descriptor changed",
				"name", desc.Name, "persisted_kind", pr.Kind)
		}
	}

	s.records[desc.Name] = rec
	s.order = append(s.order, desc.Name)
}

func compatible(desc Descriptor, pr persistedRecord) bool {
	if pr.Kind != desc.Kind {
		return false
	}

	if !floatPtrEqual(pr.Min, desc.Min) || !floatPtrEqual(pr.Max, desc.Max) {
		return false
	}

	return true
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	return *a == *b
}

// Get returns the current value of name and true, or the zero value and
// false if name is unregistered or its kind does not match T.
func Get[T bool | uint8 | int32 | float32](s *Store, name string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[name]
	if !ok {
		var zero T

		return zero, false
	}

	v, ok := rec.value.(T)

	return v, ok
}

// Set assigns value to name. Setting a tunable to its current value is a
// no-op: no persisted write is issued and no dirty flag is raised, per the
// idempotence contract.
func Set[T bool | uint8 | int32 | float32](s *Store, name string, value T) error {
	s.mu.Lock()

	rec, ok := s.records[name]
	if !ok {
		s.mu.Unlock()

		return lwerr.New(lwerr.NotFound, "unknown tunable %q", name)
	}

	if rec.desc.Kind != kindOf[T]() {
		s.mu.Unlock()

		return lwerr.New(lwerr.TypeMismatch, "tunable %q is kind %s", name, rec.desc.Kind)
	}

	if f, ok := asFloat64(value); ok && !inRange(rec.desc, f) {
		s.mu.Unlock()

		return lwerr.New(lwerr.OutOfRange, "tunable %q value %v out of range", name, value)
	}

	if current, ok := rec.value.(T); ok && current == value {
		s.mu.Unlock()

		return nil
	}

	rec.value = value
	persistent := rec.desc.Persistent
	if persistent {
		rec.dirty = true
	}

	s.mu.Unlock()

	if persistent {
		s.scheduleFlush()
	}

	return nil
}

// Enumerate returns every registered descriptor in registration order.
func (s *Store) Enumerate() []Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Descriptor, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.records[name].desc)
	}

	return out
}

func (s *Store) scheduleFlush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = time.AfterFunc(s.debounce, s.flush)
}

// flush writes every persistent record, dirty or not, as one
// transactional batch and clears their dirty flags.
// A crash before this completes leaves the previous file intact; a crash
// during Save is the backing implementation's responsibility to make
// atomic (write-temp-then-rename).
func (s *Store) flush() {
	s.mu.Lock()

	batch := make(map[string]persistedRecord, len(s.order))

	for _, name := range s.order {
		rec := s.records[name]
		if !rec.desc.Persistent {
			continue
		}

		batch[name] = persistedRecord{
			Kind:  rec.desc.Kind,
			Min:   rec.desc.Min,
			Max:   rec.desc.Max,
			Value: rec.value,
			Epoch: s.epoch,
		}
		rec.dirty = false
	}

	s.mu.Unlock()

	if err := s.backing.Save(s.epoch, batch); err != nil && s.log != nil {
		s.log.Error("tunable store: flush failed", "err", err)
	}
}

// FlushNow forces an immediate synchronous flush, bypassing the debounce
// window. Intended for clean-shutdown paths.
func (s *Store) FlushNow() {
	if s.timer != nil {
		s.timer.Stop()
	}

	s.flush()
}
