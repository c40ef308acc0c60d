// Package palette implements the fixed set of 16-colour palettes effects
// sample from. The palette set is compiled in; only the active selection
// is mutable.
package palette

import (
	"sync/atomic"

	"github.com/lightwaveos/core/internal/framebuf"
	"github.com/lightwaveos/core/internal/logx"
)

// EntryCount is the fixed number of colour stops per palette.
const EntryCount = 16

// Palette is an ordered, fixed-size RGB lookup table.
type Palette struct {
	Name    string
	Entries [EntryCount]framebuf.RGB
}

// Store holds the compiled-in palette set and the currently selected id.
// Lookup and selection are the only mutable state; the palettes themselves
// never change after construction.
type Store struct {
	palettes []Palette
	activeID atomic.Int32
	log      logx.Logger
}

// NewStore returns a Store seeded with the built-in palette set, palette 0
// selected.
func NewStore(log logx.Logger) *Store {
	return &Store{
		palettes: builtinPalettes(),
		activeID: atomic.Int32{},
		log:      log,
	}
}

// SetPalette selects the active palette by id. An unknown id is ignored
// and logged; it has no other side effect.
func (s *Store) SetPalette(id int) {
	if id < 0 || id >= len(s.palettes) {
		if s.log != nil {
			s.log.Warn("unknown palette id", "id", id)
		}

		return
	}

	s.activeID.Store(int32(id))
}

// ActivePalette returns the currently selected palette id.
func (s *Store) ActivePalette() int {
	return int(s.activeID.Load())
}

// List returns the compiled-in palette set, for introspection (GET
// /palettes).
func (s *Store) List() []Palette {
	return s.palettes
}

// Sample returns the RGB colour at fractional position t in [0,1) within
// the named palette, linearly interpolating between the two nearest of the
// 16 entries and wrapping past the last entry back to the first. Sampling
// an unknown id returns black.
func (s *Store) Sample(id int, t float32) framebuf.RGB {
	if id < 0 || id >= len(s.palettes) {
		return framebuf.Black
	}

	return sample(&s.palettes[id], t)
}

// SampleActive samples the currently selected palette.
func (s *Store) SampleActive(t float32) framebuf.RGB {
	return s.Sample(s.ActivePalette(), t)
}

func sample(p *Palette, t float32) framebuf.RGB {
	if t < 0 {
		t = 0
	}

	if t >= 1 {
		t -= float32(int(t))
	}

	scaled := t * float32(EntryCount)
	lo := int(scaled) % EntryCount
	hi := (lo + 1) % EntryCount
	frac := scaled - float32(int(scaled))

	return framebuf.Lerp(p.Entries[lo], p.Entries[hi], frac)
}
