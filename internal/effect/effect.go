// Package effect defines the contract every visual effect implements
// (IEffect), the per-frame context it renders against, and the static,
// id-addressed registry of up to 128 effects.
package effect

import (
	"github.com/lightwaveos/core/internal/audio"
	"github.com/lightwaveos/core/internal/framebuf"
	"github.com/lightwaveos/core/internal/ledgeo"
)

// MaxEffects is the fixed registry capacity. Ids are in [0, MaxEffects).
const MaxEffects = 128

// ParamKind is the type tag for a parameter value.
type ParamKind string

const (
	ParamBool ParamKind = "bool"
	ParamU8   ParamKind = "u8"
	ParamI32  ParamKind = "i32"
	ParamF32  ParamKind = "f32"
)

// Value is a tagged parameter value. Exactly one of the typed fields is
// meaningful, selected by Kind.
type Value struct {
	Kind ParamKind
	Bool bool
	U8   uint8
	I32  int32
	F32  float32
}

// ParamDescriptor is the static shape of one effect parameter.
type ParamDescriptor struct {
	Name     string
	Kind     ParamKind
	Default  Value
	Min      Value
	Max      Value
	Step     Value
	Group    string
	Advanced bool
}

// Descriptor identifies one registered effect.
type Descriptor struct {
	ID           uint8
	Name         string
	Family       string
	Tags         Tags
	LGPSensitive bool
}

// Tags is a bitset of pattern-metadata flags.
type Tags uint32

const (
	TagCentreOrigin Tags = 1 << iota
	TagStateful
	TagLGPSensitive
)

// Has reports whether t contains flag.
func (t Tags) Has(flag Tags) bool { return t&flag != 0 }

// Context is what an effect receives each frame: a mutable back-buffer
// slice, an immutable audio snapshot, an immutable palette sampler, dt in
// seconds, and a fixed-size scratch handle. Render must not allocate.
type Context struct {
	Back     *[ledgeo.TotalLEDs]framebuf.RGB
	Snapshot *audio.Snapshot
	Sample   func(t float32) framebuf.RGB
	Dt       float32
	Scratch  *Scratch
}

// Scratch is a fixed-size, per-effect working area. Effects that need
// state across frames (stateful effects) keep it here instead of on the
// heap; ScratchSize is sized generously for simple accumulator/phase
// state, not large buffers (those read/write Back directly).
const ScratchSize = 64

type Scratch struct {
	F32 [ScratchSize]float32
	I32 [ScratchSize]int32
}

// IEffect is the contract every effect implements.
type IEffect interface {
	Describe() Descriptor
	ParameterDescriptors() []ParamDescriptor
	GetParameter(name string) (Value, bool)
	SetParameter(name string, v Value) error
	Render(ctx *Context)
}
