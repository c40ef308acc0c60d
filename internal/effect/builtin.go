package effect

import (
	"github.com/lightwaveos/core/internal/framebuf"
	"github.com/lightwaveos/core/internal/ledgeo"
)

// RegisterBuiltins registers the builtin effect set in the order that
// defines their ids. Effect 0 is the boot default.
func RegisterBuiltins(r *Registry) error {
	builtins := []IEffect{
		newSolidColor(),
		newCentrePulse(),
		newEmberTrail(),
	}

	for _, e := range builtins {
		if _, err := r.Register(e); err != nil {
			return err
		}
	}

	return nil
}

// solidColor is the simplest possible effect: fills every pixel with the
// palette colour at its "position" parameter (default 0). It is stateless and not centre-origin, and is the
// boot-default effect (id 0) so a fresh device with no audio still shows
// a defined, non-flickering pattern.
type solidColor struct {
	params []ParamDescriptor
	pos    float32
}

func newSolidColor() *solidColor {
	fval := func(f float32) Value { return Value{Kind: ParamF32, F32: f} } //nolint:exhaustruct

	return &solidColor{
		params: []ParamDescriptor{
			{
				Name:    "position",
				Kind:    ParamF32,
				Default: fval(0),
				Min:     fval(0),
				Max:     fval(1),
				Step:    fval(0.01),
			},
		},
		pos: 0,
	}
}

func (e *solidColor) Describe() Descriptor {
	return Descriptor{Name: "Solid", Family: "basic", Tags: 0, LGPSensitive: false} //nolint:exhaustruct
}

func (e *solidColor) ParameterDescriptors() []ParamDescriptor { return e.params }

func (e *solidColor) GetParameter(name string) (Value, bool) {
	if name == "position" {
		return Value{Kind: ParamF32, F32: e.pos}, true //nolint:exhaustruct
	}

	return Value{}, false //nolint:exhaustruct
}

func (e *solidColor) SetParameter(name string, v Value) error {
	if name != "position" {
		return notFoundParam(name)
	}

	if v.Kind != ParamF32 {
		return typeMismatchParam(name)
	}

	if v.F32 < 0 || v.F32 > 1 {
		return outOfRangeParam(name)
	}

	e.pos = v.F32

	return nil
}

func (e *solidColor) Render(ctx *Context) {
	colour := ctx.Sample(e.pos)
	for i := range ctx.Back {
		ctx.Back[i] = colour
	}
}

// centrePulse is a centre-origin effect: it writes both centre indices
// together at every distance, driven by RMS level, illustrating the
// symmetric-write requirement.
type centrePulse struct {
	params []ParamDescriptor
	speed  float32
	phase  float32
}

func newCentrePulse() *centrePulse {
	fval := func(f float32) Value { return Value{Kind: ParamF32, F32: f} } //nolint:exhaustruct

	return &centrePulse{
		params: []ParamDescriptor{
			{
				Name:    "speed",
				Kind:    ParamF32,
				Default: fval(1),
				Min:     fval(0.1),
				Max:     fval(5),
				Step:    fval(0.1),
			},
		},
		speed: 1,
	}
}

func (e *centrePulse) Describe() Descriptor {
	return Descriptor{Name: "Centre Pulse", Family: "reactive", Tags: TagCentreOrigin, LGPSensitive: false} //nolint:exhaustruct
}

func (e *centrePulse) ParameterDescriptors() []ParamDescriptor { return e.params }

func (e *centrePulse) GetParameter(name string) (Value, bool) {
	if name == "speed" {
		return Value{Kind: ParamF32, F32: e.speed}, true //nolint:exhaustruct
	}

	return Value{}, false //nolint:exhaustruct
}

func (e *centrePulse) SetParameter(name string, v Value) error {
	if name != "speed" {
		return notFoundParam(name)
	}

	if v.Kind != ParamF32 {
		return typeMismatchParam(name)
	}

	if v.F32 < 0.1 || v.F32 > 5 {
		return outOfRangeParam(name)
	}

	e.speed = v.F32

	return nil
}

func (e *centrePulse) Render(ctx *Context) {
	for i := range ctx.Back {
		ctx.Back[i] = framebuf.Black
	}

	e.phase += ctx.Dt * e.speed
	for e.phase > 1 {
		e.phase -= 1
	}

	level := ctx.Snapshot.RMS

	reach := int(level * float32(ledgeo.MaxPairDistance-1))
	for d := 0; d <= reach; d++ {
		t := float32(d) / float32(ledgeo.MaxPairDistance)
		colour := ctx.Sample(t + e.phase)

		s0Low, s0High, s1Low, s1High, ok := ledgeo.CentreIndices(d)
		if !ok {
			continue
		}

		ctx.Back[s0Low] = colour
		ctx.Back[s0High] = colour
		ctx.Back[s1Low] = colour
		ctx.Back[s1High] = colour
	}
}

// emberTrail is a stateful (buffer-feedback) effect: each frame it decays
// the previous frame's content (read from Back, which the scheduler left
// intact for stateful effects) and adds a new bright pixel near the
// centre driven by onset novelty.
type emberTrail struct {
	params []ParamDescriptor
	decay  float32
}

func newEmberTrail() *emberTrail {
	fval := func(f float32) Value { return Value{Kind: ParamF32, F32: f} } //nolint:exhaustruct

	return &emberTrail{
		params: []ParamDescriptor{
			{
				Name:    "decay",
				Kind:    ParamF32,
				Default: fval(0.9),
				Min:     fval(0.5),
				Max:     fval(0.99),
				Step:    fval(0.01),
			},
		},
		decay: 0.9,
	}
}

func (e *emberTrail) Describe() Descriptor {
	return Descriptor{ //nolint:exhaustruct
		Name:         "Ember Trail",
		Family:       "reactive",
		Tags:         TagCentreOrigin | TagStateful,
		LGPSensitive: false,
	}
}

func (e *emberTrail) ParameterDescriptors() []ParamDescriptor { return e.params }

func (e *emberTrail) GetParameter(name string) (Value, bool) {
	if name == "decay" {
		return Value{Kind: ParamF32, F32: e.decay}, true //nolint:exhaustruct
	}

	return Value{}, false //nolint:exhaustruct
}

func (e *emberTrail) SetParameter(name string, v Value) error {
	if name != "decay" {
		return notFoundParam(name)
	}

	if v.Kind != ParamF32 {
		return typeMismatchParam(name)
	}

	if v.F32 < 0.5 || v.F32 > 0.99 {
		return outOfRangeParam(name)
	}

	e.decay = v.F32

	return nil
}

func (e *emberTrail) Render(ctx *Context) {
	for i, px := range ctx.Back {
		ctx.Back[i] = px.Scale(e.decay)
	}

	if ctx.Snapshot.Novelty > 0.2 {
		ctx.Back[ledgeo.CentreLow] = ctx.Sample(ctx.Snapshot.Novelty)
		ctx.Back[ledgeo.CentreHigh] = ctx.Back[ledgeo.CentreLow]
		ctx.Back[ledgeo.CentreLow+ledgeo.LEDsPerStrip] = ctx.Back[ledgeo.CentreLow]
		ctx.Back[ledgeo.CentreHigh+ledgeo.LEDsPerStrip] = ctx.Back[ledgeo.CentreLow]
	}
}
