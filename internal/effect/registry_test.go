package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightwaveos/core/internal/audio"
	"github.com/lightwaveos/core/internal/effect"
	"github.com/lightwaveos/core/internal/framebuf"
	"github.com/lightwaveos/core/internal/ledgeo"
	"github.com/lightwaveos/core/internal/lwerr"
)

func newTestRegistry(t *testing.T) *effect.Registry {
	t.Helper()

	r := effect.NewRegistry()
	require.NoError(t, effect.RegisterBuiltins(r))

	return r
}

func TestBuiltinsRegisterInOrder(t *testing.T) {
	r := newTestRegistry(t)

	d0, ok := r.Describe(0)
	require.True(t, ok)
	assert.Equal(t, "Solid", d0.Name)

	d1, ok := r.Describe(1)
	require.True(t, ok)
	assert.Equal(t, "Centre Pulse", d1.Name)
	assert.True(t, d1.Tags.Has(effect.TagCentreOrigin))

	d2, ok := r.Describe(2)
	require.True(t, ok)
	assert.Equal(t, "Ember Trail", d2.Name)
	assert.True(t, d2.Tags.Has(effect.TagStateful))
}

func TestUnknownEffectIDIsNotFound(t *testing.T) {
	r := newTestRegistry(t)

	_, ok := r.Get(128)
	assert.False(t, ok)

	_, ok = r.Describe(127)
	assert.False(t, ok)
}

func TestRegistryFullReturnsOutOfRange(t *testing.T) {
	r := effect.NewRegistry()

	var err error
	for range effect.MaxEffects {
		_, err = r.Register(&stubEffect{})
	}

	require.NoError(t, err)

	_, err = r.Register(&stubEffect{})
	require.Error(t, err)
	assert.True(t, lwerr.Is(err, lwerr.OutOfRange))
}

func TestCentrePulseWritesSymmetric(t *testing.T) {
	r := newTestRegistry(t)
	e, ok := r.Get(1)
	require.True(t, ok)

	var back [ledgeo.TotalLEDs]framebuf.RGB

	sampler := func(t float32) framebuf.RGB { return framebuf.RGB{R: 255, G: 255, B: 255} }

	snap := audio.Snapshot{RMS: 0.9} //nolint:exhaustruct

	ctx := &effect.Context{ //nolint:exhaustruct
		Back:     &back,
		Snapshot: &snap,
		Sample:   sampler,
		Dt:       1.0 / 120,
	}

	e.Render(ctx)

	for d := range ledgeo.MaxPairDistance {
		s0Low, s0High, s1Low, s1High, ok := ledgeo.CentreIndices(d)
		require.True(t, ok)
		assert.Equal(t, back[s0Low], back[s0High])
		assert.Equal(t, back[s1Low], back[s1High])
	}
}

func TestEmberTrailDecaysExistingContent(t *testing.T) {
	r := newTestRegistry(t)
	e, ok := r.Get(2)
	require.True(t, ok)

	var back [ledgeo.TotalLEDs]framebuf.RGB
	back[0] = framebuf.RGB{R: 200, G: 200, B: 200}

	snap := audio.Snapshot{Novelty: 0} //nolint:exhaustruct

	ctx := &effect.Context{ //nolint:exhaustruct
		Back:     &back,
		Snapshot: &snap,
		Sample:   func(t float32) framebuf.RGB { return framebuf.Black },
		Dt:       1.0 / 120,
	}

	e.Render(ctx)

	assert.Less(t, back[0].R, uint8(200))
}

type stubEffect struct{}

func (stubEffect) Describe() effect.Descriptor                    { return effect.Descriptor{} } //nolint:exhaustruct
func (stubEffect) ParameterDescriptors() []effect.ParamDescriptor { return nil }
func (stubEffect) GetParameter(string) (effect.Value, bool)       { return effect.Value{}, false } //nolint:exhaustruct
func (stubEffect) SetParameter(string, effect.Value) error        { return nil }
func (stubEffect) Render(*effect.Context)                         {}
