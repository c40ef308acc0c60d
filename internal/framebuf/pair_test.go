package framebuf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lightwaveos/core/internal/framebuf"
	"github.com/lightwaveos/core/internal/ledgeo"
)

func TestPublishSwapsFrontAndBack(t *testing.T) {
	p := framebuf.NewPair()

	back := p.BackMut()
	back[0] = framebuf.RGB{R: 1, G: 2, B: 3}

	p.Publish()

	front := p.Front()
	assert.Equal(t, framebuf.RGB{R: 1, G: 2, B: 3}, front[0])
}

func TestCentrePairOutOfRangeIsNoOp(t *testing.T) {
	p := framebuf.NewPair()

	require.NotPanics(t, func() {
		p.CentrePair(-1, framebuf.RGB{R: 9, G: 9, B: 9})
		p.CentrePair(ledgeo.MaxPairDistance, framebuf.RGB{R: 9, G: 9, B: 9})
		p.CentrePair(1_000_000, framebuf.RGB{R: 9, G: 9, B: 9})
	})

	p.Publish()
	front := p.Front()

	for _, px := range front {
		assert.Equal(t, framebuf.Black, px)
	}
}

// TestCentrePairIsAlwaysSymmetric is the universal centre-symmetry
// invariant: for every d in range, all four written indices hold the same
// colour after publish.
func TestCentrePairIsAlwaysSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := framebuf.NewPair()

		d := rapid.IntRange(0, ledgeo.MaxPairDistance-1).Draw(t, "d")
		r := rapid.IntRange(0, 255).Draw(t, "r")
		g := rapid.IntRange(0, 255).Draw(t, "g")
		b := rapid.IntRange(0, 255).Draw(t, "b")
		colour := framebuf.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}

		p.CentrePair(d, colour)
		p.Publish()

		front := p.Front()
		s0Low, s0High, s1Low, s1High, ok := ledgeo.CentreIndices(d)
		require.True(t, ok)

		assert.Equal(t, front[s0Low], front[s0High])
		assert.Equal(t, front[s1Low], front[s1High])
		assert.Equal(t, colour, front[s0Low])
	})
}

// TestEveryFrameIndexDefined is the "no uninitialised memory"
// invariant: a freshly published frame always has a defined value (black,
// by construction) at every index.
func TestEveryFrameIndexDefined(t *testing.T) {
	p := framebuf.NewPair()
	p.Publish()

	front := p.Front()
	assert.Len(t, front, ledgeo.TotalLEDs)
}
