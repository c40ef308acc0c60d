package goertzel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightwaveos/core/internal/audio/goertzel"
)

func sineWave(freqHz, sampleRate float64, n int, amplitude float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amplitude * float32(math.Sin(2*math.Pi*freqHz*float64(i)/sampleRate))
	}

	return out
}

func TestMagnitudePeaksAtTargetFrequency(t *testing.T) {
	const sampleRate = 12800.0
	const window = 1500

	target := goertzel.NewBin(440, sampleRate, window)
	offTarget := goertzel.NewBin(220, sampleRate, window)

	samples := sineWave(440, sampleRate, window, 1.0)

	onMag := target.Magnitude(samples)
	offMag := offTarget.Magnitude(samples)

	assert.Greater(t, onMag, offMag*2)
}

func TestMagnitudeScalesWithAmplitude(t *testing.T) {
	const sampleRate = 12800.0
	const window = 1500

	bin := goertzel.NewBin(1000, sampleRate, window)

	low := bin.Magnitude(sineWave(1000, sampleRate, window, 0.1))
	high := bin.Magnitude(sineWave(1000, sampleRate, window, 0.5))

	ratio := high / low
	assert.InDelta(t, 5.0, ratio, 0.5)
}

func TestMagnitudeEmptyBufferIsZeroNotPanic(t *testing.T) {
	bin := goertzel.NewBin(440, 12800, 1500)

	require.NotPanics(t, func() {
		assert.Equal(t, float32(0), bin.Magnitude(nil))
		assert.Equal(t, float32(0), bin.Magnitude([]float32{}))
	})
}

func TestBankSweepPersistsAcrossShortReads(t *testing.T) {
	freqs := goertzel.SemitoneFrequencies(55, 64)
	bank := goertzel.NewBank(freqs, 12800, 1500)

	samples := sineWave(440, 12800, 1500, 1.0)
	ok := bank.Sweep(samples)
	require.True(t, ok)

	prev := bank.Last

	ok = bank.Sweep(nil)
	require.False(t, ok)
	assert.Equal(t, prev, bank.Last, "a short/empty read must not zero out the last good spectrum")
}

func TestChromaFoldCollapsesOctaves(t *testing.T) {
	var bins [64]float32
	bins[0] = 1
	bins[12] = 1
	bins[24] = 1

	chroma := goertzel.ChromaFold(bins)
	assert.InDelta(t, float32(3), chroma[0], 0.0001)

	for i := 1; i < 12; i++ {
		assert.Equal(t, float32(0), chroma[i])
	}
}

func TestAggregateProducesEightBands(t *testing.T) {
	var bins [64]float32
	for i := range bins {
		bins[i] = 1
	}

	bands := goertzel.Aggregate(bins, goertzel.DefaultBandWeights())

	for _, v := range bands {
		assert.Greater(t, v, float32(0))
	}
}
