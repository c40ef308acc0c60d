package audio_test

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lightwaveos/core/internal/audio"
	"github.com/lightwaveos/core/internal/logx"
)

type toneSource struct {
	sampleRate float64
	freq       float64
	amplitude  float64
	n          atomic.Int64
	closed     atomic.Bool
}

func (s *toneSource) Read(ctx context.Context, into []float32) (int, error) {
	if ctx.Err() != nil || s.closed.Load() {
		return 0, nil
	}

	start := s.n.Add(int64(len(into))) - int64(len(into))

	for i := range into {
		t := float64(start+int64(i)) / s.sampleRate
		into[i] = float32(s.amplitude * math.Sin(2*math.Pi*s.freq*t))
	}

	return len(into), nil
}

func (s *toneSource) SampleRate() float64 { return s.sampleRate }
func (s *toneSource) Close() error        { s.closed.Store(true); return nil }

func TestOrchestratorPublishesWithoutPanicking(t *testing.T) {
	cfg := audio.DefaultConfig()
	cfg.WindowSize = 256
	cfg.HopSize = 64
	cfg.HeavyEveryN = 2

	src := &toneSource{sampleRate: cfg.SampleRate, freq: 440, amplitude: 0.3} //nolint:exhaustruct
	slot := audio.NewSnapshotSlot()
	orch := audio.NewOrchestrator(cfg, src, slot, logx.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NotPanics(t, func() {
		orch.Run(ctx)
	})

	snap := slot.Read()
	assert.Greater(t, snap.MonotonicHopIndex, uint64(0))
}
