package audio

import (
	"context"
	"math"
	"runtime"

	"github.com/lightwaveos/core/internal/audio/detect"
	"github.com/lightwaveos/core/internal/audio/goertzel"
	"github.com/lightwaveos/core/internal/audio/normalize"
	"github.com/lightwaveos/core/internal/audiosrc"
	"github.com/lightwaveos/core/internal/logx"
)

// Config parameterises one Orchestrator. Target values per spec §4.4:
// 12.8 kHz sample rate, 1500-sample window, hop configurable.
type Config struct {
	SampleRate    float64
	WindowSize    int
	HopSize       int
	HeavyEveryN   int // run the full Goertzel sweep every Nth hop; flux, tempo and chord detection run every hop on the last sweep's spectrum
	NormalizeParams normalize.Params
}

// DefaultConfig matches the target cadence: ~10 Hz heavy analysis
// at a 1500-sample window and 12.8 kHz sample rate implies roughly a
// 128-sample hop (12800/100), with the heavy sweep running once per hop
// group of size HeavyEveryN.
func DefaultConfig() Config {
	return Config{
		SampleRate:      12800,
		WindowSize:      1500,
		HopSize:         128,
		HeavyEveryN:      8,
		NormalizeParams: normalize.DefaultParams(),
	}
}

// Orchestrator owns the sample source, the Goertzel bank, the detectors,
// and the normaliser, runs at its own hop cadence on a dedicated
// execution context, and publishes the combined snapshot. No callbacks
// into effects are made from here.
type Orchestrator struct {
	cfg      Config
	source   audiosrc.Source
	bank     *goertzel.Bank
	follower *normalize.Follower
	detector *detect.Detector
	slot     *SnapshotSlot
	weights  goertzel.BandWeights
	log      logx.Logger

	window   []float32 // rolling PCM window, reused every hop, no per-hop allocation
	hopIndex uint64
}

// NewOrchestrator wires the components together. slot is the snapshot
// publication target the render task reads from.
func NewOrchestrator(cfg Config, source audiosrc.Source, slot *SnapshotSlot, log logx.Logger) *Orchestrator {
	freqs := goertzel.SemitoneFrequencies(55, BinCount) // A1 = 55Hz
	hopPeriod := float32(cfg.HopSize) / float32(cfg.SampleRate)

	return &Orchestrator{
		cfg:      cfg,
		source:   source,
		bank:     goertzel.NewBank(freqs, cfg.SampleRate, cfg.WindowSize),
		follower: normalize.NewFollower(cfg.NormalizeParams),
		detector: detect.NewDetector(hopPeriod),
		slot:     slot,
		weights:  goertzel.DefaultBandWeights(),
		log:      log,
		window:   make([]float32, cfg.WindowSize),
	}
}

// Run executes the hop loop until ctx is cancelled. On cancellation the
// current hop completes and Run returns — there is never a partial
// publish.
func (o *Orchestrator) Run(ctx context.Context) {
	hopBuf := make([]float32, o.cfg.HopSize)

	var last Snapshot

	for {
		if ctx.Err() != nil {
			return
		}

		n, err := o.source.Read(ctx, hopBuf)
		samplesAvailable := err == nil && n == len(hopBuf)

		o.shiftWindow(hopBuf[:n])

		runtime.Gosched() // explicit yield between the read and the DSP stages

		last = o.step(last, samplesAvailable)

		o.slot.Publish(last)
		o.hopIndex++
	}
}

// shiftWindow slides hopBuf into the rolling PCM window, discarding the
// oldest hopSize samples. No allocation: window is reused in place.
func (o *Orchestrator) shiftWindow(hop []float32) {
	n := len(hop)
	if n == 0 {
		return
	}

	if n >= len(o.window) {
		copy(o.window, hop[n-len(o.window):])

		return
	}

	copy(o.window, o.window[n:])
	copy(o.window[len(o.window)-n:], hop)
}

func (o *Orchestrator) step(prev Snapshot, samplesAvailable bool) Snapshot {
	rms, fastRMS, peak := levels(o.window, prev.FastRMS)

	heavy := o.hopIndex%uint64(o.cfg.HeavyEveryN) == 0

	if heavy && samplesAvailable {
		o.bank.Sweep(o.window)
	}

	runtime.Gosched() // explicit yield between the heavy sweep and adaptive/detector stages

	adaptive := o.follower.Update(o.bank.Last)
	bands := goertzel.Aggregate(o.bank.Last, o.weights)
	chroma := goertzel.ChromaFold(o.bank.Last)

	var heavyBands [8]float32

	var heavyChroma12 [12]float32

	if heavy {
		heavyBands = bands
		heavyChroma12 = smoothChroma(prev.HeavyChroma, chroma, 0.2)
	} else {
		heavyBands = prev.HeavyBands8
		heavyChroma12 = prev.HeavyChroma
	}

	result := o.detector.Update(o.bank.Last, chroma, rms, samplesAvailable)

	return Snapshot{
		RMS:               rms,
		FastRMS:           fastRMS,
		Peak:              peak,
		SpectralFlux:      result.Flux,
		Novelty:           result.Novelty,
		Bins64:            o.bank.Last,
		Bins64Adaptive:    adaptive,
		Bands8:            bands,
		HeavyBands8:       heavyBands,
		Chroma:            chroma,
		HeavyChroma:       heavyChroma12,
		ChordRoot:         result.ChordRoot,
		ChordType:         ChordType(result.ChordQuality),
		ChordConfidence:   result.ChordConfidence,
		BPM:               result.BPM,
		TempoConfidence:   result.TempoConfidence,
		BeatPhase:         result.BeatPhase,
		BeatTick:          result.BeatTick,
		DownbeatTick:      result.DownbeatTick,
		SnareEnergy:       bands[0],
		HihatEnergy:       bands[len(bands)-1],
		SnareTrigger:      result.BeatTick && bands[0] > 0.3,
		HihatTrigger:      result.Novelty > 0.4,
		MonotonicHopIndex: o.hopIndex,
	}
}

func smoothChroma(prev, cur [12]float32, alpha float32) [12]float32 {
	var out [12]float32
	for i := range out {
		out[i] = prev[i] + (cur[i]-prev[i])*alpha
	}

	return out
}

// levels computes RMS, a fast (short-window-weighted) RMS, and peak over
// window. fastRMS exponentially tracks toward the instantaneous RMS
// faster than a caller-facing smoothing stage would, giving effects a
// more percussive-feeling level without a second full window.
func levels(window []float32, prevFastRMS float32) (rms, fastRMS, peak float32) {
	if len(window) == 0 {
		return 0, prevFastRMS, 0
	}

	var sumSquares float64

	for _, s := range window {
		v := float64(s)
		sumSquares += v * v

		if a := float32(math.Abs(v)); a > peak {
			peak = a
		}
	}

	rms = float32(math.Sqrt(sumSquares / float64(len(window))))
	fastRMS = prevFastRMS + (rms-prevFastRMS)*0.5

	return rms, fastRMS, peak
}
