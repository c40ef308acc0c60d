package detect

// BeatTracker tracks tempo via autocorrelation over a rolling novelty
// history, and interpolates beat phase linearly between detected beats.
type BeatTracker struct {
	history    []float32 // ring buffer of novelty values over ~4s
	writeIdx   int
	filled     bool
	hopPeriod  float32 // seconds per hop, used to convert lag (in hops) to BPM
	minBPM     float32
	maxBPM     float32
	bpm        float32
	confidence float32
	phase      float32 // [0,1)
	beatTick   bool
	downbeat   bool
	beatCount  int
}

// NewBeatTracker builds a tracker sized to hold ~historySeconds of
// novelty values at the given hop period.
func NewBeatTracker(hopPeriod float32, historySeconds float32) *BeatTracker {
	n := int(historySeconds / hopPeriod)
	if n < 2 {
		n = 2
	}

	return &BeatTracker{ //nolint:exhaustruct
		history:   make([]float32, n),
		hopPeriod: hopPeriod,
		minBPM:    60,
		maxBPM:    180,
	}
}

// Update feeds one hop's novelty value and advances phase/tempo tracking.
// beatTick is true for exactly the one hop on which a beat boundary is
// crossed; downbeatTick additionally marks every fourth beat.
func (b *BeatTracker) Update(novelty float32) {
	b.history[b.writeIdx] = novelty
	b.writeIdx = (b.writeIdx + 1) % len(b.history)

	if b.writeIdx == 0 {
		b.filled = true
	}

	b.beatTick = false
	b.downbeat = false

	if !b.filled {
		// Not enough history yet to autocorrelate meaningfully.
		return
	}

	period, confidence := b.bestPeriod()
	if period <= 0 {
		b.confidence *= 0.9 // decay smoothly rather than snap to zero

		return
	}

	bpm := 60.0 / (period * b.hopPeriod)
	b.bpm = bpm
	b.confidence = confidence

	phaseStep := 1.0 / period
	b.phase += phaseStep

	if b.phase >= 1 {
		b.phase -= 1
		b.beatTick = true
		b.beatCount++

		if b.beatCount%4 == 0 {
			b.downbeat = true
		}
	}
}

// bestPeriod autocorrelates the novelty history against lag candidates
// spanning [minBPM, maxBPM] and returns the best lag (in hops) and a
// confidence derived from how much it beats the runner-up lag.
func (b *BeatTracker) bestPeriod() (float32, float32) {
	minLag := int(60.0 / (b.maxBPM * b.hopPeriod))
	maxLag := int(60.0 / (b.minBPM * b.hopPeriod))

	if minLag < 1 {
		minLag = 1
	}

	if maxLag >= len(b.history) {
		maxLag = len(b.history) - 1
	}

	if maxLag <= minLag {
		return 0, 0
	}

	best, second := float32(-1), float32(-1)
	bestLag := 0

	for lag := minLag; lag <= maxLag; lag++ {
		score := b.autocorrelateAt(lag)
		if score > best {
			second = best
			best = score
			bestLag = lag
		} else if score > second {
			second = score
		}
	}

	if best <= 0 {
		return 0, 0
	}

	confidence := (best - second) / best
	if confidence < 0 {
		confidence = 0
	}

	if confidence > 1 {
		confidence = 1
	}

	return float32(bestLag), confidence
}

func (b *BeatTracker) autocorrelateAt(lag int) float32 {
	n := len(b.history)

	var sum float32

	for i := 0; i < n; i++ {
		sum += b.history[i] * b.history[(i+lag)%n]
	}

	return sum / float32(n)
}

// BPM returns the current tempo estimate.
func (b *BeatTracker) BPM() float32 { return b.bpm }

// TempoConfidence returns [0,1].
func (b *BeatTracker) TempoConfidence() float32 { return b.confidence }

// Phase returns the current beat phase in [0,1).
func (b *BeatTracker) Phase() float32 { return b.phase }

// BeatTick reports whether this hop crossed a beat boundary.
func (b *BeatTracker) BeatTick() bool { return b.beatTick }

// DownbeatTick reports whether this hop crossed a downbeat boundary.
func (b *BeatTracker) DownbeatTick() bool { return b.downbeat }

// Reset clears tracking state, used on the Tracking->Silent transition.
func (b *BeatTracker) Reset() {
	for i := range b.history {
		b.history[i] = 0
	}

	b.writeIdx = 0
	b.filled = false
	b.bpm = 0
	b.confidence = 0
	b.phase = 0
	b.beatTick = false
	b.downbeat = false
	b.beatCount = 0
}
