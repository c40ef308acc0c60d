package detect

// Result bundles one hop's onset/beat/chord outputs.
type Result struct {
	Flux            float32
	Novelty         float32
	BPM             float32
	TempoConfidence float32
	BeatPhase       float32
	BeatTick        bool
	DownbeatTick    bool
	ChordRoot       int
	ChordQuality    ChordQuality
	ChordConfidence float32
	State           PresenceState
}

// Detector composes flux/novelty, beat tracking, chord scoring, and the
// presence state machine into the single per-hop update the pipeline
// orchestrator calls.
type Detector struct {
	flux  FluxTracker
	beat  *BeatTracker
	chord *ChordDetector
	state *StateMachine
}

// NewDetector builds a Detector for the given hop period (seconds).
func NewDetector(hopPeriod float32) *Detector {
	return &Detector{
		beat:  NewBeatTracker(hopPeriod, 4.0),
		chord: NewChordDetector(int(0.5 / hopPeriod)),
		state: NewStateMachine(DefaultHysteresis()),
	}
}

// Update runs one hop of detection. On a missed/timed-out audio read
// (samplesAvailable=false), novelty is forced to 0 and beatTick to false,
// and the presence state machine is fed 0 RMS so sustained silence still
// degrades to Silent — there is no retry concept.
func (d *Detector) Update(bins64 [64]float32, chroma [12]float32, rms float32, samplesAvailable bool) Result {
	if !samplesAvailable {
		rms = 0
	}

	state := d.state.Update(rms)

	flux := d.flux.Flux(bins64)
	novelty := flux

	if !samplesAvailable {
		novelty = 0
	}

	if state == Silent {
		d.beat.Reset()
		d.chord.Reset()

		return Result{ //nolint:exhaustruct
			Flux:    flux,
			Novelty: novelty,
			State:   state,
		}
	}

	d.beat.Update(novelty)
	d.chord.Accumulate(chroma)
	chordResult := d.chord.Score()

	return Result{
		Flux:            flux,
		Novelty:         novelty,
		BPM:             d.beat.BPM(),
		TempoConfidence: d.beat.TempoConfidence(),
		BeatPhase:       d.beat.Phase(),
		BeatTick:        d.beat.BeatTick() && samplesAvailable,
		DownbeatTick:    d.beat.DownbeatTick() && samplesAvailable,
		ChordRoot:       chordResult.Root,
		ChordQuality:    chordResult.Quality,
		ChordConfidence: chordResult.Confidence,
		State:           state,
	}
}
