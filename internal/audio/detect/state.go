package detect

// PresenceState is the onset/beat/chord detector's gating state machine,
// hysteresis-gated on RMS: Silent -> Listening -> Tracking -> Silent.
type PresenceState int

const (
	Silent PresenceState = iota
	Listening
	Tracking
)

// Hysteresis holds the RMS thresholds and hold times gating presence
// transitions: a short burst above RiseThreshold moves Silent->Listening
// immediately; sustained presence for HoldHops moves Listening->Tracking;
// sustained absence for HoldHops moves either state back to Silent.
type Hysteresis struct {
	RiseThreshold float32
	FallThreshold float32
	HoldHops      int
}

// DefaultHysteresis are conservative factory values.
func DefaultHysteresis() Hysteresis {
	return Hysteresis{RiseThreshold: 0.02, FallThreshold: 0.01, HoldHops: 20}
}

// StateMachine tracks PresenceState across hops.
type StateMachine struct {
	params       Hysteresis
	state        PresenceState
	aboveHops    int
	belowHops    int
}

// NewStateMachine returns a machine starting in Silent.
func NewStateMachine(p Hysteresis) *StateMachine {
	return &StateMachine{params: p, state: Silent} //nolint:exhaustruct
}

// Update advances the state machine given the current RMS and returns the
// resulting state.
func (sm *StateMachine) Update(rms float32) PresenceState {
	present := rms >= sm.params.RiseThreshold
	absent := rms <= sm.params.FallThreshold

	switch sm.state {
	case Silent:
		if present {
			sm.aboveHops++
			if sm.aboveHops >= 1 {
				sm.state = Listening
				sm.aboveHops = 0
			}
		} else {
			sm.aboveHops = 0
		}
	case Listening:
		if present {
			sm.aboveHops++
			if sm.aboveHops >= sm.params.HoldHops {
				sm.state = Tracking
				sm.aboveHops = 0
			}
		} else {
			sm.aboveHops = 0
		}

		if absent {
			sm.belowHops++
			if sm.belowHops >= sm.params.HoldHops {
				sm.state = Silent
				sm.belowHops = 0
			}
		} else {
			sm.belowHops = 0
		}
	case Tracking:
		if absent {
			sm.belowHops++
			if sm.belowHops >= sm.params.HoldHops {
				sm.state = Silent
				sm.belowHops = 0
			}
		} else {
			sm.belowHops = 0
		}
	}

	return sm.state
}

// State returns the current state without advancing it.
func (sm *StateMachine) State() PresenceState {
	return sm.state
}
