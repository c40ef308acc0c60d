// Package render implements the frame scheduler: the render-core main
// loop that dispatches the active effect, composites an in-flight
// transition, applies colour correction to an output copy, and
// publishes the result for the LED driver and stream publisher.
package render

import (
	"time"

	"github.com/lightwaveos/core/internal/audio"
	"github.com/lightwaveos/core/internal/bus"
	"github.com/lightwaveos/core/internal/effect"
	"github.com/lightwaveos/core/internal/framebuf"
	"github.com/lightwaveos/core/internal/ledgeo"
	"github.com/lightwaveos/core/internal/logx"
	"github.com/lightwaveos/core/internal/palette"
	"github.com/lightwaveos/core/internal/plugin"
)

// TargetPeriod is the scheduler's default frame period: 120 fps.
const TargetPeriod = time.Second / 120

// maxDt bounds the dt fed to effects so a stalled process doesn't hand
// an effect a multi-second timestep on resume.
const maxDt = 250 * time.Millisecond

// Scheduler runs the frame loop described by the frame-scheduler
// contract: deterministic command application, exactly one audio
// snapshot per frame, per-effect buffer-reset policy, transition
// cross-fade, output-only colour correction, and publish.
type Scheduler struct {
	registry *effect.Registry
	palettes *palette.Store
	snapshot *audio.SnapshotSlot
	commands *bus.Bus
	plugins  *plugin.Manager
	frames   *framebuf.Pair
	log      logx.Logger

	correction CorrectionParams

	currentID  uint8
	brightness uint8
	transition transitionState

	// work is the persistent buffer effects render into and stateful
	// effects read back next frame. It is never touched by correction —
	// correction runs on a throwaway copy written into frames.BackMut().
	work    [ledgeo.TotalLEDs]framebuf.RGB
	scratch [ledgeo.TotalLEDs]framebuf.RGB

	stats Stats

	lastTick time.Time
}

// Config bundles the collaborators a Scheduler is built from.
type Config struct {
	Registry   *effect.Registry
	Palettes   *palette.Store
	Snapshot   *audio.SnapshotSlot
	Commands   *bus.Bus
	Plugins    *plugin.Manager
	Frames     *framebuf.Pair
	Log        logx.Logger
	Correction CorrectionParams
}

// New builds a Scheduler starting on effect id 0 (the boot default) with
// full brightness and no active transition.
func New(cfg Config) *Scheduler {
	return &Scheduler{ //nolint:exhaustruct
		registry:   cfg.Registry,
		palettes:   cfg.Palettes,
		snapshot:   cfg.Snapshot,
		commands:   cfg.Commands,
		plugins:    cfg.Plugins,
		frames:     cfg.Frames,
		log:        cfg.Log,
		correction: cfg.Correction,
		currentID:  0,
		brightness: 255,
	}
}

// Stats returns a copy of the scheduler's rolling performance counters.
func (s *Scheduler) Stats() Stats {
	return s.stats
}

// CurrentEffect returns the id of the currently active effect.
func (s *Scheduler) CurrentEffect() uint8 {
	return s.currentID
}

// ActiveTransitionCurve reports the easing curve driving the in-flight
// transition, if any. ok is false when no transition is active.
func (s *Scheduler) ActiveTransitionCurve() (curve Curve, ok bool) {
	return s.transition.curve, s.transition.active
}

// Tick runs exactly one frame at time now. Callers drive the cadence
// (a ticker at TargetPeriod in production, an explicit loop in tests).
func (s *Scheduler) Tick(now time.Time) ShutdownRequested {
	dt := s.computeDt(now)

	if shutdown := s.drainCommands(); shutdown {
		return true
	}

	snap := s.snapshot.Read()

	s.renderFrame(&snap, dt, now)

	s.publish()

	s.stats.record(now, s.lastTick, TargetPeriod)
	s.lastTick = now

	return false
}

// ShutdownRequested reports whether a Shutdown command was observed
// during command drain; the caller must stop calling Tick.
type ShutdownRequested = bool

func (s *Scheduler) computeDt(now time.Time) time.Duration {
	if s.lastTick.IsZero() {
		return TargetPeriod
	}

	dt := now.Sub(s.lastTick)
	if dt > maxDt {
		dt = maxDt
	}

	if dt < 0 {
		dt = 0
	}

	return dt
}

// drainCommands applies every command queued since the previous Tick,
// in FIFO order, and reports whether a Shutdown was among them.
func (s *Scheduler) drainCommands() bool {
	for _, m := range s.commands.Drain() {
		switch m.Kind {
		case bus.KindSetEffect:
			s.applySetEffect(m)
		case bus.KindSetPalette:
			s.palettes.SetPalette(m.PaletteID)
		case bus.KindSetBrightness:
			s.brightness = m.Brightness
		case bus.KindSetParam:
			s.applySetParam(m)
		case bus.KindReloadPlugins:
			if errs := s.plugins.Reload(); len(errs) > 0 && s.log != nil {
				s.log.Warn("plugin reload requested via bus failed", "errors", len(errs))
			}
		case bus.KindSubscribeStream, bus.KindUnsubscribeStream:
			// Stream subscription bookkeeping lives in streampub; the
			// scheduler only forwards via a collaborator wired at
			// construction in the full pipeline. No-op here by design:
			// this scheduler only owns frame production, not transport.
		case bus.KindShutdown:
			return true
		}
	}

	return false
}

func (s *Scheduler) applySetEffect(m bus.Message) {
	if _, ok := s.registry.Get(m.EffectID); !ok {
		return
	}

	if s.plugins != nil && !s.plugins.IsEnabled(m.EffectID) {
		if s.log != nil {
			s.log.Warn("refusing to select disabled-by-override effect", "id", m.EffectID)
		}

		return
	}

	if m.EffectID == s.currentID && !s.transition.active {
		return
	}

	duration := time.Duration(m.TransitionDuration * float64(time.Second))

	if duration <= 0 {
		s.currentID = m.EffectID
		s.transition = transitionState{} //nolint:exhaustruct

		return
	}

	// Cancellation: a new SetEffect during an active transition takes the
	// effect being blended in as the new previous and restarts. The old
	// previous effect's share of the blend is dropped at that moment, so
	// the output steps to the new previous effect's frame.
	s.transition = transitionState{
		active:     true,
		previousID: s.currentID,
		start:      time.Now(),
		duration:   duration,
		curve:      curveFromWire(m.TransitionCurve),
	}
	s.currentID = m.EffectID
}

// curveFromWire maps a caller-supplied curve index onto the closed
// curve set, falling back to ease-in-out for any value outside it
// rather than silently defaulting every caller to linear.
func curveFromWire(id int) Curve {
	if id < 0 || id >= CurveCount {
		return CurveEaseInOut
	}

	return Curve(id)
}

func (s *Scheduler) applySetParam(m bus.Message) {
	e, ok := s.registry.Get(m.ParamEffectID)
	if !ok {
		return
	}

	if err := e.SetParameter(m.ParamName, m.ParamValue); err != nil && s.log != nil {
		s.log.Warn("set-param failed", "effect", m.ParamEffectID, "name", m.ParamName, "err", err)
	}
}

// renderFrame runs the current effect (and, if active, the transition)
// into s.work, then writes a corrected copy into the frame pair's back
// buffer. s.work itself is never touched by correction.
func (s *Scheduler) renderFrame(snap *audio.Snapshot, dt time.Duration, now time.Time) {
	dtSeconds := float32(dt) / float32(time.Second)

	sampler := s.palettes.SampleActive

	cur, ok := s.registry.Get(s.currentID)
	if !ok {
		return
	}

	curDesc := cur.Describe()
	s.resetForPolicy(&s.work, curDesc)

	ctx := &effect.Context{Back: &s.work, Snapshot: snap, Sample: sampler, Dt: dtSeconds, Scratch: nil} //nolint:exhaustruct
	cur.Render(ctx)

	if s.transition.active {
		s.composeTransition(snap, dtSeconds, sampler, now)
	}
}

func (s *Scheduler) composeTransition(snap *audio.Snapshot, dtSeconds float32, sampler func(float32) framebuf.RGB, now time.Time) {
	prev, ok := s.registry.Get(s.transition.previousID)
	if !ok {
		s.transition = transitionState{} //nolint:exhaustruct

		return
	}

	prevDesc := prev.Describe()
	s.resetForPolicy(&s.scratch, prevDesc)

	ctx := &effect.Context{Back: &s.scratch, Snapshot: snap, Sample: sampler, Dt: dtSeconds, Scratch: nil} //nolint:exhaustruct
	prev.Render(ctx)

	weight := s.transition.weight(now)

	for i := range s.work {
		s.work[i] = framebuf.Lerp(s.scratch[i], s.work[i], weight)
	}

	if s.transition.done(now) {
		s.transition = transitionState{} //nolint:exhaustruct
	}
}

// resetForPolicy clears buf to black unless desc declares the effect
// stateful, in which case existing content is left for the effect to
// compose over.
func (s *Scheduler) resetForPolicy(buf *[ledgeo.TotalLEDs]framebuf.RGB, desc effect.Descriptor) {
	if desc.Tags.Has(effect.TagStateful) {
		return
	}

	for i := range buf {
		buf[i] = framebuf.Black
	}
}

// publish copies s.work into the frame pair's back buffer, applies
// colour correction and brightness to that copy only, then swaps it to
// front. s.work is left pristine for next frame's stateful effects.
func (s *Scheduler) publish() {
	out := s.frames.BackMut()
	*out = s.work

	params := s.correction
	if s.currentOptsOutOfCorrection() {
		params.AutoExposure = false
		params.GuardrailsEnabled = false
		params.Gamma = 1
	}

	Correct(out, params)
	applyBrightness(out, s.brightness)

	s.frames.Publish()
}

// currentOptsOutOfCorrection consults the active effect's metadata:
// LGP-sensitive and stateful effects default to no correction.
func (s *Scheduler) currentOptsOutOfCorrection() bool {
	cur, ok := s.registry.Get(s.currentID)
	if !ok {
		return false
	}

	desc := cur.Describe()

	return desc.Tags.Has(effect.TagLGPSensitive) || desc.Tags.Has(effect.TagStateful)
}

func applyBrightness(buf *[ledgeo.TotalLEDs]framebuf.RGB, brightness uint8) {
	if brightness == 255 {
		return
	}

	scale := float32(brightness) / 255

	for i, px := range buf {
		buf[i] = px.Scale(scale)
	}
}
