package render

import (
	"math"

	"github.com/lightwaveos/core/internal/framebuf"
	"github.com/lightwaveos/core/internal/ledgeo"
)

// CorrectionParams are the tunable knobs for the colour correction
// pipeline. All three stages are applied in fixed order: auto-exposure,
// gamma, guardrails.
type CorrectionParams struct {
	AutoExposure      bool
	ExposureSetpoint  float32 // target mean luminance in [0,1]
	Gamma             float32 // >0; 1.0 is a no-op
	GuardrailsEnabled bool
	GuardrailStrength float32 // [0,1], how hard near-white/near-brown is desaturated
}

// DefaultCorrectionParams matches the pipeline's documented defaults:
// gentle auto-exposure, a mild gamma lift, guardrails off.
func DefaultCorrectionParams() CorrectionParams {
	return CorrectionParams{
		AutoExposure:      true,
		ExposureSetpoint:  0.5,
		Gamma:             1.8,
		GuardrailsEnabled: false,
		GuardrailStrength: 0.3,
	}
}

// gammaLUT is a precomputed 256-entry lookup table for one gamma value.
type gammaLUT [256]uint8

func buildGammaLUT(gamma float32) gammaLUT {
	var lut gammaLUT

	if gamma <= 0 {
		gamma = 1
	}

	for i := range 256 {
		norm := float64(i) / 255
		corrected := math.Pow(norm, float64(1/gamma))
		lut[i] = uint8(clampFloat(float32(corrected)*255+0.5, 0, 255)) //nolint:gosec
	}

	return lut
}

// Correct applies the colour correction pipeline to dst in place. dst
// must already be a copy of the effect output — correction never
// touches the buffer the scheduler hands back to stateful effects next
// frame.
func Correct(dst *[ledgeo.TotalLEDs]framebuf.RGB, params CorrectionParams) {
	if params.AutoExposure {
		applyAutoExposure(dst, params.ExposureSetpoint)
	}

	lut := buildGammaLUT(params.Gamma)
	applyGamma(dst, lut)

	if params.GuardrailsEnabled {
		applyGuardrails(dst, params.GuardrailStrength)
	}
}

func applyAutoExposure(buf *[ledgeo.TotalLEDs]framebuf.RGB, setpoint float32) {
	var sum float32
	for _, px := range buf {
		sum += luminance(px)
	}

	mean := sum / float32(len(buf))
	if mean <= 0.0001 {
		return
	}

	gain := setpoint / mean
	// Clamp gain so silent/near-black frames are not blown out and
	// already-bright frames are not crushed.
	gain = clampFloat(gain, 0.25, 4)

	for i, px := range buf {
		buf[i] = px.Scale(gain)
	}
}

func applyGamma(buf *[ledgeo.TotalLEDs]framebuf.RGB, lut gammaLUT) {
	for i, px := range buf {
		buf[i] = framebuf.RGB{R: lut[px.R], G: lut[px.G], B: lut[px.B]}
	}
}

// applyGuardrails gently desaturates pixels that are both near-white and
// near-brown (high luminance, low saturation spread) by pulling each
// channel toward the pixel's mean — a cheap proxy for saturation without
// a full colour-space conversion.
func applyGuardrails(buf *[ledgeo.TotalLEDs]framebuf.RGB, strength float32) {
	for i, px := range buf {
		mean := (float32(px.R) + float32(px.G) + float32(px.B)) / 3
		spread := channelSpread(px)

		if mean < 180 || spread > 60 {
			continue
		}

		buf[i] = framebuf.Lerp(px, framebuf.RGB{
			R: uint8(clampFloat(mean, 0, 255)), //nolint:gosec
			G: uint8(clampFloat(mean, 0, 255)), //nolint:gosec
			B: uint8(clampFloat(mean, 0, 255)), //nolint:gosec
		}, strength)
	}
}

func channelSpread(px framebuf.RGB) float32 {
	lo, hi := px.R, px.R

	if px.G < lo {
		lo = px.G
	}

	if px.B < lo {
		lo = px.B
	}

	if px.G > hi {
		hi = px.G
	}

	if px.B > hi {
		hi = px.B
	}

	return float32(hi) - float32(lo)
}

func luminance(px framebuf.RGB) float32 {
	return (0.2126*float32(px.R) + 0.7152*float32(px.G) + 0.0722*float32(px.B)) / 255
}

func clampFloat(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
