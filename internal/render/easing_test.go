package render

import (
	"testing"

	"pgregory.net/rapid"
)

func TestEaseLinearIsIdentity(t *testing.T) {
	for _, tt := range []float32{0, 0.25, 0.5, 0.75, 1} {
		if got := ease(CurveLinear, tt); got != tt {
			t.Fatalf("ease(linear, %v) = %v, want %v", tt, got, tt)
		}
	}
}

func TestEaseClampsOutOfRangeInput(t *testing.T) {
	if got := ease(CurveLinear, -1); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}

	if got := ease(CurveLinear, 2); got != 1 {
		t.Fatalf("got %v, want 1", got)
	}
}

// TestEaseIsAlwaysBounded is the closed-set property behind the curve
// index wire contract: whichever curve a caller selects, and whatever t
// it's driven with (including out-of-[0,1] input from clock skew), the
// blend weight handed to the compositor never leaves [0,1].
func TestEaseIsAlwaysBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := Curve(rapid.IntRange(0, CurveCount-1).Draw(t, "curve"))
		tt := rapid.Float32Range(-10, 10).Draw(t, "t")

		got := ease(c, tt)
		if got < 0 || got > 1 {
			t.Fatalf("ease(%d, %v) = %v, want in [0,1]", c, tt, got)
		}
	})
}

func TestEveryCurveStartsAtZeroEndsAtOne(t *testing.T) {
	for c := Curve(0); c < CurveCount; c++ {
		start := ease(c, 0)
		end := ease(c, 1)

		if start < -0.0001 || start > 0.0001 {
			t.Fatalf("curve %d: ease(0) = %v, want ~0", c, start)
		}

		if end < 0.999 || end > 1.001 {
			t.Fatalf("curve %d: ease(1) = %v, want ~1", c, end)
		}
	}
}
