// Package gpiostrobe drives a single GPIO line high for the duration of
// each render publish, so a logic analyser or oscilloscope on that pin
// can verify real-world frame cadence against the 120 fps target
// without instrumenting the render loop itself. Development/debug
// tooling only; production LED output goes through the driver's own
// timing path, not this package.
package gpiostrobe

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/lightwaveos/core/internal/logx"
)

// Strobe toggles one GPIO line to mark frame boundaries.
type Strobe struct {
	line *gpiocdev.Line
	log  logx.Logger
}

// Open requests offset on chip (e.g. "gpiochip0") as an output line,
// initially low.
func Open(chip string, offset int, log logx.Logger) (*Strobe, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("gpiostrobe: request line: %w", err)
	}

	return &Strobe{line: line, log: log}, nil //nolint:exhaustruct
}

// Pulse drives the line high then immediately low, marking one frame
// boundary. Errors are logged, not returned: a probe fault must never
// interrupt the render loop it is observing.
func (s *Strobe) Pulse() {
	if err := s.line.SetValue(1); err != nil {
		s.logErr("set high", err)

		return
	}

	if err := s.line.SetValue(0); err != nil {
		s.logErr("set low", err)
	}
}

func (s *Strobe) logErr(step string, err error) {
	if s.log != nil {
		s.log.Warn("gpiostrobe: "+step+" failed", "err", err)
	}
}

// Close releases the line.
func (s *Strobe) Close() error {
	if err := s.line.Close(); err != nil {
		return fmt.Errorf("gpiostrobe: close line: %w", err)
	}

	return nil
}
