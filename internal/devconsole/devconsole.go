//go:build linux || darwin

// Package devconsole exposes a local developer REPL over a pseudo
// terminal: a developer can `cat` or connect a terminal program to the
// slave side and type a line-oriented command (e.g. "effect 2",
// "palette 3", "param 1 speed 2.5") that gets translated into a bus
// message, without going through the network control surface at all.
// Build-tag gated to the two platforms creack/pty supports well; it is
// a development convenience, never part of the production boot path.
package devconsole

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creack/pty"
	"github.com/pkg/term"

	"github.com/lightwaveos/core/internal/bus"
	"github.com/lightwaveos/core/internal/effect"
	"github.com/lightwaveos/core/internal/logx"
)

// Console owns a pty pair: the process reads/writes the master side
// directly, while the slave side is put into raw mode (no line
// buffering, no echo) the same way a serial port in raw mode is, so
// a terminal emulator attached to it behaves like a plain byte stream.
type Console struct {
	master    *os.File
	slave     *term.Term
	slaveName string
	commands  *bus.Bus
	log       logx.Logger
}

// Open creates a pty pair and returns a Console bound to it. SlavePath
// reports the path a developer should connect a terminal to.
func Open(commands *bus.Bus, log logx.Logger) (*Console, error) {
	ptmx, pts, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("devconsole: open pty: %w", err)
	}

	slave, err := term.Open(pts.Name(), term.RawMode)
	if err != nil {
		_ = ptmx.Close()
		_ = pts.Close()

		return nil, fmt.Errorf("devconsole: raw mode on slave: %w", err)
	}

	return &Console{ //nolint:exhaustruct
		master:    ptmx,
		slave:     slave,
		slaveName: pts.Name(),
		commands:  commands,
		log:       log,
	}, nil
}

// SlavePath returns the pty slave's device path.
func (c *Console) SlavePath() string { return c.slaveName }

// Run reads newline-terminated commands from the master side until ctx
// is cancelled, translating each into a bus message. Unrecognised
// input is logged and ignored — a typo must never crash the console.
func (c *Console) Run(ctx context.Context) {
	scanner := bufio.NewScanner(c.master)

	go func() {
		<-ctx.Done()
		_ = c.master.Close()
	}()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := c.dispatch(line); err != nil && c.log != nil {
			c.log.Warn("devconsole: command failed", "line", line, "err", err)
		}
	}
}

func (c *Console) dispatch(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "effect":
		return c.dispatchSetEffect(fields)
	case "palette":
		return c.dispatchSetPalette(fields)
	case "param":
		return c.dispatchSetParam(fields)
	default:
		return fmt.Errorf("devconsole: unknown command %q", fields[0])
	}
}

func (c *Console) dispatchSetEffect(fields []string) error {
	if len(fields) < 2 { //nolint:mnd
		return fmt.Errorf("devconsole: usage: effect <id> [duration_seconds] [curve_id]")
	}

	id, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		return fmt.Errorf("devconsole: bad effect id: %w", err)
	}

	var duration float64

	if len(fields) >= 3 { //nolint:mnd
		duration, err = strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("devconsole: bad duration: %w", err)
		}
	}

	var curve int

	if len(fields) >= 4 { //nolint:mnd
		curve, err = strconv.Atoi(fields[3])
		if err != nil {
			return fmt.Errorf("devconsole: bad curve id: %w", err)
		}
	}

	c.commands.Send(bus.Message{ //nolint:exhaustruct
		Kind:               bus.KindSetEffect,
		EffectID:           uint8(id),
		TransitionDuration: duration,
		TransitionCurve:    curve,
	})

	return nil
}

func (c *Console) dispatchSetPalette(fields []string) error {
	if len(fields) < 2 { //nolint:mnd
		return fmt.Errorf("devconsole: usage: palette <id>")
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("devconsole: bad palette id: %w", err)
	}

	c.commands.Send(bus.Message{Kind: bus.KindSetPalette, PaletteID: id}) //nolint:exhaustruct

	return nil
}

func (c *Console) dispatchSetParam(fields []string) error {
	const minFields = 4
	if len(fields) < minFields {
		return fmt.Errorf("devconsole: usage: param <effect_id> <name> <float_value>")
	}

	id, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		return fmt.Errorf("devconsole: bad effect id: %w", err)
	}

	value, err := strconv.ParseFloat(fields[3], 32)
	if err != nil {
		return fmt.Errorf("devconsole: bad value: %w", err)
	}

	c.commands.Send(bus.Message{ //nolint:exhaustruct
		Kind:          bus.KindSetParam,
		ParamEffectID: uint8(id),
		ParamName:     fields[2],
		ParamValue:    effect.Value{Kind: effect.ParamF32, F32: float32(value)}, //nolint:exhaustruct
	})

	return nil
}

// Close releases both sides of the pty.
func (c *Console) Close() error {
	slaveErr := c.slave.Close()
	masterErr := c.master.Close()

	if slaveErr != nil {
		return fmt.Errorf("devconsole: close slave: %w", slaveErr)
	}

	if masterErr != nil {
		return fmt.Errorf("devconsole: close master: %w", masterErr)
	}

	return nil
}
