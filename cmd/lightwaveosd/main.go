// Command lightwaveosd is the LightwaveOS render daemon entrypoint: it
// loads boot configuration, wires the audio, effect, plugin, render,
// stream, and discovery subsystems together, and runs until an OS
// signal requests shutdown. Bring-up follows the familiar
// flag/config-parse-then-run-forever shape, constructing a supervised
// component graph instead of a single protocol engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lightwaveos/core/internal/audio"
	"github.com/lightwaveos/core/internal/audiosrc"
	"github.com/lightwaveos/core/internal/audiosrc/pasrc"
	"github.com/lightwaveos/core/internal/audiosrc/udevsrc"
	"github.com/lightwaveos/core/internal/bus"
	"github.com/lightwaveos/core/internal/config"
	"github.com/lightwaveos/core/internal/discovery"
	"github.com/lightwaveos/core/internal/effect"
	"github.com/lightwaveos/core/internal/framebuf"
	"github.com/lightwaveos/core/internal/lifecycle"
	"github.com/lightwaveos/core/internal/logx"
	"github.com/lightwaveos/core/internal/palette"
	"github.com/lightwaveos/core/internal/plugin"
	"github.com/lightwaveos/core/internal/render"
	"github.com/lightwaveos/core/internal/streampub"
	"github.com/lightwaveos/core/internal/tunable"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "lightwaveosd:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := "/etc/lightwaveos/lightwaveos.yaml"
	if v := os.Getenv("LIGHTWAVEOS_CONFIG"); v != "" {
		configPath = v
	}

	cfg, err := config.Load(configPath, os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logx.New(logx.Options{Level: cfg.LogLevel, ReportTime: true}) //nolint:exhaustruct

	if err := lifecycle.LockMemory(); err != nil {
		log.Warn("lightwaveosd: memory lock failed, continuing without it", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := lifecycle.New(log.With("component", "lifecycle"))

	registry := effect.NewRegistry()
	if err := effect.RegisterBuiltins(registry); err != nil {
		return fmt.Errorf("register builtin effects: %w", err)
	}

	palettes := palette.NewStore(log.With("component", "palette"))

	tunables := tunable.NewStore(
		&tunable.FileBacking{ //nolint:exhaustruct
			Path:            cfg.TunablePath,
			FlushLogPath:    "",
			FlushLogPattern: "",
		},
		1,
		2*time.Second, //nolint:mnd
		log.With("component", "tunable"),
	)
	orch.Register(stopperFunc(tunables.FlushNow))

	plugins := plugin.NewManager(cfg.PluginDir, registry, log.With("component", "plugin"))
	if errs := plugins.Reload(); len(errs) > 0 {
		log.Warn("lightwaveosd: initial plugin reload had errors", "count", len(errs), "first", errs[0])
	}

	source, err := openAudioSource(cfg.Audio, log.With("component", "audiosrc"))
	if err != nil {
		return fmt.Errorf("open audio source: %w", err)
	}

	orch.Register(stopperFunc(func() { _ = source.Close() }))

	snapshot := audio.NewSnapshotSlot()

	audioOrch := audio.NewOrchestrator(audio.Config{
		SampleRate:  cfg.Audio.SampleRate,
		WindowSize:  cfg.Audio.WindowSize,
		HopSize:     cfg.Audio.HopSize,
		HeavyEveryN: cfg.Audio.HeavyEveryN,
	}, source, snapshot, log.With("component", "audio"))

	audioCtx, cancelAudio := context.WithCancel(ctx)
	orch.Register(stopperFunc(cancelAudio))

	go audioOrch.Run(audioCtx)

	frames := framebuf.NewPair()
	commands := bus.New(bus.DefaultCapacity)

	scheduler := render.New(render.Config{
		Registry:   registry,
		Palettes:   palettes,
		Snapshot:   snapshot,
		Commands:   commands,
		Plugins:    plugins,
		Frames:     frames,
		Log:        log.With("component", "render"),
		Correction: cfg.Correction.ToParams(),
	})

	publisher := streampub.New(noopSink{}, time.Duration(cfg.Stream.MinIntervalMillis)*time.Millisecond)

	renderDone := make(chan struct{})
	go runRenderLoop(orch.Done(), scheduler, frames, publisher, renderDone)
	orch.Register(stopperFunc(func() { <-renderDone }))

	if cfg.Discovery.Enabled {
		name := cfg.Discovery.Name
		if name == "" {
			name, _ = os.Hostname() //nolint:errcheck
		}

		advertiser := discovery.New(name, cfg.ControlPort, log.With("component", "discovery"))
		if err := advertiser.Start(ctx); err != nil {
			log.Warn("lightwaveosd: discovery failed to start, continuing without it", "err", err)
		} else {
			orch.Register(stopperFunc(advertiser.Stop))
		}
	}

	log.Info("lightwaveosd: running", "control_port", cfg.ControlPort, "plugin_dir", cfg.PluginDir)

	orch.WaitForSignal(ctx)

	return nil
}

// openAudioSource selects an audiosrc.Source implementation per
// cfg.Backend. "i2s" is the on-target driver and is out of scope for
// this build — it returns an error here rather than a stub, so
// misconfiguration on a dev host fails loudly instead of silently
// running on silence.
func openAudioSource(cfg config.AudioConfig, log logx.Logger) (audiosrc.Source, error) {
	switch cfg.Backend {
	case "portaudio":
		return pasrc.Open(cfg.SampleRate, cfg.HopSize, log)
	case "udev":
		opener := func() (audiosrc.Source, error) {
			return pasrc.Open(cfg.SampleRate, cfg.HopSize, log)
		}

		watcher := udevsrc.New(opener, log)
		watcher.Start(context.Background())

		return watcher, nil
	case "i2s":
		return nil, fmt.Errorf("lightwaveosd: i2s backend is firmware-only, not available on this build")
	default:
		return nil, fmt.Errorf("lightwaveosd: unknown audio backend %q", cfg.Backend)
	}
}

// runRenderLoop ticks the scheduler at render.TargetPeriod until done is
// closed or the scheduler itself observes a Shutdown command, then
// publishes each frame's front buffer to the stream publisher and
// closes renderDone so lifecycle shutdown can wait on it.
func runRenderLoop(done <-chan struct{}, scheduler *render.Scheduler, frames *framebuf.Pair, publisher *streampub.Publisher, renderDone chan<- struct{}) {
	defer close(renderDone)

	ticker := time.NewTicker(render.TargetPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			if shutdown := scheduler.Tick(now); shutdown {
				return
			}

			publisher.Publish(frames.Front(), now)
		}
	}
}

// stopperFunc adapts a plain function to lifecycle.Stopper.
type stopperFunc func()

func (f stopperFunc) Stop() { f() }

// noopSink is the default streampub.Sink until a real transport (TCP,
// WebSocket) is wired in by an external collaborator through the bus
// and publisher interfaces this module exposes.
type noopSink struct{}

func (noopSink) Send(frame []byte) {}
