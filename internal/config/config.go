// Package config loads the boot configuration: a YAML file supplying
// defaults, overlaid by command-line flags for the settings an operator
// commonly wants to override without editing the file (log level,
// plugin directory, tunable store path, control port, audio backend).
// The config file path itself is not a flag: Load takes it as an
// argument.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/lightwaveos/core/internal/render"
)

// Config is the full boot configuration for lightwaveosd.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	PluginDir   string `yaml:"plugin_dir"`
	TunablePath string `yaml:"tunable_path"`
	ControlPort int    `yaml:"control_port"`

	Audio      AudioConfig      `yaml:"audio"`
	Correction CorrectionConfig `yaml:"correction"`
	Stream     StreamConfig     `yaml:"stream"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
}

// AudioConfig configures the audio source backend selection and the
// Goertzel pipeline's sampling geometry.
type AudioConfig struct {
	Backend     string  `yaml:"backend"` // "i2s", "portaudio", "udev"
	SampleRate  float64 `yaml:"sample_rate_hz"`
	WindowSize  int     `yaml:"window_size"`
	HopSize     int     `yaml:"hop_size"`
	HeavyEveryN int     `yaml:"heavy_every_n"`
}

// CorrectionConfig mirrors render.CorrectionParams for YAML round-trip.
type CorrectionConfig struct {
	AutoExposure      bool    `yaml:"auto_exposure"`
	ExposureSetpoint  float32 `yaml:"exposure_setpoint"`
	Gamma             float32 `yaml:"gamma"`
	GuardrailsEnabled bool    `yaml:"guardrails_enabled"`
	GuardrailStrength float32 `yaml:"guardrail_strength"`
}

// ToParams converts the YAML-shaped config into render.CorrectionParams.
func (c CorrectionConfig) ToParams() render.CorrectionParams {
	return render.CorrectionParams{
		AutoExposure:      c.AutoExposure,
		ExposureSetpoint:  c.ExposureSetpoint,
		Gamma:             c.Gamma,
		GuardrailsEnabled: c.GuardrailsEnabled,
		GuardrailStrength: c.GuardrailStrength,
	}
}

// StreamConfig configures the LED stream publisher.
type StreamConfig struct {
	MinIntervalMillis int `yaml:"min_interval_ms"`
}

// DiscoveryConfig configures DNS-SD advertisement.
type DiscoveryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// Default returns the built-in configuration used when no file is
// found and no flags override it.
func Default() Config {
	return Config{
		LogLevel:    "info",
		PluginDir:   "/etc/lightwaveos/plugins",
		TunablePath: "/var/lib/lightwaveos/tunables.yaml",
		ControlPort: 7890,
		Audio: AudioConfig{
			Backend:     "i2s",
			SampleRate:  12800,
			WindowSize:  1500,
			HopSize:     128,
			HeavyEveryN: 8,
		},
		Correction: CorrectionConfig{
			AutoExposure:      true,
			ExposureSetpoint:  0.5,
			Gamma:             1.8,
			GuardrailsEnabled: false,
			GuardrailStrength: 0.3,
		},
		Stream: StreamConfig{MinIntervalMillis: 50},
		Discovery: DiscoveryConfig{
			Enabled: true,
			Name:    "",
		},
	}
}

// Load reads path (if it exists) over the built-in defaults, then
// applies flag overrides parsed from args. A missing config file is not
// an error — the defaults (plus flags) stand alone.
func Load(path string, args []string) (Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil { //nolint:gosec
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := applyFlags(&cfg, args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("lightwaveosd", pflag.ContinueOnError)

	logLevel := fs.StringP("log-level", "l", cfg.LogLevel, "log level: debug, info, warn, error")
	pluginDir := fs.String("plugin-dir", cfg.PluginDir, "directory scanned for *.plugin.json manifests")
	tunablePath := fs.String("tunable-path", cfg.TunablePath, "path to the persistent tunable store file")
	controlPort := fs.IntP("control-port", "p", cfg.ControlPort, "TCP port for the control/discovery surface")
	audioBackend := fs.String("audio-backend", cfg.Audio.Backend, "audio source backend: i2s, portaudio, udev")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("config: parse flags: %w", err)
	}

	cfg.LogLevel = *logLevel
	cfg.PluginDir = *pluginDir
	cfg.TunablePath = *tunablePath
	cfg.ControlPort = *controlPort
	cfg.Audio.Backend = *audioBackend

	return nil
}
