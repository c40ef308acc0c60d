package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightwaveos/core/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 7890, cfg.ControlPort)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightwaveos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\ncontrol_port: 9001\n"), 0o644))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9001, cfg.ControlPort)
}

func TestFlagsOverrideFileAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightwaveos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))

	cfg, err := config.Load(path, []string{"--log-level=warn", "--control-port=9100"})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 9100, cfg.ControlPort)
}

func TestCorrectionConfigRoundTripsToParams(t *testing.T) {
	cfg := config.Default()

	params := cfg.Correction.ToParams()
	assert.Equal(t, cfg.Correction.Gamma, params.Gamma)
	assert.Equal(t, cfg.Correction.AutoExposure, params.AutoExposure)
}
