package plugin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightwaveos/core/internal/effect"
	"github.com/lightwaveos/core/internal/logx"
	"github.com/lightwaveos/core/internal/plugin"
)

func writeManifest(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestReloadEmptyDirectoryIsAdditiveWithNoManifests(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()

	mgr := plugin.NewManager(dir, reg, logx.Discard())

	errs := mgr.Reload()
	require.Empty(t, errs)
	assert.Equal(t, plugin.ModeAdditive, mgr.Mode())
	assert.True(t, mgr.IsEnabled(0))
	assert.True(t, mgr.IsEnabled(1))
}

func TestReloadAdditiveKeepsAllBuiltinsEnabled(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()

	writeManifest(t, dir, "curated.plugin.json", `{
		"schema": 1,
		"plugin": {"name": "Curated"},
		"effects": [{"id": 0}]
	}`)

	mgr := plugin.NewManager(dir, reg, logx.Discard())
	require.Empty(t, mgr.Reload())

	assert.True(t, mgr.IsEnabled(0))
	assert.True(t, mgr.IsEnabled(1))
	assert.True(t, mgr.IsEnabled(2))
}

func TestReloadOverrideDisablesUnnamedEffects(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()

	writeManifest(t, dir, "only-pulse.plugin.json", `{
		"schema": 1,
		"plugin": {"name": "Only Pulse"},
		"mode": "override",
		"effects": [{"id": 1}]
	}`)

	mgr := plugin.NewManager(dir, reg, logx.Discard())
	require.Empty(t, mgr.Reload())

	assert.Equal(t, plugin.ModeOverride, mgr.Mode())
	assert.True(t, mgr.IsEnabled(1))
	assert.False(t, mgr.IsEnabled(0))
	assert.False(t, mgr.IsEnabled(2))
}

func TestReloadFailureLeavesPreviousSetUntouched(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()

	writeManifest(t, dir, "good.plugin.json", `{
		"schema": 1,
		"plugin": {"name": "Good"},
		"mode": "override",
		"effects": [{"id": 1}]
	}`)

	mgr := plugin.NewManager(dir, reg, logx.Discard())
	require.Empty(t, mgr.Reload())
	require.Equal(t, plugin.ModeOverride, mgr.Mode())

	writeManifest(t, dir, "bad.plugin.json", `{
		"schema": 1,
		"plugin": {"name": "Bad"},
		"effects": []
	}`)

	errs := mgr.Reload()
	require.NotEmpty(t, errs)

	// The previously-active override set must still be in effect.
	assert.Equal(t, plugin.ModeOverride, mgr.Mode())
	assert.True(t, mgr.IsEnabled(1))
	assert.False(t, mgr.IsEnabled(0))

	stats := mgr.Stats()
	assert.False(t, stats.Success)
	assert.Positive(t, stats.ErrorCount)
}

func TestReloadIsIdempotentUnderRepeatedOverride(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()

	writeManifest(t, dir, "only-pulse.plugin.json", `{
		"schema": 1,
		"plugin": {"name": "Only Pulse"},
		"mode": "override",
		"effects": [{"id": 1}]
	}`)

	mgr := plugin.NewManager(dir, reg, logx.Discard())
	require.Empty(t, mgr.Reload())
	require.Empty(t, mgr.Reload())

	assert.True(t, mgr.IsEnabled(1))
	assert.False(t, mgr.IsEnabled(0))
	assert.Len(t, mgr.Manifests(), 1)
}

func TestDisabledEffectsRemainResidentForIntrospection(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()

	writeManifest(t, dir, "only-pulse.plugin.json", `{
		"schema": 1,
		"plugin": {"name": "Only Pulse"},
		"mode": "override",
		"effects": [{"id": 1}]
	}`)

	mgr := plugin.NewManager(dir, reg, logx.Discard())
	require.Empty(t, mgr.Reload())

	// Disabled-by-override effects are still queryable in the registry.
	_, ok := reg.Describe(0)
	assert.True(t, ok)
	assert.False(t, mgr.IsEnabled(0))
}

func TestReloadMissingDirectoryIsNotAnError(t *testing.T) {
	reg := testRegistry(t)

	mgr := plugin.NewManager(filepath.Join(t.TempDir(), "does-not-exist"), reg, logx.Discard())

	errs := mgr.Reload()
	assert.Empty(t, errs)
}

func TestReloadIgnoresNonPluginFiles(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()

	writeManifest(t, dir, "readme.txt", "not a manifest")
	writeManifest(t, dir, "other.json", `{"not": "a manifest"}`)

	mgr := plugin.NewManager(dir, reg, logx.Discard())

	errs := mgr.Reload()
	assert.Empty(t, errs)
	assert.Empty(t, mgr.Manifests())
}
