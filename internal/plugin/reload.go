package plugin

import (
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/lightwaveos/core/internal/effect"
	"github.com/lightwaveos/core/internal/logx"
)

// activeSet is the immutable result of one successful reload. Manager
// swaps a pointer to one of these atomically; nothing ever mutates a
// published activeSet in place.
type activeSet struct {
	mode      Mode
	manifests []ParsedManifest
	// disabled holds ids marked disabled-by-override in override mode.
	// In additive mode it is always empty.
	disabled map[uint8]bool
}

// Stats summarises the most recent reload attempt, successful or not.
type Stats struct {
	LastReload    time.Time
	Success       bool
	ManifestCount int
	ErrorCount    int
	Errors        []string
}

// Manager owns the active manifest set and override mask. Reload is
// atomic and all-or-nothing: a failing reload leaves the previously
// published set completely untouched.
type Manager struct {
	dir     string
	reg     *effect.Registry
	log     logx.Logger
	current atomic.Pointer[activeSet]
	stats   atomic.Pointer[Stats]
}

// NewManager returns a Manager with an empty additive active set (every
// builtin effect enabled, no manifests loaded) — the boot-default state
// before the first reload.
func NewManager(dir string, reg *effect.Registry, log logx.Logger) *Manager {
	m := &Manager{dir: dir, reg: reg, log: log} //nolint:exhaustruct

	m.current.Store(&activeSet{mode: ModeAdditive, manifests: nil, disabled: map[uint8]bool{}})
	m.stats.Store(&Stats{LastReload: time.Time{}, Success: true, ManifestCount: 0, ErrorCount: 0, Errors: nil})

	return m
}

// Reload re-scans the plugin directory, validates every manifest found,
// and — only if every manifest is valid — atomically swaps the active
// set. A validation failure anywhere leaves the live set unchanged and
// is reported via the returned error list.
func (m *Manager) Reload() []error {
	paths, err := m.listManifestFiles()
	if err != nil {
		errs := []error{err}
		m.recordFailure(0, errs)

		return errs
	}

	var (
		manifests []ParsedManifest
		errs      []error
	)

	for _, p := range paths {
		data, rerr := os.ReadFile(p) //nolint:gosec
		if rerr != nil {
			errs = append(errs, rerr)

			continue
		}

		parsed, perr := ParseManifest(p, data, m.reg)
		if perr != nil {
			errs = append(errs, perr)

			continue
		}

		manifests = append(manifests, parsed)
	}

	if len(errs) > 0 {
		m.recordFailure(len(manifests), errs)

		return errs
	}

	next := computeActiveSet(manifests)
	m.current.Store(next)

	m.stats.Store(&Stats{
		LastReload:    now(),
		Success:       true,
		ManifestCount: len(manifests),
		ErrorCount:    0,
		Errors:        nil,
	})

	if m.log != nil {
		m.log.Info("plugin reload succeeded", "manifests", len(manifests), "mode", next.mode)
	}

	return nil
}

func (m *Manager) recordFailure(manifestCount int, errs []error) {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}

	m.stats.Store(&Stats{
		LastReload:    now(),
		Success:       false,
		ManifestCount: manifestCount,
		ErrorCount:    len(errs),
		Errors:        msgs,
	})

	if m.log != nil {
		m.log.Warn("plugin reload aborted, active set untouched", "errors", len(errs))
	}
}

// listManifestFiles returns every *.plugin.json path under dir, sorted
// for deterministic reload behaviour across runs.
func (m *Manager) listManifestFiles() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	var out []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()
		if hasPluginJSONSuffix(name) {
			out = append(out, filepath.Join(m.dir, name))
		}
	}

	sort.Strings(out)

	return out, nil
}

func hasPluginJSONSuffix(name string) bool {
	const suffix = ".plugin.json"
	if len(name) <= len(suffix) {
		return false
	}

	return name[len(name)-len(suffix):] == suffix
}

// computeActiveSet merges manifests per the additive/override contract:
// mode is override iff any manifest declares override; in override mode
// only ids named by some manifest remain enabled, everything else is
// disabled-by-override but stays resident for introspection.
func computeActiveSet(manifests []ParsedManifest) *activeSet {
	mode := ModeAdditive

	for _, mf := range manifests {
		if mf.Mode == ModeOverride {
			mode = ModeOverride

			break
		}
	}

	disabled := map[uint8]bool{}

	if mode == ModeOverride {
		named := map[uint8]bool{}

		for _, mf := range manifests {
			for _, ref := range mf.Effects {
				named[ref.ID] = true
			}
		}

		for id := range effect.MaxEffects {
			if !named[uint8(id)] { //nolint:gosec
				disabled[uint8(id)] = true //nolint:gosec
			}
		}
	}

	return &activeSet{mode: mode, manifests: manifests, disabled: disabled}
}

// IsEnabled reports whether id is selectable by the scheduler under the
// current active set.
func (m *Manager) IsEnabled(id uint8) bool {
	cur := m.current.Load()

	return !cur.disabled[id]
}

// Mode returns the effective mode of the currently active set.
func (m *Manager) Mode() Mode {
	return m.current.Load().mode
}

// Manifests returns the manifests composing the currently active set.
func (m *Manager) Manifests() []ParsedManifest {
	cur := m.current.Load()
	out := make([]ParsedManifest, len(cur.manifests))
	copy(out, cur.manifests)

	return out
}

// Stats returns a copy of the most recent reload's outcome.
func (m *Manager) Stats() Stats {
	return *m.stats.Load()
}

// now is a seam so tests can't depend on wall-clock ordering; production
// always calls time.Now.
var now = time.Now
