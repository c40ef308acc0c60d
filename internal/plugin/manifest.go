// Package plugin loads and validates the curation manifests that select
// which of the builtin effects are active, without ever loading code: a
// manifest can only reference effect ids that already exist in the
// builtin registry.
package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/lightwaveos/core/internal/effect"
	"github.com/lightwaveos/core/internal/lwerr"
)

// MaxNameBytes is the manifest name length limit.
const MaxNameBytes = 64

// Mode selects how a manifest's effect list combines with the builtin set.
type Mode string

const (
	ModeAdditive Mode = "additive"
	ModeOverride Mode = "override"
)

// EffectRef is one entry in a manifest's effects list.
type EffectRef struct {
	ID   uint8  `json:"id"`
	Name string `json:"name,omitempty"`
}

// rawManifest mirrors the on-disk JSON shape before validation. An
// absent schema field decodes as the zero value and is treated as
// schema 1, the lenient default.
type rawManifest struct {
	Schema  int    `json:"schema"`
	Version string `json:"version,omitempty"`
	Plugin  struct {
		Name        string `json:"name"`
		Version     string `json:"version,omitempty"`
		Author      string `json:"author,omitempty"`
		Description string `json:"description,omitempty"`
	} `json:"plugin"`
	Mode    Mode        `json:"mode"`
	Effects []EffectRef `json:"effects"`
}

// ParsedManifest is one validated *.plugin.json file.
type ParsedManifest struct {
	SchemaVersion int
	PluginName    string
	Mode          Mode
	Effects       []EffectRef
	SourcePath    string
}

// supportedSchemas is the set of schema values this loader recognises.
// Schema 2 additionally rejects unknown keys at any nesting level.
var supportedSchemas = map[int]bool{1: true, 2: true}

// ParseManifest validates raw against the schema rules and the supplied
// registry, returning the parsed form or an InvalidManifest error
// describing the first violation.
func ParseManifest(path string, data []byte, reg *effect.Registry) (ParsedManifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return ParsedManifest{}, lwerr.New(lwerr.InvalidManifest, "%s: invalid json: %v", path, err)
	}

	schema := raw.Schema
	if schema == 0 {
		schema = 1
	}

	if !supportedSchemas[schema] {
		return ParsedManifest{}, lwerr.New(lwerr.InvalidManifest, "%s: unrecognised schema %d", path, schema)
	}

	if schema >= 2 {
		if err := rejectUnknownKeys(data); err != nil {
			return ParsedManifest{}, lwerr.New(lwerr.InvalidManifest, "%s: %v", path, err)
		}
	}

	if raw.Plugin.Name == "" {
		return ParsedManifest{}, lwerr.New(lwerr.InvalidManifest, "%s: plugin.name must be non-empty", path)
	}

	if len(raw.Plugin.Name) > MaxNameBytes {
		return ParsedManifest{}, lwerr.New(lwerr.InvalidManifest, "%s: plugin.name exceeds %d bytes", path, MaxNameBytes)
	}

	if len(raw.Effects) == 0 {
		return ParsedManifest{}, lwerr.New(lwerr.InvalidManifest, "%s: effects must be non-empty", path)
	}

	mode := raw.Mode
	if mode == "" {
		mode = ModeAdditive
	}

	if mode != ModeAdditive && mode != ModeOverride {
		return ParsedManifest{}, lwerr.New(lwerr.InvalidManifest, "%s: unknown mode %q", path, raw.Mode)
	}

	for _, ref := range raw.Effects {
		if int(ref.ID) >= effect.MaxEffects {
			return ParsedManifest{}, lwerr.New(lwerr.InvalidManifest, "%s: effect id %d out of range", path, ref.ID)
		}

		if reg != nil {
			if _, ok := reg.Get(ref.ID); !ok {
				return ParsedManifest{}, lwerr.New(lwerr.InvalidManifest, "%s: effect id %d not present in registry", path, ref.ID)
			}
		}
	}

	return ParsedManifest{
		SchemaVersion: schema,
		PluginName:    raw.Plugin.Name,
		Mode:          mode,
		Effects:       raw.Effects,
		SourcePath:    path,
	}, nil
}

// knownTopLevelKeys, knownPluginKeys, and knownEffectKeys are the
// schema-2 allow-lists for rejectUnknownKeys, one per nesting level
// named in the manifest file format.
var knownTopLevelKeys = map[string]bool{
	"schema":  true,
	"version": true,
	"plugin":  true,
	"mode":    true,
	"effects": true,
}

var knownPluginKeys = map[string]bool{
	"name":        true,
	"version":     true,
	"author":      true,
	"description": true,
}

var knownEffectKeys = map[string]bool{
	"id":   true,
	"name": true,
}

// rejectUnknownKeys re-decodes data into generic maps and reports any
// key outside the allow-list for its nesting level — top-level,
// plugin{}, and each effects[] entry. Schema 1 is permissive and never
// calls this; schema 2 manifests must name only known fields at every
// level.
func rejectUnknownKeys(data []byte) error {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}

	for key := range generic {
		if !knownTopLevelKeys[key] {
			return fmt.Errorf("unknown key %q", key)
		}
	}

	if pluginRaw, ok := generic["plugin"]; ok {
		var pluginGeneric map[string]json.RawMessage
		if err := json.Unmarshal(pluginRaw, &pluginGeneric); err != nil {
			return fmt.Errorf("invalid plugin object: %w", err)
		}

		for key := range pluginGeneric {
			if !knownPluginKeys[key] {
				return fmt.Errorf("unknown key %q in plugin", key)
			}
		}
	}

	if effectsRaw, ok := generic["effects"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(effectsRaw, &items); err != nil {
			return fmt.Errorf("invalid effects array: %w", err)
		}

		for i, item := range items {
			var itemGeneric map[string]json.RawMessage
			if err := json.Unmarshal(item, &itemGeneric); err != nil {
				return fmt.Errorf("invalid effects[%d]: %w", i, err)
			}

			for key := range itemGeneric {
				if !knownEffectKeys[key] {
					return fmt.Errorf("unknown key %q in effects[%d]", key, i)
				}
			}
		}
	}

	return nil
}
