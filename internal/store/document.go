package store

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/regenrek/panestore/internal/layout"
	"github.com/regenrek/panestore/internal/value"
)

// fileDocument is the on-disk shape of the config file.
type fileDocument struct {
	Version     string                    `yaml:"version,omitempty" toml:"version,omitempty"`
	Global      map[string]any            `yaml:"global_config,omitempty" toml:"global_config,omitempty"`
	Profiles    map[string]map[string]any `yaml:"profiles,omitempty" toml:"profiles,omitempty"`
	Keybindings map[string]string         `yaml:"keybindings,omitempty" toml:"keybindings,omitempty"`
	Plugins     map[string]map[string]any `yaml:"plugins,omitempty" toml:"plugins,omitempty"`
	Layouts     map[string]map[string]any `yaml:"layouts,omitempty" toml:"layouts,omitempty"`
}

type format uint8

const (
	formatYAML format = iota
	formatTOML
)

func decodeDocument(data []byte, f format) (fileDocument, error) {
	var doc fileDocument
	var err error
	switch f {
	case formatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	return doc, err
}

func encodeDocument(w io.Writer, doc fileDocument, f format) error {
	switch f {
	case formatTOML:
		return toml.NewEncoder(w).Encode(doc)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	}
}

// diffMap keeps the entries of cur that differ from tmpl. Falsy values are
// dropped unless they override a truthy template value.
func diffMap(cur, tmpl value.Map) map[string]any {
	out := make(map[string]any)
	for k, v := range cur {
		t, has := tmpl[k]
		if has && v.Equal(t) {
			continue
		}
		if v.IsZero() && (!has || t.IsZero()) {
			continue
		}
		out[k] = v.Any()
	}
	return out
}

func diffStrings(cur, tmpl map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range cur {
		t, has := tmpl[k]
		if has && v == t {
			continue
		}
		if v == "" && !has {
			continue
		}
		out[k] = v
	}
	return out
}

// documentLocked builds the persisted document from current state.
func (s *Store) documentLocked() (fileDocument, error) {
	doc := fileDocument{
		Version:     SchemaVersion,
		Global:      diffMap(s.global, s.tmpl.Global),
		Profiles:    make(map[string]map[string]any, len(s.profiles)),
		Keybindings: diffStrings(s.keybindings, s.tmpl.Keybindings),
		Plugins:     make(map[string]map[string]any, len(s.plugins)),
		Layouts:     make(map[string]map[string]any, len(s.layouts)),
	}
	for name, p := range s.profiles {
		doc.Profiles[name] = diffMap(p, s.tmpl.Profile)
	}
	for name, tree := range s.plugins {
		doc.Plugins[name] = tree.ToMap()
	}
	for name, f := range s.layouts {
		raw, err := layout.EncodeFlat(f)
		if err != nil {
			return fileDocument{}, fmt.Errorf("layout %s: %w", name, err)
		}
		doc.Layouts[name] = raw
	}
	return doc, nil
}

// applyLocked replaces in-memory state with the templates overlaid by doc.
// Malformed entries are logged and skipped.
func (s *Store) applyLocked(doc fileDocument) {
	s.resetLocked()

	global, errs := value.FromMap(doc.Global)
	s.logDecodeErrors("global_config", errs)
	for _, k := range global.Keys() {
		tmpl, ok := s.tmpl.Global[k]
		if !ok {
			s.logger.Warn("ignoring unknown global key", slog.String("key", k))
			continue
		}
		v, err := coerce(k, global[k], tmpl)
		if err != nil {
			s.logger.Warn("ignoring global value", slog.String("key", k), slog.Any("err", err))
			continue
		}
		s.global[k] = v
	}

	for _, name := range sortedKeys(doc.Profiles) {
		p := s.tmpl.Profile.Clone()
		raw, errs := value.FromMap(doc.Profiles[name])
		s.logDecodeErrors("profiles."+name, errs)
		for _, k := range raw.Keys() {
			v := raw[k]
			if tmpl, ok := s.tmpl.Profile[k]; ok {
				coerced, err := coerce(k, v, tmpl)
				if err != nil {
					s.logger.Warn("ignoring profile value", slog.String("profile", name), slog.String("key", k), slog.Any("err", err))
					continue
				}
				v = coerced
			}
			p[k] = v
		}
		s.profiles[name] = p
	}

	for k, v := range doc.Keybindings {
		s.keybindings[k] = v
	}

	for _, name := range sortedKeys(doc.Plugins) {
		tree, errs := value.FromMap(doc.Plugins[name])
		s.logDecodeErrors("plugins."+name, errs)
		s.plugins[name] = tree
	}

	for _, name := range sortedKeys(doc.Layouts) {
		f, errs := layout.DecodeFlat(doc.Layouts[name])
		s.logDecodeErrors("layouts."+name, errs)
		if name == layout.DefaultName {
			s.ensureStubLocked(f)
		}
		s.layouts[name] = f
	}

	if _, ok := s.layouts[s.activeLayout]; !ok {
		s.activeLayout = layout.DefaultName
	}
}

func (s *Store) logDecodeErrors(section string, errs []error) {
	for _, err := range errs {
		s.logger.Warn("skipping malformed config entry", slog.String("section", section), slog.Any("err", err))
	}
}
