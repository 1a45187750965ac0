// Package resource loads the YAML definitions a match is built from: clips,
// weapons, bot archetypes and levels.
package resource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kasuganosora/botbrain/game/anim"
	"github.com/kasuganosora/botbrain/game/weapon"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid definition")
)

// Sub-directories of a definitions directory.
const (
	DirClips      = "clips"
	DirWeapons    = "weapons"
	DirArchetypes = "archetypes"
	DirLevels     = "levels"
)

// Loader reads a definitions directory.
type Loader struct {
	Dir string
}

// NewLoader creates a Loader for dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Load reads and validates every definition. It never returns a partially
// valid set.
func (l *Loader) Load() (*Definitions, error) {
	defs := &Definitions{
		Dir:        l.Dir,
		Clips:      make(map[string]*anim.Clip),
		Weapons:    make(map[string]weapon.Definition),
		Archetypes: make(map[string]*Archetype),
		Levels:     make(map[string]*Level),
	}
	loaders := []func(*Definitions) error{
		l.loadClips,
		l.loadWeapons,
		l.loadArchetypes,
		l.loadLevels,
	}
	for _, fn := range loaders {
		if err := fn(defs); err != nil {
			return nil, err
		}
	}
	if err := Validate(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (l *Loader) path(sub string) string {
	return filepath.Join(l.Dir, sub)
}

// loadYAMLDir decodes every *.yaml / *.yml file of dir in name order. A
// missing directory yields nothing.
func loadYAMLDir[T any](dir string, fn func(name string, v *T) error) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resource: read %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, n := range names {
		path := filepath.Join(dir, n)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("resource: read %s: %w", path, err)
		}
		v := new(T)
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("resource: parse %s: %w", path, err)
		}
		if err := fn(strings.TrimSuffix(n, filepath.Ext(n)), v); err != nil {
			return fmt.Errorf("resource: %s: %w", path, err)
		}
	}
	return nil
}

func (l *Loader) loadClips(defs *Definitions) error {
	return loadYAMLDir(l.path(DirClips), func(base string, d *ClipDef) error {
		if d.Name == "" {
			d.Name = base
		}
		if _, dup := defs.Clips[d.Name]; dup {
			return fmt.Errorf("%w: duplicate clip %q", ErrInvalid, d.Name)
		}
		if d.Length < 0 {
			return fmt.Errorf("%w: clip %q has negative length", ErrInvalid, d.Name)
		}
		defs.Clips[d.Name] = d.Clip()
		return nil
	})
}

func (l *Loader) loadWeapons(defs *Definitions) error {
	return loadYAMLDir(l.path(DirWeapons), func(base string, d *weapon.Definition) error {
		if d.Name == "" {
			d.Name = base
		}
		if _, dup := defs.Weapons[d.Name]; dup {
			return fmt.Errorf("%w: duplicate weapon %q", ErrInvalid, d.Name)
		}
		defs.Weapons[d.Name] = d.WithDefaults()
		return nil
	})
}

func (l *Loader) loadArchetypes(defs *Definitions) error {
	return loadYAMLDir(l.path(DirArchetypes), func(base string, a *Archetype) error {
		if a.Name == "" {
			a.Name = base
		}
		if _, dup := defs.Archetypes[a.Name]; dup {
			return fmt.Errorf("%w: duplicate archetype %q", ErrInvalid, a.Name)
		}
		a.applyDefaults()
		defs.Archetypes[a.Name] = a
		return nil
	})
}

func (l *Loader) loadLevels(defs *Definitions) error {
	return loadYAMLDir(l.path(DirLevels), func(base string, lv *Level) error {
		if lv.Name == "" {
			lv.Name = base
		}
		if _, dup := defs.Levels[lv.Name]; dup {
			return fmt.Errorf("%w: duplicate level %q", ErrInvalid, lv.Name)
		}
		if lv.PlayerHealth <= 0 {
			lv.PlayerHealth = 100
		}
		defs.Levels[lv.Name] = lv
		return nil
	})
}
