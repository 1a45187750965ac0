package resource

import (
	"fmt"
	"sort"
)

// Validate checks every cross reference of defs.
func Validate(defs *Definitions) error {
	for _, name := range sortedKeys(defs.Archetypes) {
		if err := validateArchetype(defs, defs.Archetypes[name]); err != nil {
			return fmt.Errorf("resource: archetype %q: %w", name, err)
		}
	}
	for _, name := range sortedKeys(defs.Levels) {
		if err := validateLevel(defs, defs.Levels[name]); err != nil {
			return fmt.Errorf("resource: level %q: %w", name, err)
		}
	}
	return nil
}

func validateArchetype(defs *Definitions, a *Archetype) error {
	if a.Weapon != "" {
		if _, ok := defs.Weapons[a.Weapon]; !ok {
			return fmt.Errorf("%w: weapon %q", ErrNotFound, a.Weapon)
		}
	}
	for _, name := range []string{LayerLower, LayerUpper} {
		layer, ok := a.Layers[name]
		if !ok || layer == nil {
			return fmt.Errorf("%w: missing %s layer", ErrInvalid, name)
		}
		if err := validateLayer(defs, layer); err != nil {
			return fmt.Errorf("%s layer: %w", name, err)
		}
	}
	upper := a.Layers[LayerUpper]
	for _, st := range []string{a.Roles.AimState, a.Roles.AttackState} {
		if st != "" && !hasState(upper, st) {
			return fmt.Errorf("%w: upper state %q", ErrNotFound, st)
		}
	}
	for _, clip := range []string{a.Roles.Scream, a.Roles.Dying} {
		if clip == "" {
			continue
		}
		if _, ok := defs.Clips[clip]; !ok {
			return fmt.Errorf("%w: role clip %q", ErrNotFound, clip)
		}
	}
	if a.Threatens && a.Roles.Scream == "" {
		return fmt.Errorf("%w: threatening archetype needs a scream clip", ErrInvalid)
	}
	if len(a.Attacks) == 0 {
		return fmt.Errorf("%w: at least one attack is required", ErrInvalid)
	}
	for _, at := range a.Attacks {
		if _, ok := defs.Clips[at.Clip]; !ok {
			return fmt.Errorf("%w: attack clip %q", ErrNotFound, at.Clip)
		}
	}
	for _, hb := range a.HitBoxes {
		if hb.Name == "" {
			return fmt.Errorf("%w: unnamed hit box", ErrInvalid)
		}
	}
	return nil
}

func validateLayer(defs *Definitions, l *LayerDef) error {
	if len(l.States) == 0 {
		return fmt.Errorf("%w: no states", ErrInvalid)
	}
	names := make(map[string]bool, len(l.States))
	for _, s := range l.States {
		if names[s.Name] {
			return fmt.Errorf("%w: duplicate state %q", ErrInvalid, s.Name)
		}
		names[s.Name] = true
		set := 0
		if s.Play != "" {
			set++
		}
		if s.BlendByIndex != nil {
			set++
			if s.BlendByIndex.Parameter == "" {
				return fmt.Errorf("%w: state %q: blend by index needs a parameter", ErrInvalid, s.Name)
			}
		}
		if s.BlendByWeight != nil {
			set++
			for _, in := range s.BlendByWeight.Inputs {
				if in.Weight == "" {
					return fmt.Errorf("%w: state %q: weight input %q needs a parameter", ErrInvalid, s.Name, in.Play)
				}
			}
		}
		if set != 1 {
			return fmt.Errorf("%w: state %q must have exactly one pose source", ErrInvalid, s.Name)
		}
	}
	for _, clip := range l.Clips() {
		if _, ok := defs.Clips[clip]; !ok {
			return fmt.Errorf("%w: clip %q", ErrNotFound, clip)
		}
	}
	if l.Entry != "" && !names[l.Entry] {
		return fmt.Errorf("%w: entry state %q", ErrNotFound, l.Entry)
	}
	for _, t := range l.Transitions {
		if !names[t.From] || !names[t.To] {
			return fmt.Errorf("%w: transition %q references unknown state", ErrNotFound, t.Name)
		}
		if t.Duration < 0 {
			return fmt.Errorf("%w: transition %q has negative duration", ErrInvalid, t.Name)
		}
		if t.Rule == "" {
			return fmt.Errorf("%w: transition %q has no rule", ErrInvalid, t.Name)
		}
	}
	return nil
}

func validateLevel(defs *Definitions, lv *Level) error {
	if lv.Grid != nil && (lv.Grid.Width <= 0 || lv.Grid.Depth <= 0) {
		return fmt.Errorf("%w: grid size %dx%d", ErrInvalid, lv.Grid.Width, lv.Grid.Depth)
	}
	for i, s := range lv.Spawns {
		switch {
		case s.Archetype != "" && s.Player != "":
			return fmt.Errorf("%w: spawn %d is both a bot and a player", ErrInvalid, i)
		case s.Archetype != "":
			if _, ok := defs.Archetypes[s.Archetype]; !ok {
				return fmt.Errorf("%w: spawn %d archetype %q", ErrNotFound, i, s.Archetype)
			}
		case s.Player == "":
			return fmt.Errorf("%w: spawn %d names neither a bot nor a player", ErrInvalid, i)
		}
	}
	return nil
}

func hasState(l *LayerDef, name string) bool {
	for _, s := range l.States {
		if s.Name == name {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
