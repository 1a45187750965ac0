package resource

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/anim"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/game/item"
	"github.com/kasuganosora/botbrain/game/weapon"
)

// ---- Animation clips ----

// KeyframeDef is one key of a bone track. Rotation is Euler degrees (X, Y, Z).
type KeyframeDef struct {
	Time     float64    `yaml:"time"`
	Position [3]float64 `yaml:"position"`
	Rotation [3]float64 `yaml:"rotation"`
	Scale    [3]float64 `yaml:"scale"`
}

type TrackDef struct {
	Bone string        `yaml:"bone"`
	Keys []KeyframeDef `yaml:"keys"`
}

type SignalDef struct {
	Name string  `yaml:"name"`
	Time float64 `yaml:"time"`
}

// ClipDef is the on-disk form of an anim.Clip.
type ClipDef struct {
	Name    string      `yaml:"name"`
	Length  float64     `yaml:"length"`
	Looping bool        `yaml:"looping"`
	Speed   float64     `yaml:"speed"`
	Tracks  []TrackDef  `yaml:"tracks"`
	Signals []SignalDef `yaml:"signals"`
}

// Clip converts the definition into immutable clip content.
func (d *ClipDef) Clip() *anim.Clip {
	c := &anim.Clip{
		Name:    d.Name,
		Length:  d.Length,
		Looping: d.Looping,
		Speed:   d.Speed,
	}
	for _, td := range d.Tracks {
		tr := anim.Track{Bone: td.Bone}
		for _, k := range td.Keys {
			scale := mgl64.Vec3(k.Scale)
			if scale == (mgl64.Vec3{}) {
				scale = mgl64.Vec3{1, 1, 1}
			}
			tr.Keys = append(tr.Keys, anim.Keyframe{
				Time: k.Time,
				Transform: anim.Transform{
					Position: mgl64.Vec3(k.Position),
					Rotation: mgl64.AnglesToQuat(
						mgl64.DegToRad(k.Rotation[0]),
						mgl64.DegToRad(k.Rotation[1]),
						mgl64.DegToRad(k.Rotation[2]),
						mgl64.XYZ,
					),
					Scale: scale,
				},
			})
		}
		c.Tracks = append(c.Tracks, tr)
	}
	for _, s := range d.Signals {
		c.Signals = append(c.Signals, anim.Signal{Name: s.Name, Time: s.Time})
	}
	return c
}

// ---- Animation layers ----

// BlendInputDef feeds one clip into a blend node.
type BlendInputDef struct {
	Play      string  `yaml:"play"`
	BlendTime float64 `yaml:"blend_time"`
	Weight    string  `yaml:"weight"`
}

// BlendDef describes a BlendByIndex (Parameter set) or BlendByWeight node.
type BlendDef struct {
	Parameter string          `yaml:"parameter"`
	Inputs    []BlendInputDef `yaml:"inputs"`
}

// StateDef is one machine state. Exactly one of Play, BlendByIndex and
// BlendByWeight is set.
type StateDef struct {
	Name          string    `yaml:"name"`
	Play          string    `yaml:"play"`
	BlendByIndex  *BlendDef `yaml:"blend_by_index"`
	BlendByWeight *BlendDef `yaml:"blend_by_weight"`
}

type TransitionDef struct {
	Name     string  `yaml:"name"`
	From     string  `yaml:"from"`
	To       string  `yaml:"to"`
	Duration float64 `yaml:"duration"`
	Rule     string  `yaml:"rule"`
}

// LayerDef is an animation state machine plus the expressions that derive
// its parameters from the bot's per-frame outputs.
type LayerDef struct {
	Entry       string            `yaml:"entry"`
	Mask        []string          `yaml:"mask"`
	States      []StateDef        `yaml:"states"`
	Transitions []TransitionDef   `yaml:"transitions"`
	Bindings    map[string]string `yaml:"bindings"`
}

// Clips returns every clip name the layer plays, in declaration order.
func (l *LayerDef) Clips() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, s := range l.States {
		add(s.Play)
		for _, b := range []*BlendDef{s.BlendByIndex, s.BlendByWeight} {
			if b == nil {
				continue
			}
			for _, in := range b.Inputs {
				add(in.Play)
			}
		}
	}
	return out
}

// ---- Archetypes ----

// Hostility selects which actors a bot treats as targets.
type Hostility string

const (
	HostileEveryone     Hostility = "everyone"
	HostileOtherSpecies Hostility = "other_species"
	HostilePlayer       Hostility = "player"
)

// AttackDef is one melee variant.
type AttackDef struct {
	Clip   string  `yaml:"clip"`
	Damage float64 `yaml:"damage"`
	Speed  float64 `yaml:"speed"`
}

// RolesDef names the states and clips the behaviors drive directly.
type RolesDef struct {
	AimState    string `yaml:"aim_state"`
	AttackState string `yaml:"attack_state"`
	Scream      string `yaml:"scream"`
	Dying       string `yaml:"dying"`
}

type SoundsDef struct {
	Pain     []string `yaml:"pain"`
	Scream   []string `yaml:"scream"`
	Attack   []string `yaml:"attack"`
	Footstep []string `yaml:"footstep"`
}

// Archetype is the full definition of a kind of bot.
type Archetype struct {
	Name                string               `yaml:"name"`
	Species             string               `yaml:"species"`
	Health              float64              `yaml:"health"`
	WalkSpeed           float64              `yaml:"walk_speed"`
	CloseCombatDistance float64              `yaml:"close_combat_distance"`
	Hostility           Hostility            `yaml:"hostility"`
	VAimAngleHack       float64              `yaml:"v_aim_angle_hack"`
	CapsuleRadius       float64              `yaml:"capsule_radius"`
	DespawnTimeout      float64              `yaml:"despawn_timeout"`
	UsePOI              bool                 `yaml:"use_points_of_interest"`
	Threatens           bool                 `yaml:"threatens"`
	Weapon              string               `yaml:"weapon"`
	Inventory           []item.Stack         `yaml:"inventory"`
	HitBoxes            []character.HitBox   `yaml:"hit_boxes"`
	Attacks             []AttackDef          `yaml:"attacks"`
	Roles               RolesDef             `yaml:"roles"`
	Sounds              SoundsDef            `yaml:"sounds"`
	Layers              map[string]*LayerDef `yaml:"layers"`
}

const (
	LayerLower = "lower"
	LayerUpper = "upper"
)

func (a *Archetype) applyDefaults() {
	if a.Health <= 0 {
		a.Health = 100
	}
	if a.WalkSpeed <= 0 {
		a.WalkSpeed = 1.2
	}
	if a.CloseCombatDistance <= 0 {
		a.CloseCombatDistance = 1.2
	}
	if a.Hostility == "" {
		a.Hostility = HostilePlayer
	}
	if a.CapsuleRadius <= 0 {
		a.CapsuleRadius = 0.35
	}
	if a.DespawnTimeout <= 0 {
		a.DespawnTimeout = 30
	}
	for i := range a.HitBoxes {
		if a.HitBoxes[i].DamageFactor == 0 {
			a.HitBoxes[i].DamageFactor = 1
		}
		if a.HitBoxes[i].MovementSpeedFactor == 0 {
			a.HitBoxes[i].MovementSpeedFactor = 1
		}
	}
	for i := range a.Attacks {
		if a.Attacks[i].Speed <= 0 {
			a.Attacks[i].Speed = 1
		}
	}
}

// ---- Levels ----

type WallDef struct {
	From      [3]float64 `yaml:"from"`
	To        [3]float64 `yaml:"to"`
	Thickness float64    `yaml:"thickness"`
}

type SpawnDef struct {
	Archetype string     `yaml:"archetype"`
	Player    string     `yaml:"player"`
	Position  [3]float64 `yaml:"position"`
	Yaw       float64    `yaml:"yaw"`
	Count     int        `yaml:"count"`
}

type GridDef struct {
	Width    int        `yaml:"width"`
	Depth    int        `yaml:"depth"`
	CellSize float64    `yaml:"cell_size"`
	Origin   [3]float64 `yaml:"origin"`
}

// Level is an arena layout.
type Level struct {
	Name             string       `yaml:"name"`
	Grid             *GridDef     `yaml:"grid"`
	Walls            []WallDef    `yaml:"walls"`
	Spawns           []SpawnDef   `yaml:"spawns"`
	PointsOfInterest [][3]float64 `yaml:"points_of_interest"`
	PlayerHealth     float64      `yaml:"player_health"`
}

// ---- Definitions ----

// Definitions is everything read from a definitions directory.
type Definitions struct {
	Dir        string
	Clips      map[string]*anim.Clip
	Weapons    map[string]weapon.Definition
	Archetypes map[string]*Archetype
	Levels     map[string]*Level
}

// Archetype returns the archetype called name.
func (d *Definitions) Archetype(name string) (*Archetype, bool) {
	a, ok := d.Archetypes[name]
	return a, ok
}

// Level returns the level called name.
func (d *Definitions) Level(name string) (*Level, bool) {
	l, ok := d.Levels[name]
	return l, ok
}

// Vec converts a YAML triple.
func Vec(v [3]float64) mgl64.Vec3 { return mgl64.Vec3(v) }
