// Package character holds the state shared by players and bots: health,
// hit boxes, limbs, inventory and weapons.
package character

import (
	"github.com/kasuganosora/botbrain/game/item"
	"github.com/kasuganosora/botbrain/game/physics"
	"github.com/kasuganosora/botbrain/game/scene"
	"github.com/kasuganosora/botbrain/game/weapon"
)

// Kind tells players and bots apart for hostility checks.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindBot
)

func (k Kind) String() string {
	if k == KindBot {
		return "bot"
	}
	return "player"
}

// Limb names a body part that can be severed.
type Limb string

const (
	LimbWeaponArm Limb = "weapon_arm"
	LimbLeftLeg   Limb = "left_leg"
	LimbRightLeg  Limb = "right_leg"
)

// knockbackTime is how long a hit slows the character down.
const knockbackTime = 0.5

// HitBox is a damageable region of the body.
type HitBox struct {
	Name                string  `yaml:"name"`
	Limb                Limb    `yaml:"limb"`
	DamageFactor        float64 `yaml:"damage_factor"`
	MovementSpeedFactor float64 `yaml:"movement_speed_factor"`
}

// Character is an actor of the level.
type Character struct {
	Name    string
	Kind    Kind
	Species string

	Body    scene.Handle
	Model   scene.Handle
	Spine   scene.Handle
	Capsule physics.ColliderHandle

	Health    float64
	MaxHealth float64
	Inventory *item.Inventory
	HitBoxes  []HitBox

	weapons   []*weapon.Weapon
	current   int
	knockback map[string]float64
	severed   map[Limb]bool
}

// New returns a character at full health with an empty inventory.
func New(name string, kind Kind, health float64) *Character {
	return &Character{
		Name:      name,
		Kind:      kind,
		Body:      scene.NoNode,
		Model:     scene.NoNode,
		Spine:     scene.NoNode,
		Capsule:   physics.NoCollider,
		Health:    health,
		MaxHealth: health,
		Inventory: item.NewInventory(),
		current:   -1,
		knockback: make(map[string]float64),
		severed:   make(map[Limb]bool),
	}
}

// IsDead reports whether health is exhausted.
func (c *Character) IsDead() bool { return c.Health <= 0 }

// Damage applies amount scaled by the hit box factor and starts its
// knockback. An empty hitbox hits the body as a whole.
func (c *Character) Damage(amount float64, hitbox string) {
	if c.IsDead() {
		return
	}
	factor := 1.0
	for _, hb := range c.HitBoxes {
		if hb.Name == hitbox {
			if hb.DamageFactor > 0 {
				factor = hb.DamageFactor
			}
			c.knockback[hb.Name] = knockbackTime
			break
		}
	}
	c.Health -= amount * factor
}

// Update ticks knockback timers.
func (c *Character) Update(dt float64) {
	for name, left := range c.knockback {
		left -= dt
		if left <= 0 {
			delete(c.knockback, name)
			continue
		}
		c.knockback[name] = left
	}
}

// KnockedBack reports whether any hit box is recovering from a hit.
func (c *Character) KnockedBack() bool { return len(c.knockback) > 0 }

// MovementSpeedFactor is the slowest factor among hit boxes still in
// knockback, or 1.
func (c *Character) MovementSpeedFactor() float64 {
	k := 1.0
	for _, hb := range c.HitBoxes {
		if _, hit := c.knockback[hb.Name]; hit && hb.MovementSpeedFactor > 0 && hb.MovementSpeedFactor < k {
			k = hb.MovementSpeedFactor
		}
	}
	return k
}

// Sever cuts a limb off.
func (c *Character) Sever(l Limb) { c.severed[l] = true }

// IsLimbSevered reports whether l was cut off.
func (c *Character) IsLimbSevered(l Limb) bool { return c.severed[l] }

// HasNoLegs reports whether either leg is gone, forcing a crawl.
func (c *Character) HasNoLegs() bool {
	return c.severed[LimbLeftLeg] || c.severed[LimbRightLeg]
}

// AddWeapon gives the character a weapon and selects it.
func (c *Character) AddWeapon(w *weapon.Weapon) {
	c.weapons = append(c.weapons, w)
	c.current = len(c.weapons) - 1
}

// CurrentWeapon returns the selected weapon or nil.
func (c *Character) CurrentWeapon() *weapon.Weapon {
	if c.current < 0 || c.current >= len(c.weapons) {
		return nil
	}
	return c.weapons[c.current]
}

// DropWeapon removes the selected weapon and returns it.
func (c *Character) DropWeapon() *weapon.Weapon {
	w := c.CurrentWeapon()
	if w == nil {
		return nil
	}
	c.weapons = append(c.weapons[:c.current], c.weapons[c.current+1:]...)
	c.current = len(c.weapons) - 1
	return w
}
