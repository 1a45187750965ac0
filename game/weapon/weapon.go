// Package weapon holds ranged weapon tuning and fire-rate bookkeeping.
package weapon

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/item"
)

// Definition is the per-kind tuning of a weapon.
type Definition struct {
	Name             string     `yaml:"name"`
	ShootInterval    float64    `yaml:"shoot_interval"`
	AmmoItem         item.ID    `yaml:"ammo_item"`
	AmmoPerShot      int        `yaml:"ammo_per_shot"`
	VerticalRecoil   [2]float64 `yaml:"vertical_recoil"`
	HorizontalRecoil [2]float64 `yaml:"horizontal_recoil"`
	Damage           float64    `yaml:"damage"`
	Range            float64    `yaml:"range"`
	ShotSound        string     `yaml:"shot_sound"`
}

// WithDefaults fills zero fields with the stock values.
func (d Definition) WithDefaults() Definition {
	if d.ShootInterval <= 0 {
		d.ShootInterval = 0.15
	}
	if d.AmmoPerShot <= 0 {
		d.AmmoPerShot = 2
	}
	if d.VerticalRecoil == [2]float64{} {
		d.VerticalRecoil = [2]float64{-2, 4}
	}
	if d.HorizontalRecoil == [2]float64{} {
		d.HorizontalRecoil = [2]float64{-1, 1}
	}
	if d.Range <= 0 {
		d.Range = 50
	}
	if d.Damage <= 0 {
		d.Damage = 10
	}
	return d
}

// Weapon is one carried instance.
type Weapon struct {
	Def Definition

	lastShot float64
	fired    bool
	shots    int
}

// New returns a weapon with defaults applied to def.
func New(def Definition) *Weapon {
	return &Weapon{Def: def.WithDefaults()}
}

// CanShoot reports whether the fire interval has elapsed at time elapsed.
func (w *Weapon) CanShoot(elapsed float64) bool {
	return !w.fired || elapsed-w.lastShot >= w.Def.ShootInterval
}

// Shoot records a shot at time elapsed.
func (w *Weapon) Shoot(elapsed float64) {
	w.lastShot = elapsed
	w.fired = true
	w.shots++
}

// Shots returns the number of shots fired.
func (w *Weapon) Shots() int { return w.shots }

// Recoil draws vertical and horizontal recoil angles in radians.
func (w *Weapon) Recoil(rng *rand.Rand) (vertical, horizontal float64) {
	pick := func(r [2]float64) float64 {
		lo, hi := r[0], r[1]
		if hi < lo {
			lo, hi = hi, lo
		}
		return mgl64.DegToRad(lo + rng.Float64()*(hi-lo))
	}
	return pick(w.Def.VerticalRecoil), pick(w.Def.HorizontalRecoil)
}
