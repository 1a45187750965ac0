package bot

import (
	"github.com/kasuganosora/botbrain/game/behavior"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/game/item"
	"github.com/kasuganosora/botbrain/game/scene"
	"github.com/kasuganosora/botbrain/message"
)

const (
	// meleeTimeout is the pause between two melee attacks.
	meleeTimeout = 0.3
	// meleeReach is added to the close-combat distance when a hit lands.
	meleeReach = 0.5
	hitSignal  = "Hit"
)

// WeaponItem is the pickup id of a dropped weapon.
func WeaponItem(name string) item.ID { return item.ID("weapon/" + name) }

func hasActorTarget(ctx *Context) bool {
	return ctx.Memory.Target != nil && ctx.Memory.Target.Actor != scene.NoNode
}

// CanShootTarget succeeds when the bot holds a weapon with enough ammo for
// one shot and is not staggered. Losing the weapon arm drops the weapon.
type CanShootTarget struct{}

func (CanShootTarget) Tick(ctx *Context) behavior.Status {
	ch := ctx.Character
	w := ch.CurrentWeapon()
	if w == nil {
		return behavior.StatusFailure
	}
	if ch.IsLimbSevered(character.LimbWeaponArm) {
		ch.DropWeapon()
		ctx.Sender.Send(message.DropItems{
			Actor:    ctx.Self,
			Item:     WeaponItem(w.Def.Name),
			Count:    1,
			Position: ctx.Position(),
		})
		return behavior.StatusFailure
	}
	if !hasActorTarget(ctx) || ctx.Memory.RestorationTime > 0 || w.Def.AmmoItem == "" {
		return behavior.StatusFailure
	}
	if ch.Inventory.Count(w.Def.AmmoItem) < w.Def.AmmoPerShot {
		return behavior.StatusFailure
	}
	return behavior.StatusSuccess
}

// ShootTarget aims and fires the current weapon once the upper body is in
// the aim state and the weapon is off cooldown.
type ShootTarget struct{}

func (ShootTarget) Tick(ctx *Context) behavior.Status {
	w := ctx.Character.CurrentWeapon()
	if w == nil || ctx.Memory.Target == nil {
		return behavior.StatusFailure
	}
	ctx.Output.IsAiming = true

	if !w.CanShoot(ctx.Elapsed) || !ctx.Rig.InAimState() {
		return behavior.StatusRunning
	}
	if w.Def.AmmoItem == "" {
		return behavior.StatusFailure
	}
	if ctx.Character.Inventory.TryExtractExactItems(w.Def.AmmoItem, w.Def.AmmoPerShot) == 0 {
		return behavior.StatusFailure
	}

	w.Shoot(ctx.Elapsed)
	v, h := w.Recoil(ctx.Rand)
	ctx.Memory.VRecoil.Target = v
	ctx.Memory.HRecoil.Target = h

	origin := ctx.Head()
	ctx.Sender.Send(message.ShootWeapon{
		Shooter: ctx.Self,
		Origin:  origin,
		Target:  ctx.Memory.Target.Position,
	})
	if w.Def.ShotSound != "" {
		ctx.Sender.Send(message.PlaySound{Sound: w.Def.ShotSound, Position: origin, Gain: 1})
	}
	return behavior.StatusSuccess
}

// CanMeleeAttack succeeds with an actor target once the bot has recovered
// from its last hit.
type CanMeleeAttack struct{}

func (CanMeleeAttack) Tick(ctx *Context) behavior.Status {
	if hasActorTarget(ctx) && ctx.Memory.RestorationTime <= 0 {
		return behavior.StatusSuccess
	}
	return behavior.StatusFailure
}

// DoMeleeAttack starts a random attack variant every meleeTimeout seconds
// of idle upper body and deals damage on the Hit signals of the attack
// clips.
type DoMeleeAttack struct {
	timeout float64
	index   int
}

func (a *DoMeleeAttack) Tick(ctx *Context) behavior.Status {
	attacks := ctx.Archetype.Attacks
	if len(attacks) == 0 || len(ctx.Rig.Attacks) == 0 {
		return behavior.StatusFailure
	}

	if ctx.Rig.InAttackState() {
		a.timeout = meleeTimeout
	} else {
		a.timeout -= ctx.Dt
		if a.timeout <= 0 {
			a.timeout = meleeTimeout
			a.index = ctx.Rand.Intn(len(ctx.Rig.Attacks))
			ctx.Output.IsAttacking = true
		}
	}
	ctx.Output.AttackAnimationIndex = a.index

	for i, h := range ctx.Rig.Attacks {
		for ev, ok := ctx.Animations.PopEvent(h); ok; ev, ok = ctx.Animations.PopEvent(h) {
			if ev.Name != hitSignal {
				continue
			}
			a.hit(ctx, attacks[i].Damage)
		}
	}

	if ctx.Memory.Target == nil {
		return behavior.StatusFailure
	}
	return behavior.StatusSuccess
}

func (a *DoMeleeAttack) hit(ctx *Context, damage float64) {
	if !hasActorTarget(ctx) {
		return
	}
	d, _ := ctx.DistanceToTarget()
	if d > ctx.Archetype.CloseCombatDistance+meleeReach {
		return
	}
	ctx.Sender.Send(message.DamageActor{
		Actor:    ctx.Memory.Target.Actor,
		Attacker: ctx.Self,
		Amount:   damage,
	})
	if s := ctx.pick(ctx.Archetype.Sounds.Attack); s != "" {
		ctx.Sender.Send(message.PlaySound{Sound: s, Position: ctx.Position(), Gain: 1})
	}
}
