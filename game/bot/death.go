package bot

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/behavior"
	"github.com/kasuganosora/botbrain/message"
)

// IsDead succeeds once health is exhausted.
type IsDead struct{}

func (IsDead) Tick(ctx *Context) behavior.Status {
	if ctx.Character.IsDead() {
		return behavior.StatusSuccess
	}
	return behavior.StatusFailure
}

// StayDead plays the dying clips, freezes the body and drops everything the
// bot carried, once.
type StayDead struct {
	dropped bool
}

func (a *StayDead) Tick(ctx *Context) behavior.Status {
	for _, h := range ctx.Rig.Attacks {
		ctx.Animations.SetEnabled(h, false)
	}
	for _, h := range ctx.Rig.Dying {
		ctx.Animations.SetEnabled(h, true)
	}
	ctx.Scene.SetLinearVelocity(ctx.Character.Body, mgl64.Vec3{})
	ctx.Memory.Target = nil

	if !a.dropped {
		a.dropped = true
		pos := ctx.Position()
		for _, s := range ctx.Character.Inventory.Clear() {
			ctx.Sender.Send(message.DropItems{Actor: ctx.Self, Item: s.Item, Count: s.Count, Position: pos})
		}
		if w := ctx.Character.DropWeapon(); w != nil {
			ctx.Sender.Send(message.DropItems{Actor: ctx.Self, Item: WeaponItem(w.Def.Name), Count: 1, Position: pos})
		}
	}
	return behavior.StatusSuccess
}
