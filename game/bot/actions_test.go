package bot

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/behavior"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/game/scene"
	"github.com/kasuganosora/botbrain/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTarget_FrustumAndOcclusion(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	behind := l.spawn("behind", character.KindPlayer, mgl64.Vec3{0, 0, -5})
	front := l.spawn("front", character.KindPlayer, mgl64.Vec3{0, 0, 5})

	ctx := l.context(b, 0.1, 0)
	assert.Equal(t, behavior.StatusSuccess, FindTarget{}.Tick(ctx))
	require.NotNil(t, b.memory.Target)
	assert.Equal(t, front.Body, b.memory.Target.Actor)
	assert.NotEqual(t, behind.Body, b.memory.Target.Actor)

	// A wall between the two hides the front player.
	b.memory.Target = nil
	l.world.AddWall(mgl64.Vec3{-3, 0, 2.5}, mgl64.Vec3{3, 0, 2.5}, 0.2)
	ctx = l.context(b, 0.1, 0)
	assert.Equal(t, behavior.StatusRunning, FindTarget{}.Tick(ctx))
	assert.Nil(t, b.memory.Target)
}

func TestFindTarget_Hearing(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	sneaky := l.spawn("sneaky", character.KindPlayer, mgl64.Vec3{0, 0, -1})

	ctx := l.context(b, 0.1, 0)
	assert.Equal(t, behavior.StatusSuccess, FindTarget{}.Tick(ctx))
	require.NotNil(t, b.memory.Target)
	assert.Equal(t, sneaky.Body, b.memory.Target.Actor)
}

func TestFindTarget_Hostility(t *testing.T) {
	l := newLevel()
	soldier := l.spawnBot(t, "soldier", mgl64.Vec3{})
	mate := l.spawn("mate", character.KindBot, mgl64.Vec3{0, 0, 3})
	mate.Species = "human"

	ctx := l.context(soldier, 0.1, 0)
	assert.Equal(t, behavior.StatusRunning, FindTarget{}.Tick(ctx), "same species is not hostile")

	zombie := l.spawnBot(t, "zombie", mgl64.Vec3{0, 0, 6})
	ctx = l.context(soldier, 0.1, 0)
	assert.Equal(t, behavior.StatusSuccess, FindTarget{}.Tick(ctx))
	assert.Equal(t, zombie.Handle(), soldier.memory.Target.Actor)

	// Zombies only hunt players.
	l.roster.pois = []mgl64.Vec3{{0, 0, 20}}
	ctx = l.context(zombie, 0.1, 0)
	assert.Equal(t, behavior.StatusSuccess, FindTarget{}.Tick(ctx), "falls back to a point of interest")
	assert.Equal(t, scene.NoNode, zombie.memory.Target.Actor)
}

func TestFindTarget_KeepsTrackedTarget(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	p := l.spawn("runner", character.KindPlayer, mgl64.Vec3{0, 0, 5})

	require.Equal(t, behavior.StatusSuccess, FindTarget{}.Tick(l.context(b, 0.1, 0)))

	// Out of sight but still tracked: the position follows the actor.
	l.graph.SetPosition(p.Body, mgl64.Vec3{0, 0, -8})
	require.Equal(t, behavior.StatusSuccess, FindTarget{}.Tick(l.context(b, 0.1, 0)))
	assert.Equal(t, mgl64.Vec3{0, 0, -8}, b.memory.Target.Position)

	p.Health = 0
	assert.Equal(t, behavior.StatusRunning, FindTarget{}.Tick(l.context(b, 0.1, 0)))
	assert.Nil(t, b.memory.Target)
}

func TestFindTarget_PointOfInterest(t *testing.T) {
	l := newLevel()
	l.roster.pois = []mgl64.Vec3{{10, 0, 10}, {2, 0, 0}}
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})

	assert.Equal(t, behavior.StatusSuccess, FindTarget{}.Tick(l.context(b, 0.1, 0)))
	require.NotNil(t, b.memory.Target)
	assert.Equal(t, scene.NoNode, b.memory.Target.Actor)
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, b.memory.Target.Position)

	// Soldiers do not wander to points of interest.
	s := l.spawnBot(t, "soldier", mgl64.Vec3{0, 0, -10})
	l.graph.SetRotation(s.Handle(), mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0}))
	assert.Equal(t, behavior.StatusRunning, FindTarget{}.Tick(l.context(s, 0.1, 0)))
}

func TestMoveToTarget(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	move := &MoveToTarget{MinDistance: 1}

	ctx := l.context(b, 0.1, 0)
	assert.Equal(t, behavior.StatusFailure, move.Tick(ctx), "no target")

	b.memory.Target = &Target{Actor: scene.NoNode, Position: mgl64.Vec3{0, 0, 5}}
	ctx = l.context(b, 0.1, 0)
	assert.Equal(t, behavior.StatusRunning, move.Tick(ctx))
	assert.True(t, ctx.Output.IsMoving)
	v := l.graph.LinearVelocity(b.Handle())
	assert.InDelta(t, b.Archetype.WalkSpeed, v.Z(), 1e-9)
	assert.InDelta(t, 0, v.X(), 1e-9)

	// A hit leg slows the walk down.
	b.Character.Damage(1, "left_leg")
	ctx = l.context(b, 0.1, 0)
	move.Tick(ctx)
	assert.InDelta(t, 0.4, ctx.Output.MovementSpeedFactor, 1e-9)
	assert.InDelta(t, b.Archetype.WalkSpeed*0.4, l.graph.LinearVelocity(b.Handle()).Z(), 1e-9)

	l.graph.SetPosition(b.Handle(), mgl64.Vec3{0, 0, 4.5})
	ctx = l.context(b, 0.1, 0)
	assert.Equal(t, behavior.StatusSuccess, move.Tick(ctx))
	assert.False(t, ctx.Output.IsMoving)
	assert.Equal(t, mgl64.Vec3{}, l.graph.LinearVelocity(b.Handle()))
}

func TestAimOnTarget_TurnsBody(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	aim := &AimOnTarget{Mode: AimActual}

	assert.Equal(t, behavior.StatusFailure, aim.Tick(l.context(b, 0.1, 0)))

	b.memory.Target = &Target{Actor: scene.NoNode, Position: mgl64.Vec3{5, 0.4, 0}}
	assert.Equal(t, behavior.StatusRunning, aim.Tick(l.context(b, 0.1, 0)), "90 degrees take half a second")

	var status behavior.Status
	for i := 0; i < 10; i++ {
		status = aim.Tick(l.context(b, 0.1, 0))
	}
	assert.Equal(t, behavior.StatusSuccess, status)
	look := l.graph.LookVector(b.Handle())
	assert.InDelta(t, 1, look.X(), 1e-3)
	assert.InDelta(t, 0, look.Z(), 1e-3)
	assert.InDelta(t, 0, b.memory.SpinePitch, 1e-3)
}

func TestIsTargetCloseBy(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	near := &IsTargetCloseBy{MinDistance: 2}

	assert.Equal(t, behavior.StatusFailure, near.Tick(l.context(b, 0.1, 0)))
	b.memory.Target = &Target{Actor: scene.NoNode, Position: mgl64.Vec3{0, 3, 1.5}}
	assert.Equal(t, behavior.StatusSuccess, near.Tick(l.context(b, 0.1, 0)), "height is ignored")
	b.memory.Target.Position = mgl64.Vec3{0, 0, 3}
	assert.Equal(t, behavior.StatusFailure, near.Tick(l.context(b, 0.1, 0)))
}

func TestShootTarget_NotEnoughAmmo(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "soldier", mgl64.Vec3{})
	target := l.spawn("zed", character.KindBot, mgl64.Vec3{0, 0, 5})
	b.memory.Target = &Target{Actor: target.Body, Position: mgl64.Vec3{0, 0, 5}}

	w := b.Character.CurrentWeapon()
	w.Def.AmmoPerShot = 2
	b.Character.Inventory.Clear()
	require.NoError(t, b.Character.Inventory.Add(w.Def.AmmoItem, 1))
	enterState(t, b, "IdleToAim")
	require.True(t, b.rig.InAimState())

	ctx := l.context(b, 0.1, 1)
	assert.Equal(t, behavior.StatusFailure, CanShootTarget{}.Tick(ctx))
	assert.Equal(t, behavior.StatusFailure, ShootTarget{}.Tick(ctx))
	assert.Equal(t, 1, b.Character.Inventory.Count(w.Def.AmmoItem), "inventory untouched")
	assert.Zero(t, w.Shots())
	assert.Zero(t, l.queue.Len())
}

func TestShootTarget_Fires(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "soldier", mgl64.Vec3{})
	target := l.spawn("zed", character.KindBot, mgl64.Vec3{0, 0, 5})
	b.memory.Target = &Target{Actor: target.Body, Position: mgl64.Vec3{0, 0, 5}}
	w := b.Character.CurrentWeapon()
	ammo := b.Character.Inventory.Count(w.Def.AmmoItem)

	ctx := l.context(b, 0.1, 1)
	assert.Equal(t, behavior.StatusSuccess, CanShootTarget{}.Tick(ctx))
	assert.Equal(t, behavior.StatusRunning, ShootTarget{}.Tick(ctx), "not aimed yet")
	assert.True(t, ctx.Output.IsAiming)

	enterState(t, b, "IdleToAim")
	ctx = l.context(b, 0.1, 1)
	assert.Equal(t, behavior.StatusSuccess, ShootTarget{}.Tick(ctx))
	assert.Equal(t, ammo-w.Def.AmmoPerShot, b.Character.Inventory.Count(w.Def.AmmoItem))
	assert.Equal(t, 1, w.Shots())
	assert.NotZero(t, b.memory.VRecoil.Target)

	msgs := l.queue.Drain()
	assert.Equal(t, []message.Kind{message.KindShootWeapon, message.KindPlaySound}, kinds(msgs))
	shot := msgs[0].(message.ShootWeapon)
	assert.Equal(t, b.Handle(), shot.Shooter)
	assert.Equal(t, mgl64.Vec3{0, 0, 5}, shot.Target)

	ctx = l.context(b, 0.1, 1.1)
	assert.Equal(t, behavior.StatusRunning, ShootTarget{}.Tick(ctx), "cooldown")
}

func TestCanShootTarget_LosesWeaponArm(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "soldier", mgl64.Vec3{})
	b.memory.Target = &Target{Actor: scene.NoNode, Position: mgl64.Vec3{0, 0, 5}}

	b.Character.Sever(character.LimbWeaponArm)
	assert.Equal(t, behavior.StatusFailure, CanShootTarget{}.Tick(l.context(b, 0.1, 0)))
	assert.Nil(t, b.Character.CurrentWeapon())

	msgs := l.queue.Drain()
	require.Len(t, msgs, 1)
	drop := msgs[0].(message.DropItems)
	assert.Equal(t, WeaponItem("glock"), drop.Item)

	assert.Equal(t, behavior.StatusFailure, CanShootTarget{}.Tick(l.context(b, 0.1, 0)))
	assert.Zero(t, l.queue.Len(), "dropped once")
}

func TestCanShootTarget_Restoring(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "soldier", mgl64.Vec3{})
	target := l.spawn("zed", character.KindBot, mgl64.Vec3{0, 0, 5})
	b.memory.Target = &Target{Actor: target.Body, Position: mgl64.Vec3{0, 0, 5}}

	b.OnDamage(l.queue, mgl64.Vec3{})
	assert.Equal(t, behavior.StatusFailure, CanShootTarget{}.Tick(l.context(b, 0.1, 0)))
	assert.Equal(t, behavior.StatusFailure, CanMeleeAttack{}.Tick(l.context(b, 0.1, 0)))
	assert.Equal(t, 1, countKind(l.queue.Drain(), message.KindPlaySound), "pain sound")
}

func TestDoMeleeAttack_HitSignals(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	victim := l.spawn("victim", character.KindPlayer, mgl64.Vec3{0, 0, 1})
	b.memory.Target = &Target{Actor: victim.Body, Position: mgl64.Vec3{0, 0, 1}}
	attack := &DoMeleeAttack{}

	ctx := l.context(b, 0.1, 0)
	assert.Equal(t, behavior.StatusSuccess, attack.Tick(ctx))
	assert.True(t, ctx.Output.IsAttacking)

	// Both variants cross their Hit signal.
	for _, h := range b.rig.Attacks {
		b.player.Play(h)
	}
	b.player.Update(0.5)

	ctx = l.context(b, 0.1, 0)
	assert.Equal(t, behavior.StatusSuccess, attack.Tick(ctx))
	assert.False(t, ctx.Output.IsAttacking, "waits out the timeout")

	var amounts []float64
	for _, m := range l.queue.Drain() {
		if d, ok := m.(message.DamageActor); ok {
			assert.Equal(t, victim.Body, d.Actor)
			assert.Equal(t, b.Handle(), d.Attacker)
			amounts = append(amounts, d.Amount)
		}
	}
	assert.ElementsMatch(t, []float64{20, 30}, amounts)
}

func TestDoMeleeAttack_OutOfReach(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	victim := l.spawn("victim", character.KindPlayer, mgl64.Vec3{0, 0, 5})
	b.memory.Target = &Target{Actor: victim.Body, Position: mgl64.Vec3{0, 0, 5}}

	for _, h := range b.rig.Attacks {
		b.player.Play(h)
	}
	b.player.Update(0.5)
	(&DoMeleeAttack{}).Tick(l.context(b, 0.1, 0))
	assert.Zero(t, countKind(l.queue.Drain(), message.KindDamageActor))
}

func TestThreatenTarget(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	victim := l.spawn("victim", character.KindPlayer, mgl64.Vec3{0, 0, 3})
	b.memory.Target = &Target{Actor: victim.Body, Position: mgl64.Vec3{0, 0, 3}}
	threaten := &ThreatenTarget{}

	assert.Equal(t, behavior.StatusSuccess, NeedsThreatenTarget{}.Tick(l.context(b, 0.1, 0)))

	ctx := l.context(b, 0.1, 0)
	assert.Equal(t, behavior.StatusRunning, threaten.Tick(ctx))
	assert.True(t, ctx.Output.IsScreaming)
	assert.Equal(t, 1, countKind(l.queue.Drain(), message.KindPlaySound))

	b.player.Update(2)
	ctx = l.context(b, 0.1, 0)
	assert.Equal(t, behavior.StatusSuccess, threaten.Tick(ctx))
	assert.False(t, ctx.Output.IsScreaming)
	assert.GreaterOrEqual(t, b.memory.ThreatenTimeout, threatenMin)
	assert.LessOrEqual(t, b.memory.ThreatenTimeout, threatenMax)
	assert.Equal(t, behavior.StatusFailure, NeedsThreatenTarget{}.Tick(l.context(b, 0.1, 0)))
}

func TestStayDead_DropsOnce(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "soldier", mgl64.Vec3{})
	l.graph.SetLinearVelocity(b.Handle(), mgl64.Vec3{1, 0, 1})
	stay := &StayDead{}

	assert.Equal(t, behavior.StatusFailure, IsDead{}.Tick(l.context(b, 0.1, 0)))
	b.Character.Health = 0
	assert.Equal(t, behavior.StatusSuccess, IsDead{}.Tick(l.context(b, 0.1, 0)))

	assert.Equal(t, behavior.StatusSuccess, stay.Tick(l.context(b, 0.1, 0)))
	assert.Equal(t, behavior.StatusSuccess, stay.Tick(l.context(b, 0.1, 0)))
	assert.Equal(t, mgl64.Vec3{}, l.graph.LinearVelocity(b.Handle()))
	for _, h := range b.rig.Dying {
		assert.True(t, b.player.Get(h).Enabled())
	}

	msgs := l.queue.Drain()
	require.Len(t, msgs, 2, "ammo stack plus the weapon")
	assert.Equal(t, 2, countKind(msgs, message.KindDropItems))
	assert.Empty(t, b.Character.Inventory.Items())
}
