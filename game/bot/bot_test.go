package bot

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/absm"
	"github.com/kasuganosora/botbrain/game/anim"
	"github.com/kasuganosora/botbrain/game/behavior"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/message"
	"github.com/kasuganosora/botbrain/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateName(m *absm.Machine) string {
	s, _ := m.State(m.ActiveState())
	return s.Name
}

func TestCompileBindings(t *testing.T) {
	b, err := CompileBindings(map[string]string{
		"Run":   "walk && !dead",
		"Index": "attack_index",
		"Speed": "movement_speed_factor * 2",
		"Neg":   "attack_index - 5",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, b.Len())

	l := newLevel()
	bot := l.spawnBot(t, "zombie", mgl64.Vec3{})
	m := bot.rig.Upper.Machine
	require.NoError(t, b.Apply(m, Inputs{Walk: true, AttackIndex: 1, MovementSpeedFactor: 0.5}))

	assert.True(t, m.Parameter("Run").RuleValue())
	assert.Equal(t, uint32(1), m.Parameter("Index").IndexValue())
	assert.InDelta(t, 1.0, m.Parameter("Speed").WeightValue(), 1e-9)
	assert.Equal(t, uint32(0), m.Parameter("Neg").IndexValue(), "negative indices clamp")

	require.NoError(t, b.Apply(m, Inputs{Walk: true, Dead: true}))
	assert.False(t, m.Parameter("Run").RuleValue())
}

func TestCompileBindings_Errors(t *testing.T) {
	for name, src := range map[string]string{
		"syntax":  "walk &&",
		"unknown": "running",
		"string":  `"walk"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := CompileBindings(map[string]string{"P": src})
			assert.True(t, errors.Is(err, ErrBinding), "got %v", err)
		})
	}
}

func TestNewRig_SampleArchetypes(t *testing.T) {
	d := sampleDefs(t)

	zombie, _ := d.Archetype("zombie")
	player := anim.NewPlayer()
	r, err := NewRig(zombie, d.Clips, player)
	require.NoError(t, err)
	assert.Equal(t, absm.NoState, r.AimState)
	assert.NotEqual(t, absm.NoState, r.AttackState)
	assert.Len(t, r.Attacks, 2)
	assert.Len(t, r.Scream, 2, "one instance per layer")
	assert.Len(t, r.Dying, 2)
	assert.InDelta(t, 1.2, player.Get(r.Attacks[0]).Speed(), 1e-9)
	for _, h := range r.Attacks {
		assert.False(t, player.Get(h).Enabled())
	}
	lw, _ := r.Lower.Clip("walk")
	uw, _ := r.Upper.Clip("walk")
	assert.NotEqual(t, lw, uw)
	assert.True(t, r.Upper.Mask["hips"])
	assert.False(t, r.InAimState())

	soldier, _ := d.Archetype("soldier")
	r, err = NewRig(soldier, d.Clips, anim.NewPlayer())
	require.NoError(t, err)
	assert.NotEqual(t, absm.NoState, r.AimState)
}

func TestNewRig_Errors(t *testing.T) {
	d := sampleDefs(t)
	zombie, _ := d.Archetype("zombie")

	noUpper := *zombie
	noUpper.Layers = map[string]*resource.LayerDef{resource.LayerLower: zombie.Layers[resource.LayerLower]}
	_, err := NewRig(&noUpper, d.Clips, anim.NewPlayer())
	assert.ErrorIs(t, err, ErrMissingLayer)

	badRole := *zombie
	badRole.Roles.AimState = "nowhere"
	_, err = NewRig(&badRole, d.Clips, anim.NewPlayer())
	assert.ErrorIs(t, err, ErrUnknownState)

	_, err = NewRig(zombie, map[string]*anim.Clip{}, anim.NewPlayer())
	assert.ErrorIs(t, err, ErrUnknownClip)
}

func TestBuildTree(t *testing.T) {
	with, err := BuildTree(1.2, true)
	require.NoError(t, err)
	without, err := BuildTree(1.2, false)
	require.NoError(t, err)
	assert.Equal(t, 4, with.Len()-without.Len(), "threaten branch")

	root, ok := with.Action(with.Entry())
	assert.False(t, ok, "root is a composite")
	assert.Nil(t, root)
}

func TestBot_HuntsVisiblePlayer(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	l.spawn("alice", character.KindPlayer, mgl64.Vec3{0, 0, 5})

	const dt = 0.1
	elapsed := 0.0
	step := func() {
		elapsed += dt
		b.Update(l.env(dt, elapsed))
		l.graph.Integrate(dt)
	}

	step()
	require.NotNil(t, b.Memory().Target)
	assert.True(t, b.Output().IsScreaming, "screams before the first attack")
	assert.Equal(t, behavior.StatusRunning, b.Status())

	for i := 0; i < 40; i++ {
		step()
	}
	assert.False(t, b.Output().IsScreaming)
	assert.True(t, b.Output().IsMoving)
	assert.Equal(t, "walk", stateName(b.Rig().Lower.Machine))
	assert.Greater(t, l.graph.Position(b.Handle()).Z(), 1.0)
	assert.Positive(t, b.Memory().ThreatenTimeout)
	assert.Zero(t, countKind(l.queue.Drain(), message.KindDamageActor))
}

func TestBot_DeathPreemptsEverything(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	l.spawn("alice", character.KindPlayer, mgl64.Vec3{0, 0, 1})
	b.Character.Health = 0

	for i := 0; i < 5; i++ {
		b.Update(l.env(0.1, float64(i)*0.1))
		assert.Equal(t, behavior.StatusSuccess, b.Status())
		assert.Nil(t, b.Memory().Target)
		assert.Equal(t, Output{MovementSpeedFactor: 1}, b.Output())
	}
	assert.Equal(t, "dying", stateName(b.Rig().Lower.Machine))
	assert.Equal(t, "dying", stateName(b.Rig().Upper.Machine))

	msgs := l.queue.Drain()
	assert.Equal(t, []message.Kind{message.KindDropItems}, kinds(msgs), "only the loot drop, once")
	assert.Equal(t, message.DropItems{Actor: b.Handle(), Item: "medkit", Count: 1, Position: mgl64.Vec3{}}, msgs[0])
}

func TestBot_Despawn(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	b.Character.Health = 0

	b.Update(l.env(b.Archetype.DespawnTimeout+1, 0))
	assert.True(t, b.Removed())
	b.Update(l.env(1, 1))
	assert.Equal(t, 1, countKind(l.queue.Drain(), message.KindRemoveActor))
}

func TestBot_WasHitInput(t *testing.T) {
	l := newLevel()
	b := l.spawnBot(t, "zombie", mgl64.Vec3{})
	assert.False(t, b.inputs().WasHit)

	b.OnDamage(l.queue, mgl64.Vec3{})
	assert.True(t, b.inputs().WasHit)

	b.Character.Sever(character.LimbLeftLeg)
	assert.Equal(t, 1, b.inputs().MovementType, "crawls without a leg")
}
