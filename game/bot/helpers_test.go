package bot

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/absm"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/game/physics"
	"github.com/kasuganosora/botbrain/game/scene"
	"github.com/kasuganosora/botbrain/game/weapon"
	"github.com/kasuganosora/botbrain/message"
	"github.com/kasuganosora/botbrain/resource"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	defsOnce sync.Once
	defs     *resource.Definitions
	defsErr  error
)

func sampleDefs(t *testing.T) *resource.Definitions {
	t.Helper()
	defsOnce.Do(func() {
		defs, defsErr = resource.NewLoader("../../data").Load()
	})
	require.NoError(t, defsErr)
	return defs
}

func nop() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

type roster struct {
	order []scene.Handle
	chars map[scene.Handle]*character.Character
	pois  []mgl64.Vec3
}

func (r *roster) Actors() []scene.Handle { return r.order }

func (r *roster) Character(h scene.Handle) (*character.Character, bool) {
	c, ok := r.chars[h]
	return c, ok
}

func (r *roster) PointsOfInterest() []mgl64.Vec3 { return r.pois }

// level is a tiny stand-in for an arena.
type level struct {
	graph  *scene.Graph
	world  *physics.World
	roster *roster
	queue  *message.Queue
}

func newLevel() *level {
	return &level{
		graph:  scene.NewGraph(),
		world:  physics.NewWorld(),
		roster: &roster{chars: make(map[scene.Handle]*character.Character)},
		queue:  &message.Queue{},
	}
}

func (l *level) spawn(name string, kind character.Kind, pos mgl64.Vec3) *character.Character {
	ch := character.New(name, kind, 100)
	ch.Body = l.graph.Add(name, scene.NoNode, pos)
	ch.Model = l.graph.Add(name+"/model", ch.Body, mgl64.Vec3{})
	ch.Spine = l.graph.Add(name+"/spine", ch.Model, mgl64.Vec3{0, 1, 0})
	ch.Capsule = l.world.AddCapsule(pos, 0.35)
	l.roster.order = append(l.roster.order, ch.Body)
	l.roster.chars[ch.Body] = ch
	return ch
}

func (l *level) spawnBot(t *testing.T, archetype string, pos mgl64.Vec3) *Bot {
	t.Helper()
	d := sampleDefs(t)
	arch, ok := d.Archetype(archetype)
	require.True(t, ok)
	ch := l.spawn(archetype, character.KindBot, pos)
	ch.Species = arch.Species
	ch.HitBoxes = arch.HitBoxes
	for _, s := range arch.Inventory {
		require.NoError(t, ch.Inventory.Add(s.Item, s.Count))
	}
	if arch.Weapon != "" {
		ch.AddWeapon(weapon.New(d.Weapons[arch.Weapon]))
	}
	b, err := New(ch, arch, d.Clips, rand.New(rand.NewSource(7)), nop())
	require.NoError(t, err)
	return b
}

func (l *level) env(dt, elapsed float64) Env {
	return Env{
		Scene:   l.graph,
		Physics: l.world,
		Roster:  l.roster,
		Sender:  l.queue,
		Dt:      dt,
		Elapsed: elapsed,
	}
}

// context builds the blackboard the driver would hand to the tree.
func (l *level) context(b *Bot, dt, elapsed float64) *Context {
	return &Context{
		Self:       b.Character.Body,
		Scene:      l.graph,
		Physics:    l.world,
		Roster:     l.roster,
		Sender:     l.queue,
		Agent:      b.agent,
		Animations: b.player,
		Rig:        b.rig,
		Character:  b.Character,
		Archetype:  b.Archetype,
		Rand:       b.rng,
		Dt:         dt,
		Elapsed:    elapsed,
		Memory:     &b.memory,
		Output:     Output{MovementSpeedFactor: 1},
	}
}

func kinds(msgs []message.Message) []message.Kind {
	out := make([]message.Kind, len(msgs))
	for i, m := range msgs {
		out[i] = m.Kind()
	}
	return out
}

func countKind(msgs []message.Message, k message.Kind) int {
	n := 0
	for _, m := range msgs {
		if m.Kind() == k {
			n++
		}
	}
	return n
}

// enterState forces the upper machine into state.
func enterState(t *testing.T, b *Bot, rule string) {
	t.Helper()
	m := b.rig.Upper.Machine
	m.SetParameter(rule, absm.Rule(true))
	m.EvaluatePose(b.player, 1)
	m.SetParameter(rule, absm.Rule(false))
}
