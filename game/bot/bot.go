package bot

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/anim"
	"github.com/kasuganosora/botbrain/game/behavior"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/game/geom"
	"github.com/kasuganosora/botbrain/game/nav"
	"github.com/kasuganosora/botbrain/game/scene"
	"github.com/kasuganosora/botbrain/message"
	"github.com/kasuganosora/botbrain/resource"
	"go.uber.org/zap"
)

const (
	// restorationTime is how long a hit keeps the bot from attacking.
	restorationTime = 0.8
	footstepSignal  = "Footstep"
	recoilSpeed     = 20.0
)

// Env is what a bot sees of the level for one frame.
type Env struct {
	Scene   Scene
	Physics Physics
	Roster  Roster
	Sender  message.Sender
	Grid    *nav.Grid
	Dt      float64
	Elapsed float64
}

// Bot is one AI-driven character.
type Bot struct {
	Character *character.Character
	Archetype *resource.Archetype

	tree   *Tree
	rig    *Rig
	player *anim.Player
	agent  *nav.Agent
	rng    *rand.Rand
	logger *zap.Logger

	memory  Memory
	output  Output
	status  behavior.Status
	dead    float64
	removed bool
}

// New builds the animation rig and decision tree of a bot for ch, whose
// scene nodes must already exist.
func New(ch *character.Character, def *resource.Archetype, clips map[string]*anim.Clip, rng *rand.Rand, logger *zap.Logger) (*Bot, error) {
	if ch == nil || def == nil {
		return nil, fmt.Errorf("bot: nil character or archetype")
	}
	player := anim.NewPlayer()
	rig, err := NewRig(def, clips, player)
	if err != nil {
		return nil, err
	}
	tree, err := BuildTree(def.CloseCombatDistance, def.Threatens)
	if err != nil {
		return nil, fmt.Errorf("bot: tree: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	b := &Bot{
		Character: ch,
		Archetype: def,
		tree:      tree,
		rig:       rig,
		player:    player,
		agent:     nav.NewAgent(mgl64.Vec3{}),
		rng:       rng,
		logger:    logger.With(zap.String("bot", ch.Name), zap.String("archetype", def.Name)),
		output:    Output{MovementSpeedFactor: 1},
		status:    behavior.StatusRunning,
	}
	b.memory.VRecoil.Speed = recoilSpeed
	b.memory.HRecoil.Speed = recoilSpeed
	return b, nil
}

// Handle is the body node that identifies the bot in the level.
func (b *Bot) Handle() scene.Handle { return b.Character.Body }

// Rig returns the animation layers.
func (b *Bot) Rig() *Rig { return b.rig }

// Animations returns the animation player.
func (b *Bot) Animations() *anim.Player { return b.player }

// Memory returns the persistent blackboard.
func (b *Bot) Memory() *Memory { return &b.memory }

// Output returns the outputs of the last tick.
func (b *Bot) Output() Output { return b.output }

// Status returns the tree result of the last tick.
func (b *Bot) Status() behavior.Status { return b.status }

// Removed reports whether the body was handed back for despawning.
func (b *Bot) Removed() bool { return b.removed }

// OnDamage staggers the bot and voices the pain.
func (b *Bot) OnDamage(sender message.Sender, at mgl64.Vec3) {
	b.memory.RestorationTime = restorationTime
	if b.Character.IsDead() || len(b.Archetype.Sounds.Pain) == 0 {
		return
	}
	s := b.Archetype.Sounds.Pain[b.rng.Intn(len(b.Archetype.Sounds.Pain))]
	sender.Send(message.PlaySound{Sound: s, Position: at, Gain: 1})
}

// Update ticks the tree once and drives both animation layers from its
// outputs.
func (b *Bot) Update(env Env) {
	ch := b.Character
	ctx := Context{
		Self:       ch.Body,
		Scene:      env.Scene,
		Physics:    env.Physics,
		Roster:     env.Roster,
		Sender:     env.Sender,
		Agent:      b.agent,
		Grid:       env.Grid,
		Animations: b.player,
		Rig:        b.rig,
		Character:  ch,
		Archetype:  b.Archetype,
		Rand:       b.rng,
		Dt:         env.Dt,
		Elapsed:    env.Elapsed,
		Memory:     &b.memory,
		Output:     Output{MovementSpeedFactor: 1},
	}
	b.status = b.tree.Tick(&ctx)
	b.output = ctx.Output
	// Signals the tree did not consume this frame are stale by the next one.
	b.player.ClearEvents()

	b.animate(env)
	b.tickTimers(env)
	b.footsteps(env)
	b.despawn(env)
}

func (b *Bot) attackIndex() int {
	i := b.output.AttackAnimationIndex
	if i < 0 || i >= len(b.rig.Attacks) {
		return 0
	}
	return i
}

func (b *Bot) inputs() Inputs {
	ch := b.Character
	in := Inputs{
		Walk:                b.output.IsMoving,
		Scream:              b.output.IsScreaming,
		Dead:                ch.IsDead(),
		Attack:              b.output.IsAttacking,
		Aim:                 b.output.IsAiming,
		WasHit:              b.memory.RestorationTime > 0,
		AttackEnded:         true,
		AttackIndex:         b.output.AttackAnimationIndex,
		MovementSpeedFactor: b.output.MovementSpeedFactor,
	}
	if len(b.rig.Attacks) > 0 {
		in.AttackEnded = b.player.HasEnded(b.rig.Attacks[b.attackIndex()])
	}
	if ch.HasNoLegs() {
		in.MovementType = 1
	}
	return in
}

func (b *Bot) animate(env Env) {
	if b.output.IsAttacking && len(b.rig.Attacks) > 0 {
		b.player.Play(b.rig.Attacks[b.attackIndex()])
	}

	in := b.inputs()
	for _, l := range []*Layer{b.rig.Lower, b.rig.Upper} {
		if err := l.Bindings.Apply(l.Machine, in); err != nil {
			b.logger.Warn("parameter binding failed", zap.String("layer", l.Name), zap.Error(err))
		}
	}

	lower := b.rig.Lower.Machine.EvaluatePose(b.player, env.Dt)
	upper := b.rig.Upper.Machine.EvaluatePose(b.player, env.Dt)
	if env.Scene != nil {
		lower.Overlay(upper, b.rig.Upper.Mask).Apply(env.Scene.Skeleton(b.Character.Model))
	}
	b.player.Update(env.Dt)
}

func (b *Bot) tickTimers(env Env) {
	m := &b.memory
	m.RestorationTime -= env.Dt
	m.ThreatenTimeout -= env.Dt

	for _, r := range []*geom.SmoothAngle{&m.VRecoil, &m.HRecoil} {
		r.Update(env.Dt)
		if r.AtTarget() {
			r.Target = 0
		}
	}
	if env.Scene != nil && b.Character.Spine != scene.NoNode {
		spine := geom.PitchRotation(m.SpinePitch).
			Mul(geom.YawRotation(m.HRecoil.Angle)).
			Mul(geom.PitchRotation(m.VRecoil.Angle))
		env.Scene.SetRotation(b.Character.Spine, spine)
	}
}

func (b *Bot) footsteps(env Env) {
	if env.Sender == nil || env.Scene == nil {
		return
	}
	sounds := b.Archetype.Sounds.Footstep
	for _, h := range b.rig.Lower.Animations() {
		for ev, ok := b.player.PopEvent(h); ok; ev, ok = b.player.PopEvent(h) {
			if ev.Name != footstepSignal || len(sounds) == 0 || !b.output.IsMoving {
				continue
			}
			env.Sender.Send(message.PlaySound{
				Sound:    sounds[b.rng.Intn(len(sounds))],
				Position: env.Scene.Position(b.Character.Body),
				Gain:     1,
			})
		}
	}
}

func (b *Bot) despawn(env Env) {
	if !b.Character.IsDead() || b.removed {
		return
	}
	b.dead += env.Dt
	if b.dead >= b.Archetype.DespawnTimeout && env.Sender != nil {
		b.removed = true
		env.Sender.Send(message.RemoveActor{Actor: b.Character.Body})
		b.logger.Debug("despawning body", zap.Float64("after", b.dead))
	}
}
