// Package bot drives FPS bots: a behavior tree decides what to do each frame
// and two animation state machines (lower and upper body) show it.
package bot

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/anim"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/game/geom"
	"github.com/kasuganosora/botbrain/game/nav"
	"github.com/kasuganosora/botbrain/game/physics"
	"github.com/kasuganosora/botbrain/game/scene"
	"github.com/kasuganosora/botbrain/message"
	"github.com/kasuganosora/botbrain/resource"
)

// headHeight is the eye offset above the model origin.
const headHeight = 0.4

// Scene is the part of the scene graph a bot reads and writes.
type Scene interface {
	Position(h scene.Handle) mgl64.Vec3
	Rotation(h scene.Handle) mgl64.Quat
	LookVector(h scene.Handle) mgl64.Vec3
	UpVector(h scene.Handle) mgl64.Vec3
	SetRotation(h scene.Handle, q mgl64.Quat)
	LinearVelocity(h scene.Handle) mgl64.Vec3
	SetLinearVelocity(h scene.Handle, v mgl64.Vec3)
	Skeleton(h scene.Handle) anim.Skeleton
}

// Physics answers ray queries, hits sorted by distance.
type Physics interface {
	CastRay(r physics.Ray) []physics.Intersection
}

// NavAgent follows paths across a navigation grid.
type NavAgent interface {
	SetSpeed(speed float64)
	SetPosition(pos mgl64.Vec3)
	Position() mgl64.Vec3
	SetTarget(pos mgl64.Vec3)
	Target() mgl64.Vec3
	Update(dt float64, g *nav.Grid) error
	NextPoint() mgl64.Vec3
}

// Roster lists the actors of the level.
type Roster interface {
	Actors() []scene.Handle
	Character(h scene.Handle) (*character.Character, bool)
	PointsOfInterest() []mgl64.Vec3
}

// Target is what the bot is after. Actor is scene.NoNode for a point of
// interest.
type Target struct {
	Actor    scene.Handle
	Position mgl64.Vec3
}

// Memory is the state a bot keeps between frames.
type Memory struct {
	Target          *Target
	RestorationTime float64
	ThreatenTimeout float64
	VRecoil         geom.SmoothAngle
	HRecoil         geom.SmoothAngle
	SpinePitch      float64
}

// Output collects what the tree decided this frame.
type Output struct {
	IsMoving             bool    `json:"is_moving"`
	IsAttacking          bool    `json:"is_attacking"`
	IsAiming             bool    `json:"is_aiming"`
	IsScreaming          bool    `json:"is_screaming"`
	AttackAnimationIndex int     `json:"attack_animation_index"`
	MovementSpeedFactor  float64 `json:"movement_speed_factor"`
}

// Context is the blackboard handed to every leaf for one tick. It is built
// by the driver each frame and dropped afterwards.
type Context struct {
	Self       scene.Handle
	Scene      Scene
	Physics    Physics
	Roster     Roster
	Sender     message.Sender
	Agent      NavAgent
	Grid       *nav.Grid
	Animations *anim.Player
	Rig        *Rig
	Character  *character.Character
	Archetype  *resource.Archetype
	Rand       *rand.Rand
	Dt         float64
	Elapsed    float64

	Memory *Memory
	Output Output
}

// Position is the body position of the bot.
func (c *Context) Position() mgl64.Vec3 {
	return c.Scene.Position(c.Character.Body)
}

// Head is the eye position of the bot.
func (c *Context) Head() mgl64.Vec3 {
	return c.Scene.Position(c.Character.Model).Add(mgl64.Vec3{0, headHeight, 0})
}

// Stop cancels horizontal motion and keeps vertical velocity.
func (c *Context) Stop() {
	v := c.Scene.LinearVelocity(c.Character.Body)
	c.Scene.SetLinearVelocity(c.Character.Body, mgl64.Vec3{0, v.Y(), 0})
}

// DistanceToTarget is the horizontal distance to the target, false without one.
func (c *Context) DistanceToTarget() (float64, bool) {
	if c.Memory.Target == nil {
		return 0, false
	}
	return geom.Horizontal(c.Memory.Target.Position.Sub(c.Position())).Len(), true
}

// pick returns a random entry of s or "".
func (c *Context) pick(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[c.Rand.Intn(len(s))]
}
