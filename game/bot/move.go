package bot

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/behavior"
	"github.com/kasuganosora/botbrain/game/geom"
)

// aimSpeed is how fast the body and spine turn, in radians per second.
var aimSpeed = mgl64.DegToRad(180)

// MoveToTarget walks toward the target along the navigation grid until it
// is within MinDistance.
type MoveToTarget struct {
	MinDistance float64
}

func (a *MoveToTarget) Tick(ctx *Context) behavior.Status {
	d, ok := ctx.DistanceToTarget()
	if !ok {
		return behavior.StatusFailure
	}
	factor := ctx.Character.MovementSpeedFactor()
	ctx.Output.MovementSpeedFactor = factor

	if d <= a.MinDistance {
		ctx.Stop()
		ctx.Output.IsMoving = false
		return behavior.StatusSuccess
	}

	pos := ctx.Position()
	ctx.Agent.SetSpeed(ctx.Archetype.WalkSpeed * factor)
	ctx.Agent.SetPosition(pos)
	ctx.Agent.SetTarget(ctx.Memory.Target.Position)
	if err := ctx.Agent.Update(ctx.Dt, ctx.Grid); err != nil {
		ctx.Stop()
		ctx.Output.IsMoving = false
		return behavior.StatusFailure
	}

	body := ctx.Character.Body
	vel := ctx.Scene.LinearVelocity(body)
	if ctx.Dt > 0 {
		step := geom.Horizontal(ctx.Agent.Position().Sub(pos)).Mul(1 / ctx.Dt)
		vel = mgl64.Vec3{step.X(), vel.Y(), step.Z()}
	}
	ctx.Scene.SetLinearVelocity(body, vel)
	ctx.Output.IsMoving = true
	return behavior.StatusRunning
}

// AimMode selects what AimOnTarget turns toward.
type AimMode uint8

const (
	// AimActual faces the target itself, pitching the spine to it.
	AimActual AimMode = iota
	// AimSteering faces the next waypoint of the path to the target.
	AimSteering
)

// AimOnTarget turns the body (yaw) and spine (pitch) toward the target.
type AimOnTarget struct {
	Mode AimMode
}

func (a *AimOnTarget) Tick(ctx *Context) behavior.Status {
	t := ctx.Memory.Target
	if t == nil {
		return behavior.StatusFailure
	}
	point := t.Position
	if a.Mode == AimSteering && ctx.Agent.Target().ApproxEqual(t.Position) {
		point = ctx.Agent.NextPoint()
	}

	body := ctx.Character.Body
	dir := point.Sub(ctx.Head())
	yaw := geom.SmoothAngle{Angle: geom.YawOf(ctx.Scene.LookVector(body)), Speed: aimSpeed}
	yaw.Target = yaw.Angle
	if geom.Horizontal(dir).Len() > 1e-6 {
		yaw.Target = geom.YawOf(dir)
	}
	pitch := geom.SmoothAngle{Angle: ctx.Memory.SpinePitch, Speed: aimSpeed}
	if a.Mode == AimActual {
		pitch.Target = clampPitch(geom.PitchOf(dir) + mgl64.DegToRad(ctx.Archetype.VAimAngleHack))
	}

	yaw.Update(ctx.Dt)
	pitch.Update(ctx.Dt)
	ctx.Scene.SetRotation(body, geom.YawRotation(yaw.Angle))
	ctx.Memory.SpinePitch = pitch.Angle

	if yaw.AtTarget() && pitch.AtTarget() {
		return behavior.StatusSuccess
	}
	return behavior.StatusRunning
}

// IsTargetCloseBy succeeds when the target is within MinDistance.
type IsTargetCloseBy struct {
	MinDistance float64
}

func (a *IsTargetCloseBy) Tick(ctx *Context) behavior.Status {
	d, ok := ctx.DistanceToTarget()
	if ok && d <= a.MinDistance {
		return behavior.StatusSuccess
	}
	return behavior.StatusFailure
}

// clampPitch keeps the spine from folding over.
func clampPitch(p float64) float64 {
	limit := math.Pi / 2
	return math.Max(-limit, math.Min(limit, p))
}
