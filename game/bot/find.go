package bot

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/behavior"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/game/geom"
	"github.com/kasuganosora/botbrain/game/physics"
	"github.com/kasuganosora/botbrain/game/scene"
	"github.com/kasuganosora/botbrain/resource"
)

// Vision and hearing of every bot.
const (
	viewFOV       = 90.0
	viewAspect    = 16.0 / 9.0
	viewNear      = 0.1
	viewFar       = 20.0
	hearingRadius = 1.6
)

// FindTarget picks the closest visible or audible hostile actor and falls
// back to the nearest point of interest. It never fails; it runs in place
// until something turns up.
type FindTarget struct{}

func (FindTarget) Tick(ctx *Context) behavior.Status {
	if t := ctx.Memory.Target; t != nil && t.Actor != scene.NoNode {
		if other, ok := ctx.Roster.Character(t.Actor); ok && !other.IsDead() && hostile(ctx, other) {
			t.Position = ctx.Scene.Position(t.Actor)
			return behavior.StatusSuccess
		}
	}
	ctx.Memory.Target = nil

	if t := findActor(ctx); t != nil {
		ctx.Memory.Target = t
		return behavior.StatusSuccess
	}
	if ctx.Archetype.UsePOI {
		if p, ok := nearestPoint(ctx.Position(), ctx.Roster.PointsOfInterest()); ok {
			ctx.Memory.Target = &Target{Actor: scene.NoNode, Position: p}
			return behavior.StatusSuccess
		}
	}
	ctx.Stop()
	return behavior.StatusRunning
}

func hostile(ctx *Context, other *character.Character) bool {
	switch ctx.Archetype.Hostility {
	case resource.HostileOtherSpecies:
		return other.Species != ctx.Character.Species
	case resource.HostilePlayer:
		return other.Kind == character.KindPlayer
	}
	return true
}

func findActor(ctx *Context) *Target {
	model := ctx.Character.Model
	head := ctx.Head()
	frustum := geom.PerspectiveFrustum(
		head,
		head.Add(ctx.Scene.LookVector(model)),
		ctx.Scene.UpVector(model),
		viewFOV, viewAspect, viewNear, viewFar,
	)
	self := ctx.Position()

	var best *Target
	bestDist := math.MaxFloat64
	for _, h := range ctx.Roster.Actors() {
		if h == ctx.Self {
			continue
		}
		other, ok := ctx.Roster.Character(h)
		if !ok || other.IsDead() || !hostile(ctx, other) {
			continue
		}
		pos := ctx.Scene.Position(h)
		d := pos.Sub(self).Len()
		heard := d > 0 && d < hearingRadius
		if !heard && !frustum.Contains(pos) {
			continue
		}
		if occluded(ctx.Physics, pos, self) {
			continue
		}
		if d < bestDist {
			bestDist = d
			best = &Target{Actor: h, Position: pos}
		}
	}
	return best
}

// occluded casts from the candidate back to the bot; any level geometry in
// between hides it.
func occluded(p Physics, from, to mgl64.Vec3) bool {
	dir := to.Sub(from)
	d := dir.Len()
	if d == 0 {
		return false
	}
	for _, hit := range p.CastRay(physics.Ray{Origin: from, Direction: dir, MaxLen: d}) {
		if hit.Kind != physics.ShapeCapsule {
			return true
		}
	}
	return false
}

func nearestPoint(from mgl64.Vec3, points []mgl64.Vec3) (mgl64.Vec3, bool) {
	best, found := mgl64.Vec3{}, false
	bestDist := math.MaxFloat64
	for _, p := range points {
		if d := p.Sub(from).Len(); d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}
