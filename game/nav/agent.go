package nav

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrNoPath is returned by Agent.Update when the target is unreachable.
var ErrNoPath = errors.New("nav: no path to target")

// arrivalRadius is how close the agent must get to a waypoint to drop it.
const arrivalRadius = 0.2

// Agent follows A* paths across a Grid.
type Agent struct {
	position mgl64.Vec3
	target   mgl64.Vec3
	speed    float64
	path     []mgl64.Vec3

	pathFrom, pathTo Point
	hasPath          bool
}

// NewAgent returns an agent standing at pos.
func NewAgent(pos mgl64.Vec3) *Agent {
	return &Agent{position: pos, target: pos, speed: 1}
}

// SetSpeed sets the travel speed in units per second.
func (a *Agent) SetSpeed(speed float64) { a.speed = speed }

// Speed returns the travel speed.
func (a *Agent) Speed() float64 { return a.speed }

// SetPosition teleports the agent.
func (a *Agent) SetPosition(pos mgl64.Vec3) { a.position = pos }

// Position returns the agent position.
func (a *Agent) Position() mgl64.Vec3 { return a.position }

// SetTarget sets the destination.
func (a *Agent) SetTarget(pos mgl64.Vec3) { a.target = pos }

// Target returns the destination.
func (a *Agent) Target() mgl64.Vec3 { return a.target }

// Path returns the remaining waypoints.
func (a *Agent) Path() []mgl64.Vec3 { return a.path }

// NextPoint returns the waypoint the agent is heading for, or the target
// when the path is exhausted.
func (a *Agent) NextPoint() mgl64.Vec3 {
	if len(a.path) == 0 {
		return a.target
	}
	return a.path[0]
}

// Update replans when the start or goal cell changed and advances along the
// path by speed*dt. A nil grid steers straight at the target.
func (a *Agent) Update(dt float64, g *Grid) error {
	if g == nil {
		a.path = []mgl64.Vec3{a.target}
		a.hasPath = false
	} else {
		from, to := g.CellOf(a.position), g.CellOf(a.target)
		if !a.hasPath || from != a.pathFrom || to != a.pathTo {
			cells := AStar(g, from, to)
			if cells == nil {
				a.path = nil
				a.hasPath = false
				return ErrNoPath
			}
			a.path = a.path[:0]
			for i, c := range cells {
				if i == len(cells)-1 {
					break
				}
				a.path = append(a.path, g.Center(c, a.position.Y()))
			}
			a.path = append(a.path, a.target)
			a.pathFrom, a.pathTo, a.hasPath = from, to, true
		}
	}

	budget := a.speed * dt
	for len(a.path) > 0 && budget > 0 {
		next := a.path[0]
		delta := next.Sub(a.position)
		delta[1] = 0
		d := delta.Len()
		if d <= arrivalRadius || d <= budget {
			a.position = mgl64.Vec3{next.X(), a.position.Y(), next.Z()}
			budget -= d
			if len(a.path) > 1 {
				a.path = a.path[1:]
				continue
			}
			break
		}
		a.position = a.position.Add(delta.Mul(budget / d))
		budget = 0
	}
	return nil
}
