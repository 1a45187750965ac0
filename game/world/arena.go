// Package world owns a running arena: the scene graph, physics, navigation
// grid, the actors living in it and the message dispatch between them.
package world

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/kasuganosora/botbrain/game/bot"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/game/nav"
	"github.com/kasuganosora/botbrain/game/physics"
	"github.com/kasuganosora/botbrain/game/scene"
	"github.com/kasuganosora/botbrain/message"
	"github.com/kasuganosora/botbrain/resource"
	"go.uber.org/zap"
)

var (
	ErrUnknownLevel     = errors.New("world: unknown level")
	ErrUnknownArchetype = errors.New("world: unknown archetype")
)

// Options tune an Arena.
type Options struct {
	// Publisher, when set, receives every dispatched message.
	Publisher *message.Publisher
	// Seed drives every random choice of the arena; 0 picks one from the clock.
	Seed int64
}

// Stats are running match totals.
type Stats struct {
	Frames  uint64    `json:"frames"`
	Elapsed float64   `json:"elapsed"`
	Bots    int       `json:"bots"`
	Players int       `json:"players"`
	Kills   int       `json:"kills"`
	Shots   int       `json:"shots"`
	Hits    int       `json:"hits"`
	Sounds  int       `json:"sounds"`
	Drops   int       `json:"drops"`
	Removed int       `json:"removed"`
	Started time.Time `json:"started"`
}

// Pickup is an item lying on the floor.
type Pickup struct {
	Item     string     `json:"item"`
	Count    int        `json:"count"`
	Position mgl64.Vec3 `json:"position"`
}

// Arena is one level instance. Step must be called from a single goroutine;
// the read accessors are safe from any goroutine.
type Arena struct {
	ID string

	mu      sync.RWMutex
	defs    *resource.Definitions
	level   *resource.Level
	graph   *scene.Graph
	physics *physics.World
	grid    *nav.Grid
	pois    []mgl64.Vec3

	actors   []scene.Handle
	chars    map[scene.Handle]*character.Character
	bots     map[scene.Handle]*bot.Bot
	capsules map[physics.ColliderHandle]scene.Handle
	pickups  []Pickup

	queue message.Queue
	pub   *message.Publisher
	rng   *rand.Rand
	stats Stats

	logger *zap.Logger
}

// NewArena builds the static part of the named level: walls, grid and
// points of interest. Actors are added with SpawnLevel, SpawnBot and
// SpawnPlayer.
func NewArena(defs *resource.Definitions, levelName string, opts Options, logger *zap.Logger) (*Arena, error) {
	lv, ok := defs.Level(levelName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLevel, levelName)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a := &Arena{
		ID:       uuid.New().String(),
		defs:     defs,
		level:    lv,
		graph:    scene.NewGraph(),
		physics:  physics.NewWorld(),
		chars:    make(map[scene.Handle]*character.Character),
		bots:     make(map[scene.Handle]*bot.Bot),
		capsules: make(map[physics.ColliderHandle]scene.Handle),
		pub:      opts.Publisher,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   logger,
	}
	a.stats.Started = time.Now()
	a.grid = buildGrid(lv)
	for _, w := range lv.Walls {
		a.physics.AddWall(resource.Vec(w.From), resource.Vec(w.To), w.Thickness)
	}
	for _, p := range lv.PointsOfInterest {
		a.pois = append(a.pois, resource.Vec(p))
	}
	logger.Info("arena created",
		zap.String("match", a.ID),
		zap.String("level", lv.Name),
		zap.Int("walls", len(lv.Walls)),
		zap.Int64("seed", seed))
	return a, nil
}

// buildGrid rasterises every wall into blocked cells.
func buildGrid(lv *resource.Level) *nav.Grid {
	if lv.Grid == nil || lv.Grid.Width <= 0 || lv.Grid.Depth <= 0 {
		return nil
	}
	g := nav.NewGrid(lv.Grid.Width, lv.Grid.Depth, lv.Grid.CellSize, resource.Vec(lv.Grid.Origin))
	for _, w := range lv.Walls {
		from, to := resource.Vec(w.From), resource.Vec(w.To)
		length := to.Sub(from).Len()
		steps := int(length/(g.CellSize/2)) + 1
		for i := 0; i <= steps; i++ {
			p := from.Add(to.Sub(from).Mul(float64(i) / float64(steps)))
			g.SetBlocked(g.CellOf(p), true)
		}
	}
	return g
}

// Reload swaps the definitions used by later spawns. Live bots keep theirs.
func (a *Arena) Reload(defs *resource.Definitions) {
	a.mu.Lock()
	a.defs = defs
	a.mu.Unlock()
	a.logger.Info("arena definitions reloaded", zap.Int("archetypes", len(defs.Archetypes)))
}

// SetPublisher replaces the publisher. The match id of a publisher is
// usually the arena ID, so it is often set after NewArena.
func (a *Arena) SetPublisher(p *message.Publisher) {
	a.mu.Lock()
	a.pub = p
	a.mu.Unlock()
}

// Grid returns the navigation grid, nil when the level has none.
func (a *Arena) Grid() *nav.Grid { return a.grid }

// Step advances the arena by dt seconds: every bot thinks, bodies move and
// the messages they sent are dispatched and published.
func (a *Arena) Step(ctx context.Context, dt float64) {
	a.mu.Lock()
	a.stats.Frames++
	a.stats.Elapsed += dt
	frame := a.stats.Frames

	env := bot.Env{
		Scene:   a.graph,
		Physics: a.physics,
		Roster:  roster{a},
		Sender:  &a.queue,
		Grid:    a.grid,
		Dt:      dt,
		Elapsed: a.stats.Elapsed,
	}
	for _, h := range a.actors {
		if b, ok := a.bots[h]; ok {
			b.Update(env)
		}
	}
	for _, h := range a.actors {
		a.chars[h].Update(dt)
	}
	a.graph.Integrate(dt)
	for _, h := range a.actors {
		a.physics.MoveCapsule(a.chars[h].Capsule, a.graph.Position(h))
	}

	msgs := a.queue.Drain()
	for _, m := range msgs {
		a.dispatch(m)
	}
	pub := a.pub
	a.mu.Unlock()

	if pub != nil && len(msgs) > 0 {
		pub.Publish(ctx, frame, msgs)
	}
}

// Stats returns the running totals.
func (a *Arena) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.stats
	s.Bots, s.Players = a.countActors()
	return s
}

func (a *Arena) countActors() (bots, players int) {
	for _, h := range a.actors {
		if a.chars[h].Kind == character.KindBot {
			bots++
		} else {
			players++
		}
	}
	return bots, players
}

// roster exposes the actors to bots during Step, under the arena lock.
type roster struct{ a *Arena }

func (r roster) Actors() []scene.Handle { return r.a.actors }

func (r roster) Character(h scene.Handle) (*character.Character, bool) {
	c, ok := r.a.chars[h]
	return c, ok
}

func (r roster) PointsOfInterest() []mgl64.Vec3 { return r.a.pois }
