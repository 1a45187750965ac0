package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/absm"
	"github.com/kasuganosora/botbrain/game/bot"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/game/scene"
)

// ActorSnapshot is the inspector view of any actor.
type ActorSnapshot struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Health   float64    `json:"health"`
	Dead     bool       `json:"dead"`
	Position mgl64.Vec3 `json:"position"`
}

// TargetSnapshot is what a bot is after.
type TargetSnapshot struct {
	Actor    int        `json:"actor"`
	Position mgl64.Vec3 `json:"position"`
}

// BotSnapshot adds the decision and animation state of a bot.
type BotSnapshot struct {
	ActorSnapshot
	Archetype string          `json:"archetype"`
	Status    string          `json:"status"`
	Target    *TargetSnapshot `json:"target,omitempty"`
	Lower     string          `json:"lower_state"`
	Upper     string          `json:"upper_state"`
	Ammo      int             `json:"ammo"`
	Output    bot.Output      `json:"output"`
}

// Snapshot is a consistent copy of the arena state.
type Snapshot struct {
	Match   string          `json:"match"`
	Level   string          `json:"level"`
	Stats   Stats           `json:"stats"`
	Bots    []BotSnapshot   `json:"bots"`
	Players []ActorSnapshot `json:"players"`
	Pickups []Pickup        `json:"pickups"`
}

func stateName(m *absm.Machine) string {
	if h, ok := m.ActiveTransition(); ok {
		if tr, ok := m.Transition(h); ok {
			return tr.Name
		}
	}
	s, _ := m.State(m.ActiveState())
	return s.Name
}

func (a *Arena) actorSnapshot(h scene.Handle, ch *character.Character) ActorSnapshot {
	return ActorSnapshot{
		ID:       int(h),
		Name:     ch.Name,
		Kind:     ch.Kind.String(),
		Health:   ch.Health,
		Dead:     ch.IsDead(),
		Position: a.graph.Position(h),
	}
}

func (a *Arena) botSnapshot(h scene.Handle, b *bot.Bot) BotSnapshot {
	s := BotSnapshot{
		ActorSnapshot: a.actorSnapshot(h, b.Character),
		Archetype:     b.Archetype.Name,
		Status:        b.Status().String(),
		Lower:         stateName(b.Rig().Lower.Machine),
		Upper:         stateName(b.Rig().Upper.Machine),
		Output:        b.Output(),
	}
	if t := b.Memory().Target; t != nil {
		s.Target = &TargetSnapshot{Actor: int(t.Actor), Position: t.Position}
	}
	if w := b.Character.CurrentWeapon(); w != nil {
		s.Ammo = b.Character.Inventory.Count(w.Def.AmmoItem)
	}
	return s
}

// Snapshot copies the state of every actor.
func (a *Arena) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Snapshot{
		Match:   a.ID,
		Level:   a.level.Name,
		Stats:   a.stats,
		Bots:    []BotSnapshot{},
		Players: []ActorSnapshot{},
		Pickups: append([]Pickup{}, a.pickups...),
	}
	s.Stats.Bots, s.Stats.Players = a.countActors()
	for _, h := range a.actors {
		if b, ok := a.bots[h]; ok {
			s.Bots = append(s.Bots, a.botSnapshot(h, b))
			continue
		}
		s.Players = append(s.Players, a.actorSnapshot(h, a.chars[h]))
	}
	return s
}

// Bot returns the snapshot of the bot with the given id.
func (a *Arena) Bot(id int) (BotSnapshot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b, ok := a.bots[scene.Handle(id)]
	if !ok {
		return BotSnapshot{}, false
	}
	return a.botSnapshot(scene.Handle(id), b), true
}
