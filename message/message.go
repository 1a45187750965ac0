// Package message carries fire-and-forget requests from bots to the rest of
// the simulation (damage, weapon fire, sounds, item drops) and republishes
// them on a pub/sub bus for out-of-process observers.
package message

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/item"
	"github.com/kasuganosora/botbrain/game/scene"
)

// Kind names a message type; it doubles as the bus channel suffix.
type Kind string

const (
	KindDamageActor Kind = "damage_actor"
	KindShootWeapon Kind = "shoot_weapon"
	KindPlaySound   Kind = "play_sound"
	KindDropItems   Kind = "drop_items"
	KindRemoveActor Kind = "remove_actor"
)

// Kinds lists every message kind.
var Kinds = []Kind{KindDamageActor, KindShootWeapon, KindPlaySound, KindDropItems, KindRemoveActor}

// Message is implemented by every request type.
type Message interface {
	Kind() Kind
}

// DamageActor asks for damage to be applied to Actor.
type DamageActor struct {
	Actor    scene.Handle `json:"actor"`
	Attacker scene.Handle `json:"attacker"`
	Amount   float64      `json:"amount"`
	HitBox   string       `json:"hit_box,omitempty"`
}

func (DamageActor) Kind() Kind { return KindDamageActor }

// ShootWeapon fires the current weapon of Shooter at Target.
type ShootWeapon struct {
	Shooter scene.Handle `json:"shooter"`
	Origin  mgl64.Vec3   `json:"origin"`
	Target  mgl64.Vec3   `json:"target"`
}

func (ShootWeapon) Kind() Kind { return KindShootWeapon }

// PlaySound requests a one-shot sound at Position.
type PlaySound struct {
	Sound    string     `json:"sound"`
	Position mgl64.Vec3 `json:"position"`
	Gain     float64    `json:"gain"`
}

func (PlaySound) Kind() Kind { return KindPlaySound }

// DropItems spawns a pickup of Count units of Item at Position.
type DropItems struct {
	Actor    scene.Handle `json:"actor"`
	Item     item.ID      `json:"item"`
	Count    int          `json:"count"`
	Position mgl64.Vec3   `json:"position"`
}

func (DropItems) Kind() Kind { return KindDropItems }

// RemoveActor despawns Actor.
type RemoveActor struct {
	Actor scene.Handle `json:"actor"`
}

func (RemoveActor) Kind() Kind { return KindRemoveActor }

// Sender accepts messages without waiting for them to be handled.
type Sender interface {
	Send(m Message)
}

// Queue buffers messages for the current frame.
type Queue struct {
	pending []Message
}

// Send appends m.
func (q *Queue) Send(m Message) {
	q.pending = append(q.pending, m)
}

// Len returns the number of pending messages.
func (q *Queue) Len() int { return len(q.pending) }

// Drain returns and clears the pending messages.
func (q *Queue) Drain() []Message {
	out := q.pending
	q.pending = nil
	return out
}
