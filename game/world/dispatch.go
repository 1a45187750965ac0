package world

import (
	"github.com/kasuganosora/botbrain/game/physics"
	"github.com/kasuganosora/botbrain/message"
	"go.uber.org/zap"
)

// dispatch applies one message. Follow-up messages (hits, pain sounds) are
// queued for the next frame. Callers hold the write lock.
func (a *Arena) dispatch(m message.Message) {
	switch msg := m.(type) {
	case message.DamageActor:
		a.applyDamage(msg)
	case message.ShootWeapon:
		a.applyShot(msg)
	case message.PlaySound:
		a.stats.Sounds++
	case message.DropItems:
		a.stats.Drops++
		a.pickups = append(a.pickups, Pickup{Item: string(msg.Item), Count: msg.Count, Position: msg.Position})
	case message.RemoveActor:
		a.remove(msg)
	default:
		a.logger.Warn("unhandled message", zap.String("kind", string(m.Kind())))
	}
}

func (a *Arena) applyDamage(msg message.DamageActor) {
	ch, ok := a.chars[msg.Actor]
	if !ok || ch.IsDead() {
		return
	}
	ch.Damage(msg.Amount, msg.HitBox)
	a.stats.Hits++
	if b, ok := a.bots[msg.Actor]; ok {
		b.OnDamage(&a.queue, a.graph.Position(msg.Actor))
	}
	if ch.IsDead() {
		a.stats.Kills++
		fields := []zap.Field{zap.String("victim", ch.Name)}
		if killer, ok := a.chars[msg.Attacker]; ok {
			fields = append(fields, zap.String("killer", killer.Name))
		}
		a.logger.Info("actor killed", fields...)
	}
}

// applyShot traces the bullet and turns the first actor it meets into a
// DamageActor. Walls stop it.
func (a *Arena) applyShot(msg message.ShootWeapon) {
	a.stats.Shots++
	shooter, ok := a.chars[msg.Shooter]
	if !ok {
		return
	}
	w := shooter.CurrentWeapon()
	if w == nil {
		return
	}
	hits := a.physics.CastRay(physics.Ray{
		Origin:    msg.Origin,
		Direction: msg.Target.Sub(msg.Origin),
		MaxLen:    w.Def.Range,
		Filter:    func(h physics.ColliderHandle) bool { return h != shooter.Capsule },
	})
	for _, hit := range hits {
		if hit.Kind != physics.ShapeCapsule {
			return
		}
		victim, ok := a.capsules[hit.Collider]
		if !ok {
			continue
		}
		if ch := a.chars[victim]; ch == nil || ch.IsDead() {
			continue
		}
		a.queue.Send(message.DamageActor{Actor: victim, Attacker: msg.Shooter, Amount: w.Def.Damage})
		return
	}
}

func (a *Arena) remove(msg message.RemoveActor) {
	ch, ok := a.chars[msg.Actor]
	if !ok {
		return
	}
	a.physics.Remove(ch.Capsule)
	a.graph.Remove(ch.Body)
	delete(a.capsules, ch.Capsule)
	delete(a.chars, msg.Actor)
	delete(a.bots, msg.Actor)
	for i, h := range a.actors {
		if h == msg.Actor {
			a.actors = append(a.actors[:i], a.actors[i+1:]...)
			break
		}
	}
	a.stats.Removed++
	a.logger.Debug("actor removed", zap.String("name", ch.Name))
}
