package world

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/bot"
	"github.com/kasuganosora/botbrain/game/character"
	"github.com/kasuganosora/botbrain/game/geom"
	"github.com/kasuganosora/botbrain/game/scene"
	"github.com/kasuganosora/botbrain/game/weapon"
	"github.com/kasuganosora/botbrain/resource"
	"go.uber.org/zap"
)

const (
	defaultPlayerHealth = 100.0
	playerRadius        = 0.35
	spineHeight         = 1.1
	// groupSpacing separates the members of a multi-count spawn along X.
	groupSpacing = 1.5
)

// addBody creates the body, model and spine nodes plus the capsule of ch.
// Callers hold the write lock.
func (a *Arena) addBody(ch *character.Character, pos mgl64.Vec3, yaw, radius float64) {
	ch.Body = a.graph.Add(ch.Name, scene.NoNode, pos)
	a.graph.SetRotation(ch.Body, geom.YawRotation(mgl64.DegToRad(yaw)))
	ch.Model = a.graph.Add(ch.Name+"/model", ch.Body, mgl64.Vec3{})
	ch.Spine = a.graph.Add(ch.Name+"/spine", ch.Model, mgl64.Vec3{0, spineHeight, 0})
	ch.Capsule = a.physics.AddCapsule(pos, radius)

	a.actors = append(a.actors, ch.Body)
	a.chars[ch.Body] = ch
	a.capsules[ch.Capsule] = ch.Body
}

// SpawnBot places a bot of the named archetype. Definition errors are
// logged and the bot is not spawned.
func (a *Arena) SpawnBot(archetype string, pos mgl64.Vec3, yaw float64) (scene.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	def, ok := a.defs.Archetype(archetype)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownArchetype, archetype)
		a.logger.Error("bot spawn refused", zap.String("archetype", archetype), zap.Error(err))
		return scene.NoNode, err
	}

	ch := character.New(fmt.Sprintf("%s#%d", def.Name, len(a.actors)), character.KindBot, def.Health)
	ch.Species = def.Species
	ch.HitBoxes = def.HitBoxes
	for _, s := range def.Inventory {
		if err := ch.Inventory.Add(s.Item, s.Count); err != nil {
			a.logger.Warn("inventory stack skipped", zap.String("item", string(s.Item)), zap.Error(err))
		}
	}
	if def.Weapon != "" {
		wd, ok := a.defs.Weapons[def.Weapon]
		if !ok {
			err := fmt.Errorf("world: archetype %s: unknown weapon %s", def.Name, def.Weapon)
			a.logger.Error("bot spawn refused", zap.String("archetype", archetype), zap.Error(err))
			return scene.NoNode, err
		}
		ch.AddWeapon(weapon.New(wd))
	}

	rng := rand.New(rand.NewSource(a.rng.Int63()))
	b, err := bot.New(ch, def, a.defs.Clips, rng, a.logger)
	if err != nil {
		a.logger.Error("bot spawn refused", zap.String("archetype", archetype), zap.Error(err))
		return scene.NoNode, err
	}

	a.addBody(ch, pos, yaw, def.CapsuleRadius)
	a.bots[ch.Body] = b
	a.logger.Info("bot spawned",
		zap.String("name", ch.Name),
		zap.Int("handle", int(ch.Body)),
		zap.Float64("x", pos.X()),
		zap.Float64("z", pos.Z()))
	return ch.Body, nil
}

// SpawnPlayer places a player character. Players are driven from outside;
// the arena only keeps them alive as targets.
func (a *Arena) SpawnPlayer(name string, pos mgl64.Vec3, yaw float64) scene.Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	health := a.level.PlayerHealth
	if health <= 0 {
		health = defaultPlayerHealth
	}
	ch := character.New(name, character.KindPlayer, health)
	a.addBody(ch, pos, yaw, playerRadius)
	a.logger.Info("player spawned", zap.String("name", name), zap.Int("handle", int(ch.Body)))
	return ch.Body
}

// SpawnLevel places every spawn of the level. It returns the number of
// actors placed; failed bot spawns are logged and skipped.
func (a *Arena) SpawnLevel() int {
	n := 0
	for _, sp := range a.level.Spawns {
		count := max(sp.Count, 1)
		base := resource.Vec(sp.Position)
		for i := 0; i < count; i++ {
			pos := base.Add(mgl64.Vec3{float64(i) * groupSpacing, 0, 0})
			if sp.Player != "" {
				name := sp.Player
				if count > 1 {
					name = fmt.Sprintf("%s%d", sp.Player, i+1)
				}
				a.SpawnPlayer(name, pos, sp.Yaw)
				n++
				continue
			}
			if _, err := a.SpawnBot(sp.Archetype, pos, sp.Yaw); err == nil {
				n++
			}
		}
	}
	return n
}
