package bot

import (
	"github.com/kasuganosora/botbrain/game/behavior"
	"github.com/kasuganosora/botbrain/message"
)

// Threaten timeout range in seconds.
const (
	threatenMin = 20.0
	threatenMax = 60.0
)

// NeedsThreatenTarget succeeds when an actor target is known and the bot has
// not screamed for a while.
type NeedsThreatenTarget struct{}

func (NeedsThreatenTarget) Tick(ctx *Context) behavior.Status {
	if hasActorTarget(ctx) && ctx.Memory.ThreatenTimeout <= 0 {
		return behavior.StatusSuccess
	}
	return behavior.StatusFailure
}

// ThreatenTarget plays the scream clips to the end, standing still.
type ThreatenTarget struct {
	started bool
}

func (a *ThreatenTarget) Tick(ctx *Context) behavior.Status {
	ctx.Stop()
	if !a.started {
		a.started = true
		for _, h := range ctx.Rig.Scream {
			ctx.Animations.Rewind(h)
			ctx.Animations.SetEnabled(h, true)
		}
		if s := ctx.pick(ctx.Archetype.Sounds.Scream); s != "" {
			ctx.Sender.Send(message.PlaySound{Sound: s, Position: ctx.Position(), Gain: 1})
		}
	}

	for _, h := range ctx.Rig.Scream {
		if !ctx.Animations.HasEnded(h) {
			ctx.Output.IsScreaming = true
			return behavior.StatusRunning
		}
	}

	a.started = false
	ctx.Memory.ThreatenTimeout = threatenMin + ctx.Rand.Float64()*(threatenMax-threatenMin)
	return behavior.StatusSuccess
}
