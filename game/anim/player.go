package anim

// Handle references an animation inside a Player.
type Handle int

// NoAnimation is the zero reference.
const NoAnimation Handle = -1

// Player owns the animation instances of one character.
type Player struct {
	anims  []*Animation
	byName map[string]Handle
}

// NewPlayer returns an empty Player.
func NewPlayer() *Player {
	return &Player{byName: make(map[string]Handle)}
}

// Add instantiates c and returns its handle.
func (p *Player) Add(c *Clip) Handle {
	h := Handle(len(p.anims))
	p.anims = append(p.anims, newAnimation(c))
	if _, ok := p.byName[c.Name]; !ok {
		p.byName[c.Name] = h
	}
	return h
}

// Find returns the first animation instantiated from the clip called name.
func (p *Player) Find(name string) (Handle, bool) {
	h, ok := p.byName[name]
	return h, ok
}

// Get returns the animation at h, or nil.
func (p *Player) Get(h Handle) *Animation {
	if h < 0 || int(h) >= len(p.anims) {
		return nil
	}
	return p.anims[h]
}

// Has reports whether h is valid.
func (p *Player) Has(h Handle) bool { return p.Get(h) != nil }

// Len returns the number of animations.
func (p *Player) Len() int { return len(p.anims) }

// Play enables h, restarting it if it already ended.
func (p *Player) Play(h Handle) {
	if a := p.Get(h); a != nil {
		if a.ended {
			a.Rewind()
		}
		a.enabled = true
	}
}

// SetEnabled toggles playback of h.
func (p *Player) SetEnabled(h Handle, enabled bool) {
	if a := p.Get(h); a != nil {
		a.enabled = enabled
	}
}

// SetSpeed changes the playback rate of h.
func (p *Player) SetSpeed(h Handle, speed float64) {
	if a := p.Get(h); a != nil && speed > 0 {
		a.speed = speed
	}
}

// Rewind restarts h.
func (p *Player) Rewind(h Handle) {
	if a := p.Get(h); a != nil {
		a.Rewind()
	}
}

// HasEnded reports whether h finished; unknown handles count as ended.
func (p *Player) HasEnded(h Handle) bool {
	a := p.Get(h)
	return a == nil || a.ended
}

// PopEvent removes the oldest pending signal event of h.
func (p *Player) PopEvent(h Handle) (Event, bool) {
	if a := p.Get(h); a != nil {
		return a.PopEvent()
	}
	return Event{}, false
}

// Pose samples h at its current time.
func (p *Player) Pose(h Handle) (Pose, bool) {
	a := p.Get(h)
	if a == nil {
		return nil, false
	}
	return a.Pose(), true
}

// Update advances every enabled animation by dt.
func (p *Player) Update(dt float64) {
	for _, a := range p.anims {
		a.Update(dt)
	}
}

// ClearEvents drops every pending signal event.
func (p *Player) ClearEvents() {
	for _, a := range p.anims {
		a.events = a.events[:0]
	}
}
