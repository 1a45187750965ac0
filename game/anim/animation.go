// Package anim implements keyframed animation clips, their playback state and
// pose blending.
package anim

import (
	"sort"
)

// Keyframe is a bone transform at a point of the clip timeline.
type Keyframe struct {
	Time float64
	Transform
}

// Track animates one bone. Keys are sorted by time.
type Track struct {
	Bone string
	Keys []Keyframe
}

// Signal is a named marker on the clip timeline.
type Signal struct {
	Name string
	Time float64
}

// Clip is immutable animation content shared by every instance.
type Clip struct {
	Name    string
	Length  float64
	Looping bool
	Speed   float64
	Tracks  []Track
	Signals []Signal
}

// Event is emitted when playback crosses a Signal.
type Event struct {
	Name string
	Time float64
}

// Animation is one playing instance of a Clip.
type Animation struct {
	clip    *Clip
	time    float64
	speed   float64
	enabled bool
	ended   bool
	events  []Event
}

func newAnimation(c *Clip) *Animation {
	speed := c.Speed
	if speed <= 0 {
		speed = 1
	}
	return &Animation{clip: c, speed: speed, enabled: true}
}

// Name returns the clip name.
func (a *Animation) Name() string { return a.clip.Name }

// Time returns the local playback time.
func (a *Animation) Time() float64 { return a.time }

// Enabled reports whether the animation advances.
func (a *Animation) Enabled() bool { return a.enabled }

// Speed returns the playback rate.
func (a *Animation) Speed() float64 { return a.speed }

// HasEnded reports whether a non-looping animation reached its end.
func (a *Animation) HasEnded() bool { return a.ended }

// Rewind restarts playback and drops pending events.
func (a *Animation) Rewind() {
	a.time = 0
	a.ended = false
	a.events = a.events[:0]
}

// PopEvent removes the oldest pending signal event.
func (a *Animation) PopEvent() (Event, bool) {
	if len(a.events) == 0 {
		return Event{}, false
	}
	ev := a.events[0]
	a.events = a.events[1:]
	return ev, true
}

func (a *Animation) emit(from, to float64) {
	for _, s := range a.clip.Signals {
		if s.Time > from && s.Time <= to {
			a.events = append(a.events, Event{Name: s.Name, Time: s.Time})
		}
	}
}

// Update advances playback by dt seconds and queues crossed signals.
func (a *Animation) Update(dt float64) {
	if !a.enabled || a.ended || dt <= 0 {
		return
	}
	length := a.clip.Length
	prev := a.time
	a.time += dt * a.speed
	if length <= 0 {
		a.time = 0
		a.ended = !a.clip.Looping
		return
	}
	if a.time < length {
		a.emit(prev, a.time)
		return
	}
	if !a.clip.Looping {
		a.emit(prev, length)
		a.time = length
		a.ended = true
		return
	}
	a.emit(prev, length)
	for a.time >= length {
		a.time -= length
		limit := a.time
		if limit > length {
			limit = length
		}
		a.emit(-1, limit)
	}
}

// Pose samples every track at the current time.
func (a *Animation) Pose() Pose {
	p := make(Pose, len(a.clip.Tracks))
	for _, tr := range a.clip.Tracks {
		if len(tr.Keys) == 0 {
			continue
		}
		p[tr.Bone] = sample(tr.Keys, a.time)
	}
	return p
}

func sample(keys []Keyframe, t float64) Transform {
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	switch {
	case i == 0:
		return keys[0].Transform
	case i == len(keys):
		return keys[len(keys)-1].Transform
	}
	a, b := keys[i-1], keys[i]
	span := b.Time - a.Time
	if span <= 0 {
		return b.Transform
	}
	return Lerp(a.Transform, b.Transform, (t-a.Time)/span)
}
