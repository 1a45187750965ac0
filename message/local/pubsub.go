// Package local is an in-process pub/sub used when no Redis is configured.
package local

import (
	"context"
	"sync"
	"sync/atomic"
)

// Delivery is one message received on a channel.
type Delivery struct {
	Channel string
	Payload string
}

type subscription struct {
	ch chan *Delivery
}

// PubSub fans messages out to subscribers. Slow subscribers lose messages
// instead of blocking the publisher.
type PubSub struct {
	mu      sync.RWMutex
	subs    map[string][]*subscription
	bufSize int
	dropped atomic.Int64
}

// NewPubSub creates a PubSub with the given per-subscriber buffer.
func NewPubSub(bufSize int) *PubSub {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &PubSub{subs: make(map[string][]*subscription), bufSize: bufSize}
}

// Publish delivers payload to every subscriber of channel.
func (ps *PubSub) Publish(_ context.Context, channel, payload string) error {
	d := &Delivery{Channel: channel, Payload: payload}
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, s := range ps.subs[channel] {
		select {
		case s.ch <- d:
		default:
			ps.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe returns a channel receiving messages of every listed channel and
// a cancel func that unsubscribes and closes it.
func (ps *PubSub) Subscribe(_ context.Context, channels ...string) (<-chan *Delivery, func(), error) {
	s := &subscription{ch: make(chan *Delivery, ps.bufSize)}
	ps.mu.Lock()
	for _, c := range channels {
		ps.subs[c] = append(ps.subs[c], s)
	}
	ps.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ps.mu.Lock()
			defer ps.mu.Unlock()
			for _, c := range channels {
				list := ps.subs[c]
				for i, other := range list {
					if other == s {
						ps.subs[c] = append(list[:i], list[i+1:]...)
						break
					}
				}
			}
			close(s.ch)
		})
	}
	return s.ch, cancel, nil
}

// Subscribers returns the subscriber count of channel.
func (ps *PubSub) Subscribers(channel string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subs[channel])
}

// Dropped returns how many deliveries were lost to full buffers.
func (ps *PubSub) Dropped() int64 { return ps.dropped.Load() }
