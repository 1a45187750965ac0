package message

import (
	"context"

	"github.com/kasuganosora/botbrain/message/local"
	msgredis "github.com/kasuganosora/botbrain/message/redis"
)

// Delivery is a received bus message.
type Delivery struct {
	Channel string
	Payload string
}

// PubSub is the bus republished messages travel on.
type PubSub interface {
	Publish(ctx context.Context, channel, payload string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Delivery, func(), error)
}

// BusConfig selects and tunes the bus backend.
type BusConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	LocalBuf      int    `mapstructure:"local_buf"`
	Prefix        string `mapstructure:"prefix"`
}

// NewPubSub returns a Redis bus when RedisAddr is set, otherwise an
// in-process one.
func NewPubSub(cfg BusConfig) (PubSub, error) {
	if cfg.RedisAddr != "" {
		rps, err := msgredis.NewPubSub(msgredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return &redisBus{ps: rps}, nil
	}
	return &localBus{ps: local.NewPubSub(cfg.LocalBuf)}, nil
}

type localBus struct {
	ps *local.PubSub
}

func (b *localBus) Publish(ctx context.Context, channel, payload string) error {
	return b.ps.Publish(ctx, channel, payload)
}

func (b *localBus) Subscribe(ctx context.Context, channels ...string) (<-chan *Delivery, func(), error) {
	in, cancel, err := b.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	return relay(in, func(d *local.Delivery) *Delivery {
		return &Delivery{Channel: d.Channel, Payload: d.Payload}
	}), cancel, nil
}

type redisBus struct {
	ps *msgredis.PubSub
}

func (b *redisBus) Publish(ctx context.Context, channel, payload string) error {
	return b.ps.Publish(ctx, channel, payload)
}

func (b *redisBus) Subscribe(ctx context.Context, channels ...string) (<-chan *Delivery, func(), error) {
	in, cancel, err := b.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	return relay(in, func(d *msgredis.Delivery) *Delivery {
		return &Delivery{Channel: d.Channel, Payload: d.Payload}
	}), cancel, nil
}

func relay[T any](in <-chan T, conv func(T) *Delivery) <-chan *Delivery {
	out := make(chan *Delivery, cap(in))
	go func() {
		defer close(out)
		for d := range in {
			out <- conv(d)
		}
	}()
	return out
}
