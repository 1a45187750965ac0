// Package redis publishes bot messages over Redis pub/sub so observers in
// other processes can follow a match.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Delivery is one message received on a channel.
type Delivery struct {
	Channel string
	Payload string
}

// PubSub wraps a Redis client.
type PubSub struct {
	client *goredis.Client
}

// NewPubSub connects and pings Redis.
func NewPubSub(cfg Config) (*PubSub, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return &PubSub{client: client}, nil
}

// Publish sends payload on channel.
func (r *PubSub) Publish(ctx context.Context, channel, payload string) error {
	return r.client.Publish(ctx, channel, payload).Err()
}

// Subscribe listens on channels until cancel is called.
func (r *PubSub) Subscribe(ctx context.Context, channels ...string) (<-chan *Delivery, func(), error) {
	sub := r.client.Subscribe(ctx, channels...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis: subscribe: %w", err)
	}
	out := make(chan *Delivery, 256)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			out <- &Delivery{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()
	return out, func() { _ = sub.Close() }, nil
}

// Close releases the client.
func (r *PubSub) Close() error {
	return r.client.Close()
}
