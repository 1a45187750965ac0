package message

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Envelope is the bus representation of a Message.
type Envelope struct {
	ID      string          `json:"id"`
	Match   string          `json:"match"`
	Frame   uint64          `json:"frame"`
	Kind    Kind            `json:"kind"`
	SentAt  time.Time       `json:"sent_at"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher republishes dispatched messages on the bus, one channel per kind.
type Publisher struct {
	ps     PubSub
	prefix string
	match  string
	logger *zap.Logger
}

// NewPublisher returns a Publisher tagging envelopes with match.
func NewPublisher(ps PubSub, prefix, match string, logger *zap.Logger) *Publisher {
	if prefix == "" {
		prefix = "botbrain"
	}
	return &Publisher{ps: ps, prefix: prefix, match: match, logger: logger}
}

// Channel returns the bus channel of kind.
func (p *Publisher) Channel(k Kind) string {
	return p.prefix + "." + string(k)
}

// Channels returns the bus channels of every kind.
func (p *Publisher) Channels() []string {
	out := make([]string, len(Kinds))
	for i, k := range Kinds {
		out[i] = p.Channel(k)
	}
	return out
}

// Publish sends msgs produced during frame. Failures are logged and skipped.
func (p *Publisher) Publish(ctx context.Context, frame uint64, msgs []Message) {
	for _, m := range msgs {
		payload, err := json.Marshal(m)
		if err != nil {
			p.logger.Warn("message encode failed", zap.String("kind", string(m.Kind())), zap.Error(err))
			continue
		}
		env, err := json.Marshal(&Envelope{
			ID:      uuid.New().String(),
			Match:   p.match,
			Frame:   frame,
			Kind:    m.Kind(),
			SentAt:  time.Now(),
			Payload: payload,
		})
		if err != nil {
			continue
		}
		if err := p.ps.Publish(ctx, p.Channel(m.Kind()), string(env)); err != nil {
			p.logger.Warn("message publish failed", zap.String("kind", string(m.Kind())), zap.Error(err))
		}
	}
}

// Decode parses an envelope received from the bus.
func Decode(payload string) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, err
	}
	return &env, nil
}
