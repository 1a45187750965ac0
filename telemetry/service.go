// Package telemetry persists dispatched bot messages asynchronously in
// batches so the simulation loop never waits on the database.
package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kasuganosora/botbrain/message"
	"github.com/kasuganosora/botbrain/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Options tunes the writer.
type Options struct {
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 2 * time.Second
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 1024
	}
	return o
}

// Service writes combat events in batches.
type Service struct {
	db      *gorm.DB
	opts    Options
	ch      chan *model.CombatEvent
	stopCh  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Int64
	written atomic.Int64
	logger  *zap.Logger
}

// New creates a Service and starts its background worker.
func New(db *gorm.DB, opts Options, logger *zap.Logger) *Service {
	opts = opts.withDefaults()
	svc := &Service{
		db:     db,
		opts:   opts,
		ch:     make(chan *model.CombatEvent, opts.QueueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Record enqueues env for an async write. A full queue drops the event.
func (svc *Service) Record(env *message.Envelope) {
	ev := &model.CombatEvent{
		EventID: env.ID,
		MatchID: env.Match,
		Frame:   env.Frame,
		Kind:    string(env.Kind),
		Actor:   actorOf(env.Payload),
		Payload: datatypes.JSON(env.Payload),
		SentAt:  env.SentAt,
	}
	select {
	case svc.ch <- ev:
	default:
		svc.dropped.Add(1)
		svc.logger.Warn("telemetry queue full, dropping event",
			zap.String("kind", ev.Kind), zap.Uint64("frame", ev.Frame))
	}
}

// Follow records every envelope received on channels until ctx ends or the
// subscription closes.
func (svc *Service) Follow(ctx context.Context, ps message.PubSub, channels ...string) error {
	deliveries, cancel, err := ps.Subscribe(ctx, channels...)
	if err != nil {
		return err
	}
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				env, err := message.Decode(d.Payload)
				if err != nil {
					svc.logger.Warn("telemetry: bad envelope", zap.String("channel", d.Channel), zap.Error(err))
					continue
				}
				svc.Record(env)
			}
		}
	}()
	return nil
}

// Summarize writes the final tally of a match.
func (svc *Service) Summarize(sum *model.MatchSummary) error {
	return svc.db.Create(sum).Error
}

// Dropped returns the number of events lost to a full queue.
func (svc *Service) Dropped() int64 { return svc.dropped.Load() }

// Written returns the number of events persisted so far.
func (svc *Service) Written() int64 { return svc.written.Load() }

// Stop flushes remaining events and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	svc.once.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(svc.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]*model.CombatEvent, 0, svc.opts.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("telemetry batch write failed", zap.Int("events", len(batch)), zap.Error(err))
		} else {
			svc.written.Add(int64(len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev := <-svc.ch:
			batch = append(batch, ev)
			if len(batch) >= svc.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case ev := <-svc.ch:
					batch = append(batch, ev)
				default:
					flush()
					return
				}
			}
		}
	}
}

// actorOf extracts the subject actor of a payload, 0 when it has none.
func actorOf(payload json.RawMessage) int {
	var p struct {
		Actor   *int `json:"actor"`
		Shooter *int `json:"shooter"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return 0
	}
	switch {
	case p.Actor != nil:
		return *p.Actor
	case p.Shooter != nil:
		return *p.Shooter
	}
	return 0
}
