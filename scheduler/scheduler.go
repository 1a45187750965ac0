// Package scheduler runs the simulation's fixed-step frame loops alongside
// periodic and one-shot housekeeping tasks.
package scheduler

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TaskFn is the function signature for periodic and delayed tasks.
type TaskFn = func()

// StepFn advances a loop by one fixed step of dt seconds.
type StepFn func(dt float64)

// maxCatchUp bounds the steps a loop runs to recover from a stall; older
// backlog is discarded.
const maxCatchUp = 5

// LoopStats describes a running loop.
type LoopStats struct {
	Steps   uint64
	Skipped uint64
	Panics  uint64
}

// Scheduler manages loops, periodic tasks and delayed tasks.
type Scheduler struct {
	mu      sync.Mutex
	tickers map[string]*tickerEntry
	loops   map[string]*loopEntry
	timers  map[string]*time.Timer
	logger  *zap.Logger
	stopCh  chan struct{}
	once    sync.Once
}

type tickerEntry struct {
	stopCh chan struct{}
}

type loopEntry struct {
	stopCh  chan struct{}
	steps   atomic.Uint64
	skipped atomic.Uint64
	panics  atomic.Uint64
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		tickers: make(map[string]*tickerEntry),
		loops:   make(map[string]*loopEntry),
		timers:  make(map[string]*time.Timer),
		stopCh:  make(chan struct{}),
		logger:  logger,
	}
}

// guard runs fn, logging and swallowing a panic. It reports whether fn
// panicked.
func (s *Scheduler) guard(kind, name string, fn func()) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			s.logger.Error("scheduler "+kind+" panicked",
				zap.String("task", name),
				zap.Any("recover", r))
		}
	}()
	fn()
	return false
}

// AddLoop runs fn at a fixed step. Wall-clock time is accumulated and
// consumed in whole steps so the simulation advances deterministically even
// when the ticker jitters. If a loop with the same name exists, it is
// replaced.
func (s *Scheduler) AddLoop(name string, step time.Duration, fn StepFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.loops[name]; ok {
		close(old.stopCh)
	}
	entry := &loopEntry{stopCh: make(chan struct{})}
	s.loops[name] = entry

	go func() {
		ticker := time.NewTicker(step)
		defer ticker.Stop()
		dt := step.Seconds()
		last := time.Now()
		var acc time.Duration
		for {
			select {
			case now := <-ticker.C:
				acc += now.Sub(last)
				last = now
				n := 0
				for acc >= step && n < maxCatchUp {
					if s.guard("loop", name, func() { fn(dt) }) {
						entry.panics.Add(1)
					}
					entry.steps.Add(1)
					acc -= step
					n++
				}
				if acc >= step {
					entry.skipped.Add(uint64(acc / step))
					acc %= step
				}
			case <-entry.stopCh:
				return
			case <-s.stopCh:
				return
			}
		}
	}()
	s.logger.Info("scheduler loop registered", zap.String("name", name), zap.Duration("step", step))
}

// LoopStats returns the counters of a loop.
func (s *Scheduler) LoopStats(name string) (LoopStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.loops[name]
	if !ok {
		return LoopStats{}, false
	}
	return LoopStats{Steps: e.steps.Load(), Skipped: e.skipped.Load(), Panics: e.panics.Load()}, true
}

// AddTicker registers a task to run on a fixed interval.
// If a task with the same name exists, it is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tickers[name]; ok {
		close(old.stopCh)
	}
	entry := &tickerEntry{stopCh: make(chan struct{})}
	s.tickers[name] = entry

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.guard("task", name, fn)
			case <-entry.stopCh:
				return
			case <-s.stopCh:
				return
			}
		}
	}()
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
}

// AddDelay runs fn once after the given delay. Scheduling a delay under an
// existing name cancels the pending one, which makes it usable as a
// debouncer.
func (s *Scheduler) AddDelay(name string, delay time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[name]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		defer func() {
			s.mu.Lock()
			if s.timers[name] == t {
				delete(s.timers, name)
			}
			s.mu.Unlock()
		}()
		select {
		case <-s.stopCh:
			return
		default:
		}
		s.guard("delay", name, fn)
	})
	s.timers[name] = t
}

// Remove stops and removes a loop, ticker or delay task by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.loops[name]; ok {
		close(entry.stopCh)
		delete(s.loops, name)
	}
	if entry, ok := s.tickers[name]; ok {
		close(entry.stopCh)
		delete(s.tickers, name)
	}
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
}

// Stop stops all tasks.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		for _, t := range s.timers {
			t.Stop()
		}
		s.mu.Unlock()
	})
}

// List returns the sorted names of all registered loops and tickers.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tickers)+len(s.loops))
	for name := range s.loops {
		names = append(names, name)
	}
	for name := range s.tickers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
