// Package scheduler provides background draining of the offline queue and
// sync log whenever connectivity is confirmed.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/tkwok/vidsum/core/internal/logging"
	"github.com/tkwok/vidsum/core/internal/netstate"
	syncpkg "github.com/tkwok/vidsum/core/internal/sync"
)

// Scheduler periodically runs a sync pass while online, and runs one
// immediately on an offline-to-online transition.
type Scheduler struct {
	engine   *syncpkg.Engine
	probe    netstate.Probe
	interval time.Duration
	log      *logging.Logger

	stopCh    chan struct{}
	kickCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	unsub     func()
}

// Config holds scheduler configuration.
type Config struct {
	Interval time.Duration // how often to attempt a sync pass (default: 1 minute)
}

// DefaultConfig returns default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{Interval: time.Minute}
}

// New creates a Scheduler.
func New(engine *syncpkg.Engine, probe netstate.Probe, cfg *Config, log *logging.Logger) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logging.Get()
	}
	return &Scheduler{
		engine:   engine,
		probe:    probe,
		interval: cfg.Interval,
		log:      log,
		stopCh:   make(chan struct{}),
		kickCh:   make(chan struct{}, 1),
	}
}

// Start starts the background loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	// Connectivity regained means pending work can drain right away
	// instead of waiting out the ticker.
	s.unsub = s.probe.Subscribe(func(state netstate.State) {
		if state.Online() {
			s.Kick()
		}
	})

	s.wg.Add(1)
	go s.loop(ctx)

	s.log.Info("Background sync scheduler started",
		map[string]interface{}{"interval": s.interval.String()})
}

// Stop stops the background loop gracefully.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.unsub != nil {
		s.unsub()
	}
	close(s.stopCh)
	s.wg.Wait()

	s.log.Info("Background sync scheduler stopped")
}

// Kick requests an immediate sync pass. Safe to call at any time; a pass
// already pending coalesces.
func (s *Scheduler) Kick() {
	select {
	case s.kickCh <- struct{}{}:
	default:
	}
}

// loop runs sync passes on the ticker and on kicks until stopped.
func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runPass(ctx)
		case <-s.kickCh:
			s.runPass(ctx)
		}
	}
}

// runPass runs one sync pass when online and there is pending work.
func (s *Scheduler) runPass(ctx context.Context) {
	if !s.probe.State(ctx).Online() {
		return
	}
	if s.engine.Status() == syncpkg.StatusSyncing {
		return
	}

	if _, err := s.engine.Sync(ctx); err != nil {
		s.log.Warn("Background sync pass incomplete",
			map[string]interface{}{"error": err.Error()})
	}
}
