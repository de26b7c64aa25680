package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/tkwok/vidsum/core/internal/kv"
	"github.com/tkwok/vidsum/core/internal/logging"
	"github.com/tkwok/vidsum/core/internal/netstate"
	"github.com/tkwok/vidsum/core/internal/queue"
	"github.com/tkwok/vidsum/core/internal/store"
	syncpkg "github.com/tkwok/vidsum/core/internal/sync"
	"github.com/tkwok/vidsum/core/internal/synclog"
)

// setupScheduler builds a scheduler over an engine with empty collections,
// so a pass completes without touching the network.
func setupScheduler(t *testing.T, probe *netstate.StaticProbe) (*Scheduler, *syncpkg.Engine) {
	t.Helper()

	log := logging.New(io.Discard, logging.LevelError)
	mem := kv.NewMemoryStore()

	engine := syncpkg.NewEngine(syncpkg.EngineConfig{
		Probe:   probe,
		Queue:   queue.NewRequestQueue(mem, log),
		SyncLog: synclog.NewSyncLog(mem, log),
		Store:   store.NewSummaryStore(mem, nil, log),
		Logger:  log,
	})

	s := New(engine, probe, &Config{Interval: time.Hour}, log)
	return s, engine
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func TestKickRunsPassWhenOnline(t *testing.T) {
	probe := netstate.NewStaticProbe(true)
	s, engine := setupScheduler(t, probe)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	defer s.Stop()

	s.Kick()
	waitFor(t, func() bool { return engine.LastSync() != nil })
}

func TestKickSkippedWhileOffline(t *testing.T) {
	probe := netstate.NewStaticProbe(false)
	s, engine := setupScheduler(t, probe)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	defer s.Stop()

	s.Kick()
	time.Sleep(100 * time.Millisecond)

	if engine.LastSync() != nil {
		t.Error("Expected no sync pass while offline")
	}
}

func TestOnlineTransitionTriggersPass(t *testing.T) {
	probe := netstate.NewStaticProbe(false)
	s, engine := setupScheduler(t, probe)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	defer s.Stop()

	probe.SetOnline(true)
	waitFor(t, func() bool { return engine.LastSync() != nil })
}

func TestStopIsIdempotent(t *testing.T) {
	probe := netstate.NewStaticProbe(true)
	s, _ := setupScheduler(t, probe)

	s.Start(context.Background())
	s.Stop()
	s.Stop() // second stop must not panic or block

	// Restart is not supported; Start after Stop is a no-op on a closed
	// stop channel, so a fresh scheduler is required instead.
}
