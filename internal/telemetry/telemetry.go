// Package telemetry provides in-process counters for sync and cache activity.
// Nothing is transmitted anywhere; the Recorder is a diagnostic surface the
// UI layer can read. It is owned by the composition root and passed to the
// components that report into it, never a package-level singleton.
package telemetry

import "sync"

// Recorder accumulates event counters.
type Recorder struct {
	mu       sync.Mutex
	counters map[string]int64
}

// Counter names reported by the core.
const (
	CounterQueuedRequests  = "queued_requests"
	CounterReplayedItems   = "replayed_items"
	CounterReplayFailures  = "replay_failures"
	CounterLoggedMutations = "logged_mutations"
	CounterCacheHits       = "cache_hits"
	CounterCacheMisses     = "cache_misses"
	CounterCacheEvictions  = "cache_evictions"
	CounterBytesDownloaded = "bytes_downloaded"
)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		counters: make(map[string]int64),
	}
}

// Add increments a counter by n. A nil Recorder is a no-op, so components
// can treat telemetry as optional.
func (r *Recorder) Add(name string, n int64) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name] += n
}

// Incr increments a counter by one.
func (r *Recorder) Incr(name string) {
	r.Add(name, 1)
}

// Snapshot returns a copy of all counters.
func (r *Recorder) Snapshot() map[string]int64 {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int64, len(r.counters))
	for k, v := range r.counters {
		out[k] = v
	}
	return out
}
