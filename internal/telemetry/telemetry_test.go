package telemetry

import "testing"

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	r.Incr(CounterQueuedRequests)
	r.Incr(CounterQueuedRequests)
	r.Add(CounterBytesDownloaded, 1024)

	snap := r.Snapshot()
	if snap[CounterQueuedRequests] != 2 {
		t.Errorf("Expected 2 queued requests, got %d", snap[CounterQueuedRequests])
	}
	if snap[CounterBytesDownloaded] != 1024 {
		t.Errorf("Expected 1024 bytes, got %d", snap[CounterBytesDownloaded])
	}

	// Snapshot is a copy; mutating it does not affect the recorder.
	snap[CounterQueuedRequests] = 99
	if r.Snapshot()[CounterQueuedRequests] != 2 {
		t.Error("Expected snapshot mutation to not affect recorder")
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder

	// All operations on a nil recorder are no-ops.
	r.Incr(CounterCacheHits)
	r.Add(CounterBytesDownloaded, 10)

	if r.Snapshot() != nil {
		t.Error("Expected nil snapshot from nil recorder")
	}
}
