package netstate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPProbeOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD probe, got %s", r.Method)
		}
	}))
	defer srv.Close()

	p := NewHTTPProbe(srv.URL, time.Minute)

	state := p.State(context.Background())
	if !state.Online() {
		t.Errorf("Expected online state, got %+v", state)
	}
}

func TestHTTPProbeOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := NewHTTPProbe(srv.URL, time.Minute)

	state := p.State(context.Background())
	if state.Online() {
		t.Errorf("Expected offline state, got %+v", state)
	}
	if state.Connected || state.InternetReachable {
		t.Errorf("Expected fully disconnected state, got %+v", state)
	}
}

func TestHTTPProbeCachesWithinTTL(t *testing.T) {
	probes := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes++
	}))
	defer srv.Close()

	p := NewHTTPProbe(srv.URL, time.Minute)
	ctx := context.Background()

	p.State(ctx)
	p.State(ctx)
	p.State(ctx)

	if probes != 1 {
		t.Errorf("Expected 1 probe within TTL, got %d", probes)
	}
}

func TestStaticProbeTransitions(t *testing.T) {
	p := NewStaticProbe(false)
	ctx := context.Background()

	if p.State(ctx).Online() {
		t.Error("Expected initial offline state")
	}

	var notified []State
	unsub := p.Subscribe(func(s State) {
		notified = append(notified, s)
	})

	p.SetOnline(true)
	if !p.State(ctx).Online() {
		t.Error("Expected online state after SetOnline(true)")
	}
	if len(notified) != 1 || !notified[0].Online() {
		t.Errorf("Expected one online notification, got %v", notified)
	}

	unsub()
	p.SetOnline(false)
	if len(notified) != 1 {
		t.Errorf("Expected no notification after unsubscribe, got %v", notified)
	}
}
