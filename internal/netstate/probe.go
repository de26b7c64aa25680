// Package netstate provides network reachability probing for the offline core.
package netstate

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// State is a point-in-time connectivity snapshot.
type State struct {
	Connected         bool `json:"connected"`
	InternetReachable bool `json:"internet_reachable"`
}

// Online reports whether the remote service is worth attempting.
func (s State) Online() bool {
	return s.Connected && s.InternetReachable
}

// Probe reports current connectivity, polled before each mutating action
// and watched by the background scheduler.
type Probe interface {
	// State returns the current connectivity state.
	State(ctx context.Context) State

	// Subscribe registers a callback invoked on state changes.
	// The returned function unsubscribes it.
	Subscribe(fn func(State)) (unsubscribe func())
}

// HTTPProbe determines reachability by issuing HEAD requests against the
// remote service's health endpoint.
type HTTPProbe struct {
	probeURL string
	client   *http.Client

	mu        sync.Mutex
	last      State
	lastAt    time.Time
	ttl       time.Duration
	nextSubID int
	subs      map[int]func(State)
}

// NewHTTPProbe creates a probe against probeURL. Results are cached for
// ttl so rapid UI actions do not each pay a network round trip.
func NewHTTPProbe(probeURL string, ttl time.Duration) *HTTPProbe {
	return &HTTPProbe{
		probeURL: probeURL,
		client:   &http.Client{Timeout: 5 * time.Second},
		ttl:      ttl,
		subs:     make(map[int]func(State)),
	}
}

// State returns the current connectivity state, re-probing when the cached
// result has expired.
func (p *HTTPProbe) State(ctx context.Context) State {
	p.mu.Lock()
	if time.Since(p.lastAt) < p.ttl {
		state := p.last
		p.mu.Unlock()
		return state
	}
	p.mu.Unlock()

	state := p.check(ctx)
	p.setState(state)
	return state
}

// Subscribe registers a callback invoked on state changes.
func (p *HTTPProbe) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Watch polls connectivity until ctx is done, notifying subscribers on
// transitions.
func (p *HTTPProbe) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.setState(p.check(ctx))
		}
	}
}

// check performs a single reachability probe.
func (p *HTTPProbe) check(ctx context.Context) State {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.probeURL, nil)
	if err != nil {
		return State{}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		// Transport-level failure: assume no connectivity at all. A finer
		// distinction between link-down and internet-unreachable is not
		// available from a single probe.
		return State{}
	}
	resp.Body.Close()

	return State{Connected: true, InternetReachable: true}
}

// setState records a new state and notifies subscribers on change.
func (p *HTTPProbe) setState(state State) {
	p.mu.Lock()
	changed := state != p.last
	p.last = state
	p.lastAt = time.Now()
	subs := make([]func(State), 0, len(p.subs))
	if changed {
		for _, fn := range p.subs {
			subs = append(subs, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// StaticProbe is a manually controlled probe for tests and the smoke harness.
type StaticProbe struct {
	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

// NewStaticProbe creates a StaticProbe in the given state.
func NewStaticProbe(online bool) *StaticProbe {
	return &StaticProbe{
		state: State{Connected: online, InternetReachable: online},
		subs:  make(map[int]func(State)),
	}
}

// State returns the configured state.
func (p *StaticProbe) State(ctx context.Context) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetOnline flips the configured state and notifies subscribers.
func (p *StaticProbe) SetOnline(online bool) {
	p.mu.Lock()
	p.state = State{Connected: online, InternetReachable: online}
	subs := make([]func(State), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	state := p.state
	p.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// Subscribe registers a callback invoked on state changes.
func (p *StaticProbe) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.next
	p.next++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}
