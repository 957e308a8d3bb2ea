package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State is the connection state of the listing service as last observed.
type State int

const (
	StateUnknown State = iota
	StateChecking
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a point-in-time copy of the tracker.
type Snapshot struct {
	State               State     `json:"state"`
	Connected           bool      `json:"connected"`
	DataSourceAvailable bool      `json:"data_source_available"`
	Failures            int       `json:"failures"`
	LastProbe           time.Time `json:"last_probe"`
	LastError           string    `json:"last_error,omitempty"`
}

// ProbeFunc checks the service. It reports whether the service's data
// source is available; an error means the service itself is unreachable.
type ProbeFunc func(ctx context.Context) (dataSource bool, err error)

// TransitionFunc observes settled state changes.
type TransitionFunc func(from, to State)

// Tracker keeps the connection state and the consecutive failure count.
type Tracker struct {
	probe    ProbeFunc
	interval time.Duration
	now      func() time.Time
	flight   singleflight.Group

	mu         sync.Mutex
	state      State
	settled    State
	dataSource bool
	failures   int
	lastProbe  time.Time
	lastErr    error
	listeners  []TransitionFunc
}

// NewTracker creates a tracker that probes at most once per interval
// through Ensure.
func NewTracker(probe ProbeFunc, interval time.Duration, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{probe: probe, interval: interval, now: now}
}

// OnTransition registers fn for settled state changes such as
// disconnected to connected. fn runs synchronously without the lock held.
func (t *Tracker) OnTransition(fn TransitionFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	s := Snapshot{
		State:               t.state,
		Connected:           t.state == StateConnected,
		DataSourceAvailable: t.state == StateConnected && t.dataSource,
		Failures:            t.failures,
		LastProbe:           t.lastProbe,
	}
	if t.lastErr != nil {
		s.LastError = t.lastErr.Error()
	}
	return s
}

// Ensure probes when the last probe is older than the interval and
// otherwise returns the current state.
func (t *Tracker) Ensure(ctx context.Context) Snapshot {
	if !t.stale() {
		return t.Snapshot()
	}
	return t.run(ctx, false)
}

// Check probes now.
func (t *Tracker) Check(ctx context.Context) Snapshot {
	return t.run(ctx, true)
}

func (t *Tracker) stale() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastProbe.IsZero() || t.now().Sub(t.lastProbe) >= t.interval
}

// run coalesces concurrent probes. The shared probe is detached from any
// one caller's cancellation; a caller whose ctx ends stops waiting.
func (t *Tracker) run(ctx context.Context, force bool) Snapshot {
	ch := t.flight.DoChan("probe", func() (any, error) {
		if !force && !t.stale() {
			return nil, nil
		}
		t.begin()
		dataSource, err := t.probe(context.WithoutCancel(ctx))
		if err != nil {
			t.settle(StateDisconnected, err, true)
		} else {
			t.mu.Lock()
			t.dataSource = dataSource
			t.mu.Unlock()
			t.settle(StateConnected, nil, true)
		}
		return nil, nil
	})

	select {
	case <-ch:
	case <-ctx.Done():
	}
	return t.Snapshot()
}

func (t *Tracker) begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateChecking
}

// RecordSuccess marks the service reachable and resets the failure count.
// It does not count as a probe.
func (t *Tracker) RecordSuccess() {
	t.settle(StateConnected, nil, false)
}

// RecordFailure marks the service unreachable and counts the failure.
// It does not count as a probe.
func (t *Tracker) RecordFailure(err error) {
	t.settle(StateDisconnected, err, false)
}

func (t *Tracker) settle(to State, err error, probed bool) {
	t.mu.Lock()
	from := t.settled
	t.state = to
	t.settled = to
	if probed {
		t.lastProbe = t.now()
	}
	t.lastErr = err
	if to == StateConnected {
		t.failures = 0
	} else {
		t.failures++
	}
	var listeners []TransitionFunc
	if from != to {
		listeners = append(listeners, t.listeners...)
	}
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}
}
