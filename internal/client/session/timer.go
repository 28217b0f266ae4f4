// Package session tracks how long the authenticated session has left. A
// Timer counts down to a persisted expiry, raises a warning shortly before
// it, and dispatches logout when it is reached.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/logging"
)

const (
	DefaultSessionLength    = 15 * time.Minute
	DefaultWarningThreshold = 30 * time.Second
	DefaultTickInterval     = time.Second
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseWarning
	PhaseExpired
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseWarning:
		return "warning"
	case PhaseExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// State is a point-in-time view of the timer. WarningVisible is only ever
// true while ExpiresAt is in the future and within the warning window.
type State struct {
	Phase          Phase
	ExpiresAt      time.Time
	WarningVisible bool
}

// Remaining returns the time left at now, or 0 when no session is counting down.
func (s State) Remaining(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

type Options struct {
	SessionLength    time.Duration
	WarningThreshold time.Duration
	TickInterval     time.Duration
	Now              func() time.Time

	// OnWarning fires once per countdown when the warning becomes visible.
	OnWarning func(ctx context.Context, remaining time.Duration)
	// OnExpired fires once per countdown when the expiry is reached. It is
	// expected to log the user out. When nil the timer only stops itself.
	OnExpired func(ctx context.Context)

	Logger logging.Logger
}

func (o *Options) applyDefaults() {
	if o.SessionLength <= 0 {
		o.SessionLength = DefaultSessionLength
	}
	if o.WarningThreshold <= 0 {
		o.WarningThreshold = DefaultWarningThreshold
	}
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
}

// Timer is the session countdown. At most one tick loop is live at a time:
// every new expiry replaces the loop, and a replaced loop exits without
// acting because its generation no longer matches.
type Timer struct {
	opts  Options
	store *ExpiryStore
	log   logging.Logger

	mu    sync.Mutex
	state State
	gen   uint64
	stop  chan struct{}

	loops atomic.Int32
}

func NewTimer(store *ExpiryStore, opts Options) *Timer {
	opts.applyDefaults()
	return &Timer{
		opts:  opts,
		store: store,
		log:   opts.Logger.With("component", "session-timer"),
	}
}

// Snapshot returns the current state.
func (t *Timer) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Reset starts a fresh countdown of SessionLength from now, persists the new
// expiry and hides the warning.
func (t *Timer) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiresAt := t.opts.Now().Add(t.opts.SessionLength)
	if err := t.store.Set(ctx, expiresAt); err != nil {
		return err
	}
	t.state = State{Phase: PhaseRunning, ExpiresAt: expiresAt}
	t.restartLocked()

	t.log.Debug(ctx, "session timer reset", "expires_at", expiresAt)
	return nil
}

// StayConnected is the user's answer to the expiry warning.
func (t *Timer) StayConnected(ctx context.Context) error {
	return t.Reset(ctx)
}

// Resume restores a countdown from the persisted expiry. It reports whether
// a session is still live; a missing or past expiry is removed.
func (t *Timer) Resume(ctx context.Context) (bool, error) {
	t.mu.Lock()

	expiresAt, ok, err := t.store.Get(ctx)
	if err != nil {
		t.mu.Unlock()
		return false, err
	}

	now := t.opts.Now()
	if !ok || !expiresAt.After(now) {
		t.stopLocked()
		t.state = State{Phase: PhaseIdle}
		err := t.store.Remove(ctx)
		t.mu.Unlock()
		return false, err
	}

	remaining := expiresAt.Sub(now)
	t.state = State{Phase: PhaseRunning, ExpiresAt: expiresAt}
	warn := remaining <= t.opts.WarningThreshold
	if warn {
		t.state.Phase = PhaseWarning
		t.state.WarningVisible = true
	}
	t.restartLocked()
	t.mu.Unlock()

	t.log.Info(ctx, "session resumed", "expires_at", expiresAt, "remaining", remaining.Round(time.Second))
	if warn && t.opts.OnWarning != nil {
		t.opts.OnWarning(ctx, remaining)
	}
	return true, nil
}

// Stop cancels the countdown, hides the warning and removes the persisted
// expiry. It is safe to call when idle.
func (t *Timer) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.state = State{Phase: PhaseIdle}
	return t.store.Remove(ctx)
}

// Close stops the tick loop but keeps the persisted expiry, so the session
// can be resumed by the next process.
func (t *Timer) Close() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
}

func (t *Timer) restartLocked() {
	t.stopLocked()
	t.gen++
	t.stop = make(chan struct{})
	t.loops.Add(1)
	go t.loop(t.gen, t.stop)
}

func (t *Timer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Timer) loop(gen uint64, stop <-chan struct{}) {
	defer t.loops.Add(-1)

	ticker := time.NewTicker(t.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.tick(context.Background(), gen) {
				return
			}
		}
	}
}

// tick evaluates the countdown once and reports whether the loop that
// owns gen should keep running.
func (t *Timer) tick(ctx context.Context, gen uint64) bool {
	t.mu.Lock()
	if gen != t.gen || t.stop == nil {
		t.mu.Unlock()
		return false
	}

	remaining := t.state.ExpiresAt.Sub(t.opts.Now())

	if remaining <= 0 {
		t.stopLocked()
		t.state.Phase = PhaseExpired
		t.state.WarningVisible = false
		t.mu.Unlock()

		t.log.Info(ctx, "session expired")
		if t.opts.OnExpired != nil {
			t.opts.OnExpired(ctx)
		} else if err := t.Stop(ctx); err != nil {
			t.log.Error(ctx, "failed to clear expired session", "error", err)
		}
		return false
	}

	// <= rather than == so a late or skipped tick cannot jump past the window.
	if remaining <= t.opts.WarningThreshold && !t.state.WarningVisible {
		t.state.WarningVisible = true
		t.state.Phase = PhaseWarning
		t.mu.Unlock()

		t.log.Info(ctx, "session about to expire", "remaining", remaining.Round(time.Second))
		if t.opts.OnWarning != nil {
			t.opts.OnWarning(ctx, remaining)
		}
		return true
	}

	t.mu.Unlock()
	return true
}
