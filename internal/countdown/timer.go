// Package countdown computes the time remaining until a target instant and
// drives a periodic refresh of four display targets until expiry or stop.
package countdown

import (
	"sync"
	"time"
)

// DefaultInterval is the refresh period of a running Timer.
const DefaultInterval = time.Second

// State is the run state of a Timer.
type State string

const (
	// StateStopped indicates no periodic refresh is registered.
	StateStopped State = "stopped"
	// StateRunning indicates a periodic refresh is registered.
	StateRunning State = "running"
)

// Option configures a Timer.
type Option func(*Timer)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// WithInterval sets the refresh period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithRefreshHook registers fn to run after every refresh, once the display
// targets have been written. fn runs inside the refresh and must not call
// Start or Stop.
func WithRefreshHook(fn func(Remaining)) Option {
	return func(t *Timer) { t.onRefresh = fn }
}

// Timer counts down to a fixed target instant. It is safe for concurrent use.
type Timer struct {
	target    time.Time
	targets   Targets
	clock     Clock
	interval  time.Duration
	onRefresh func(Remaining)

	mu         sync.Mutex
	state      State
	quit       chan struct{} // non-nil exactly while running
	generation uint64

	expireOnce sync.Once
	expired    chan struct{}
}

// New returns a stopped Timer for target that writes into targets.
// It returns ErrMissingTarget if any of the four targets is nil.
// A target in the past is valid: the first refresh expires the timer.
func New(target time.Time, targets Targets, opts ...Option) (*Timer, error) {
	if err := targets.validate(); err != nil {
		return nil, err
	}
	t := &Timer{
		target:   target,
		targets:  targets,
		clock:    SystemClock{},
		interval: DefaultInterval,
		state:    StateStopped,
		expired:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Target returns the instant the timer counts down to.
func (t *Timer) Target() time.Time {
	return t.target
}

// State returns the current run state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Expired returns a channel that is closed the first time a refresh detects
// that the target has been reached.
func (t *Timer) Expired() <-chan struct{} {
	return t.expired
}

// Remaining computes the time left without touching the display targets.
func (t *Timer) Remaining() Remaining {
	return Compute(t.target, t.clock.Now())
}

// Start refreshes the display immediately and then once per interval.
// Calling Start on a running timer does nothing.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateRunning {
		return
	}

	t.state = StateRunning
	t.quit = make(chan struct{})
	t.generation++

	if !t.refreshLocked() {
		return
	}

	go t.run(t.clock.NewTicker(t.interval), t.quit, t.generation)
}

// Stop cancels the periodic refresh. It is a no-op on a stopped timer.
// No display target is written by this registration after Stop returns.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// stopLocked releases the refresh loop. Caller must hold t.mu.
func (t *Timer) stopLocked() {
	if t.state != StateRunning {
		return
	}
	close(t.quit)
	t.quit = nil
	t.generation++
	t.state = StateStopped
}

// run delivers ticks until quit is closed.
func (t *Timer) run(ticker Ticker, quit <-chan struct{}, generation uint64) {
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C():
			if !t.tick(generation) {
				return
			}
		}
	}
}

// tick refreshes the display if the registration is still current.
// It returns false once the loop should exit.
func (t *Timer) tick(generation uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.generation != generation || t.state != StateRunning {
		return false
	}
	return t.refreshLocked()
}

// refreshLocked writes the remaining time to the targets and stops the timer
// on expiry. It returns false if the timer expired. Caller must hold t.mu.
func (t *Timer) refreshLocked() bool {
	r := Compute(t.target, t.clock.Now())

	t.targets.write(
		FormatUnit(r.Days),
		FormatUnit(r.Hours),
		FormatUnit(r.Minutes),
		FormatUnit(r.Seconds),
	)

	if r.Expired() {
		t.stopLocked()
		t.targets.write("00", "00", "00", "00")
		t.expireOnce.Do(func() { close(t.expired) })
	}

	if t.onRefresh != nil {
		t.onRefresh(r)
	}
	return !r.Expired()
}
