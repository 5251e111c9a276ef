// Package rotation cycles a fixed list of strings on a timer, with a short
// transitional phase before each change so views can fade between values.
package rotation

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultPeriod is the time from one transition to the next.
	DefaultPeriod = 3 * time.Second
	// DefaultDelay is how long the transitional phase lasts.
	DefaultDelay = 500 * time.Millisecond
)

// Phase is the rotator's position in its two-state cycle.
type Phase int

const (
	Settled Phase = iota
	Transitioning
)

func (p Phase) String() string {
	switch p {
	case Settled:
		return "settled"
	case Transitioning:
		return "transitioning"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText renders the phase by name in JSON and templates.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of the rotator.
type State struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Phase Phase  `json:"phase"`
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The rotator never holds more than one
// pending callback.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler schedules callbacks on real time.
var SystemScheduler Scheduler = systemScheduler{}

// Option configures a Rotator.
type Option func(*Rotator) error

// WithPeriod sets the time between the start of two transitions.
func WithPeriod(d time.Duration) Option {
	return func(r *Rotator) error {
		if d <= 0 {
			return fmt.Errorf("period must be positive, got %s", d)
		}
		r.period = d
		return nil
	}
}

// WithDelay sets how long the transitional phase lasts.
func WithDelay(d time.Duration) Option {
	return func(r *Rotator) error {
		if d <= 0 {
			return fmt.Errorf("delay must be positive, got %s", d)
		}
		r.delay = d
		return nil
	}
}

// WithScheduler replaces the real-time scheduler, mostly for tests.
func WithScheduler(s Scheduler) Option {
	return func(r *Rotator) error {
		if s == nil {
			return errors.New("scheduler must not be nil")
		}
		r.sched = s
		return nil
	}
}

// Rotator is a Settled/Transitioning state machine. Every period it enters
// Transitioning; after the delay it advances the index and settles again.
//
// Timer callbacks run on their own goroutines, so all state sits behind mu.
// A callback carries the generation it was armed in and does nothing once
// Stop has moved the generation on.
type Rotator struct {
	texts  []string
	period time.Duration
	delay  time.Duration
	sched  Scheduler

	mu      sync.Mutex
	state   State
	pending Timer
	gen     uint64
	running bool
	stopped bool
	subs    map[int]chan State
	nextSub int
}

// New returns a stopped rotator showing texts[0].
func New(texts []string, opts ...Option) (*Rotator, error) {
	if len(texts) == 0 {
		return nil, errors.New("rotation needs at least one text")
	}

	r := &Rotator{
		texts:  append([]string(nil), texts...),
		period: DefaultPeriod,
		delay:  DefaultDelay,
		sched:  SystemScheduler,
		subs:   make(map[int]chan State),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.delay >= r.period {
		return nil, fmt.Errorf("delay %s must be shorter than period %s", r.delay, r.period)
	}

	r.state = State{Index: 0, Text: r.texts[0], Phase: Settled}
	return r, nil
}

// Texts returns the rotated strings in order.
func (r *Rotator) Texts() []string {
	return append([]string(nil), r.texts...)
}

// Period returns the time between transitions.
func (r *Rotator) Period() time.Duration { return r.period }

// Delay returns the length of the transitional phase.
func (r *Rotator) Delay() time.Duration { return r.delay }

// Start arms the first transition. It is a no-op on a running or stopped
// rotator.
func (r *Rotator) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running || r.stopped {
		return
	}
	r.running = true
	r.gen++
	r.arm(r.period, r.beginTransition)
}

// Stop cancels the pending callback and closes every subscription. A
// stopped rotator cannot be restarted.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	r.stopped = true
	r.running = false
	r.gen++
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
}

// State returns the current snapshot.
func (r *Rotator) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe returns a channel that receives the current state and then every
// change. Slow readers only see the latest state. The channel is closed by
// cancel or by Stop.
func (r *Rotator) Subscribe() (<-chan State, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan State, 1)
	ch <- r.state
	if r.stopped {
		close(ch)
		return ch, func() {}
	}

	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if sub, ok := r.subs[id]; ok {
				close(sub)
				delete(r.subs, id)
			}
		})
	}
	return ch, cancel
}

// arm must be called with mu held.
func (r *Rotator) arm(d time.Duration, next func(gen uint64)) {
	gen := r.gen
	r.pending = r.sched.AfterFunc(d, func() { next(gen) })
}

func (r *Rotator) beginTransition(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running || gen != r.gen {
		return
	}
	r.state.Phase = Transitioning
	r.arm(r.delay, r.advance)
	r.publish()
}

func (r *Rotator) advance(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running || gen != r.gen {
		return
	}
	r.state.Index = (r.state.Index + 1) % len(r.texts)
	r.state.Text = r.texts[r.state.Index]
	r.state.Phase = Settled
	r.arm(r.period-r.delay, r.beginTransition)
	r.publish()
}

// publish must be called with mu held.
func (r *Rotator) publish() {
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- r.state
	}
}
