// Package countdown implements the per-lot bidding clock.
//
// The timer never mutates anything outside itself. Each scheduled tick
// carries the epoch it was scheduled under; the owner hands that epoch back
// to Tick, which ignores it if the timer has been stopped, restarted or
// re-armed in the meantime.
package countdown

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// State is the countdown's lifecycle state.
type State string

const (
	StateIdle    State = "idle"    // lot is live, no bid yet
	StateRunning State = "running" // counting down
	StateExpired State = "expired" // reached zero; terminal until re-armed
	StateStopped State = "stopped" // halted, remaining time retained
)

// Snapshot captures the observable state of a timer.
type Snapshot struct {
	State     State         `json:"state"`
	Remaining time.Duration `json:"remaining"`
}

// TickFunc receives the epoch of a fired tick. It runs on its own goroutine.
type TickFunc func(epoch uint64)

// Timer is a single logical countdown. It is not safe for concurrent use:
// the owner must serialize every call, including the Tick it makes from a
// TickFunc.
type Timer struct {
	clock    clockwork.Clock
	duration time.Duration
	interval time.Duration
	onTick   TickFunc

	state     State
	remaining time.Duration
	epoch     uint64
	pending   clockwork.Timer
}

// New creates an idle timer that counts down duration in interval steps.
func New(clock clockwork.Clock, duration, interval time.Duration, onTick TickFunc) *Timer {
	return &Timer{
		clock:     clock,
		duration:  duration,
		interval:  interval,
		onTick:    onTick,
		state:     StateIdle,
		remaining: duration,
	}
}

// Arm puts the timer back to Idle with the full duration.
func (t *Timer) Arm() {
	t.cancel()
	t.state = StateIdle
	t.remaining = t.duration
}

// Restart starts counting down from the full duration. Bids reset the clock,
// they do not extend it.
func (t *Timer) Restart() {
	t.cancel()
	t.state = StateRunning
	t.remaining = t.duration
	t.schedule()
}

// Stop halts the countdown and keeps the remaining time.
func (t *Timer) Stop() {
	t.cancel()
	t.state = StateStopped
}

// Resume continues a stopped countdown from where it stopped.
func (t *Timer) Resume() bool {
	if t.state != StateStopped || t.remaining <= 0 {
		return false
	}
	t.cancel()
	t.state = StateRunning
	t.schedule()
	return true
}

// Reset puts the full duration back on the clock. It counts down when run
// is set and is otherwise left Stopped.
func (t *Timer) Reset(run bool) {
	if run {
		t.Restart()
		return
	}
	t.cancel()
	t.state = StateStopped
	t.remaining = t.duration
}

// Tick advances the countdown by one interval if epoch is current.
// ok is false for stale ticks. expired is true exactly once, on the tick
// that takes the timer to zero.
func (t *Timer) Tick(epoch uint64) (expired bool, ok bool) {
	if epoch != t.epoch || t.state != StateRunning {
		return false, false
	}
	t.pending = nil
	t.remaining -= t.interval
	if t.remaining <= 0 {
		t.remaining = 0
		t.state = StateExpired
		t.epoch++
		return true, true
	}
	t.schedule()
	return false, true
}

func (t *Timer) State() State { return t.state }

func (t *Timer) Remaining() time.Duration { return t.remaining }

// Snapshot returns the current state and remaining time
func (t *Timer) Snapshot() Snapshot {
	return Snapshot{State: t.state, Remaining: t.remaining}
}

func (t *Timer) schedule() {
	epoch := t.epoch
	t.pending = t.clock.AfterFunc(t.interval, func() {
		t.onTick(epoch)
	})
}

// cancel stops any pending tick and invalidates one that already fired but
// has not been handed back to Tick yet.
func (t *Timer) cancel() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.epoch++
}
