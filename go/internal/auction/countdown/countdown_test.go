package countdown

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func newTestTimer(duration time.Duration) (*Timer, *clockwork.FakeClock, chan uint64) {
	fc := clockwork.NewFakeClock()
	ticks := make(chan uint64, 16)
	timer := New(fc, duration, time.Second, func(epoch uint64) {
		ticks <- epoch
	})
	return timer, fc, ticks
}

func waitTick(t *testing.T, ticks <-chan uint64) uint64 {
	t.Helper()
	select {
	case epoch := <-ticks:
		return epoch
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
		return 0
	}
}

func expectNoTick(t *testing.T, ticks <-chan uint64) {
	t.Helper()
	select {
	case epoch := <-ticks:
		t.Fatalf("unexpected tick with epoch %d", epoch)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNew_StartsIdle(t *testing.T) {
	timer, fc, ticks := newTestTimer(3 * time.Second)

	check.Equal(t, StateIdle, timer.State())
	check.Equal(t, 3*time.Second, timer.Remaining())

	fc.Advance(5 * time.Second)
	expectNoTick(t, ticks)
}

func TestRestart_CountsDownToExpiry(t *testing.T) {
	timer, fc, ticks := newTestTimer(3 * time.Second)
	timer.Restart()
	check.Equal(t, StateRunning, timer.State())

	for i := 0; i < 2; i++ {
		fc.Advance(time.Second)
		expired, ok := timer.Tick(waitTick(t, ticks))
		check.True(t, ok)
		check.False(t, expired)
	}
	check.Equal(t, time.Second, timer.Remaining())

	fc.Advance(time.Second)
	expired, ok := timer.Tick(waitTick(t, ticks))
	check.True(t, ok)
	check.True(t, expired)
	check.Equal(t, StateExpired, timer.State())
	check.Equal(t, time.Duration(0), timer.Remaining())

	// Nothing is scheduled after expiry, so it cannot fire twice.
	fc.Advance(5 * time.Second)
	expectNoTick(t, ticks)
}

func TestTick_StaleEpochIgnored(t *testing.T) {
	timer, fc, ticks := newTestTimer(10 * time.Second)
	timer.Restart()

	fc.Advance(time.Second)
	stale := waitTick(t, ticks)

	// A bid arrives before the fired tick is handled.
	timer.Restart()
	expired, ok := timer.Tick(stale)
	check.False(t, ok)
	check.False(t, expired)
	check.Equal(t, 10*time.Second, timer.Remaining())
}

func TestStopAndResume_RetainRemaining(t *testing.T) {
	timer, fc, ticks := newTestTimer(10 * time.Second)
	timer.Restart()

	for i := 0; i < 4; i++ {
		fc.Advance(time.Second)
		_, ok := timer.Tick(waitTick(t, ticks))
		assert.True(t, ok)
	}

	timer.Stop()
	check.Equal(t, StateStopped, timer.State())
	check.Equal(t, 6*time.Second, timer.Remaining())
	fc.Advance(3 * time.Second)
	expectNoTick(t, ticks)

	check.True(t, timer.Resume())
	check.Equal(t, StateRunning, timer.State())
	fc.Advance(time.Second)
	_, ok := timer.Tick(waitTick(t, ticks))
	check.True(t, ok)
	check.Equal(t, 5*time.Second, timer.Remaining())
}

func TestResume_OnlyFromStopped(t *testing.T) {
	timer, _, _ := newTestTimer(10 * time.Second)
	check.False(t, timer.Resume())

	timer.Restart()
	check.False(t, timer.Resume())
}

func TestArm_ResetsToIdle(t *testing.T) {
	timer, fc, ticks := newTestTimer(10 * time.Second)
	timer.Restart()
	fc.Advance(time.Second)
	epoch := waitTick(t, ticks)

	timer.Arm()
	check.Equal(t, StateIdle, timer.State())
	check.Equal(t, 10*time.Second, timer.Remaining())
	_, ok := timer.Tick(epoch)
	check.False(t, ok)
}

func TestReset(t *testing.T) {
	timer, fc, ticks := newTestTimer(10 * time.Second)
	timer.Restart()
	fc.Advance(time.Second)
	_, ok := timer.Tick(waitTick(t, ticks))
	assert.True(t, ok)
	stale := timer.Snapshot()
	check.Equal(t, 9*time.Second, stale.Remaining)

	timer.Reset(true)
	check.Equal(t, Snapshot{State: StateRunning, Remaining: 10 * time.Second}, timer.Snapshot())
	fc.Advance(time.Second)
	_, ok = timer.Tick(waitTick(t, ticks))
	check.True(t, ok)
	check.Equal(t, 9*time.Second, timer.Remaining())

	timer.Reset(false)
	check.Equal(t, Snapshot{State: StateStopped, Remaining: 10 * time.Second}, timer.Snapshot())
	check.True(t, timer.Resume())
	check.Equal(t, StateRunning, timer.State())
}
