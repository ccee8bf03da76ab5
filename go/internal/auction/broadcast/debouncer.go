package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/liveauction/go/internal/auction/engine"
	"github.com/mcdev12/liveauction/go/internal/auction/metrics"
	"github.com/rs/zerolog/log"
)

const (
	DefaultWindow         = 150 * time.Millisecond
	defaultPublishTimeout = 5 * time.Second
)

// Debouncer sits between the engine and the sinks. The first snapshot after
// a delivery opens a window of fixed length. Later snapshots replace the
// pending one but do not push the window back, so a steady stream of
// commits still reaches the sinks at least once per window and no snapshot
// waits longer than the window. Delivery happens off the engine's goroutine
// and never goes backwards in version.
type Debouncer struct {
	clock   clockwork.Clock
	window  time.Duration
	sink    Sink
	metrics metrics.Collector

	mu        sync.Mutex
	pending   *engine.Snapshot
	coalesced int
	timer     clockwork.Timer
	closed    bool

	deliverMu sync.Mutex
	delivered uint64
	sent      bool
}

func NewDebouncer(clock clockwork.Clock, window time.Duration, sink Sink, collector metrics.Collector) *Debouncer {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &Debouncer{
		clock:   clock,
		window:  window,
		sink:    sink,
		metrics: collector,
	}
}

// Publish implements engine.Publisher. It never blocks on the sinks.
func (d *Debouncer) Publish(s *engine.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if d.pending != nil {
		d.coalesced++
	}
	d.pending = s
	// the window is anchored to the first pending snapshot
	if d.timer == nil {
		d.timer = d.clock.AfterFunc(d.window, d.Flush)
	}
}

// Flush delivers the pending snapshot now, if there is one.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	s := d.pending
	coalesced := d.coalesced
	d.pending = nil
	d.coalesced = 0
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if s == nil {
		return
	}
	d.metrics.RecordCoalesced(coalesced)
	d.deliver(s)
}

// Close flushes the pending snapshot and drops everything after it.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.Flush()
}

func (d *Debouncer) deliver(s *engine.Snapshot) {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()
	if d.sent && s.Version <= d.delivered {
		return
	}

	env, err := NewEnvelope(s)
	if err != nil {
		log.Error().Err(err).Uint64("version", s.Version).Msg("failed to encode snapshot")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultPublishTimeout)
	defer cancel()
	if err := d.sink.Publish(ctx, env); err != nil {
		log.Debug().Err(err).Uint64("version", s.Version).Msg("snapshot delivery incomplete")
	}
	d.delivered = s.Version
	d.sent = true
}
