// Package broadcast carries engine snapshots to observers: it coalesces
// bursts of snapshots and fans each surviving one out to every sink.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/liveauction/go/internal/auction/engine"
	"github.com/mcdev12/liveauction/go/internal/auction/events"
	"github.com/mcdev12/liveauction/go/internal/auction/metrics"
	"github.com/rs/zerolog/log"
)

// Sink delivers one envelope somewhere observers can read it.
type Sink interface {
	Name() string
	Publish(ctx context.Context, env events.Envelope) error
}

// NewEnvelope wraps a snapshot for the wire
func NewEnvelope(s *engine.Snapshot) (events.Envelope, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return events.Envelope{}, fmt.Errorf("marshal snapshot %d: %w", s.Version, err)
	}
	eventType := s.Event
	if eventType == "" {
		eventType = events.EventTypeTimerTick
	}
	return events.Envelope{
		ID:        uuid.NewString(),
		Type:      eventType,
		Version:   s.Version,
		Timestamp: s.Timestamp,
		Data:      data,
	}, nil
}

// Fanout publishes to every sink in turn. A failing sink does not stop the
// others.
type Fanout struct {
	sinks   []Sink
	metrics metrics.Collector
}

func NewFanout(collector metrics.Collector, sinks ...Sink) *Fanout {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &Fanout{sinks: sinks, metrics: collector}
}

func (f *Fanout) Name() string { return "fanout" }

// Add registers another sink. Not safe to call once publishing started.
func (f *Fanout) Add(s Sink) {
	f.sinks = append(f.sinks, s)
}

func (f *Fanout) Publish(ctx context.Context, env events.Envelope) error {
	var errs []error
	for _, s := range f.sinks {
		start := time.Now()
		err := s.Publish(ctx, env)
		f.metrics.RecordPublish(s.Name(), err == nil, time.Since(start))
		if err != nil {
			log.Warn().
				Err(err).
				Str("sink", s.Name()).
				Str("event_type", string(env.Type)).
				Uint64("version", env.Version).
				Msg("failed to publish snapshot")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// LogSink writes a line per envelope at debug level
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Publish(ctx context.Context, env events.Envelope) error {
	log.Debug().
		Str("event_id", env.ID).
		Str("event_type", string(env.Type)).
		Uint64("version", env.Version).
		Int("size", len(env.Data)).
		Msg("snapshot published")
	return nil
}
