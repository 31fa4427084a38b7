// Package analytics emits usage events. Emission is strictly fire-and-forget:
// the request path never waits on a sink and never fails because one is down.
package analytics

import (
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/logging"
)

// Event is one analytics record.
type Event struct {
	Name       string                 `json:"event"`
	Attributes map[string]interface{} `json:"properties,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Sink accepts events. Emit must never block the caller.
type Sink interface {
	Emit(name string, attributes map[string]interface{})
	Close() error
}

// deliverer is the backend half of a buffered sink: it does the actual I/O.
type deliverer interface {
	deliver(event Event)
	close() error
}

// bufferedSink decouples request handling from delivery with a bounded
// channel. When the buffer is full events are dropped and counted; dropping
// telemetry beats delaying a listener.
type bufferedSink struct {
	events  chan Event
	done    chan struct{}
	backend deliverer
	dropped int64
}

const bufferSize = 256

func newBufferedSink(backend deliverer) *bufferedSink {
	s := &bufferedSink{
		events:  make(chan Event, bufferSize),
		done:    make(chan struct{}),
		backend: backend,
	}
	go s.drain()
	return s
}

func (s *bufferedSink) Emit(name string, attributes map[string]interface{}) {
	event := Event{Name: name, Attributes: attributes, Timestamp: time.Now().UTC()}
	select {
	case s.events <- event:
	default:
		s.dropped++
		logging.Debug("Analytics buffer full, dropping event", "event", name)
	}
}

func (s *bufferedSink) drain() {
	for event := range s.events {
		s.backend.deliver(event)
	}
	close(s.done)
}

func (s *bufferedSink) Close() error {
	close(s.events)
	<-s.done
	return s.backend.close()
}

// NoopSink discards everything; the default when analytics is not configured.
type NoopSink struct{}

func (NoopSink) Emit(name string, attributes map[string]interface{}) {}

func (NoopSink) Close() error { return nil }
