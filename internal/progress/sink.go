// Package progress carries pipeline events from the walker and hashers to
// whoever is watching: the CLI, a log, a metrics registry or a test.
package progress

import (
	"sync"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// Sink receives pipeline events. Implementations must be safe for
// concurrent use; hash workers emit from several goroutines.
type Sink interface {
	Emit(models.Event)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(models.Event)

// Emit calls f(e)
func (f SinkFunc) Emit(e models.Event) { f(e) }

type discard struct{}

func (discard) Emit(models.Event) {}

// Discard drops every event
var Discard Sink = discard{}

type multi []Sink

func (m multi) Emit(e models.Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi fans events out to every non-nil sink in order
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return Discard
	case 1:
		return out[0]
	}
	return out
}

// OrDiscard returns s, or Discard when s is nil
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Recorder keeps every event in arrival order
type Recorder struct {
	mu     sync.Mutex
	events []models.Event
}

// Emit appends e
func (r *Recorder) Emit(e models.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

// Warnings returns the recorded warning events
func (r *Recorder) Warnings() []models.WarningEvent {
	var out []models.WarningEvent
	for _, e := range r.Events() {
		if w, ok := e.(models.WarningEvent); ok {
			out = append(out, w)
		}
	}
	return out
}

// Progress returns the recorded progress events of a stage
func (r *Recorder) Progress(stage models.Stage) []models.ProgressEvent {
	var out []models.ProgressEvent
	for _, e := range r.Events() {
		if p, ok := e.(models.ProgressEvent); ok && p.Stage == stage {
			out = append(out, p)
		}
	}
	return out
}

// Complete returns the last complete event of a stage
func (r *Recorder) Complete(stage models.Stage) (models.CompleteEvent, bool) {
	events := r.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if c, ok := events[i].(models.CompleteEvent); ok && c.Stage == stage {
			return c, true
		}
	}
	return models.CompleteEvent{}, false
}
