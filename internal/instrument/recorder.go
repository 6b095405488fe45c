package instrument

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Recorder keeps the most recent spans in a bounded in-memory ring.
// Oldest events are dropped once the buffer is full.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	next   int
	filled bool
}

// NewRecorder creates a recorder holding up to size events.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = 500
	}
	return &Recorder{events: make([]Event, size)}
}

func (r *Recorder) StartSpan(ctx context.Context, source, component, action string) (context.Context, Span) {
	traceID, _ := ctx.Value(traceKey{}).(string)
	if traceID == "" {
		traceID = uuid.New().String()
		ctx = context.WithValue(ctx, traceKey{}, traceID)
	}
	return ctx, &recordedSpan{
		recorder: r,
		event: Event{
			TraceID:   traceID,
			SpanID:    uuid.New().String(),
			Source:    source,
			Component: component,
			Action:    action,
			Status:    "ok",
			StartedAt: time.Now(),
		},
	}
}

// Events returns a snapshot of recorded spans, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.filled {
		out := make([]Event, r.next)
		copy(out, r.events[:r.next])
		return out
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	out = append(out, r.events[:r.next]...)
	return out
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.next] = e
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.filled = true
	}
}

type traceKey struct{}

type recordedSpan struct {
	recorder *Recorder
	mu       sync.Mutex
	event    Event
	ended    bool
}

func (s *recordedSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.event.Duration = time.Since(s.event.StartedAt)
	s.recorder.record(s.event)
}

func (s *recordedSpan) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.event.Status = status
}

func (s *recordedSpan) SetMetadata(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.event.Metadata == nil {
		s.event.Metadata = map[string]any{}
	}
	s.event.Metadata[key] = value
}

func (s *recordedSpan) SetForm(form, recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.event.Form = form
	s.event.RecordID = recordID
}

func (s *recordedSpan) TraceID() string { return s.event.TraceID }
func (s *recordedSpan) SpanID() string  { return s.event.SpanID }
