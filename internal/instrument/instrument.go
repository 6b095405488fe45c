// Package instrument provides lightweight span-style instrumentation for
// request handling: spans are recorded into an in-memory ring buffer and
// queryable over an admin endpoint.
package instrument

import (
	"context"
	"time"
)

// Event is one recorded span.
type Event struct {
	TraceID   string         `json:"trace_id"`
	SpanID    string         `json:"span_id"`
	Source    string         `json:"source"`
	Component string         `json:"component"`
	Action    string         `json:"action"`
	Form      string         `json:"form,omitempty"`
	RecordID  string         `json:"record_id,omitempty"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration_ns"`
}

// Span is a unit of instrumented work.
type Span interface {
	End()
	SetStatus(status string)
	SetMetadata(key string, value any)
	SetForm(form, recordID string)
	TraceID() string
	SpanID() string
}

// Instrumenter creates spans. Implementations must be safe for concurrent use.
type Instrumenter interface {
	StartSpan(ctx context.Context, source, component, action string) (context.Context, Span)
}

type ctxKey struct{}

// WithInstrumenter attaches an instrumenter to the context.
func WithInstrumenter(ctx context.Context, inst Instrumenter) context.Context {
	return context.WithValue(ctx, ctxKey{}, inst)
}

// GetInstrumenter returns the instrumenter from the context, or a noop
// when none was attached.
func GetInstrumenter(ctx context.Context) Instrumenter {
	if inst, ok := ctx.Value(ctxKey{}).(Instrumenter); ok && inst != nil {
		return inst
	}
	return &NoopInstrumenter{}
}
