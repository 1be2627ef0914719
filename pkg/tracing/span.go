// Package tracing records an in-process span tree per request and logs it
// through slog when the root span ends. A nil *Span is valid and does
// nothing, so callers never branch on whether tracing is enabled.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type spanKey struct{}

// Tracer starts root spans. The zero value is disabled.
type Tracer struct {
	enabled bool
	logger  *slog.Logger
}

// NewTracer returns a Tracer that logs finished traces to logger when
// enabled. A nil logger means slog.Default.
func NewTracer(enabled bool, logger *slog.Logger) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracer{enabled: enabled, logger: logger.With("component", "tracing")}
}

// Span is one timed operation.
type Span struct {
	Name     string
	TraceID  string
	Start    time.Time
	Duration time.Duration

	tracer   *Tracer
	parent   *Span
	mu       sync.Mutex
	children []*Span
	attrs    []slog.Attr
}

// Start opens a root span named name. It returns ctx unchanged and a nil span
// when the tracer is disabled.
func (t *Tracer) Start(ctx context.Context, name, traceID string) (context.Context, *Span) {
	if t == nil || !t.enabled {
		return ctx, nil
	}
	s := &Span{Name: name, TraceID: traceID, Start: time.Now(), tracer: t}
	return context.WithValue(ctx, spanKey{}, s), s
}

// StartChild opens a span under the one carried by ctx, if any.
func StartChild(ctx context.Context, name string) (context.Context, *Span) {
	parent := FromContext(ctx)
	if parent == nil {
		return ctx, nil
	}
	s := &Span{Name: name, TraceID: parent.TraceID, Start: time.Now(), tracer: parent.tracer, parent: parent}
	parent.mu.Lock()
	parent.children = append(parent.children, s)
	parent.mu.Unlock()
	return context.WithValue(ctx, spanKey{}, s), s
}

// FromContext returns the active span, or nil.
func FromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}

// SetAttr attaches an attribute that is logged with the span.
func (s *Span) SetAttr(key string, value any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.attrs = append(s.attrs, slog.Any(key, value))
	s.mu.Unlock()
}

// End stops the clock. Ending a root span logs the whole tree.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.Duration = time.Since(s.Start)
	s.mu.Unlock()
	if s.parent == nil {
		s.log(0)
	}
}

// Children returns a snapshot of the span's direct children.
func (s *Span) Children() []*Span {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Span(nil), s.children...)
}

func (s *Span) log(depth int) {
	s.mu.Lock()
	args := []any{
		slog.String("trace_id", s.TraceID),
		slog.String("span", s.Name),
		slog.Float64("duration_ms", float64(s.Duration.Microseconds())/1000),
		slog.Int("depth", depth),
	}
	for _, a := range s.attrs {
		args = append(args, a)
	}
	children := append([]*Span(nil), s.children...)
	s.mu.Unlock()

	s.tracer.logger.Info("span", args...)
	for _, c := range children {
		c.log(depth + 1)
	}
}
