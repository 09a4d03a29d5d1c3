package telemetry

import (
	"context"

	"go.trai.ch/exportmap/internal/core/ports"
)

var (
	_ ports.Tracer = (*NoOpTracer)(nil)
	_ ports.Span   = (*NoOpSpan)(nil)
)

// NoOpTracer discards every span. Commands that never run scenarios use it.
type NoOpTracer struct{}

// NewNoOpTracer creates a new NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

// Start returns ctx unchanged and a span that does nothing.
func (t *NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, &NoOpSpan{}
}

// EmitPlan does nothing.
func (t *NoOpTracer) EmitPlan(context.Context, []string, map[string][]string, []string) {}

// NoOpSpan is a span that does nothing.
type NoOpSpan struct{}

// End does nothing.
func (s *NoOpSpan) End() {}

// RecordError does nothing.
func (s *NoOpSpan) RecordError(error) {}

// SetAttribute does nothing.
func (s *NoOpSpan) SetAttribute(string, any) {}

// Write discards p.
func (s *NoOpSpan) Write(p []byte) (int, error) {
	return len(p), nil
}
