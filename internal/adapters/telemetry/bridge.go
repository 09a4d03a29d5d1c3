package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/exportmap/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge is an sdktrace.SpanProcessor that replays span lifecycles on a Renderer.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a new Bridge.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	if b.renderer == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	var parentID string
	if ps := trace.SpanFromContext(parent); ps.SpanContext().IsValid() {
		parentID = ps.SpanContext().SpanID().String()
	}

	b.renderer.OnTaskStart(sc.SpanID().String(), parentID, s.Name(), s.StartTime())
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.renderer == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	var err error
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "scenario failed"
		}
		err = errors.New(desc)
	}

	cached := false
	for _, kv := range s.Attributes() {
		if string(kv.Key) == ports.CachedAttribute {
			cached = kv.Value.AsBool()
		}
	}

	b.renderer.OnTaskComplete(sc.SpanID().String(), s.EndTime(), err, cached)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(context.Context) error {
	return nil
}
