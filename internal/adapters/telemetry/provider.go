package telemetry

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/exportmap/internal/core/ports"
)

// InstrumentationName names the tracer handed to OpenTelemetry.
const InstrumentationName = "exportmap"

// LogBufferSize determines the size of the async renderer event channel.
const LogBufferSize = 4096

var (
	_ ports.Tracer = (*OTelTracer)(nil)
	_ ports.Span   = (*OTelSpan)(nil)
)

// OTelTracer is a ports.Tracer backed by OpenTelemetry.
// Span output is batched and forwarded to the renderer on a background goroutine.
type OTelTracer struct {
	tracer   trace.Tracer
	events   chan func(ports.Renderer)
	done     chan struct{}
	mu       sync.RWMutex
	renderer ports.Renderer

	// sendMu guards closed and is held for every send, so events is never written after close.
	sendMu sync.RWMutex
	closed bool
}

// NewOTelTracer creates a new OTelTracer with the given instrumentation name.
func NewOTelTracer(name string) *OTelTracer {
	t := &OTelTracer{
		tracer: otel.Tracer(name),
		events: make(chan func(ports.Renderer), LogBufferSize),
		done:   make(chan struct{}),
	}
	go t.runLoop()
	return t
}

func (t *OTelTracer) runLoop() {
	defer close(t.done)
	for deliver := range t.events {
		if r := t.currentRenderer(); r != nil {
			deliver(r)
		}
	}
}

func (t *OTelTracer) currentRenderer() ports.Renderer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.renderer
}

// WithRenderer sets the renderer receiving plans and span output.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer = r
	return t
}

// send queues an event for the renderer. Without block, the event is dropped when the queue is full.
func (t *OTelTracer) send(deliver func(ports.Renderer), block bool) {
	t.sendMu.RLock()
	defer t.sendMu.RUnlock()
	if t.closed {
		return
	}
	if block {
		t.events <- deliver
		return
	}
	select {
	case t.events <- deliver:
	default:
	}
}

// Shutdown stops the background event loop after delivering queued events.
// Output written to spans after Shutdown is discarded.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	t.sendMu.Lock()
	if !t.closed {
		t.closed = true
		close(t.events)
	}
	t.sendMu.Unlock()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start creates a new span. Attributes given as options are set at start time.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var startOpts []trace.SpanStartOption
	if len(cfg.Attributes) > 0 {
		attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
		for _, k := range slices.Sorted(maps.Keys(cfg.Attributes)) {
			attrs = append(attrs, toAttribute(k, cfg.Attributes[k]))
		}
		startOpts = append(startOpts, trace.WithAttributes(attrs...))
	}

	ctx, span := t.tracer.Start(ctx, name, startOpts...)

	var batcher *BatchProcessor
	if t.currentRenderer() != nil {
		spanID := span.SpanContext().SpanID().String()
		// A renderer that falls behind loses output rather than stalling scenarios.
		batcher = NewBatchProcessor(0, 0, func(data []byte) {
			t.send(func(r ports.Renderer) { r.OnTaskLog(spanID, data) }, false)
		})
	}

	return ctx, &OTelSpan{span: span, batcher: batcher}
}

// EmitPlan records the plan on the current span and hands it to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, scenarios []string, conditions map[string][]string, targets []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("scenarios", scenarios),
			attribute.StringSlice("targets", targets),
		))
	}

	if t.currentRenderer() == nil {
		return
	}
	// The plan must reach the renderer before any span output, so this send may block.
	t.send(func(r ports.Renderer) { r.OnPlanEmit(scenarios, conditions, targets) }, true)
}

// OTelSpan is a ports.Span backed by an OpenTelemetry span.
type OTelSpan struct {
	span    trace.Span
	batcher *BatchProcessor
}

// Batcher exposes the output batcher, nil when no renderer is attached.
func (s *OTelSpan) Batcher() *BatchProcessor {
	return s.batcher
}

// End flushes buffered output and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError records err and marks the span as failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

// Write forwards p to the renderer, or records it as a span event without one.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case time.Duration:
		return attribute.String(key, v.String())
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
