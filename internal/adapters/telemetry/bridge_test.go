package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/exportmap/internal/adapters/telemetry"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/exportmap/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_ForwardsLifecycle(t *testing.T) {
	r := newRecordingRenderer()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(r)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	tracer := tp.Tracer("test")

	_, ok := tracer.Start(context.Background(), "passing")
	ok.End()

	_, cached := tracer.Start(context.Background(), "cached")
	cached.SetAttributes(attribute.Bool(ports.CachedAttribute, true))
	cached.End()

	_, failed := tracer.Start(context.Background(), "failing")
	failed.RecordError(errors.New("mismatch"))
	failed.SetStatus(codes.Error, "observed resolution differs from expected")
	failed.End()

	_, silent := tracer.Start(context.Background(), "silent")
	silent.SetStatus(codes.Error, "")
	silent.End()

	assert.Equal(t, []string{"passing", "cached", "failing", "silent"}, r.starts)
	require.Len(t, r.completions, 4)
	assert.NoError(t, r.completions[0].err)
	assert.False(t, r.completions[0].cached)
	assert.True(t, r.completions[1].cached)
	require.EqualError(t, r.completions[2].err, "observed resolution differs from expected")
	require.EqualError(t, r.completions[3].err, "scenario failed")
}

func TestBridge_ParentID(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	tracer := tp.Tracer("test")

	var rootID string
	renderer.EXPECT().OnTaskStart(gomock.Any(), "", "run", gomock.Any()).
		Do(func(id, _, _ string, _ time.Time) { rootID = id })
	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "scenario", gomock.Any()).
		Do(func(_, parent, _ string, _ time.Time) { assert.Equal(t, rootID, parent) })
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil, false).Times(2)

	ctx, root := tracer.Start(context.Background(), "run")
	_, child := tracer.Start(ctx, "scenario")
	child.End()
	root.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	bridge := telemetry.NewBridge(nil)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	span.End()

	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}
