package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for output rendering.
// It decouples telemetry collection from presentation logic.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and flush buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called once the matrix is planned.
	// scenarios: scenario names in run order
	// conditions: active condition keys per scenario
	// targets: the scenarios the user asked for
	OnPlanEmit(scenarios []string, conditions map[string][]string, targets []string)

	// OnTaskStart is called when a scenario step begins.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when a step emits output.
	// data may contain partial lines or ANSI sequences.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a step finishes.
	// cached is true when the outcome was replayed from the result store.
	OnTaskComplete(spanID string, endTime time.Time, err error, cached bool)
}
