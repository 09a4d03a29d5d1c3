package telemetry_test

import (
	"context"
	"sync"
	"time"
)

type completion struct {
	err    error
	cached bool
}

// recordingRenderer is a hand-written ports.Renderer that records what it receives.
type recordingRenderer struct {
	mu          sync.Mutex
	plans       [][]string
	starts      []string
	logs        map[string][]byte
	completions []completion
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{logs: make(map[string][]byte)}
}

func (r *recordingRenderer) Start(context.Context) error { return nil }
func (r *recordingRenderer) Stop() error                 { return nil }
func (r *recordingRenderer) Wait() error                 { return nil }

func (r *recordingRenderer) OnPlanEmit(scenarios []string, _ map[string][]string, _ []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans = append(r.plans, scenarios)
}

func (r *recordingRenderer) OnTaskStart(_, _, name string, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, name)
}

func (r *recordingRenderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[spanID] = append(r.logs[spanID], data...)
}

func (r *recordingRenderer) OnTaskComplete(_ string, _ time.Time, err error, cached bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, completion{err: err, cached: cached})
}

func (r *recordingRenderer) logged() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []byte
	for _, data := range r.logs {
		out = append(out, data...)
	}
	return string(out)
}
