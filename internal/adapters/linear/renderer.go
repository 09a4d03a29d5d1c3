// Package linear provides a synchronous, line-buffered renderer for CI environments.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/exportmap/internal/ui/output"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer prints chronological, scenario-prefixed lines.
// Scenario output goes to stdout, lifecycle lines go to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu        sync.Mutex
	scenarios map[string]*scenarioState
	buffers   map[string]*bytes.Buffer
}

type scenarioState struct {
	name      string
	startTime time.Time
}

// NewRenderer creates a new linear Renderer. Nil writers default to the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:    stdout,
		stderr:    stderr,
		output:    output.NewWithProfile(stderr, output.ColorProfileANSI),
		scenarios: make(map[string]*scenarioState),
		buffers:   make(map[string]*bytes.Buffer),
	}
}

// Start is a no-op.
func (r *Renderer) Start(context.Context) error {
	return nil
}

// Stop flushes every partial line still buffered.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}
	return nil
}

// Wait is a no-op.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the planned scenarios with their active conditions.
func (r *Renderer) OnPlanEmit(scenarios []string, conditions map[string][]string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Planning %d scenario(s) for target(s): %s\n",
		len(scenarios), strings.Join(targets, ", "))
	for _, name := range scenarios {
		keys := conditions[name]
		active := "(none)"
		if len(keys) > 0 {
			active = strings.Join(keys, ", ")
		}
		line := r.output.String(fmt.Sprintf("  %s: %s", name, active)).Faint().String()
		_, _ = fmt.Fprintln(r.stderr, line)
	}
}

// OnTaskStart prints a start line.
func (r *Renderer) OnTaskStart(spanID, _, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scenarios[spanID] = &scenarioState{name: name, startTime: startTime}
	r.buffers[spanID] = new(bytes.Buffer)

	prefix := r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", prefix)
}

// OnTaskLog prints every complete line of data with the scenario prefix.
// A trailing partial line is held until more data arrives or the scenario ends.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sc, ok := r.scenarios[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		idx := bytes.IndexByte(buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		r.printLineLocked(sc.name, buf.Next(idx+1))
	}
}

// OnTaskComplete flushes the scenario's output and prints its status.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error, cached bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sc, ok := r.scenarios[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)

	duration := endTime.Sub(sc.startTime).Round(time.Millisecond)
	prefix := fmt.Sprintf("[%s]", sc.name)

	switch {
	case err != nil:
		symbol := r.output.String("✗").Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, symbol, duration, err)
	case cached:
		symbol := r.output.String("~").Foreground(termenv.ANSIMagenta).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Cached\n", prefix, symbol)
	default:
		symbol := r.output.String("✓").Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, duration)
	}

	delete(r.scenarios, spanID)
	delete(r.buffers, spanID)
}

// flushBufferLocked must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	sc, ok := r.scenarios[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(sc.name, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}
