package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/exportmap/internal/tui"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer records scenario spans as progrock vertices and shows them on the board.
type Renderer struct {
	feed    *Feed
	rec     *progrock.Recorder
	model   *tui.Model
	options []tea.ProgramOption

	mu       sync.Mutex
	program  *tea.Program
	vertices map[string]*progrock.VertexRecorder
	done     chan error
}

// NewRenderer creates a board renderer. Options are passed to the Bubble Tea program.
func NewRenderer(opts ...tea.ProgramOption) *Renderer {
	feed := NewFeed()
	return &Renderer{
		feed:     feed,
		rec:      progrock.NewRecorder(feed),
		model:    tui.NewModel(feed),
		options:  opts,
		vertices: make(map[string]*progrock.VertexRecorder),
	}
}

// Start launches the board.
func (r *Renderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		return nil
	}

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, r.options...)
	r.program = tea.NewProgram(r.model, opts...)
	r.done = make(chan error, 1)

	program, done := r.program, r.done
	go func() {
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			err = nil
		}
		done <- err
	}()
	return nil
}

// Stop ends the tape. The board quits once it has drawn the last update.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	for id, v := range r.vertices {
		v.Done(context.Canceled)
		delete(r.vertices, id)
	}
	r.mu.Unlock()

	return r.feed.Close()
}

// Wait blocks until the board has quit.
func (r *Renderer) Wait() error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done == nil {
		return nil
	}
	err := <-done
	done <- err
	return err
}

// OnPlanEmit lists the planned scenarios on the board.
func (r *Renderer) OnPlanEmit(scenarios []string, conditions map[string][]string, _ []string) {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	msg := tui.MsgPlan{Scenarios: scenarios, Conditions: conditions}
	if program == nil {
		r.model.Update(msg)
		return
	}
	program.Send(msg)
}

// OnTaskStart records a new vertex.
func (r *Renderer) OnTaskStart(spanID, _, name string, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vertices[spanID] = r.rec.Vertex(digest.FromString(spanID), name)
}

// OnTaskLog writes output to the vertex.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	v, ok := r.vertices[spanID]
	r.mu.Unlock()
	if ok {
		_, _ = v.Stdout().Write(data)
	}
}

// OnTaskComplete completes the vertex.
func (r *Renderer) OnTaskComplete(spanID string, _ time.Time, err error, cached bool) {
	r.mu.Lock()
	v, ok := r.vertices[spanID]
	delete(r.vertices, spanID)
	r.mu.Unlock()
	if !ok {
		return
	}
	if cached {
		v.Cached()
	}
	v.Done(err)
}
