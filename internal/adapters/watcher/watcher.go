// Package watcher reruns scenarios when files under the harness root change.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skipDirectories are never watched. The state directory is skipped so bundles
// written by a run do not trigger the next one.
var skipDirectories = map[string]bool{
	".git":              true,
	".jj":               true,
	"node_modules":      true,
	domain.StateDirName: true,
}

const eventChannelBuffer = 100

// Watcher watches a directory tree with fsnotify.
type Watcher struct {
	logger    ports.Logger
	fsWatcher *fsnotify.Watcher
	events    chan ports.WatchEvent
	stopOnce  sync.Once
}

// NewWatcher creates a new file system watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}
	return &Watcher{
		logger:    logger,
		fsWatcher: w,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}, nil
}

// Start watches every directory below root and begins emitting events.
func (w *Watcher) Start(ctx context.Context, root string) error {
	for dir := range walkDirs(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop releases the underlying watcher. Events ends once pending events are drained.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() { err = w.fsWatcher.Close() })
	return err
}

// Events returns an iterator over file system events.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func walkDirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are not watched
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skipDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			we, ok := convertEvent(event)
			if !ok {
				continue
			}

			select {
			case w.events <- we:
			case <-ctx.Done():
				return
			}

			if we.Operation == ports.OpCreate {
				w.watchNewDirectory(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher: " + err.Error())
			}
		}
	}
}

func (w *Watcher) watchNewDirectory(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || skipDirectories[info.Name()] {
		return
	}
	for dir := range walkDirs(path) {
		_ = w.fsWatcher.Add(dir)
	}
}

func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}
	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}
