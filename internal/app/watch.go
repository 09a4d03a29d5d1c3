package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/exportmap/internal/adapters/watcher"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/zerr"
)

// watch reruns the matrix after each debounced batch of changes below the harness root.
// Runs are serial; changes arriving during a run queue exactly one more run.
func (a *App) watch(ctx context.Context, names []string, opts RunOptions) error {
	root, err := a.configLoader.DiscoverRoot(a.cwd)
	if err != nil {
		if !errors.Is(err, domain.ErrConfigNotFound) {
			return err
		}
		if root, err = filepath.Abs(a.cwd); err != nil {
			return zerr.Wrap(err, "failed to resolve working directory")
		}
	}

	w, err := a.newWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, root); err != nil {
		return err
	}

	changes := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		select {
		case changes <- paths:
		default:
		}
	})

	go func() {
		for event := range w.Events() {
			if ignored(root, event.Path) {
				continue
			}
			debouncer.Add(event.Path)
		}
	}()

	a.logger.Info(fmt.Sprintf("watching %s for changes", root))

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			a.logger.Info(fmt.Sprintf("%d file(s) changed, rerunning", len(paths)))
			if err := a.runOnce(ctx, names, opts); err != nil && !errors.Is(err, domain.ErrScenarioFailed) {
				a.logger.Error(err)
			}
		}
	}
}

// ignored reports whether path is inside the state directory, where runs write their own files.
func ignored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first == domain.StateDirName
}
