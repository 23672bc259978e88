package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/specialistvlad/burstflow/internal/ctxlog"
)

const watchDebounce = 200 * time.Millisecond

// watch runs the workflow at path, then reruns it every time the file is
// written. Failed runs are logged and watching continues. It returns when ctx
// is cancelled.
func (a *App) watch(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx).With("path", path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve workflow path: %w", err)
	}
	// Editors often replace the file instead of writing it in place, so the
	// directory is watched and events are filtered by name.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	logger.Info("Watching workflow for changes.")

	a.runWatched(ctx, path)

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("Stopped watching workflow.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("Workflow file changed.", "op", event.Op.String())
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			fire = debounce.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)

		case <-fire:
			fire = nil
			a.runWatched(ctx, path)
		}
	}
}

func (a *App) runWatched(ctx context.Context, path string) {
	logger := ctxlog.FromContext(ctx)
	_, err := a.RunWorkflow(ctx, path)
	switch {
	case err == nil:
	case errors.Is(err, ErrRunFailed):
		logger.Warn("Workflow run failed; waiting for changes.", "error", err)
	default:
		logger.Error("Workflow could not be run; waiting for changes.", "error", err)
	}
}
