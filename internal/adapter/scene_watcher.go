package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

// SceneWatcher reports changes to a scene file.
type SceneWatcher interface {
	// Changes emits path after each burst of writes, once the file has been
	// quiet for debounce. The channel closes when ctx ends.
	Changes(ctx context.Context, path m.Path, debounce time.Duration) (<-chan m.Path, error)
}

// FSSceneWatcher watches scenes with fsnotify.
type FSSceneWatcher struct{}

// NewFSSceneWatcher constructs an FSSceneWatcher.
func NewFSSceneWatcher() *FSSceneWatcher {
	return &FSSceneWatcher{}
}

// Changes watches the directory holding path, so editors that replace the
// file instead of writing it in place are seen too.
func (w *FSSceneWatcher) Changes(ctx context.Context, path m.Path, debounce time.Duration) (<-chan m.Path, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	target := filepath.Clean(string(path))

	if err := fsw.Add(filepath.Dir(target)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	out := make(chan m.Path, 1)

	go w.run(ctx, fsw, target, path, debounce, out)

	return out, nil
}

func (w *FSSceneWatcher) run(
	ctx context.Context,
	fsw *fsnotify.Watcher,
	target string,
	path m.Path,
	debounce time.Duration,
	out chan<- m.Path,
) {
	defer close(out)
	defer func() {
		if err := fsw.Close(); err != nil {
			slog.Warn("Failed to close scene watcher", "path", path, "error", err)
		}
	}()

	timer := time.NewTimer(debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}

			slog.Debug("Scene change detected", "path", path, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}

			slog.Warn("Scene watcher error", "path", path, "error", err)

		case <-timer.C:
			select {
			case out <- path:
			case <-ctx.Done():
				return
			}
		}
	}
}
