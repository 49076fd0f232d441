package server

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// watchLoop observes content directories and triggers rebuilds after a quiet
// period. Rebuilds run from the loop goroutine so they never overlap.
type watchLoop struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   interfaces.Logger
	trigger  func(context.Context)
}

func newWatchLoop(dirs []string, debounce time.Duration, logger interfaces.Logger, trigger func(context.Context)) (*watchLoop, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range normalizeWatchDirs(dirs) {
		if err := addRecursive(watcher, dir); err != nil {
			logger.Warn("server.watch.register_failed", "dir", dir, "error", err)
		}
	}

	return &watchLoop{
		watcher:  watcher,
		debounce: debounce,
		logger:   logger,
		trigger:  trigger,
	}, nil
}

func (w *watchLoop) run(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("server.watch.event", "path", event.Name, "op", event.Op.String())
			// New directories join the watch set so nested content is seen.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(w.watcher, event.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("server.watch.error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			w.trigger(ctx)
		}
	}
}

func (w *watchLoop) close() {
	_ = w.watcher.Close()
}

func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
