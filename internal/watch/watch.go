// Package watch re-runs a render whenever one of its input files changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const DefaultDebounce = 100 * time.Millisecond

var ErrNoPaths = errors.New("watch: no files to watch")

// Run calls render once, then again after every write to any of paths, until
// ctx is done. Writes closer together than debounce trigger a single render.
// Render failures are logged and do not stop the loop.
//
// Parent directories are watched rather than the files themselves so that
// files replaced by rename keep being followed.
func Run(ctx context.Context, paths []string, debounce time.Duration, render func() error) error {
	if len(paths) == 0 {
		return ErrNoPaths
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	wanted := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		logrus.Debugf("Watching %s", dir)
	}

	rerender := func() {
		if err := render(); err != nil {
			logrus.Warnf("Render failed: %v", err)
		}
	}
	rerender()

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !wanted[filepath.Clean(event.Name)] || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logrus.Tracef("Change detected: %s", event)
			fire = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.Warnf("Watch error: %v", err)
		case <-fire:
			fire = nil
			logrus.Debug("Inputs changed, rendering")
			rerender()
		}
	}
}
