package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch rescrapes matching source files under dir whenever they are written
// or created, calling onResult with each outcome. New directories are
// watched as they appear. It returns when ctx is done.
func (r *Runner) Watch(ctx context.Context, dir string, src Sources, onResult func(Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	r.log.Info().Str("dir", dir).Msg("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					r.log.Debug().Str("dir", event.Name).Msg("new directory")
					if err := addRecursive(watcher, event.Name); err != nil {
						r.log.Warn().Err(err).Str("dir", event.Name).Msg("cannot watch directory")
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && src.Match(event.Name) {
				r.log.Debug().Str("file", event.Name).Msg("changed")
				onResult(r.ScrapeFile(event.Name))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// addRecursive adds root and every directory below it to the watcher.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
