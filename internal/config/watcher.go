package config

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the settings file whenever it changes and hands each
// valid result to apply. Invalid or unreadable revisions are logged and
// skipped; the previous settings stay in effect. Watch blocks until stop
// is closed, so run it on its own goroutine.
//
// The parent directory is watched rather than the file itself because many
// editors replace the file on save, which would drop a direct watch.
func Watch(path string, log *slog.Logger, apply func(Settings), stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	for {
		select {
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s, err := Load(abs)
			if err != nil {
				log.Error("ignoring settings update", "error", err)
				continue
			}
			log.Info("settings file changed, applying update", "path", abs)
			apply(s)

		case err := <-watcher.Errors:
			log.Error("settings watcher error", "error", err)

		case <-stop:
			return nil
		}
	}
}
