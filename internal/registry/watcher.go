package registry

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after a database file changes on disk.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind, name string)

// Watch starts an fsnotify watcher on the storage root and reports database
// file changes until ctx is cancelled. Write bursts (SQLite touches the file
// repeatedly per transaction) are debounced per file.
func Watch(ctx context.Context, reg *Registry, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(reg.Root()); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", reg.Root()))

	const debounce = 200 * time.Millisecond
	pending := make(map[string]string) // name -> kind
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	flush := func() {
		for name, kind := range pending {
			logger.Debug("watcher: database event",
				slog.String("name", name), slog.String("kind", kind))
			if cb != nil {
				cb(kind, name)
			}
		}
		clear(pending)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, dbExt) {
				continue
			}
			switch {
			case ev.Op&fsnotify.Create != 0:
				pending[name] = "created"
			case ev.Op&fsnotify.Write != 0:
				if pending[name] != "created" {
					pending[name] = "updated"
				}
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				pending[name] = "deleted"
			default:
				continue
			}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
