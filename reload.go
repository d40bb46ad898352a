package llmselector

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Reloader keeps a Selector in sync with a config file.
// Each successful reload installs a new Selector with an empty streaming cache;
// a failed reload keeps the previous one.
type Reloader struct {
	path    string
	factory BackendFactory
	opts    []Option
	logger  *slog.Logger
	current atomic.Pointer[Selector]
}

// NewReloader loads path and builds the initial Selector.
func NewReloader(path string, factory BackendFactory, opts ...Option) (*Reloader, error) {
	r := &Reloader{
		path:    path,
		factory: factory,
		opts:    opts,
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	r.logger = r.current.Load().logger
	return r, nil
}

// Selector returns the current selector.
func (r *Reloader) Selector() *Selector {
	return r.current.Load()
}

// Reload rebuilds the selector from the config file.
func (r *Reloader) Reload() error {
	cfg, err := LoadConfig(r.path)
	if err != nil {
		return err
	}
	s, err := NewSelectorFromConfig(cfg, r.factory, r.opts...)
	if err != nil {
		return err
	}
	r.current.Store(s)
	return nil
}

// Watch reloads the selector whenever the config file changes, until ctx is
// cancelled. The directory is watched so editors that replace the file are seen.
func (r *Reloader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("llmselector: watch config: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("llmselector: watch config: %w", err)
	}

	baseName := filepath.Base(r.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := r.Reload(); err != nil {
				r.logger.Warn("llmselector: config reload failed", "path", r.path, "error", err)
				continue
			}
			r.logger.Info("llmselector: config reloaded", "path", r.path, "rules", r.Selector().Len())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("llmselector: config watcher error", "error", err)
		}
	}
}
