// Package watch rebuilds the engine Config when the rule file changes on
// disk.
//
// The directory holding the rule file is watched rather than the file
// itself, so editors that save by writing a temp file and renaming it over
// the original are still seen. Bursts of events are debounced into one
// rebuild. A rebuild that fails is logged and dropped; the previous Config
// stays live until a good one replaces it.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roach88/ftality/internal/engine"
)

// DefaultDebounce is the quiet period before a rebuild.
const DefaultDebounce = 100 * time.Millisecond

// Loader builds a Config from the rule file at path.
type Loader func(path string) (*engine.Config, error)

// Reloader watches one rule file.
type Reloader struct {
	watcher  *fsnotify.Watcher
	path     string
	load     Loader
	onReload func(*engine.Config)
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithDebounce sets the quiet period. Zero rebuilds on the first event.
func WithDebounce(d time.Duration) Option {
	return func(r *Reloader) {
		if d >= 0 {
			r.debounce = d
		}
	}
}

// WithLogger sets the logger for reload results.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reloader) {
		if l != nil {
			r.logger = l
		}
	}
}

// New starts watching the directory of path. onReload receives every
// successfully rebuilt Config, from the goroutine running Run.
func New(path string, load Loader, onReload func(*engine.Config), opts ...Option) (*Reloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	r := &Reloader{
		watcher:  watcher,
		path:     abs,
		load:     load,
		onReload: onReload,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Path returns the absolute path being watched.
func (r *Reloader) Path() string {
	return r.path
}

// Run processes filesystem events until ctx is cancelled, then closes the
// watcher. It returns nil on cancellation.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: editors emit several events per save.
	timer := time.NewTimer(0)
	<-timer.C
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevant(event) {
				continue
			}
			pending = true
			timer.Reset(r.debounce)

		case <-timer.C:
			if pending {
				pending = false
				r.reload()
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watch error", "path", r.path, "error", err)
		}
	}
}

func (r *Reloader) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != r.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (r *Reloader) reload() {
	cfg, err := r.load(r.path)
	if err != nil {
		r.logger.Error("reload failed, keeping previous rules", "path", r.path, "error", err)
		return
	}
	r.logger.Info("rules reloaded", "path", r.path, "combos", len(cfg.Combos()))
	r.onReload(cfg)
}
