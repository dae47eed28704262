// Package watch re-runs a callback when watched files change on disk.
//
// Directories are watched rather than files so that atomic replacements
// (write to a temp file, rename over the original) are still observed.
// Bursts of events are coalesced by a debounce timer.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/nibzard/featurecheck/internal/logging"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   *log.Logger
}

// Watcher watches a fixed set of files.
type Watcher struct {
	files    map[string]bool
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *log.Logger
}

// New creates a watcher for paths. The files need not exist yet, but their
// directories must.
func New(paths []string, opts Options) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(paths)),
		watcher:  fw,
		debounce: opts.Debounce,
		logger:   opts.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = logging.Discard()
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run blocks until ctx is done, calling onChange with the sorted absolute
// paths of the files that changed during each debounce window. onChange
// runs on the Run goroutine; events arriving meanwhile are queued for the
// next window.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer w.watcher.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				if event.Has(fsnotify.Remove) {
					w.logger.Warn("watched file removed", "path", path)
				}
				continue
			}
			w.logger.Debug("change detected", "path", path, "op", event.Op.String())
			pending[path] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)
			onChange(changed)
		}
	}
}
