// Package watch implements driven.ChangeNotifier with fsnotify.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/gridview/internal/core/ports/driven"
	"github.com/custodia-labs/gridview/internal/logger"
)

// Ensure Notifier implements the interface.
var _ driven.ChangeNotifier = (*Notifier)(nil)

// DefaultDebounce collapses the burst of events a single save produces.
const DefaultDebounce = 250 * time.Millisecond

// Notifier watches the directories containing the requested files, so
// editors that save by renaming a temp file over the original are still
// seen. Events for one path within the debounce window produce one call.
type Notifier struct {
	debounce time.Duration
}

// NewNotifier creates a notifier. A debounce of zero uses DefaultDebounce.
func NewNotifier(debounce time.Duration) *Notifier {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Notifier{debounce: debounce}
}

// Watch blocks until ctx is cancelled, calling onChange from a single
// goroutine after each debounced change.
func (n *Notifier) Watch(ctx context.Context, paths []string, onChange func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	wanted := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", p, err)
		}
		wanted[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %q: %w", dir, err)
		}
		dirs[dir] = true
	}
	logger.Debug("watching %d files in %d directories", len(wanted), len(dirs))

	deb := newDebouncer(n.debounce)
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path := <-deb.fire:
			onChange(path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			path := filepath.Clean(ev.Name)
			if wanted[path] {
				deb.schedule(path)
			}
		}
	}
}

// debouncer delivers each scheduled path on fire once its window passes
// without another schedule. After stop, pending deliveries are dropped.
type debouncer struct {
	window time.Duration
	fire   chan string
	done   chan struct{}

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		fire:   make(chan string),
		done:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) schedule(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Reset(d.window)
		return
	}
	d.timers[path] = time.AfterFunc(d.window, func() { d.deliver(path) })
}

func (d *debouncer) deliver(path string) {
	d.mu.Lock()
	delete(d.timers, path)
	d.mu.Unlock()
	select {
	case d.fire <- path:
	case <-d.done:
	}
}

// stop cancels pending timers and releases any delivery already in flight.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.timers {
		t.Stop()
	}
	close(d.done)
}
