// Package watcher turns file system notifications under resource folders into batched
// change notifications for the resource cache.
package watcher

import (
	"context"
	"iter"
	"os"
	"sync"
	"time"
	"unique"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/pulse/internal/adapters/fs"
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 100

// Watcher implements recursive folder watching using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	walker    *fs.Walker
	sink      ports.DiagnosticSink
	ignores   []string

	mu      sync.Mutex
	roots   []unique.Handle[string]
	started bool
	events  chan ports.WatchEvent
}

// NewWatcher creates a watcher. Errors raised while watching are reported to sink.
func NewWatcher(walker *fs.Walker, sink ports.DiagnosticSink, ignores ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file system watcher")
	}
	return &Watcher{
		fsWatcher: w,
		walker:    walker,
		sink:      sink,
		ignores:   ignores,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}, nil
}

// Start watches every directory below each root. The event stream ends when ctx is
// cancelled or the watcher is stopped.
func (w *Watcher) Start(ctx context.Context, roots ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return zerr.New("watcher already started")
	}

	for _, root := range roots {
		w.roots = append(w.roots, unique.Make(root))
		for dir := range w.walker.WalkDirs(root, w.ignores) {
			if err := w.fsWatcher.Add(dir); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to watch directory"), "dir", dir)
			}
		}
	}
	w.started = true

	go w.processEvents(ctx)
	return nil
}

// Roots returns the watched roots in the order they were given.
func (w *Watcher) Roots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.roots))
	for i, h := range w.roots {
		out[i] = h.Value()
	}
	return out
}

// Stop closes the underlying watcher, ending the event stream.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}

			if watchEvent.Operation == ports.OpCreate {
				w.watchNewDirectory(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.report(zerr.Wrap(err, "file system watch error"))
		}
	}
}

// watchNewDirectory adds a directory created after Start, with everything below it.
func (w *Watcher) watchNewDirectory(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.walker.ShouldSkip(info.Name(), w.ignores) {
		return
	}
	for dir := range w.walker.WalkDirs(path, w.ignores) {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.report(zerr.With(zerr.Wrap(err, "failed to watch directory"), "dir", dir))
		}
	}
}

func (w *Watcher) report(err error) {
	if w.sink == nil {
		return
	}
	w.sink.Report(domain.Diagnostic{
		Severity:  domain.SeverityWarning,
		Subsystem: domain.SubsystemWatcher,
		Message:   err.Error(),
		Err:       err,
		Time:      time.Now(),
	})
}

func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	switch {
	case event.Has(fsnotify.Write):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpWrite}, true
	case event.Has(fsnotify.Create):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpCreate}, true
	case event.Has(fsnotify.Remove):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpRemove}, true
	case event.Has(fsnotify.Rename):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpRename}, true
	default:
		return ports.WatchEvent{}, false
	}
}
