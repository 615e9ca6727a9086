package watcher

import (
	"context"
	"time"

	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

// Notifier receives batches of changed source paths.
type Notifier interface {
	NotifyChanged(paths ...string)
}

// Bridge feeds debounced watcher events into a Notifier. The resource cache queues
// the notifications and applies them when the host drains it between frames.
type Bridge struct {
	watcher   ports.Watcher
	debouncer *Debouncer
}

// NewBridge creates a bridge delivering batches after window of quiet.
func NewBridge(w ports.Watcher, window time.Duration, notifier Notifier) *Bridge {
	return &Bridge{
		watcher: w,
		debouncer: NewDebouncer(window, func(paths []string) {
			notifier.NotifyChanged(paths...)
		}),
	}
}

// Run watches roots until the event stream ends, then flushes what is still pending.
func (b *Bridge) Run(ctx context.Context, roots ...string) error {
	if len(roots) == 0 {
		return nil
	}
	if err := b.watcher.Start(ctx, roots...); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}
	defer func() { _ = b.watcher.Stop() }()

	for event := range b.watcher.Events() {
		b.debouncer.Add(event.Path)
	}
	b.debouncer.Flush()
	return nil
}
