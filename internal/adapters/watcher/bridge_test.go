package watcher_test

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/adapters/watcher"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/pulse/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type notifier struct {
	mu    sync.Mutex
	paths []string
	calls int
}

func (n *notifier) NotifyChanged(paths ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.paths = append(n.paths, paths...)
}

func events(paths ...string) iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for _, p := range paths {
			if !yield(ports.WatchEvent{Path: p, Operation: ports.OpWrite}) {
				return
			}
		}
	}
}

func TestBridge_Run_FlushesOnStreamEnd(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	w := mocks.NewMockWatcher(ctrl)
	ctx := context.Background()

	w.EXPECT().Start(ctx, "/shaders").Return(nil)
	w.EXPECT().Events().Return(events("/shaders/b.frag", "/shaders/a.frag", "/shaders/b.frag"))
	w.EXPECT().Stop().Return(nil)

	n := &notifier{}
	require.NoError(t, watcher.NewBridge(w, time.Hour, n).Run(ctx, "/shaders"))

	assert.Equal(t, 1, n.calls)
	assert.True(t, slices.Equal([]string{"/shaders/a.frag", "/shaders/b.frag"}, n.paths))
}

func TestBridge_Run_StartError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), "/missing").Return(errors.New("no such directory"))

	err := watcher.NewBridge(w, time.Hour, &notifier{}).Run(context.Background(), "/missing")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to start watcher")
}

func TestBridge_Run_NoRoots(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	w := mocks.NewMockWatcher(ctrl)

	require.NoError(t, watcher.NewBridge(w, time.Hour, &notifier{}).Run(context.Background()))
}
