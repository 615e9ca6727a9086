package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/adapters/fs"
	"go.trai.ch/pulse/internal/adapters/watcher"
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
)

func TestWatcher_ReportsWrites(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "nested")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	w, err := watcher.NewWatcher(fs.NewWalker(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, root))
	defer func() { _ = w.Stop() }()
	assert.Equal(t, []string{root}, w.Roots())

	target := filepath.Join(nested, "blur.frag")
	require.NoError(t, os.WriteFile(target, []byte("void main() {}"), domain.FilePerm))

	found := make(chan ports.WatchEvent, 1)
	go func() {
		for ev := range w.Events() {
			if ev.Path == target {
				found <- ev
				return
			}
		}
	}()

	select {
	case ev := <-found:
		assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for written file")
	}
}

func TestWatcher_StartTwice(t *testing.T) {
	t.Parallel()

	w, err := watcher.NewWatcher(fs.NewWalker(), nil)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, t.TempDir()))
	require.Error(t, w.Start(ctx, t.TempDir()))
}
