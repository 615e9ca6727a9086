package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/adapters/fs"
	"go.trai.ch/pulse/internal/core/domain"
)

func TestHasher_Fingerprint(t *testing.T) {
	h := fs.NewHasher()
	key := domain.ResourceKey{Source: "blur.cue", EntryPoint: "main", Stage: domain.StageCue}
	src := []byte("radius: 2")

	fp := h.Fingerprint(key, src)
	assert.Equal(t, fp, h.Fingerprint(key, src), "fingerprints are deterministic")

	moved := key
	moved.Source = "shaders/blur.cue"
	assert.Equal(t, fp, h.Fingerprint(moved, src), "the path is not hashed")

	tests := []struct {
		name string
		key  domain.ResourceKey
		src  []byte
	}{
		{name: "content", key: key, src: []byte("radius: 3")},
		{name: "entry point", key: domain.ResourceKey{Source: key.Source, EntryPoint: "alt", Stage: key.Stage}, src: src},
		{name: "stage", key: domain.ResourceKey{Source: key.Source, EntryPoint: key.EntryPoint, Stage: domain.StageFragment}, src: src},
		{name: "inline", key: domain.ResourceKey{Source: key.Source, Inline: true, EntryPoint: key.EntryPoint, Stage: key.Stage}, src: src},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, fp, h.Fingerprint(tt.key, tt.src))
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(second, "blur.cue"), "a: 1")
	writeFile(t, filepath.Join(first, "shared.cue"), "first")
	writeFile(t, filepath.Join(second, "shared.cue"), "second")
	require.NoError(t, os.MkdirAll(filepath.Join(first, "dir.cue"), domain.DirPerm))

	r := fs.NewResolver()
	folders := []string{first, second}

	t.Run("searches folders in order", func(t *testing.T) {
		got, err := r.Resolve("shared.cue", folders)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(first, "shared.cue"), got)

		got, err = r.Resolve("blur.cue", folders)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(second, "blur.cue"), got)
	})

	t.Run("absolute path", func(t *testing.T) {
		abs := filepath.Join(second, "blur.cue")
		got, err := r.Resolve(abs, nil)
		require.NoError(t, err)
		assert.Equal(t, abs, got)
	})

	t.Run("directories are not sources", func(t *testing.T) {
		_, err := r.Resolve("dir.cue", []string{first})
		require.ErrorContains(t, err, domain.ErrSourceNotFound.Error())
	})

	t.Run("missing", func(t *testing.T) {
		_, err := r.Resolve("missing.cue", folders)
		require.ErrorContains(t, err, domain.ErrSourceNotFound.Error())
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := r.Resolve("", folders)
		require.ErrorIs(t, err, domain.ErrEmptySourcePath)
	})
}

func TestResolver_Read(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blur.cue")
	writeFile(t, path, "radius: 2")

	r := fs.NewResolver()
	data, err := r.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "radius: 2", string(data))

	_, err = r.Read(filepath.Join(dir, "gone.cue"))
	require.ErrorContains(t, err, domain.ErrSourceNotFound.Error())

	_, err = r.Read(dir)
	require.ErrorContains(t, err, domain.ErrSourceReadFailed.Error())
}

func TestWalker_WalkDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"shaders/post", ".git/objects", ".pulse/cache", "node_modules/x", "tmp"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), domain.DirPerm))
	}
	writeFile(t, filepath.Join(root, "shaders", "blur.cue"), "a: 1")

	w := fs.NewWalker()
	got := slices.Collect(w.WalkDirs(root, []string{"tmp"}))

	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "shaders"),
		filepath.Join(root, "shaders", "post"),
	}, got)
}

func TestWalker_WalkDirs_StopsEarly(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), domain.DirPerm))

	w := fs.NewWalker()
	var got []string
	for dir := range w.WalkDirs(root, nil) {
		got = append(got, dir)
		break
	}
	assert.Equal(t, []string{root}, got)
}

func TestWalker_ShouldSkip(t *testing.T) {
	w := fs.NewWalker()
	assert.True(t, w.ShouldSkip(".git", nil))
	assert.True(t, w.ShouldSkip("build-out", []string{"build-*"}))
	assert.False(t, w.ShouldSkip("shaders", []string{"build-*"}))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}
