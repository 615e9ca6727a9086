package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/core/domain"
)

const minimalPatch = "patch:\n  nodes:\n    v: {symbol: Value}\n  outputs:\n    Out: v.Result\n"

func TestLoader_Load_DiscoversUpwards(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writePatch(t, root, minimalPatch)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	patch, err := newLoader(t).Load(nested)
	require.NoError(t, err)

	want, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, want, patch.Path)
	assert.Equal(t, filepath.Dir(want), patch.Root)
}

func TestLoader_Load_DiscoveryFromWorkingDirectory(t *testing.T) {
	root := t.TempDir()
	writePatch(t, root, minimalPatch)
	t.Chdir(root)

	patch, err := newLoader(t).Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.PatchFileName, filepath.Base(patch.Path))
}

func TestLoader_Load_NotFound(t *testing.T) {
	t.Parallel()

	_, err := newLoader(t).Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
}
