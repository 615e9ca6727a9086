package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/adapters/cas"
	"go.trai.ch/pulse/internal/core/domain"
)

func record(fp domain.Fingerprint, artifact []byte) domain.CompileRecord {
	return domain.CompileRecord{
		Fingerprint: fp.String(),
		DebugName:   "blur - main",
		Source:      "blur.frag",
		EntryPoint:  "main",
		Stage:       string(domain.StageFragment),
		Size:        len(artifact),
		CompiledAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestStore_PutAndGet(t *testing.T) {
	dir := t.TempDir()
	store := cas.NewStore()
	fp := domain.Fingerprint(0xabcdef0123456789)
	artifact := []byte("spirv")

	rec, blob, err := store.Get(dir, fp)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Nil(t, blob)

	require.NoError(t, store.Put(dir, record(fp, artifact), artifact))

	rec, blob, err = store.Get(dir, fp)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, record(fp, artifact), *rec)
	assert.Equal(t, artifact, blob)

	assert.FileExists(t, filepath.Join(dir, "ab", fp.String()+".json"))
	assert.FileExists(t, filepath.Join(dir, "ab", fp.String()+".bin"))
}

func TestStore_Put_Overwrites(t *testing.T) {
	dir := t.TempDir()
	store := cas.NewStore()
	fp := domain.Fingerprint(1)

	require.NoError(t, store.Put(dir, record(fp, []byte("old")), []byte("old")))
	require.NoError(t, store.Put(dir, record(fp, []byte("newer")), []byte("newer")))

	_, blob, err := store.Get(dir, fp)
	require.NoError(t, err)
	assert.Equal(t, "newer", string(blob))
}

func TestStore_Get_Misses(t *testing.T) {
	fp := domain.Fingerprint(0x1234)

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
	}{
		{
			name: "missing blob",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.Remove(filepath.Join(dir, "00", fp.String()+".bin")))
			},
		},
		{
			name: "truncated blob",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "00", fp.String()+".bin"), []byte("x"), domain.FilePerm))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store := cas.NewStore()
			require.NoError(t, store.Put(dir, record(fp, []byte("artifact")), []byte("artifact")))
			tt.setup(t, dir)

			rec, blob, err := store.Get(dir, fp)
			require.NoError(t, err)
			assert.Nil(t, rec)
			assert.Nil(t, blob)
		})
	}
}

func TestStore_Get_CorruptRecord(t *testing.T) {
	dir := t.TempDir()
	fp := domain.Fingerprint(0x1234)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "00"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "00", fp.String()+".json"), []byte("{"), domain.FilePerm))

	_, _, err := cas.NewStore().Get(dir, fp)
	require.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
}

func TestStore_Put_CreateFailed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, domain.FilePerm))

	fp := domain.Fingerprint(7)
	err := cas.NewStore().Put(blocker, record(fp, nil), nil)
	require.ErrorContains(t, err, domain.ErrStoreCreateFailed.Error())
}
