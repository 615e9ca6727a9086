// Package cas implements the content addressable compile store. Every artifact is kept
// under its fingerprint as a JSON record plus a blob.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CompileStore = (*Store)(nil)

// Store implements ports.CompileStore using a file-per-fingerprint strategy.
type Store struct{}

// NewStore creates a new CompileStore.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the record and artifact for fp from dir.
// A record without a matching blob is reported as a miss.
func (s *Store) Get(dir string, fp domain.Fingerprint) (*domain.CompileRecord, []byte, error) {
	recordPath, blobPath := s.paths(dir, fp)

	//nolint:gosec // Path is constructed from the cache directory and a fingerprint
	data, err := os.ReadFile(recordPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", recordPath)
	}

	var rec domain.CompileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "path", recordPath)
	}
	if rec.Fingerprint != fp.String() {
		return nil, nil, nil
	}

	//nolint:gosec // Path is constructed from the cache directory and a fingerprint
	blob, err := os.ReadFile(blobPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", blobPath)
	}
	if len(blob) != rec.Size {
		return nil, nil, nil
	}

	return &rec, blob, nil
}

// Put stores the artifact and then its record, so a visible record always has its blob.
func (s *Store) Put(dir string, record domain.CompileRecord, artifact []byte) error {
	fp := record.Fingerprint
	recordPath := filepath.Join(dir, shard(fp), fp+".json")
	blobPath := filepath.Join(dir, shard(fp), fp+".bin")

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	if err := os.MkdirAll(filepath.Dir(recordPath), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "dir", dir)
	}
	if err := writeFile(blobPath, artifact); err != nil {
		return err
	}
	return writeFile(recordPath, data)
}

func (s *Store) paths(dir string, fp domain.Fingerprint) (record, blob string) {
	name := fp.String()
	base := filepath.Join(dir, shard(name))
	return filepath.Join(base, name+".json"), filepath.Join(base, name+".bin")
}

// shard keeps directories small by grouping files on the first two hex digits.
func shard(fp string) string {
	if len(fp) < 2 {
		return "00"
	}
	return fp[:2]
}

// writeFile replaces path through a temporary file in the same directory.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := os.Chmod(name, domain.FilePerm); err != nil {
		_ = os.Remove(name)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	return nil
}
