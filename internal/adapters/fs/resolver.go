package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceResolver = (*Resolver)(nil)

// Resolver locates resource files in an ordered list of resource folders.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the cleaned absolute path of a resource file. Absolute paths are used
// as is; relative paths are searched in folders in order and the first regular file wins.
func (r *Resolver) Resolve(path string, folders []string) (string, error) {
	if path == "" {
		return "", domain.ErrEmptySourcePath
	}

	if filepath.IsAbs(path) {
		if isFile(path) {
			return filepath.Clean(path), nil
		}
		return "", zerr.With(domain.ErrSourceNotFound, "path", path)
	}

	for _, folder := range folders {
		candidate := filepath.Join(folder, path)
		if isFile(candidate) {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", zerr.With(zerr.Wrap(err, "failed to resolve absolute path"), "path", candidate)
			}
			return abs, nil
		}
	}

	err := zerr.With(domain.ErrSourceNotFound, "path", path)
	if len(folders) > 0 {
		err = zerr.With(err, "folders", folders)
	}
	return "", err
}

// Read returns the content of a resolved path.
func (r *Resolver) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from Resolve
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, zerr.With(domain.ErrSourceNotFound, "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", path)
	}
	return data, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
