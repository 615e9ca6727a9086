package ports

import "go.trai.ch/pulse/internal/core/domain"

// ConfigLoader defines the interface for loading a patch.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the patch file at path, or discovers pulse.yaml upwards from the
	// working directory when path is empty.
	Load(path string) (*domain.Patch, error)
}
