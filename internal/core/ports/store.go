package ports

import "go.trai.ch/pulse/internal/core/domain"

// CompileStore persists compiled artifacts by fingerprint.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CompileStore interface {
	// Get returns the record and artifact for a fingerprint.
	// Returns nil, nil, nil if not found.
	Get(dir string, fp domain.Fingerprint) (*domain.CompileRecord, []byte, error)

	// Put stores the record and its artifact.
	Put(dir string, record domain.CompileRecord, artifact []byte) error
}
