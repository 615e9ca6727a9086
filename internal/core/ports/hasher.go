package ports

import "go.trai.ch/pulse/internal/core/domain"

// Hasher defines the interface for fingerprinting resource sources.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Fingerprint hashes the source content together with the entry point and stage of key.
	Fingerprint(key domain.ResourceKey, source []byte) domain.Fingerprint
}
