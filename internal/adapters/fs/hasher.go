package fs

import (
	"github.com/cespare/xxhash/v2"
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher fingerprints resource sources with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint hashes the source content together with the entry point, the stage and
// whether the source is inline. The file path is not hashed, so moving a file keeps its
// fingerprint.
func (h *Hasher) Fingerprint(key domain.ResourceKey, source []byte) domain.Fingerprint {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(key.EntryPoint)
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(string(key.Stage))
	_, _ = hasher.Write([]byte{0})
	if key.Inline {
		_, _ = hasher.Write([]byte{1})
	} else {
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write(source)

	return domain.Fingerprint(hasher.Sum64())
}
