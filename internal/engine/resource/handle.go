package resource

import (
	"context"

	"go.trai.ch/pulse/internal/core/domain"
)

// handle is one dependent reference on a cache entry.
type handle struct {
	cache      *Cache
	key        domain.ResourceKey
	invalidate func()
	// seen is the entry version last handed to this dependent.
	seen     uint64
	released bool
}

func (h *handle) Get(ctx context.Context) domain.ResourceResult {
	h.cache.mu.Lock()
	released := h.released
	h.cache.mu.Unlock()
	if released {
		return domain.ResourceResult{Err: domain.ErrResourceReleased}
	}
	res := h.cache.GetOrCompile(ctx, h.key, "")
	h.cache.markSeen(h)
	return res
}

func (h *handle) Release() {
	h.cache.release(h)
}
