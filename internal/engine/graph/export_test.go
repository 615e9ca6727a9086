package graph

import "go.trai.ch/pulse/internal/core/domain"

// ForceSource wires src into b without the cycle and type checks Connect applies.
func ForceSource(b *Binding, src domain.SlotRef) {
	b.sources = []domain.SlotRef{src}
}
