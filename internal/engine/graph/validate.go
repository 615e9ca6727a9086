package graph

import (
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/zerr"
)

// upstream returns the slots ref reads from: the feeding bindings of a leaf output, the
// forwarded child output of a composite output, or the sources of a binding.
func (g *Graph) upstream(ref domain.SlotRef) []domain.SlotRef {
	if c, ok := g.cells[ref]; ok {
		if c.owner.IsComposite() {
			if c.forward.IsZero() {
				return nil
			}
			return []domain.SlotRef{c.forward}
		}
		deps := g.dependencies(c)
		refs := make([]domain.SlotRef, len(deps))
		for i, b := range deps {
			refs[i] = b.Ref
		}
		return refs
	}
	if b, ok := g.bindings[ref]; ok {
		return b.sources
	}
	return nil
}

// reaches reports whether to is reachable upstream from from, returning the path
// from..to when it is.
func (g *Graph) reaches(from, to domain.SlotRef) ([]domain.SlotRef, bool) {
	visited := make(map[domain.SlotRef]bool)
	var path []domain.SlotRef

	var visit func(u domain.SlotRef) bool
	visit = func(u domain.SlotRef) bool {
		visited[u] = true
		path = append(path, u)
		if u == to {
			return true
		}
		for _, dep := range g.upstream(u) {
			if !visited[dep] && visit(dep) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if visit(from) {
		return path, true
	}
	return nil, false
}

// Validate checks every slot of the graph for dependency cycles and dangling sources.
func (g *Graph) Validate() error {
	visited := make(map[domain.SlotRef]int) // 0: unvisited, 1: visiting, 2: visited
	var path []domain.SlotRef

	var visit func(u domain.SlotRef) error
	visit = func(u domain.SlotRef) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.upstream(u) {
			if _, isCell := g.cells[dep]; !isCell {
				if _, isBinding := g.bindings[dep]; !isBinding {
					return zerr.With(zerr.With(domain.ErrSlotNotFound, "dependency", dep.String()), "slot", g.label(u))
				}
			}
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		return nil
	}

	for inst := range g.Walk() {
		for _, c := range inst.outputs {
			if visited[c.Ref] == 0 {
				if err := visit(c.Ref); err != nil {
					return err
				}
			}
		}
		for _, b := range inst.inputs {
			if visited[b.Ref] == 0 {
				if err := visit(b.Ref); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []domain.SlotRef, dep domain.SlotRef) error {
	cyclePath := ""
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += g.label(path[i]) + " -> "
	}
	cyclePath += g.label(dep)
	return zerr.With(domain.ErrCycleDetected, "cycle", cyclePath)
}
