package graph

import (
	"reflect"
	"slices"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolution describes what an input binding currently reads.
type Resolution struct {
	Sources []domain.SlotRef
	Literal any
}

// Connected reports whether the binding has at least one source.
func (r Resolution) Connected() bool {
	return len(r.Sources) > 0
}

// Connect binds source to the input target. A single input replaces its previous source;
// a multi-input appends. The source must be an output of a sibling instance or an input
// of the enclosing composite, its type must be assignable to the input type, and the new
// edge must not close a cycle.
func (g *Graph) Connect(target, source domain.SlotRef) error {
	b, err := g.Binding(target)
	if err != nil {
		return err
	}
	if err := g.checkVisible(b, source); err != nil {
		return err
	}
	if from := g.slotType(source); !domain.Assignable(from, b.Def.Type) {
		return g.typeMismatch(source, target, from, b.Def.Type)
	}
	if slices.Contains(b.sources, source) {
		return zerr.With(zerr.With(domain.ErrAlreadyConnected, "input", g.label(target)), "source", g.label(source))
	}
	if path, ok := g.reaches(source, target); ok {
		return g.buildCycleError(append([]domain.SlotRef{target}, path[:len(path)-1]...), target)
	}

	if b.Def.Multi {
		b.sources = append(b.sources, source)
	} else {
		b.sources = []domain.SlotRef{source}
	}
	g.bindingChanged(b)
	return nil
}

// Disconnect removes source from the input target. Multi-inputs keep the order of
// their remaining sources.
func (g *Graph) Disconnect(target, source domain.SlotRef) error {
	b, err := g.Binding(target)
	if err != nil {
		return err
	}
	idx := slices.Index(b.sources, source)
	if idx < 0 {
		return zerr.With(zerr.With(domain.ErrNotConnected, "input", g.label(target)), "source", source.String())
	}
	b.sources = slices.Delete(b.sources, idx, idx+1)
	g.bindingChanged(b)
	return nil
}

// DisconnectAll removes every source of the input target. It reverts to its literal.
func (g *Graph) DisconnectAll(target domain.SlotRef) error {
	b, err := g.Binding(target)
	if err != nil {
		return err
	}
	if len(b.sources) == 0 {
		return nil
	}
	b.sources = nil
	g.bindingChanged(b)
	return nil
}

// Resolve reports the sources or the literal of the input target.
func (g *Graph) Resolve(target domain.SlotRef) (Resolution, error) {
	b, err := g.Binding(target)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Sources: slices.Clone(b.sources), Literal: b.literal}, nil
}

// SetDefault replaces the literal of the input target.
func (g *Graph) SetDefault(target domain.SlotRef, value any) error {
	b, err := g.Binding(target)
	if err != nil {
		return err
	}
	if value != nil && !domain.Assignable(reflect.TypeOf(value), b.Def.Type) {
		return zerr.With(zerr.With(domain.ErrTypeMismatch, "input", g.label(target)), "type", reflect.TypeOf(value).String())
	}
	b.literal = value
	g.bindingChanged(b)
	return nil
}

// Invalidate marks an output cell stale so the next pull recomputes it.
func (g *Graph) Invalidate(ref domain.SlotRef) error {
	if _, err := g.Cell(ref); err != nil {
		return err
	}
	g.invalidate(ref)
	return nil
}

func (g *Graph) invalidate(ref domain.SlotRef) {
	c, ok := g.cells[ref]
	if !ok {
		return
	}
	c.flag.Invalidate()
	g.rev++
}

// RemoveInstance deletes an instance and its subtree. Every binding elsewhere in the graph
// that read a removed output is disconnected immediately, and composite outputs forwarding
// to a removed child become unforwarded.
func (g *Graph) RemoveInstance(id domain.InstanceID) error {
	inst, err := g.Instance(id)
	if err != nil {
		return err
	}
	if id == g.root {
		return zerr.With(domain.ErrRootRemoval, "instance", inst.Name)
	}

	removed := make(map[domain.InstanceID]bool)
	g.collect(inst, removed)

	if parent, ok := g.instances[inst.Parent]; ok {
		parent.Children = slices.DeleteFunc(parent.Children, func(cid domain.InstanceID) bool {
			return cid == id
		})
	}
	g.discard(id)

	for _, b := range g.bindings {
		n := len(b.sources)
		b.sources = slices.DeleteFunc(b.sources, func(src domain.SlotRef) bool {
			return removed[src.Instance]
		})
		if len(b.sources) != n {
			g.bindingChanged(b)
		}
	}
	for _, c := range g.cells {
		if !c.forward.IsZero() && removed[c.forward.Instance] {
			c.forward = domain.SlotRef{}
			c.flag.Invalidate()
		}
	}
	g.rev++
	return nil
}

func (g *Graph) collect(inst *Instance, into map[domain.InstanceID]bool) {
	into[inst.ID] = true
	for _, cid := range inst.Children {
		if child, ok := g.instances[cid]; ok {
			g.collect(child, into)
		}
	}
}

// bindingChanged stamps b with a new change sequence and marks the owning outputs fed by
// b stale.
func (g *Graph) bindingChanged(b *Binding) {
	g.seq++
	b.changed = g.seq
	g.rev++
	for _, c := range b.owner.outputs {
		if !b.owner.IsComposite() && dependsOn(c, b) {
			c.flag.Invalidate()
		}
	}
}

// checkVisible rejects sources that are neither sibling outputs nor inputs of the parent.
func (g *Graph) checkVisible(b *Binding, source domain.SlotRef) error {
	if c, ok := g.cells[source]; ok {
		if c.owner.Parent == b.owner.Parent && !b.owner.Parent.IsZero() {
			return nil
		}
		return zerr.With(zerr.With(domain.ErrInvalidConnection, "input", g.label(b.Ref)), "source", g.label(source))
	}
	if pb, ok := g.bindings[source]; ok {
		if pb.owner.ID == b.owner.Parent {
			return nil
		}
		return zerr.With(zerr.With(domain.ErrInvalidConnection, "input", g.label(b.Ref)), "source", g.label(source))
	}
	return zerr.With(domain.ErrSlotNotFound, "source", source.String())
}
