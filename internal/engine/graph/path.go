package graph

import (
	"iter"
	"strings"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/zerr"
)

// Walk yields every instance in tree order, parents before children.
func (g *Graph) Walk() iter.Seq[*Instance] {
	return func(yield func(*Instance) bool) {
		root, ok := g.instances[g.root]
		if !ok {
			return
		}
		var walk func(inst *Instance) bool
		walk = func(inst *Instance) bool {
			if !yield(inst) {
				return false
			}
			for _, cid := range inst.Children {
				if child, ok := g.instances[cid]; ok && !walk(child) {
					return false
				}
			}
			return true
		}
		walk(root)
	}
}

// Path returns the slash separated child names leading from the root to inst.
// The root itself has an empty path.
func (g *Graph) Path(id domain.InstanceID) string {
	inst, ok := g.instances[id]
	if !ok {
		return ""
	}
	return g.path(inst)
}

func (g *Graph) path(inst *Instance) string {
	var names []string
	for cur := inst; cur != nil && !cur.Parent.IsZero(); cur = g.instances[cur.Parent] {
		names = append(names, cur.Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// label renders ref as "path.Slot" for messages.
func (g *Graph) label(ref domain.SlotRef) string {
	inst, ok := g.instances[ref.Instance]
	if !ok {
		return ref.String()
	}
	prefix := g.path(inst)
	if prefix == "" {
		prefix = inst.Name
	}
	if def, ok := inst.Symbol.Output(ref.Slot); ok {
		return prefix + "." + def.Name
	}
	if def, ok := inst.Symbol.Input(ref.Slot); ok {
		return prefix + "." + def.Name
	}
	return prefix + "." + ref.Slot.String()
}

// Label renders ref as "path.Slot".
func (g *Graph) Label(ref domain.SlotRef) string {
	return g.label(ref)
}

// FindInstance resolves a slash separated instance path. The empty path is the root.
func (g *Graph) FindInstance(path string) (*Instance, error) {
	inst, ok := g.instances[g.root]
	if !ok {
		return nil, zerr.With(domain.ErrInstanceNotFound, "path", path)
	}
	if path == "" {
		return inst, nil
	}
	for _, name := range strings.Split(path, "/") {
		next := (*Instance)(nil)
		for _, cid := range inst.Children {
			if child := g.instances[cid]; child != nil && child.Name == name {
				next = child
				break
			}
		}
		if next == nil {
			return nil, zerr.With(domain.ErrInstanceNotFound, "path", path)
		}
		inst = next
	}
	return inst, nil
}

// Lookup resolves "path.Slot" to a slot reference. Outputs shadow inputs of the same name.
// A leading dot, as in ".Out", addresses the root.
func (g *Graph) Lookup(path string) (domain.SlotRef, error) {
	dot := strings.LastIndex(path, ".")
	if dot < 0 || dot == len(path)-1 {
		return domain.SlotRef{}, zerr.With(domain.ErrInvalidPath, "path", path)
	}
	inst, err := g.FindInstance(path[:dot])
	if err != nil {
		return domain.SlotRef{}, err
	}
	name := path[dot+1:]
	if def, ok := inst.Symbol.OutputByName(name); ok {
		return domain.Ref(inst.ID, def.ID), nil
	}
	if def, ok := inst.Symbol.InputByName(name); ok {
		return domain.Ref(inst.ID, def.ID), nil
	}
	return domain.SlotRef{}, zerr.With(zerr.With(domain.ErrSlotNotFound, "path", path), "slot", name)
}
