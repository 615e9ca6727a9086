package graph

import (
	"reflect"
	"slices"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/zerr"
)

// Instance is one operator in the tree. A leaf instance owns an operator; a composite
// instance owns children and forwards its outputs to child outputs.
type Instance struct {
	ID       domain.InstanceID
	Name     string
	Symbol   *domain.Symbol
	Parent   domain.InstanceID
	Children []domain.InstanceID

	inputs  []*Binding
	outputs []*Cell
	op      domain.Operator
}

// IsComposite reports whether the instance is built from children.
func (i *Instance) IsComposite() bool {
	return i.Symbol.IsComposite()
}

// Inputs returns the bindings in declaration order.
func (i *Instance) Inputs() []*Binding {
	return i.inputs
}

// Outputs returns the cells in declaration order.
func (i *Instance) Outputs() []*Cell {
	return i.outputs
}

// Operator returns the operator of a leaf instance.
func (i *Instance) Operator() domain.Operator {
	return i.op
}

// Binding is the input side of a slot: a literal default, one upstream source, or an
// ordered list of sources for multi-inputs. Sources are output cells of siblings or
// inputs of the enclosing composite.
type Binding struct {
	Ref     domain.SlotRef
	Def     domain.InputDef
	owner   *Instance
	literal any
	sources []domain.SlotRef
	changed uint64
}

// Literal returns the default value used while the binding is unconnected.
func (b *Binding) Literal() any {
	return b.literal
}

// Sources returns the connected sources in order.
func (b *Binding) Sources() []domain.SlotRef {
	return slices.Clone(b.sources)
}

// Cell is the output side of a slot.
type Cell struct {
	Ref     domain.SlotRef
	Def     domain.OutputDef
	owner   *Instance
	flag    domain.ChangeFlag
	forward domain.SlotRef
	states  []*cellState
	last    any
	hasLast bool
}

// Forward returns the child output a composite output reads from.
func (c *Cell) Forward() domain.SlotRef {
	return c.forward
}

// Flag returns the change flag of the cell.
func (c *Cell) Flag() *domain.ChangeFlag {
	return &c.flag
}

// Instantiate creates the root instance of the graph from a symbol, recursively creating
// children and wiring their connections.
func (g *Graph) Instantiate(sym *domain.Symbol) (domain.InstanceID, error) {
	if !g.root.IsZero() {
		return domain.InstanceID{}, zerr.With(domain.ErrDuplicateInstance, "instance", "root")
	}
	id := domain.RootInstanceID(sym.ID)
	if _, exists := g.instances[id]; exists {
		return domain.InstanceID{}, zerr.With(domain.ErrDuplicateInstance, "instance", sym.Name)
	}
	if _, err := g.create(id, sym.Name, sym, domain.InstanceID{}); err != nil {
		g.discard(id)
		return domain.InstanceID{}, err
	}
	g.root = id
	if err := g.Validate(); err != nil {
		g.discard(id)
		g.root = domain.InstanceID{}
		return domain.InstanceID{}, err
	}
	return id, nil
}

// AddInstance creates a new child named name inside the composite parent.
func (g *Graph) AddInstance(parent domain.InstanceID, name string, sym *domain.Symbol) (domain.InstanceID, error) {
	p, err := g.Instance(parent)
	if err != nil {
		return domain.InstanceID{}, err
	}
	if !p.IsComposite() {
		return domain.InstanceID{}, zerr.With(domain.ErrNotComposite, "instance", g.path(p))
	}
	for _, cid := range p.Children {
		if g.instances[cid].Name == name {
			return domain.InstanceID{}, zerr.With(zerr.With(domain.ErrDuplicateInstance, "parent", g.path(p)), "name", name)
		}
	}

	id := domain.ChildInstanceID(parent, domain.NewChildID(p.Symbol.ID, name))
	if _, exists := g.instances[id]; exists {
		return domain.InstanceID{}, zerr.With(zerr.With(domain.ErrDuplicateInstance, "parent", g.path(p)), "name", name)
	}
	if _, err := g.create(id, name, sym, parent); err != nil {
		g.discard(id)
		return domain.InstanceID{}, err
	}
	p.Children = append(p.Children, id)
	g.rev++
	return id, nil
}

func (g *Graph) create(id domain.InstanceID, name string, sym *domain.Symbol, parent domain.InstanceID) (*Instance, error) {
	if err := sym.Validate(); err != nil {
		return nil, err
	}
	if _, exists := g.instances[id]; exists {
		return nil, zerr.With(domain.ErrDuplicateInstance, "instance", name)
	}

	inst := &Instance{
		ID:     id,
		Name:   name,
		Symbol: sym,
		Parent: parent,
	}
	g.instances[id] = inst

	for _, def := range sym.Inputs {
		b := &Binding{
			Ref:     domain.Ref(id, def.ID),
			Def:     def,
			owner:   inst,
			literal: def.Default,
		}
		inst.inputs = append(inst.inputs, b)
		g.bindings[b.Ref] = b
	}
	for _, def := range sym.Outputs {
		c := &Cell{
			Ref:   domain.Ref(id, def.ID),
			Def:   def,
			owner: inst,
			flag:  domain.NewChangeFlag(def.Trigger),
		}
		inst.outputs = append(inst.outputs, c)
		g.cells[c.Ref] = c
	}

	if !sym.IsComposite() {
		inst.op = sym.New(domain.OperatorEnv{
			Instance: id,
			Name:     name,
			Symbol:   sym,
			Invalidate: func(output domain.SlotID) {
				g.invalidate(domain.Ref(id, output))
			},
			Resources: g.resources,
		})
		return inst, nil
	}

	for _, child := range sym.Children {
		cid := domain.ChildInstanceID(id, child.ID)
		ci, err := g.create(cid, child.Name, child.Symbol, id)
		if _, created := g.instances[cid]; created {
			inst.Children = append(inst.Children, cid)
		}
		if err != nil {
			return nil, err
		}
		if err := g.applyDefaults(ci, child.Defaults); err != nil {
			return nil, err
		}
	}
	for _, conn := range sym.Connections {
		if err := g.wire(inst, conn); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (g *Graph) applyDefaults(inst *Instance, defaults map[string]any) error {
	for name, v := range defaults {
		def, ok := inst.Symbol.InputByName(name)
		if !ok {
			return zerr.With(zerr.With(domain.ErrSlotNotFound, "instance", inst.Name), "input", name)
		}
		if v != nil && !domain.Assignable(reflect.TypeOf(v), def.Type) {
			return zerr.With(zerr.With(domain.ErrTypeMismatch, "input", inst.Name+"."+name), "type", reflect.TypeOf(v).String())
		}
		g.bindings[domain.Ref(inst.ID, def.ID)].literal = v
	}
	return nil
}

// wire applies a validated composite connection.
func (g *Graph) wire(inst *Instance, conn domain.Connection) error {
	src := domain.Ref(inst.ID, conn.Source.Slot)
	if !conn.Source.Child.IsZero() {
		src = domain.Ref(domain.ChildInstanceID(inst.ID, conn.Source.Child), conn.Source.Slot)
	}
	srcType := g.slotType(src)

	if conn.Target.Child.IsZero() {
		out := g.cells[domain.Ref(inst.ID, conn.Target.Slot)]
		if !domain.Assignable(srcType, out.Def.Type) {
			return g.typeMismatch(src, out.Ref, srcType, out.Def.Type)
		}
		out.forward = src
		return nil
	}
	target := g.bindings[domain.Ref(domain.ChildInstanceID(inst.ID, conn.Target.Child), conn.Target.Slot)]
	if !domain.Assignable(srcType, target.Def.Type) {
		return g.typeMismatch(src, target.Ref, srcType, target.Def.Type)
	}
	if target.Def.Multi {
		target.sources = append(target.sources, src)
	} else {
		target.sources = []domain.SlotRef{src}
	}
	return nil
}

// slotType returns the declared value type of a cell or binding.
func (g *Graph) slotType(ref domain.SlotRef) reflect.Type {
	if c, ok := g.cells[ref]; ok {
		return c.Def.Type
	}
	if b, ok := g.bindings[ref]; ok {
		return b.Def.Type
	}
	return nil
}

func (g *Graph) typeMismatch(src, target domain.SlotRef, from, to reflect.Type) error {
	err := zerr.With(domain.ErrTypeMismatch, "source", g.label(src))
	err = zerr.With(err, "target", g.label(target))
	return zerr.With(zerr.With(err, "source_type", typeName(from)), "target_type", typeName(to))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	return t.String()
}

// discard drops a partially created subtree without touching other bindings.
func (g *Graph) discard(id domain.InstanceID) {
	inst, ok := g.instances[id]
	if !ok {
		return
	}
	for _, cid := range inst.Children {
		g.discard(cid)
	}
	for _, b := range inst.inputs {
		delete(g.bindings, b.Ref)
	}
	for _, c := range inst.outputs {
		delete(g.cells, c.Ref)
	}
	if d, ok := inst.op.(domain.Disposer); ok {
		d.Dispose()
	}
	delete(g.instances, id)
}
