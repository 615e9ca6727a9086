package domain

import (
	"reflect"

	"go.trai.ch/zerr"
)

// InputDef declares one input slot of a symbol.
type InputDef struct {
	ID      SlotID
	Name    string
	Type    reflect.Type
	Default any
	// Multi inputs accept an ordered list of sources.
	Multi bool
	// Param inputs are pulled with the context the operator itself receives,
	// before a ContextTransformer remaps the context for the remaining inputs.
	Param bool
}

// OutputDef declares one output slot of a symbol.
type OutputDef struct {
	ID      SlotID
	Name    string
	Type    reflect.Type
	Trigger Trigger
	// DependsOn lists the inputs the output reads. Nil means every input.
	DependsOn []SlotID
}

// ChildDef declares a child instance of a composite symbol.
type ChildDef struct {
	ID     ChildID
	Name   string
	Symbol *Symbol
	// Defaults overrides input literals of the child by input name.
	Defaults map[string]any
}

// Endpoint names a slot inside a composite. A zero Child addresses the composite itself.
type Endpoint struct {
	Child ChildID
	Slot  SlotID
}

// Connection wires a source endpoint to a target endpoint inside a composite.
// Valid shapes are child output to child input, composite input to child input,
// and child output to composite output.
type Connection struct {
	Source Endpoint
	Target Endpoint
}

// Symbol is an operator definition. Leaf symbols carry a factory; composite symbols carry
// children and connections and forward each of their outputs to a child output.
type Symbol struct {
	ID          SymbolID
	Name        string
	Inputs      []InputDef
	Outputs     []OutputDef
	New         func(env OperatorEnv) Operator
	Children    []ChildDef
	Connections []Connection
	Transform   TimeTransform
}

// IsComposite reports whether the symbol is built from children.
func (s *Symbol) IsComposite() bool {
	return s.New == nil
}

// Input returns the input definition with the given id.
func (s *Symbol) Input(id SlotID) (InputDef, bool) {
	for _, in := range s.Inputs {
		if in.ID == id {
			return in, true
		}
	}
	return InputDef{}, false
}

// Output returns the output definition with the given id.
func (s *Symbol) Output(id SlotID) (OutputDef, bool) {
	for _, out := range s.Outputs {
		if out.ID == id {
			return out, true
		}
	}
	return OutputDef{}, false
}

// InputByName returns the input definition with the given name.
func (s *Symbol) InputByName(name string) (InputDef, bool) {
	for _, in := range s.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return InputDef{}, false
}

// OutputByName returns the output definition with the given name.
func (s *Symbol) OutputByName(name string) (OutputDef, bool) {
	for _, out := range s.Outputs {
		if out.Name == name {
			return out, true
		}
	}
	return OutputDef{}, false
}

// Child returns the child definition with the given id.
func (s *Symbol) Child(id ChildID) (ChildDef, bool) {
	for _, c := range s.Children {
		if c.ID == id {
			return c, true
		}
	}
	return ChildDef{}, false
}

// ChildByName returns the child definition with the given name.
func (s *Symbol) ChildByName(name string) (ChildDef, bool) {
	for _, c := range s.Children {
		if c.Name == name {
			return c, true
		}
	}
	return ChildDef{}, false
}

// Validate checks slot and child names are unique and composite connections address
// existing slots in a legal direction.
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return zerr.With(ErrInvalidSymbol, "reason", "missing name")
	}
	names := make(map[string]bool, len(s.Inputs)+len(s.Outputs))
	for _, in := range s.Inputs {
		if names[in.Name] {
			return zerr.With(zerr.With(ErrInvalidSymbol, "symbol", s.Name), "duplicate_slot", in.Name)
		}
		names[in.Name] = true
	}
	for _, out := range s.Outputs {
		if names[out.Name] {
			return zerr.With(zerr.With(ErrInvalidSymbol, "symbol", s.Name), "duplicate_slot", out.Name)
		}
		names[out.Name] = true
	}
	if !s.IsComposite() {
		if len(s.Children) > 0 {
			return zerr.With(zerr.With(ErrInvalidSymbol, "symbol", s.Name), "reason", "leaf symbol with children")
		}
		return nil
	}

	children := make(map[string]bool, len(s.Children))
	for _, c := range s.Children {
		if children[c.Name] {
			return zerr.With(zerr.With(ErrDuplicateInstance, "symbol", s.Name), "child", c.Name)
		}
		if c.Symbol == nil {
			return zerr.With(zerr.With(ErrInvalidSymbol, "symbol", s.Name), "child", c.Name)
		}
		children[c.Name] = true
	}

	forwarded := make(map[SlotID]bool, len(s.Outputs))
	for _, conn := range s.Connections {
		if err := s.validateConnection(conn); err != nil {
			return err
		}
		if conn.Target.Child.IsZero() {
			if forwarded[conn.Target.Slot] {
				return zerr.With(zerr.With(ErrAlreadyConnected, "symbol", s.Name), "output", conn.Target.Slot.String())
			}
			forwarded[conn.Target.Slot] = true
		}
	}
	return nil
}

func (s *Symbol) validateConnection(conn Connection) error {
	invalid := func(reason string) error {
		return zerr.With(zerr.With(ErrInvalidConnection, "symbol", s.Name), "reason", reason)
	}

	if conn.Source.Child.IsZero() {
		if _, ok := s.Input(conn.Source.Slot); !ok {
			return invalid("source is not an input of the composite")
		}
	} else {
		child, ok := s.Child(conn.Source.Child)
		if !ok {
			return invalid("unknown source child")
		}
		if _, ok := child.Symbol.Output(conn.Source.Slot); !ok {
			return invalid("source is not an output of " + child.Name)
		}
	}

	if conn.Target.Child.IsZero() {
		if conn.Source.Child.IsZero() {
			return invalid("composite input cannot feed a composite output directly")
		}
		if _, ok := s.Output(conn.Target.Slot); !ok {
			return invalid("target is not an output of the composite")
		}
		return nil
	}
	child, ok := s.Child(conn.Target.Child)
	if !ok {
		return invalid("unknown target child")
	}
	if _, ok := child.Symbol.Input(conn.Target.Slot); !ok {
		return invalid("target is not an input of " + child.Name)
	}
	return nil
}
