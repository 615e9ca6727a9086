package config

import (
	"reflect"
	"strings"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

var typeNames = map[string]reflect.Type{
	"":         nil,
	"any":      nil,
	"float":    domain.TypeOf[float64](),
	"number":   domain.TypeOf[float64](),
	"int":      domain.TypeOf[int](),
	"string":   domain.TypeOf[string](),
	"bool":     domain.TypeOf[bool](),
	"artifact": domain.TypeOf[*domain.Artifact](),
}

// symbolBuilder turns symbol DTOs into composites. User symbols are built on first use
// so they may reference each other in any order.
type symbolBuilder struct {
	library  ports.SymbolLibrary
	dtos     map[string]SymbolDTO
	built    map[string]*domain.Symbol
	building map[string]bool
}

func newSymbolBuilder(library ports.SymbolLibrary, user Ordered[SymbolDTO]) *symbolBuilder {
	dtos := make(map[string]SymbolDTO, len(user))
	for _, e := range user {
		dtos[e.Name] = e.Value
	}
	return &symbolBuilder{
		library:  library,
		dtos:     dtos,
		built:    make(map[string]*domain.Symbol, len(user)),
		building: make(map[string]bool),
	}
}

func (b *symbolBuilder) resolve(name string) (*domain.Symbol, error) {
	if sym, ok := b.built[name]; ok {
		return sym, nil
	}
	dto, isUser := b.dtos[name]
	if !isUser {
		if b.library != nil {
			if sym, ok := b.library.Lookup(name); ok {
				return sym, nil
			}
		}
		return nil, zerr.With(domain.ErrUnknownSymbol, "symbol", name)
	}
	if b.isBuiltin(name) {
		return nil, zerr.With(zerr.With(domain.ErrInvalidSymbol, "symbol", name), "reason", "shadows a built-in symbol")
	}
	if b.building[name] {
		return nil, zerr.With(zerr.With(domain.ErrCycleDetected, "symbol", name), "reason", "symbol contains itself")
	}

	b.building[name] = true
	sym, err := b.compose(name, dto)
	delete(b.building, name)
	if err != nil {
		return nil, err
	}
	b.built[name] = sym
	return sym, nil
}

func (b *symbolBuilder) isBuiltin(name string) bool {
	if b.library == nil {
		return false
	}
	_, ok := b.library.Lookup(name)
	return ok
}

func (b *symbolBuilder) compose(name string, dto SymbolDTO) (*domain.Symbol, error) {
	id := domain.NewSymbolID(name)
	sym := &domain.Symbol{
		ID:   id,
		Name: name,
		Transform: domain.TimeTransform{
			Offset: dto.Transform.Offset,
			Scale:  dto.Transform.Scale,
		},
	}

	for _, e := range dto.Inputs {
		typ, ok := typeNames[e.Value.Type]
		if !ok {
			return nil, zerr.With(zerr.With(domain.ErrInvalidSymbol, "symbol", name), "type", e.Value.Type)
		}
		def, err := coerce(e.Value.Default, typ)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "symbol", name), "input", e.Name)
		}
		sym.Inputs = append(sym.Inputs, domain.InputDef{
			ID:      domain.NewSlotID(id, e.Name),
			Name:    e.Name,
			Type:    typ,
			Default: def,
		})
	}

	for _, e := range dto.Nodes {
		if e.Name == "" || strings.ContainsAny(e.Name, "./") {
			return nil, zerr.With(zerr.With(domain.ErrInvalidSymbol, "symbol", name), "node", e.Name)
		}
		childSym, err := b.resolve(e.Value.Symbol)
		if err != nil {
			return nil, zerr.With(err, "node", e.Name)
		}
		defaults, err := childDefaults(childSym, e.Value.Inputs)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "symbol", name), "node", e.Name)
		}
		sym.Children = append(sym.Children, domain.ChildDef{
			ID:       domain.NewChildID(id, e.Name),
			Name:     e.Name,
			Symbol:   childSym,
			Defaults: defaults,
		})
	}

	for _, e := range dto.Outputs {
		src, srcDef, err := b.sourceEndpoint(sym, e.Value)
		if err != nil {
			return nil, zerr.With(err, "output", e.Name)
		}
		if src.Child.IsZero() {
			return nil, zerr.With(zerr.With(domain.ErrInvalidConnection, "symbol", name), "output", e.Name)
		}
		out := domain.OutputDef{ID: domain.NewSlotID(id, e.Name), Name: e.Name, Type: srcDef}
		sym.Outputs = append(sym.Outputs, out)
		sym.Connections = append(sym.Connections, domain.Connection{
			Source: src,
			Target: domain.Endpoint{Slot: out.ID},
		})
	}

	for _, c := range dto.Connections {
		src, _, err := b.sourceEndpoint(sym, c.From)
		if err != nil {
			return nil, err
		}
		dst, err := targetEndpoint(sym, c.To)
		if err != nil {
			return nil, err
		}
		sym.Connections = append(sym.Connections, domain.Connection{Source: src, Target: dst})
	}

	if err := sym.Validate(); err != nil {
		return nil, err
	}
	return sym, nil
}

// sourceEndpoint resolves "child.Slot" to a child output or ".Slot" to a composite input.
func (b *symbolBuilder) sourceEndpoint(sym *domain.Symbol, ref string) (domain.Endpoint, reflect.Type, error) {
	childName, slot, err := splitEndpoint(sym.Name, ref)
	if err != nil {
		return domain.Endpoint{}, nil, err
	}
	if childName == "" {
		in, ok := sym.InputByName(slot)
		if !ok {
			return domain.Endpoint{}, nil, slotNotFound(sym.Name, ref)
		}
		return domain.Endpoint{Slot: in.ID}, in.Type, nil
	}
	child, ok := sym.ChildByName(childName)
	if !ok {
		return domain.Endpoint{}, nil, zerr.With(zerr.With(domain.ErrInvalidConnection, "symbol", sym.Name), "unknown_node", childName)
	}
	out, ok := child.Symbol.OutputByName(slot)
	if !ok {
		return domain.Endpoint{}, nil, slotNotFound(sym.Name, ref)
	}
	return domain.Endpoint{Child: child.ID, Slot: out.ID}, out.Type, nil
}

// targetEndpoint resolves "child.Slot" to a child input or ".Slot" to a composite output.
func targetEndpoint(sym *domain.Symbol, ref string) (domain.Endpoint, error) {
	childName, slot, err := splitEndpoint(sym.Name, ref)
	if err != nil {
		return domain.Endpoint{}, err
	}
	if childName == "" {
		out, ok := sym.OutputByName(slot)
		if !ok {
			return domain.Endpoint{}, slotNotFound(sym.Name, ref)
		}
		return domain.Endpoint{Slot: out.ID}, nil
	}
	child, ok := sym.ChildByName(childName)
	if !ok {
		return domain.Endpoint{}, zerr.With(zerr.With(domain.ErrInvalidConnection, "symbol", sym.Name), "unknown_node", childName)
	}
	in, ok := child.Symbol.InputByName(slot)
	if !ok {
		return domain.Endpoint{}, slotNotFound(sym.Name, ref)
	}
	return domain.Endpoint{Child: child.ID, Slot: in.ID}, nil
}

func splitEndpoint(symbol, ref string) (child, slot string, err error) {
	i := strings.LastIndexByte(ref, '.')
	if i < 0 || i == len(ref)-1 {
		return "", "", zerr.With(zerr.With(domain.ErrInvalidConnection, "symbol", symbol), "endpoint", ref)
	}
	return ref[:i], ref[i+1:], nil
}

func slotNotFound(symbol, ref string) error {
	return zerr.With(zerr.With(domain.ErrSlotNotFound, "symbol", symbol), "endpoint", ref)
}

func childDefaults(sym *domain.Symbol, literals map[string]any) (map[string]any, error) {
	if len(literals) == 0 {
		return nil, nil
	}
	defaults := make(map[string]any, len(literals))
	for name, raw := range literals {
		in, ok := sym.InputByName(name)
		if !ok {
			return nil, zerr.With(zerr.With(domain.ErrSlotNotFound, "child_symbol", sym.Name), "input", name)
		}
		v, err := coerce(raw, in.Type)
		if err != nil {
			return nil, zerr.With(err, "input", name)
		}
		defaults[name] = v
	}
	return defaults, nil
}

// coerce converts a YAML literal to the declared slot type. YAML integers feed float inputs.
func coerce(v any, typ reflect.Type) (any, error) {
	if v == nil || typ == nil || typ.Kind() == reflect.Interface {
		return v, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(typ) {
		return v, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(typ.Kind()) {
		return rv.Convert(typ).Interface(), nil
	}
	return nil, zerr.With(zerr.With(domain.ErrTypeMismatch, "want", typ.String()), "got", rv.Type().String())
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
