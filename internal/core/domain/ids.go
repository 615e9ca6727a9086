// Package domain contains the core model of the dataflow engine: ids, ticks, change flags,
// evaluation contexts, operator symbols, diagnostics and resource keys.
package domain

import (
	"github.com/google/uuid"
)

// symbolNamespace roots every name-derived symbol id.
var symbolNamespace = uuid.MustParse("6f1c2a8e-4b0d-5c3e-9a71-2d5e8f40b6c1")

// SymbolID identifies an operator definition.
type SymbolID uuid.UUID

// SlotID identifies an input or output definition of a symbol.
type SlotID uuid.UUID

// ChildID identifies a child definition inside a composite symbol.
type ChildID uuid.UUID

// InstanceID identifies an operator instance in a graph.
type InstanceID uuid.UUID

// NewSymbolID derives a stable symbol id from a symbol name.
func NewSymbolID(name string) SymbolID {
	return SymbolID(uuid.NewSHA1(symbolNamespace, []byte(name)))
}

// NewSlotID derives a stable slot id from its owning symbol and slot name.
func NewSlotID(symbol SymbolID, name string) SlotID {
	return SlotID(uuid.NewSHA1(uuid.UUID(symbol), []byte(name)))
}

// NewChildID derives a stable child id from its owning composite and child name.
func NewChildID(symbol SymbolID, name string) ChildID {
	return ChildID(uuid.NewSHA1(uuid.UUID(symbol), []byte("child:"+name)))
}

// RootInstanceID derives the id of a graph root instantiated from symbol.
func RootInstanceID(symbol SymbolID) InstanceID {
	return InstanceID(uuid.NewSHA1(uuid.UUID(symbol), []byte("root")))
}

// ChildInstanceID derives the id of the instance created for child inside parent.
// Ids are stable across reloads of the same patch.
func ChildInstanceID(parent InstanceID, child ChildID) InstanceID {
	return InstanceID(uuid.NewSHA1(uuid.UUID(parent), child[:]))
}

func (id SymbolID) String() string   { return uuid.UUID(id).String() }
func (id SlotID) String() string     { return uuid.UUID(id).String() }
func (id ChildID) String() string    { return uuid.UUID(id).String() }
func (id InstanceID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the id is unset.
func (id InstanceID) IsZero() bool { return id == InstanceID{} }

// IsZero reports whether the id is unset.
func (id ChildID) IsZero() bool { return id == ChildID{} }

// SlotRef addresses one input binding or output cell of one instance.
type SlotRef struct {
	Instance InstanceID
	Slot     SlotID
}

// Ref builds a SlotRef.
func Ref(instance InstanceID, slot SlotID) SlotRef {
	return SlotRef{Instance: instance, Slot: slot}
}

// IsZero reports whether the reference is unset.
func (r SlotRef) IsZero() bool { return r == SlotRef{} }

func (r SlotRef) String() string {
	return r.Instance.String() + "/" + r.Slot.String()
}
