// Package operators provides the built-in operator symbols and the library that
// resolves symbol names for patches.
package operators

import (
	"slices"
	"sync"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SymbolLibrary = (*Library)(nil)

// Library is a registry of symbols by name.
type Library struct {
	mu      sync.RWMutex
	symbols map[string]*domain.Symbol
}

// NewLibrary creates a library holding every built-in operator.
func NewLibrary() *Library {
	l := &Library{symbols: make(map[string]*domain.Symbol)}
	for _, sym := range Builtins() {
		l.symbols[sym.Name] = sym
	}
	return l
}

// Builtins returns fresh copies of the built-in symbols.
func Builtins() []*domain.Symbol {
	return []*domain.Symbol{
		NewValue(),
		NewAdd(),
		NewMultiply(),
		NewSum(),
		NewTime(),
		NewSine(),
		NewAccumulator(),
		NewTimeRemap(),
		NewFormat(),
		NewShader(),
		NewParams(),
	}
}

// Register adds sym. Names must be unique.
func (l *Library) Register(sym *domain.Symbol) error {
	if err := sym.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.symbols[sym.Name]; exists {
		return zerr.With(zerr.With(domain.ErrInvalidSymbol, "symbol", sym.Name), "reason", "already registered")
	}
	l.symbols[sym.Name] = sym
	return nil
}

// Lookup returns the symbol registered under name.
func (l *Library) Lookup(name string) (*domain.Symbol, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sym, ok := l.symbols[name]
	return sym, ok
}

// Names returns every registered name in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.symbols))
	for name := range l.symbols {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
