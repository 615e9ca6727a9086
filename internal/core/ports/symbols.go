package ports

import "go.trai.ch/pulse/internal/core/domain"

// SymbolLibrary resolves operator symbols by name.
//
//go:generate mockgen -source=symbols.go -destination=mocks/mock_symbols.go -package=mocks
type SymbolLibrary interface {
	Lookup(name string) (*domain.Symbol, bool)
	Names() []string
}
