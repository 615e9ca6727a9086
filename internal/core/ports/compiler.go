// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/pulse/internal/core/domain"
)

// Compiler turns resource source text into an artifact.
//
// Compile may block for a long time. The resource cache guarantees at most one call
// per resource key is in flight.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	Compile(ctx context.Context, req domain.CompileRequest) ([]byte, error)
}
