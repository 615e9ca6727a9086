package ports

import (
	"context"

	"go.trai.ch/pulse/internal/core/domain"
)

// Renderer presents frame results to the user.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer. Asynchronous renderers launch their loop here.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop and flush buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnFrame is called after every evaluated frame.
	OnFrame(report domain.FrameReport)

	// OnDiagnostic is called for every diagnostic reported while the renderer runs.
	OnDiagnostic(d domain.Diagnostic)
}
