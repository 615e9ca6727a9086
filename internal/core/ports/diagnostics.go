package ports

import "go.trai.ch/pulse/internal/core/domain"

// DiagnosticSink receives diagnostics from the engine.
// Report may be called from any goroutine.
//
//go:generate mockgen -source=diagnostics.go -destination=mocks/mock_diagnostics.go -package=mocks
type DiagnosticSink interface {
	Report(d domain.Diagnostic)
}
