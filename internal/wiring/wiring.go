// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pulse/internal/adapters/cas"
	_ "go.trai.ch/pulse/internal/adapters/compiler"
	_ "go.trai.ch/pulse/internal/adapters/config"
	_ "go.trai.ch/pulse/internal/adapters/diagnostics"
	_ "go.trai.ch/pulse/internal/adapters/fs"
	_ "go.trai.ch/pulse/internal/adapters/logger"
	_ "go.trai.ch/pulse/internal/adapters/metrics"
	_ "go.trai.ch/pulse/internal/adapters/telemetry"
	_ "go.trai.ch/pulse/internal/adapters/watcher"
	// Register app and operator nodes.
	_ "go.trai.ch/pulse/internal/app"
	_ "go.trai.ch/pulse/internal/operators"
)
