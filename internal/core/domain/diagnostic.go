package domain

import "time"

// Severity ranks a diagnostic.
type Severity uint8

const (
	// SeverityDebug is for tracing engine decisions.
	SeverityDebug Severity = iota
	// SeverityInfo is for notable but expected events.
	SeverityInfo
	// SeverityWarning is for degraded but usable results.
	SeverityWarning
	// SeverityError is for failed recomputes and compiles.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Subsystems that report diagnostics.
const (
	SubsystemGraph    = "graph"
	SubsystemOperator = "operator"
	SubsystemResource = "resource"
	SubsystemWatcher  = "watcher"
	SubsystemFrame    = "frame"
)

// Diagnostic is a message from the engine to the host.
type Diagnostic struct {
	Severity  Severity
	Subsystem string
	Message   string
	// Instance is zero when the diagnostic is not tied to an operator instance.
	Instance InstanceID
	Err      error
	Time     time.Time
}

// HasInstance reports whether the diagnostic names an instance.
func (d Diagnostic) HasInstance() bool {
	return !d.Instance.IsZero()
}
