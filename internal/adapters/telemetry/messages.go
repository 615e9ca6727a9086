package telemetry

import "time"

// MsgSpanEnded reports a finished span to an interactive view.
type MsgSpanEnded struct {
	SpanID   string
	Name     string
	Duration time.Duration
	Err      error
}
