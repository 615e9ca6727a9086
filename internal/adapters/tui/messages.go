package tui

import "go.trai.ch/pulse/internal/core/domain"

// MsgFrame carries the report of one evaluated frame.
type MsgFrame struct {
	Report domain.FrameReport
}

// MsgDiagnostic carries one engine diagnostic.
type MsgDiagnostic struct {
	Diagnostic domain.Diagnostic
}
