package telemetry

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Sender delivers messages to a running Bubble Tea program.
type Sender interface {
	Send(msg tea.Msg)
}

var _ sdktrace.SpanProcessor = (*TUIBridge)(nil)

// TUIBridge implements sdktrace.SpanProcessor to forward finished spans to a Bubble Tea
// program as MsgSpanEnded.
type TUIBridge struct {
	sender Sender
}

// NewTUIBridge returns a new TUIBridge.
func NewTUIBridge(sender Sender) *TUIBridge {
	return &TUIBridge{sender: sender}
}

// OnStart does nothing.
func (b *TUIBridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd forwards the finished span.
func (b *TUIBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.sender == nil {
		return
	}
	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	var err error
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = s.Name() + " failed"
		}
		err = errors.New(desc)
	}

	b.sender.Send(MsgSpanEnded{
		SpanID:   sc.SpanID().String(),
		Name:     s.Name(),
		Duration: s.EndTime().Sub(s.StartTime()),
		Err:      err,
	})
}

// ForceFlush does nothing.
func (b *TUIBridge) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *TUIBridge) Shutdown(context.Context) error {
	return nil
}
