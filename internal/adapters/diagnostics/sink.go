// Package diagnostics implements the diagnostic sink. Every diagnostic is logged with
// its subsystem and instance, kept in a bounded ring for status display and fanned out
// to subscribers such as the frame renderer.
package diagnostics

import (
	"slices"
	"sync"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultCapacity is the number of diagnostics retained by a Sink.
const DefaultCapacity = 64

// Sink implements ports.DiagnosticSink.
type Sink struct {
	logger ports.Logger

	mu          sync.Mutex
	ring        []domain.Diagnostic
	next        int
	full        bool
	subscribers map[int]func(domain.Diagnostic)
	nextSub     int
}

// Option configures a Sink.
type Option func(*Sink)

// WithCapacity sets how many diagnostics are retained.
func WithCapacity(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.ring = make([]domain.Diagnostic, n)
		}
	}
}

// New creates a Sink logging to logger.
func New(logger ports.Logger, opts ...Option) *Sink {
	s := &Sink{
		logger:      logger,
		ring:        make([]domain.Diagnostic, DefaultCapacity),
		subscribers: make(map[int]func(domain.Diagnostic)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report logs d, retains it and hands it to every subscriber.
func (s *Sink) Report(d domain.Diagnostic) {
	s.log(d)

	s.mu.Lock()
	s.ring[s.next] = d
	s.next = (s.next + 1) % len(s.ring)
	if s.next == 0 {
		s.full = true
	}
	subs := make([]func(domain.Diagnostic), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(d)
	}
}

func (s *Sink) log(d domain.Diagnostic) {
	if s.logger == nil {
		return
	}
	l := s.logger
	if d.Subsystem != "" {
		l = l.With("subsystem", d.Subsystem)
	}
	if d.HasInstance() {
		l = l.With("instance", d.Instance.String())
	}
	switch d.Severity {
	case domain.SeverityDebug:
		l.Debug(d.Message)
	case domain.SeverityInfo:
		l.Info(d.Message)
	case domain.SeverityWarning:
		l.Warn(d.Message)
	default:
		if d.Err != nil {
			l.Error(d.Err)
			return
		}
		l.Error(zerr.New(d.Message))
	}
}

// Subscribe registers fn for every later diagnostic. The returned function removes it.
func (s *Sink) Subscribe(fn func(domain.Diagnostic)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Entries returns the retained diagnostics, oldest first.
func (s *Sink) Entries() []domain.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		return slices.Clone(s.ring[:s.next])
	}
	out := make([]domain.Diagnostic, 0, len(s.ring))
	out = append(out, s.ring[s.next:]...)
	return append(out, s.ring[:s.next]...)
}

// Last returns the newest retained diagnostic.
func (s *Sink) Last() (domain.Diagnostic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full && s.next == 0 {
		return domain.Diagnostic{}, false
	}
	i := s.next - 1
	if i < 0 {
		i = len(s.ring) - 1
	}
	return s.ring[i], true
}

// LastError returns the newest retained diagnostic of error severity.
func (s *Sink) LastError() (domain.Diagnostic, bool) {
	entries := s.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Severity == domain.SeverityError {
			return entries[i], true
		}
	}
	return domain.Diagnostic{}, false
}

// Clear drops every retained diagnostic.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.ring)
	s.next = 0
	s.full = false
}
