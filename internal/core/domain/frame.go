package domain

import "time"

// OutputSample is the value of one requested output after a frame.
type OutputSample struct {
	Path  string
	Value any
	Err   error
}

// FrameReport summarizes one evaluated frame.
type FrameReport struct {
	Tick        Tick
	Context     EvalContext
	Outputs     []OutputSample
	Invalidated int
	Duration    time.Duration
}

// Failed reports whether any requested output failed to evaluate.
func (r FrameReport) Failed() bool {
	for _, o := range r.Outputs {
		if o.Err != nil {
			return true
		}
	}
	return false
}
