package domain

// DefaultBPM is the tempo used when a patch does not set one.
const DefaultBPM = 120.0

// beatsPerBar is fixed at four.
const beatsPerBar = 4.0

// EvalContext is the immutable bundle passed down every pull. Times are measured in bars.
// EvalContext is comparable so a cell can memoize one value per distinct context.
type EvalContext struct {
	// Time is the global playback time.
	Time float64
	// LocalTime is Time after the time transforms of every enclosing composite.
	LocalTime float64
	// LocalFxTime is the effect time base. It keeps running while playback is paused.
	LocalFxTime float64
	// Speed is the playback rate.
	Speed float64
	// BPM is the playback tempo.
	BPM float64
}

// NewEvalContext creates a root context where every time base equals bars.
func NewEvalContext(bars, bpm float64) EvalContext {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	return EvalContext{
		Time:        bars,
		LocalTime:   bars,
		LocalFxTime: bars,
		Speed:       1,
		BPM:         bpm,
	}
}

// SecondsFromBars converts a duration in bars to seconds at the context tempo.
func (c EvalContext) SecondsFromBars(bars float64) float64 {
	bpm := c.BPM
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	return bars * beatsPerBar * 60 / bpm
}

// BarsFromSeconds converts seconds to bars at the given tempo.
func BarsFromSeconds(seconds, bpm float64) float64 {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	return seconds * bpm / (60 * beatsPerBar)
}

// TimeTransform remaps the local time bases for the subgraph of a composite.
// A zero Scale is treated as one.
type TimeTransform struct {
	Offset float64
	Scale  float64
}

// IsIdentity reports whether the transform leaves a context unchanged.
func (t TimeTransform) IsIdentity() bool {
	return t.Offset == 0 && (t.Scale == 0 || t.Scale == 1)
}

// Apply returns the child context seen by the subgraph.
func (t TimeTransform) Apply(c EvalContext) EvalContext {
	if t.IsIdentity() {
		return c
	}
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	c.LocalTime = c.LocalTime*scale + t.Offset
	c.LocalFxTime = c.LocalFxTime*scale + t.Offset
	c.Speed *= scale
	return c
}
