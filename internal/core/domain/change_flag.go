package domain

// Trigger classifies when an output cell recomputes on its own.
type Trigger uint8

const (
	// TriggerNone recomputes only when an input changed or the cell was invalidated.
	TriggerNone Trigger = iota
	// TriggerAnimated additionally recomputes once per tick.
	TriggerAnimated
	// TriggerAlways recomputes on every pull.
	TriggerAlways
)

func (t Trigger) String() string {
	switch t {
	case TriggerAnimated:
		return "animated"
	case TriggerAlways:
		return "always"
	default:
		return "none"
	}
}

// Stamp records when a cell value was last validated.
type Stamp struct {
	Tick       Tick
	Generation uint64
	valid      bool
}

// Valid reports whether the stamp was ever set by a successful recompute.
func (s Stamp) Valid() bool { return s.valid }

// ChangeFlag tracks explicit invalidation of one output cell.
//
// A cell is stale when it was never validated, when Invalidate was called after its
// last validation, or when it is animated and the clock moved on. Staleness caused by
// upstream changes is tracked by the graph through change sequence numbers.
type ChangeFlag struct {
	Trigger    Trigger
	generation uint64
}

// NewChangeFlag creates a flag with the given trigger.
func NewChangeFlag(trigger Trigger) ChangeFlag {
	return ChangeFlag{Trigger: trigger}
}

// Invalidate marks every stamp taken so far as stale.
func (f *ChangeFlag) Invalidate() {
	f.generation++
}

// Generation returns the explicit invalidation counter.
func (f *ChangeFlag) Generation() uint64 {
	return f.generation
}

// Stale reports whether a value validated with stamp s must be recomputed at tick now.
func (f *ChangeFlag) Stale(s Stamp, now Tick) bool {
	switch {
	case !s.valid:
		return true
	case s.Generation != f.generation:
		return true
	case f.Trigger == TriggerAlways:
		return true
	case f.Trigger == TriggerAnimated && now.After(s.Tick):
		return true
	default:
		return false
	}
}

// Clean returns a stamp validating the current generation at tick now.
func (f *ChangeFlag) Clean(now Tick) Stamp {
	return Stamp{Tick: now, Generation: f.generation, valid: true}
}
