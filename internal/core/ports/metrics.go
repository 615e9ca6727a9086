package ports

import "time"

// Metrics records engine counters.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	FrameEvaluated(d time.Duration, failed bool)
	Recomputed(symbol string, failed bool)
	CacheLookup(hit bool)
	Compiled(d time.Duration, failed bool)
	Invalidated(n int)
}
