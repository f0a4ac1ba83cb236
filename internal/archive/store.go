// Package archive provides read access to the time-series archive databases
// that reports are generated from.
package archive

import (
	"context"

	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

// Record is one archive row: a timestamp plus the observation payload.
type Record struct {
	Timestamp int64
	Values    map[string]any
}

// Stat names accepted by Aggregate.
const (
	StatMin   = "min"
	StatMax   = "max"
	StatAvg   = "avg"
	StatSum   = "sum"
	StatCount = "count"
)

// Store is a read-only time-series data source. A zero timestamp from the
// First/Last queries means the store holds no valid data. Implementations
// must tolerate repeated queries within a single generation run.
type Store interface {
	// FirstGoodTimestamp returns the earliest record timestamp, or 0 when empty.
	FirstGoodTimestamp(ctx context.Context) (int64, error)
	// LastGoodTimestamp returns the latest record timestamp, or 0 when empty.
	LastGoodTimestamp(ctx context.Context) (int64, error)
	// RecordNear returns the record closest to ts within maxDelta seconds,
	// or nil when none qualifies.
	RecordNear(ctx context.Context, ts, maxDelta int64) (*Record, error)
	// Aggregate computes a windowed statistic over one observation field.
	// Records stamped inside (window.Start, window.Stop] participate.
	Aggregate(ctx context.Context, w timespan.Window, field, stat string) (float64, error)
}
