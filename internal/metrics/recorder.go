// Package metrics defines the instrumentation surface of the generation
// pipeline, with a Prometheus-backed implementation and a no-op fallback.
package metrics

import "time"

// Skip reasons recorded per window.
const (
	SkipReasonFresh   = "fresh"
	SkipReasonElapsed = "elapsed"
)

// Failure stages recorded per window.
const (
	StageCompose = "compose"
	StageRender  = "render"
	StageWrite   = "write"
)

// Recorder receives generation pipeline events.
type Recorder interface {
	IncGenerated(report string)
	IncSkipped(report, reason string)
	IncFailure(report, stage string)
	ObserveRunDuration(d time.Duration)
}

// Noop discards all events.
type Noop struct{}

func (Noop) IncGenerated(string)              {}
func (Noop) IncSkipped(string, string)        {}
func (Noop) IncFailure(string, string)        {}
func (Noop) ObserveRunDuration(time.Duration) {}
