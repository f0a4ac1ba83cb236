// Package binding composes the ordered variable bundles handed to the
// template renderer. Providers come in two generations: modern providers
// may contribute any number of bundles and see the full data source
// factory, legacy providers contribute exactly one bundle and only see
// the default store.
package binding

import (
	"context"
	"time"

	"git.home.luguber.info/inful/reportgen/internal/archive"
	"git.home.luguber.info/inful/reportgen/internal/config"
	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

// Bundle is one named set of template-visible variables.
type Bundle = map[string]any

// Provider contributes bundles for one output window. Implementations are
// constructed once per run and reused across all windows and reports.
type Provider interface {
	Bundles(ctx context.Context, w timespan.Window, sources *archive.Factory) ([]Bundle, error)
}

// LegacyProvider is the older single-bundle protocol with narrower data
// source access. Kept for backward compatibility with existing extensions.
type LegacyProvider interface {
	Bundle(ctx context.Context, w timespan.Window, store archive.Store) (Bundle, error)
}

// Env carries the run-scoped collaborators available to provider
// constructors. Construction may be expensive (e.g. opening a data source)
// and happens exactly once per run.
type Env struct {
	Station  config.StationConfig
	Units    map[string]config.UnitStyle
	Extras   map[string]string
	Location *time.Location
	Sources  *archive.Factory
}

// Constructor builds a modern provider from the run environment.
type Constructor func(env *Env) (Provider, error)

// LegacyConstructor builds a legacy provider from the run environment.
type LegacyConstructor func(env *Env) (LegacyProvider, error)
