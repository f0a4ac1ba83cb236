package generate

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/reportgen/internal/archive"
	"git.home.luguber.info/inful/reportgen/internal/binding"
	"git.home.luguber.info/inful/reportgen/internal/config"
	"git.home.luguber.info/inful/reportgen/internal/logfields"
	"git.home.luguber.info/inful/reportgen/internal/metrics"
	"git.home.luguber.info/inful/reportgen/internal/render"
)

// RunSummary describes one completed generation run.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Generated int           `json:"generated"`
	Elapsed   time.Duration `json:"elapsed"`
	Timestamp time.Time     `json:"timestamp"`
}

// Runner executes complete generation runs over a configuration. Each run
// gets its own data source factory, provider registry and output tracker;
// concurrent runs must use separate Runner.Run invocations on separate
// configurations or destinations.
type Runner struct {
	cfg      *config.Config
	renderer render.Renderer
	rec      metrics.Recorder
}

// NewRunner creates a runner. A nil recorder disables instrumentation.
func NewRunner(cfg *config.Config, renderer render.Renderer, rec metrics.Recorder) *Runner {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Runner{cfg: cfg, renderer: renderer, rec: rec}
}

// Run walks the whole report tree once. refTS bounds generation; zero means
// "current to the latest available data". Provider misconfiguration and
// unresolvable collaborators abort the run; per-report and per-window
// problems are logged and absorbed.
func (r *Runner) Run(ctx context.Context, refTS int64) (*RunSummary, error) {
	started := time.Now()
	runID := uuid.NewString()

	loc, err := r.cfg.Location()
	if err != nil {
		return nil, err
	}

	bindings := make(map[string]string, len(r.cfg.Databases))
	for id, db := range r.cfg.Databases {
		bindings[id] = r.resolvePath(db.Path)
	}
	sources := archive.NewFactory(bindings, r.cfg.Defaults.Database)
	defer func() {
		if err := sources.Close(); err != nil {
			slog.Warn("Failed to close archive databases", logfields.Error(err))
		}
	}()

	tracker := NewTracker()
	env := &binding.Env{
		Station:  r.cfg.Station,
		Units:    r.cfg.Units,
		Extras:   r.cfg.Extras,
		Location: loc,
		Sources:  sources,
	}
	registry, err := binding.NewRegistry(env,
		r.cfg.Providers.ModernProviders(), r.cfg.Providers.SearchListExtensions, tracker.Snapshot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := registry.Close(); err != nil {
			slog.Warn("Failed to release providers", logfields.Error(err))
		}
	}()

	pipeline := NewPipeline(r.renderer, registry, sources, tracker, loc, r.rec)
	walker := NewWalker(pipeline,
		r.resolvePath(r.cfg.SkinDir), r.resolvePath(r.cfg.OutputDir))

	baseOpts := r.cfg.BaseOptions().Merge(&r.cfg.Reports)
	ngen := walker.Walk(ctx, "reports", &r.cfg.Reports, baseOpts, refTS)

	elapsed := time.Since(started)
	r.rec.ObserveRunDuration(elapsed)
	slog.Info("Generation run finished",
		logfields.RunID(runID), logfields.Generated(ngen),
		logfields.DurationMS(float64(elapsed.Milliseconds())))

	return &RunSummary{
		RunID:     runID,
		Generated: ngen,
		Elapsed:   elapsed,
		Timestamp: started,
	}, nil
}

// resolvePath anchors a relative path at the configured root. Absolute
// paths and the sqlite :memory: marker pass through unchanged.
func (r *Runner) resolvePath(p string) string {
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.cfg.Root, p)
}
