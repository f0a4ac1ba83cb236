// Package generate walks the report tree and runs the per-report generation
// pipeline: window computation, staleness filtering, variable composition,
// rendering and atomic commit.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/reportgen/internal/archive"
	"git.home.luguber.info/inful/reportgen/internal/binding"
	"git.home.luguber.info/inful/reportgen/internal/logfields"
	"git.home.luguber.info/inful/reportgen/internal/metrics"
	"git.home.luguber.info/inful/reportgen/internal/render"
	"git.home.luguber.info/inful/reportgen/internal/rgerrors"
	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

// Task is one resolved leaf report: everything the pipeline needs to
// generate the files for a single template.
type Task struct {
	Report   string
	Template string // absolute template path
	DestDir  string
	Encoding render.Encoding
	Database string
	Mode     timespan.Mode
	StaleAge int64 // seconds; zero or less means always regenerate
}

// Pipeline generates the output files for one task at a time. Per-window
// failures are logged and swallowed; nothing escapes Run.
type Pipeline struct {
	renderer render.Renderer
	registry *binding.Registry
	sources  *archive.Factory
	tracker  *Tracker
	loc      *time.Location
	rec      metrics.Recorder
	now      func() time.Time
}

// NewPipeline wires a pipeline for one generation run.
func NewPipeline(renderer render.Renderer, registry *binding.Registry, sources *archive.Factory,
	tracker *Tracker, loc *time.Location, rec metrics.Recorder) *Pipeline {
	return &Pipeline{
		renderer: renderer,
		registry: registry,
		sources:  sources,
		tracker:  tracker,
		loc:      loc,
		rec:      rec,
		now:      time.Now,
	}
}

// Run generates all windows for the task and returns the number of files
// written. refTS bounds the generation; when zero, the data source's last
// valid timestamp is used and acts as the effective reference timestamp.
func (p *Pipeline) Run(ctx context.Context, task Task, refTS int64) int {
	store, err := p.sources.Get(task.Database)
	if err != nil {
		slog.Warn("Skipping report: cannot open database",
			logfields.Report(task.Report), logfields.Database(task.Database), logfields.Error(err))
		return 0
	}

	start, err := store.FirstGoodTimestamp(ctx)
	if err != nil || start == 0 {
		slog.Warn("Skipping report: cannot find start time",
			logfields.Report(task.Report), logfields.Error(err))
		return 0
	}

	stop := refTS
	if stop == 0 {
		stop, err = store.LastGoodTimestamp(ctx)
		if err != nil || stop == 0 {
			slog.Warn("Skipping report: cannot find stop time",
				logfields.Report(task.Report), logfields.Error(err))
			return 0
		}
	}

	if err := os.MkdirAll(task.DestDir, 0o755); err != nil {
		slog.Warn("Skipping report: cannot create destination directory",
			logfields.Report(task.Report), logfields.Destination(task.DestDir), logfields.Error(err))
		return 0
	}

	ngen := 0
	for _, w := range timespan.Windows(start, stop, task.Mode, p.loc) {
		if task.Mode.IsSummary() {
			p.tracker.RecordIfNew(task.Mode, w.Label(task.Mode, p.loc))
		}

		dest := filepath.Join(task.DestDir, destFileName(task.Template, w, p.loc))

		if shouldSkipElapsed(dest, task.Mode, w, stop) {
			slog.Debug("Skipping elapsed summary window",
				logfields.Report(task.Report), logfields.Destination(dest),
				logfields.WindowStart(w.Start), logfields.WindowStop(w.Stop))
			p.rec.IncSkipped(task.Report, metrics.SkipReasonElapsed)
			continue
		}
		if shouldSkipFresh(dest, task.StaleAge, p.now()) {
			slog.Debug("Skipping fresh output",
				logfields.Report(task.Report), logfields.Destination(dest),
				slog.Int64("stale_age", task.StaleAge))
			p.rec.IncSkipped(task.Report, metrics.SkipReasonFresh)
			continue
		}

		if p.generateWindow(ctx, task, w, dest) {
			ngen++
		}
	}
	return ngen
}

// generateWindow renders and commits one window. Failures are logged and
// reported as false, never raised.
func (p *Pipeline) generateWindow(ctx context.Context, task Task, w timespan.Window, dest string) bool {
	bundles, err := p.registry.Compose(ctx, w, task.Encoding)
	if err != nil {
		p.logWindowFailure(task, dest, metrics.StageCompose, err)
		return false
	}

	text, err := p.renderer.Render(task.Template, bundles, task.Encoding)
	if err != nil {
		p.logWindowFailure(task, dest, metrics.StageRender, err)
		return false
	}

	if err := writeAtomic(dest, text); err != nil {
		p.logWindowFailure(task, dest, metrics.StageWrite, err)
		return false
	}

	p.rec.IncGenerated(task.Report)
	return true
}

func (p *Pipeline) logWindowFailure(task Task, dest, stage string, err error) {
	slog.Error("Generate failed, ignoring template for this window",
		logfields.Report(task.Report), logfields.Template(task.Template),
		logfields.Destination(dest), slog.String("stage", stage), logfields.Error(err))
	p.rec.IncFailure(task.Report, stage)
}

// writeAtomic writes content to a temporary file beside dest and renames it
// into place. The temporary path is removed afterward regardless of outcome,
// so a failed attempt never leaves debris or a truncated destination.
func writeAtomic(dest, content string) error {
	tmp := dest + ".tmp"
	defer func() { _ = os.Remove(tmp) }()

	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return rgerrors.Wrap(err, rgerrors.CategoryFileSystem, rgerrors.SeverityWindow, "write temp file")
	}
	if err := os.Rename(tmp, dest); err != nil {
		return rgerrors.Wrap(err, rgerrors.CategoryFileSystem, rgerrors.SeverityWindow, "rename into place")
	}
	return nil
}

// destFileName derives the destination filename from the template name:
// the template suffix is stripped, markdown templates map to .html, and
// YYYY/MM placeholders are substituted from the window's start civil date.
func destFileName(templatePath string, w timespan.Window, loc *time.Location) string {
	name := strings.TrimSuffix(filepath.Base(templatePath), render.TemplateSuffix)
	if render.IsMarkdown(templatePath) {
		name = strings.TrimSuffix(name, ".md") + ".html"
	}
	if strings.Contains(name, "YYYY") || strings.Contains(name, "MM") {
		t := time.Unix(w.Start, 0).In(loc)
		name = strings.ReplaceAll(name, "YYYY", fmt.Sprintf("%04d", t.Year()))
		name = strings.ReplaceAll(name, "MM", fmt.Sprintf("%02d", int(t.Month())))
	}
	return name
}
