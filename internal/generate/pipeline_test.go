package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/reportgen/internal/archive"
	"git.home.luguber.info/inful/reportgen/internal/binding"
	"git.home.luguber.info/inful/reportgen/internal/metrics"
	"git.home.luguber.info/inful/reportgen/internal/render"
	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

// stubRenderer returns canned output (or a canned failure) and counts calls.
type stubRenderer struct {
	out   string
	err   error
	calls int
}

func (s *stubRenderer) Render(string, []map[string]any, render.Encoding) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

type pipelineFixture struct {
	pipeline *Pipeline
	sources  *archive.Factory
	tracker  *Tracker
	destDir  string
}

func newFixture(t *testing.T, renderer render.Renderer, seed map[int64]map[string]any) *pipelineFixture {
	t.Helper()
	sources := archive.NewFactory(map[string]string{"archive": ":memory:"}, "archive")
	t.Cleanup(func() { _ = sources.Close() })

	store, err := sources.Default()
	require.NoError(t, err)
	sqlStore := store.(*archive.SQLiteStore)
	ctx := context.Background()
	for ts, values := range seed {
		require.NoError(t, sqlStore.Insert(ctx, ts, values))
	}

	tracker := NewTracker()
	env := &binding.Env{Location: time.UTC, Sources: sources}
	registry, err := binding.NewRegistry(env, nil, nil, tracker.Snapshot)
	require.NoError(t, err)
	t.Cleanup(func() { _ = registry.Close() })

	return &pipelineFixture{
		pipeline: NewPipeline(renderer, registry, sources, tracker, time.UTC, metrics.Noop{}),
		sources:  sources,
		tracker:  tracker,
		destDir:  t.TempDir(),
	}
}

func (f *pipelineFixture) task(report, template string, mode timespan.Mode) Task {
	return Task{
		Report:   report,
		Template: template,
		DestDir:  f.destDir,
		Encoding: render.EncodingUTF8,
		Mode:     mode,
	}
}

func TestRunSingleWindow(t *testing.T) {
	// Data spans 1000..5000, stale age unset, reference timestamp 5000:
	// exactly one file for the whole range.
	renderer := &stubRenderer{out: "report body"}
	f := newFixture(t, renderer, map[int64]map[string]any{
		1000: {"temp": 1.0},
		5000: {"temp": 2.0},
	})

	n := f.pipeline.Run(context.Background(), f.task("index", "index.html.tmpl", timespan.ModeNone), 5000)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, renderer.calls)

	content, err := os.ReadFile(filepath.Join(f.destDir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "report body", string(content))
}

func TestRunEmptySourceSkipsTask(t *testing.T) {
	renderer := &stubRenderer{out: "x"}
	f := newFixture(t, renderer, nil)

	n := f.pipeline.Run(context.Background(), f.task("index", "index.html.tmpl", timespan.ModeNone), 5000)
	assert.Zero(t, n)
	assert.Zero(t, renderer.calls, "no valid start time, nothing rendered")
}

func TestRunUnknownDatabaseSkipsTask(t *testing.T) {
	renderer := &stubRenderer{out: "x"}
	f := newFixture(t, renderer, map[int64]map[string]any{1000: {"t": 1.0}})

	task := f.task("index", "index.html.tmpl", timespan.ModeNone)
	task.Database = "nope"
	n := f.pipeline.Run(context.Background(), task, 5000)
	assert.Zero(t, n)
}

func TestRenderFailurePreservesExistingOutput(t *testing.T) {
	f := newFixture(t, &stubRenderer{err: errors.New("template exploded")},
		map[int64]map[string]any{1000: {"t": 1.0}})

	dest := filepath.Join(f.destDir, "index.html")
	require.NoError(t, os.WriteFile(dest, []byte("previous good output"), 0o644))

	n := f.pipeline.Run(context.Background(), f.task("index", "index.html.tmpl", timespan.ModeNone), 5000)
	assert.Zero(t, n)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous good output", string(content), "failed render must not touch the destination")

	_, err = os.Stat(dest + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must not be left behind")
}

func TestRunByMonthGeneratesAndRecordsLabels(t *testing.T) {
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	mar15 := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC).Unix()

	renderer := &stubRenderer{out: "summary"}
	f := newFixture(t, renderer, map[int64]map[string]any{
		jan:   {"temp": 1.0},
		mar15: {"temp": 2.0},
	})

	n := f.pipeline.Run(context.Background(),
		f.task("NOAA_month", "NOAA-YYYY-MM.txt.tmpl", timespan.ModeMonth), mar15)
	assert.Equal(t, 3, n, "Jan, Feb and the open March window")

	for _, name := range []string{"NOAA-2024-01.txt", "NOAA-2024-02.txt", "NOAA-2024-03.txt"} {
		_, err := os.Stat(filepath.Join(f.destDir, name))
		assert.NoError(t, err, name)
	}

	snap := f.tracker.Snapshot()
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, snap[timespan.SectionSummaryByMonth])
}

func TestRerunSkipsElapsedSummaries(t *testing.T) {
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	mar15 := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC).Unix()

	renderer := &stubRenderer{out: "first pass"}
	f := newFixture(t, renderer, map[int64]map[string]any{
		jan:   {"temp": 1.0},
		mar15: {"temp": 2.0},
	})
	task := f.task("NOAA_month", "NOAA-YYYY-MM.txt.tmpl", timespan.ModeMonth)

	n := f.pipeline.Run(context.Background(), task, mar15)
	require.Equal(t, 3, n)

	// Second pass: only the open March window is regenerated.
	renderer.out = "second pass"
	n = f.pipeline.Run(context.Background(), task, mar15)
	assert.Equal(t, 1, n)

	janContent, err := os.ReadFile(filepath.Join(f.destDir, "NOAA-2024-01.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first pass", string(janContent))

	marContent, err := os.ReadFile(filepath.Join(f.destDir, "NOAA-2024-03.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second pass", string(marContent))
}

func TestRunStaleAgeSkipsFreshOutput(t *testing.T) {
	renderer := &stubRenderer{out: "body"}
	f := newFixture(t, renderer, map[int64]map[string]any{
		1000: {"t": 1.0},
		5000: {"t": 2.0},
	})

	task := f.task("forecast", "forecast.html.tmpl", timespan.ModeNone)
	task.StaleAge = 3600

	n := f.pipeline.Run(context.Background(), task, 5000)
	require.Equal(t, 1, n)

	n = f.pipeline.Run(context.Background(), task, 5000)
	assert.Zero(t, n, "output is fresher than the stale age")
	assert.Equal(t, 1, renderer.calls)
}

func TestDestFileName(t *testing.T) {
	w := timespan.Window{Start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC).Unix()}

	assert.Equal(t, "index.html", destFileName("skins/index.html.tmpl", w, time.UTC))
	assert.Equal(t, "NOAA-2024-03.txt", destFileName("NOAA-YYYY-MM.txt.tmpl", w, time.UTC))
	assert.Equal(t, "NOAA-2024.txt", destFileName("NOAA-YYYY.txt.tmpl", w, time.UTC))
	assert.Equal(t, "summary-2024-03.html", destFileName("summary-YYYY-MM.md.tmpl", w, time.UTC))
}
