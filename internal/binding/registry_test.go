package binding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/reportgen/internal/archive"
	"git.home.luguber.info/inful/reportgen/internal/config"
	"git.home.luguber.info/inful/reportgen/internal/render"
	"git.home.luguber.info/inful/reportgen/internal/rgerrors"
	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

type fakeProvider struct {
	bundles []Bundle
	closed  bool
}

func (f *fakeProvider) Bundles(context.Context, timespan.Window, *archive.Factory) ([]Bundle, error) {
	return f.bundles, nil
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

type fakeLegacy struct {
	bundle Bundle
}

func (f *fakeLegacy) Bundle(context.Context, timespan.Window, archive.Store) (Bundle, error) {
	return f.bundle, nil
}

func emptySnapshot() map[string][]string { return map[string][]string{} }

func testEnv(t *testing.T) *Env {
	t.Helper()
	sources := archive.NewFactory(map[string]string{"archive": ":memory:"}, "archive")
	t.Cleanup(func() { _ = sources.Close() })
	return &Env{
		Station:  config.StationConfig{Name: "Home"},
		Extras:   map[string]string{"footer": "hi"},
		Location: time.UTC,
		Sources:  sources,
	}
}

func TestNewRegistryUnknownProviderFails(t *testing.T) {
	_, err := NewRegistry(testEnv(t), []string{"no_such_provider"}, nil, emptySnapshot)
	require.Error(t, err)
	assert.True(t, rgerrors.IsCategory(err, rgerrors.CategoryConfig))

	_, err = NewRegistry(testEnv(t), nil, []string{"no_such_legacy"}, emptySnapshot)
	require.Error(t, err)
}

func TestComposeOrder(t *testing.T) {
	modern := &fakeProvider{bundles: []Bundle{{"m1": 1}, {"m2": 2}}}
	legacy := &fakeLegacy{bundle: Bundle{"l1": 3}}
	RegisterProvider("test_modern", func(*Env) (Provider, error) { return modern, nil })
	RegisterLegacyProvider("test_legacy", func(*Env) (LegacyProvider, error) { return legacy, nil })

	tracker := map[string][]string{timespan.SectionSummaryByMonth: {"2024-01"}}
	reg, err := NewRegistry(testEnv(t), []string{"test_modern"}, []string{"test_legacy"},
		func() map[string][]string { return tracker })
	require.NoError(t, err)
	defer reg.Close()

	w := timespan.Window{
		Start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC).Unix(),
		Stop:  time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC).Unix(),
	}
	bundles, err := reg.Compose(context.Background(), w, render.EncodingUTF8)
	require.NoError(t, err)

	// synthetic, tracker snapshot, two modern, one legacy, final empty hook
	require.Len(t, bundles, 6)

	assert.Equal(t, "Mar", bundles[0]["month_name"])
	assert.Equal(t, 2024, bundles[0]["year"])
	assert.Equal(t, 3, bundles[0]["month"])
	assert.Equal(t, "utf8", bundles[0]["encoding"])

	assert.Equal(t, []string{"2024-01"}, bundles[1][timespan.SectionSummaryByMonth])

	assert.Equal(t, 1, bundles[2]["m1"])
	assert.Equal(t, 2, bundles[3]["m2"])
	assert.Equal(t, 3, bundles[4]["l1"])
	assert.Empty(t, bundles[5], "final bundle is the deprecated empty hook")
}

func TestCloseReleasesProviders(t *testing.T) {
	modern := &fakeProvider{}
	RegisterProvider("test_closer", func(*Env) (Provider, error) { return modern, nil })

	reg, err := NewRegistry(testEnv(t), []string{"test_closer"}, nil, emptySnapshot)
	require.NoError(t, err)

	require.NoError(t, reg.Close())
	assert.True(t, modern.closed)
}

func TestBuiltinStationAndExtras(t *testing.T) {
	reg, err := NewRegistry(testEnv(t), []string{"station", "extras"}, nil, emptySnapshot)
	require.NoError(t, err)
	defer reg.Close()

	bundles, err := reg.Compose(context.Background(), timespan.Window{Start: 0, Stop: 100}, render.EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, bundles, 4)

	station := bundles[2]["station"].(map[string]any)
	assert.Equal(t, "Home", station["name"])
	extras := bundles[3]["extras"].(map[string]string)
	assert.Equal(t, "hi", extras["footer"])
}

func TestBuiltinUnitInfo(t *testing.T) {
	env := testEnv(t)
	env.Units = map[string]config.UnitStyle{
		"temp": {Label: "°C", Format: "%.1f"},
		"rain": {Label: "mm"},
	}

	reg, err := NewRegistry(env, []string{"unit_info"}, nil, emptySnapshot)
	require.NoError(t, err)
	defer reg.Close()

	bundles, err := reg.Compose(context.Background(), timespan.Window{Start: 0, Stop: 100}, render.EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, bundles, 4)

	unit := bundles[2]["unit"].(map[string]any)
	labels := unit["label"].(map[string]string)
	assert.Equal(t, "°C", labels["temp"])
	assert.Equal(t, "mm", labels["rain"])

	formats := unit["format"].(map[string]string)
	assert.Equal(t, "%.1f", formats["temp"])
	_, ok := formats["rain"]
	assert.False(t, ok, "fields without a format stay absent")
}

func TestBuiltinStatsAndCurrent(t *testing.T) {
	env := testEnv(t)
	store, err := env.Sources.Default()
	require.NoError(t, err)
	sqlStore := store.(*archive.SQLiteStore)
	ctx := context.Background()
	require.NoError(t, sqlStore.Insert(ctx, 1000, map[string]any{"temp": 10.0}))
	require.NoError(t, sqlStore.Insert(ctx, 2000, map[string]any{"temp": 30.0}))

	reg, err := NewRegistry(env, []string{"stats"}, []string{"current"}, emptySnapshot)
	require.NoError(t, err)
	defer reg.Close()

	w := timespan.Window{Start: 500, Stop: 2000}
	bundles, err := reg.Compose(ctx, w, render.EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, bundles, 5)

	stats := bundles[2]["stats"].(*StatsBinder)
	avg, err := stats.Avg("temp")
	require.NoError(t, err)
	assert.Equal(t, 20.0, avg)

	current := bundles[3]["current"].(map[string]any)
	assert.Equal(t, 30.0, current["temp"])
	assert.Equal(t, int64(2000), bundles[3]["current_time"])
}
