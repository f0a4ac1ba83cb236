package binding

import (
	"context"

	"git.home.luguber.info/inful/reportgen/internal/archive"
	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

// Default search list providers. The "current" legacy provider is opt-in
// via search_list_extensions.
func init() {
	RegisterProvider("station", newStationProvider)
	RegisterProvider("stats", newStatsProvider)
	RegisterProvider("unit_info", newUnitInfoProvider)
	RegisterProvider("extras", newExtrasProvider)
	RegisterLegacyProvider("current", newCurrentProvider)
}

// stationProvider exposes site metadata as the "station" variable.
type stationProvider struct {
	bundle Bundle
}

func newStationProvider(env *Env) (Provider, error) {
	return &stationProvider{bundle: Bundle{
		"station": map[string]any{
			"name":      env.Station.Name,
			"location":  env.Station.Location,
			"latitude":  env.Station.Latitude,
			"longitude": env.Station.Longitude,
			"altitude":  env.Station.Altitude,
		},
	}}, nil
}

func (p *stationProvider) Bundles(context.Context, timespan.Window, *archive.Factory) ([]Bundle, error) {
	return []Bundle{p.bundle}, nil
}

// statsProvider exposes windowed aggregate queries as the "stats" variable.
type statsProvider struct{}

func newStatsProvider(*Env) (Provider, error) { return &statsProvider{}, nil }

func (p *statsProvider) Bundles(ctx context.Context, w timespan.Window, sources *archive.Factory) ([]Bundle, error) {
	store, err := sources.Default()
	if err != nil {
		return nil, err
	}
	return []Bundle{{"stats": &StatsBinder{ctx: ctx, store: store, window: w}}}, nil
}

// StatsBinder answers statistical queries from templates, e.g.
// {{.stats.Max "outTemp"}}. Built fresh per window because the window
// bounds are baked in.
type StatsBinder struct {
	ctx    context.Context
	store  archive.Store
	window timespan.Window
}

func (b *StatsBinder) Min(field string) (float64, error) {
	return b.store.Aggregate(b.ctx, b.window, field, archive.StatMin)
}

func (b *StatsBinder) Max(field string) (float64, error) {
	return b.store.Aggregate(b.ctx, b.window, field, archive.StatMax)
}

func (b *StatsBinder) Avg(field string) (float64, error) {
	return b.store.Aggregate(b.ctx, b.window, field, archive.StatAvg)
}

func (b *StatsBinder) Sum(field string) (float64, error) {
	return b.store.Aggregate(b.ctx, b.window, field, archive.StatSum)
}

func (b *StatsBinder) Count(field string) (float64, error) {
	return b.store.Aggregate(b.ctx, b.window, field, archive.StatCount)
}

// unitInfoProvider exposes per-field display metadata as "unit": label and
// format maps keyed by field name.
type unitInfoProvider struct {
	bundle Bundle
}

func newUnitInfoProvider(env *Env) (Provider, error) {
	labels := map[string]string{}
	formats := map[string]string{}
	for field, style := range env.Units {
		if style.Label != "" {
			labels[field] = style.Label
		}
		if style.Format != "" {
			formats[field] = style.Format
		}
	}
	return &unitInfoProvider{bundle: Bundle{
		"unit": map[string]any{"label": labels, "format": formats},
	}}, nil
}

func (p *unitInfoProvider) Bundles(context.Context, timespan.Window, *archive.Factory) ([]Bundle, error) {
	return []Bundle{p.bundle}, nil
}

// extrasProvider exposes the free-form extras config section as "extras".
type extrasProvider struct {
	bundle Bundle
}

func newExtrasProvider(env *Env) (Provider, error) {
	extras := map[string]string{}
	for k, v := range env.Extras {
		extras[k] = v
	}
	return &extrasProvider{bundle: Bundle{"extras": extras}}, nil
}

func (p *extrasProvider) Bundles(context.Context, timespan.Window, *archive.Factory) ([]Bundle, error) {
	return []Bundle{p.bundle}, nil
}

// currentProvider is a legacy provider exposing the record nearest the
// window stop (up to one hour off) as "current".
type currentProvider struct{}

const currentMaxDelta = 3600

func newCurrentProvider(*Env) (LegacyProvider, error) { return &currentProvider{}, nil }

func (p *currentProvider) Bundle(ctx context.Context, w timespan.Window, store archive.Store) (Bundle, error) {
	rec, err := store.RecordNear(ctx, w.Stop, currentMaxDelta)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return Bundle{"current": map[string]any{}}, nil
	}
	return Bundle{
		"current":      rec.Values,
		"current_time": rec.Timestamp,
	}, nil
}
