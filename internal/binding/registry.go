package binding

import (
	"context"
	"io"
	"time"

	"git.home.luguber.info/inful/reportgen/internal/render"
	"git.home.luguber.info/inful/reportgen/internal/rgerrors"
	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

// SnapshotFunc returns the period labels produced so far in the current
// run, keyed by summarization mode section name.
type SnapshotFunc func() map[string][]string

var (
	constructors       = map[string]Constructor{}
	legacyConstructors = map[string]LegacyConstructor{}
)

// RegisterProvider makes a modern provider constructor resolvable by name.
// Called from init functions; built-in providers register themselves.
func RegisterProvider(name string, c Constructor) { constructors[name] = c }

// RegisterLegacyProvider makes a legacy provider constructor resolvable by
// name.
func RegisterLegacyProvider(name string, c LegacyConstructor) { legacyConstructors[name] = c }

// Registry holds the instantiated providers for one generation run and
// composes their bundles per window. Not safe for concurrent use; each run
// owns its own registry.
type Registry struct {
	env      *Env
	snapshot SnapshotFunc
	modern   []Provider
	legacy   []LegacyProvider
}

// NewRegistry resolves the configured provider identifiers and instantiates
// every provider exactly once. An unknown identifier is a configuration
// error that fails the whole run before any file is written.
func NewRegistry(env *Env, modernIDs, legacyIDs []string, snapshot SnapshotFunc) (*Registry, error) {
	r := &Registry{env: env, snapshot: snapshot}

	for _, id := range modernIDs {
		c, ok := constructors[id]
		if !ok {
			return nil, rgerrors.Newf(rgerrors.CategoryConfig, rgerrors.SeverityFatal,
				"unknown search list provider %q", id)
		}
		p, err := c(env)
		if err != nil {
			return nil, rgerrors.Wrap(err, rgerrors.CategoryConfig, rgerrors.SeverityFatal,
				"construct provider "+id)
		}
		r.modern = append(r.modern, p)
	}

	for _, id := range legacyIDs {
		c, ok := legacyConstructors[id]
		if !ok {
			return nil, rgerrors.Newf(rgerrors.CategoryConfig, rgerrors.SeverityFatal,
				"unknown legacy search list provider %q", id)
		}
		p, err := c(env)
		if err != nil {
			return nil, rgerrors.Wrap(err, rgerrors.CategoryConfig, rgerrors.SeverityFatal,
				"construct legacy provider "+id)
		}
		r.legacy = append(r.legacy, p)
	}

	return r, nil
}

// Compose builds the full ordered bundle list for one window. The order is
// a compatibility contract: the renderer resolves name collisions in favor
// of later bundles, so reordering would silently change variable shadowing.
func (r *Registry) Compose(ctx context.Context, w timespan.Window, enc render.Encoding) ([]Bundle, error) {
	start := time.Unix(w.Start, 0).In(r.env.Location)

	bundles := []Bundle{
		{
			"month_name":   start.Format("Jan"),
			"month":        int(start.Month()),
			"year":         start.Year(),
			"window_start": w.Start,
			"window_stop":  w.Stop,
			"encoding":     string(enc),
		},
	}

	outputted := Bundle{}
	for mode, labels := range r.snapshot() {
		outputted[mode] = labels
	}
	bundles = append(bundles, outputted)

	for _, p := range r.modern {
		bs, err := p.Bundles(ctx, w, r.env.Sources)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, bs...)
	}

	if len(r.legacy) > 0 {
		store, err := r.env.Sources.Default()
		if err != nil {
			return nil, err
		}
		for _, p := range r.legacy {
			b, err := p.Bundle(ctx, w, store)
			if err != nil {
				return nil, err
			}
			bundles = append(bundles, b)
		}
	}

	// Deprecated always-empty hook, kept so downstream bundle counts and
	// shadowing positions stay stable.
	bundles = append(bundles, Bundle{})

	return bundles, nil
}

// Close releases every provider instantiated for the run, dropping any
// retained references into the data source.
func (r *Registry) Close() error {
	var firstErr error
	for _, p := range r.modern {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	for _, p := range r.legacy {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	r.modern = nil
	r.legacy = nil
	return firstErr
}
