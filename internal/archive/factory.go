package archive

import (
	"fmt"
	"log/slog"
)

// Factory resolves data source identifiers to open stores. Repeated calls
// with the same identifier return the same logical store. A factory belongs
// to one generation run and is not safe for concurrent use.
type Factory struct {
	bindings  map[string]string // identifier -> database path
	defaultID string
	stores    map[string]*SQLiteStore
}

// NewFactory creates a factory over the configured database bindings.
func NewFactory(bindings map[string]string, defaultID string) *Factory {
	return &Factory{
		bindings:  bindings,
		defaultID: defaultID,
		stores:    make(map[string]*SQLiteStore),
	}
}

// Get opens (or returns the cached) store for the given identifier.
// An empty identifier resolves to the default binding.
func (f *Factory) Get(id string) (Store, error) {
	if id == "" {
		id = f.defaultID
	}
	if store, ok := f.stores[id]; ok {
		return store, nil
	}

	path, ok := f.bindings[id]
	if !ok {
		return nil, fmt.Errorf("no database binding named %q", id)
	}
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", id, err)
	}
	slog.Debug("Opened archive database", "database", id, "path", path)
	f.stores[id] = store
	return store, nil
}

// Default returns the store for the default binding.
func (f *Factory) Default() (Store, error) { return f.Get("") }

// Close releases all stores opened through the factory.
func (f *Factory) Close() error {
	var firstErr error
	for id, store := range f.stores {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close database %q: %w", id, err)
		}
	}
	f.stores = make(map[string]*SQLiteStore)
	return firstErr
}
