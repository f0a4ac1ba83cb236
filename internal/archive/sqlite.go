package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

// SQLiteStore implements Store using SQLite. Records are stored as JSON
// payloads keyed by unix timestamp; aggregates run over json_extract.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary initializes) an archive database.
// Use ":memory:" for an in-memory database, or a file path for persistent
// storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		ts INTEGER PRIMARY KEY,
		payload TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Insert adds or replaces one record. Used by ingest tooling and tests;
// the generation run itself never writes.
func (s *SQLiteStore) Insert(ctx context.Context, ts int64, values map[string]any) error {
	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO records (ts, payload) VALUES (?, ?)",
		ts, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// FirstGoodTimestamp returns the earliest record timestamp, or 0 when the
// store is empty.
func (s *SQLiteStore) FirstGoodTimestamp(ctx context.Context) (int64, error) {
	return s.boundaryTimestamp(ctx, "SELECT MIN(ts) FROM records")
}

// LastGoodTimestamp returns the latest record timestamp, or 0 when the
// store is empty.
func (s *SQLiteStore) LastGoodTimestamp(ctx context.Context) (int64, error) {
	return s.boundaryTimestamp(ctx, "SELECT MAX(ts) FROM records")
}

func (s *SQLiteStore) boundaryTimestamp(ctx context.Context, query string) (int64, error) {
	var ts sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query).Scan(&ts); err != nil {
		return 0, fmt.Errorf("query timestamp boundary: %w", err)
	}
	if !ts.Valid {
		return 0, nil
	}
	return ts.Int64, nil
}

// RecordNear returns the record closest in time to ts, up to maxDelta
// seconds off. Returns nil when no record qualifies.
func (s *SQLiteStore) RecordNear(ctx context.Context, ts, maxDelta int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT ts, payload FROM records WHERE ABS(ts - ?) <= ? ORDER BY ABS(ts - ?) LIMIT 1",
		ts, maxDelta, ts,
	)

	var rec Record
	var payload string
	if err := row.Scan(&rec.Timestamp, &payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query record: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &rec.Values); err != nil {
		return nil, fmt.Errorf("unmarshal record payload: %w", err)
	}
	return &rec, nil
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Aggregate computes a windowed statistic over one observation field.
// The window follows the archive convention: ts > Start and ts <= Stop.
func (s *SQLiteStore) Aggregate(ctx context.Context, w timespan.Window, field, stat string) (float64, error) {
	switch stat {
	case StatMin, StatMax, StatAvg, StatSum, StatCount:
	default:
		return 0, fmt.Errorf("unknown aggregate stat %q", stat)
	}
	if !fieldNamePattern.MatchString(field) {
		return 0, fmt.Errorf("invalid field name %q", field)
	}

	query := fmt.Sprintf(
		"SELECT %s(json_extract(payload, '$.%s')) FROM records WHERE ts > ? AND ts <= ?",
		stat, field,
	)
	var val sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, w.Start, w.Stop).Scan(&val); err != nil {
		return 0, fmt.Errorf("aggregate %s(%s): %w", stat, field, err)
	}
	if !val.Valid {
		return 0, nil
	}
	return val.Float64, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
