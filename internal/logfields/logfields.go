package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeyReport      = "report"
	KeyTemplate    = "template"
	KeyDestination = "destination"
	KeyMode        = "mode"
	KeyWindowStart = "window_start"
	KeyWindowStop  = "window_stop"
	KeyDatabase    = "database"
	KeyDurationMS  = "duration_ms"
	KeyGenerated   = "generated"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Report(name string) slog.Attr    { return slog.String(KeyReport, name) }
func Template(path string) slog.Attr  { return slog.String(KeyTemplate, path) }
func Destination(p string) slog.Attr  { return slog.String(KeyDestination, p) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func WindowStart(ts int64) slog.Attr  { return slog.Int64(KeyWindowStart, ts) }
func WindowStop(ts int64) slog.Attr   { return slog.Int64(KeyWindowStop, ts) }
func Database(id string) slog.Attr    { return slog.String(KeyDatabase, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Generated(n int) slog.Attr       { return slog.Int(KeyGenerated, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
