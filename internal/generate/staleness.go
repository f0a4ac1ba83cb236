package generate

import (
	"os"
	"time"

	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

// shouldSkipFresh reports whether the destination was regenerated recently
// enough to skip. A staleness age of zero or less means "always regenerate";
// a missing destination is never fresh.
func shouldSkipFresh(dest string, staleAgeSeconds int64, now time.Time) bool {
	if staleAgeSeconds <= 0 {
		return false
	}
	fi, err := os.Stat(dest)
	if err != nil {
		return false
	}
	return now.Sub(fi.ModTime()) < time.Duration(staleAgeSeconds)*time.Second
}

// shouldSkipElapsed reports whether an existing summary output covers a
// period that has fully elapsed relative to the reference timestamp. Such
// outputs were presumably generated correctly when the period closed and
// need no regeneration. The open period never matches: its window still
// includes the reference timestamp.
func shouldSkipElapsed(dest string, mode timespan.Mode, w timespan.Window, refTS int64) bool {
	if !mode.IsSummary() {
		return false
	}
	if _, err := os.Stat(dest); err != nil {
		return false
	}
	return !w.IncludesArchiveTime(refTS)
}
