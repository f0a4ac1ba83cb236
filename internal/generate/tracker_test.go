package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

func TestTrackerRecordsFirstSeenOrder(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.RecordIfNew(timespan.ModeMonth, "2024-02"))
	assert.True(t, tr.RecordIfNew(timespan.ModeMonth, "2024-01"))
	assert.False(t, tr.RecordIfNew(timespan.ModeMonth, "2024-02"), "duplicate label")
	assert.True(t, tr.RecordIfNew(timespan.ModeYear, "2024"))

	snap := tr.Snapshot()
	assert.Equal(t, []string{"2024-02", "2024-01"}, snap[timespan.SectionSummaryByMonth])
	assert.Equal(t, []string{"2024"}, snap[timespan.SectionSummaryByYear])
}

func TestTrackerIgnoresNonSummaryModes(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.RecordIfNew(timespan.ModeNone, "whatever"))

	snap := tr.Snapshot()
	assert.Empty(t, snap[timespan.SectionSummaryByMonth])
	assert.Empty(t, snap[timespan.SectionSummaryByYear])
}

func TestTrackerSnapshotIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.RecordIfNew(timespan.ModeMonth, "2024-01")

	snap := tr.Snapshot()
	snap[timespan.SectionSummaryByMonth][0] = "mutated"

	assert.Equal(t, []string{"2024-01"}, tr.Snapshot()[timespan.SectionSummaryByMonth])
}
