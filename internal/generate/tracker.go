package generate

import "git.home.luguber.info/inful/reportgen/internal/timespan"

// Tracker records which calendar period labels have been produced in the
// current run. It is scoped to one run, injected where needed, and its
// snapshot is exposed to templates so they can render archive navigation.
type Tracker struct {
	labels map[timespan.Mode][]string
	seen   map[timespan.Mode]map[string]bool
}

// NewTracker creates an empty tracker for one generation run.
func NewTracker() *Tracker {
	return &Tracker{
		labels: map[timespan.Mode][]string{
			timespan.ModeMonth: {},
			timespan.ModeYear:  {},
		},
		seen: map[timespan.Mode]map[string]bool{
			timespan.ModeMonth: {},
			timespan.ModeYear:  {},
		},
	}
}

// RecordIfNew adds a period label for the mode. Returns true when the label
// was not recorded before in this run. Non-summary modes record nothing.
func (t *Tracker) RecordIfNew(mode timespan.Mode, label string) bool {
	if !mode.IsSummary() {
		return false
	}
	if t.seen[mode][label] {
		return false
	}
	t.seen[mode][label] = true
	t.labels[mode] = append(t.labels[mode], label)
	return true
}

// Snapshot returns the labels seen so far, keyed by summarization section
// name, in first-seen order. The slices are copies.
func (t *Tracker) Snapshot() map[string][]string {
	return map[string][]string{
		timespan.SectionSummaryByMonth: append([]string(nil), t.labels[timespan.ModeMonth]...),
		timespan.SectionSummaryByYear:  append([]string(nil), t.labels[timespan.ModeYear]...),
	}
}
