// Package timespan partitions a timestamp range into the calendar windows
// that report outputs correspond to.
package timespan

import (
	"fmt"
	"time"
)

// Mode selects how a report's time range is split into output windows.
type Mode int

const (
	// ModeNone produces a single window covering the whole range.
	ModeNone Mode = iota
	// ModeMonth produces one window per calendar month.
	ModeMonth
	// ModeYear produces one window per calendar year.
	ModeYear
)

// Config section names that imply a summarization mode.
const (
	SectionSummaryByMonth = "SummaryByMonth"
	SectionSummaryByYear  = "SummaryByYear"
)

// ParseMode maps a configuration value to a Mode. The section names
// SummaryByMonth and SummaryByYear double as mode values.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "none", "None":
		return ModeNone, nil
	case SectionSummaryByMonth, "month":
		return ModeMonth, nil
	case SectionSummaryByYear, "year":
		return ModeYear, nil
	}
	return ModeNone, fmt.Errorf("unknown summarize_by value %q", s)
}

func (m Mode) String() string {
	switch m {
	case ModeMonth:
		return SectionSummaryByMonth
	case ModeYear:
		return SectionSummaryByYear
	}
	return "None"
}

// IsSummary reports whether the mode splits the range into calendar periods.
func (m Mode) IsSummary() bool { return m == ModeMonth || m == ModeYear }

// Window is a half-open-ish time interval in unix seconds. Start <= Stop.
type Window struct {
	Start int64
	Stop  int64
}

// IncludesArchiveTime reports whether ts falls inside the window using the
// archive convention: a record stamped exactly at Stop belongs to the window,
// one stamped at Start does not.
func (w Window) IncludesArchiveTime(ts int64) bool {
	return w.Start < ts && ts <= w.Stop
}

// Label formats the period label for the window start in loc:
// "2024" for year summaries, "2024-03" for month summaries.
func (w Window) Label(mode Mode, loc *time.Location) string {
	t := time.Unix(w.Start, 0).In(loc)
	if mode == ModeYear {
		return fmt.Sprintf("%04d", t.Year())
	}
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// Windows returns the ordered, disjoint windows covering [start, stop] for
// the given mode. Month and year windows span full calendar periods in loc,
// even when start or stop falls mid-period. start > stop yields nil.
func Windows(start, stop int64, mode Mode, loc *time.Location) []Window {
	if start > stop {
		return nil
	}
	switch mode {
	case ModeMonth:
		return monthWindows(start, stop, loc)
	case ModeYear:
		return yearWindows(start, stop, loc)
	}
	return []Window{{Start: start, Stop: stop}}
}

func monthWindows(start, stop int64, loc *time.Location) []Window {
	var out []Window
	t := time.Unix(start, 0).In(loc)
	cur := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	for cur.Unix() <= stop {
		next := cur.AddDate(0, 1, 0)
		out = append(out, Window{Start: cur.Unix(), Stop: next.Unix()})
		cur = next
	}
	return out
}

func yearWindows(start, stop int64, loc *time.Location) []Window {
	var out []Window
	t := time.Unix(start, 0).In(loc)
	cur := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
	for cur.Unix() <= stop {
		next := cur.AddDate(1, 0, 0)
		out = append(out, Window{Start: cur.Unix(), Stop: next.Unix()})
		cur = next
	}
	return out
}
