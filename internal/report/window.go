package report

import (
	"strings"
	"time"
)

type Preset string

const (
	PresetToday     Preset = "today"
	PresetYesterday Preset = "yesterday"
	PresetThisWeek  Preset = "this_week"
	PresetLastWeek  Preset = "last_week"
	PresetThisMonth Preset = "this_month"
	PresetLastMonth Preset = "last_month"
	PresetThisYear  Preset = "this_year"
	PresetLastYear  Preset = "last_year"
	PresetAll       Preset = "all"
	PresetCustom    Preset = "custom"
)

// Window is a resolved report range. A nil side means unbounded in that
// direction; both ends are inclusive.
type Window struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

func (w Window) Bounded() bool {
	return w.Start != nil || w.End != nil
}

// Contains reports whether t falls inside the window. The zero time (an
// unparseable order timestamp) is only contained by the unbounded window.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return !w.Bounded()
	}
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// ResolveWindow turns a preset into absolute bounds anchored to now.
// customStart/customEnd are date-only strings consulted only for
// PresetCustom; an unrecognized preset resolves as "all".
func ResolveWindow(preset Preset, customStart, customEnd string, now time.Time) Window {
	switch preset {
	case PresetToday:
		return boundedWindow(midnight(now), endOfDay(now))
	case PresetYesterday:
		y := now.AddDate(0, 0, -1)
		return boundedWindow(midnight(y), endOfDay(y))
	case PresetThisWeek:
		return boundedWindow(mondayOf(now), endOfDay(now))
	case PresetLastWeek:
		monday := mondayOf(now).AddDate(0, 0, -7)
		return boundedWindow(monday, endOfDay(monday.AddDate(0, 0, 6)))
	case PresetThisMonth:
		return MonthWindow(now.Year(), now.Month(), now.Location())
	case PresetLastMonth:
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		return MonthWindow(prev.Year(), prev.Month(), now.Location())
	case PresetThisYear:
		return yearWindow(now.Year(), now.Location())
	case PresetLastYear:
		return yearWindow(now.Year()-1, now.Location())
	case PresetCustom:
		return customWindow(customStart, customEnd, now.Location())
	default:
		return Window{}
	}
}

// MonthWindow is the inclusive range covering one absolute calendar month in
// the given location. Drill-downs into monthly cells use it to rebuild the
// exact bucket bounds; the location must match the one the other presets
// resolved in, or day and month windows drift apart by the zone offset.
func MonthWindow(year int, month time.Month, loc *time.Location) Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return boundedWindow(start, end)
}

func customWindow(customStart, customEnd string, loc *time.Location) Window {
	var w Window
	if parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(customStart), loc); err == nil {
		start := midnight(parsed)
		w.Start = &start
	}
	if parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(customEnd), loc); err == nil {
		end := endOfDay(parsed)
		w.End = &end
	}
	return w
}

func yearWindow(year int, loc *time.Location) Window {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year, time.December, 31, 23, 59, 59, 999_000_000, loc)
	return boundedWindow(start, end)
}

// mondayOf returns the Monday midnight of t's ISO week. Sunday counts as the
// seventh day of the week, not the first.
func mondayOf(t time.Time) time.Time {
	day := int(t.Weekday())
	if day == 0 {
		day = 7
	}
	return midnight(t.AddDate(0, 0, -(day - 1)))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}

func boundedWindow(start, end time.Time) Window {
	return Window{Start: &start, End: &end}
}
