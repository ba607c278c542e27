package aggregator

import (
	"strings"
	"time"
)

// middayHour anchors date-only values so that a timezone shift can never move
// them to a neighbouring calendar day.
const middayHour = 12

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// NormalizeDate parses a maturity/emission value from the API.
//
// Strings with a time component are parsed as-is (zone-less timestamps are
// read in loc) and converted to loc. Date-only strings are pinned to 12:00 in
// loc. Empty or unparseable input returns the zero time, which every
// date-driven operation treats as "no date".
func NormalizeDate(raw string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	if strings.ContainsAny(raw, "T ") {
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
				return t.In(loc)
			}
		}
		return time.Time{}
	}

	d, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), middayHour, 0, 0, 0, loc)
}

// startOfDay truncates t to local midnight in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// addDays moves a midnight value n calendar days, staying on midnight.
func addDays(day time.Time, n int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+n, 0, 0, 0, 0, day.Location())
}

func dayKey(day time.Time) string {
	return day.Format("2006-01-02")
}
