package interpreter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var absoluteDatePattern = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`)

// extractTimeRange stops at the first temporal phrase in table order. Only
// when none is present does it look for an MM/DD/YYYY literal.
func extractTimeRange(text string, now time.Time) *TimeRange {
	for _, entry := range temporalKeywords {
		if !strings.Contains(text, entry.phrase) {
			continue
		}
		return &TimeRange{
			Start:    now.AddDate(0, 0, -entry.days),
			End:      now.AddDate(0, 0, -entry.offset),
			Relative: entry.phrase,
		}
	}

	m := absoluteDatePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	date, ok := parseCalendarDate(m[1], m[2], m[3], now.Location())
	if !ok {
		return nil
	}
	return &TimeRange{Start: date, End: date}
}

func parseCalendarDate(mm, dd, yyyy string, loc *time.Location) (time.Time, bool) {
	month, _ := strconv.Atoi(mm)
	day, _ := strconv.Atoi(dd)
	year, _ := strconv.Atoi(yyyy)
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes overflow such as 02/31; reject those.
	if date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}
