package league

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// KST is the club's fixed timezone. Timestamps that arrive without an
// explicit offset are interpreted in KST, never in the host machine's
// local timezone.
var KST = time.FixedZone("KST", 9*60*60)

var hasOffsetRE = regexp.MustCompile(`([zZ]|[+-]\d{2}:\d{2})$`)

// Layouts accepted for offset-less input. datetime-local inputs usually
// arrive without seconds.
var kstLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NormalizeEventTime parses an event timestamp. Accepted forms:
//
//	2026-01-19T20:00               (assumed KST)
//	2026-01-19 20:00               (assumed KST)
//	2026-01-19                     (midnight KST; date-range filters)
//	2026-01-19T20:00:00+09:00
//	2026-01-19T11:00:00Z
func NormalizeEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if hasOffsetRE.MatchString(s) {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
		}
		return t, nil
	}

	for _, layout := range kstLayouts {
		if t, err := time.ParseInLocation(layout, s, KST); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// DayKey returns the KST calendar date of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.In(KST).Format("2006-01-02")
}

// FormatKST renders t as RFC3339 in the club timezone, e.g.
// 2026-01-19T20:00:00+09:00.
func FormatKST(t time.Time) string {
	return t.In(KST).Format(time.RFC3339)
}

// MonthRange returns the first day of month (YYYY-MM) and the first day
// of the following month, both as YYYY-MM-DD. Used for half-open date
// filters.
func MonthRange(month string) (start, end string, err error) {
	t, err := time.ParseInLocation("2006-01", month, KST)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q", month)
	}
	return t.Format("2006-01-02"), t.AddDate(0, 1, 0).Format("2006-01-02"), nil
}

// DayRange returns the KST instants [00:00, 24:00) of a YYYY-MM-DD date.
func DayRange(date string) (from, to time.Time, err error) {
	t, err := time.ParseInLocation("2006-01-02", date, KST)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	return t, t.AddDate(0, 0, 1), nil
}
