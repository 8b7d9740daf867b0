package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// isoFormat matches Python's datetime.isoformat() output for naive dates,
// which is what the upstream API emits.
const isoFormat = "2006-01-02T15:04:05"

// frenchDate captures "06 août 2025" inside phrases like
// "En ligne depuis le 06 août 2025".
var frenchDate = regexp.MustCompile(`(\d{1,2})\s+([A-Za-zéûôàî]+)\s+(\d{4})`)

// Month-name table covering accented and unaccented spellings; the scraped
// cards are inconsistent about accents.
var frenchMonths = map[string]time.Month{
	"janvier":   time.January,
	"février":   time.February,
	"fevrier":   time.February,
	"mars":      time.March,
	"avril":     time.April,
	"mai":       time.May,
	"juin":      time.June,
	"juillet":   time.July,
	"août":      time.August,
	"aout":      time.August,
	"septembre": time.September,
	"octobre":   time.October,
	"novembre":  time.November,
	"décembre":  time.December,
	"decembre":  time.December,
}

// ParseDate turns any textual date the upstream has been observed to emit
// into a comparable timestamp. It is total: unparseable or empty input
// yields the zero time, which the ranker sorts last. It never panics.
//
// Accepted shapes: RFC 3339 (trailing "Z" treated as UTC), bare ISO
// date-times without zone, bare dates, and French free text containing a
// day, month name and year.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(isoFormat, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}

	if m := frenchDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		if month, ok := frenchMonths[strings.ToLower(m[2])]; ok && day >= 1 && day <= 31 {
			t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			// time.Date normalizes impossible combinations ("31 février"
			// rolls into March); only a round-trip is a real date.
			if t.Day() == day && t.Month() == month {
				return t
			}
		}
	}

	return time.Time{}
}

// FormatISO renders a timestamp the way the rest of the system stores
// dates: Python-style isoformat, no zone suffix.
func FormatISO(t time.Time) string {
	return t.Format(isoFormat)
}
