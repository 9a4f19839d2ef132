package engine

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Export files arrive with wildly inconsistent date formats: ISO timestamps
// with and without offsets, US slash dates with optional 12-hour times, and
// timezone abbreviations glued onto either. NormalizeDate applies a fixed
// sequence of strategies; the first success wins.
//
// Un-timezoned US dates are interpreted as naive-UTC wall clock: the parsed
// fields are used as UTC directly, with no local-zone conversion. Downstream
// period math assumes this convention on both sides of every diff, so it is
// preserved even though it skews instants for non-UTC exports.

var (
	tzAbbrevRe = regexp.MustCompile(`\b(UTC|GMT|EST|EDT|CST|CDT|PST|PDT)\b`)
	usSlashRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp][Mm])?)?$`)
	numOffsetRe = regexp.MustCompile(`[+-]\d{2}:?\d{2}`)
	alphaTokRe  = regexp.MustCompile(`(^|[^A-Za-z])([A-Za-z]{3})([^A-Za-z]|$)`)
	multiSpace  = regexp.MustCompile(`\s+`)
)

// nativeLayouts are tried in order for any string that survives the format
// checks. Layouts without a zone are parsed as UTC.
var nativeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04 MST",
	"2006-01-02 15:04",
	"2006-01-02 MST",
	"2006-01-02",
	"Jan 2, 2006 3:04:05 PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006",
	time.RFC1123Z,
	time.RFC1123,
	"1/2/2006 15:04:05 MST",
	"1/2/2006 3:04:05 PM MST",
	"1/2/2006 3:04 PM MST",
	"1/2/2006 15:04 MST",
	"1/2/2006 MST",
}

// NormalizeDate converts a raw export date string into a UTC instant.
// Returns false only when every strategy fails. Pure and deterministic.
func NormalizeDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	// 1. Native parse, accepted only when the string visibly carries
	// timezone/format information. A bare "10/27/2023" parses natively but
	// ambiguously, so it falls through to the manual US-format path.
	if hasExplicitFormat(s) {
		if t, ok := parseNative(s); ok {
			return t, true
		}
	}

	// 2. Strip US timezone abbreviations as word-boundary matches.
	stripped := strings.TrimSpace(tzAbbrevRe.ReplaceAllString(s, " "))
	stripped = multiSpace.ReplaceAllString(stripped, " ")

	// 3. Manual US slash-format parse, naive-UTC.
	if t, ok := parseUSSlash(stripped); ok {
		return t, true
	}

	// 4. Append a literal " UTC" and retry the native parse.
	if t, ok := parseNative(stripped + " UTC"); ok {
		return t, true
	}

	// 5. Plain native parse of the original string.
	if t, ok := parseNative(s); ok {
		return t, true
	}

	return time.Time{}, false
}

// hasExplicitFormat reports whether the string carries enough format
// information (T/Z markers, a numeric offset, or a 3-letter month/zone
// token) for a native parse to be trusted.
func hasExplicitFormat(s string) bool {
	if strings.Contains(s, "T") || strings.Contains(s, "Z") {
		return true
	}
	if numOffsetRe.MatchString(s) {
		return true
	}
	return alphaTokRe.MatchString(s)
}

func parseNative(s string) (time.Time, bool) {
	for _, layout := range nativeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseUSSlash handles M/D/YYYY with an optional h:mm[:ss] [AM/PM] time.
// Components are assembled as UTC wall clock. Two-digit years pivot at 70:
// 71-99 map to 19xx, 00-70 to 20xx.
func parseUSSlash(s string) (time.Time, bool) {
	m := usSlashRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) <= 2 {
		if year > 70 {
			year += 1900
		} else {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	hour, minute, sec := 0, 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
		switch strings.ToUpper(m[7]) {
		case "PM":
			if hour < 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
		if hour > 23 || minute > 59 || sec > 59 {
			return time.Time{}, false
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC), true
}
