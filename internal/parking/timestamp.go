package parking

import (
	"fmt"
	"strings"
	"time"
)

// Layouts tried after normalization. Fractional seconds are accepted by the
// parser even when a layout omits them.
var (
	zonedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"}
	localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}
)

// NormalizeTimestamp rewrites the loose timestamps the mobility API emits into
// RFC 3339 form: the first space becomes "T" and a trailing "+hhmm" offset
// gains its colon.
func NormalizeTimestamp(raw string) string {
	s := strings.Replace(strings.TrimSpace(raw), " ", "T", 1)
	n := len(s)
	if n >= 5 && (s[n-5] == '+' || s[n-5] == '-') && isDigits(s[n-4:]) && strings.Contains(s[:n-5], "T") {
		s = s[:n-2] + ":" + s[n-2:]
	}
	return s
}

// ParseTimestamp parses a station update time. Timestamps without an offset
// are read in loc (time.Local when nil).
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s := NormalizeTimestamp(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
