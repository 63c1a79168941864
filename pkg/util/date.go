package util

import (
	"strconv"
	"time"
)

// unixMillisCutoff separates unix seconds from unix milliseconds; second
// timestamps stay below it until the year 5138.
const unixMillisCutoff = 1e11

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds or milliseconds.
// Returns (t, true) if any worked. Results are UTC.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return FromUnix(ts), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// FromUnix converts a unix timestamp in seconds or milliseconds.
func FromUnix(ts int64) time.Time {
	if ts > unixMillisCutoff {
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}

// ParseRange parses an optional from/to pair. Empty values stay zero; an
// inverted range is rejected.
func ParseRange(from, to string) (time.Time, time.Time, error) {
	var f, t time.Time
	var ok bool
	if from != "" {
		if f, ok = ParseTime(from); !ok {
			return f, t, &RangeError{Field: "from", Value: from}
		}
	}
	if to != "" {
		if t, ok = ParseTime(to); !ok {
			return f, t, &RangeError{Field: "to", Value: to}
		}
	}
	if !f.IsZero() && !t.IsZero() && t.Before(f) {
		return f, t, &RangeError{Field: "to", Value: to, Inverted: true}
	}
	return f, t, nil
}

// RangeError reports an unparsable or inverted time bound.
type RangeError struct {
	Field    string
	Value    string
	Inverted bool
}

func (e *RangeError) Error() string {
	if e.Inverted {
		return e.Field + " is before from"
	}
	return "invalid " + e.Field + " time " + strconv.Quote(e.Value)
}
