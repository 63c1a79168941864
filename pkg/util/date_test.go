package util

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	require.True(t, ok)
	require.Equal(t, s, got.Format(time.RFC3339))
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)

	got, ok := ParseTime(strconv.FormatInt(ts.Unix(), 10))
	require.True(t, ok)
	require.True(t, got.Equal(ts))

	got, ok = ParseTime(strconv.FormatInt(ts.UnixMilli(), 10))
	require.True(t, ok)
	require.True(t, got.Equal(ts))

	_, ok = ParseTime("yesterday")
	require.False(t, ok)
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	require.True(t, ParseTimeDefault("", def).Equal(def))
}

func TestParseRange(t *testing.T) {
	f, to, err := ParseRange("", "")
	require.NoError(t, err)
	require.True(t, f.IsZero())
	require.True(t, to.IsZero())

	f, to, err = ParseRange("2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z")
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, to.Sub(f))

	_, _, err = ParseRange("nope", "")
	var re *RangeError
	require.True(t, errors.As(err, &re))
	require.Equal(t, "from", re.Field)

	_, _, err = ParseRange("2024-01-02T00:00:00Z", "2024-01-01T00:00:00Z")
	require.True(t, errors.As(err, &re))
	require.True(t, re.Inverted)
}
