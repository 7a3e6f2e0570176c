// Package timex holds the canonical timestamp codec, the ISO week label and
// a JSON-friendly Duration.
//
// Timestamps are stored and exchanged as ISO-8601 strings in UTC with a
// fixed nine-digit fraction, so lexical order equals chronological order and
// SQL can compare them as text. Decoding is lenient: any RFC 3339 variant is
// accepted and malformed input yields the Unix epoch instead of an error.
package timex

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical encoding.
const Layout = "2006-01-02T15:04:05.000000000Z"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Epoch is returned for undecodable timestamps.
var Epoch = time.Unix(0, 0).UTC()

// Format encodes t in the canonical layout.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// FormatOptional encodes t or returns nil for a nil time.
func FormatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Format(*t)
	return &s
}

// Parse decodes s, falling back to Epoch.
func Parse(s string) time.Time {
	if t, ok := parse(s); ok {
		return t
	}
	return Epoch
}

// ParseOptional decodes s and returns nil for blank or malformed input.
func ParseOptional(s string) *time.Time {
	t, ok := parse(s)
	if !ok {
		return nil
	}
	return &t
}

// Canonical re-encodes any accepted timestamp string in the canonical layout.
func Canonical(s string) string {
	return Format(Parse(s))
}

func parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range parseLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// WeekKey returns the ISO-8601 week label of t in UTC, e.g. "2024-W05".
func WeekKey(t time.Time) string {
	y, w := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

// Duration wraps time.Duration so it reads from JSON either as a Go
// duration string ("30s") or as integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}
