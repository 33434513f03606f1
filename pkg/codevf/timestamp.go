package codevf

import (
	"bytes"
	"encoding/json"
	"time"
)

// timestampLayouts are tried in order. Layouts without a zone read as UTC,
// and fractional seconds are accepted by all of them.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// Timestamp is a time reported by the service.
//
// Raw always holds the text as received. Time is set when Raw is an ISO 8601
// date-time with or without a zone, using either 'T' or a space as separator;
// otherwise it is the zero time and only Raw is meaningful.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// ParseTimestamp parses s leniently. It never fails.
func ParseTimestamp(s string) Timestamp {
	ts := Timestamp{Raw: s}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			break
		}
	}
	return ts
}

// IsZero reports whether no timestamp was received.
func (ts Timestamp) IsZero() bool {
	return ts.Raw == "" && ts.Time.IsZero()
}

// Parsed reports whether Time holds the parsed value of Raw.
func (ts Timestamp) Parsed() bool {
	return !ts.Time.IsZero()
}

// Format formats the parsed time with layout, or returns Raw unchanged.
func (ts Timestamp) Format(layout string) string {
	if ts.Parsed() {
		return ts.Time.Format(layout)
	}
	return ts.Raw
}

func (ts Timestamp) String() string {
	if ts.Raw == "" && ts.Parsed() {
		return ts.Time.Format(time.RFC3339Nano)
	}
	return ts.Raw
}

// UnmarshalJSON accepts a string, a number or null.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s flexibleString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*ts = ParseTimestamp(string(s))
	return nil
}

// MarshalJSON writes the timestamp as received, or null when unset.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.String())
}
