package codevf

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       time.Time
		wantParsed bool
	}{
		{name: "rfc3339 utc", input: "2026-01-01T08:15:00Z", want: time.Date(2026, 1, 1, 8, 15, 0, 0, time.UTC), wantParsed: true},
		{name: "rfc3339 offset", input: "2026-01-01T10:15:00+02:00", want: time.Date(2026, 1, 1, 8, 15, 0, 0, time.UTC), wantParsed: true},
		{name: "fractional seconds", input: "2026-01-01T08:15:00.250Z", want: time.Date(2026, 1, 1, 8, 15, 0, 250_000_000, time.UTC), wantParsed: true},
		{name: "no zone", input: "2026-01-01T00:00:00", want: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), wantParsed: true},
		{name: "no zone with micros", input: "2026-01-01T00:00:00.123456", want: time.Date(2026, 1, 1, 0, 0, 0, 123_456_000, time.UTC), wantParsed: true},
		{name: "space separated", input: "2026-01-01 00:00:00", want: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), wantParsed: true},
		{name: "space separated with zone", input: "2026-01-01 01:00:00+01:00", want: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), wantParsed: true},
		{name: "unrecognised", input: "yesterday at noon"},
		{name: "date only", input: "2026-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := ParseTimestamp(tt.input)
			if ts.Raw != tt.input {
				t.Errorf("Raw = %q, want %q", ts.Raw, tt.input)
			}
			if ts.Parsed() != tt.wantParsed {
				t.Fatalf("Parsed() = %v, want %v", ts.Parsed(), tt.wantParsed)
			}
			if tt.wantParsed && !ts.Time.Equal(tt.want) {
				t.Errorf("Time = %s, want %s", ts.Time, tt.want)
			}
			if ts.IsZero() {
				t.Error("expected a received timestamp to be non-zero")
			}
		})
	}
}

func TestTimestampJSON(t *testing.T) {
	var holder struct {
		At Timestamp `json:"at"`
	}

	if err := json.Unmarshal([]byte(`{"at":"2026-01-01 00:00:00"}`), &holder); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !holder.At.Parsed() || holder.At.Format("2006-01-02") != "2026-01-01" {
		t.Errorf("unexpected timestamp: %+v", holder.At)
	}

	data, err := json.Marshal(holder)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"at":"2026-01-01 00:00:00"}` {
		t.Errorf("expected raw text to round-trip, got %s", data)
	}

	if err := json.Unmarshal([]byte(`{"at":1767225600}`), &holder); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if holder.At.Raw != "1767225600" || holder.At.Parsed() {
		t.Errorf("expected numeric text kept raw, got %+v", holder.At)
	}
	if holder.At.Format(time.RFC3339) != "1767225600" {
		t.Errorf("Format() = %q, want raw text", holder.At.Format(time.RFC3339))
	}

	if err := json.Unmarshal([]byte(`{"at":null}`), &holder); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !holder.At.IsZero() {
		t.Errorf("expected null to leave the timestamp zero, got %+v", holder.At)
	}
	if data, _ := json.Marshal(holder); string(data) != `{"at":null}` {
		t.Errorf("expected null, got %s", data)
	}

	built := Timestamp{Time: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	if built.String() != "2026-03-01T09:30:00Z" {
		t.Errorf("String() = %q", built.String())
	}
}
