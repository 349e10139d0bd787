package entities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate_AcceptedLayouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain_day", "2025-06-01", "2025-06-01"},
		{"with_time", "2025-06-01 17:45:00", "2025-06-01"},
		{"rfc3339", "2025-06-01T23:59:59Z", "2025-06-01"},
		{"slashes", "2025/06/01", "2025-06-01"},
		{"padded", "  2025-06-01 ", "2025-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate(%q) failed: %v", tt.input, err)
			}
			if d.String() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, d)
			}
		})
	}

	if _, err := ParseDate("June 1st"); err == nil {
		t.Error("Expected error for unsupported layout")
	}
	if _, err := ParseDate(""); err == nil {
		t.Error("Expected error for empty date")
	}
}

func TestDate_Arithmetic(t *testing.T) {
	start := NewDate(2025, time.June, 1)

	if got := start.AddDays(-1).String(); got != "2025-05-31" {
		t.Errorf("Expected 2025-05-31, got %s", got)
	}
	if got := start.AddDays(-1).AddDays(-5).String(); got != "2025-05-26" {
		t.Errorf("Expected 2025-05-26, got %s", got)
	}
	if !start.AddDays(-1).Before(start) {
		t.Error("Expected previous day to be before start")
	}
	if start.DaysUntil(start.AddDays(9)) != 9 {
		t.Errorf("Expected 9 days, got %d", start.DaysUntil(start.AddDays(9)))
	}
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	ts := time.Date(2025, time.June, 1, 23, 30, 0, 0, loc)

	if !DateOf(ts).Equal(NewDate(2025, time.June, 1)) {
		t.Errorf("Expected 2025-06-01, got %s", DateOf(ts))
	}
	if !DateOf(time.Time{}).IsZero() {
		t.Error("Expected zero time to map to zero date")
	}
}

func TestDate_JSON(t *testing.T) {
	r := DateRange{Start: NewDate(2025, time.May, 26), End: NewDate(2025, time.May, 31)}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"start":"2025-05-26","end":"2025-05-31"}` {
		t.Errorf("Unexpected JSON: %s", data)
	}

	var back DateRange
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Start.Equal(r.Start) || !back.End.Equal(r.End) {
		t.Errorf("Expected %v, got %v", r, back)
	}
}
