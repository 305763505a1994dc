package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Date
	}{
		{"ISO layout", "2025-10-23", NewDate(2025, time.October, 23)},
		{"dotted layout", "23.10.2025", NewDate(2025, time.October, 23)},
		{"compact layout", "20251023", NewDate(2025, time.October, 23)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate(%q) failed: %v", tt.input, err)
			}

			if !got.Equal(tt.expected) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	inputs := []string{"", "not a date", "2025/10/23", "23-10-2025"}

	for _, input := range inputs {
		if _, err := ParseDate(input); err == nil {
			t.Errorf("Expected error for %q, got nil", input)
		}
	}
}

func TestDate_String(t *testing.T) {
	d := NewDate(2025, time.September, 26)
	if got := d.String(); got != "2025-09-26" {
		t.Errorf("Expected '2025-09-26', got %q", got)
	}
}

func TestDate_AddDays(t *testing.T) {
	d := NewDate(2025, time.December, 30)

	got := d.AddDays(3)
	expected := NewDate(2026, time.January, 2)

	if !got.Equal(expected) {
		t.Errorf("AddDays(3) = %v, want %v", got, expected)
	}

	got = d.AddDays(-30)
	expected = NewDate(2025, time.November, 30)

	if !got.Equal(expected) {
		t.Errorf("AddDays(-30) = %v, want %v", got, expected)
	}
}

func TestDate_Before(t *testing.T) {
	earlier := NewDate(2025, time.October, 1)
	later := NewDate(2025, time.October, 2)

	if !earlier.Before(later) {
		t.Error("Expected earlier.Before(later) to be true")
	}

	if later.Before(earlier) {
		t.Error("Expected later.Before(earlier) to be false")
	}

	if earlier.Before(earlier) {
		t.Error("Expected a date not to be before itself")
	}
}

func TestDate_IsZero(t *testing.T) {
	var zero Date
	if !zero.IsZero() {
		t.Error("Expected zero value to report IsZero")
	}

	if NewDate(2025, time.January, 1).IsZero() {
		t.Error("Expected a set date not to report IsZero")
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2025, time.October, 23)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if string(data) != `"2025-10-23"` {
		t.Errorf("Expected \"2025-10-23\", got %s", data)
	}

	var decoded Date
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !decoded.Equal(d) {
		t.Errorf("Round trip changed date: got %v, want %v", decoded, d)
	}
}

func TestDate_UnmarshalDottedLayout(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"26.09.2025"`), &d); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !d.Equal(NewDate(2025, time.September, 26)) {
		t.Errorf("Expected 2025-09-26, got %v", d)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TimeOfDay
	}{
		{"hours and minutes", "11:00", TimeOfDay{Hour: 11}},
		{"with seconds", "11:00:00", TimeOfDay{Hour: 11}},
		{"dotted layout", "14.30", TimeOfDay{Hour: 14, Minute: 30}},
		{"afternoon with seconds", "09:15:42", TimeOfDay{Hour: 9, Minute: 15, Second: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) failed: %v", tt.input, err)
			}

			if got != tt.expected {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	inputs := []string{"", "noon", "25:00", "11h30"}

	for _, input := range inputs {
		if _, err := ParseTimeOfDay(input); err == nil {
			t.Errorf("Expected error for %q, got nil", input)
		}
	}
}

func TestTimeOfDay_String(t *testing.T) {
	tod := TimeOfDay{Hour: 9, Minute: 5}
	if got := tod.String(); got != "09:05:00" {
		t.Errorf("Expected '09:05:00', got %q", got)
	}
}
