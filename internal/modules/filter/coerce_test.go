package filter

import (
	"testing"
	"time"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{"10.0", 10, true},
		{"-3.5", -3.5, true},
		{"+2", 2, true},
		{" 42 ", 42, true},
		{".5", 0.5, true},
		{"5.", 5, true},
		{"1e3", 1000, true},
		{"2.5E-1", 0.25, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1,000", 0, false},
		{"0x10", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e400", 0, false},
		{"2024-01-01", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-1-5", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"2024-01-15T10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"2024-01-15 10:30", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"2024-01-15T12:00:00+02:00", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), true},
		{"01/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"1/5/2024 3:04 PM", time.Date(2024, 1, 5, 15, 4, 0, 0, time.UTC), true},
		{"2024/01/15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"Jan 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"15 January 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"hello", time.Time{}, false},
		{"2024", time.Time{}, false},
		{"13/45/2024", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		cell    string
		literal string
		want    Kind
	}{
		{"both numbers", "10", "10.0", KindNumber},
		{"both dates", "2024-01-01", "2024-06-01", KindDate},
		{"number and text", "10", "ten", KindString},
		{"number and date", "10", "2024-01-01", KindString},
		{"date and text", "2024-01-01", "soon", KindString},
		{"both text", "ABC", "bc", KindString},
		{"empty cell", "", "5", KindString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.cell, tt.literal).Kind; got != tt.want {
				t.Errorf("Resolve(%q, %q) = %v, want %v", tt.cell, tt.literal, got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindNumber.String() != "number" || KindDate.String() != "date" || KindString.String() != "string" {
		t.Error("unexpected kind names")
	}
}
