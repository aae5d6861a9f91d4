package utils

import (
	"testing"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"integer", "42", 42, true},
		{"decimal", "3.5", 3.5, true},
		{"whitespace", "  120 ", 120, true},
		{"thousands separator", "1,234", 1234, true},
		{"negative", "-7", -7, true},

		{"empty", "", 0, false},
		{"blank", "   ", 0, false},
		{"text", "n/a", 0, false},
		{"nan", "NaN", 0, false},
		{"inf", "Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFloat(tt.input)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseFloat(%q) error = %v, ok %v", tt.input, err, tt.ok)
			}
			if tt.ok && got != tt.expected {
				t.Errorf("ParseFloat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseWholeNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"2010", 2010, true},
		{" 2011 ", 2011, true},
		{"2012.0", 2012, true},
		{"2012.5", 0, false},
		{"year", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseWholeNumber(tt.input)
		if (err == nil) != tt.ok {
			t.Errorf("ParseWholeNumber(%q) error = %v, ok %v", tt.input, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.expected {
			t.Errorf("ParseWholeNumber(%q) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}
