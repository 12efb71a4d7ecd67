package version

import (
	"strings"
	"testing"
)

func TestPlausible(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		// Accepted shapes.
		{"115", true},
		{"5", true},
		{"20251115", true},
		{"2024-01-15", true},
		{"2024-01-15-3f9ab2c", true},
		{"3f9ab2c", true},
		{"3f9ab2c0dd1e4b5a3f9ab2c0dd1e4b5a3f9ab2c0", true},
		{"1.2.3", true},
		{"0.12.5", true},
		{"10_6", true},
		{"10_6b", true},
		{"2.2.3", true},
		{"1-2-3", true},

		// Rejected shapes.
		{"", false},
		{"couldn't", false},
		{"latest", false},
		{"2x", false},
		{"b4", false},
		{"v1.2.3", false},
		{"abcdef", false},
		{".1.2", false},
		{"1.2.", false},
		{"1.2.3-rc1", false},
		{strings.Repeat("1", MaxTokenLength+1), false},
	}

	for _, tt := range tests {
		name := tt.raw
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			if got := Plausible(tt.raw); got != tt.want {
				t.Errorf("Plausible(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPlausibleHexBounds(t *testing.T) {
	// Hex runs must be 7 to 40 characters; shorter is too ambiguous,
	// longer is not a git object name.
	if Plausible("abcdef1") != true {
		t.Error("7-char hex should be plausible")
	}
	if Plausible("abcdef") != false {
		t.Error("6-char hex should be implausible")
	}
	if Plausible(strings.Repeat("a", 41)) != false {
		t.Error("41-char hex should be implausible")
	}
}
