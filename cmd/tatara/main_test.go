package main

import "testing"

func TestWorse(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{ExitSuccess, ExitSuccess, ExitSuccess},
		{ExitSuccess, ExitNeedsReview, ExitNeedsReview},
		{ExitReconcileFailed, ExitNeedsReview, ExitReconcileFailed},
		{ExitEntryNotFound, ExitGeneral, ExitEntryNotFound},
	}
	for _, tt := range tests {
		if got := worse(tt.a, tt.b); got != tt.want {
			t.Errorf("worse(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestStripTagPrefix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"v1.2.3", "1.2.3"},
		{"v.0.12.5", "0.12.5"},
		{"1.2.3", "1.2.3"},
		{"2024-01-15", "2024-01-15"},
	}
	for _, tt := range tests {
		if got := stripTagPrefix(tt.in); got != tt.want {
			t.Errorf("stripTagPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
