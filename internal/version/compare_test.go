package version

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		v1   string
		v2   string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.3", "1.2.4", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.10.0", "1.9.0", 1},
		{"1.2", "1.2.0", 0},
		{"1.0.0", "1.0.0-rc.1", 1},
		{"0.282", "0.281", 1},
		{"2024.01.15", "2024.1.15", 0},
		{"20251115", "20251114", 1},
		{"10.6b", "10.6a", 1},
		{"10.6", "10.6", 0},
	}

	for _, tt := range tests {
		t.Run(tt.v1+"_vs_"+tt.v2, func(t *testing.T) {
			if got := Compare(tt.v1, tt.v2); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.want)
			}
			if got := Compare(tt.v2, tt.v1); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.v2, tt.v1, got, -tt.want)
			}
		})
	}
}
