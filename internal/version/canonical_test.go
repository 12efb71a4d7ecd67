package version

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		urls []string
		want string
	}{
		{"plain semver passes through", "2.2.3", nil, "2.2.3"},
		{"strip v prefix", "v1.2.3", nil, "1.2.3"},
		{"strip v dot prefix", "v.0.12.5", nil, "0.12.5"},
		{"strip stray leading dots", "..1.5", nil, "1.5"},
		{"pure digits pass through", "20251115", nil, "20251115"},
		{"iso date passes through", "2024-01-15", nil, "2024-01-15"},
		{"date commit passes through", "2024-01-15-3f9ab2c", nil, "2024-01-15-3f9ab2c"},
		{"bare hash passes through", "3d6627c", nil, "3d6627c"},
		{"g suffix collapses to hash", "20251115-g3d6627c", nil, "3d6627c"},
		{"g suffix kept when dotted version present", "1.2.3-g3d6627c", nil, "1.2.3-g3d6627c"},
		{"build commit keeps build", "123-abcdef1", nil, "123"},
		{"underscore runs join", "10_6", nil, "10.6"},
		{"underscore runs keep suffix", "10_6b", nil, "10.6b"},
		{"mame style tag", "mame0282", nil, "0.282"},
		{"long run splits three from end", "r11937", nil, "11.937"},
		{"three digit run with prefix", "tag282", nil, "0.282"},
		{"short run with prefix", "rev42", nil, "42"},
		{"no digits returned as trimmed", "nightly", nil, "nightly"},
		{"semver with qualifier passes through", "1.2.3-rc1", nil, "1.2.3-rc1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.raw, tt.urls); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeURLAnchoring(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		urls []string
		want string
	}{
		{
			"suffixed form preferred when present in url",
			"10_6b",
			[]string{"https://example.com/dl/app-10.6b-win64.zip"},
			"10.6b",
		},
		{
			"plain form wins when suffix absent from url",
			"10_6b",
			[]string{"https://example.com/dl/app-10.6-win64.zip"},
			"10.6",
		},
		{
			"v prefixed url still canonicalizes unprefixed",
			"10_6",
			[]string{"https://example.com/v10.6/app.zip"},
			"10.6",
		},
		{
			"no url hit falls back to suffixed form",
			"10_6b",
			[]string{"https://example.com/dl/app-latest.zip"},
			"10.6b",
		},
		{
			"vendor tag anchored to url",
			"mame0282",
			[]string{"https://example.com/mame/0.282/mame.zip"},
			"0.282",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.raw, tt.urls); got != tt.want {
				t.Errorf("Canonicalize(%q, %v) = %q, want %q", tt.raw, tt.urls, got, tt.want)
			}
		})
	}
}

// Canonicalization must be stable: a second pass over its own output
// changes nothing, for every token the validator accepts.
func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"2.2.3", "115", "20251115", "2024-01-15", "2024-01-15-3f9ab2c",
		"3f9ab2c", "10_6", "10_6b", "1.2.3", "123-abcdef1", "1-2-3",
	}
	for _, raw := range inputs {
		if !Plausible(raw) {
			t.Fatalf("test input %q should be plausible", raw)
		}
		once := Canonicalize(raw, nil)
		twice := Canonicalize(once, nil)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: %q -> %q", raw, once, twice)
		}
	}
}

// Round trip from free text to canonical form for an already-canonical
// release tag.
func TestExtractCanonicalizeRoundTrip(t *testing.T) {
	tok, ok := Extract("app: 2.2.3")
	if !ok {
		t.Fatal("expected a token from free text")
	}
	if !Plausible(tok.Raw) {
		t.Fatalf("token %q should be plausible", tok.Raw)
	}
	if got := Canonicalize(tok.Raw, nil); got != "2.2.3" {
		t.Errorf("round trip = %q, want 2.2.3", got)
	}
}
