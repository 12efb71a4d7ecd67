package catalog

import (
	"reflect"
	"testing"
)

func TestSubstituteURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		version string
		matches []string
		want    string
	}{
		{
			"version slot",
			"https://example.com/app/$version/app-$version.zip",
			"1.2.3", nil,
			"https://example.com/app/1.2.3/app-1.2.3.zip",
		},
		{
			"dotless version",
			"https://example.com/app$dotlessVersion.zip",
			"1.2.3", nil,
			"https://example.com/app123.zip",
		},
		{
			"underscore and dash",
			"https://example.com/$underscoreVersion/$dashVersion",
			"1.2.3", nil,
			"https://example.com/1_2_3/1-2-3",
		},
		{
			"clean version",
			"https://example.com/$cleanVersion.zip",
			"v1.2.3", nil,
			"https://example.com/1.2.3.zip",
		},
		{
			"match slots",
			"https://example.com/$match1/app-$match2.zip",
			"1.2.3", []string{"2024", "build77"},
			"https://example.com/2024/app-build77.zip",
		},
		{
			"out of range match stays put",
			"https://example.com/$match3.zip",
			"1.2.3", []string{"a"},
			"https://example.com/$match3.zip",
		},
		{
			"no placeholders untouched",
			"https://example.com/static.zip",
			"9.9.9", nil,
			"https://example.com/static.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubstituteURL(tt.url, tt.version, tt.matches)
			if got != tt.want {
				t.Errorf("SubstituteURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasPlaceholder(t *testing.T) {
	if !HasPlaceholder("https://example.com/$version.zip") {
		t.Error("expected placeholder detection for $version")
	}
	if !HasPlaceholder("https://example.com/$match1.zip") {
		t.Error("expected placeholder detection for $match1")
	}
	if HasPlaceholder("https://example.com/1.2.3.zip") {
		t.Error("unexpected placeholder detection on resolved URL")
	}
}

func TestEntryValidate(t *testing.T) {
	valid := &Entry{
		Name:    "app",
		Version: "1.0",
		Targets: map[string]*Target{
			Platform64Bit: {URL: "https://example.com/app64.zip"},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid entry rejected: %v", err)
	}

	if err := (&Entry{}).Validate(); err == nil {
		t.Error("nameless entry accepted")
	}
	if err := (&Entry{Name: "x"}).Validate(); err == nil {
		t.Error("targetless entry accepted")
	}
	noURL := &Entry{Name: "x", Targets: map[string]*Target{"64bit": {}}}
	if err := noURL.Validate(); err == nil {
		t.Error("target without URL accepted")
	}
}

func TestEntryCloneIsDeep(t *testing.T) {
	orig := &Entry{
		Name:     "app",
		Version:  "1.0",
		Targets:  map[string]*Target{Platform64Bit: {URL: "https://a/1.0.zip"}},
		Checkver: &CheckverConfig{URL: "https://a/releases"},
	}

	c := orig.Clone()
	c.Targets[Platform64Bit].URL = "https://a/2.0.zip"
	c.Checkver.URL = "changed"
	c.Version = "2.0"

	if orig.Targets[Platform64Bit].URL != "https://a/1.0.zip" {
		t.Error("clone shares target memory with original")
	}
	if orig.Checkver.URL != "https://a/releases" {
		t.Error("clone shares checkver memory with original")
	}
	if orig.Version != "1.0" {
		t.Error("clone shares scalar state with original")
	}
}

func TestKnownURLsStableOrder(t *testing.T) {
	e := &Entry{
		Name: "app",
		Targets: map[string]*Target{
			Platform64Bit:   {URL: "https://a/64"},
			Platform32Bit:   {URL: "https://a/32"},
			PlatformGeneric: {URL: "https://a/any"},
		},
	}
	want := []string{"https://a/32", "https://a/64", "https://a/any"}
	for i := 0; i < 5; i++ {
		if got := e.KnownURLs(); !reflect.DeepEqual(got, want) {
			t.Fatalf("KnownURLs = %v, want %v", got, want)
		}
	}
}
