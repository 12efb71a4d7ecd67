// Package catalog defines the persisted model for tracked software:
// catalog entries, their per-platform download targets, and the
// version-detection configuration driving reconciliation. It also
// provides placeholder substitution for templated download URLs and a
// JSON file store implementing the persistence collaborator.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Platform tags used by download targets. "generic" marks an
// architecture-agnostic target.
const (
	Platform64Bit   = "64bit"
	Platform32Bit   = "32bit"
	PlatformGeneric = "generic"
)

// Entry is one tracked piece of software. Entries are created by
// humans or generators; only the reconciliation driver mutates them,
// and nothing in this core deletes them.
type Entry struct {
	// Name identifies the entry; it doubles as the store key.
	Name string `json:"name"`

	// Version is the current canonical version string.
	Version string `json:"version"`

	// Homepage is informational only.
	Homepage string `json:"homepage,omitempty"`

	// Repo is the upstream repository reference ("owner/name").
	Repo string `json:"repo,omitempty"`

	// Targets are the per-platform download targets, keyed by
	// platform tag.
	Targets map[string]*Target `json:"targets"`

	// Checkver configures version detection for this entry.
	Checkver *CheckverConfig `json:"checkver,omitempty"`

	// VersionConfig carries canonicalization quirks.
	VersionConfig VersionConfig `json:"version_config,omitempty"`
}

// Target is a single platform's download location.
//
// Invariant: when Checksum is set it corresponds to the exact bytes at
// URL as of the last successful reconciliation. A URL still carrying
// an unresolved placeholder must never be dereferenced.
type Target struct {
	// URL may contain placeholders ($version and friends) before
	// substitution.
	URL string `json:"url"`

	// Checksum is a hex SHA-256 digest, or empty when none is known.
	Checksum string `json:"checksum,omitempty"`
}

// CheckverConfig tells the version detector where and how to find the
// latest upstream version.
type CheckverConfig struct {
	// URL is the page or API endpoint to fetch.
	URL string `json:"url,omitempty"`

	// Regex, when set, captures the version from the fetched body.
	// The first capture group (or whole match) is the raw token.
	Regex string `json:"regex,omitempty"`

	// JSONPath, when set, addresses a field in a JSON body by dotted
	// path (e.g. "tag_name" or "release.latest.version").
	JSONPath string `json:"jsonpath,omitempty"`

	// HTMLSelector, when set, names an element whose text content is
	// scanned for the version (tag name, e.g. "title" or "h1").
	HTMLSelector string `json:"html,omitempty"`
}

// VersionConfig carries per-entry canonicalization behavior.
type VersionConfig struct {
	// Verbatim disables canonicalization entirely. Set for vendors
	// whose upstream versioning is intentionally irregular; their
	// detected token is used as-is.
	Verbatim bool `json:"verbatim,omitempty"`
}

// placeholder matches $name template markers in URLs.
var placeholder = regexp.MustCompile(`\$(version|dotlessVersion|underscoreVersion|dashVersion|cleanVersion|match\d+)`)

// HasPlaceholder reports whether a URL still carries an unresolved
// template marker and therefore must not be dereferenced.
func HasPlaceholder(url string) bool {
	return placeholder.MatchString(url)
}

// SubstituteURL expands version placeholders in a URL template.
// Supported markers:
//
//	$version           the canonical version as-is
//	$dotlessVersion    dots removed ("1.2.3" -> "123")
//	$underscoreVersion dots replaced with underscores
//	$dashVersion       dots replaced with dashes
//	$cleanVersion      leading "v" stripped
//	$matchN            Nth capture group of the checkver regex
//
// matches may be nil when the entry's checkver has no capture groups.
func SubstituteURL(url, version string, matches []string) string {
	return placeholder.ReplaceAllStringFunc(url, func(m string) string {
		switch m {
		case "$version":
			return version
		case "$dotlessVersion":
			return strings.ReplaceAll(version, ".", "")
		case "$underscoreVersion":
			return strings.ReplaceAll(version, ".", "_")
		case "$dashVersion":
			return strings.ReplaceAll(version, ".", "-")
		case "$cleanVersion":
			return strings.TrimPrefix(version, "v")
		}
		// $matchN capture slot.
		var n int
		if _, err := fmt.Sscanf(m, "$match%d", &n); err == nil {
			if n >= 1 && n <= len(matches) {
				return matches[n-1]
			}
		}
		return m
	})
}

// KnownURLs collects the recorded target URLs of an entry, used to
// anchor ambiguous canonicalizations.
func (e *Entry) KnownURLs() []string {
	urls := make([]string, 0, len(e.Targets))
	for _, tag := range SortedTags(e.Targets) {
		urls = append(urls, e.Targets[tag].URL)
	}
	return urls
}

// Validate checks the structural invariants of an entry before it is
// accepted for reconciliation.
func (e *Entry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("entry has no name")
	}
	if len(e.Targets) == 0 {
		return fmt.Errorf("entry %s has no download targets", e.Name)
	}
	for tag, tgt := range e.Targets {
		if tgt == nil || tgt.URL == "" {
			return fmt.Errorf("entry %s target %s has no URL", e.Name, tag)
		}
	}
	return nil
}

// Clone returns a deep copy, so a repair attempt can build the new
// state without touching the record read from the store.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Targets = make(map[string]*Target, len(e.Targets))
	for tag, tgt := range e.Targets {
		t := *tgt
		c.Targets[tag] = &t
	}
	if e.Checkver != nil {
		cv := *e.Checkver
		c.Checkver = &cv
	}
	return &c
}
