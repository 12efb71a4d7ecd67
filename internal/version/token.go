// Package version implements token extraction, plausibility
// validation, and canonicalization for upstream release identifiers.
//
// Upstream version strings arrive in loosely structured shapes:
// semantic versions, date stamps, commit hashes, numeric build IDs, and
// vendor-prefixed tags. This package turns free text into a classified
// Token and rewrites raw tokens into a canonical comparable form. All
// functions here are pure; no I/O happens below this line.
package version

import (
	"regexp"
	"strings"
)

// TokenKind classifies the shape of an extracted version token.
type TokenKind int

const (
	// KindDateCommit is a date plus short commit hash, e.g. "2024-01-15-3f9ab2c".
	KindDateCommit TokenKind = iota
	// KindDate is a bare ISO date, e.g. "2024-01-15".
	KindDate
	// KindCommitHash is a bare hex commit hash of 7 to 40 characters.
	KindCommitHash
	// KindSemver is a dotted numeric sequence with optional qualifier, e.g. "1.2.3-rc1".
	KindSemver
	// KindNumericBuild is a plain numeric run of two or more digits.
	KindNumericBuild
	// KindFallback is a free-text field that carries a digit at a boundary.
	KindFallback
)

// String returns a short name for the kind, used in logs and issues.
func (k TokenKind) String() string {
	switch k {
	case KindDateCommit:
		return "date-commit"
	case KindDate:
		return "date"
	case KindCommitHash:
		return "commit-hash"
	case KindSemver:
		return "semver"
	case KindNumericBuild:
		return "numeric-build"
	case KindFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Token is a raw version string plus its shape classification.
// Tokens are immutable once classified; canonicalization produces a
// new string and never mutates the source token.
type Token struct {
	Raw  string
	Kind TokenKind
}

// shapeMatcher pairs a pattern with the kind it assigns.
// Matchers are tried in order, most specific first.
type shapeMatcher struct {
	kind TokenKind
	re   *regexp.Regexp
}

var shapeMatchers = []shapeMatcher{
	{KindDateCommit, regexp.MustCompile(`\d{4}-\d{2}-\d{2}-[0-9a-f]{7,40}`)},
	{KindDate, regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)},
	{KindCommitHash, regexp.MustCompile(`\b[0-9a-f]{7,40}\b`)},
	{KindSemver, regexp.MustCompile(`\d+(?:\.\d+)+(?:[0-9A-Za-z._-]*[0-9A-Za-z])?`)},
	{KindNumericBuild, regexp.MustCompile(`\d{2,}`)},
}

var allDigits = regexp.MustCompile(`^\d+$`)

// Extract pulls a candidate version token out of arbitrary free text
// (tool output, HTML fragments, JSON field values). It applies the
// shape matchers in order and returns the first match; if none of the
// structured shapes occur it falls back to scanning whitespace-delimited
// fields for one carrying a digit at a boundary.
//
// A miss returns ok=false. Malformed input is never an error here;
// absence of a token is a normal outcome.
func Extract(text string) (Token, bool) {
	for _, m := range shapeMatchers {
		loc := m.re.FindString(text)
		if loc == "" {
			continue
		}
		kind := m.kind
		// A hex-shaped run of pure digits is a build number, not a
		// commit hash ("20251115" is valid hex but nobody means that).
		if kind == KindCommitHash && allDigits.MatchString(loc) {
			kind = KindNumericBuild
		}
		return Token{Raw: loc, Kind: kind}, true
	}

	for _, field := range strings.Fields(text) {
		field = strings.TrimRight(field, ".,;:!?)\"'")
		if field == "" {
			continue
		}
		if isDigit(field[0]) || isDigit(field[len(field)-1]) {
			return Token{Raw: field, Kind: KindFallback}, true
		}
	}

	return Token{}, false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
