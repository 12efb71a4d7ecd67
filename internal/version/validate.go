package version

import "regexp"

// MaxTokenLength bounds version tokens; anything longer is garbage
// from a scrape gone wrong, not a version.
const MaxTokenLength = 128

var (
	pureDigits = regexp.MustCompile(`^\d+$`)
	isoDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateCommit = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-[0-9a-f]{7,40}$`)
	bareHex    = regexp.MustCompile(`^[0-9a-f]{7,40}$`)
	// digitBounded covers dotted/hyphenated/underscored versions that
	// start and end with a digit, e.g. "1.2.3", "10_6", "2024-01".
	// A single trailing letter qualifier is tolerated ("10_6b") since
	// some vendors attach one to otherwise numeric versions; it needs
	// two anchoring digits, so a bare "2x" still fails.
	digitBounded = regexp.MustCompile(`^\d[0-9._-]*\d[a-z]?$`)
)

// Plausible reports whether a raw token is believable as a version.
//
// This is the mandatory gate between extraction and everything else:
// callers must never canonicalize or persist a token that did not pass
// here. The rules deliberately reject short alphanumeric mixes (a "2x"
// or "b4" scraped out of prose), which are the common false positives
// of free-text scanning.
func Plausible(raw string) bool {
	if raw == "" || len(raw) > MaxTokenLength {
		return false
	}

	switch {
	case pureDigits.MatchString(raw):
		return true
	case isoDate.MatchString(raw):
		return true
	case dateCommit.MatchString(raw):
		return true
	case bareHex.MatchString(raw):
		return true
	case digitBounded.MatchString(raw):
		return true
	}
	return false
}
