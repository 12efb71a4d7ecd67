package version

import (
	"regexp"
	"strings"
)

var (
	gCommitSuffix  = regexp.MustCompile(`-g([0-9a-f]{7,40})$`)
	buildCommit    = regexp.MustCompile(`^(\d+)-[0-9a-f]{6,}$`)
	dottedPair     = regexp.MustCompile(`\d+\.\d+`)
	digitRun       = regexp.MustCompile(`\d+`)
	trailingAlpha  = regexp.MustCompile(`([A-Za-z]+)$`)
	leadingVPrefix = regexp.MustCompile(`^v\.?`)
)

// Canonicalize rewrites a raw version token into its canonical
// comparable form. Rules apply in order and short-circuit on the first
// match; the result is deterministic for a given raw token and URL set.
//
// knownURLs, when supplied, anchor ambiguous rewrites: among the
// candidate forms of a synthesized version, whichever one actually
// appears as a substring of a known download URL wins. Pass nil when
// no URLs are recorded.
//
// Canonicalization is advisory, not authoritative: ambiguous tokens
// still return a best-effort candidate rather than an error. The
// caller's drift check decides what to do with the result. This
// function is pure and performs no I/O.
//
// Entries whose upstream versioning is intentionally irregular must
// skip canonicalization entirely (see catalog.VersionConfig.Verbatim);
// that bypass lives with the caller so this function stays total.
func Canonicalize(raw string, knownURLs []string) string {
	s := leadingVPrefix.ReplaceAllString(raw, "")
	s = strings.TrimLeft(s, ".")
	if s == "" {
		return raw
	}

	// Already-canonical shapes pass through: pure digit builds, ISO
	// dates, date-commit combos, and bare commit hashes (the last so
	// that collapsing a -g suffix is stable on a second pass).
	if pureDigits.MatchString(s) || isoDate.MatchString(s) ||
		dateCommit.MatchString(s) || bareHex.MatchString(s) {
		return s
	}

	// "20251115-g3d6627c" carries no dotted version, so the commit is
	// the identity worth keeping, not the synthetic build counter.
	if m := gCommitSuffix.FindStringSubmatch(s); m != nil && !dottedPair.MatchString(s) {
		return m[1]
	}

	// "123-abcdef12" build-then-commit keeps the leading build number.
	if m := buildCommit.FindStringSubmatch(s); m != nil {
		return m[1]
	}

	// Anything already containing a dotted pair is semantic-like.
	if dottedPair.MatchString(s) {
		return s
	}

	suffix := ""
	if m := trailingAlpha.FindString(s); m != "" {
		suffix = m
	}

	runs := digitRun.FindAllString(s, -1)
	switch {
	case len(runs) >= 2:
		// Multiple digit runs: join with dots to synthesize a
		// semantic-like version ("10_6b" -> "10.6b").
		return pickCandidate(strings.Join(runs, "."), suffix, knownURLs)

	case len(runs) == 1:
		// Vendor-prefixed single run, e.g. "mame0282".
		run := runs[0]
		var dotted string
		switch {
		case len(run) >= 4:
			dotted = run[:len(run)-3] + "." + run[len(run)-3:]
		case len(run) == 3 && !isDigit(s[0]):
			// A bare "115" would already have passed through above;
			// only prefixed tags like "tag282" mean 0.282.
			dotted = "0." + run
		default:
			dotted = run
		}
		return pickCandidate(dotted, suffix, knownURLs)
	}

	// No digits at all; nothing to rewrite.
	return s
}

// pickCandidate resolves a synthesized dotted version against known
// download URLs. Candidate URL forms are tried in a fixed preference
// order (suffixed dotted, plain dotted, then v- and dot-prefixed
// variants); the first form found as a substring of any URL determines
// the result. Prefixed URL forms still canonicalize to the unprefixed
// version. Without URLs, or with no hit, the suffixed dotted form is
// the best-effort answer.
//
// Known weakness, preserved deliberately: a candidate can match an
// unrelated fragment of an unrelated URL, and the first match in
// preference order wins without further disambiguation.
func pickCandidate(dotted, suffix string, knownURLs []string) string {
	withSuffix := dotted + suffix

	if len(knownURLs) == 0 {
		return withSuffix
	}

	candidates := []struct {
		urlForm string
		result  string
	}{
		{withSuffix, withSuffix},
		{dotted, dotted},
		{"v" + withSuffix, withSuffix},
		{"v" + dotted, dotted},
		{"." + withSuffix, withSuffix},
		{"." + dotted, dotted},
	}

	for _, c := range candidates {
		for _, u := range knownURLs {
			if strings.Contains(u, c.urlForm) {
				return c.result
			}
		}
	}
	return withSuffix
}
