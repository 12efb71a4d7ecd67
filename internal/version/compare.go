package version

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Compare compares two canonical version strings.
// Returns 1 if v1 > v2, -1 if v1 < v2, 0 if equal.
//
// Both values are parsed as semver when possible (semver handles
// "1.2", "1.2.3" and prerelease qualifiers); shapes semver rejects
// (calver with leading zeros, long build numbers, date-commit combos)
// fall back to segment-wise numeric comparison with a lexicographic
// last resort.
func Compare(v1, v2 string) int {
	if s1, err1 := semver.NewVersion(v1); err1 == nil {
		if s2, err2 := semver.NewVersion(v2); err2 == nil {
			return s1.Compare(s2)
		}
	}
	return compareSegments(v1, v2)
}

// compareSegments compares dot/hyphen/underscore separated segments,
// numerically where both sides are numeric, lexicographically otherwise.
func compareSegments(v1, v2 string) int {
	split := func(r rune) bool { return r == '.' || r == '-' || r == '_' }
	p1 := strings.FieldsFunc(v1, split)
	p2 := strings.FieldsFunc(v2, split)

	n := len(p1)
	if len(p2) > n {
		n = len(p2)
	}

	for i := 0; i < n; i++ {
		var a, b string
		if i < len(p1) {
			a = p1[i]
		}
		if i < len(p2) {
			b = p2[i]
		}
		if a == b {
			continue
		}

		na, errA := strconv.Atoi(a)
		nb, errB := strconv.Atoi(b)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na > nb {
					return 1
				}
				return -1
			}
		default:
			if a > b {
				return 1
			}
			return -1
		}
	}
	return 0
}
