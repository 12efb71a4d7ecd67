// Package reconcile implements the reconciliation driver: the state
// machine that detects drift between a catalog entry's recorded
// download state and upstream reality, and repairs it within bounded,
// idempotent steps.
//
// One driver serves every trigger (scheduled update runs, install-test
// failures, explicit autofix requests); the trigger only changes who
// reads the outcome, never the repair logic.
package reconcile

import "fmt"

// Status classifies the terminal state of one reconciliation.
type Status int

const (
	// StatusUpToDate: every recorded URL reachable and the detected
	// version agrees with the stored one. Nothing was written.
	StatusUpToDate Status = iota

	// StatusRepaired: drift was found and every affected target was
	// rebuilt and persisted.
	StatusRepaired

	// StatusNeedsManualReview: at least one target could not be
	// repaired. Successfully repaired targets were still persisted;
	// the issue list names what a human must look at.
	StatusNeedsManualReview

	// StatusFailed: the reconciliation aborted before any repair
	// could be trusted (implausible detected version, write conflict,
	// unreadable entry). Nothing was written.
	StatusFailed
)

// String returns the status name used in CLI output and logs.
func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up-to-date"
	case StatusRepaired:
		return "repaired"
	case StatusNeedsManualReview:
		return "needs-manual-review"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Severity grades an issue.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is one problem detected during reconciliation, shaped for the
// notifier collaborator (issue trackers, CI annotations).
type Issue struct {
	Kind        ErrorKind
	Title       string
	Description string
	Severity    Severity
}

// Outcome is the result of one driver invocation for one entry.
type Outcome struct {
	Entry  string
	Status Status

	// DetectedVersion is the canonical version the run settled on,
	// empty when detection never produced a plausible token.
	DetectedVersion string

	// Repaired lists the platform tags whose targets were rebuilt
	// and persisted.
	Repaired []string

	// Issues carries one record per problem for the
	// needs-manual-review and failed cases.
	Issues []Issue
}

// Summary renders a one-line human summary.
func (o Outcome) Summary() string {
	switch o.Status {
	case StatusUpToDate:
		return fmt.Sprintf("%s: up to date (%s)", o.Entry, o.DetectedVersion)
	case StatusRepaired:
		return fmt.Sprintf("%s: repaired %d target(s) to %s", o.Entry, len(o.Repaired), o.DetectedVersion)
	case StatusNeedsManualReview:
		return fmt.Sprintf("%s: needs manual review (%d issue(s))", o.Entry, len(o.Issues))
	default:
		return fmt.Sprintf("%s: failed (%d issue(s))", o.Entry, len(o.Issues))
	}
}
