package main

// Exit codes for different outcomes.
// These enable scripts (CI jobs, cron wrappers) to distinguish
// between failure modes. Values rank by severity so a multi-entry
// run can report the worst outcome it saw.
const (
	// ExitSuccess indicates every entry was clean or repaired
	ExitSuccess = 0

	// ExitGeneral indicates a general error
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments or usage error
	ExitUsage = 2

	// ExitEntryNotFound indicates a named entry does not exist
	ExitEntryNotFound = 3

	// ExitNeedsReview indicates at least one entry needs manual review
	ExitNeedsReview = 4

	// ExitReconcileFailed indicates at least one reconciliation failed
	ExitReconcileFailed = 5
)

// worse returns the more severe of two exit codes.
func worse(a, b int) int {
	if b > a {
		return b
	}
	return a
}
