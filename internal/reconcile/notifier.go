package reconcile

import "github.com/tatara-dev/tatara/internal/log"

// Notifier receives issue records for non-up-to-date outcomes so an
// external system (issue tracker, CI annotation, chat) can act on
// them. Notifications are fire-and-forget: a notifier that fails must
// not fail the reconciliation, so the interface has no error return.
type Notifier interface {
	Report(entry string, status Status, issues []Issue)
}

// LogNotifier writes issue records to the structured log.
type LogNotifier struct {
	Logger log.Logger
}

// Report logs one record per issue at a level matching its severity.
func (n LogNotifier) Report(entry string, status Status, issues []Issue) {
	logger := n.Logger
	if logger == nil {
		logger = log.Default()
	}
	for _, issue := range issues {
		args := []any{
			"entry", entry,
			"status", status.String(),
			"kind", issue.Kind.String(),
			"detail", issue.Description,
		}
		if issue.Severity == SeverityError {
			logger.Error(issue.Title, args...)
		} else {
			logger.Warn(issue.Title, args...)
		}
	}
}

// NopNotifier discards all reports.
type NopNotifier struct{}

func (NopNotifier) Report(string, Status, []Issue) {}
