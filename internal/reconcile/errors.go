package reconcile

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrorKind classifies reconciliation failures. The kind decides both
// propagation (abort vs accumulate) and the terminal status.
type ErrorKind int

const (
	// KindExtractionMiss: no version token found in detector output.
	// A normal outcome, not logged as an error.
	KindExtractionMiss ErrorKind = iota

	// KindValidationRejected: a token was found but is implausible as
	// a version. Always aborts the attempt; nothing is persisted.
	KindValidationRejected

	// KindUpstreamUnavailable: release API or network failure. Retried
	// at most once at the transport layer, then surfaced for review.
	KindUpstreamUnavailable

	// KindAssetNotFound: a release was found but no asset matches the
	// requested platform. Other targets continue processing.
	KindAssetNotFound

	// KindChecksumUnavailable: neither a manifest nor download-based
	// hashing produced a digest. The target's repair fails.
	KindChecksumUnavailable

	// KindWriteConflict: the persistence layer saw a concurrent write.
	// Fatal for this reconciliation; never retried blindly.
	KindWriteConflict
)

// String returns the kind's wire name, used in issue records.
func (k ErrorKind) String() string {
	switch k {
	case KindExtractionMiss:
		return "ExtractionMiss"
	case KindValidationRejected:
		return "ValidationRejected"
	case KindUpstreamUnavailable:
		return "UpstreamUnavailable"
	case KindAssetNotFound:
		return "AssetNotFound"
	case KindChecksumUnavailable:
		return "ChecksumUnavailable"
	case KindWriteConflict:
		return "WriteConflict"
	default:
		return "Unknown"
	}
}

// ReconcileError is a classified failure within the driver.
type ReconcileError struct {
	Kind    ErrorKind
	Target  string // platform tag, empty for entry-level failures
	Message string
	Err     error
}

func (e *ReconcileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// issue converts the error into the notifier-facing record. Upstream
// failures get the transport cause appended, since "set GITHUB_TOKEN"
// and "fix your DNS" are very different remediations.
func (e *ReconcileError) issue(severity Severity) Issue {
	title := e.Kind.String()
	if e.Target != "" {
		title = fmt.Sprintf("%s (%s)", title, e.Target)
	}
	desc := e.Error()
	if e.Kind == KindUpstreamUnavailable && e.Err != nil {
		if cause := ClassifyNetwork(e.Err); cause != CauseUnknown {
			desc = fmt.Sprintf("%s [%s]", desc, cause)
		}
	}
	return Issue{
		Kind:        e.Kind,
		Title:       title,
		Description: desc,
		Severity:    severity,
	}
}

// NetworkCause narrows an upstream failure to the transport problem
// underneath it.
type NetworkCause int

const (
	CauseUnknown NetworkCause = iota
	CauseTimeout
	CauseDNS
	CauseConnection
	CauseTLS
)

func (c NetworkCause) String() string {
	switch c {
	case CauseTimeout:
		return "timeout"
	case CauseDNS:
		return "dns"
	case CauseConnection:
		return "connection"
	case CauseTLS:
		return "tls"
	default:
		return "unknown"
	}
}

// ClassifyNetwork examines an error chain and returns the most
// specific transport cause it can identify.
func ClassifyNetwork(err error) NetworkCause {
	if err == nil {
		return CauseUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CauseTimeout
	}
	if errors.Is(err, context.Canceled) {
		return CauseUnknown
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return CauseTimeout
		}
		return CauseDNS
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return CauseTLS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return CauseTimeout
		}
		var innerDNS *net.DNSError
		if errors.As(opErr.Err, &innerDNS) {
			return CauseDNS
		}
		return CauseConnection
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return CauseTimeout
		}
		msg := urlErr.Err.Error()
		if strings.Contains(msg, "certificate") || strings.Contains(msg, "tls") || strings.Contains(msg, "x509") {
			return CauseTLS
		}
		return ClassifyNetwork(urlErr.Err)
	}

	return CauseUnknown
}
