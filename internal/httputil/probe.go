package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenk/backoff"

	"github.com/tatara-dev/tatara/internal/log"
)

// Prober tests whether recorded download URLs are still reachable.
// It issues a HEAD request first and falls back to a one-byte ranged
// GET for hosts that reject HEAD. Transient failures are retried at
// most once here; anything beyond that belongs to the scheduler that
// re-runs reconciliations.
type Prober struct {
	client *http.Client
	logger log.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeClient sets a custom HTTP client (used in tests).
func WithProbeClient(c *http.Client) ProberOption {
	return func(p *Prober) {
		p.client = c
	}
}

// WithProbeLogger sets the logger.
func WithProbeLogger(l log.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = l
	}
}

// NewProber creates a Prober with the given request timeout.
func NewProber(timeout time.Duration, opts ...ProberOption) *Prober {
	p := &Prober{
		client: NewSecureClient(ClientOptions{Timeout: timeout}),
		logger: log.NewNoop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reachable reports whether url answers with a success or redirect
// status. A definitive client error (404 and friends) is not retried;
// transport failures and server errors get one retry with backoff.
func (p *Prober) Reachable(ctx context.Context, url string) bool {
	return p.probe(ctx, url) == nil
}

// Check is like Reachable but returns the failure cause.
func (p *Prober) Check(ctx context.Context, url string) error {
	return p.probe(ctx, url)
}

func (p *Prober) probe(ctx context.Context, url string) error {
	op := func() error {
		status, err := p.attempt(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		switch {
		case status < 400:
			return nil
		case status == http.StatusTooManyRequests || status >= 500:
			// Transient; worth the single retry.
			return fmt.Errorf("URL %s returned status %d", url, status)
		default:
			return backoff.Permanent(fmt.Errorf("URL %s returned status %d", url, status))
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 1), ctx)
	err := backoff.Retry(op, policy)
	if err != nil {
		p.logger.Debug("probe failed", "url", url, "error", err)
	}
	return err
}

// attempt performs one HEAD probe, downgrading to a ranged GET when
// the host refuses HEAD outright.
func (p *Prober) attempt(ctx context.Context, url string) (int, error) {
	status, err := p.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusForbidden ||
		status == http.StatusNotImplemented {
		p.logger.Debug("HEAD refused, retrying with ranged GET", "url", url, "status", status)
		return p.do(ctx, http.MethodGet, url)
	}
	return status, nil
}

func (p *Prober) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	// Drain a bounded amount so the connection can be reused.
	io.CopyN(io.Discard, resp.Body, 1024) //nolint:errcheck
	resp.Body.Close()
	return resp.StatusCode, nil
}
