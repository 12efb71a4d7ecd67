// Package detect implements the checkver collaborator: it fetches a
// configured upstream page or API endpoint and pulls out the raw text
// a version token will be extracted from.
//
// Three modes, combinable: a gjson dotted path for JSON APIs, an HTML
// element selector for release pages, and a regex over whichever text
// the previous mode produced (or the whole body). Detection failures
// yield an empty result, never an error; the driver treats an empty
// result as "checkver unavailable" and falls back to the release API.
package detect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"

	"github.com/tatara-dev/tatara/internal/catalog"
	"github.com/tatara-dev/tatara/internal/httputil"
	"github.com/tatara-dev/tatara/internal/log"
)

// maxBodySize bounds fetched bodies; checkver pages are small and a
// multi-megabyte response is a misconfiguration, not a version page.
const maxBodySize = 4 << 20

// Result is the outcome of one detection run.
type Result struct {
	// Token is the regex-captured version candidate, when the entry's
	// checkver carries a regex. Empty otherwise.
	Token string

	// Matches holds all regex capture groups, for $matchN URL slots.
	Matches []string

	// Text is the mode-extracted text the token came from (or the
	// whole body when no JSON/HTML mode applies). Token extraction
	// falls back to scanning this when Token is empty.
	Text string
}

// Empty reports whether detection produced nothing usable.
func (r Result) Empty() bool {
	return r.Token == "" && strings.TrimSpace(r.Text) == ""
}

// Detector runs checkver configurations against upstream endpoints.
type Detector struct {
	client *http.Client
	logger log.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithClient sets a custom HTTP client (used in tests).
func WithClient(c *http.Client) Option {
	return func(d *Detector) {
		d.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(d *Detector) {
		d.logger = l
	}
}

// New creates a Detector with the given request timeout.
func New(timeout time.Duration, opts ...Option) *Detector {
	d := &Detector{
		client: httputil.NewSecureClient(httputil.ClientOptions{Timeout: timeout}),
		logger: log.NewNoop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect fetches the entry's checkver URL and applies its extraction
// modes. Any failure (no config, fetch error, bad regex, missing JSON
// field) returns an empty Result; callers decide how to degrade.
func (d *Detector) Detect(ctx context.Context, cv *catalog.CheckverConfig) Result {
	if cv == nil || cv.URL == "" {
		return Result{}
	}

	body, err := d.fetch(ctx, cv.URL)
	if err != nil {
		d.logger.Warn("checkver fetch failed", "url", cv.URL, "error", err)
		return Result{}
	}

	text := body
	if cv.JSONPath != "" {
		v := gjson.Get(body, cv.JSONPath)
		if !v.Exists() {
			d.logger.Warn("checkver JSON path missing", "url", cv.URL, "path", cv.JSONPath)
			return Result{}
		}
		text = v.String()
	} else if cv.HTMLSelector != "" {
		text = elementText(body, cv.HTMLSelector)
		if text == "" {
			d.logger.Warn("checkver HTML selector missing", "url", cv.URL, "selector", cv.HTMLSelector)
			return Result{}
		}
	}

	if cv.Regex == "" {
		return Result{Text: text}
	}

	re, err := regexp.Compile(cv.Regex)
	if err != nil {
		d.logger.Warn("checkver regex invalid", "regex", cv.Regex, "error", err)
		return Result{Text: text}
	}

	m := re.FindStringSubmatch(text)
	if m == nil {
		d.logger.Debug("checkver regex matched nothing", "regex", cv.Regex)
		return Result{Text: text}
	}

	token := m[0]
	if len(m) > 1 && m[1] != "" {
		token = m[1]
	}
	return Result{Token: token, Matches: m[1:], Text: text}
}

func (d *Detector) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// elementText returns the concatenated text content of the first
// element with the given tag name. Malformed HTML is tolerated; the
// parser recovers and we walk whatever tree came out.
func elementText(body, tag string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var target *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if target != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			target = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	if target == nil {
		return ""
	}

	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(target)
	return strings.TrimSpace(sb.String())
}
