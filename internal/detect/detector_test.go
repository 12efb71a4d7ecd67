package detect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tatara-dev/tatara/internal/catalog"
)

func serve(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDetectRegexMode(t *testing.T) {
	srv := serve(t, "text/plain", "current stable release: app-2.2.3 (build 910)")
	d := New(5*time.Second, WithClient(srv.Client()))

	res := d.Detect(context.Background(), &catalog.CheckverConfig{
		URL:   srv.URL,
		Regex: `app-([\d.]+)`,
	})

	if res.Token != "2.2.3" {
		t.Errorf("Token = %q, want 2.2.3", res.Token)
	}
	if len(res.Matches) != 1 || res.Matches[0] != "2.2.3" {
		t.Errorf("Matches = %v", res.Matches)
	}
}

func TestDetectJSONPathMode(t *testing.T) {
	srv := serve(t, "application/json",
		`{"release": {"latest": {"version": "10_6b", "date": "2024-01-15"}}}`)
	d := New(5*time.Second, WithClient(srv.Client()))

	res := d.Detect(context.Background(), &catalog.CheckverConfig{
		URL:      srv.URL,
		JSONPath: "release.latest.version",
	})

	if res.Text != "10_6b" {
		t.Errorf("Text = %q, want 10_6b", res.Text)
	}
	if res.Token != "" {
		t.Errorf("Token should be empty without a regex, got %q", res.Token)
	}
}

func TestDetectJSONPathThenRegex(t *testing.T) {
	srv := serve(t, "application/json", `{"tag_name": "v1.4.2"}`)
	d := New(5*time.Second, WithClient(srv.Client()))

	res := d.Detect(context.Background(), &catalog.CheckverConfig{
		URL:      srv.URL,
		JSONPath: "tag_name",
		Regex:    `v([\d.]+)`,
	})

	if res.Token != "1.4.2" {
		t.Errorf("Token = %q, want 1.4.2", res.Token)
	}
}

func TestDetectHTMLMode(t *testing.T) {
	srv := serve(t, "text/html",
		`<html><head><title>MyApp 3.1.4 — downloads</title></head><body><p>hi</p></body></html>`)
	d := New(5*time.Second, WithClient(srv.Client()))

	res := d.Detect(context.Background(), &catalog.CheckverConfig{
		URL:          srv.URL,
		HTMLSelector: "title",
		Regex:        `MyApp ([\d.]+)`,
	})

	if res.Token != "3.1.4" {
		t.Errorf("Token = %q, want 3.1.4", res.Token)
	}
}

func TestDetectHTMLModeMalformedInput(t *testing.T) {
	srv := serve(t, "text/html", `<title>App 9.0<body><div><p>unclosed`)
	d := New(5*time.Second, WithClient(srv.Client()))

	res := d.Detect(context.Background(), &catalog.CheckverConfig{
		URL:          srv.URL,
		HTMLSelector: "title",
	})

	if res.Text != "App 9.0" {
		t.Errorf("Text = %q, want App 9.0", res.Text)
	}
}

func TestDetectFailuresReturnEmpty(t *testing.T) {
	d := New(2 * time.Second)

	if res := d.Detect(context.Background(), nil); !res.Empty() {
		t.Error("nil config should detect nothing")
	}
	if res := d.Detect(context.Background(), &catalog.CheckverConfig{}); !res.Empty() {
		t.Error("missing URL should detect nothing")
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()
	dd := New(2*time.Second, WithClient(down.Client()))
	if res := dd.Detect(context.Background(), &catalog.CheckverConfig{URL: down.URL}); !res.Empty() {
		t.Error("5xx fetch should detect nothing")
	}
}

func TestDetectMissingJSONPath(t *testing.T) {
	srv := serve(t, "application/json", `{"other": 1}`)
	d := New(5*time.Second, WithClient(srv.Client()))

	res := d.Detect(context.Background(), &catalog.CheckverConfig{
		URL:      srv.URL,
		JSONPath: "tag_name",
	})
	if !res.Empty() {
		t.Errorf("missing JSON field should detect nothing, got %+v", res)
	}
}

func TestDetectBadRegexDegradesToText(t *testing.T) {
	srv := serve(t, "text/plain", "version 5.5")
	d := New(5*time.Second, WithClient(srv.Client()))

	res := d.Detect(context.Background(), &catalog.CheckverConfig{
		URL:   srv.URL,
		Regex: `([`,
	})
	if res.Token != "" {
		t.Errorf("broken regex must not yield a token, got %q", res.Token)
	}
	if res.Text != "version 5.5" {
		t.Errorf("Text = %q", res.Text)
	}
}
