package release

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tatara-dev/tatara/internal/httputil"
	"github.com/tatara-dev/tatara/internal/log"
)

const (
	// maxManifestSize bounds checksum manifest downloads.
	maxManifestSize = 1 << 20

	// maxAssetHashSize bounds the direct-download fallback; hashing
	// anything bigger belongs to an operator, not this pipeline.
	maxAssetHashSize = 512 << 20
)

// manifestSuffixes are the companion-file extensions recognized as
// checksum manifests, vendor-attested and preferred over hashing a
// downloaded copy ourselves.
var manifestSuffixes = []string{
	".sha256", ".sha256sum", ".sha256.txt", ".checksum", ".hashes",
	".digest", ".md5", ".md5sum",
}

// manifestNames match whole-name manifest conventions like
// "checksums.txt", "SHA256SUMS" or "DIGEST".
var manifestNames = regexp.MustCompile(`(?i)^(sha256sums?|checksums?|hashes|digests?)(\.txt)?$`)

var hexDigest = regexp.MustCompile(`^[0-9a-fA-F]{32}$|^[0-9a-fA-F]{64}$`)

// ChecksumResolver obtains a trusted content hash for a chosen asset.
type ChecksumResolver struct {
	client *http.Client
	logger log.Logger
}

// ChecksumOption configures a ChecksumResolver.
type ChecksumOption func(*ChecksumResolver)

// WithChecksumClient sets a custom HTTP client (used in tests).
func WithChecksumClient(c *http.Client) ChecksumOption {
	return func(r *ChecksumResolver) {
		r.client = c
	}
}

// WithChecksumLogger sets the logger.
func WithChecksumLogger(l log.Logger) ChecksumOption {
	return func(r *ChecksumResolver) {
		r.logger = l
	}
}

// NewChecksumResolver creates a resolver with the given download timeout.
func NewChecksumResolver(timeout time.Duration, opts ...ChecksumOption) *ChecksumResolver {
	r := &ChecksumResolver{
		client: httputil.NewSecureClient(httputil.ClientOptions{Timeout: timeout}),
		logger: log.NewNoop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the hex digest for target. Preference order:
//
//  1. a digest the release API already published for the asset
//  2. a checksum manifest asset from the same release, parsed for a
//     line naming the target
//  3. downloading the asset and hashing it with SHA-256
//
// The download fallback only runs when no manifest lookup succeeded.
func (r *ChecksumResolver) Resolve(ctx context.Context, assets []Asset, target Asset) (string, error) {
	if d := strings.TrimPrefix(target.Digest, "sha256:"); d != "" && hexDigest.MatchString(d) {
		return strings.ToLower(d), nil
	}

	if digest, ok := r.fromManifests(ctx, assets, target); ok {
		return digest, nil
	}

	r.logger.Info("no checksum manifest found, hashing downloaded asset", "asset", target.Name)
	return r.hashDownload(ctx, target)
}

// fromManifests scans the release's manifest assets for the target's
// digest. Manifest fetch or parse trouble is logged and skipped; a
// later manifest may still have the answer.
func (r *ChecksumResolver) fromManifests(ctx context.Context, assets []Asset, target Asset) (string, bool) {
	for _, a := range assets {
		if !isManifestName(a.Name) {
			continue
		}
		body, err := r.fetch(ctx, a.URL, maxManifestSize)
		if err != nil {
			r.logger.Warn("failed to fetch checksum manifest", "asset", a.Name, "error", err)
			continue
		}
		if digest, ok := parseManifest(body, target.Name); ok {
			r.logger.Debug("checksum found in manifest", "asset", target.Name, "manifest", a.Name)
			return digest, true
		}
	}
	return "", false
}

// isManifestName reports whether an asset name looks like a checksum
// manifest, either by companion suffix ("app.zip.sha256") or by a
// conventional whole name ("checksums.txt", "SHA256SUMS").
func isManifestName(name string) bool {
	lower := strings.ToLower(name)
	for _, suf := range manifestSuffixes {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return manifestNames.MatchString(name)
}

// parseManifest scans manifest lines for one mentioning wantName.
// Both orderings occur in the wild:
//
//	<hex>  <filename>
//	<filename>  <hex>
//
// Filenames are matched by substring, tolerating "./" prefixes and
// "*" binary-mode markers.
func parseManifest(body, wantName string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(body))
	var loneDigest string
	var lines int
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		lines++

		if len(fields) == 1 && hexDigest.MatchString(fields[0]) {
			// A bare-digest manifest ("app.zip.sha256" style) names
			// its file implicitly; only trust it if nothing else does.
			loneDigest = strings.ToLower(fields[0])
			continue
		}

		var digest, name string
		switch {
		case hexDigest.MatchString(fields[0]):
			digest, name = fields[0], strings.Join(fields[1:], " ")
		case hexDigest.MatchString(fields[len(fields)-1]):
			digest, name = fields[len(fields)-1], strings.Join(fields[:len(fields)-1], " ")
		default:
			continue
		}

		name = strings.TrimPrefix(strings.TrimPrefix(name, "*"), "./")
		if strings.Contains(name, wantName) || strings.Contains(wantName, name) {
			return strings.ToLower(digest), true
		}
	}

	if lines == 1 && loneDigest != "" {
		return loneDigest, true
	}
	return "", false
}

// hashDownload streams the asset and computes its SHA-256.
func (r *ChecksumResolver) hashDownload(ctx context.Context, target Asset) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", target.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s returned status %d", target.Name, resp.StatusCode)
	}

	h := sha256.New()
	if _, err := io.Copy(h, io.LimitReader(resp.Body, maxAssetHashSize)); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", target.Name, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (r *ChecksumResolver) fetch(ctx context.Context, url string, limit int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
