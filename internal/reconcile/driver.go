// Package reconcile coordinates version detection, drift checking, and
// target repair for catalog entries.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/tatara-dev/tatara/internal/catalog"
	"github.com/tatara-dev/tatara/internal/detect"
	"github.com/tatara-dev/tatara/internal/log"
	"github.com/tatara-dev/tatara/internal/release"
	"github.com/tatara-dev/tatara/internal/version"
)

// VersionDetector probes a vendor endpoint for the currently published
// version. Implementations return an empty Result on any failure.
type VersionDetector interface {
	Detect(ctx context.Context, cv *catalog.CheckverConfig) detect.Result
}

// ReleaseResolver finds upstream releases for a repository.
type ReleaseResolver interface {
	Resolve(ctx context.Context, repo, targetVersion string) (*release.Release, error)
	Latest(ctx context.Context, repo string) (*release.Release, error)
}

// ChecksumSource produces a hex digest for a release asset.
type ChecksumSource interface {
	Resolve(ctx context.Context, assets []release.Asset, target release.Asset) (string, error)
}

// Prober reports whether a URL currently serves content.
type Prober interface {
	Reachable(ctx context.Context, url string) bool
}

// Driver runs the reconciliation loop for a single catalog entry:
// check every download target, detect the published version, and
// repair whatever drifted.
type Driver struct {
	store     catalog.Store
	detector  VersionDetector
	releases  ReleaseResolver
	checksums ChecksumSource
	prober    Prober
	notifier  Notifier
	logger    log.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithNotifier routes non-clean outcomes to n instead of the default
// log-backed notifier.
func WithNotifier(n Notifier) Option {
	return func(d *Driver) { d.notifier = n }
}

// WithLogger sets the driver's logger.
func WithLogger(l log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New builds a Driver over the given collaborators.
func New(store catalog.Store, detector VersionDetector, releases ReleaseResolver, checksums ChecksumSource, prober Prober, opts ...Option) *Driver {
	d := &Driver{
		store:     store,
		detector:  detector,
		releases:  releases,
		checksums: checksums,
		prober:    prober,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.Default()
	}
	if d.notifier == nil {
		d.notifier = LogNotifier{Logger: d.logger}
	}
	return d
}

// Reconcile checks the named entry against upstream and repairs drifted
// targets. The returned Outcome always carries a terminal status; the
// error is non-nil only when the entry could not be loaded at all.
//
// Repairs are per-target: targets fixed before a later target fails are
// still persisted, and the attempt as a whole is downgraded to
// NeedsManualReview. The entry-level version field advances only when
// every target was repaired.
func (d *Driver) Reconcile(ctx context.Context, name string) (Outcome, error) {
	out := Outcome{Entry: name}

	entry, err := d.store.Read(name)
	if err != nil {
		out.Status = StatusFailed
		return out, fmt.Errorf("reading entry %q: %w", name, err)
	}
	if err := entry.Validate(); err != nil {
		out.Status = StatusFailed
		return out, fmt.Errorf("entry %q: %w", name, err)
	}

	// Checking: probe every concrete target URL. Templated URLs are
	// skipped; they are expanded during repair.
	unreachable := make(map[string]bool)
	for _, tag := range catalog.SortedTags(entry.Targets) {
		t := entry.Targets[tag]
		if catalog.HasPlaceholder(t.URL) {
			continue
		}
		if !d.prober.Reachable(ctx, t.URL) {
			d.logger.Warn("target unreachable", "entry", name, "platform", tag, "url", t.URL)
			unreachable[tag] = true
		}
	}
	if err := ctx.Err(); err != nil {
		out.Status = StatusFailed
		return out, err
	}

	raw, matches, detectIssues := d.detectVersion(ctx, entry)
	if raw == "" {
		if len(unreachable) == 0 && len(detectIssues) == 0 {
			// Nothing to compare against and nothing broken.
			d.logger.Warn("version detection unavailable, targets reachable", "entry", name)
			out.Status = StatusUpToDate
			return out, nil
		}
		for tag := range unreachable {
			detectIssues = append(detectIssues, Issue{
				Kind:        KindUpstreamUnavailable,
				Title:       fmt.Sprintf("Target %s unreachable", tag),
				Description: "the download URL no longer serves content and no published version could be detected to repair it",
				Severity:    SeverityError,
			})
		}
		out.Status = StatusNeedsManualReview
		out.Issues = detectIssues
		d.notifier.Report(name, out.Status, out.Issues)
		return out, nil
	}

	// Upstream tags often carry a "v" or "v." prefix that the
	// canonicalizer strips; validation judges the bare token.
	bare := raw
	if rest, ok := strings.CutPrefix(bare, "v"); ok {
		bare = strings.TrimPrefix(rest, ".")
	}
	if !version.Plausible(bare) {
		rerr := &ReconcileError{
			Kind:    KindValidationRejected,
			Message: fmt.Sprintf("detected token %q is not a plausible version", raw),
		}
		out.Status = StatusFailed
		out.Issues = []Issue{rerr.issue(SeverityError)}
		d.notifier.Report(name, out.Status, out.Issues)
		return out, nil
	}

	canonical := raw
	if !entry.VersionConfig.Verbatim {
		canonical = version.Canonicalize(raw, entry.KnownURLs())
	}
	out.DetectedVersion = canonical

	if len(unreachable) == 0 && canonical == entry.Version {
		out.Status = StatusUpToDate
		return out, nil
	}

	// Repairing.
	updated := entry.Clone()
	versionChanged := canonical != entry.Version
	var issues []Issue
	for _, tag := range catalog.SortedTags(entry.Targets) {
		if ctx.Err() != nil {
			issues = append(issues, Issue{
				Kind:        KindUpstreamUnavailable,
				Title:       fmt.Sprintf("Target %s not attempted", tag),
				Description: "reconciliation was cancelled before this target was repaired",
				Severity:    SeverityWarning,
			})
			continue
		}
		t := entry.Targets[tag]
		if !unreachable[tag] && !versionChanged && !catalog.HasPlaceholder(t.URL) {
			continue
		}
		nt, rerr := d.repairTarget(ctx, entry, tag, t, canonical, matches)
		if rerr != nil {
			d.logger.Warn("target repair failed", "entry", name, "platform", tag, "kind", rerr.Kind, "error", rerr)
			issues = append(issues, rerr.issue(SeverityError))
			continue
		}
		updated.Targets[tag] = nt
		out.Repaired = append(out.Repaired, tag)
	}

	if len(out.Repaired) > 0 {
		if len(issues) == 0 {
			updated.Version = canonical
		}
		if err := d.store.Write(name, updated); err != nil {
			kind := KindWriteConflict
			msg := "persisting repaired entry failed"
			if errors.Is(err, catalog.ErrWriteConflict) {
				msg = "entry changed on disk since it was read"
			}
			rerr := &ReconcileError{Kind: kind, Message: msg, Err: err}
			out.Status = StatusFailed
			out.Repaired = nil
			out.Issues = append(issues, rerr.issue(SeverityError))
			d.notifier.Report(name, out.Status, out.Issues)
			return out, nil
		}
	}

	if len(issues) > 0 {
		out.Status = StatusNeedsManualReview
		out.Issues = issues
	} else {
		out.Status = StatusRepaired
	}
	d.notifier.Report(name, out.Status, out.Issues)
	return out, nil
}

// detectVersion finds the currently published raw version token, trying
// the entry's checkver endpoint first and falling back to the newest
// upstream release tag.
func (d *Driver) detectVersion(ctx context.Context, entry *catalog.Entry) (string, []string, []Issue) {
	res := d.detector.Detect(ctx, entry.Checkver)
	raw := res.Token
	if raw == "" && res.Text != "" {
		if tok, ok := version.Extract(res.Text); ok {
			raw = tok.Raw
		}
	}
	if raw != "" {
		return raw, res.Matches, nil
	}
	if entry.Repo == "" {
		return "", nil, nil
	}
	rel, err := d.releases.Latest(ctx, entry.Repo)
	if err != nil {
		return "", nil, []Issue{{
			Kind:        KindUpstreamUnavailable,
			Title:       "Release lookup failed",
			Description: err.Error(),
			Severity:    SeverityError,
		}}
	}
	if rel == nil {
		return "", nil, nil
	}
	d.logger.Debug("falling back to latest release tag", "entry", entry.Name, "tag", rel.Tag)
	return rel.Tag, nil, nil
}

// repairTarget produces a replacement target at the given version. It
// tries cheap URL substitution first and rebuilds from the upstream
// release only when the substituted URL does not serve content.
func (d *Driver) repairTarget(ctx context.Context, entry *catalog.Entry, tag string, t *catalog.Target, canonical string, matches []string) (*catalog.Target, *ReconcileError) {
	candidate := t.URL
	if catalog.HasPlaceholder(candidate) {
		candidate = catalog.SubstituteURL(candidate, canonical, matches)
	} else if entry.Version != "" {
		candidate = substituteVersion(candidate, entry.Version, canonical)
	}
	if !catalog.HasPlaceholder(candidate) && d.prober.Reachable(ctx, candidate) {
		nt := &catalog.Target{URL: candidate}
		if t.Checksum != "" {
			digest, err := d.checksums.Resolve(ctx, nil, release.Asset{Name: path.Base(candidate), URL: candidate})
			if err != nil {
				return nil, &ReconcileError{Kind: KindChecksumUnavailable, Target: tag, Message: "refreshing checksum after URL substitution", Err: err}
			}
			nt.Checksum = digest
		}
		return nt, nil
	}

	if entry.Repo == "" {
		return nil, &ReconcileError{Kind: KindAssetNotFound, Target: tag, Message: "URL does not serve content and no upstream repository is configured"}
	}
	rel, err := d.releases.Resolve(ctx, entry.Repo, canonical)
	if err != nil {
		return nil, &ReconcileError{Kind: KindUpstreamUnavailable, Target: tag, Message: "release lookup failed", Err: err}
	}
	if rel == nil {
		return nil, &ReconcileError{Kind: KindUpstreamUnavailable, Target: tag, Message: fmt.Sprintf("no release found for version %s", canonical)}
	}
	asset, ok := release.SelectBestAsset(rel.Assets, tag)
	if !ok {
		return nil, &ReconcileError{Kind: KindAssetNotFound, Target: tag, Message: fmt.Sprintf("release %s has no asset for platform %s", rel.Tag, tag)}
	}
	nt := &catalog.Target{URL: asset.URL}
	if t.Checksum != "" {
		digest, err := d.checksums.Resolve(ctx, rel.Assets, asset)
		if err != nil {
			return nil, &ReconcileError{Kind: KindChecksumUnavailable, Target: tag, Message: fmt.Sprintf("resolving checksum for asset %s", asset.Name), Err: err}
		}
		nt.Checksum = digest
	}
	return nt, nil
}

// substituteVersion rewrites occurrences of the old version embedded in
// a URL, covering the common separator spellings vendors use in
// download paths.
func substituteVersion(url, old, new string) string {
	if old == "" || old == new {
		return url
	}
	type pair struct{ from, to string }
	pairs := []pair{
		{old, new},
		{strings.ReplaceAll(old, ".", ""), strings.ReplaceAll(new, ".", "")},
		{strings.ReplaceAll(old, ".", "_"), strings.ReplaceAll(new, ".", "_")},
		{strings.ReplaceAll(old, ".", "-"), strings.ReplaceAll(new, ".", "-")},
	}
	seen := map[string]bool{}
	for _, p := range pairs {
		if p.from == "" || p.from == p.to || seen[p.from] {
			continue
		}
		seen[p.from] = true
		url = strings.ReplaceAll(url, p.from, p.to)
	}
	return url
}
