package release

import (
	"context"
	"strings"

	"github.com/tatara-dev/tatara/internal/log"
	"github.com/tatara-dev/tatara/internal/version"
)

// recentWindow is how many releases the pattern fallback inspects.
const recentWindow = 30

// Resolver finds the upstream release matching a target version.
// It never mutates persisted state; a version with no matching release
// resolves to nil rather than an error so the driver can classify the
// outcome instead of crashing.
type Resolver struct {
	api    API
	logger log.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger.
func WithResolverLogger(l log.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a Resolver over the given release API.
func NewResolver(api API, opts ...ResolverOption) *Resolver {
	r := &Resolver{api: api, logger: log.NewNoop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveRelease fetches the release tagged exactly targetVersion,
// retrying with a "v" prefix when the bare tag does not exist.
// Returns (nil, nil) when neither tag exists.
func (r *Resolver) ResolveRelease(ctx context.Context, repo, targetVersion string) (*Release, error) {
	rel, err := r.api.GetReleaseByTag(ctx, repo, targetVersion)
	if err != nil || rel != nil {
		return rel, err
	}
	if strings.HasPrefix(targetVersion, "v") {
		return nil, nil
	}
	return r.api.GetReleaseByTag(ctx, repo, "v"+targetVersion)
}

// FindByPattern is the fallback when no exact tag matches: walk recent
// releases and take, in order, an exact tag match, a substring match
// against tag or release name, and finally the newest non-draft
// non-prerelease release. The last resort is logged, since picking
// "whatever is newest" carries lower confidence than a tag match.
func (r *Resolver) FindByPattern(ctx context.Context, repo, targetVersion string) (*Release, error) {
	releases, err := r.api.ListRecentReleases(ctx, repo, recentWindow)
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return nil, nil
	}

	for _, rel := range releases {
		if rel.Tag == targetVersion || rel.Tag == "v"+targetVersion {
			return rel, nil
		}
	}

	for _, rel := range releases {
		if strings.Contains(rel.Tag, targetVersion) || strings.Contains(rel.Name, targetVersion) {
			return rel, nil
		}
	}

	if latest := newestStable(releases); latest != nil {
		r.logger.Warn("no release matched target version, falling back to latest stable",
			"repo", repo, "target", targetVersion, "tag", latest.Tag)
		return latest, nil
	}
	return nil, nil
}

// Resolve combines exact resolution with the pattern fallback.
func (r *Resolver) Resolve(ctx context.Context, repo, targetVersion string) (*Release, error) {
	rel, err := r.ResolveRelease(ctx, repo, targetVersion)
	if err != nil || rel != nil {
		return rel, err
	}
	return r.FindByPattern(ctx, repo, targetVersion)
}

// Latest returns the newest non-draft non-prerelease release, used
// when version detection is unavailable and the release API is the
// only source of truth left.
func (r *Resolver) Latest(ctx context.Context, repo string) (*Release, error) {
	releases, err := r.api.ListRecentReleases(ctx, repo, recentWindow)
	if err != nil {
		return nil, err
	}
	return newestStable(releases), nil
}

// newestStable picks the stable release with the highest version.
// Tags are compared semantically so that a hotfix published out of
// order still loses to the actual newest version; list order breaks
// ties, keeping the result stable for a given API response.
func newestStable(releases []*Release) *Release {
	var best *Release
	for _, rel := range releases {
		if rel.Draft || rel.Prerelease {
			continue
		}
		if best == nil {
			best = rel
			continue
		}
		if version.Compare(version.Canonicalize(rel.Tag, nil), version.Canonicalize(best.Tag, nil)) > 0 {
			best = rel
		}
	}
	return best
}
