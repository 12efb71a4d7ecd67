// Package release resolves upstream releases and their downloadable
// assets: finding the release that matches a target version, picking
// the best asset for a platform slot, and obtaining a trusted checksum
// for it. Everything here is read-only with respect to the catalog.
package release

import "context"

// Asset is one downloadable file attached to a release.
type Asset struct {
	// Name is the file name as published.
	Name string

	// URL is the direct download URL.
	URL string

	// Size is the byte size reported by the API (0 if unknown).
	Size int64

	// Digest is an API-provided content digest ("sha256:<hex>"),
	// empty when the host doesn't publish one.
	Digest string
}

// Release is an upstream tagged publication.
type Release struct {
	Tag        string
	Name       string
	Prerelease bool
	Draft      bool
	Assets     []Asset
}

// API is the upstream release-API collaborator (GitHub-shaped; GitLab
// and Gitea expose the same two operations). Implementations return
// (nil, nil) when a tag simply does not exist and an error only for
// transport or API failures.
type API interface {
	GetReleaseByTag(ctx context.Context, repo, tag string) (*Release, error)
	ListRecentReleases(ctx context.Context, repo string, n int) ([]*Release, error)
}
