package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubAPI implements API against the GitHub REST API.
type GitHubAPI struct {
	client *github.Client
}

// NewGitHubAPI creates a GitHub-backed release API. A non-empty token
// enables authenticated requests, which carry a far higher rate limit.
func NewGitHubAPI(token string) *GitHubAPI {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	return &GitHubAPI{client: github.NewClient(httpClient)}
}

// NewGitHubAPIWithClient wraps an existing go-github client (used in
// tests against a local fake).
func NewGitHubAPIWithClient(c *github.Client) *GitHubAPI {
	return &GitHubAPI{client: c}
}

// GetReleaseByTag fetches the release tagged exactly tag.
// A missing tag is (nil, nil), not an error.
func (g *GitHubAPI) GetReleaseByTag(ctx context.Context, repo, tag string) (*Release, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	rel, resp, err := g.client.Repositories.GetReleaseByTag(ctx, owner, name, tag)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, classifyGitHubError(err, repo)
	}
	return convertRelease(rel), nil
}

// ListRecentReleases returns up to n recent releases, newest first.
func (g *GitHubAPI) ListRecentReleases(ctx context.Context, repo string, n int) ([]*Release, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > 100 {
		n = 30
	}

	rels, _, err := g.client.Repositories.ListReleases(ctx, owner, name,
		&github.ListOptions{PerPage: n})
	if err != nil {
		return nil, classifyGitHubError(err, repo)
	}

	out := make([]*Release, 0, len(rels))
	for _, r := range rels {
		out = append(out, convertRelease(r))
	}
	return out, nil
}

func convertRelease(r *github.RepositoryRelease) *Release {
	rel := &Release{
		Tag:        r.GetTagName(),
		Name:       r.GetName(),
		Prerelease: r.GetPrerelease(),
		Draft:      r.GetDraft(),
	}
	for _, a := range r.Assets {
		// GitHub's REST payload carries no content digest; Digest
		// stays empty and the checksum resolver finds one itself.
		rel.Assets = append(rel.Assets, Asset{
			Name: a.GetName(),
			URL:  a.GetBrowserDownloadURL(),
			Size: int64(a.GetSize()),
		})
	}
	return rel
}

func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format %q: expected owner/repo", repo)
	}
	return parts[0], parts[1], nil
}

// classifyGitHubError maps go-github failures onto messages the driver
// can surface as issues. Rate limits get a distinct hint because the
// fix (set GITHUB_TOKEN) differs from ordinary network trouble.
func classifyGitHubError(err error, repo string) error {
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return fmt.Errorf("GitHub API rate limit exceeded for %s (resets %s); set GITHUB_TOKEN to raise limits: %w",
			repo, rateLimitErr.Rate.Reset.Time.Format("15:04:05"), err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("GitHub API secondary rate limit for %s: %w", repo, err)
	}
	return fmt.Errorf("GitHub API request for %s failed: %w", repo, err)
}
