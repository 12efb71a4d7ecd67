package main

import (
	"fmt"

	"github.com/tatara-dev/tatara/internal/catalog"
	"github.com/tatara-dev/tatara/internal/detect"
	"github.com/tatara-dev/tatara/internal/httputil"
	"github.com/tatara-dev/tatara/internal/reconcile"
	"github.com/tatara-dev/tatara/internal/release"
)

// collaborators bundles the pieces commands assemble from config.
type collaborators struct {
	store    *catalog.FileStore
	detector *detect.Detector
	releases *release.Resolver
	sums     *release.ChecksumResolver
	prober   *httputil.Prober
}

func buildCollaborators() (*collaborators, error) {
	store, err := catalog.NewFileStore(cfg.BucketDir)
	if err != nil {
		return nil, fmt.Errorf("opening bucket %s: %w", cfg.BucketDir, err)
	}
	api := release.NewGitHubAPI(cfg.GitHubToken)
	return &collaborators{
		store:    store,
		detector: detect.New(cfg.GetAPITimeout(), detect.WithLogger(logger)),
		releases: release.NewResolver(api, release.WithResolverLogger(logger)),
		sums:     release.NewChecksumResolver(cfg.GetAPITimeout(), release.WithChecksumLogger(logger)),
		prober:   httputil.NewProber(cfg.GetProbeTimeout(), httputil.WithProbeLogger(logger)),
	}, nil
}

func buildDriver() (*reconcile.Driver, *collaborators, error) {
	c, err := buildCollaborators()
	if err != nil {
		return nil, nil, err
	}
	driver := reconcile.New(c.store, c.detector, c.releases, c.sums, c.prober,
		reconcile.WithLogger(logger))
	return driver, c, nil
}
