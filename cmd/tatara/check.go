package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tatara-dev/tatara/internal/catalog"
	"github.com/tatara-dev/tatara/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check <entry>...",
	Short: "Report drift without repairing anything",
	Long: `Check probes each entry's download targets and detects the currently
published version, then reports what reconcile would repair. Nothing
is written.

Examples:
  tatara check ripgrep
  tatara check ripgrep fd`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := buildCollaborators()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitGeneral)
		}

		ctx := cmd.Context()
		exit := ExitSuccess
		for _, name := range args {
			entry, err := c.store.Read(name)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					fmt.Fprintf(os.Stderr, "Error: entry %q not found in %s\n", name, cfg.BucketDir)
					exit = worse(exit, ExitEntryNotFound)
					continue
				}
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exit = worse(exit, ExitGeneral)
				continue
			}

			fmt.Printf("%s (%s)\n", entry.Name, entry.Version)
			drift := false
			for _, tag := range catalog.SortedTags(entry.Targets) {
				t := entry.Targets[tag]
				if catalog.HasPlaceholder(t.URL) {
					fmt.Printf("  %s: templated, skipped\n", tag)
					continue
				}
				if c.prober.Reachable(ctx, t.URL) {
					fmt.Printf("  %s: reachable\n", tag)
				} else {
					drift = true
					fmt.Printf("  %s: UNREACHABLE %s\n", tag, t.URL)
				}
			}

			raw := detectRaw(cmd, c, entry)
			switch {
			case raw == "":
				fmt.Println("  version: detection unavailable")
			case !version.Plausible(stripTagPrefix(raw)):
				fmt.Printf("  version: detected token %q rejected\n", raw)
				exit = worse(exit, ExitReconcileFailed)
			default:
				canonical := raw
				if !entry.VersionConfig.Verbatim {
					canonical = version.Canonicalize(raw, entry.KnownURLs())
				}
				if canonical == entry.Version {
					fmt.Printf("  version: %s up to date\n", canonical)
				} else {
					drift = true
					fmt.Printf("  version: %s -> %s (drift)\n", entry.Version, canonical)
				}
			}
			if drift {
				exit = worse(exit, ExitNeedsReview)
			}
		}
		if exit != ExitSuccess {
			os.Exit(exit)
		}
	},
}

// detectRaw mirrors the driver's detection order: checkver endpoint,
// free-text extraction, then the newest upstream release tag.
func detectRaw(cmd *cobra.Command, c *collaborators, entry *catalog.Entry) string {
	ctx := cmd.Context()
	res := c.detector.Detect(ctx, entry.Checkver)
	raw := res.Token
	if raw == "" && res.Text != "" {
		if tok, ok := version.Extract(res.Text); ok {
			raw = tok.Raw
		}
	}
	if raw == "" && entry.Repo != "" {
		if rel, err := c.releases.Latest(ctx, entry.Repo); err == nil && rel != nil {
			raw = rel.Tag
		}
	}
	return raw
}

func stripTagPrefix(raw string) string {
	if rest, ok := strings.CutPrefix(raw, "v"); ok {
		return strings.TrimPrefix(rest, ".")
	}
	return raw
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
