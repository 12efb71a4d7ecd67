package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tatara-dev/tatara/internal/catalog"
	"github.com/tatara-dev/tatara/internal/reconcile"
)

var reconcileAll bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [entry...]",
	Short: "Detect and repair drifted catalog entries",
	Long: `Reconcile checks each entry's download targets against upstream and
repairs whatever drifted: it detects the currently published version,
rewrites stale download URLs, and refreshes checksums.

Repairs are per-target. If one platform's target cannot be fixed, the
others are still persisted and the entry is flagged for manual review.

Examples:
  tatara reconcile ripgrep
  tatara reconcile ripgrep fd bat
  tatara reconcile --all`,
	Run: func(cmd *cobra.Command, args []string) {
		driver, c, err := buildDriver()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitGeneral)
		}

		names := args
		if reconcileAll {
			names, err = c.store.List()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(ExitGeneral)
			}
		}
		if len(names) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no entries given; name entries or pass --all")
			os.Exit(ExitUsage)
		}

		ctx := cmd.Context()
		exit := ExitSuccess
		for _, name := range names {
			out, err := driver.Reconcile(ctx, name)
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

			fmt.Println(out.Summary())
			for _, issue := range out.Issues {
				fmt.Printf("  [%s] %s: %s\n", issue.Severity, issue.Title, issue.Description)
			}
			switch out.Status {
			case reconcile.StatusNeedsManualReview:
				exit = worse(exit, ExitNeedsReview)
			case reconcile.StatusFailed:
				exit = worse(exit, ExitReconcileFailed)
			}
		}
		if exit != ExitSuccess {
			os.Exit(exit)
		}
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileAll, "all", false, "reconcile every entry in the bucket")
	rootCmd.AddCommand(reconcileCmd)
}
