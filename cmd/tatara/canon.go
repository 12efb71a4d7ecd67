package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tatara-dev/tatara/internal/version"
)

var canonFromText bool

var canonCmd = &cobra.Command{
	Use:   "canon <token> [url...]",
	Short: "Show how a raw version token canonicalizes",
	Long: `Canon runs a raw version token through the validation and
canonicalization pipeline and prints the result. Extra arguments are
treated as known download URLs, which anchor ambiguous rewrites the
same way an entry's recorded URLs do.

With --text the first argument is scanned as free text and the first
version-shaped token found is used.

Examples:
  tatara canon v.0.12.5
  tatara canon mame0282
  tatara canon --text "app: 2.2.3 (stable)"
  tatara canon 10_6b https://example.com/tool_10.6b.zip`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw := args[0]
		urls := args[1:]

		if canonFromText {
			tok, ok := version.Extract(raw)
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: no version-shaped token in %q\n", raw)
				os.Exit(ExitGeneral)
			}
			fmt.Printf("extracted: %s (%s)\n", tok.Raw, tok.Kind)
			raw = tok.Raw
		}

		if !version.Plausible(stripTagPrefix(raw)) {
			fmt.Fprintf(os.Stderr, "Error: %q is not a plausible version token\n", raw)
			os.Exit(ExitGeneral)
		}
		fmt.Println(version.Canonicalize(raw, urls))
	},
}

func init() {
	canonCmd.Flags().BoolVar(&canonFromText, "text", false, "scan the argument as free text and extract a token first")
	rootCmd.AddCommand(canonCmd)
}
