package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tatara-dev/tatara/internal/config"
	"github.com/tatara-dev/tatara/internal/log"
)

var (
	// Version is the current version of tatara
	Version = "0.1.0"

	flagConfig  string
	flagBucket  string
	flagVerbose bool
	flagDebug   bool
	flagQuiet   bool

	cfg    *config.Config
	logger log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tatara",
	Short: "Keep a package catalog's versions, URLs, and checksums honest",
	Long: `tatara watches the entries of a curated package catalog and repairs
the ones that drifted: versions that fell behind upstream, download
URLs that stopped serving content, checksums that no longer match
the published bytes.

Entries live as JSON files in a bucket directory. tatara only ever
rewrites targets it could verify; anything it cannot fix is reported
for manual review instead.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if flagConfig != "" {
			cfg, err = config.LoadFile(flagConfig)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		if flagBucket != "" {
			cfg.BucketDir = flagBucket
		}
		if cfg.BucketDir == "" {
			home, err := config.Home()
			if err != nil {
				return err
			}
			cfg.BucketDir = filepath.Join(home, "bucket")
		}

		level := slog.LevelWarn
		switch {
		case flagQuiet:
			level = slog.LevelError
		case flagDebug:
			level = slog.LevelDebug
		case flagVerbose:
			level = slog.LevelInfo
		}
		logger = log.NewText(os.Stderr, level)
		log.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default $TATARA_HOME/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagBucket, "bucket", "b", "", "bucket directory holding catalog entries")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable informational logging")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "log errors only")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneral)
	}
}
