// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SeverinoCenter/nsf-award-extract/internal/archive"
	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find yearly award ZIP archives and extract their XML documents",
	Long: `Scan walks the archive directory for ZIP files named after their
award year (e.g. 2019.zip), extracts each into a per-year subdirectory
of the extract directory, and reports the XML document count per year.
Archives at or below the minimum year are skipped.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("archive-dir", "data/archives", "directory searched for yearly ZIP archives")
	scanCmd.Flags().String("extract-dir", "data/xml", "directory receiving extracted XML, one subdirectory per year")
	scanCmd.Flags().Int("min-year", 0, "skip archives for years at or below this value")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	minYear, _ := cmd.Flags().GetInt("min-year")
	if !cmd.Flags().Changed("min-year") && viper.IsSet("archive.min_year") {
		minYear = viper.GetInt("archive.min_year")
	}

	cfg := types.ArchiveConfig{
		ArchiveDir: setting(cmd, "archive-dir", "archive.archive_dir"),
		ExtractDir: setting(cmd, "extract-dir", "archive.extract_dir"),
		MinYear:    minYear,
	}

	result, err := archive.Scan(cfg, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Scanned %d archive(s): %d extracted, %d skipped, %d failed\n",
		result.Total(), len(result.Archives), result.Skipped, result.Failed)
	if result.HasFailures() {
		return fmt.Errorf("%d archive(s) failed extraction", result.Failed)
	}
	return nil
}
