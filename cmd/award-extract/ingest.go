// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/SeverinoCenter/nsf-award-extract/internal/corpus"
	"github.com/SeverinoCenter/nsf-award-extract/internal/store"
	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [years...]",
	Short: "Parse extracted XML documents into grant and investigator tables",
	Long: `Ingest parses every award document under the extract directory into
grant and investigator rows, persists them to the SQLite snapshot, and
writes per-year CSV files alongside the combined tables and a per-year
summary. Documents that fail to parse are recorded in an error log and
never abort the year.

With no arguments every year directory is processed, newest first.
Passing explicit years restricts the run to those years.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("extract-dir", "data/xml", "root of per-year XML directories")
	ingestCmd.Flags().String("csv-dir", "output/csv", "directory for combined CSV tables")
	ingestCmd.Flags().String("snapshot", "output/snapshots/awards.db", "SQLite snapshot path")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := types.IngestConfig{
		ExtractDir:   setting(cmd, "extract-dir", "ingest.extract_dir"),
		CSVDir:       setting(cmd, "csv-dir", "ingest.csv_dir"),
		SnapshotPath: setting(cmd, "snapshot", "ingest.snapshot_path"),
	}

	years, err := resolveYears(cfg.ExtractDir, args)
	if err != nil {
		return err
	}
	if len(years) == 0 {
		return fmt.Errorf("no year directories found under %s", cfg.ExtractDir)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SnapshotPath), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	db, err := store.Open(cfg.SnapshotPath)
	if err != nil {
		return err
	}
	defer db.Close()

	sink := corpus.CSVSink{Dir: cfg.CSVDir, Next: db}
	result, err := corpus.ProcessAll(context.Background(), years, cfg.ExtractDir, sink, os.Stdout)
	if err != nil {
		return err
	}

	if err := writeIngestCSVs(cfg.CSVDir, result); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Ingested %d grant(s), %d investigator row(s) across %d year(s); %d document(s) skipped\n",
		len(result.Grants), len(result.Investigators), len(result.Summaries), result.TotalErrors())
	return nil
}

// resolveYears returns the years to process, newest first. Explicit
// arguments are validated as integers; otherwise every numeric
// subdirectory of extractDir is used.
func resolveYears(extractDir string, args []string) ([]int, error) {
	if len(args) > 0 {
		years := make([]int, 0, len(args))
		for _, a := range args {
			y, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("invalid year %q", a)
			}
			years = append(years, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(years)))
		return years, nil
	}

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return nil, fmt.Errorf("reading extract directory %s: %w", extractDir, err)
	}
	var years []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		y, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func writeIngestCSVs(dir string, result corpus.ProcessResult) error {
	if err := store.WriteGrantsCSV(filepath.Join(dir, "grants.csv"), result.Grants); err != nil {
		return err
	}
	if err := store.WriteInvestigatorsCSV(filepath.Join(dir, "investigators.csv"), result.Investigators); err != nil {
		return err
	}
	if err := store.WriteSummariesCSV(filepath.Join(dir, "summaries.csv"), result.Summaries); err != nil {
		return err
	}

	errTable := types.Table{Columns: []string{"Path", "Detail"}}
	for _, e := range result.Errors {
		errTable.Rows = append(errTable.Rows, []string{e.Path, e.Detail})
	}
	return store.WriteTableCSV(filepath.Join(dir, "parse_errors.csv"), errTable)
}
