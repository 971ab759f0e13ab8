// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SeverinoCenter/nsf-award-extract/internal/enrich"
	"github.com/SeverinoCenter/nsf-award-extract/internal/store"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add SBIR/STTR and I-Corps feature columns to the grant table",
	Long: `Enrich scans each award title for SBIR, STTR, and I-Corps program
markers, including phase designations, and sets the corresponding flag
columns. When a participation CSV is supplied its per-award I-Corps
counts are joined in as well; grants absent from the file get zero
counts.

The enriched table replaces the grant table in the SQLite snapshot and
is written to the CSV directory.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().String("snapshot", "output/snapshots/awards.db", "SQLite snapshot path")
	enrichCmd.Flags().String("csv-dir", "output/csv", "directory for the enriched grant CSV")
	enrichCmd.Flags().String("title-field", "AwardTitle", "grant field scanned for program markers")
	enrichCmd.Flags().String("participation", "", "CSV of I-Corps participation counts keyed by AwardID")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	snapshotPath := setting(cmd, "snapshot", "ingest.snapshot_path")
	csvDir := setting(cmd, "csv-dir", "ingest.csv_dir")
	titleField := setting(cmd, "title-field", "enrich.title_field")
	participationPath := setting(cmd, "participation", "enrich.participation_path")

	db, err := store.Open(snapshotPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	grants, err := db.LoadGrants(ctx)
	if err != nil {
		return err
	}
	if len(grants) == 0 {
		return fmt.Errorf("snapshot %s holds no grants; run ingest first", snapshotPath)
	}

	enriched, err := enrich.TitleFlags(grants, titleField)
	if err != nil {
		return err
	}

	if participationPath != "" {
		table, err := store.ReadTableCSV(participationPath)
		if err != nil {
			return err
		}
		parts, err := enrich.ParticipationFromTable(table)
		if err != nil {
			return err
		}
		enriched = enrich.JoinParticipation(enriched, parts)
		fmt.Fprintf(os.Stdout, "joined I-Corps participation for %d award(s)\n", len(parts))
	}

	if err := db.ReplaceGrants(ctx, enriched); err != nil {
		return err
	}
	if err := store.WriteGrantsCSV(filepath.Join(csvDir, "grants_enriched.csv"), enriched); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Enriched %d grant(s)\n", len(enriched))
	return nil
}
