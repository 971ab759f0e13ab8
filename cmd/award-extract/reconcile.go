// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SeverinoCenter/nsf-award-extract/internal/reconcile"
	"github.com/SeverinoCenter/nsf-award-extract/internal/store"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Fill missing institution identity fields by group consensus",
	Long: `Reconcile fills the corrected institution columns. Each imputation
pass groups grants by a key field and writes the most frequent value of
each target field into rows where it is missing. Passes run in the
configured order, so later groupings only touch what earlier ones left
empty. A manual overrides file applies authoritative city and state
corrections last.

The reconciled table replaces the grant table in the SQLite snapshot
and is written to the CSV directory.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().String("snapshot", "output/snapshots/awards.db", "SQLite snapshot path")
	reconcileCmd.Flags().String("csv-dir", "output/csv", "directory for the reconciled grant CSV")
	reconcileCmd.Flags().String("group-keys", "InstitutionUEI,InstitutionName", "comma-separated imputation passes, in order")
	reconcileCmd.Flags().String("target-fields", "InstitutionName,InstitutionCity,InstitutionState,InstitutionZip,InstitutionUEI", "comma-separated fields to impute")
	reconcileCmd.Flags().String("overrides", "", "YAML file of manual city/state corrections")

	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	snapshotPath := setting(cmd, "snapshot", "ingest.snapshot_path")
	csvDir := setting(cmd, "csv-dir", "ingest.csv_dir")
	overridesPath := setting(cmd, "overrides", "reconcile.overrides_path")

	groupKeys := splitList(setting(cmd, "group-keys", ""))
	if !cmd.Flags().Changed("group-keys") && viper.IsSet("reconcile.group_keys") {
		groupKeys = viper.GetStringSlice("reconcile.group_keys")
	}
	targets := splitList(setting(cmd, "target-fields", ""))
	if !cmd.Flags().Changed("target-fields") && viper.IsSet("reconcile.target_fields") {
		targets = viper.GetStringSlice("reconcile.target_fields")
	}

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

	for _, key := range groupKeys {
		grants, err = reconcile.ImputeByGroup(grants, key, targets)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "imputed by %s\n", key)
	}

	if overridesPath != "" {
		overrides, err := reconcile.LoadOverrides(overridesPath)
		if err != nil {
			return err
		}
		grants = reconcile.ApplyOverrides(grants, overrides)
		fmt.Fprintf(os.Stdout, "applied %d manual override(s)\n", len(overrides))
	}

	if err := db.ReplaceGrants(ctx, grants); err != nil {
		return err
	}
	if err := store.WriteGrantsCSV(filepath.Join(csvDir, "grants_reconciled.csv"), grants); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Reconciled %d grant(s)\n", len(grants))
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
