// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SeverinoCenter/nsf-award-extract/internal/match"
	"github.com/SeverinoCenter/nsf-award-extract/internal/store"
	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "award-extract/0.1"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match institution names against a reference list with embeddings",
	Long: `Match embeds the query and reference name columns through an
OpenAI-compatible embeddings API and pairs every query row with its
most similar reference row by cosine similarity. Scores at or above
the match threshold are flagged as confirmed matches.

Progress is checkpointed to partial CSVs as the run advances; the
final result is an XLSX workbook with a MatchResults sheet and a
SearchSpace sheet holding the full reference list.`,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().String("query", "", "CSV of names to match (required)")
	matchCmd.Flags().String("reference", "", "CSV of reference names (required)")
	matchCmd.Flags().String("endpoint", "", "base URL of an OpenAI-compatible embeddings API")
	matchCmd.Flags().String("model", "", "embedding model identifier")
	matchCmd.Flags().String("api-key", "", "API key (default: embedding-api-key secret)")
	matchCmd.Flags().String("query-column", "", "query column holding the text to embed")
	matchCmd.Flags().String("reference-column", "", "reference column holding the text to embed")
	matchCmd.Flags().StringSlice("query-return", nil, "query columns copied into each result row")
	matchCmd.Flags().StringSlice("reference-return", nil, "reference columns copied from the matched row")
	matchCmd.Flags().Int("batch-size", 0, "rows between progress checkpoints (default 100)")
	matchCmd.Flags().Int("max-records", 0, "cap on query rows processed (0 = all)")
	matchCmd.Flags().Float64("threshold", 0, "similarity at or above which a match is confirmed (default 0.99)")
	matchCmd.Flags().String("checkpoint-dir", "output/match", "directory for partial result CSVs")
	matchCmd.Flags().String("output", "output/match/matches.xlsx", "XLSX workbook path")
	matchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := matchConfig(cmd)
	if err != nil {
		return err
	}

	queryPath := setting(cmd, "query", "match.query_path")
	referencePath := setting(cmd, "reference", "match.reference_path")
	if queryPath == "" || referencePath == "" {
		return fmt.Errorf("both --query and --reference CSV paths are required")
	}

	query, err := store.ReadTableCSV(queryPath)
	if err != nil {
		return err
	}
	reference, err := store.ReadTableCSV(referencePath)
	if err != nil {
		return err
	}

	enc := match.NewHTTPEncoder(cfg)
	result, err := match.Run(context.Background(), enc, query, reference, cfg, os.Stdout)
	if err != nil {
		return err
	}

	if err := match.WriteWorkbook(cfg.OutputPath, result.Table, reference); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Matched %d of %d record(s) (%d failed); wrote %s\n",
		result.Matched, result.Processed, result.Failed, cfg.OutputPath)
	if result.Failed > 0 {
		return fmt.Errorf("%d record(s) failed matching", result.Failed)
	}
	return nil
}

func matchConfig(cmd *cobra.Command) (types.MatchConfig, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	if batchSize == 0 {
		batchSize = viper.GetInt("match.batch_size")
	}
	maxRecords, _ := cmd.Flags().GetInt("max-records")
	if maxRecords == 0 {
		maxRecords = viper.GetInt("match.max_records")
	}
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	if threshold == 0 {
		threshold = viper.GetFloat64("match.match_threshold")
	}

	queryReturn, _ := cmd.Flags().GetStringSlice("query-return")
	if len(queryReturn) == 0 {
		queryReturn = viper.GetStringSlice("match.query_return")
	}
	referenceReturn, _ := cmd.Flags().GetStringSlice("reference-return")
	if len(referenceReturn) == 0 {
		referenceReturn = viper.GetStringSlice("match.reference_return")
	}

	apiKey, _ := cmd.Flags().GetString("api-key")

	cfg := types.MatchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Endpoint:        setting(cmd, "endpoint", "match.endpoint"),
		Model:           setting(cmd, "model", "match.model"),
		APIKey:          secretDefault("embedding-api-key", apiKey),
		QueryColumn:     setting(cmd, "query-column", "match.query_column"),
		ReferenceColumn: setting(cmd, "reference-column", "match.reference_column"),
		QueryReturn:     queryReturn,
		ReferenceReturn: referenceReturn,
		BatchSize:       batchSize,
		MaxRecords:      maxRecords,
		MatchThreshold:  threshold,
		CheckpointDir:   setting(cmd, "checkpoint-dir", "match.checkpoint_dir"),
		OutputPath:      setting(cmd, "output", "match.output_path"),
	}

	if cfg.Endpoint == "" {
		return cfg, fmt.Errorf("an embeddings API endpoint is required (--endpoint or match.endpoint)")
	}
	if cfg.QueryColumn == "" || cfg.ReferenceColumn == "" {
		return cfg, fmt.Errorf("both --query-column and --reference-column are required")
	}
	if len(cfg.QueryReturn) == 0 {
		cfg.QueryReturn = []string{cfg.QueryColumn}
	}
	if len(cfg.ReferenceReturn) == 0 {
		cfg.ReferenceReturn = []string{cfg.ReferenceColumn}
	}
	return cfg, nil
}
