// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match finds, for each query row, the closest reference row by
// cosine similarity over text embeddings. Both tables must fit in memory:
// the comparison is an exhaustive scan of every reference vector per
// query row, with no index structure.
package match

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/SeverinoCenter/nsf-award-extract/internal/store"
	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

const (
	// ScoreColumn carries the cosine similarity of each result row.
	ScoreColumn = "Similarity_Score"

	// MatchColumn is 1 when the similarity clears the threshold, else empty.
	MatchColumn = "Match"

	defaultBatchSize = 100
	defaultThreshold = 0.99
)

// Result holds a completed matching run.
type Result struct {
	Table     types.Table
	Processed int
	Matched   int
	Failed    int
}

// Run matches every query row (up to cfg.MaxRecords) against the
// reference table. Reference texts are encoded once up front; query rows
// are then processed strictly sequentially. A row whose encoding fails is
// logged and omitted; one bad name never aborts the batch. Every
// cfg.BatchSize rows a progress line is emitted and, when
// cfg.CheckpointDir is set, a partial result CSV is written.
//
// Result columns are the configured query return columns, then the
// reference return columns of the matched row, then Similarity_Score and
// Match. Ties at the maximum similarity resolve to the first-occurring
// reference row. Missing configured columns are configuration errors and
// fail the run before any encoding happens.
func Run(ctx context.Context, enc Encoder, query, reference types.Table, cfg types.MatchConfig, w io.Writer) (Result, error) {
	queryIdx, err := query.ColumnIndex(cfg.QueryColumn)
	if err != nil {
		return Result{}, fmt.Errorf("query table: %w", err)
	}
	refIdx, err := reference.ColumnIndex(cfg.ReferenceColumn)
	if err != nil {
		return Result{}, fmt.Errorf("reference table: %w", err)
	}
	queryReturn, err := columnIndices(&query, cfg.QueryReturn)
	if err != nil {
		return Result{}, fmt.Errorf("query table: %w", err)
	}
	refReturn, err := columnIndices(&reference, cfg.ReferenceReturn)
	if err != nil {
		return Result{}, fmt.Errorf("reference table: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	threshold := cfg.MatchThreshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	refTexts := make([]string, reference.Len())
	for i := range reference.Rows {
		refTexts[i] = reference.Cell(i, refIdx)
	}
	refVectors, err := enc.Encode(ctx, refTexts)
	if err != nil {
		return Result{}, fmt.Errorf("encoding reference table: %w", err)
	}

	columns := append(append([]string{}, cfg.QueryReturn...), cfg.ReferenceReturn...)
	columns = append(columns, ScoreColumn, MatchColumn)
	out := types.Table{Columns: columns}

	result := Result{}
	for i := range query.Rows {
		if cfg.MaxRecords > 0 && result.Processed >= cfg.MaxRecords {
			break
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		result.Processed++

		text := query.Cell(i, queryIdx)
		vectors, err := enc.Encode(ctx, []string{text})
		if err != nil {
			fmt.Fprintf(w, "failed  row %d (%q): %v\n", i+1, text, err)
			result.Failed++
			continue
		}

		best, score := closest(vectors[0], refVectors)
		if best < 0 {
			fmt.Fprintf(w, "failed  row %d (%q): empty reference table\n", i+1, text)
			result.Failed++
			continue
		}

		row := make([]string, 0, len(columns))
		for _, qi := range queryReturn {
			row = append(row, query.Cell(i, qi))
		}
		for _, ri := range refReturn {
			row = append(row, reference.Cell(best, ri))
		}
		row = append(row, strconv.FormatFloat(score, 'f', -1, 64))
		if score >= threshold {
			row = append(row, "1")
			result.Matched++
		} else {
			row = append(row, "")
		}
		out.Rows = append(out.Rows, row)

		if result.Processed%batchSize == 0 {
			fmt.Fprintf(w, "processed %d records, saving progress\n", result.Processed)
			if cfg.CheckpointDir != "" {
				if err := writeCheckpoint(cfg.CheckpointDir, result.Processed, out); err != nil {
					fmt.Fprintf(w, "warning: checkpoint write failed: %v\n", err)
				}
			}
		}
	}

	result.Table = out
	return result, nil
}

// closest returns the index of the reference vector with the highest
// similarity to v, and that similarity. Ties resolve to the first maximum.
// Returns -1 when there are no reference vectors.
func closest(v []float32, refs [][]float32) (int, float64) {
	best := -1
	bestScore := -1.0
	for i, ref := range refs {
		if s := Cosine(v, ref); s > bestScore {
			best = i
			bestScore = s
		}
	}
	return best, bestScore
}

func columnIndices(t *types.Table, names []string) ([]int, error) {
	indices := make([]int, 0, len(names))
	for _, name := range names {
		idx, err := t.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func writeCheckpoint(dir string, processed int, t types.Table) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("progress_%d.csv", processed))
	return store.WriteTableCSV(path, t)
}
