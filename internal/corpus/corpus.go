// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus aggregates per-document extraction over year-partitioned
// XML directories into grant and investigator tables.
package corpus

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SeverinoCenter/nsf-award-extract/internal/extract"
	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// YearResult holds one year's collected tables and error log.
type YearResult struct {
	Year          int
	Grants        []types.GrantRecord
	Investigators []types.InvestigatorRecord
	Errors        []types.CorpusError
}

// CollectYear parses every XML document under rootDir/<year>/ and
// accumulates grant and investigator rows. A document that fails to parse,
// or parses without an AwardID, is recorded in the error log and skipped;
// individual corrupt files never abort the year. The returned tables are
// empty, not nil-checked failures, when no document succeeds, and
// len(Grants) + len(Errors) always equals the number of documents seen.
func CollectYear(rootDir string, year int) (YearResult, error) {
	yearDir := filepath.Join(rootDir, strconv.Itoa(year))

	var files []string
	err := filepath.WalkDir(yearDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return YearResult{}, fmt.Errorf("walking %s: %w", yearDir, err)
	}
	sort.Strings(files)

	result := YearResult{Year: year}
	for _, path := range files {
		grant, investigators, err := extract.ParseAward(path, year)
		if err != nil {
			result.Errors = append(result.Errors, types.CorpusError{Path: path, Detail: err.Error()})
			continue
		}
		if grant.AwardID == "" {
			result.Errors = append(result.Errors, types.CorpusError{Path: path, Detail: "no AwardID in document"})
			continue
		}
		result.Grants = append(result.Grants, *grant)
		result.Investigators = append(result.Investigators, investigators...)
	}

	return result, nil
}

// Sink receives collected tables for persistence. *store.Store satisfies it.
type Sink interface {
	SaveYear(ctx context.Context, year int, grants []types.GrantRecord, investigators []types.InvestigatorRecord) error
	SaveSummary(ctx context.Context, summary types.YearSummary) error
}

// ProcessResult holds the outcome of a multi-year collection run.
type ProcessResult struct {
	Summaries     []types.YearSummary
	Grants        []types.GrantRecord
	Investigators []types.InvestigatorRecord
	Errors        []types.CorpusError
}

// TotalErrors returns the number of documents skipped across all years.
func (r ProcessResult) TotalErrors() int {
	return len(r.Errors)
}

// ProcessAll collects every year in turn, persists each year through the
// sink, and returns the combined tables plus per-year summaries. Years are
// processed newest first when given in that order; the caller controls
// ordering. A year whose directory cannot be read fails the run; document
// level failures are summarised and carried in the error log.
func ProcessAll(ctx context.Context, years []int, rootDir string, sink Sink, w io.Writer) (ProcessResult, error) {
	var result ProcessResult

	for _, year := range years {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		fmt.Fprintf(w, "processing year %d\n", year)

		yr, err := CollectYear(rootDir, year)
		if err != nil {
			return result, err
		}

		summary := types.YearSummary{
			Year:             year,
			GrantRows:        len(yr.Grants),
			InvestigatorRows: len(yr.Investigators),
			ErrorCount:       len(yr.Errors),
			ParsedAt:         time.Now().UTC(),
		}

		if sink != nil {
			if err := sink.SaveYear(ctx, year, yr.Grants, yr.Investigators); err != nil {
				return result, fmt.Errorf("persisting year %d: %w", year, err)
			}
			if err := sink.SaveSummary(ctx, summary); err != nil {
				return result, fmt.Errorf("persisting summary for %d: %w", year, err)
			}
		}

		for _, e := range yr.Errors {
			fmt.Fprintf(w, "  skipped %s: %s\n", e.Path, e.Detail)
		}
		fmt.Fprintf(w, "  %d grants, %d investigators, %d errors\n",
			len(yr.Grants), len(yr.Investigators), len(yr.Errors))

		result.Summaries = append(result.Summaries, summary)
		result.Grants = append(result.Grants, yr.Grants...)
		result.Investigators = append(result.Investigators, yr.Investigators...)
		result.Errors = append(result.Errors, yr.Errors...)
	}

	return result, nil
}
