// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/SeverinoCenter/nsf-award-extract/internal/store"
	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// CSVSink writes each year's tables as CSV files in Dir before delegating
// to Next. Grants land in {year}.csv and investigators in
// investigator_{year}.csv, so a single year can be inspected or reloaded
// without touching the snapshot.
type CSVSink struct {
	Dir  string
	Next Sink
}

func (c CSVSink) SaveYear(ctx context.Context, year int, grants []types.GrantRecord, investigators []types.InvestigatorRecord) error {
	grantsPath := filepath.Join(c.Dir, fmt.Sprintf("%d.csv", year))
	if err := store.WriteGrantsCSV(grantsPath, grants); err != nil {
		return err
	}
	investigatorsPath := filepath.Join(c.Dir, fmt.Sprintf("investigator_%d.csv", year))
	if err := store.WriteInvestigatorsCSV(investigatorsPath, investigators); err != nil {
		return err
	}
	if c.Next != nil {
		return c.Next.SaveYear(ctx, year, grants, investigators)
	}
	return nil
}

func (c CSVSink) SaveSummary(ctx context.Context, summary types.YearSummary) error {
	if c.Next != nil {
		return c.Next.SaveSummary(ctx, summary)
	}
	return nil
}
