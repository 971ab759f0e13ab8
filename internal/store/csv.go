// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// WriteGrantsCSV writes grants to path with the fixed grant schema.
func WriteGrantsCSV(path string, grants []types.GrantRecord) error {
	rows := make([][]string, 0, len(grants))
	for _, g := range grants {
		rows = append(rows, grantRow(g))
	}
	return writeCSV(path, GrantColumns, rows)
}

// WriteInvestigatorsCSV writes investigator records to path.
func WriteInvestigatorsCSV(path string, investigators []types.InvestigatorRecord) error {
	rows := make([][]string, 0, len(investigators))
	for _, inv := range investigators {
		rows = append(rows, investigatorRow(inv))
	}
	return writeCSV(path, InvestigatorColumns, rows)
}

// WriteSummariesCSV writes per-year processing summaries to path.
func WriteSummariesCSV(path string, summaries []types.YearSummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.Year),
			strconv.Itoa(s.GrantRows),
			strconv.Itoa(s.InvestigatorRows),
			strconv.Itoa(s.ErrorCount),
			s.ParsedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeCSV(path, SummaryColumns, rows)
}

// WriteTableCSV writes a generic table to path.
func WriteTableCSV(path string, t types.Table) error {
	return writeCSV(path, t.Columns, t.Rows)
}

// ReadTableCSV reads a CSV with a header row into a generic table.
func ReadTableCSV(path string) (types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return types.Table{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return types.Table{}, fmt.Errorf("reading %s: missing header row", path)
	}

	return types.Table{Columns: records[0], Rows: records[1:]}, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}
