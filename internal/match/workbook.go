// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

const (
	resultsSheet     = "MatchResults"
	searchSpaceSheet = "SearchSpace"
)

// WriteWorkbook writes a matching run to path as a two-sheet XLSX
// workbook: the results on "MatchResults" and the verbatim reference
// table on "SearchSpace".
func WriteWorkbook(path string, results, reference types.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, resultsSheet, results); err != nil {
		return err
	}
	if err := writeSheet(f, searchSpaceSheet, reference); err != nil {
		return err
	}

	// Drop the default sheet so the workbook holds exactly the two tables.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(resultsSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, t types.Table) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}

	for col, header := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return fmt.Errorf("writing header to %s: %w", name, err)
		}
	}

	for row := range t.Rows {
		for col := range t.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, t.Cell(row, col)); err != nil {
				return fmt.Errorf("writing row %d to %s: %w", row+1, name, err)
			}
		}
	}
	return nil
}
