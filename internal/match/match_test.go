// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// stubEncoder maps each text to a fixed vector. Unknown texts fail,
// standing in for a per-row lookup failure.
type stubEncoder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			return nil, fmt.Errorf("no embedding for %q", t)
		}
		out[i] = v
	}
	return out, nil
}

func referenceTable() types.Table {
	return types.Table{
		Columns: []string{"INSTNM", "AUTM_ID"},
		Rows: [][]string{
			{"Rensselaer Polytechnic Institute", "R-001"},
			{"University of California San Diego", "U-042"},
		},
	}
}

func matchConfig() types.MatchConfig {
	return types.MatchConfig{
		QueryColumn:     "Institution_Name_Corrected",
		ReferenceColumn: "INSTNM",
		QueryReturn:     []string{"Institution_Name_Corrected", "Institution_OrgUEINum_Corrected"},
		ReferenceReturn: []string{"INSTNM", "AUTM_ID"},
		BatchSize:       100,
	}
}

func queryTable(names ...string) types.Table {
	t := types.Table{Columns: []string{"Institution_Name_Corrected", "Institution_OrgUEINum_Corrected"}}
	for i, n := range names {
		t.Rows = append(t.Rows, []string{n, fmt.Sprintf("UEI%03d", i)})
	}
	return t
}

func TestRunExactMatch(t *testing.T) {
	enc := &stubEncoder{vectors: map[string][]float32{
		"Rensselaer Polytechnic Institute":   {1, 0},
		"University of California San Diego": {0, 1},
	}}

	query := queryTable("Rensselaer Polytechnic Institute")
	var out bytes.Buffer
	result, err := Run(context.Background(), enc, query, referenceTable(), matchConfig(), &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Table.Len() != 1 {
		t.Fatalf("got %d result rows, want 1", result.Table.Len())
	}
	row := result.Table.Rows[0]
	// query returns, reference returns, score, match flag
	want := []string{"Rensselaer Polytechnic Institute", "UEI000", "Rensselaer Polytechnic Institute", "R-001", "1", "1"}
	for i, cell := range want {
		if row[i] != cell {
			t.Errorf("column %d = %q, want %q", i, row[i], cell)
		}
	}
	if result.Matched != 1 {
		t.Errorf("Matched = %d, want 1", result.Matched)
	}
}

func TestRunBelowThresholdHasEmptyMatch(t *testing.T) {
	enc := &stubEncoder{vectors: map[string][]float32{
		"Rensselaer Polytechnic Institute":   {1, 0},
		"University of California San Diego": {0, 1},
		"Rensselaer Polytechnic":             {0.9, 0.4},
	}}

	query := queryTable("Rensselaer Polytechnic")
	var out bytes.Buffer
	result, err := Run(context.Background(), enc, query, referenceTable(), matchConfig(), &out)
	if err != nil {
		t.Fatal(err)
	}

	row := result.Table.Rows[0]
	matchIdx := len(row) - 1
	if row[matchIdx] != "" {
		t.Errorf("Match flag = %q, want empty", row[matchIdx])
	}
	// Still matched to the closest reference row.
	if row[2] != "Rensselaer Polytechnic Institute" {
		t.Errorf("closest reference = %q", row[2])
	}
	if result.Matched != 0 {
		t.Errorf("Matched = %d, want 0", result.Matched)
	}
}

func TestRunTieBreaksToFirstReference(t *testing.T) {
	// Both reference rows embed identically: the first occurring one wins.
	enc := &stubEncoder{vectors: map[string][]float32{
		"Rensselaer Polytechnic Institute":   {1, 0},
		"University of California San Diego": {1, 0},
	}}

	query := queryTable("Rensselaer Polytechnic Institute")
	var out bytes.Buffer
	result, err := Run(context.Background(), enc, query, referenceTable(), matchConfig(), &out)
	if err != nil {
		t.Fatal(err)
	}

	if got := result.Table.Rows[0][3]; got != "R-001" {
		t.Errorf("tie resolved to %q, want first reference R-001", got)
	}
}

func TestRunSkipsFailedRows(t *testing.T) {
	enc := &stubEncoder{vectors: map[string][]float32{
		"Rensselaer Polytechnic Institute":   {1, 0},
		"University of California San Diego": {0, 1},
	}}

	query := queryTable("Rensselaer Polytechnic Institute", "Unknown College", "University of California San Diego")
	var out bytes.Buffer
	result, err := Run(context.Background(), enc, query, referenceTable(), matchConfig(), &out)
	if err != nil {
		t.Fatalf("a failing row must not abort the batch: %v", err)
	}

	if result.Table.Len() != 2 {
		t.Errorf("got %d result rows, want 2 (failed row omitted)", result.Table.Len())
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if !strings.Contains(out.String(), "Unknown College") {
		t.Errorf("failure log missing offending input:\n%s", out.String())
	}
}

func TestRunMaxRecords(t *testing.T) {
	enc := &stubEncoder{vectors: map[string][]float32{
		"Rensselaer Polytechnic Institute":   {1, 0},
		"University of California San Diego": {0, 1},
	}}

	query := queryTable(
		"Rensselaer Polytechnic Institute",
		"University of California San Diego",
		"Rensselaer Polytechnic Institute",
	)
	cfg := matchConfig()
	cfg.MaxRecords = 2

	var out bytes.Buffer
	result, err := Run(context.Background(), enc, query, referenceTable(), cfg, &out)
	if err != nil {
		t.Fatal(err)
	}
	if result.Processed != 2 || result.Table.Len() != 2 {
		t.Errorf("processed %d rows (%d results), want 2", result.Processed, result.Table.Len())
	}
}

func TestRunWritesCheckpoints(t *testing.T) {
	enc := &stubEncoder{vectors: map[string][]float32{
		"Rensselaer Polytechnic Institute":   {1, 0},
		"University of California San Diego": {0, 1},
	}}

	query := queryTable(
		"Rensselaer Polytechnic Institute",
		"University of California San Diego",
		"Rensselaer Polytechnic Institute",
	)
	cfg := matchConfig()
	cfg.BatchSize = 2
	cfg.CheckpointDir = t.TempDir()

	var out bytes.Buffer
	if _, err := Run(context.Background(), enc, query, referenceTable(), cfg, &out); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(cfg.CheckpointDir, "progress_2.csv")); err != nil {
		t.Errorf("checkpoint not written: %v", err)
	}
	if !strings.Contains(out.String(), "processed 2 records") {
		t.Errorf("progress line missing:\n%s", out.String())
	}
}

func TestRunMissingColumnIsFatal(t *testing.T) {
	enc := &stubEncoder{vectors: map[string][]float32{}}
	cfg := matchConfig()
	cfg.QueryColumn = "Nonexistent"

	var out bytes.Buffer
	_, err := Run(context.Background(), enc, queryTable("x"), referenceTable(), cfg, &out)
	if err == nil {
		t.Fatal("expected configuration error for missing query column")
	}
	if enc.calls != 0 {
		t.Errorf("encoding started despite configuration error (%d calls)", enc.calls)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical unit vectors", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite clamps to zero", []float32{1, 0}, []float32{-1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); got != tt.want {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}
