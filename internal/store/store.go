// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the pipeline's tables: CSV files for analyst
// consumption and a SQLite snapshot for fast reload between stages.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// Store manages the SQLite snapshot database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the snapshot database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS grants (%s)`, columnDefs(GrantColumns)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS investigators (%s, "Year" TEXT)`, columnDefs(InvestigatorColumns)),
		`CREATE TABLE IF NOT EXISTS summaries (
			Year INTEGER PRIMARY KEY,
			GrantRows INTEGER,
			InvestigatorRows INTEGER,
			ErrorCount INTEGER,
			ParsedAt TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_grants_year ON grants(Year)`,
		`CREATE INDEX IF NOT EXISTS idx_investigators_award ON investigators(AwardID)`,
		`CREATE INDEX IF NOT EXISTS idx_investigators_year ON investigators(Year)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// columnDefs renders quoted TEXT column definitions for a fixed schema.
// Typed values are reconstructed on load; SQLite's affinity rules make
// TEXT storage lossless for this projection.
func columnDefs(cols []string) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = fmt.Sprintf("%q TEXT", c)
	}
	return strings.Join(defs, ", ")
}

// SaveYear replaces one year's grant and investigator rows inside a single
// transaction. Re-running a year never duplicates rows.
func (s *Store) SaveYear(ctx context.Context, year int, grants []types.GrantRecord, investigators []types.InvestigatorRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Both tables clear by Year so an award that drops out of a re-run
	// takes its investigator rows with it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM grants WHERE Year = ?`, year); err != nil {
		return fmt.Errorf("clearing grants for %d: %w", year, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM investigators WHERE Year = ?`, year); err != nil {
		return fmt.Errorf("clearing investigators for %d: %w", year, err)
	}

	if err := insertRows(ctx, tx, "grants", GrantColumns, len(grants), func(i int) []string {
		return grantRow(grants[i])
	}); err != nil {
		return err
	}
	yearValue := strconv.Itoa(year)
	investigatorCols := append(append([]string{}, InvestigatorColumns...), "Year")
	if err := insertRows(ctx, tx, "investigators", investigatorCols, len(investigators), func(i int) []string {
		return append(investigatorRow(investigators[i]), yearValue)
	}); err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceGrants overwrites the entire grants table. The enrichment and
// reconciliation stages use this after a whole-table transform.
func (s *Store) ReplaceGrants(ctx context.Context, grants []types.GrantRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM grants`); err != nil {
		return fmt.Errorf("clearing grants: %w", err)
	}
	if err := insertRows(ctx, tx, "grants", GrantColumns, len(grants), func(i int) []string {
		return grantRow(grants[i])
	}); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, cols []string, n int, row func(int) []string) error {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		table,
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing %s insert: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		values := row(i)
		args := make([]any, len(values))
		for j, v := range values {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting %s row %d: %w", table, i, err)
		}
	}
	return nil
}

// LoadGrants reads all grant rows, ordered by year then award ID.
func (s *Store) LoadGrants(ctx context.Context) ([]types.GrantRecord, error) {
	rows, err := s.queryAll(ctx, "grants", GrantColumns, `ORDER BY CAST(Year AS INTEGER), AwardID`)
	if err != nil {
		return nil, err
	}

	grants := make([]types.GrantRecord, 0, len(rows))
	for _, row := range rows {
		g, err := grantFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decoding grant row: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, nil
}

// LoadInvestigators reads all investigator rows, ordered by award then
// ordinal position.
func (s *Store) LoadInvestigators(ctx context.Context) ([]types.InvestigatorRecord, error) {
	rows, err := s.queryAll(ctx, "investigators", InvestigatorColumns, `ORDER BY AwardID, CAST(PI_Number AS INTEGER)`)
	if err != nil {
		return nil, err
	}

	investigators := make([]types.InvestigatorRecord, 0, len(rows))
	for _, row := range rows {
		inv, err := investigatorFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decoding investigator row: %w", err)
		}
		investigators = append(investigators, inv)
	}
	return investigators, nil
}

func (s *Store) queryAll(ctx context.Context, table string, cols []string, orderBy string) ([][]string, error) {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s %s`, strings.Join(quoted, ", "), table, orderBy)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		values := make([]string, len(cols))
		dests := make([]any, len(cols))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		out = append(out, values)
	}
	return out, rows.Err()
}

// SaveSummary upserts one year's processing summary.
func (s *Store) SaveSummary(ctx context.Context, summary types.YearSummary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (Year, GrantRows, InvestigatorRows, ErrorCount, ParsedAt)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(Year) DO UPDATE SET
			GrantRows=excluded.GrantRows, InvestigatorRows=excluded.InvestigatorRows,
			ErrorCount=excluded.ErrorCount, ParsedAt=excluded.ParsedAt`,
		summary.Year, summary.GrantRows, summary.InvestigatorRows,
		summary.ErrorCount, summary.ParsedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving summary for %d: %w", summary.Year, err)
	}
	return nil
}

// LoadSummaries reads all per-year summaries, newest year first.
func (s *Store) LoadSummaries(ctx context.Context) ([]types.YearSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT Year, GrantRows, InvestigatorRows, ErrorCount, ParsedAt
		 FROM summaries ORDER BY Year DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var summaries []types.YearSummary
	for rows.Next() {
		var s types.YearSummary
		var parsedAt string
		if err := rows.Scan(&s.Year, &s.GrantRows, &s.InvestigatorRows, &s.ErrorCount, &parsedAt); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, parsedAt); err == nil {
			s.ParsedAt = t
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
