// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// writeZip creates a ZIP archive at path containing the given name→content
// entries.
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	tmpDir := t.TempDir()
	archiveDir := filepath.Join(tmpDir, "archives")
	extractDir := filepath.Join(tmpDir, "xml")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		t.Fatal(err)
	}

	writeZip(t, filepath.Join(archiveDir, "2021.zip"), map[string]string{
		"2100001.xml": "<rootTag><Award/></rootTag>",
		"2100002.xml": "<rootTag><Award/></rootTag>",
	})
	writeZip(t, filepath.Join(archiveDir, "2022.zip"), map[string]string{
		"2200001.xml": "<rootTag><Award/></rootTag>",
	})
	// Year at the min-year cutoff: excluded.
	writeZip(t, filepath.Join(archiveDir, "2015.zip"), map[string]string{
		"1500001.xml": "<rootTag><Award/></rootTag>",
	})
	// Filename without a parsable year: skipped with a diagnostic.
	writeZip(t, filepath.Join(archiveDir, "readme.zip"), map[string]string{
		"notes.txt": "n/a",
	})

	var out bytes.Buffer
	cfg := types.ArchiveConfig{ArchiveDir: archiveDir, ExtractDir: extractDir, MinYear: 2015}
	result, err := Scan(cfg, &out)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(result.Archives) != 2 {
		t.Fatalf("got %d archives, want 2", len(result.Archives))
	}
	// Newest first.
	if result.Archives[0].Year != 2022 || result.Archives[1].Year != 2021 {
		t.Errorf("year order = %d, %d", result.Archives[0].Year, result.Archives[1].Year)
	}
	if result.Archives[0].XMLFiles != 1 || result.Archives[1].XMLFiles != 2 {
		t.Errorf("xml counts = %d, %d", result.Archives[0].XMLFiles, result.Archives[1].XMLFiles)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
	if result.HasFailures() {
		t.Errorf("unexpected failures: %d", result.Failed)
	}
	if result.Total() != 4 {
		t.Errorf("Total = %d, want 4", result.Total())
	}
	if !strings.Contains(out.String(), "cannot parse year") {
		t.Errorf("missing diagnostic for unparsable filename:\n%s", out.String())
	}

	// Extracted files land under <extract>/<year>/.
	if _, err := os.Stat(filepath.Join(extractDir, "2021", "2100001.xml")); err != nil {
		t.Errorf("extracted file missing: %v", err)
	}
}

func TestScanRejectsEscapingEntries(t *testing.T) {
	tmpDir := t.TempDir()
	archiveDir := filepath.Join(tmpDir, "archives")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeZip(t, filepath.Join(archiveDir, "2020.zip"), map[string]string{
		"../evil.xml": "<x/>",
	})

	var out bytes.Buffer
	cfg := types.ArchiveConfig{
		ArchiveDir: archiveDir,
		ExtractDir: filepath.Join(tmpDir, "xml"),
		MinYear:    2000,
	}
	result, err := Scan(cfg, &out)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "evil.xml")); !os.IsNotExist(err) {
		t.Error("escaping entry was written outside the extraction directory")
	}
}
