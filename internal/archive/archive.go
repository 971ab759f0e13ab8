// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive discovers yearly award ZIP archives and extracts their
// XML documents into per-year directories.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// ScanResult holds the outcome of an archive scan.
type ScanResult struct {
	Archives []types.ArchiveInfo
	Skipped  int
	Failed   int
}

// Total returns the number of ZIP files considered.
func (r ScanResult) Total() int {
	return len(r.Archives) + r.Skipped + r.Failed
}

// HasFailures reports whether any archive failed to extract.
func (r ScanResult) HasFailures() bool {
	return r.Failed > 0
}

// Scan walks cfg.ArchiveDir for *.zip files, parses the year from each
// filename, and extracts archives for years above cfg.MinYear into
// cfg.ExtractDir/<year>/. The year must parse from the first
// dot-delimited segment of the filename; archives with non-parsing names
// are skipped with a diagnostic, as are archives at or below MinYear.
// Results are ordered by year, newest first.
func Scan(cfg types.ArchiveConfig, w io.Writer) (ScanResult, error) {
	if err := os.MkdirAll(cfg.ExtractDir, 0o755); err != nil {
		return ScanResult{}, fmt.Errorf("creating extract directory: %w", err)
	}

	var zips []string
	err := filepath.WalkDir(cfg.ArchiveDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".zip") {
			zips = append(zips, path)
		}
		return nil
	})
	if err != nil {
		return ScanResult{}, fmt.Errorf("walking archive directory %s: %w", cfg.ArchiveDir, err)
	}
	sort.Strings(zips)

	var result ScanResult
	for _, path := range zips {
		fmt.Fprintf(w, "processing %s\n", path)

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		year, err := strconv.Atoi(strings.SplitN(stem, ".", 2)[0])
		if err != nil {
			fmt.Fprintf(w, "skipped %s: cannot parse year from filename\n", path)
			result.Skipped++
			continue
		}
		if year <= cfg.MinYear {
			result.Skipped++
			continue
		}

		yearDir := filepath.Join(cfg.ExtractDir, strconv.Itoa(year))
		if err := extractZip(path, yearDir); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			result.Failed++
			continue
		}

		count, err := countXMLFiles(yearDir)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			result.Failed++
			continue
		}

		result.Archives = append(result.Archives, types.ArchiveInfo{
			Path:     path,
			Year:     year,
			XMLFiles: count,
		})
	}

	sort.Slice(result.Archives, func(i, j int) bool {
		return result.Archives[i].Year > result.Archives[j].Year
	})

	return result, nil
}

// extractZip unpacks src into destDir, refusing entries that escape it.
func extractZip(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("entry %q escapes extraction directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// countXMLFiles counts *.xml files under dir, recursively.
func countXMLFiles(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
			count++
		}
		return nil
	})
	return count, err
}
