//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Pipeline runs scan, ingest, enrich, and reconcile in order using the
// built CLI and the default directory layout. Matching is left as a
// separate step because it needs an embeddings endpoint.
func Pipeline() error {
	mg.Deps(Build)

	for _, stage := range []string{"scan", "ingest", "enrich", "reconcile"} {
		fmt.Printf("==> %s\n", stage)
		cmd := exec.Command(filepath.Join(binDir, binName), stage)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w", stage, err)
		}
	}
	return nil
}
