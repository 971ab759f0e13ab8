// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// overrideEntry is one correction in the overrides YAML file. MatchCity
// and MatchState are compared case-insensitively against the corrected
// columns; City and State are the authoritative replacements.
type overrideEntry struct {
	InstitutionName string `yaml:"institution_name"`
	MatchCity       string `yaml:"match_city"`
	MatchState      string `yaml:"match_state"`
	City            string `yaml:"city"`
	State           string `yaml:"state"`
}

// LoadOverrides reads a YAML list of manual city/state corrections into
// the lookup used by ApplyOverrides.
func LoadOverrides(path string) (map[OverrideKey]Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides %s: %w", path, err)
	}

	var entries []overrideEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing overrides %s: %w", path, err)
	}

	overrides := make(map[OverrideKey]Override, len(entries))
	for i, e := range entries {
		if e.InstitutionName == "" {
			return nil, fmt.Errorf("overrides %s: entry %d has no institution_name", path, i+1)
		}
		key := OverrideKey{
			Name:  e.InstitutionName,
			City:  strings.ToLower(e.MatchCity),
			State: strings.ToLower(e.MatchState),
		}
		overrides[key] = Override{City: e.City, State: e.State}
	}
	return overrides, nil
}
