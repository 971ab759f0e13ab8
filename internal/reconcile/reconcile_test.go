// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

func grantsWithCities(uei string, cities ...string) []types.GrantRecord {
	grants := make([]types.GrantRecord, len(cities))
	for i, c := range cities {
		grants[i] = types.GrantRecord{InstitutionUEI: uei, InstitutionCity: c}
	}
	return grants
}

func TestImputeByGroupFillsMode(t *testing.T) {
	// Group {A: ["", "Troy", "Troy"]}: the empty entry is filled with "Troy".
	grants := grantsWithCities("A", "", "Troy", "Troy")

	out, err := ImputeByGroup(grants, "InstitutionUEI", []string{"InstitutionCity"})
	if err != nil {
		t.Fatalf("ImputeByGroup: %v", err)
	}

	for i, g := range out {
		if g.InstitutionCityCorrected != "Troy" {
			t.Errorf("row %d corrected city = %q, want Troy", i, g.InstitutionCityCorrected)
		}
	}
	// Originals untouched.
	if out[0].InstitutionCity != "" {
		t.Error("original city was rewritten")
	}
	if grants[0].InstitutionCityCorrected != "" {
		t.Error("ImputeByGroup mutated its input")
	}
}

func TestImputeByGroupAllEmptyStaysEmpty(t *testing.T) {
	grants := grantsWithCities("B", "", "", "")

	out, err := ImputeByGroup(grants, "InstitutionUEI", []string{"InstitutionCity"})
	if err != nil {
		t.Fatal(err)
	}
	for i, g := range out {
		if g.InstitutionCityCorrected != "" {
			t.Errorf("row %d should stay empty, got %q", i, g.InstitutionCityCorrected)
		}
	}
}

func TestImputeByGroupTieBreaksFirstSeen(t *testing.T) {
	// "Albany" and "Troy" are tied at two; Albany occurs first.
	grants := grantsWithCities("C", "Albany", "Troy", "Troy", "Albany", "")

	out, err := ImputeByGroup(grants, "InstitutionUEI", []string{"InstitutionCity"})
	if err != nil {
		t.Fatal(err)
	}
	if got := out[4].InstitutionCityCorrected; got != "Albany" {
		t.Errorf("tie broke to %q, want first-seen Albany", got)
	}
}

func TestImputeByGroupIsolatesGroups(t *testing.T) {
	grants := []types.GrantRecord{
		{InstitutionUEI: "A", InstitutionCity: "Troy"},
		{InstitutionUEI: "A"},
		{InstitutionUEI: "B", InstitutionCity: "Boston"},
		{InstitutionUEI: "B"},
		{InstitutionCity: ""}, // empty key: left alone
	}

	out, err := ImputeByGroup(grants, "InstitutionUEI", []string{"InstitutionCity"})
	if err != nil {
		t.Fatal(err)
	}
	if out[1].InstitutionCityCorrected != "Troy" {
		t.Errorf("group A fill = %q", out[1].InstitutionCityCorrected)
	}
	if out[3].InstitutionCityCorrected != "Boston" {
		t.Errorf("group B fill = %q", out[3].InstitutionCityCorrected)
	}
	if out[4].InstitutionCityCorrected != "" {
		t.Errorf("empty-key row filled with %q", out[4].InstitutionCityCorrected)
	}
}

func TestImputeByGroupKeepsExistingCorrections(t *testing.T) {
	grants := grantsWithCities("D", "Troy", "Troy")
	grants[0].InstitutionCityCorrected = "Watervliet"

	out, err := ImputeByGroup(grants, "InstitutionUEI", []string{"InstitutionCity"})
	if err != nil {
		t.Fatal(err)
	}
	if out[0].InstitutionCityCorrected != "Watervliet" {
		t.Errorf("existing correction overwritten: %q", out[0].InstitutionCityCorrected)
	}
}

func TestImputeByGroupUnknownField(t *testing.T) {
	if _, err := ImputeByGroup(nil, "Nonexistent", []string{"InstitutionCity"}); err == nil {
		t.Fatal("expected error for unknown grouping field")
	}
	if _, err := ImputeByGroup(nil, "InstitutionUEI", []string{"Nonexistent"}); err == nil {
		t.Fatal("expected error for unknown target field")
	}
}

func TestApplyOverrides(t *testing.T) {
	grants := []types.GrantRecord{
		{InstitutionName: "Rensselaer Polytechnic Institute", InstitutionCity: "TROY", InstitutionState: "NY"},
		{InstitutionName: "Other College", InstitutionCity: "TROY", InstitutionState: "NY"},
	}
	overrides := map[OverrideKey]Override{
		{Name: "Rensselaer Polytechnic Institute", City: "troy", State: "ny"}: {City: "Troy", State: "NY"},
	}

	out := ApplyOverrides(grants, overrides)

	if out[0].InstitutionCityCorrected != "Troy" || out[0].InstitutionStateCorrected != "NY" {
		t.Errorf("override not applied: %+v", out[0])
	}
	// Non-matching rows pass through with shadows initialized.
	if out[1].InstitutionCityCorrected != "TROY" {
		t.Errorf("non-matching row changed: %+v", out[1])
	}
	if out[0].InstitutionCity != "TROY" {
		t.Error("original city rewritten")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	content := `- institution_name: "Rensselaer Polytechnic Institute"
  match_city: "TROY"
  match_state: "NY"
  city: "Troy"
  state: "NY"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	overrides, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}

	// Match keys are lowercased on load.
	key := OverrideKey{Name: "Rensselaer Polytechnic Institute", City: "troy", State: "ny"}
	got, ok := overrides[key]
	if !ok {
		t.Fatalf("key not found; overrides = %v", overrides)
	}
	if got.City != "Troy" || got.State != "NY" {
		t.Errorf("override = %+v", got)
	}
}

func TestLoadOverridesRejectsUnnamedEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	if err := os.WriteFile(path, []byte("- match_city: troy\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOverrides(path); err == nil {
		t.Fatal("expected error for entry without institution_name")
	}
}
