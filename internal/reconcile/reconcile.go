// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile fills missing institution identity fields by
// mode-based imputation within grouping keys and applies manual
// correction overrides. Corrections land in the "_corrected" shadow
// fields of the grant record; the original values are never rewritten.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// accessor binds a logical field name to its original and corrected
// struct fields. The mapping is a fixed, explicit schema: imputation is
// parameterized by name, never by reflection over arbitrary columns.
type accessor struct {
	orig         func(*types.GrantRecord) string
	corrected    func(*types.GrantRecord) string
	setCorrected func(*types.GrantRecord, string)
}

var fields = map[string]accessor{
	"InstitutionName": {
		orig:         func(g *types.GrantRecord) string { return g.InstitutionName },
		corrected:    func(g *types.GrantRecord) string { return g.InstitutionNameCorrected },
		setCorrected: func(g *types.GrantRecord, v string) { g.InstitutionNameCorrected = v },
	},
	"InstitutionCity": {
		orig:         func(g *types.GrantRecord) string { return g.InstitutionCity },
		corrected:    func(g *types.GrantRecord) string { return g.InstitutionCityCorrected },
		setCorrected: func(g *types.GrantRecord, v string) { g.InstitutionCityCorrected = v },
	},
	"InstitutionState": {
		orig:         func(g *types.GrantRecord) string { return g.InstitutionState },
		corrected:    func(g *types.GrantRecord) string { return g.InstitutionStateCorrected },
		setCorrected: func(g *types.GrantRecord, v string) { g.InstitutionStateCorrected = v },
	},
	"InstitutionZip": {
		orig:         func(g *types.GrantRecord) string { return g.InstitutionZip },
		corrected:    func(g *types.GrantRecord) string { return g.InstitutionZipCorrected },
		setCorrected: func(g *types.GrantRecord, v string) { g.InstitutionZipCorrected = v },
	},
	"InstitutionUEI": {
		orig:         func(g *types.GrantRecord) string { return g.InstitutionUEI },
		corrected:    func(g *types.GrantRecord) string { return g.InstitutionUEICorrected },
		setCorrected: func(g *types.GrantRecord, v string) { g.InstitutionUEICorrected = v },
	},
}

// ImputeByGroup returns a copy of grants where, for each target field,
// empty corrected values are filled with the most frequent non-empty
// corrected value among rows sharing the grouping key. Shadow fields are
// initialized from their originals first (rows whose shadow is already
// set keep it). Ties break to the value first encountered in original row
// order, which keeps the transform deterministic. Groups with no
// non-empty value, and rows with an empty grouping key, are left as they
// are. Unknown field names are configuration errors.
func ImputeByGroup(grants []types.GrantRecord, groupKey string, targets []string) ([]types.GrantRecord, error) {
	key, ok := fields[groupKey]
	if !ok {
		return nil, fmt.Errorf("unknown grouping field %q", groupKey)
	}
	accessors := make([]accessor, 0, len(targets))
	for _, name := range targets {
		a, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("unknown target field %q", name)
		}
		accessors = append(accessors, a)
	}

	out := make([]types.GrantRecord, len(grants))
	copy(out, grants)

	for i := range out {
		for _, a := range accessors {
			if a.corrected(&out[i]) == "" {
				a.setCorrected(&out[i], a.orig(&out[i]))
			}
		}
	}

	// Row indices per group, in original order.
	groups := make(map[string][]int)
	var order []string
	for i := range out {
		k := key.orig(&out[i])
		if k == "" {
			continue
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		rows := groups[k]
		for _, a := range accessors {
			mode := groupMode(out, rows, a)
			if mode == "" {
				continue
			}
			for _, i := range rows {
				if a.corrected(&out[i]) == "" {
					a.setCorrected(&out[i], mode)
				}
			}
		}
	}

	return out, nil
}

// groupMode returns the most frequent non-empty corrected value among the
// given rows, breaking ties by first occurrence. Empty when the group has
// no non-empty value.
func groupMode(grants []types.GrantRecord, rows []int, a accessor) string {
	counts := make(map[string]int)
	var firstSeen []string
	for _, i := range rows {
		v := a.corrected(&grants[i])
		if v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			firstSeen = append(firstSeen, v)
		}
		counts[v]++
	}

	best := ""
	bestCount := 0
	for _, v := range firstSeen {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

// OverrideKey identifies the rows an override applies to. City and State
// are stored lowercased.
type OverrideKey struct {
	Name  string
	City  string
	State string
}

// Override is an authoritative replacement city/state pair.
type Override struct {
	City  string
	State string
}

// ApplyOverrides returns a copy of grants where rows matching an override
// key (corrected institution name plus lowercased corrected city and
// state) have their corrected city and state overwritten with the
// authoritative pair. Shadow fields are initialized first, so
// non-matching rows still come out with populated corrected columns.
func ApplyOverrides(grants []types.GrantRecord, overrides map[OverrideKey]Override) []types.GrantRecord {
	out := make([]types.GrantRecord, len(grants))
	copy(out, grants)

	for i := range out {
		g := &out[i]
		if g.InstitutionNameCorrected == "" {
			g.InstitutionNameCorrected = g.InstitutionName
		}
		if g.InstitutionCityCorrected == "" {
			g.InstitutionCityCorrected = g.InstitutionCity
		}
		if g.InstitutionStateCorrected == "" {
			g.InstitutionStateCorrected = g.InstitutionState
		}

		k := OverrideKey{
			Name:  g.InstitutionNameCorrected,
			City:  strings.ToLower(g.InstitutionCityCorrected),
			State: strings.ToLower(g.InstitutionStateCorrected),
		}
		if o, ok := overrides[k]; ok {
			g.InstitutionCityCorrected = o.City
			g.InstitutionStateCorrected = o.State
		}
	}
	return out
}
