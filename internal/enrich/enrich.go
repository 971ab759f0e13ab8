// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich derives award-type flags from grant titles and joins
// external program-participation counts. Transforms are pure: they return
// a new grant slice and never mutate their input.
package enrich

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// Title patterns are matched case-insensitively as whole words. The flags
// are 0 or 1, never absent: an unmatched title yields 0.
var (
	reSBIR       = regexp.MustCompile(`(?i)\bSBIR\b`)
	reSBIRPhase1 = regexp.MustCompile(`(?i)\bSBIR Phase I:`)
	reSBIRPhase2 = regexp.MustCompile(`(?i)\bSBIR Phase II:`)
	reSTTR       = regexp.MustCompile(`(?i)\bSTTR\b`)
	reSTTRPhase1 = regexp.MustCompile(`(?i)\bSTTR Phase I:`)
	reSTTRPhase2 = regexp.MustCompile(`(?i)\bSTTR Phase II:`)
)

// titleFields maps the logical title field name to its accessor. The
// projection is explicit: callers select the field by name, and an unknown
// name is a caller contract violation.
var titleFields = map[string]func(*types.GrantRecord) string{
	"AwardTitle": func(g *types.GrantRecord) string { return g.AwardTitle },
}

// TitleFlags returns a copy of grants with the six SBIR/STTR flags set
// from the named title field. An unknown titleField is a configuration
// error and fails the whole operation; it is never a data-quality issue.
func TitleFlags(grants []types.GrantRecord, titleField string) ([]types.GrantRecord, error) {
	title, ok := titleFields[titleField]
	if !ok {
		return nil, fmt.Errorf("unknown title field %q", titleField)
	}

	out := make([]types.GrantRecord, len(grants))
	copy(out, grants)
	for i := range out {
		t := title(&out[i])
		out[i].SBIR = boolFlag(reSBIR.MatchString(t))
		out[i].SBIRPhase1 = boolFlag(reSBIRPhase1.MatchString(t))
		out[i].SBIRPhase2 = boolFlag(reSBIRPhase2.MatchString(t))
		out[i].STTR = boolFlag(reSTTR.MatchString(t))
		out[i].STTRPhase1 = boolFlag(reSTTRPhase1.MatchString(t))
		out[i].STTRPhase2 = boolFlag(reSTTRPhase2.MatchString(t))
	}
	return out, nil
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Participation holds I-Corps program participation counts for one award.
type Participation struct {
	Teams int
	Hub   int
	Site  int
	Node  int
}

// ParticipationFromTable converts a participation table (columns AwardID,
// teams, hub, site, node; extra columns ignored) into a lookup keyed by
// AwardID. Blank cells count as zero; non-numeric cells are errors.
func ParticipationFromTable(t types.Table) (map[string]Participation, error) {
	idCol, err := t.ColumnIndex("AwardID")
	if err != nil {
		return nil, err
	}

	cols := map[string]int{}
	for _, name := range []string{"teams", "hub", "site", "node"} {
		idx, err := t.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		cols[name] = idx
	}

	parts := make(map[string]Participation, t.Len())
	for row := range t.Rows {
		count := func(name string) (int, error) {
			cell := t.Cell(row, cols[name])
			if cell == "" {
				return 0, nil
			}
			n, err := strconv.Atoi(cell)
			if err != nil {
				return 0, fmt.Errorf("row %d column %s: %w", row+1, name, err)
			}
			return n, nil
		}

		var p Participation
		for name, dest := range map[string]*int{
			"teams": &p.Teams, "hub": &p.Hub, "site": &p.Site, "node": &p.Node,
		} {
			n, err := count(name)
			if err != nil {
				return nil, err
			}
			*dest = n
		}
		parts[t.Cell(row, idCol)] = p
	}
	return parts, nil
}

// JoinParticipation left-joins participation counts onto grants by
// AwardID. Unmatched grants receive zeros, and every row gets a
// total_icorps sum; the counts are integers, never absent.
func JoinParticipation(grants []types.GrantRecord, parts map[string]Participation) []types.GrantRecord {
	out := make([]types.GrantRecord, len(grants))
	copy(out, grants)
	for i := range out {
		p := parts[out[i].AwardID]
		out[i].ICorpsTeams = p.Teams
		out[i].ICorpsHub = p.Hub
		out[i].ICorpsSite = p.Site
		out[i].ICorpsNode = p.Node
		out[i].TotalICorps = p.Teams + p.Hub + p.Site + p.Node
	}
	return out
}
