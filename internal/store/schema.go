// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"strconv"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// The grant and investigator schemas are fixed, ordered projections shared
// by the CSV writers and the SQLite snapshot. Column order here is the
// column order everywhere.

// GrantColumns is the tabular projection of types.GrantRecord.
var GrantColumns = []string{
	"AwardID", "AwardTitle", "Agency",
	"AwardEffectiveDate", "AwardExpirationDate",
	"AwardTotalIntnAmount", "AwardAmount", "AwardInstrument",
	"Organization_Code",
	"Directorate_Abbreviation", "Directorate_LongName",
	"Division_Abbreviation", "Division_LongName",
	"Institution_Name", "Institution_City", "Institution_State",
	"Institution_Zip", "Institution_Country", "Institution_OrgUEINum",
	"Performance_Name", "Performance_City", "Performance_State", "Performance_Zip",
	"ProgramElement_Codes", "ProgramReference_Codes",
	"Year",
	"sbir", "sbir_1", "sbir_2", "sttr", "sttr_1", "sttr_2",
	"icorps_teams", "icorps_hub", "icorps_site", "icorps_node", "total_icorps",
	"Institution_Name_Corrected", "Institution_City_Corrected",
	"Institution_State_Corrected", "Institution_Zip_Corrected",
	"Institution_OrgUEINum_Corrected",
}

// InvestigatorColumns is the tabular projection of types.InvestigatorRecord.
var InvestigatorColumns = []string{
	"AwardID", "PI_Number",
	"FirstName", "LastName", "MiddleInitial", "Suffix", "FullName",
	"Email", "NSFID", "StartDate", "EndDate", "RoleCode",
	"InstitutionDomain",
	"TotalInvestigators", "TotalCollaborativeInstitutions",
	"TotalAtPIUniversity", "TotalOutsidePIUniversity",
}

// SummaryColumns is the tabular projection of types.YearSummary.
var SummaryColumns = []string{
	"Year", "GrantRows", "InvestigatorRows", "ErrorCount", "ParsedAt",
}

func grantRow(g types.GrantRecord) []string {
	return []string{
		g.AwardID, g.AwardTitle, g.Agency,
		g.AwardEffectiveDate, g.AwardExpirationDate,
		g.AwardTotalIntnAmount, g.AwardAmount, g.AwardInstrument,
		g.OrganizationCode,
		g.DirectorateAbbr, g.DirectorateLongName,
		g.DivisionAbbr, g.DivisionLongName,
		g.InstitutionName, g.InstitutionCity, g.InstitutionState,
		g.InstitutionZip, g.InstitutionCountry, g.InstitutionUEI,
		g.PerformanceName, g.PerformanceCity, g.PerformanceState, g.PerformanceZip,
		g.ProgramElementCodes, g.ProgramReferenceCodes,
		strconv.Itoa(g.Year),
		strconv.Itoa(g.SBIR), strconv.Itoa(g.SBIRPhase1), strconv.Itoa(g.SBIRPhase2),
		strconv.Itoa(g.STTR), strconv.Itoa(g.STTRPhase1), strconv.Itoa(g.STTRPhase2),
		strconv.Itoa(g.ICorpsTeams), strconv.Itoa(g.ICorpsHub),
		strconv.Itoa(g.ICorpsSite), strconv.Itoa(g.ICorpsNode), strconv.Itoa(g.TotalICorps),
		g.InstitutionNameCorrected, g.InstitutionCityCorrected,
		g.InstitutionStateCorrected, g.InstitutionZipCorrected,
		g.InstitutionUEICorrected,
	}
}

func investigatorRow(inv types.InvestigatorRecord) []string {
	return []string{
		inv.AwardID, strconv.Itoa(inv.PINumber),
		inv.FirstName, inv.LastName, inv.MiddleInitial, inv.Suffix, inv.FullName,
		inv.Email, inv.NSFID, inv.StartDate, inv.EndDate, inv.RoleCode,
		inv.InstitutionDomain,
		strconv.Itoa(inv.TotalInvestigators), strconv.Itoa(inv.TotalCollaborativeInstitutions),
		strconv.Itoa(inv.TotalAtPIUniversity), strconv.Itoa(inv.TotalOutsidePIUniversity),
	}
}

func grantFromRow(row []string) (types.GrantRecord, error) {
	if len(row) != len(GrantColumns) {
		return types.GrantRecord{}, fmt.Errorf("grant row has %d columns, want %d", len(row), len(GrantColumns))
	}

	g := types.GrantRecord{
		AwardID:               row[0],
		AwardTitle:            row[1],
		Agency:                row[2],
		AwardEffectiveDate:    row[3],
		AwardExpirationDate:   row[4],
		AwardTotalIntnAmount:  row[5],
		AwardAmount:           row[6],
		AwardInstrument:       row[7],
		OrganizationCode:      row[8],
		DirectorateAbbr:       row[9],
		DirectorateLongName:   row[10],
		DivisionAbbr:          row[11],
		DivisionLongName:      row[12],
		InstitutionName:       row[13],
		InstitutionCity:       row[14],
		InstitutionState:      row[15],
		InstitutionZip:        row[16],
		InstitutionCountry:    row[17],
		InstitutionUEI:        row[18],
		PerformanceName:       row[19],
		PerformanceCity:       row[20],
		PerformanceState:      row[21],
		PerformanceZip:        row[22],
		ProgramElementCodes:   row[23],
		ProgramReferenceCodes: row[24],

		InstitutionNameCorrected:  row[37],
		InstitutionCityCorrected:  row[38],
		InstitutionStateCorrected: row[39],
		InstitutionZipCorrected:   row[40],
		InstitutionUEICorrected:   row[41],
	}

	ints := []struct {
		idx  int
		dest *int
	}{
		{25, &g.Year},
		{26, &g.SBIR}, {27, &g.SBIRPhase1}, {28, &g.SBIRPhase2},
		{29, &g.STTR}, {30, &g.STTRPhase1}, {31, &g.STTRPhase2},
		{32, &g.ICorpsTeams}, {33, &g.ICorpsHub},
		{34, &g.ICorpsSite}, {35, &g.ICorpsNode}, {36, &g.TotalICorps},
	}
	for _, f := range ints {
		n, err := parseCount(GrantColumns[f.idx], row[f.idx])
		if err != nil {
			return types.GrantRecord{}, err
		}
		*f.dest = n
	}

	return g, nil
}

func investigatorFromRow(row []string) (types.InvestigatorRecord, error) {
	if len(row) != len(InvestigatorColumns) {
		return types.InvestigatorRecord{}, fmt.Errorf("investigator row has %d columns, want %d", len(row), len(InvestigatorColumns))
	}

	inv := types.InvestigatorRecord{
		AwardID:           row[0],
		FirstName:         row[2],
		LastName:          row[3],
		MiddleInitial:     row[4],
		Suffix:            row[5],
		FullName:          row[6],
		Email:             row[7],
		NSFID:             row[8],
		StartDate:         row[9],
		EndDate:           row[10],
		RoleCode:          row[11],
		InstitutionDomain: row[12],
	}

	ints := []struct {
		idx  int
		dest *int
	}{
		{1, &inv.PINumber},
		{13, &inv.TotalInvestigators}, {14, &inv.TotalCollaborativeInstitutions},
		{15, &inv.TotalAtPIUniversity}, {16, &inv.TotalOutsidePIUniversity},
	}
	for _, f := range ints {
		n, err := parseCount(InvestigatorColumns[f.idx], row[f.idx])
		if err != nil {
			return types.InvestigatorRecord{}, err
		}
		*f.dest = n
	}

	return inv, nil
}

// GrantTable projects grants into a generic table, e.g. for the matcher.
func GrantTable(grants []types.GrantRecord) types.Table {
	t := types.Table{Columns: GrantColumns}
	for _, g := range grants {
		t.Rows = append(t.Rows, grantRow(g))
	}
	return t
}

func parseCount(col, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return n, nil
}
