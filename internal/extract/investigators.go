// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "github.com/SeverinoCenter/nsf-award-extract/pkg/types"

// BuildInvestigators converts an award's investigator elements into
// records annotated with ordinal position and collaboration statistics.
// Document order defines PINumber: the first-listed investigator (PI# 1)
// is the Principal Investigator, and their institution domain is the
// award's "home" domain.
//
// The four aggregates are computed once over the whole list and copied
// onto every row, so they are identical across all investigator rows of
// the same award:
//
//   - TotalInvestigators: the row count.
//   - TotalCollaborativeInstitutions: distinct non-empty domains.
//   - TotalAtPIUniversity: rows whose domain equals the home domain. An
//     empty home domain matches nothing; two missing domains are never
//     considered equal.
//   - TotalOutsidePIUniversity: the complement.
//
// Zero investigators yields an empty slice; no aggregates are computed.
func BuildInvestigators(awardID string, elems []investigatorXML) []types.InvestigatorRecord {
	if len(elems) == 0 {
		return nil
	}

	records := make([]types.InvestigatorRecord, 0, len(elems))
	for i, inv := range elems {
		records = append(records, types.InvestigatorRecord{
			AwardID:           awardID,
			PINumber:          i + 1,
			FirstName:         inv.FirstName,
			LastName:          inv.LastName,
			MiddleInitial:     inv.MiddleInitial,
			Suffix:            inv.Suffix,
			FullName:          inv.FullName,
			Email:             inv.Email,
			NSFID:             inv.NSFID,
			StartDate:         inv.StartDate,
			EndDate:           inv.EndDate,
			RoleCode:          inv.RoleCode,
			InstitutionDomain: InstitutionDomain(inv.Email),
		})
	}

	distinct := make(map[string]struct{})
	for _, r := range records {
		if r.InstitutionDomain != "" {
			distinct[r.InstitutionDomain] = struct{}{}
		}
	}

	homeDomain := records[0].InstitutionDomain

	atHome := 0
	if homeDomain != "" {
		for _, r := range records {
			if r.InstitutionDomain == homeDomain {
				atHome++
			}
		}
	}

	total := len(records)
	for i := range records {
		records[i].TotalInvestigators = total
		records[i].TotalCollaborativeInstitutions = len(distinct)
		records[i].TotalAtPIUniversity = atHome
		records[i].TotalOutsidePIUniversity = total - atHome
	}

	return records
}
