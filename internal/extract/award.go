// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns NSF award XML documents into flat grant and
// investigator records. The field set is a fixed projection: each logical
// field maps to one well-known element path, and a missing element yields
// an empty value rather than an error.
package extract

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// awardDocument mirrors the award XML layout. The root element name varies
// across feed vintages, so only the Award child is bound.
type awardDocument struct {
	Award awardXML `xml:"Award"`
}

type awardXML struct {
	AwardID              string `xml:"AwardID"`
	AwardTitle           string `xml:"AwardTitle"`
	Agency               string `xml:"AGENCY"`
	AwardEffectiveDate   string `xml:"AwardEffectiveDate"`
	AwardExpirationDate  string `xml:"AwardExpirationDate"`
	AwardTotalIntnAmount string `xml:"AwardTotalIntnAmount"`
	AwardAmount          string `xml:"AwardAmount"`
	AwardInstrument      string `xml:"AwardInstrument>Value"`

	Organization struct {
		Code        string `xml:"Code"`
		Directorate struct {
			Abbreviation string `xml:"Abbreviation"`
			LongName     string `xml:"LongName"`
		} `xml:"Directorate"`
		Division struct {
			Abbreviation string `xml:"Abbreviation"`
			LongName     string `xml:"LongName"`
		} `xml:"Division"`
	} `xml:"Organization"`

	Institution struct {
		Name        string `xml:"Name"`
		CityName    string `xml:"CityName"`
		StateCode   string `xml:"StateCode"`
		ZipCode     string `xml:"ZipCode"`
		CountryName string `xml:"CountryName"`
		UEI         string `xml:"ORG_UEI_NUM"`
	} `xml:"Institution"`

	Performance struct {
		Name      string `xml:"Name"`
		CityName  string `xml:"CityName"`
		StateCode string `xml:"StateCode"`
		ZipCode   string `xml:"ZipCode"`
	} `xml:"Performance_Institution"`

	ProgramElements   []programCode     `xml:"ProgramElement"`
	ProgramReferences []programCode     `xml:"ProgramReference"`
	Investigators     []investigatorXML `xml:"Investigator"`
}

type programCode struct {
	Code string `xml:"Code"`
}

type investigatorXML struct {
	FirstName     string `xml:"FirstName"`
	LastName      string `xml:"LastName"`
	MiddleInitial string `xml:"PI_MID_INIT"`
	Suffix        string `xml:"PI_SUFX_NAME"`
	FullName      string `xml:"PI_FULL_NAME"`
	Email         string `xml:"EmailAddress"`
	NSFID         string `xml:"NSF_ID"`
	StartDate     string `xml:"StartDate"`
	EndDate       string `xml:"EndDate"`
	RoleCode      string `xml:"RoleCode"`
}

// ParseAward reads one award XML document and returns its grant record and
// investigator records. Year tags the grant with the source archive's
// year. A document that cannot be parsed as well-formed XML, or whose
// extraction fails for any other reason, returns an error naming the
// file and nil outputs; callers treat this as recoverable and skip the
// document.
func ParseAward(path string, year int) (*types.GrantRecord, []types.InvestigatorRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc awardDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	a := doc.Award
	grant := &types.GrantRecord{
		AwardID:               a.AwardID,
		AwardTitle:            a.AwardTitle,
		Agency:                a.Agency,
		AwardEffectiveDate:    a.AwardEffectiveDate,
		AwardExpirationDate:   a.AwardExpirationDate,
		AwardTotalIntnAmount:  a.AwardTotalIntnAmount,
		AwardAmount:           a.AwardAmount,
		AwardInstrument:       a.AwardInstrument,
		OrganizationCode:      a.Organization.Code,
		DirectorateAbbr:       a.Organization.Directorate.Abbreviation,
		DirectorateLongName:   a.Organization.Directorate.LongName,
		DivisionAbbr:          a.Organization.Division.Abbreviation,
		DivisionLongName:      a.Organization.Division.LongName,
		InstitutionName:       a.Institution.Name,
		InstitutionCity:       a.Institution.CityName,
		InstitutionState:      a.Institution.StateCode,
		InstitutionZip:        a.Institution.ZipCode,
		InstitutionCountry:    a.Institution.CountryName,
		InstitutionUEI:        a.Institution.UEI,
		PerformanceName:       a.Performance.Name,
		PerformanceCity:       a.Performance.CityName,
		PerformanceState:      a.Performance.StateCode,
		PerformanceZip:        a.Performance.ZipCode,
		ProgramElementCodes:   joinCodes(a.ProgramElements),
		ProgramReferenceCodes: joinCodes(a.ProgramReferences),
		Year:                  year,
	}

	investigators := BuildInvestigators(a.AwardID, a.Investigators)

	return grant, investigators, nil
}

// joinCodes flattens repeated program code elements, preserving document order.
func joinCodes(codes []programCode) string {
	if len(codes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		if c.Code != "" {
			parts = append(parts, c.Code)
		}
	}
	return strings.Join(parts, ";")
}
