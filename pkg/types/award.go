// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// GrantRecord is the flat projection of one NSF award XML document.
// Every field is optional: a missing element yields an empty string.
// AwardID is present whenever extraction succeeded; an empty AwardID
// marks a document that failed to parse.
type GrantRecord struct {
	AwardID             string `json:"award_id" yaml:"award_id"`
	AwardTitle          string `json:"award_title" yaml:"award_title"`
	Agency              string `json:"agency" yaml:"agency"`
	AwardEffectiveDate  string `json:"award_effective_date" yaml:"award_effective_date"`
	AwardExpirationDate string `json:"award_expiration_date" yaml:"award_expiration_date"`

	// Award amounts are carried as the source text: the feed mixes
	// numerics, blanks, and free text in these elements.
	AwardTotalIntnAmount string `json:"award_total_intn_amount" yaml:"award_total_intn_amount"`
	AwardAmount          string `json:"award_amount" yaml:"award_amount"`
	AwardInstrument      string `json:"award_instrument" yaml:"award_instrument"`

	OrganizationCode    string `json:"organization_code" yaml:"organization_code"`
	DirectorateAbbr     string `json:"directorate_abbr" yaml:"directorate_abbr"`
	DirectorateLongName string `json:"directorate_long_name" yaml:"directorate_long_name"`
	DivisionAbbr        string `json:"division_abbr" yaml:"division_abbr"`
	DivisionLongName    string `json:"division_long_name" yaml:"division_long_name"`

	// Awarding institution identity.
	InstitutionName    string `json:"institution_name" yaml:"institution_name"`
	InstitutionCity    string `json:"institution_city" yaml:"institution_city"`
	InstitutionState   string `json:"institution_state" yaml:"institution_state"`
	InstitutionZip     string `json:"institution_zip" yaml:"institution_zip"`
	InstitutionCountry string `json:"institution_country" yaml:"institution_country"`
	InstitutionUEI     string `json:"institution_uei" yaml:"institution_uei"`

	// Performance site, which may differ from the awarding institution.
	PerformanceName  string `json:"performance_name" yaml:"performance_name"`
	PerformanceCity  string `json:"performance_city" yaml:"performance_city"`
	PerformanceState string `json:"performance_state" yaml:"performance_state"`
	PerformanceZip   string `json:"performance_zip" yaml:"performance_zip"`

	// Program classification codes, semicolon-joined in document order.
	ProgramElementCodes   string `json:"program_element_codes" yaml:"program_element_codes"`
	ProgramReferenceCodes string `json:"program_reference_codes" yaml:"program_reference_codes"`

	// Year comes from the source archive name, not the document.
	Year int `json:"year" yaml:"year"`

	// Title-derived award-type flags, 0 or 1, set by the enrichment stage.
	SBIR       int `json:"sbir" yaml:"sbir"`
	SBIRPhase1 int `json:"sbir_1" yaml:"sbir_1"`
	SBIRPhase2 int `json:"sbir_2" yaml:"sbir_2"`
	STTR       int `json:"sttr" yaml:"sttr"`
	STTRPhase1 int `json:"sttr_1" yaml:"sttr_1"`
	STTRPhase2 int `json:"sttr_2" yaml:"sttr_2"`

	// I-Corps participation counts joined by AwardID; unmatched rows are 0.
	ICorpsTeams int `json:"icorps_teams" yaml:"icorps_teams"`
	ICorpsHub   int `json:"icorps_hub" yaml:"icorps_hub"`
	ICorpsSite  int `json:"icorps_site" yaml:"icorps_site"`
	ICorpsNode  int `json:"icorps_node" yaml:"icorps_node"`
	TotalICorps int `json:"total_icorps" yaml:"total_icorps"`

	// Corrected shadow fields written by the reconciliation stage. They
	// start as copies of the originals and receive imputed or overridden
	// values; the originals are never rewritten.
	InstitutionNameCorrected  string `json:"institution_name_corrected" yaml:"institution_name_corrected"`
	InstitutionCityCorrected  string `json:"institution_city_corrected" yaml:"institution_city_corrected"`
	InstitutionStateCorrected string `json:"institution_state_corrected" yaml:"institution_state_corrected"`
	InstitutionZipCorrected   string `json:"institution_zip_corrected" yaml:"institution_zip_corrected"`
	InstitutionUEICorrected   string `json:"institution_uei_corrected" yaml:"institution_uei_corrected"`
}

// InvestigatorRecord is one <Investigator> element of an award, keyed back
// to the award by AwardID. PINumber is the 1-based position in document
// order; the first-listed investigator is treated as the Principal
// Investigator.
type InvestigatorRecord struct {
	AwardID       string `json:"award_id" yaml:"award_id"`
	PINumber      int    `json:"pi_number" yaml:"pi_number"`
	FirstName     string `json:"first_name" yaml:"first_name"`
	LastName      string `json:"last_name" yaml:"last_name"`
	MiddleInitial string `json:"middle_initial" yaml:"middle_initial"`
	Suffix        string `json:"suffix" yaml:"suffix"`
	FullName      string `json:"full_name" yaml:"full_name"`
	Email         string `json:"email" yaml:"email"`
	NSFID         string `json:"nsf_id" yaml:"nsf_id"`
	StartDate     string `json:"start_date" yaml:"start_date"`
	EndDate       string `json:"end_date" yaml:"end_date"`
	RoleCode      string `json:"role_code" yaml:"role_code"`

	// InstitutionDomain is the second-level+top-level label of the email
	// domain, used as a proxy for institutional affiliation. Empty when
	// the email is missing or malformed.
	InstitutionDomain string `json:"institution_domain" yaml:"institution_domain"`

	// Aggregates computed once per award and copied onto every
	// investigator row of that award.
	TotalInvestigators             int `json:"total_investigators" yaml:"total_investigators"`
	TotalCollaborativeInstitutions int `json:"total_collaborative_institutions" yaml:"total_collaborative_institutions"`
	TotalAtPIUniversity            int `json:"total_at_pi_university" yaml:"total_at_pi_university"`
	TotalOutsidePIUniversity       int `json:"total_outside_pi_university" yaml:"total_outside_pi_university"`
}

// CorpusError identifies one document that failed to parse or yielded no
// grant record during a collection run.
type CorpusError struct {
	Path   string `json:"path" yaml:"path"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ArchiveInfo describes one discovered yearly ZIP archive.
type ArchiveInfo struct {
	Path string `json:"path" yaml:"path"`

	// Year parsed from the first dot-delimited segment of the filename.
	Year int `json:"year" yaml:"year"`

	// XMLFiles is the number of XML documents found after extraction.
	XMLFiles int `json:"xml_files" yaml:"xml_files"`
}

// YearSummary records the outcome of collecting one year's documents.
type YearSummary struct {
	Year             int       `json:"year" yaml:"year"`
	GrantRows        int       `json:"grant_rows" yaml:"grant_rows"`
	InvestigatorRows int       `json:"investigator_rows" yaml:"investigator_rows"`
	ErrorCount       int       `json:"error_count" yaml:"error_count"`
	ParsedAt         time.Time `json:"parsed_at" yaml:"parsed_at"`
}
