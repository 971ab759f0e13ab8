package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "award-extract/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ArchiveConfig holds settings for the archive scanning stage.
type ArchiveConfig struct {
	// ArchiveDir is the directory tree searched for yearly ZIP archives.
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`

	// ExtractDir is where XML documents are extracted, one subdirectory
	// per year.
	ExtractDir string `json:"extract_dir" yaml:"extract_dir"`

	// MinYear excludes archives for years at or below this value.
	MinYear int `json:"min_year" yaml:"min_year"`
}

// IngestConfig holds settings for the corpus collection stage.
type IngestConfig struct {
	// ExtractDir is the root of per-year XML directories (see ArchiveConfig).
	ExtractDir string `json:"extract_dir" yaml:"extract_dir"`

	// CSVDir receives per-year grant and investigator CSV files.
	CSVDir string `json:"csv_dir" yaml:"csv_dir"`

	// SnapshotPath is the SQLite snapshot written for fast reload.
	SnapshotPath string `json:"snapshot_path" yaml:"snapshot_path"`
}

// EnrichConfig holds settings for the feature enrichment stage.
type EnrichConfig struct {
	// TitleField is the logical grant field holding the award title
	// (default "AwardTitle").
	TitleField string `json:"title_field" yaml:"title_field"`

	// ParticipationPath is a CSV of I-Corps participation counts keyed
	// by AwardID. Empty disables the join.
	ParticipationPath string `json:"participation_path" yaml:"participation_path"`
}

// ReconcileConfig holds settings for the record reconciliation stage.
type ReconcileConfig struct {
	// GroupKeys lists the imputation passes to run, in order. Each entry
	// is a logical grant field name ("InstitutionUEI", "InstitutionName").
	GroupKeys []string `json:"group_keys" yaml:"group_keys"`

	// TargetFields are the institution identity fields to impute.
	TargetFields []string `json:"target_fields" yaml:"target_fields"`

	// OverridesPath is a YAML file of manual city/state corrections.
	// Empty disables the override pass.
	OverridesPath string `json:"overrides_path" yaml:"overrides_path"`
}

// MatchConfig holds settings for the embedding matching stage.
type MatchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the base URL of an OpenAI-compatible embeddings API.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Model is the embedding model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the embeddings API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// QueryColumn and ReferenceColumn name the text columns to embed.
	QueryColumn     string `json:"query_column" yaml:"query_column"`
	ReferenceColumn string `json:"reference_column" yaml:"reference_column"`

	// QueryReturn and ReferenceReturn list the identity columns copied
	// into each result row from the query and matched reference rows.
	QueryReturn     []string `json:"query_return" yaml:"query_return"`
	ReferenceReturn []string `json:"reference_return" yaml:"reference_return"`

	// BatchSize controls checkpoint frequency (default 100).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxRecords caps the number of query rows processed (0 = all).
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// MatchThreshold is the similarity at or above which a result is
	// flagged as a confirmed match (default 0.99).
	MatchThreshold float64 `json:"match_threshold" yaml:"match_threshold"`

	// CheckpointDir receives partial result CSVs every BatchSize rows.
	// Empty keeps checkpoints log-only.
	CheckpointDir string `json:"checkpoint_dir" yaml:"checkpoint_dir"`

	// OutputPath is the XLSX workbook written after the run.
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Archive   ArchiveConfig   `json:"archive" yaml:"archive"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Enrich    EnrichConfig    `json:"enrich" yaml:"enrich"`
	Reconcile ReconcileConfig `json:"reconcile" yaml:"reconcile"`
	Match     MatchConfig     `json:"match" yaml:"match"`
}
