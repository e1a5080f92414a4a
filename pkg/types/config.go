package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evidence-engine/0.1"). Literature APIs require a contactable agent.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// RequestsPerSecond is the per-host rate limit applied to API calls
	// (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// CacheTTL is how long GET responses are cached in memory (default 15m).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// SearchConfig holds settings for the literature search stage.
// Per prd004-search R1, R5.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results per backend (default 25).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableOpenAlex controls whether the OpenAlex backend is used.
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex"`

	// EnableEuropePMC controls whether the Europe PMC backend is used.
	EnableEuropePMC bool `json:"enable_europepmc" yaml:"enable_europepmc"`

	// Email is sent to polite-pool APIs (OpenAlex mailto parameter).
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// StoreConfig holds settings for the document store and data layout.
// Per prd001-identity R1.1.
type StoreConfig struct {
	// DataDir is the root data directory (contains docs/, artifacts/, briefs/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// IngestConfig holds settings for local inbox ingestion.
type IngestConfig struct {
	// InboxDir is the directory scanned for local PDF/XML files.
	InboxDir string `json:"inbox_dir" yaml:"inbox_dir"`

	// Move removes inbox files after placement instead of copying them.
	Move bool `json:"move" yaml:"move"`
}

// DownloadConfig holds settings for the OA full-text download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxDocs caps how many documents are fetched per run (0 = no cap).
	MaxDocs int `json:"max_docs" yaml:"max_docs"`
}

// BriefConfig holds settings for digest/brief composition.
// Per prd003-brief R1, R2.
type BriefConfig struct {
	// MaxTakeaways is the number of top-ranked claims in a brief (default 8).
	MaxTakeaways int `json:"max_takeaways" yaml:"max_takeaways"`

	// MaxKeyFigures is the number of figures bundled with a brief (default 4).
	MaxKeyFigures int `json:"max_key_figures" yaml:"max_key_figures"`

	// TopKSources is how many most-cited documents get their source files
	// copied into the brief (default 3).
	TopKSources int `json:"top_k_sources" yaml:"top_k_sources"`
}

// QAConfig holds settings for the QA gate.
type QAConfig struct {
	// Strict makes the gate fail when any claim is unanchored.
	Strict bool `json:"strict" yaml:"strict"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search   SearchConfig   `json:"search" yaml:"search"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Ingest   IngestConfig   `json:"ingest" yaml:"ingest"`
	Download DownloadConfig `json:"download" yaml:"download"`
	Brief    BriefConfig    `json:"brief" yaml:"brief"`
	QA       QAConfig       `json:"qa" yaml:"qa"`
}
