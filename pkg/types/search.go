// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SearchResult is one work as returned by a literature API backend, before
// identity resolution. Per prd004-search R2.
type SearchResult struct {
	// Source identifies the backend that produced this result
	// (e.g. "openalex", "europepmc").
	Source string `json:"source" yaml:"source"`

	DOI  *string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID *string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// Title is the work title.
	Title string `json:"title" yaml:"title"`

	Journal *string  `json:"journal,omitempty" yaml:"journal,omitempty"`
	Year    *int     `json:"year,omitempty" yaml:"year,omitempty"`
	Authors []string `json:"authors" yaml:"authors"`

	Abstract *string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// OAURL is the open-access full-text URL, if the backend knows one.
	OAURL *string `json:"oa_url,omitempty" yaml:"oa_url,omitempty"`

	// EPMCID is the Europe PMC full-text identifier, if any.
	EPMCID *string `json:"epmc_id,omitempty" yaml:"epmc_id,omitempty"`

	// URL is the work's landing page.
	URL *string `json:"url,omitempty" yaml:"url,omitempty"`
}

// SearchOutput is the search.json artifact: the raw, pre-dedup result list.
// QA compares its length against the document count to report duplicates
// removed.
type SearchOutput struct {
	Query       string         `json:"query" yaml:"query"`
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
	Results     []SearchResult `json:"results" yaml:"results"`
}

// QAReport summarizes a run for the strict/non-strict quality gate.
// Per prd004-search R5.
type QAReport struct {
	// UniqueStudies is the canonical document count after deduplication.
	UniqueStudies int `json:"unique_studies" yaml:"unique_studies"`

	// DuplicatesRemoved is raw search results minus unique studies.
	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`

	// OARetrievalRate is the fraction of OA-flagged documents with a local
	// full-text file.
	OARetrievalRate float64 `json:"oa_retrieval_rate" yaml:"oa_retrieval_rate"`

	// ExtractionSuccessRate is the non-sentinel fraction of ledger rows.
	ExtractionSuccessRate float64 `json:"extraction_success_rate" yaml:"extraction_success_rate"`

	// UnanchoredClaimCount is the number of sentinel or errored ledger rows.
	UnanchoredClaimCount int `json:"unanchored_claim_count" yaml:"unanchored_claim_count"`
}
