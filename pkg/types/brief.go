// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Takeaway is one citable statement in a brief. CitationIDs is never empty
// for a publishable brief; the validator rejects empty lists.
// Per prd003-brief R1.2.
type Takeaway struct {
	// Text is the claim text carried verbatim from the ledger row.
	Text string `json:"text" yaml:"text"`

	// CitationIDs lists the claim ids backing this takeaway.
	CitationIDs []string `json:"citation_ids" yaml:"citation_ids"`
}

// Citation mirrors enough of an evidence ledger row that the brief can be
// re-verified against the ledger without joining any other store.
// Per prd003-brief R1.3, R3.
type Citation struct {
	ClaimID        string     `json:"claim_id" yaml:"claim_id"`
	DocID          string     `json:"doc_id" yaml:"doc_id"`
	DOI            *string    `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID           *string    `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	AnchorType     AnchorType `json:"anchor_type" yaml:"anchor_type"`
	PageNumber     *int       `json:"page_number,omitempty" yaml:"page_number,omitempty"`
	SectionHeading *string    `json:"section_heading,omitempty" yaml:"section_heading,omitempty"`
	AnchorQuote    string     `json:"anchor_quote" yaml:"anchor_quote"`
}

// KeyFigure is a representative figure bundled with the brief. FigurePath
// points at the brief-local copy, not the extraction asset.
// Per prd003-brief R2.3.
type KeyFigure struct {
	FigureID string `json:"figure_id" yaml:"figure_id"`
	DocID    string `json:"doc_id" yaml:"doc_id"`

	// FigurePath is the copied asset inside the brief's figures directory.
	FigurePath string `json:"figure_path" yaml:"figure_path"`

	Caption *string `json:"caption,omitempty" yaml:"caption,omitempty"`

	// Provenance is a free-text origin string (doi/pmid/page-or-fig-id/source).
	Provenance string `json:"provenance" yaml:"provenance"`

	License *string `json:"license,omitempty" yaml:"license,omitempty"`
}

// Brief is the published artifact: top-ranked takeaways, the citations that
// back them, and selected key figures. Every citation id referenced by a
// takeaway must exist in Citations and be re-derivable from the evidence
// ledger (closed-loop invariant, prd003-brief R3.1).
type Brief struct {
	// Slug is the filesystem-safe brief identifier.
	Slug string `json:"slug" yaml:"slug"`

	// Query is the original research question.
	Query string `json:"query" yaml:"query"`

	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	Takeaways  []Takeaway  `json:"takeaways" yaml:"takeaways"`
	Citations  []Citation  `json:"citations" yaml:"citations"`
	KeyFigures []KeyFigure `json:"key_figures" yaml:"key_figures"`
}
