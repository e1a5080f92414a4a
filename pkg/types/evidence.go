// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ClaimType is the coarse classification tag assigned to a claim by the
// keyword waterfall. Per prd002-extraction R3.1.
type ClaimType string

const (
	ClaimOutcome      ClaimType = "outcome"
	ClaimMethod       ClaimType = "method"
	ClaimPopulation   ClaimType = "population"
	ClaimComplication ClaimType = "complication"
	ClaimAnatomy      ClaimType = "anatomy"
	ClaimTechnique    ClaimType = "technique"
	ClaimOther        ClaimType = "other"
)

// AnchorType identifies which rendition of the source document a claim is
// anchored to.
type AnchorType string

const (
	AnchorPDF AnchorType = "pdf"
	AnchorXML AnchorType = "xml"
)

// SentinelClaimText marks a ledger row whose claim failed anchor verification
// or schema validation. Such rows are retained for yield accounting, never
// ranked or cited. Per prd002-extraction R4.3.
const SentinelClaimText = "unknown"

// NumberMention is one numeric literal found in a claim sentence, optionally
// carrying a recognized unit token. Per prd002-extraction R5.
type NumberMention struct {
	// Value is the literal as matched, e.g. "30" or "6.5".
	Value string `json:"value" yaml:"value"`

	// Unit is the unit token following the value ("%", "mm", "months", ...),
	// empty when the literal is bare.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// EvidenceLedgerRow is an immutable-once-written record of one claim.
// Invariant: if Errors is non-empty, ClaimText equals SentinelClaimText; for
// a verified row AnchorQuote is a whitespace/case-normalized substring of the
// row's source text. Per prd002-extraction R4.
type EvidenceLedgerRow struct {
	// ClaimID is the opaque row identifier ("claim_<uuid>").
	ClaimID string `json:"claim_id" yaml:"claim_id"`

	// DocID is the owning canonical document.
	DocID string `json:"doc_id" yaml:"doc_id"`

	// SourceType is the owning document's provenance tag at extraction time.
	SourceType string `json:"source_type" yaml:"source_type"`

	DOI  *string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID *string `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	URL  *string `json:"url,omitempty" yaml:"url,omitempty"`

	// LocalPath is the source file the claim was extracted from.
	LocalPath string `json:"local_path" yaml:"local_path"`

	// RetrievedAt is the extraction timestamp.
	RetrievedAt time.Time `json:"retrieved_at" yaml:"retrieved_at"`

	// SHA256 is the owning document's content hash, if it has one.
	SHA256 *string `json:"sha256,omitempty" yaml:"sha256,omitempty"`

	// AnchorType selects pdf-page or xml-section anchoring.
	AnchorType AnchorType `json:"anchor_type" yaml:"anchor_type"`

	// PageNumber locates a pdf anchor (nil for xml anchors).
	PageNumber *int `json:"page_number,omitempty" yaml:"page_number,omitempty"`

	// SectionHeading locates an xml anchor (nil for pdf anchors).
	SectionHeading *string `json:"section_heading,omitempty" yaml:"section_heading,omitempty"`

	// AnchorQuote is the verbatim excerpt (at most 25 words) asserted to
	// occur in the source text.
	AnchorQuote string `json:"anchor_quote" yaml:"anchor_quote"`

	// ClaimText is the verbatim claim sentence, or SentinelClaimText when
	// the row failed verification or schema validation.
	ClaimText string `json:"claim_text" yaml:"claim_text"`

	// ClaimType is the classifier's tag for the claim sentence.
	ClaimType ClaimType `json:"claim_type" yaml:"claim_type"`

	// Numbers holds parsed numeric mentions; absent when none were found.
	Numbers []NumberMention `json:"numbers,omitempty" yaml:"numbers,omitempty"`

	// Errors lists error codes for unverified or schema-demoted rows.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// IsSentinel reports whether the row has been demoted to the unknown state.
// Errors are checked as well as the claim text so rows from older ledgers
// that recorded errors without the sentinel still count as unanchored.
func (r *EvidenceLedgerRow) IsSentinel() bool {
	return r.ClaimText == SentinelClaimText || len(r.Errors) > 0
}
