// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brief

import (
	"fmt"
	"os"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Violation codes reported when a brief fails its closing integrity gate.
const (
	ViolationEmptyCitations           = "empty_citations"
	ViolationCitationMissingFromBrief = "citation_missing_from_brief"
	ViolationCitationMissingFromLedger = "citation_missing_from_ledger"
	ViolationAnchorMismatch           = "anchor_mismatch"
	ViolationQuoteMismatch            = "quote_mismatch"
	ViolationFigureFileMissing        = "figure_file_missing"
	ViolationFigureMissingFromIndex   = "figure_missing_from_index"
)

// ViolationError identifies the first integrity violation found in a brief.
// ID carries the claim id or figure id needed to locate the offending record.
type ViolationError struct {
	Code string
	ID   string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("brief validation failed: %s (%s)", e.Code, e.ID)
}

// ValidateBrief checks the closed-loop invariant (R3.1): every citation id
// referenced by a takeaway must resolve, with matching anchor and quote, to
// exactly one ledger row. Returns nil or the first violation. Pure; the
// brief is never mutated.
func ValidateBrief(b *types.Brief, ledger []types.EvidenceLedgerRow) error {
	ledgerByID := map[string]*types.EvidenceLedgerRow{}
	for i := range ledger {
		ledgerByID[ledger[i].ClaimID] = &ledger[i]
	}
	citeByID := map[string]*types.Citation{}
	for i := range b.Citations {
		citeByID[b.Citations[i].ClaimID] = &b.Citations[i]
	}

	for _, takeaway := range b.Takeaways {
		if len(takeaway.CitationIDs) == 0 {
			return &ViolationError{Code: ViolationEmptyCitations, ID: takeaway.Text}
		}
		for _, cid := range takeaway.CitationIDs {
			cite, ok := citeByID[cid]
			if !ok {
				return &ViolationError{Code: ViolationCitationMissingFromBrief, ID: cid}
			}
			row, ok := ledgerByID[cid]
			if !ok {
				return &ViolationError{Code: ViolationCitationMissingFromLedger, ID: cid}
			}
			if !anchorMatches(cite, row) {
				return &ViolationError{Code: ViolationAnchorMismatch, ID: cid}
			}
			if cite.AnchorQuote != row.AnchorQuote {
				return &ViolationError{Code: ViolationQuoteMismatch, ID: cid}
			}
		}
	}
	return nil
}

func anchorMatches(cite *types.Citation, row *types.EvidenceLedgerRow) bool {
	if cite.AnchorType != row.AnchorType {
		return false
	}
	switch row.AnchorType {
	case types.AnchorPDF:
		return cite.PageNumber != nil && row.PageNumber != nil && *cite.PageNumber == *row.PageNumber
	case types.AnchorXML:
		return cite.SectionHeading != nil && row.SectionHeading != nil && *cite.SectionHeading == *row.SectionHeading
	default:
		return false
	}
}

// ValidateBriefFigures checks every key figure against the filesystem and
// the figure index (R3.2). Returns nil or the first violation.
func ValidateBriefFigures(b *types.Brief, figures []types.FigureIndexRow) error {
	indexed := map[string]bool{}
	for _, fig := range figures {
		indexed[fig.FigureID] = true
	}
	for _, fig := range b.KeyFigures {
		if _, err := os.Stat(fig.FigurePath); err != nil {
			return &ViolationError{Code: ViolationFigureFileMissing, ID: fig.FigureID}
		}
		if !indexed[fig.FigureID] {
			return &ViolationError{Code: ViolationFigureMissingFromIndex, ID: fig.FigureID}
		}
	}
	return nil
}
