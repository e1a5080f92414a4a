// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// validClaimTypes is the closed enum accepted in ledger rows.
var validClaimTypes = map[types.ClaimType]bool{
	types.ClaimOutcome:      true,
	types.ClaimMethod:       true,
	types.ClaimPopulation:   true,
	types.ClaimComplication: true,
	types.ClaimAnatomy:      true,
	types.ClaimTechnique:    true,
	types.ClaimOther:        true,
}

// ValidateLedgerRow checks the structural contract for one ledger row and
// returns the list of violations, empty when valid.
func ValidateLedgerRow(row *types.EvidenceLedgerRow) []string {
	var violations []string
	if row.ClaimID == "" {
		violations = append(violations, "claim_id is required")
	}
	if row.DocID == "" {
		violations = append(violations, "doc_id is required")
	}
	if row.LocalPath == "" {
		violations = append(violations, "local_path is required")
	}
	if row.RetrievedAt.IsZero() {
		violations = append(violations, "retrieved_at is required")
	}
	switch row.AnchorType {
	case types.AnchorPDF:
		if row.PageNumber == nil {
			violations = append(violations, "page_number is required for pdf anchors")
		}
	case types.AnchorXML:
		if row.SectionHeading == nil {
			violations = append(violations, "section_heading is required for xml anchors")
		}
	default:
		violations = append(violations, fmt.Sprintf("anchor_type %q is not pdf or xml", row.AnchorType))
	}
	if row.AnchorQuote == "" {
		violations = append(violations, "anchor_quote is required")
	}
	if row.ClaimText == "" {
		violations = append(violations, "claim_text is required")
	}
	if !validClaimTypes[row.ClaimType] {
		violations = append(violations, fmt.Sprintf("claim_type %q is not a known claim type", row.ClaimType))
	}
	return violations
}

// EnforceLedgerSchema validates every row in place. Rows that fail are
// demoted to the sentinel claim text with the violations appended to their
// errors, never dropped (R4.3).
func EnforceLedgerSchema(rows []types.EvidenceLedgerRow) {
	for i := range rows {
		violations := ValidateLedgerRow(&rows[i])
		if len(violations) == 0 {
			continue
		}
		rows[i].ClaimText = types.SentinelClaimText
		rows[i].Errors = append(rows[i].Errors, violations...)
	}
}

// ValidateFigureRow checks the structural contract for one figure index row.
func ValidateFigureRow(row *types.FigureIndexRow) []string {
	var violations []string
	if row.FigureID == "" {
		violations = append(violations, "figure_id is required")
	}
	if row.DocID == "" {
		violations = append(violations, "doc_id is required")
	}
	if row.LocalDocPath == "" {
		violations = append(violations, "local_doc_path is required")
	}
	if row.FigurePath == "" {
		violations = append(violations, "figure_path is required")
	}
	if row.RetrievedAt.IsZero() {
		violations = append(violations, "retrieved_at is required")
	}
	switch row.SourceType {
	case "pdf":
		if row.PageNumber == nil {
			violations = append(violations, "page_number is required for pdf figures")
		}
	case "jats":
		if row.XMLFigID == nil {
			violations = append(violations, "xml_fig_id is required for jats figures")
		}
	default:
		violations = append(violations, fmt.Sprintf("source_type %q is not pdf or jats", row.SourceType))
	}
	return violations
}

// EnforceFigureSchema aborts on the first malformed figure row. Figures
// have no sentinel state, so a violation here is a producer defect rather
// than noisy source content.
func EnforceFigureSchema(rows []types.FigureIndexRow) error {
	for i := range rows {
		if violations := ValidateFigureRow(&rows[i]); len(violations) > 0 {
			return fmt.Errorf("figure schema violation for %s: %s", rows[i].FigureID, violations[0])
		}
	}
	return nil
}
