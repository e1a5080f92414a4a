// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brief

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// RenderMarkdown renders a validated brief for human review. Rendering never
// runs before validation, so it assumes a well-formed brief.
func RenderMarkdown(b *types.Brief) string {
	var out strings.Builder
	fmt.Fprintf(&out, "# Evidence Brief: %s\n\n", b.Query)
	fmt.Fprintf(&out, "Generated: %s\n\n", b.GeneratedAt.Format(time.RFC3339))

	out.WriteString("## Key Takeaways\n\n")
	for i, takeaway := range b.Takeaways {
		cites := make([]string, 0, len(takeaway.CitationIDs))
		for _, id := range takeaway.CitationIDs {
			cites = append(cites, "`"+id+"`")
		}
		fmt.Fprintf(&out, "%d. %s [%s]\n", i+1, takeaway.Text, strings.Join(cites, ", "))
	}

	out.WriteString("\n## Citations\n\n")
	for _, c := range b.Citations {
		fmt.Fprintf(&out, "- `%s` doc=%s doi=%s pmid=%s anchor=%s quote=%q\n",
			c.ClaimID, c.DocID, strOrNone(c.DOI), strOrNone(c.PMID), citationAnchor(&c), c.AnchorQuote)
	}

	out.WriteString("\n## Key Figures\n\n")
	for _, fig := range b.KeyFigures {
		caption := "N/A"
		if fig.Caption != nil {
			caption = *fig.Caption
		}
		license := "unknown"
		if fig.License != nil {
			license = *fig.License
		}
		fmt.Fprintf(&out, "- `%s` %s\n  - caption: %s\n  - provenance: %s\n  - license: %s\n",
			fig.FigureID, fig.FigurePath, caption, fig.Provenance, license)
	}

	return out.String()
}

// BuildDigest renders the ranked-evidence digest: the top verified claims
// with enough anchor detail to spot-check each one by hand.
func BuildDigest(query string, ranked []types.EvidenceLedgerRow) string {
	var out strings.Builder
	fmt.Fprintf(&out, "# Digest for query: %s\n\n", query)
	out.WriteString("## Top Evidence\n\n")

	shown := 0
	for _, claim := range ranked {
		if claim.IsSentinel() {
			continue
		}
		shown++
		if shown > 20 {
			break
		}
		fmt.Fprintf(&out, "%d. %s\n   - claim_id: `%s`\n   - doc_id: `%s` doi=%s pmid=%s\n   - anchor: %s\n   - quote: %q\n",
			shown, claim.ClaimText, claim.ClaimID, claim.DocID,
			strOrNone(claim.DOI), strOrNone(claim.PMID), rowAnchor(&claim), claim.AnchorQuote)
	}
	return out.String()
}

func citationAnchor(c *types.Citation) string {
	if c.AnchorType == types.AnchorPDF {
		page := 0
		if c.PageNumber != nil {
			page = *c.PageNumber
		}
		return fmt.Sprintf("page %d", page)
	}
	if c.SectionHeading != nil {
		return *c.SectionHeading
	}
	return "Unknown section"
}

func rowAnchor(row *types.EvidenceLedgerRow) string {
	if row.AnchorType == types.AnchorPDF {
		page := 0
		if row.PageNumber != nil {
			page = *row.PageNumber
		}
		return fmt.Sprintf("page %d", page)
	}
	if row.SectionHeading != nil {
		return *row.SectionHeading
	}
	return "Unknown section"
}
