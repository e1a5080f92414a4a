// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brief

import (
	"fmt"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Compose builds a brief from ranked ledger rows (R2.1): sentinel rows are
// dropped, the first maxTakeaways become takeaways with one citation each,
// and up to maxFigures figures are taken in pool order. Figure and source
// refinement happens later in IntegrateFiguresAndSources.
func Compose(slug, query string, ranked []types.EvidenceLedgerRow, figures []types.FigureIndexRow, maxTakeaways, maxFigures int) types.Brief {
	var claims []types.EvidenceLedgerRow
	for _, row := range ranked {
		if len(claims) >= maxTakeaways {
			break
		}
		if row.IsSentinel() {
			continue
		}
		claims = append(claims, row)
	}

	takeaways := make([]types.Takeaway, 0, len(claims))
	citations := make([]types.Citation, 0, len(claims))
	for _, claim := range claims {
		takeaways = append(takeaways, types.Takeaway{
			Text:        claim.ClaimText,
			CitationIDs: []string{claim.ClaimID},
		})
		citations = append(citations, types.Citation{
			ClaimID:        claim.ClaimID,
			DocID:          claim.DocID,
			DOI:            claim.DOI,
			PMID:           claim.PMID,
			AnchorType:     claim.AnchorType,
			PageNumber:     claim.PageNumber,
			SectionHeading: claim.SectionHeading,
			AnchorQuote:    claim.AnchorQuote,
		})
	}

	var keyFigures []types.KeyFigure
	for _, fig := range figures {
		if len(keyFigures) >= maxFigures {
			break
		}
		keyFigures = append(keyFigures, types.KeyFigure{
			FigureID:   fig.FigureID,
			DocID:      fig.DocID,
			FigurePath: fig.FigurePath,
			Caption:    fig.Caption,
			Provenance: figureProvenance(&fig),
			License:    fig.License,
		})
	}

	return types.Brief{
		Slug:        slug,
		Query:       query,
		GeneratedAt: nowFunc().UTC(),
		Takeaways:   takeaways,
		Citations:   citations,
		KeyFigures:  keyFigures,
	}
}

// figureProvenance renders the free-text origin string for a figure.
func figureProvenance(fig *types.FigureIndexRow) string {
	locator := fmt.Sprintf("xml_fig_id=%s", strOrNone(fig.XMLFigID))
	if fig.PageNumber != nil {
		locator = fmt.Sprintf("page=%d", *fig.PageNumber)
	}
	return fmt.Sprintf("doi=%s pmid=%s %s source=%s license=%s",
		strOrNone(fig.DOI), strOrNone(fig.PMID), locator, fig.SourceType, strOrNone(fig.License))
}

// Slugify turns a free-text query into a filesystem-safe brief slug: runs of
// non-alphanumerics collapse to single hyphens.
func Slugify(input string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(input) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}

func strOrNone(s *string) string {
	if s == nil {
		return "none"
	}
	return *s
}
