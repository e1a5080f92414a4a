// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// BatchSummary reports the outcome of an extraction run.
type BatchSummary struct {
	// Extracted is the number of documents that produced ledger rows.
	Extracted int
	// Skipped is the number of documents with no local full text.
	Skipped int
	// Failed is the number of documents whose extraction errored.
	Failed int
}

// Total returns the number of documents visited.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractBatch runs claim and figure extraction over docs, keeping results
// from documents that succeed even when others fail (R4.1). figureDirFor
// maps a doc id to the directory its copied figure assets go in. Progress
// lines are written to progress as each document completes.
func ExtractBatch(docs []*types.Document, figureDirFor func(docID string) string, progress io.Writer) ([]types.EvidenceLedgerRow, []types.FigureIndexRow, BatchSummary) {
	var (
		ledger  []types.EvidenceLedgerRow
		figures []types.FigureIndexRow
		summary BatchSummary
	)
	for _, doc := range docs {
		if !doc.HasLocalFile() {
			summary.Skipped++
			fmt.Fprintf(progress, "skip %s: no local full text\n", doc.DocID)
			continue
		}
		rows, figs, err := ExtractDocument(doc, figureDirFor(doc.DocID))
		if err != nil {
			summary.Failed++
			fmt.Fprintf(progress, "fail %s: %v\n", doc.DocID, err)
			continue
		}
		summary.Extracted++
		fmt.Fprintf(progress, "ok   %s: %d claims, %d figures\n", doc.DocID, len(rows), len(figs))
		ledger = append(ledger, rows...)
		figures = append(figures, figs...)
	}
	return ledger, figures, summary
}

// ExtractDocument produces ledger and figure rows for one document's local
// PDF and/or JATS XML.
func ExtractDocument(doc *types.Document, figureDir string) ([]types.EvidenceLedgerRow, []types.FigureIndexRow, error) {
	var (
		ledger  []types.EvidenceLedgerRow
		figures []types.FigureIndexRow
	)
	if doc.LocalPDFPath != nil {
		pages, err := ExtractPDFPages(*doc.LocalPDFPath)
		if err != nil {
			return nil, nil, fmt.Errorf("doc %s: %w", doc.DocID, err)
		}
		for _, page := range pages {
			n := page.Number
			ledger = append(ledger, rowsFromText(doc, *doc.LocalPDFPath, types.AnchorPDF, &n, nil, page.Text)...)
		}
		figs, err := ExtractPDFFigures(doc, *doc.LocalPDFPath, figureDir)
		if err != nil {
			return nil, nil, fmt.Errorf("doc %s: %w", doc.DocID, err)
		}
		figures = append(figures, figs...)
	}
	if doc.LocalXMLPath != nil {
		sections, err := ExtractXMLSections(*doc.LocalXMLPath)
		if err != nil {
			return nil, nil, fmt.Errorf("doc %s: %w", doc.DocID, err)
		}
		for _, sec := range sections {
			heading := sec.Heading
			ledger = append(ledger, rowsFromText(doc, *doc.LocalXMLPath, types.AnchorXML, nil, &heading, sec.Body)...)
		}
		figs, err := ExtractJATSFigures(doc, *doc.LocalXMLPath, figureDir)
		if err != nil {
			return nil, nil, fmt.Errorf("doc %s: %w", doc.DocID, err)
		}
		figures = append(figures, figs...)
	}
	return ledger, figures, nil
}

// rowsFromText turns one page or section of source text into ledger rows,
// one per candidate sentence. Unverified candidates are kept with the
// sentinel claim text and their verification errors (R4.2).
func rowsFromText(doc *types.Document, localPath string, anchor types.AnchorType, pageNumber *int, sectionHeading *string, text string) []types.EvidenceLedgerRow {
	var rows []types.EvidenceLedgerRow
	for _, cand := range GenerateCandidates(text) {
		verify := Verify(cand, text)

		claimText := cand.Sentence
		var errs []string
		if !verify.Verified {
			claimText = types.SentinelClaimText
			errs = verify.Errors
		}
		quote := verify.AnchorQuote
		if quote == "" {
			quote = LimitQuoteWords(cand.Sentence, maxQuoteWords)
		}

		rows = append(rows, types.EvidenceLedgerRow{
			ClaimID:        newClaimID(),
			DocID:          doc.DocID,
			SourceType:     doc.AddedVia,
			DOI:            doc.DOI,
			PMID:           doc.PMID,
			URL:            doc.OAURL,
			LocalPath:      localPath,
			RetrievedAt:    nowFunc().UTC(),
			SHA256:         doc.SHA256,
			AnchorType:     anchor,
			PageNumber:     pageNumber,
			SectionHeading: sectionHeading,
			AnchorQuote:    quote,
			ClaimText:      claimText,
			ClaimType:      Classify(cand.Sentence),
			Numbers:        ParseNumbers(cand.Sentence),
			Errors:         errs,
		})
	}
	return rows
}

func newClaimID() string {
	return "claim_" + uuid.NewString()
}

// UnanchoredCount returns the number of sentinel rows in the ledger.
func UnanchoredCount(rows []types.EvidenceLedgerRow) int {
	n := 0
	for _, row := range rows {
		if row.IsSentinel() {
			n++
		}
	}
	return n
}

// SuccessRate returns the non-sentinel fraction of ledger rows, 0 for an
// empty ledger.
func SuccessRate(rows []types.EvidenceLedgerRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	ok := len(rows) - UnanchoredCount(rows)
	return float64(ok) / float64(len(rows))
}
