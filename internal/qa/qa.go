// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qa computes run-level quality metrics from the document store and
// the evidence ledger, and gates strict runs on unanchored claims.
// Implements: prd007-qa (R1-R2).
package qa

import (
	"fmt"
	"os"

	"github.com/pdiddy/evidence-engine/internal/artifact"
	"github.com/pdiddy/evidence-engine/internal/docstore"
	"github.com/pdiddy/evidence-engine/internal/extract"
	"github.com/pdiddy/evidence-engine/internal/layout"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// BuildReport assembles a QA report from the store, the search artifact, and
// the evidence ledger. Missing artifacts read as empty rather than erroring
// so the report can be produced at any pipeline stage.
func BuildReport(repo docstore.Repo, paths layout.Paths) (*types.QAReport, error) {
	docs, err := repo.List()
	if err != nil {
		return nil, err
	}
	unique := len(docs)

	// Without a search artifact there is nothing to dedup against.
	searchTotal := unique
	if _, err := os.Stat(paths.SearchOutputPath()); err == nil {
		var out types.SearchOutput
		if err := artifact.ReadJSON(paths.SearchOutputPath(), &out); err != nil {
			return nil, err
		}
		searchTotal = len(out.Results)
	}
	duplicates := searchTotal - unique
	if duplicates < 0 {
		duplicates = 0
	}

	oaTotal, oaRetrieved := 0, 0
	for _, d := range docs {
		if d.OAURL == nil {
			continue
		}
		oaTotal++
		if d.HasLocalFile() {
			oaRetrieved++
		}
	}
	oaRate := 0.0
	if oaTotal > 0 {
		oaRate = float64(oaRetrieved) / float64(oaTotal)
	}

	rows, err := artifact.ReadJSONL[types.EvidenceLedgerRow](paths.EvidenceLedgerPath())
	if err != nil {
		return nil, err
	}

	return &types.QAReport{
		UniqueStudies:         unique,
		DuplicatesRemoved:     duplicates,
		OARetrievalRate:       oaRate,
		ExtractionSuccessRate: extract.SuccessRate(rows),
		UnanchoredClaimCount:  extract.UnanchoredCount(rows),
	}, nil
}

// Gate enforces the strict quality bar: any unanchored claim fails the run.
// Non-strict runs always pass.
func Gate(report *types.QAReport, strict bool) error {
	if strict && report.UnanchoredClaimCount > 0 {
		return fmt.Errorf("qa gate failed: unanchored claim count is %d", report.UnanchoredClaimCount)
	}
	return nil
}
