// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package brief turns the evidence ledger into the published artifact: claims
// are ranked against the query, the best become takeaways with citations and
// key figures, and the result is validated against the ledger before any
// rendering happens.
// Implements: prd003-brief (R1-R4);
//
//	docs/ARCHITECTURE § Synthesis.
package brief

import (
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// nowFunc is swapped in tests so recency scoring and generation timestamps
// are reproducible.
var nowFunc = time.Now

// evidenceBonuses rewards stronger study designs, checked on the case-folded
// claim text. Pure data, never mutated.
var evidenceBonuses = []struct {
	keywords []string
	bonus    float64
}{
	{[]string{"guideline"}, 3.0},
	{[]string{"randomized", "rct"}, 2.5},
	{[]string{"prospective"}, 1.5},
	{[]string{"retrospective"}, 0.8},
	{[]string{"case series"}, 0.3},
}

// ScoreClaim scores one ledger row for relevance to query (R1.1). Sentinel
// rows score 0. doc may be nil when the owning document is unknown; the
// recency term then contributes nothing.
func ScoreClaim(row *types.EvidenceLedgerRow, doc *types.Document, query string) float64 {
	if row.IsSentinel() {
		return 0
	}

	score := 1.0
	text := strings.ToLower(row.ClaimText)

	for _, b := range evidenceBonuses {
		for _, kw := range b.keywords {
			if strings.Contains(text, kw) {
				score += b.bonus
				break
			}
		}
	}

	for _, token := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(text, token) {
			score += 0.2
		}
	}

	if doc != nil && doc.Year != nil {
		yearsOld := float64(nowFunc().Year() - *doc.Year)
		if yearsOld < 0 {
			yearsOld = 0
		}
		recency := 10.0 - yearsOld/2.0
		if recency < 0 {
			recency = 0
		}
		score += recency * 0.1
	}

	return score
}

// RankLedger returns a copy of rows sorted by descending score; equal-score
// rows keep their ledger order (R1.2). docs maps doc ids to their canonical
// records for the recency term.
func RankLedger(rows []types.EvidenceLedgerRow, docs map[string]*types.Document, query string) []types.EvidenceLedgerRow {
	ranked := make([]types.EvidenceLedgerRow, len(rows))
	copy(ranked, rows)

	scores := make([]float64, len(ranked))
	for i := range ranked {
		scores[i] = ScoreClaim(&ranked[i], docs[ranked[i].DocID], query)
	}
	idx := make([]int, len(ranked))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	out := make([]types.EvidenceLedgerRow, len(ranked))
	for i, j := range idx {
		out[i] = ranked[j]
	}
	return out
}
