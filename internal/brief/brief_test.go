package brief

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/evidence-engine/internal/artifact"
	"github.com/pdiddy/evidence-engine/internal/docstore"
	"github.com/pdiddy/evidence-engine/internal/layout"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

func fixedNow(t *testing.T) {
	t.Helper()
	old := nowFunc
	nowFunc = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = old })
}

func ledgerRow(claimID, docID, text string, mutate func(*types.EvidenceLedgerRow)) types.EvidenceLedgerRow {
	row := types.EvidenceLedgerRow{
		ClaimID:     claimID,
		DocID:       docID,
		SourceType:  "oa",
		LocalPath:   "/data/docs/" + docID + "/paper.pdf",
		RetrievedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		AnchorType:  types.AnchorPDF,
		PageNumber:  intptr(5),
		AnchorQuote: text,
		ClaimText:   text,
		ClaimType:   types.ClaimOutcome,
	}
	if mutate != nil {
		mutate(&row)
	}
	return row
}

// --- scoring ---

func TestScoreClaim(t *testing.T) {
	fixedNow(t)

	sentinel := ledgerRow("c1", "d1", types.SentinelClaimText, nil)
	assert.Equal(t, 0.0, ScoreClaim(&sentinel, nil, "anything"))

	plain := ledgerRow("c2", "d1", "Symptoms resolved early.", nil)
	assert.Equal(t, 1.0, ScoreClaim(&plain, nil, ""))

	rct := ledgerRow("c3", "d1", "A randomized trial with RCT design.", nil)
	// randomized and rct share one bonus tier, counted once.
	assert.InDelta(t, 3.5, ScoreClaim(&rct, nil, ""), 1e-9)

	guideline := ledgerRow("c4", "d1", "Guideline-based prospective care.", nil)
	assert.InDelta(t, 1.0+3.0+1.5, ScoreClaim(&guideline, nil, ""), 1e-9)

	query := ledgerRow("c5", "d1", "Resection margins were clear.", nil)
	assert.InDelta(t, 1.0+0.4, ScoreClaim(&query, nil, "resection margins safety"), 1e-9)

	recent := ledgerRow("c6", "d1", "Symptoms resolved early.", nil)
	doc := &types.Document{DocID: "d1", Year: intptr(2024)}
	// years_old = 2, recency = (10 - 1) * 0.1.
	assert.InDelta(t, 1.0+0.9, ScoreClaim(&recent, doc, ""), 1e-9)

	future := &types.Document{DocID: "d1", Year: intptr(2030)}
	assert.InDelta(t, 1.0+1.0, ScoreClaim(&recent, future, ""), 1e-9)
}

func TestRankLedgerStable(t *testing.T) {
	fixedNow(t)
	rows := []types.EvidenceLedgerRow{
		ledgerRow("c1", "d1", "Plain first claim text here.", nil),
		ledgerRow("c2", "d1", "Plain second claim text here.", nil),
		ledgerRow("c3", "d1", "A randomized trial result.", nil),
	}

	ranked := RankLedger(rows, nil, "")
	require.Len(t, ranked, 3)
	assert.Equal(t, "c3", ranked[0].ClaimID)
	// Equal-score rows keep ledger order.
	assert.Equal(t, "c1", ranked[1].ClaimID)
	assert.Equal(t, "c2", ranked[2].ClaimID)

	again := RankLedger(rows, nil, "")
	assert.Equal(t, ranked, again)
}

// --- composition ---

func TestComposeFiltersSentinelAndCaps(t *testing.T) {
	fixedNow(t)
	rows := []types.EvidenceLedgerRow{
		ledgerRow("c1", "d1", "First verified claim text.", nil),
		ledgerRow("c2", "d1", types.SentinelClaimText, func(r *types.EvidenceLedgerRow) {
			r.Errors = []string{"anchor_quote_not_found"}
		}),
		ledgerRow("c3", "d2", "Second verified claim text.", nil),
		ledgerRow("c4", "d2", "Third verified claim text.", nil),
	}
	figures := []types.FigureIndexRow{
		{FigureID: "f1", DocID: "d1", FigurePath: "/x/f1.png", SourceType: "pdf", PageNumber: intptr(2)},
		{FigureID: "f2", DocID: "d2", FigurePath: "/x/f2.png", SourceType: "jats", XMLFigID: strptr("F2")},
	}

	b := Compose("slug", "query", rows, figures, 2, 1)

	require.Len(t, b.Takeaways, 2)
	assert.Equal(t, "First verified claim text.", b.Takeaways[0].Text)
	assert.Equal(t, []string{"c1"}, b.Takeaways[0].CitationIDs)
	assert.Equal(t, "Second verified claim text.", b.Takeaways[1].Text)

	require.Len(t, b.Citations, 2)
	assert.Equal(t, "c1", b.Citations[0].ClaimID)
	assert.Equal(t, intptr(5), b.Citations[0].PageNumber)

	require.Len(t, b.KeyFigures, 1)
	assert.Equal(t, "f1", b.KeyFigures[0].FigureID)
	assert.Contains(t, b.KeyFigures[0].Provenance, "page=2")
}

func TestComposeZeroCapsYieldNothing(t *testing.T) {
	fixedNow(t)
	rows := []types.EvidenceLedgerRow{
		ledgerRow("c1", "d1", "First verified claim text.", nil),
	}
	figures := []types.FigureIndexRow{
		{FigureID: "f1", DocID: "d1", FigurePath: "/x/f1.png", SourceType: "pdf", PageNumber: intptr(2)},
	}

	b := Compose("slug", "query", rows, figures, 0, 0)

	assert.Empty(t, b.Takeaways)
	assert.Empty(t, b.Citations)
	assert.Empty(t, b.KeyFigures)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "vestibular-schwannoma-outcomes", Slugify("Vestibular Schwannoma: Outcomes!"))
	assert.Equal(t, "a-b", Slugify("--a---b--"))
	assert.Equal(t, "", Slugify("???"))
}

// --- figure and source integration ---

func TestIntegrateFiguresAndSources(t *testing.T) {
	dir := t.TempDir()
	pdf1 := filepath.Join(dir, "d1.pdf")
	require.NoError(t, os.WriteFile(pdf1, []byte("pdf one"), 0o644))
	fig1 := filepath.Join(dir, "fig1.png")
	require.NoError(t, os.WriteFile(fig1, []byte("figure one"), 0o644))

	docs := []*types.Document{
		{DocID: "d1", LocalPDFPath: &pdf1},
		{DocID: "d2"},
	}
	figures := []types.FigureIndexRow{
		{FigureID: "f1", DocID: "d1", FigurePath: fig1, SourceType: "pdf", PageNumber: intptr(1)},
		{FigureID: "f2", DocID: "d2", FigurePath: filepath.Join(dir, "gone.png"), SourceType: "pdf", PageNumber: intptr(1)},
		{FigureID: "f3", DocID: "d9", FigurePath: fig1, SourceType: "pdf", PageNumber: intptr(1)},
	}
	b := types.Brief{
		Citations: []types.Citation{
			{ClaimID: "c1", DocID: "d1"},
			{ClaimID: "c2", DocID: "d1"},
			{ClaimID: "c3", DocID: "d2"},
		},
	}

	briefDir := filepath.Join(dir, "brief")
	require.NoError(t, IntegrateFiguresAndSources(&b, docs, figures, briefDir, 2, 4))

	// d1's pdf lands in sources; d2 has no files, which is fine.
	assert.FileExists(t, filepath.Join(briefDir, "sources", "d1.pdf"))

	// f1 is copied and re-pathed; f2's file is missing so it is skipped;
	// f3 belongs to an unselected document.
	require.Len(t, b.KeyFigures, 1)
	assert.Equal(t, "f1", b.KeyFigures[0].FigureID)
	assert.Equal(t, filepath.Join(briefDir, "figures", "fig1.png"), b.KeyFigures[0].FigurePath)
	assert.FileExists(t, b.KeyFigures[0].FigurePath)
}

func TestIntegrateFiguresRanksDocsByCitationCount(t *testing.T) {
	dir := t.TempDir()
	figA := filepath.Join(dir, "a.png")
	figB := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(figA, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(figB, []byte("b"), 0o644))

	figures := []types.FigureIndexRow{
		{FigureID: "fa", DocID: "dA", FigurePath: figA, SourceType: "pdf", PageNumber: intptr(1)},
		{FigureID: "fb", DocID: "dB", FigurePath: figB, SourceType: "pdf", PageNumber: intptr(1)},
	}
	b := types.Brief{
		Citations: []types.Citation{
			{ClaimID: "c1", DocID: "dA"},
			{ClaimID: "c2", DocID: "dB"},
			{ClaimID: "c3", DocID: "dB"},
		},
	}

	require.NoError(t, IntegrateFiguresAndSources(&b, nil, figures, filepath.Join(dir, "brief"), 1, 4))

	// Only dB makes the top-1 cut, so only its figure is bundled.
	require.Len(t, b.KeyFigures, 1)
	assert.Equal(t, "fb", b.KeyFigures[0].FigureID)
}

func TestIntegrateFiguresZeroCapBundlesNone(t *testing.T) {
	dir := t.TempDir()
	figA := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(figA, []byte("a"), 0o644))

	figures := []types.FigureIndexRow{
		{FigureID: "fa", DocID: "dA", FigurePath: figA, SourceType: "pdf", PageNumber: intptr(1)},
	}
	b := types.Brief{
		Citations: []types.Citation{{ClaimID: "c1", DocID: "dA"}},
	}

	require.NoError(t, IntegrateFiguresAndSources(&b, nil, figures, filepath.Join(dir, "brief"), 1, 0))
	assert.Empty(t, b.KeyFigures)
}

// --- validation ---

func validBriefAndLedger() (types.Brief, []types.EvidenceLedgerRow) {
	ledger := []types.EvidenceLedgerRow{
		ledgerRow("c1", "d1", "Verified claim one text.", nil),
		ledgerRow("c2", "d1", "Verified claim two text.", func(r *types.EvidenceLedgerRow) {
			r.AnchorType = types.AnchorXML
			r.PageNumber = nil
			r.SectionHeading = strptr("Results")
		}),
	}
	b := types.Brief{
		Slug:  "test",
		Query: "q",
		Takeaways: []types.Takeaway{
			{Text: "Verified claim one text.", CitationIDs: []string{"c1"}},
			{Text: "Verified claim two text.", CitationIDs: []string{"c2"}},
		},
		Citations: []types.Citation{
			{ClaimID: "c1", DocID: "d1", AnchorType: types.AnchorPDF, PageNumber: intptr(5), AnchorQuote: "Verified claim one text."},
			{ClaimID: "c2", DocID: "d1", AnchorType: types.AnchorXML, SectionHeading: strptr("Results"), AnchorQuote: "Verified claim two text."},
		},
	}
	return b, ledger
}

func TestValidateBriefClosedLoop(t *testing.T) {
	b, ledger := validBriefAndLedger()
	require.NoError(t, ValidateBrief(&b, ledger))

	t.Run("empty citations", func(t *testing.T) {
		bad, _ := validBriefAndLedger()
		bad.Takeaways[0].CitationIDs = nil
		var verr *ViolationError
		require.ErrorAs(t, ValidateBrief(&bad, ledger), &verr)
		assert.Equal(t, ViolationEmptyCitations, verr.Code)
	})

	t.Run("citation missing from brief", func(t *testing.T) {
		bad, _ := validBriefAndLedger()
		bad.Citations = bad.Citations[1:]
		var verr *ViolationError
		require.ErrorAs(t, ValidateBrief(&bad, ledger), &verr)
		assert.Equal(t, ViolationCitationMissingFromBrief, verr.Code)
		assert.Equal(t, "c1", verr.ID)
	})

	t.Run("citation missing from ledger", func(t *testing.T) {
		bad, _ := validBriefAndLedger()
		var verr *ViolationError
		require.ErrorAs(t, ValidateBrief(&bad, ledger[1:]), &verr)
		assert.Equal(t, ViolationCitationMissingFromLedger, verr.Code)
	})

	t.Run("page mutation breaks anchor", func(t *testing.T) {
		bad, _ := validBriefAndLedger()
		bad.Citations[0].PageNumber = intptr(99)
		var verr *ViolationError
		require.ErrorAs(t, ValidateBrief(&bad, ledger), &verr)
		assert.Equal(t, ViolationAnchorMismatch, verr.Code)
		assert.Equal(t, "c1", verr.ID)
	})

	t.Run("section mutation breaks anchor", func(t *testing.T) {
		bad, _ := validBriefAndLedger()
		bad.Citations[1].SectionHeading = strptr("Discussion")
		var verr *ViolationError
		require.ErrorAs(t, ValidateBrief(&bad, ledger), &verr)
		assert.Equal(t, ViolationAnchorMismatch, verr.Code)
	})

	t.Run("quote mutation", func(t *testing.T) {
		bad, _ := validBriefAndLedger()
		bad.Citations[0].AnchorQuote = "A different quote."
		var verr *ViolationError
		require.ErrorAs(t, ValidateBrief(&bad, ledger), &verr)
		assert.Equal(t, ViolationQuoteMismatch, verr.Code)
	})
}

func TestValidateBriefFigures(t *testing.T) {
	dir := t.TempDir()
	figPath := filepath.Join(dir, "fig.png")
	require.NoError(t, os.WriteFile(figPath, []byte("png"), 0o644))

	b := types.Brief{
		KeyFigures: []types.KeyFigure{{FigureID: "f1", DocID: "d1", FigurePath: figPath}},
	}
	index := []types.FigureIndexRow{{FigureID: "f1", DocID: "d1", FigurePath: figPath, SourceType: "pdf", PageNumber: intptr(1)}}

	require.NoError(t, ValidateBriefFigures(&b, index))

	var verr *ViolationError
	require.ErrorAs(t, ValidateBriefFigures(&b, nil), &verr)
	assert.Equal(t, ViolationFigureMissingFromIndex, verr.Code)

	require.NoError(t, os.Remove(figPath))
	require.ErrorAs(t, ValidateBriefFigures(&b, index), &verr)
	assert.Equal(t, ViolationFigureFileMissing, verr.Code)
	assert.Equal(t, "f1", verr.ID)
}

// --- digest + finalize ---

func TestGenerateDigestAndFinalize(t *testing.T) {
	fixedNow(t)
	root := t.TempDir()
	paths := layout.New(root)

	store, err := docstore.NewStore(paths.IndexDir())
	require.NoError(t, err)
	defer store.Close()

	docDir := paths.DocDir("doc_1")
	require.NoError(t, os.MkdirAll(docDir, 0o755))
	pdfPath := filepath.Join(docDir, "paper.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF"), 0o644))

	doc := &types.Document{
		DocID:        "doc_1",
		Title:        "Outcomes after resection",
		Year:         intptr(2024),
		AddedVia:     "oa",
		LocalPDFPath: &pdfPath,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.Insert(doc))

	figPath := filepath.Join(paths.FigureDir("doc_1"), "fig.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(figPath), 0o755))
	require.NoError(t, os.WriteFile(figPath, []byte("png"), 0o644))

	ledger := []types.EvidenceLedgerRow{
		ledgerRow("c1", "doc_1", "A randomized trial reduced complications.", nil),
		ledgerRow("c2", "doc_1", types.SentinelClaimText, func(r *types.EvidenceLedgerRow) {
			r.Errors = []string{"anchor_quote_not_found"}
		}),
	}
	figures := []types.FigureIndexRow{
		{FigureID: "f1", DocID: "doc_1", LocalDocPath: pdfPath, FigurePath: figPath,
			SourceType: "pdf", PageNumber: intptr(1), RetrievedAt: time.Now().UTC()},
	}
	require.NoError(t, artifact.WriteJSONL(paths.EvidenceLedgerPath(), ledger))
	require.NoError(t, artifact.WriteJSONL(paths.FiguresIndexPath(), figures))

	cfg := types.BriefConfig{MaxTakeaways: 8, MaxKeyFigures: 4, TopKSources: 3}
	slug, err := GenerateDigest(store, paths, "complication outcomes", "", cfg)
	require.NoError(t, err)
	assert.Equal(t, "complication-outcomes", slug)

	digest, err := os.ReadFile(paths.DigestPath())
	require.NoError(t, err)
	assert.Contains(t, string(digest), "A randomized trial reduced complications.")
	assert.NotContains(t, string(digest), types.SentinelClaimText)

	var b types.Brief
	require.NoError(t, artifact.ReadJSON(filepath.Join(paths.BriefDir(slug), "brief.json"), &b))
	require.Len(t, b.Takeaways, 1)

	mdPath, err := Finalize(store, paths, slug, cfg)
	require.NoError(t, err)
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Evidence Brief: complication outcomes")
	assert.Contains(t, string(md), "`c1`")

	// The finalized brief carries the bundled figure copy.
	require.NoError(t, artifact.ReadJSON(filepath.Join(paths.BriefDir(slug), "brief.json"), &b))
	require.Len(t, b.KeyFigures, 1)
	assert.FileExists(t, b.KeyFigures[0].FigurePath)
	assert.FileExists(t, filepath.Join(paths.BriefDir(slug), "sources", "paper.pdf"))
}
