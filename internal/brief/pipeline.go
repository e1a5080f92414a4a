// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brief

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/internal/artifact"
	"github.com/pdiddy/evidence-engine/internal/docstore"
	"github.com/pdiddy/evidence-engine/internal/layout"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// GenerateDigest ranks the evidence ledger for query and writes the digest
// markdown, the composed brief.json, and the access-needed stub list. The
// brief slug is returned; pass slug == "" to derive it from the query.
func GenerateDigest(repo docstore.Repo, paths layout.Paths, query, slug string, cfg types.BriefConfig) (string, error) {
	ledger, err := artifact.ReadJSONL[types.EvidenceLedgerRow](paths.EvidenceLedgerPath())
	if err != nil {
		return "", err
	}
	figures, err := artifact.ReadJSONL[types.FigureIndexRow](paths.FiguresIndexPath())
	if err != nil {
		return "", err
	}
	docs, err := repo.List()
	if err != nil {
		return "", err
	}

	docByID := make(map[string]*types.Document, len(docs))
	for i := range docs {
		docByID[docs[i].DocID] = &docs[i]
	}
	ranked := RankLedger(ledger, docByID, query)

	if err := artifact.WriteAtomic(paths.DigestPath(), []byte(BuildDigest(query, ranked))); err != nil {
		return "", err
	}

	if slug == "" {
		slug = Slugify(query)
	}
	briefDir := paths.BriefDir(slug)
	if err := os.MkdirAll(briefDir, 0o755); err != nil {
		return "", err
	}
	b := Compose(slug, query, ranked, figures, cfg.MaxTakeaways, cfg.MaxKeyFigures)
	if err := artifact.WriteJSON(filepath.Join(briefDir, "brief.json"), &b); err != nil {
		return "", err
	}

	stubs, err := docstore.ListAccessNeeded(repo)
	if err != nil {
		return "", err
	}
	raw, err := yaml.Marshal(stubs)
	if err != nil {
		return "", fmt.Errorf("marshaling access-needed stubs: %w", err)
	}
	if err := artifact.WriteAtomic(paths.StubsPath(), raw); err != nil {
		return "", err
	}

	return slug, nil
}

// Finalize bundles figures and sources into the brief directory, runs both
// validators, and renders brief.md. Validation failures abort before any
// rendering; no partial brief is ever published.
func Finalize(repo docstore.Repo, paths layout.Paths, slug string, cfg types.BriefConfig) (string, error) {
	briefDir := paths.BriefDir(slug)
	briefJSONPath := filepath.Join(briefDir, "brief.json")

	var b types.Brief
	if err := artifact.ReadJSON(briefJSONPath, &b); err != nil {
		return "", err
	}
	ledger, err := artifact.ReadJSONL[types.EvidenceLedgerRow](paths.EvidenceLedgerPath())
	if err != nil {
		return "", err
	}
	figures, err := artifact.ReadJSONL[types.FigureIndexRow](paths.FiguresIndexPath())
	if err != nil {
		return "", err
	}
	docs, err := repo.List()
	if err != nil {
		return "", err
	}
	docPtrs := make([]*types.Document, len(docs))
	for i := range docs {
		docPtrs[i] = &docs[i]
	}

	if err := IntegrateFiguresAndSources(&b, docPtrs, figures, briefDir, cfg.TopKSources, cfg.MaxKeyFigures); err != nil {
		return "", err
	}
	if err := ValidateBrief(&b, ledger); err != nil {
		return "", err
	}
	if err := ValidateBriefFigures(&b, figures); err != nil {
		return "", err
	}

	mdPath := filepath.Join(briefDir, "brief.md")
	if err := artifact.WriteAtomic(mdPath, []byte(RenderMarkdown(&b))); err != nil {
		return "", err
	}
	if err := artifact.WriteJSON(briefJSONPath, &b); err != nil {
		return "", err
	}
	return mdPath, nil
}
