// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout centralizes the on-disk data directory scheme.
// Implements: prd001-identity R1.1; docs/ARCHITECTURE § Data Layout.
package layout

import "path/filepath"

// Paths derives every pipeline location from a single data root:
//
//	<root>/index/evidence.db      document store
//	<root>/docs/<doc_id>/         retrieved/ingested source files + figures
//	<root>/artifacts/             ledger, figure index, digest, stubs
//	<root>/briefs/<slug>/         brief.json, brief.md, sources/, figures/
type Paths struct {
	Root string
}

// New returns a Paths rooted at dataDir.
func New(dataDir string) Paths {
	return Paths{Root: dataDir}
}

// IndexDir is the directory holding the document store database.
func (p Paths) IndexDir() string {
	return filepath.Join(p.Root, "index")
}

// DocDir is the per-document directory for source files and extracted figures.
func (p Paths) DocDir(docID string) string {
	return filepath.Join(p.Root, "docs", docID)
}

// FigureDir is the per-document directory for extracted figure assets.
func (p Paths) FigureDir(docID string) string {
	return filepath.Join(p.DocDir(docID), "figures")
}

// ArtifactsDir holds run artifacts (ledger, figure index, digest).
func (p Paths) ArtifactsDir() string {
	return filepath.Join(p.Root, "artifacts")
}

// EvidenceLedgerPath is the newline-delimited JSON evidence ledger.
func (p Paths) EvidenceLedgerPath() string {
	return filepath.Join(p.ArtifactsDir(), "evidence_ledger.jsonl")
}

// FiguresIndexPath is the newline-delimited JSON figure index.
func (p Paths) FiguresIndexPath() string {
	return filepath.Join(p.ArtifactsDir(), "figures_index.jsonl")
}

// SearchOutputPath is the raw pre-dedup search result artifact.
func (p Paths) SearchOutputPath() string {
	return filepath.Join(p.ArtifactsDir(), "search.json")
}

// DigestPath is the ranked-claim digest markdown.
func (p Paths) DigestPath() string {
	return filepath.Join(p.ArtifactsDir(), "digest.md")
}

// StubsPath lists documents still needing access.
func (p Paths) StubsPath() string {
	return filepath.Join(p.ArtifactsDir(), "access_needed.yaml")
}

// BriefDir is the per-brief output directory.
func (p Paths) BriefDir(slug string) string {
	return filepath.Join(p.Root, "briefs", slug)
}
