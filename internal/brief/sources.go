// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brief

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// IntegrateFiguresAndSources refines a composed brief in place (R2.2, R2.3):
// documents are ranked by how many citations they contribute, the top
// topKSources get their local PDF/XML copied into <briefDir>/sources, and up
// to maxFigures figures belonging to those documents are copied into
// <briefDir>/figures and become the brief's key figures. Source copies are
// best effort; a figure copy failure is fatal because a key figure entry
// pointing at a missing file would fail validation anyway.
func IntegrateFiguresAndSources(b *types.Brief, docs []*types.Document, figures []types.FigureIndexRow, briefDir string, topKSources, maxFigures int) error {
	counts := map[string]int{}
	var order []string
	for _, c := range b.Citations {
		if counts[c.DocID] == 0 {
			order = append(order, c.DocID)
		}
		counts[c.DocID]++
	}
	// Ties keep first-citation order.
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > topKSources {
		order = order[:topKSources]
	}
	selected := map[string]bool{}
	for _, id := range order {
		selected[id] = true
	}

	sourcesDir := filepath.Join(briefDir, "sources")
	figsDir := filepath.Join(briefDir, "figures")
	if err := os.MkdirAll(sourcesDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(figsDir, 0o755); err != nil {
		return err
	}

	docByID := map[string]*types.Document{}
	for _, d := range docs {
		docByID[d.DocID] = d
	}
	for _, docID := range order {
		doc := docByID[docID]
		if doc == nil {
			continue
		}
		// Source bundles are a convenience artifact; copy failures are not
		// fatal.
		if doc.LocalPDFPath != nil {
			copyBestEffort(*doc.LocalPDFPath, sourcesDir)
		}
		if doc.LocalXMLPath != nil {
			copyBestEffort(*doc.LocalXMLPath, sourcesDir)
		}
	}

	var keyFigures []types.KeyFigure
	for i := range figures {
		fig := &figures[i]
		if len(keyFigures) >= maxFigures {
			break
		}
		if !selected[fig.DocID] {
			continue
		}
		if _, err := os.Stat(fig.FigurePath); err != nil {
			continue
		}
		dst := filepath.Join(figsDir, filepath.Base(fig.FigurePath))
		if err := copyFile(fig.FigurePath, dst); err != nil {
			return fmt.Errorf("copying key figure %s: %w", fig.FigureID, err)
		}
		keyFigures = append(keyFigures, types.KeyFigure{
			FigureID:   fig.FigureID,
			DocID:      fig.DocID,
			FigurePath: dst,
			Caption:    fig.Caption,
			Provenance: figureProvenance(fig),
			License:    fig.License,
		})
	}
	b.KeyFigures = keyFigures
	return nil
}

func copyBestEffort(src, dstDir string) {
	if _, err := os.Stat(src); err != nil {
		return
	}
	_ = copyFile(src, filepath.Join(dstDir, filepath.Base(src)))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
