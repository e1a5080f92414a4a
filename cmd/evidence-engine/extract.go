// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/artifact"
	"github.com/pdiddy/evidence-engine/internal/docstore"
	"github.com/pdiddy/evidence-engine/internal/extract"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract anchored claims and figures into the evidence ledger",
	Long: `Extract reads each stored document's local full text (PDF page text and
JATS XML sections), generates claim candidates, verifies every claim's
anchor quote against the source, classifies claims, and writes the evidence
ledger and figure index artifacts. Rows that fail schema checks are demoted
to the sentinel; figure schema violations abort the run.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("doc-ids", "", "restrict to a comma-separated doc id list")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	docIDs, _ := cmd.Flags().GetString("doc-ids")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := docstore.ListForExtraction(store, docIDs)
	if err != nil {
		return err
	}
	targets := make([]*types.Document, len(docs))
	for i := range docs {
		targets[i] = &docs[i]
	}

	paths := dataPaths()
	rows, figures, summary := extract.ExtractBatch(targets, paths.FigureDir, os.Stderr)

	extract.EnforceLedgerSchema(rows)
	if err := extract.EnforceFigureSchema(figures); err != nil {
		return err
	}

	if err := artifact.WriteJSONL(paths.EvidenceLedgerPath(), rows); err != nil {
		return err
	}
	if err := artifact.WriteJSONL(paths.FiguresIndexPath(), figures); err != nil {
		return err
	}

	logger.Info().
		Int("documents", summary.Total()).
		Int("failed", summary.Failed).
		Int("evidence_rows", len(rows)).
		Int("figures", len(figures)).
		Int("unanchored", extract.UnanchoredCount(rows)).
		Msg("extraction complete")
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", summary.Failed)
	}
	return nil
}
