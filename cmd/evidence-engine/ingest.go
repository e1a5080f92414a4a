// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/docstore"
	"github.com/pdiddy/evidence-engine/internal/ingest"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest local PDF/XML files from an inbox directory",
	Long: `Ingest scans an inbox directory for PDF and XML files, sniffs DOI, PMID,
and title from the text, resolves each file to a canonical document, and
places it under the document's directory in the store.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("inbox", "data/inbox", "directory scanned for local files")
	ingestCmd.Flags().Bool("move", false, "move files out of the inbox instead of copying")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	inbox, _ := cmd.Flags().GetString("inbox")
	move, _ := cmd.Flags().GetBool("move")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := ingest.IngestInbox(
		docstore.NewResolver(store),
		dataPaths(),
		types.IngestConfig{InboxDir: inbox, Move: move},
		os.Stderr,
	)
	if err != nil {
		return err
	}

	logger.Info().
		Int("ingested", summary.Ingested).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("ingest complete")
	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed ingestion", summary.Failed)
	}
	return nil
}
