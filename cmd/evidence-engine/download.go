// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/docstore"
	"github.com/pdiddy/evidence-engine/internal/download"
	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download open-access full text for stored documents",
	Long: `Download fetches full text for documents that have an OA URL or Europe PMC
id but no local file yet. Fetched bodies are sniffed for format (JATS XML or
PDF), written under the document's directory, and recorded on the canonical
record.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("doc-ids", "", "restrict to a comma-separated doc id list")
	downloadCmd.Flags().Int("max", 0, "cap on documents fetched this run (0 = no cap)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	docIDs, _ := cmd.Flags().GetString("doc-ids")
	maxDocs, _ := cmd.Flags().GetInt("max")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: defaultUserAgent},
		MaxDocs:    maxDocs,
	}
	summary, err := download.Run(
		cmd.Context(),
		docstore.NewResolver(store),
		httputil.NewClient(cfg.HTTPConfig),
		dataPaths(),
		cfg,
		docIDs,
		os.Stderr,
	)
	if err != nil {
		return err
	}

	logger.Info().
		Int("downloaded", summary.Downloaded).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("OA download complete")
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed download", summary.Failed)
	}
	return nil
}
