// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-engine/internal/docstore"
	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/internal/search"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search literature APIs for candidate studies",
	Long: `Search queries literature APIs (OpenAlex, Europe PMC) for studies matching
a clinical question, writes the raw result list to the search artifact, and
resolves every result into the document store. Results matching an existing
document by DOI, PMID, or title merge into it instead of creating a
duplicate.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text clinical question (required)")
	searchCmd.Flags().Int("max-results", 25, "maximum results per backend")
	searchCmd.Flags().String("email", "", "contact email for polite-pool APIs (default: openalex-email secret)")
	searchCmd.Flags().Bool("no-openalex", false, "disable the OpenAlex backend")
	searchCmd.Flags().Bool("no-europepmc", false, "disable the Europe PMC backend")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	email, _ := cmd.Flags().GetString("email")
	noOpenAlex, _ := cmd.Flags().GetBool("no-openalex")
	noEuropePMC, _ := cmd.Flags().GetBool("no-europepmc")

	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: viper.GetFloat64("search.requests_per_second"),
		},
		MaxResults:      maxResults,
		EnableOpenAlex:  !noOpenAlex,
		EnableEuropePMC: !noEuropePMC,
		Email:           secretDefault("openalex-email", email),
	}

	paths := dataPaths()
	client := httputil.NewClient(cfg.HTTPConfig)
	backends := search.Backends(cfg, client)

	out, err := search.Run(cmd.Context(), query, backends, paths, os.Stderr)
	if err != nil {
		return err
	}
	logger.Info().Int("results", len(out.Results)).Msg("search complete")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	resolver := docstore.NewResolver(store)

	for i := range out.Results {
		if _, err := resolver.UpsertFromSearch(&out.Results[i]); err != nil {
			return err
		}
	}

	docs, err := store.List()
	if err != nil {
		return err
	}
	logger.Info().Int("unique_studies", len(docs)).Msg("results resolved into store")
	return nil
}
