// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-engine/internal/brief"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Rank the evidence ledger and compose a draft brief",
	Long: `Digest ranks the evidence ledger against a clinical question, writes the
ranked digest artifact, and composes a draft brief (takeaways, citations,
key figures) under briefs/<slug>/.`,
	RunE: runDigest,
}

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Bundle sources and figures and validate the brief",
	Long: `Brief finalizes a composed brief: it copies the top cited documents'
source files and the brief's figures into the brief directory, validates the
citation and anchor closed loop against the ledger, and renders brief.md.
Any integrity violation aborts publication.`,
	RunE: runBrief,
}

func init() {
	digestCmd.Flags().String("query", "", "clinical question to rank against (required)")
	digestCmd.Flags().String("slug", "", "brief directory slug (default: slugified query)")
	digestCmd.Flags().Int("takeaways", 0, "number of top-ranked claims in the brief")

	briefCmd.Flags().String("slug", "", "brief directory slug (required)")
	briefCmd.Flags().Int("figures", 0, "number of figures bundled with the brief")

	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(briefCmd)
}

// briefConfig merges flag overrides onto config-file defaults.
func briefConfig(takeaways, figures int) types.BriefConfig {
	cfg := types.BriefConfig{
		MaxTakeaways:  viper.GetInt("brief.max_takeaways"),
		MaxKeyFigures: viper.GetInt("brief.max_key_figures"),
		TopKSources:   viper.GetInt("brief.top_k_sources"),
	}
	if cfg.MaxTakeaways == 0 {
		cfg.MaxTakeaways = 8
	}
	if cfg.MaxKeyFigures == 0 {
		cfg.MaxKeyFigures = 4
	}
	if cfg.TopKSources == 0 {
		cfg.TopKSources = 3
	}
	if takeaways > 0 {
		cfg.MaxTakeaways = takeaways
	}
	if figures > 0 {
		cfg.MaxKeyFigures = figures
	}
	return cfg
}

func runDigest(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	slug, _ := cmd.Flags().GetString("slug")
	takeaways, _ := cmd.Flags().GetInt("takeaways")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	slug, err = brief.GenerateDigest(store, dataPaths(), query, slug, briefConfig(takeaways, 0))
	if err != nil {
		return err
	}
	logger.Info().Str("slug", slug).Msg("digest and draft brief written")
	return nil
}

func runBrief(cmd *cobra.Command, args []string) error {
	slug, _ := cmd.Flags().GetString("slug")
	figures, _ := cmd.Flags().GetInt("figures")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := brief.Finalize(store, dataPaths(), slug, briefConfig(0, figures))
	if err != nil {
		return err
	}
	logger.Info().Str("brief", path).Msg("brief validated and rendered")
	return nil
}
