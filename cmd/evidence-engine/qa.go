// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/internal/qa"
)

var qaCmd = &cobra.Command{
	Use:   "qa",
	Short: "Report run quality metrics and gate strict runs",
	Long: `QA reports unique studies, duplicates removed, OA retrieval rate,
extraction success rate, and the unanchored claim count. With --strict (or
qa.strict in config) any unanchored claim fails the run.`,
	RunE: runQA,
}

func init() {
	qaCmd.Flags().Bool("strict", false, "fail when any claim is unanchored")

	rootCmd.AddCommand(qaCmd)
}

func runQA(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := qa.BuildReport(store, dataPaths())
	if err != nil {
		return err
	}
	if err := yaml.NewEncoder(os.Stdout).Encode(report); err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	if !cmd.Flags().Changed("strict") {
		strict = viper.GetBool("qa.strict")
	}
	return qa.Gate(report, strict)
}
