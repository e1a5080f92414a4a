// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/internal/docstore"
)

// openStore opens the document store under the current data layout. Callers
// must Close it.
func openStore() (*docstore.Store, error) {
	return docstore.NewStore(dataPaths().IndexDir())
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List documents in the store",
	Long: `Docs lists the canonical document records, newest first. With
--access-needed only documents lacking both an OA route and a local file
are shown.`,
	RunE: runDocs,
}

func init() {
	docsCmd.Flags().Bool("access-needed", false, "only show documents needing access")
	docsCmd.Flags().Bool("yaml", false, "dump full records as YAML")

	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	accessOnly, _ := cmd.Flags().GetBool("access-needed")
	asYAML, _ := cmd.Flags().GetBool("yaml")

	docs, err := store.List()
	if err != nil {
		return err
	}
	if accessOnly {
		filtered := docs[:0]
		for _, d := range docs {
			if d.AccessNeeded {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}

	if asYAML {
		return yaml.NewEncoder(os.Stdout).Encode(docs)
	}
	for _, d := range docs {
		doi := "-"
		if d.DOI != nil {
			doi = *d.DOI
		}
		local := " "
		if d.HasLocalFile() {
			local = "*"
		}
		fmt.Printf("%s %s  %-30s  %s\n", local, d.DocID, doi, d.Title)
	}
	return nil
}
