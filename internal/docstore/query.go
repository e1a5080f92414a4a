// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// ListNeedingOA returns documents that have a retrieval route (OA URL or
// Europe PMC id) but no local file yet. max caps the result; 0 means no cap.
func ListNeedingOA(repo Repo, max int) ([]types.Document, error) {
	docs, err := repo.List()
	if err != nil {
		return nil, err
	}
	var out []types.Document
	for _, d := range docs {
		if d.HasLocalFile() {
			continue
		}
		if d.OAURL == nil && d.EPMCID == nil {
			continue
		}
		out = append(out, d)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out, nil
}

// ListForExtraction returns documents with at least one local rendition,
// optionally restricted to a comma-separated doc id list.
func ListForExtraction(repo Repo, docIDsCSV string) ([]types.Document, error) {
	docs, err := repo.List()
	if err != nil {
		return nil, err
	}

	var wanted map[string]bool
	if strings.TrimSpace(docIDsCSV) != "" {
		wanted = make(map[string]bool)
		for _, id := range strings.Split(docIDsCSV, ",") {
			if id = strings.TrimSpace(id); id != "" {
				wanted[id] = true
			}
		}
	}

	var out []types.Document
	for _, d := range docs {
		if !d.HasLocalFile() {
			continue
		}
		if wanted != nil && !wanted[d.DocID] {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// ListAccessNeeded returns documents flagged as needing access.
func ListAccessNeeded(repo Repo) ([]types.Document, error) {
	docs, err := repo.List()
	if err != nil {
		return nil, err
	}
	var out []types.Document
	for _, d := range docs {
		if d.AccessNeeded {
			out = append(out, d)
		}
	}
	return out, nil
}
