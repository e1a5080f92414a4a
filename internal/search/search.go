// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries literature APIs and writes the raw result artifact.
// Deduplication is not done here: every result flows through the identity
// resolver, which owns canonicalization.
// Implements: prd004-search (R1-R5);
//
//	docs/ARCHITECTURE § Search.
package search

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/evidence-engine/internal/artifact"
	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/internal/layout"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Backend searches a single literature API. Each backend implements this
// interface per the Strategy pattern (R2.1).
type Backend interface {
	Name() string
	Search(ctx context.Context, query string) ([]types.SearchResult, error)
}

// nowFunc is swapped in tests for stable artifact timestamps.
var nowFunc = time.Now

// Backends builds the configured backend list. Order is fixed so the
// search artifact is reproducible across runs.
func Backends(cfg types.SearchConfig, client *httputil.Client) []Backend {
	var out []Backend
	if cfg.EnableOpenAlex {
		out = append(out, &OpenAlexBackend{Client: client, Email: cfg.Email, MaxResults: cfg.MaxResults})
	}
	if cfg.EnableEuropePMC {
		out = append(out, &EuropePMCBackend{Client: client, MaxResults: cfg.MaxResults})
	}
	return out
}

// Run fans the query out to each backend in order, concatenates the raw
// results, and writes the search.json artifact (R1.2). A failing backend is
// reported on progress and skipped; the run fails only when every backend
// fails.
func Run(ctx context.Context, query string, backends []Backend, paths layout.Paths, progress io.Writer) (*types.SearchOutput, error) {
	if query == "" {
		return nil, fmt.Errorf("query is empty: provide a research question")
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("no search backends enabled")
	}

	out := &types.SearchOutput{
		Query:       query,
		GeneratedAt: nowFunc().UTC(),
	}
	failed := 0
	for _, b := range backends {
		results, err := b.Search(ctx, query)
		if err != nil {
			failed++
			fmt.Fprintf(progress, "warning: backend %s failed: %v\n", b.Name(), err)
			continue
		}
		fmt.Fprintf(progress, "%s: %d results\n", b.Name(), len(results))
		out.Results = append(out.Results, results...)
	}
	if failed == len(backends) {
		return nil, fmt.Errorf("all %d search backends failed", failed)
	}

	if err := artifact.WriteJSON(paths.SearchOutputPath(), out); err != nil {
		return nil, err
	}
	return out, nil
}
