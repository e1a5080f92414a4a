// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// europePMCBase is the Europe PMC REST root. Declared as a var so tests can
// substitute an httptest server.
var europePMCBase = "https://www.ebi.ac.uk/europepmc/webservices/rest"

// EuropePMCBackend queries the Europe PMC API (R2.3). Europe PMC is the
// only backend that can hand back a JATS full-text URL directly, which the
// download stage prefers over publisher PDFs.
type EuropePMCBackend struct {
	Client     *httputil.Client
	MaxResults int
}

// Name returns the backend identifier.
func (b *EuropePMCBackend) Name() string { return "europepmc" }

// Search queries the Europe PMC search endpoint.
func (b *EuropePMCBackend) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	maxResults := b.MaxResults
	if maxResults <= 0 {
		maxResults = 25
	}
	if maxResults > 1000 {
		maxResults = 1000
	}

	params := url.Values{
		"query":    {query},
		"format":   {"json"},
		"pageSize": {fmt.Sprintf("%d", maxResults)},
	}

	var resp epmcResponse
	if err := b.Client.GetJSON(ctx, europePMCBase+"/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("Europe PMC search: %w", err)
	}

	var results []types.SearchResult
	for _, item := range resp.ResultList.Result {
		r := types.SearchResult{
			Source: "europepmc",
			Title:  item.Title,
		}
		if r.Title == "" {
			r.Title = "Untitled"
		}
		if item.DOI != "" {
			doi := item.DOI
			r.DOI = &doi
		}
		if item.PMID != "" {
			pmid := item.PMID
			r.PMID = &pmid
		}
		if item.ID != "" {
			id := item.ID
			r.EPMCID = &id
		}
		if item.JournalTitle != "" {
			journal := item.JournalTitle
			r.Journal = &journal
		}
		if year, err := strconv.Atoi(item.PubYear); err == nil {
			r.Year = &year
		}
		for _, a := range strings.Split(item.AuthorString, ",") {
			if a = strings.TrimSpace(a); a != "" {
				r.Authors = append(r.Authors, a)
			}
		}
		if item.AbstractText != "" {
			abstract := item.AbstractText
			r.Abstract = &abstract
		}
		// Open-access entries get the JATS full-text URL as their OA URL.
		if item.IsOpenAccess == "Y" && item.ID != "" {
			oaURL := FullTextXMLURL(item.ID)
			r.OAURL = &oaURL
		}
		if len(item.FullTextURLList.FullTextURL) > 0 {
			u := item.FullTextURLList.FullTextURL[0].URL
			if u != "" {
				r.URL = &u
			}
		}

		results = append(results, r)
	}
	return results, nil
}

// FullTextXMLURL returns the Europe PMC JATS full-text endpoint for an id.
func FullTextXMLURL(epmcID string) string {
	return europePMCBase + "/" + epmcID + "/fullTextXML"
}

// Europe PMC API JSON structures.
type epmcResponse struct {
	ResultList epmcResultList `json:"resultList"`
}

type epmcResultList struct {
	Result []epmcResult `json:"result"`
}

type epmcResult struct {
	ID              string           `json:"id"`
	DOI             string           `json:"doi"`
	PMID            string           `json:"pmid"`
	Title           string           `json:"title"`
	JournalTitle    string           `json:"journalTitle"`
	PubYear         string           `json:"pubYear"`
	AuthorString    string           `json:"authorString"`
	AbstractText    string           `json:"abstractText"`
	IsOpenAccess    string           `json:"isOpenAccess"`
	FullTextURLList epmcFullTextURLs `json:"fullTextUrlList"`
}

type epmcFullTextURLs struct {
	FullTextURL []epmcFullTextURL `json:"fullTextUrl"`
}

type epmcFullTextURL struct {
	URL string `json:"url"`
}
