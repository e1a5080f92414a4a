// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download retrieves open-access full text for documents that have a
// retrieval route but no local file. Each document is fetched from its OA URL
// (falling back to the Europe PMC full-text endpoint), sniffed for format,
// written under the document's directory, and recorded on the canonical
// record.
// Implements: prd006-download (R1-R3);
//
//	docs/ARCHITECTURE § OA download.
package download

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/artifact"
	"github.com/pdiddy/evidence-engine/internal/docstore"
	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/internal/layout"
	"github.com/pdiddy/evidence-engine/internal/search"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// sniffLen bounds how much of the body is inspected for format detection.
const sniffLen = 200

// BatchSummary reports the outcome of a download pass.
type BatchSummary struct {
	// Downloaded is the number of documents that gained a local file.
	Downloaded int
	// Skipped is the number of candidates with no usable URL.
	Skipped int
	// Failed is the number of documents whose fetch or write errored.
	Failed int
}

// Total returns the number of candidate documents visited.
func (s BatchSummary) Total() int {
	return s.Downloaded + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Run downloads full text for every document needing it, continuing past
// per-document failures. docIDsCSV, when non-empty, restricts the candidate
// set to the listed doc ids.
func Run(ctx context.Context, resolver *docstore.Resolver, client *httputil.Client, paths layout.Paths, cfg types.DownloadConfig, docIDsCSV string, progress io.Writer) (BatchSummary, error) {
	docs, err := docstore.ListNeedingOA(resolver.Repo(), cfg.MaxDocs)
	if err != nil {
		return BatchSummary{}, err
	}
	if wanted := parseDocIDs(docIDsCSV); wanted != nil {
		filtered := docs[:0]
		for _, d := range docs {
			if wanted[d.DocID] {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}

	var summary BatchSummary
	for i := range docs {
		doc := &docs[i]
		url := retrievalURL(doc)
		if url == "" {
			summary.Skipped++
			continue
		}
		ext, err := fetchOne(ctx, resolver, client, paths, doc, url)
		if err != nil {
			summary.Failed++
			fmt.Fprintf(progress, "fail %s: %v\n", doc.DocID, err)
			continue
		}
		summary.Downloaded++
		fmt.Fprintf(progress, "ok   %s (%s)\n", doc.DocID, ext)
	}
	return summary, nil
}

func fetchOne(ctx context.Context, resolver *docstore.Resolver, client *httputil.Client, paths layout.Paths, doc *types.Document, url string) (string, error) {
	body, err := client.GetBytes(ctx, url)
	if err != nil {
		return "", err
	}

	ext := "pdf"
	if looksLikeXML(body) {
		ext = "xml"
	}

	dir := paths.DocDir(doc.DocID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	target := filepath.Join(dir, "document."+ext)
	if err := artifact.WriteAtomic(target, body); err != nil {
		return "", err
	}

	sha := artifact.SHA256Bytes(body)
	var pdfPath, xmlPath *string
	if ext == "pdf" {
		pdfPath = &target
	} else {
		xmlPath = &target
	}
	if err := resolver.UpdateLocalPaths(doc.DocID, pdfPath, xmlPath, &sha); err != nil {
		return "", err
	}
	return ext, nil
}

// retrievalURL picks the fetch URL for a document: the OA URL when present,
// otherwise the Europe PMC full-text endpoint.
func retrievalURL(doc *types.Document) string {
	if doc.OAURL != nil && *doc.OAURL != "" {
		return *doc.OAURL
	}
	if doc.EPMCID != nil && *doc.EPMCID != "" {
		return search.FullTextXMLURL(*doc.EPMCID)
	}
	return ""
}

// looksLikeXML sniffs the body prefix for an XML declaration or a JATS
// article root. Anything else is treated as PDF.
func looksLikeXML(body []byte) bool {
	preview := body
	if len(preview) > sniffLen {
		preview = preview[:sniffLen]
	}
	lower := strings.ToLower(string(bytes.ToValidUTF8(preview, nil)))
	return strings.Contains(lower, "<?xml") || strings.Contains(lower, "<article")
}

func parseDocIDs(csv string) map[string]bool {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	wanted := make(map[string]bool)
	for _, id := range strings.Split(csv, ",") {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}
	return wanted
}
