// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest pulls local PDF/XML files from an inbox directory into the
// document store: identifiers are sniffed from the file text, the file is
// placed under the owning document's directory, and the canonical record
// gets its local paths and content hash.
// Implements: prd005-ingest (R1-R4);
//
//	docs/ARCHITECTURE § Ingest.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/internal/artifact"
	"github.com/pdiddy/evidence-engine/internal/docstore"
	"github.com/pdiddy/evidence-engine/internal/extract"
	"github.com/pdiddy/evidence-engine/internal/layout"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var (
	doiPattern  = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:A-Z0-9]+`)
	pmidPattern = regexp.MustCompile(`(?i)pmid\s*[: ]\s*(\d{5,9})`)
)

// minTitleLen is the shortest line accepted as a sniffed title.
const minTitleLen = 15

// BatchSummary reports the outcome of an inbox scan.
type BatchSummary struct {
	// Ingested is the number of files placed into the store.
	Ingested int
	// Skipped is the number of files with an unsupported extension.
	Skipped int
	// Failed is the number of files that errored.
	Failed int
}

// Total returns the number of files visited.
func (s BatchSummary) Total() int {
	return s.Ingested + s.Skipped + s.Failed
}

// HasFailures reports whether any file failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// IngestInbox scans cfg.InboxDir for PDF and XML files and ingests each one,
// continuing past per-file failures. Files are copied into the owning
// document's directory, or moved when cfg.Move is set.
func IngestInbox(resolver *docstore.Resolver, paths layout.Paths, cfg types.IngestConfig, progress io.Writer) (BatchSummary, error) {
	entries, err := os.ReadDir(cfg.InboxDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading inbox %s: %w", cfg.InboxDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var summary BatchSummary
	for _, name := range names {
		path := filepath.Join(cfg.InboxDir, name)
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if ext != "pdf" && ext != "xml" {
			summary.Skipped++
			continue
		}
		doc, err := ingestFile(resolver, paths, path, ext, cfg.Move)
		if err != nil {
			summary.Failed++
			fmt.Fprintf(progress, "fail %s: %v\n", name, err)
			continue
		}
		summary.Ingested++
		fmt.Fprintf(progress, "ok   %s -> %s\n", name, doc.DocID)
	}
	return summary, nil
}

func ingestFile(resolver *docstore.Resolver, paths layout.Paths, path, ext string, move bool) (*types.Document, error) {
	sha, err := artifact.SHA256File(path)
	if err != nil {
		return nil, err
	}

	text := sniffText(path, ext)
	doi := DetectDOI(text)
	pmid := DetectPMID(text)
	title := DetectTitle(text)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	doc, err := resolver.UpsertFromLocal(title, doi, pmid, sha, nil, nil)
	if err != nil {
		return nil, err
	}

	docDir := paths.DocDir(doc.DocID)
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return nil, err
	}
	target := filepath.Join(docDir, filepath.Base(path))
	if move {
		if err := os.Rename(path, target); err != nil {
			return nil, fmt.Errorf("moving into store: %w", err)
		}
	} else {
		if err := copyFile(path, target); err != nil {
			return nil, fmt.Errorf("copying into store: %w", err)
		}
	}

	var pdfPath, xmlPath *string
	if ext == "pdf" {
		pdfPath = &target
	} else {
		xmlPath = &target
	}
	if err := resolver.UpdateLocalPaths(doc.DocID, pdfPath, xmlPath, &sha); err != nil {
		return nil, err
	}

	updated, err := resolver.Repo().Get(doc.DocID)
	if err != nil {
		return nil, err
	}
	if err := writeMetadataSidecar(docDir, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// sniffText returns the text used for identifier detection: the first two
// pages for a PDF (best effort, the sidecar may be missing), the raw bytes
// for XML.
func sniffText(path, ext string) string {
	if ext == "pdf" {
		pages, err := extract.ExtractPDFPages(path)
		if err != nil {
			return ""
		}
		var parts []string
		for i, p := range pages {
			if i == 2 {
				break
			}
			parts = append(parts, p.Text)
		}
		return strings.Join(parts, " ")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// DetectDOI finds the first DOI-shaped token in text, lowercased.
func DetectDOI(text string) *string {
	m := doiPattern.FindString(text)
	if m == "" {
		return nil
	}
	doi := strings.ToLower(m)
	return &doi
}

// DetectPMID finds the first "PMID: <digits>" mention in text.
func DetectPMID(text string) *string {
	m := pmidPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &m[1]
}

// DetectTitle returns the first substantial line of text, skipping
// copyright banners. Empty when nothing qualifies.
func DetectTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > minTitleLen && !strings.Contains(strings.ToLower(line), "copyright") {
			return line
		}
	}
	return ""
}

// writeMetadataSidecar drops a human-readable metadata.yaml next to the
// stored source file.
func writeMetadataSidecar(docDir string, doc *types.Document) error {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return artifact.WriteAtomic(filepath.Join(docDir, "metadata.yaml"), raw)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
