// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Page is one page of PDF text, numbered from 1 in reading order.
type Page struct {
	Number int
	Text   string
}

// ExtractPDFPages reads the pdftotext sidecar for a PDF and splits it into
// pages. Byte-level PDF parsing is an external concern: the conversion stage
// runs pdftotext, which writes <stem>.txt next to the PDF with form-feed
// page separators. A missing sidecar is an environment error for the owning
// document.
func ExtractPDFPages(pdfPath string) ([]Page, error) {
	sidecar := textSidecarPath(pdfPath)
	data, err := os.ReadFile(sidecar)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("page text %s not found: run pdftotext on %s first", sidecar, pdfPath)
		}
		return nil, fmt.Errorf("reading page text %s: %w", sidecar, err)
	}

	var pages []Page
	for i, chunk := range strings.Split(string(data), "\f") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: chunk})
	}
	return pages, nil
}

// textSidecarPath maps document.pdf to document.txt in the same directory.
func textSidecarPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".txt"
}
