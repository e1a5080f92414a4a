// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FigureIndexRow records one extracted figure asset with provenance back to
// its source document. Unlike ledger rows, figure rows have no sentinel
// state: a malformed figure row aborts the extraction run.
// Per prd002-extraction R6.
type FigureIndexRow struct {
	// FigureID is the opaque row identifier ("fig_<uuid>").
	FigureID string `json:"figure_id" yaml:"figure_id"`

	// DocID is the owning canonical document.
	DocID string `json:"doc_id" yaml:"doc_id"`

	DOI  *string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID *string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// LocalDocPath is the source document file the figure came from.
	LocalDocPath string `json:"local_doc_path" yaml:"local_doc_path"`

	// FigurePath is the extracted asset on disk.
	FigurePath string `json:"figure_path" yaml:"figure_path"`

	// SourceType is "pdf" for embedded page images, "jats" for <fig> assets.
	SourceType string `json:"source_type" yaml:"source_type"`

	// PageNumber is the source page for pdf figures, when known.
	PageNumber *int `json:"page_number,omitempty" yaml:"page_number,omitempty"`

	// XMLFigID is the JATS <fig id="..."> attribute for jats figures.
	XMLFigID *string `json:"xml_fig_id,omitempty" yaml:"xml_fig_id,omitempty"`

	// FigureLabel is the human label ("Figure 2", "PDF image 1").
	FigureLabel *string `json:"figure_label,omitempty" yaml:"figure_label,omitempty"`

	// Caption is the figure caption text, when the source carries one.
	Caption *string `json:"caption,omitempty" yaml:"caption,omitempty"`

	// Width and Height are pixel dimensions, when known.
	Width  *int `json:"width,omitempty" yaml:"width,omitempty"`
	Height *int `json:"height,omitempty" yaml:"height,omitempty"`

	// SHA256 is the content hash of the extracted asset.
	SHA256 *string `json:"sha256,omitempty" yaml:"sha256,omitempty"`

	// License is the figure license, when known.
	License *string `json:"license,omitempty" yaml:"license,omitempty"`

	RetrievedAt time.Time `json:"retrieved_at" yaml:"retrieved_at"`
}
