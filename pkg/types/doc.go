// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-engine pipeline.
// Implements: prd001-identity (Document, OAStatus);
//
//	prd002-extraction (EvidenceLedgerRow, FigureIndexRow);
//	prd003-brief (Brief, Takeaway, Citation, KeyFigure);
//	prd004-search (SearchResult, QAReport).
//
// See docs/ARCHITECTURE.md § Data Structures.
package types

import "time"

// OAStatus records whether a document's full text is known to be freely
// retrievable. Per prd001-identity R4.2.
type OAStatus string

const (
	OAOpen    OAStatus = "open"
	OAClosed  OAStatus = "closed"
	OAUnknown OAStatus = "unknown"
)

// OAStatusFromURL derives the open-access status from a resolved OA URL.
// A non-empty URL means open; absence means unknown (closed is only ever
// asserted by a connector, never inferred).
func OAStatusFromURL(oaURL *string) OAStatus {
	if oaURL != nil && len(*oaURL) > 0 {
		return OAOpen
	}
	return OAUnknown
}

// ParseOAStatus converts a stored status string back to an OAStatus,
// defaulting to unknown for unrecognized values.
func ParseOAStatus(raw string) OAStatus {
	switch raw {
	case string(OAOpen):
		return OAOpen
	case string(OAClosed):
		return OAClosed
	default:
		return OAUnknown
	}
}

// Document is the canonical record for one real-world published work.
// Exactly one Document exists per distinct identity key (DOI, PMID, content
// hash, or title-hash+year); incoming metadata is merged, never duplicated.
// Documents are mutated exclusively by the docstore resolver.
// Per prd001-identity R1-R4.
type Document struct {
	// DocID is the opaque canonical identifier ("doc_<uuid>").
	DocID string `json:"doc_id" yaml:"doc_id"`

	// DOI is the normalized (trimmed, lowercased) DOI, if known.
	DOI *string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PMID is the trimmed PubMed identifier, if known.
	PMID *string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// Title is the document title as first seen (coalesce semantics: later
	// search results never overwrite a non-empty title).
	Title string `json:"title" yaml:"title"`

	// Journal is the publication venue, if known.
	Journal *string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Year is the publication year, if known.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	// Authors lists author display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the abstract text, if the connector supplied one.
	Abstract *string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// OAStatus is the open-access status derived from OAURL.
	OAStatus OAStatus `json:"oa_status" yaml:"oa_status"`

	// OAURL is the best known open-access full-text URL.
	OAURL *string `json:"oa_url,omitempty" yaml:"oa_url,omitempty"`

	// EPMCID is the Europe PMC identifier used for full-text XML retrieval.
	EPMCID *string `json:"epmc_id,omitempty" yaml:"epmc_id,omitempty"`

	// LocalPDFPath is the on-disk path of the retrieved PDF rendition.
	LocalPDFPath *string `json:"local_pdf_path,omitempty" yaml:"local_pdf_path,omitempty"`

	// LocalXMLPath is the on-disk path of the retrieved JATS XML rendition.
	LocalXMLPath *string `json:"local_xml_path,omitempty" yaml:"local_xml_path,omitempty"`

	// SHA256 is the content hash of the ingested local file, used for
	// identity only (not tamper detection). Present only for local files.
	SHA256 *string `json:"sha256,omitempty" yaml:"sha256,omitempty"`

	// AddedVia records how the document entered the system ("oa" for
	// search-originated records, "inbox" for local ingest).
	AddedVia string `json:"added_via" yaml:"added_via"`

	// AccessNeeded is true iff the document has no OA URL and no local file.
	AccessNeeded bool `json:"access_needed" yaml:"access_needed"`

	// TitleHash is the normalized-title content hash used as the weakest
	// identity key.
	TitleHash string `json:"title_hash" yaml:"title_hash"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// HasLocalFile reports whether any rendition of the document is on disk.
func (d *Document) HasLocalFile() bool {
	return d.LocalPDFPath != nil || d.LocalXMLPath != nil
}
