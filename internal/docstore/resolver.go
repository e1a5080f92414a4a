// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Provenance tags for Document.AddedVia.
const (
	ViaOA    = "oa"    // entered through a literature search backend
	ViaInbox = "inbox" // entered through local inbox ingestion
)

// nowFunc returns the current time. Tests override this for deterministic
// timestamps.
var nowFunc = time.Now

// Resolver owns all document mutation: it canonicalizes incoming metadata to
// one record per real-world work and merges updates into existing records.
// Merge logic lives here rather than in SQL so any Repo implementation
// behaves identically (R2, R3).
type Resolver struct {
	repo Repo
}

// NewResolver returns a Resolver over the given repository.
func NewResolver(repo Repo) *Resolver {
	return &Resolver{repo: repo}
}

// Repo exposes the underlying repository for read-side queries.
func (r *Resolver) Repo() Repo {
	return r.repo
}

// UpsertFromSearch resolves a search result to a canonical document,
// creating one on first sighting and merging with coalesce semantics on a
// match: an incoming field lands only where the existing record is empty.
// Open-access status and access_needed are recomputed from the merged record
// (R2.2, R3.1-R3.3).
func (r *Resolver) UpsertFromSearch(res *types.SearchResult) (*types.Document, error) {
	identity := identityFromSearch(res)

	existing, err := r.repo.FindExisting(identity)
	if err != nil {
		return nil, fmt.Errorf("identity lookup: %w", err)
	}
	if existing != nil {
		return r.mergeSearch(existing, res, identity)
	}

	now := nowFunc().UTC()
	doc := &types.Document{
		DocID:        newDocID(),
		DOI:          identity.DOI,
		PMID:         identity.PMID,
		Title:        res.Title,
		Journal:      res.Journal,
		Year:         res.Year,
		Authors:      res.Authors,
		Abstract:     res.Abstract,
		OAStatus:     types.OAStatusFromURL(res.OAURL),
		OAURL:        res.OAURL,
		EPMCID:       res.EPMCID,
		AddedVia:     ViaOA,
		AccessNeeded: res.OAURL == nil,
		TitleHash:    identity.TitleHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.repo.Insert(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *Resolver) mergeSearch(existing *types.Document, res *types.SearchResult, identity Identity) (*types.Document, error) {
	doc := *existing

	if doc.Title == "" && res.Title != "" {
		doc.Title = res.Title
		doc.TitleHash = identity.TitleHash
	}
	doc.DOI = coalesceStr(doc.DOI, identity.DOI)
	doc.PMID = coalesceStr(doc.PMID, identity.PMID)
	doc.Journal = coalesceStr(doc.Journal, res.Journal)
	doc.Year = coalesceInt(doc.Year, res.Year)
	if len(doc.Authors) == 0 {
		doc.Authors = res.Authors
	}
	doc.Abstract = coalesceStr(doc.Abstract, res.Abstract)
	doc.OAURL = coalesceStr(doc.OAURL, res.OAURL)
	doc.EPMCID = coalesceStr(doc.EPMCID, res.EPMCID)

	doc.OAStatus = types.OAStatusFromURL(doc.OAURL)
	doc.AccessNeeded = doc.OAURL == nil && !doc.HasLocalFile()
	doc.UpdatedAt = nowFunc().UTC()

	if err := r.repo.Update(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpsertFromLocal resolves a locally ingested file to a canonical document.
// On a match it fills local paths and the content hash in place and
// overwrites provenance to the inbox tag; metadata fields are never touched
// by local ingest (R3.4).
func (r *Resolver) UpsertFromLocal(title string, doi, pmid *string, sha256 string, pdfPath, xmlPath *string) (*types.Document, error) {
	identity := Identity{
		TitleHash: TitleHash(title),
		SHA256:    &sha256,
	}
	if doi != nil {
		d := NormalizeDOI(*doi)
		identity.DOI = &d
	}
	if pmid != nil {
		p := NormalizePMID(*pmid)
		identity.PMID = &p
	}

	existing, err := r.repo.FindExisting(identity)
	if err != nil {
		return nil, fmt.Errorf("identity lookup: %w", err)
	}
	if existing != nil {
		doc := *existing
		doc.LocalPDFPath = coalesceStr(doc.LocalPDFPath, pdfPath)
		doc.LocalXMLPath = coalesceStr(doc.LocalXMLPath, xmlPath)
		if doc.SHA256 == nil {
			doc.SHA256 = &sha256
		}
		doc.AddedVia = ViaInbox
		doc.AccessNeeded = doc.OAURL == nil && !doc.HasLocalFile()
		doc.UpdatedAt = nowFunc().UTC()
		if err := r.repo.Update(&doc); err != nil {
			return nil, err
		}
		return &doc, nil
	}

	now := nowFunc().UTC()
	doc := &types.Document{
		DocID:        newDocID(),
		DOI:          identity.DOI,
		PMID:         identity.PMID,
		Title:        title,
		OAStatus:     types.OAUnknown,
		LocalPDFPath: pdfPath,
		LocalXMLPath: xmlPath,
		SHA256:       &sha256,
		AddedVia:     ViaInbox,
		AccessNeeded: pdfPath == nil && xmlPath == nil,
		TitleHash:    identity.TitleHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.repo.Insert(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateLocalPaths records a retrieved rendition for a document and
// recomputes access_needed (R3.5).
func (r *Resolver) UpdateLocalPaths(docID string, pdfPath, xmlPath, sha256 *string) error {
	doc, err := r.repo.Get(docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document %s: not found", docID)
	}

	doc.LocalPDFPath = coalesceStr(doc.LocalPDFPath, pdfPath)
	doc.LocalXMLPath = coalesceStr(doc.LocalXMLPath, xmlPath)
	doc.SHA256 = coalesceStr(doc.SHA256, sha256)
	doc.AccessNeeded = doc.OAURL == nil && !doc.HasLocalFile()
	doc.UpdatedAt = nowFunc().UTC()

	return r.repo.Update(doc)
}

func newDocID() string {
	return "doc_" + uuid.NewString()
}

// coalesceStr keeps the existing value unless it is absent or empty.
func coalesceStr(existing, incoming *string) *string {
	if existing != nil && *existing != "" {
		return existing
	}
	if incoming != nil && *incoming != "" {
		return incoming
	}
	return existing
}

func coalesceInt(existing, incoming *int) *int {
	if existing != nil {
		return existing
	}
	return incoming
}
