// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docstore persists canonical documents and resolves incoming
// metadata to a single record per real-world work.
// Implements: prd001-identity (R1-R4);
//
//	docs/ARCHITECTURE § Document Store.
package docstore

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Identity is the candidate identity key set for one incoming record.
// Lookup order is DOI, PMID, SHA256, then TitleHash+Year (R2.1).
type Identity struct {
	DOI       *string
	PMID      *string
	TitleHash string
	Year      *int
	SHA256    *string
}

// NormalizeDOI lowercases and trims a DOI so equal works compare equal
// regardless of source casing.
func NormalizeDOI(doi string) string {
	return strings.ToLower(strings.TrimSpace(doi))
}

// NormalizePMID trims a PMID.
func NormalizePMID(pmid string) string {
	return strings.TrimSpace(pmid)
}

// TitleHash returns the content hash of a normalized title: case-folded,
// punctuation replaced by spaces, whitespace collapsed. This is the weakest
// identity key and is only trusted together with a compatible year.
func TitleHash(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	normalized := strings.Join(strings.Fields(b.String()), " ")
	return fmt.Sprintf("%x", sha256.Sum256([]byte(normalized)))
}

// identityFromSearch builds the identity key set for a search result.
func identityFromSearch(res *types.SearchResult) Identity {
	id := Identity{
		TitleHash: TitleHash(res.Title),
		Year:      res.Year,
	}
	if res.DOI != nil {
		d := NormalizeDOI(*res.DOI)
		id.DOI = &d
	}
	if res.PMID != nil {
		p := NormalizePMID(*res.PMID)
		id.PMID = &p
	}
	return id
}
