package docstore

import (
	"strings"
	"testing"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// --- test helpers ---

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

// memRepo is an in-memory Repo used to prove the resolver is store-agnostic.
type memRepo struct {
	docs []types.Document
}

func (m *memRepo) Get(docID string) (*types.Document, error) {
	for i := range m.docs {
		if m.docs[i].DocID == docID {
			d := m.docs[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (m *memRepo) List() ([]types.Document, error) {
	out := make([]types.Document, len(m.docs))
	copy(out, m.docs)
	return out, nil
}

func (m *memRepo) FindExisting(id Identity) (*types.Document, error) {
	match := func(pred func(d *types.Document) bool) *types.Document {
		for i := range m.docs {
			if pred(&m.docs[i]) {
				d := m.docs[i]
				return &d
			}
		}
		return nil
	}
	if id.DOI != nil {
		if d := match(func(d *types.Document) bool { return d.DOI != nil && *d.DOI == *id.DOI }); d != nil {
			return d, nil
		}
	}
	if id.PMID != nil {
		if d := match(func(d *types.Document) bool { return d.PMID != nil && *d.PMID == *id.PMID }); d != nil {
			return d, nil
		}
	}
	if id.SHA256 != nil {
		if d := match(func(d *types.Document) bool { return d.SHA256 != nil && *d.SHA256 == *id.SHA256 }); d != nil {
			return d, nil
		}
	}
	return match(func(d *types.Document) bool {
		if d.TitleHash != id.TitleHash {
			return false
		}
		return id.Year == nil || (d.Year != nil && *id.Year == *d.Year)
	}), nil
}

func (m *memRepo) Insert(doc *types.Document) error {
	m.docs = append(m.docs, *doc)
	return nil
}

func (m *memRepo) Update(doc *types.Document) error {
	for i := range m.docs {
		if m.docs[i].DocID == doc.DocID {
			m.docs[i] = *doc
			return nil
		}
	}
	return nil
}

// eachRepo runs the test against both the SQLite store and the in-memory
// fake; the resolver must behave identically over any Repo.
func eachRepo(t *testing.T, fn func(t *testing.T, repo Repo)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { store.Close() })
		fn(t, store)
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, &memRepo{})
	})
}

func searchResult(mutate func(*types.SearchResult)) *types.SearchResult {
	res := &types.SearchResult{
		Source:  "europepmc",
		DOI:     strptr("10.1000/test"),
		PMID:    strptr("123"),
		Title:   "Surgical Outcomes in Neurosurgery",
		Journal: strptr("JNS"),
		Year:    intptr(2024),
		Authors: []string{"A. Author"},
	}
	if mutate != nil {
		mutate(res)
	}
	return res
}

// --- identity helpers ---

func TestNormalizeDOI(t *testing.T) {
	if got := NormalizeDOI("  10.1000/TesT  "); got != "10.1000/test" {
		t.Errorf("NormalizeDOI = %q", got)
	}
}

func TestTitleHashNormalization(t *testing.T) {
	a := TitleHash("Surgical Outcomes, in Neurosurgery!")
	b := TitleHash("surgical   outcomes  in neurosurgery")
	if a != b {
		t.Errorf("title hashes differ: %q vs %q", a, b)
	}
	if a == TitleHash("a different title entirely") {
		t.Error("distinct titles hash equal")
	}
}

// --- identity resolution ---

func TestDedupeByDOI(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo Repo) {
		r := NewResolver(repo)

		d1, err := r.UpsertFromSearch(searchResult(nil))
		if err != nil {
			t.Fatal(err)
		}
		// Same DOI, different title and PMID: must resolve to one document.
		d2, err := r.UpsertFromSearch(searchResult(func(res *types.SearchResult) {
			res.Title = "Different title"
			res.PMID = strptr("999")
		}))
		if err != nil {
			t.Fatal(err)
		}

		if d1.DocID != d2.DocID {
			t.Errorf("DOI dedupe failed: %s vs %s", d1.DocID, d2.DocID)
		}
		docs, err := repo.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 1 {
			t.Errorf("want 1 document, got %d", len(docs))
		}
	})
}

func TestDedupeByPMIDWhenDOIMissing(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo Repo) {
		r := NewResolver(repo)

		base := func(title string) *types.SearchResult {
			return &types.SearchResult{
				Source: "pubmed",
				PMID:   strptr("44444"),
				Title:  title,
				Year:   intptr(2022),
			}
		}
		d1, err := r.UpsertFromSearch(base("Trial data A"))
		if err != nil {
			t.Fatal(err)
		}
		d2, err := r.UpsertFromSearch(base("Trial data B"))
		if err != nil {
			t.Fatal(err)
		}
		if d1.DocID != d2.DocID {
			t.Errorf("PMID dedupe failed: %s vs %s", d1.DocID, d2.DocID)
		}
	})
}

func TestDedupeByTitleHashAndYear(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo Repo) {
		r := NewResolver(repo)

		base := func(source string, year *int) *types.SearchResult {
			return &types.SearchResult{
				Source: source,
				Title:  "Endoscopic skull base approach",
				Year:   year,
			}
		}

		d1, err := r.UpsertFromSearch(base("crossref", intptr(2021)))
		if err != nil {
			t.Fatal(err)
		}
		d2, err := r.UpsertFromSearch(base("openalex", intptr(2021)))
		if err != nil {
			t.Fatal(err)
		}
		if d1.DocID != d2.DocID {
			t.Error("same title+year did not resolve to one document")
		}

		// Absent incoming year still matches.
		d3, err := r.UpsertFromSearch(base("openalex", nil))
		if err != nil {
			t.Fatal(err)
		}
		if d3.DocID != d1.DocID {
			t.Error("absent year should match on title hash")
		}

		// Conflicting year must create a new document.
		d4, err := r.UpsertFromSearch(base("openalex", intptr(2015)))
		if err != nil {
			t.Fatal(err)
		}
		if d4.DocID == d1.DocID {
			t.Error("conflicting year merged into existing document")
		}

		// A stored document without a year is not a wildcard: an incoming
		// record carrying a year must create a new document.
		d5, err := r.UpsertFromLocal("Endoscopic skull base approach outcomes", nil, nil, "sha-titleyear", nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		d6, err := r.UpsertFromSearch(&types.SearchResult{
			Source: "openalex",
			Title:  "Endoscopic skull base approach outcomes",
			Year:   intptr(2020),
		})
		if err != nil {
			t.Fatal(err)
		}
		if d6.DocID == d5.DocID {
			t.Error("incoming year matched a document with no year")
		}
	})
}

func TestDedupeBySHA256OnLocalIngest(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo Repo) {
		r := NewResolver(repo)

		d1, err := r.UpsertFromLocal("Local PDF One", nil, nil, "abc123", strptr("a.pdf"), nil)
		if err != nil {
			t.Fatal(err)
		}
		d2, err := r.UpsertFromLocal("Local PDF Two", nil, nil, "abc123", strptr("b.pdf"), nil)
		if err != nil {
			t.Fatal(err)
		}
		if d1.DocID != d2.DocID {
			t.Errorf("content hash dedupe failed: %s vs %s", d1.DocID, d2.DocID)
		}
	})
}

// --- merge semantics ---

func TestMergeCoalescePreservesExistingFields(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo Repo) {
		r := NewResolver(repo)

		d1, err := r.UpsertFromSearch(searchResult(func(res *types.SearchResult) {
			res.Journal = nil
			res.Abstract = nil
		}))
		if err != nil {
			t.Fatal(err)
		}
		if d1.AccessNeeded != true {
			t.Error("document without OA URL or files should need access")
		}

		merged, err := r.UpsertFromSearch(searchResult(func(res *types.SearchResult) {
			res.Title = "A later, lower-quality title"
			res.Journal = strptr("Other Journal")
			res.OAURL = strptr("https://example.org/paper.pdf")
		}))
		if err != nil {
			t.Fatal(err)
		}

		// Existing non-empty title wins; empty journal is filled.
		if merged.Title != "Surgical Outcomes in Neurosurgery" {
			t.Errorf("title overwritten on merge: %q", merged.Title)
		}
		if merged.Journal == nil || *merged.Journal != "Other Journal" {
			t.Error("empty journal not coalesced from incoming record")
		}
		if merged.OAURL == nil {
			t.Fatal("OA URL not promoted")
		}
		if merged.OAStatus != types.OAOpen {
			t.Errorf("OA status not recomputed: %s", merged.OAStatus)
		}
		if merged.AccessNeeded {
			t.Error("access_needed should clear once an OA URL exists")
		}
	})
}

func TestLocalIngestOverwritesProvenanceNotMetadata(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo Repo) {
		r := NewResolver(repo)

		d1, err := r.UpsertFromSearch(searchResult(nil))
		if err != nil {
			t.Fatal(err)
		}
		if d1.AddedVia != ViaOA {
			t.Fatalf("AddedVia = %q", d1.AddedVia)
		}

		d2, err := r.UpsertFromLocal("ignored title", strptr("10.1000/TEST"), nil, "deadbeef", strptr("x.pdf"), nil)
		if err != nil {
			t.Fatal(err)
		}
		if d2.DocID != d1.DocID {
			t.Fatal("local ingest did not resolve to existing document")
		}
		if d2.AddedVia != ViaInbox {
			t.Errorf("provenance not overwritten: %q", d2.AddedVia)
		}
		if d2.Title != d1.Title {
			t.Error("local ingest must not overwrite metadata")
		}
		if d2.LocalPDFPath == nil || *d2.LocalPDFPath != "x.pdf" {
			t.Error("local path not filled")
		}
		if d2.AccessNeeded {
			t.Error("access_needed should clear once a local file exists")
		}
	})
}

func TestUpdateLocalPaths(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo Repo) {
		r := NewResolver(repo)

		d, err := r.UpsertFromSearch(searchResult(nil))
		if err != nil {
			t.Fatal(err)
		}
		if err := r.UpdateLocalPaths(d.DocID, nil, strptr("full.xml"), strptr("cafe")); err != nil {
			t.Fatal(err)
		}

		got, err := repo.Get(d.DocID)
		if err != nil {
			t.Fatal(err)
		}
		if got.LocalXMLPath == nil || *got.LocalXMLPath != "full.xml" {
			t.Error("XML path not recorded")
		}
		if got.AccessNeeded {
			t.Error("access_needed not recomputed after retrieval")
		}
	})
}

// --- read-side queries ---

func TestListForExtraction(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo Repo) {
		r := NewResolver(repo)

		withFile, err := r.UpsertFromLocal("Has a file", nil, nil, "s1", strptr("a.pdf"), nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := r.UpsertFromSearch(searchResult(nil)); err != nil {
			t.Fatal(err)
		}

		docs, err := ListForExtraction(repo, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 1 || docs[0].DocID != withFile.DocID {
			t.Errorf("extraction list = %+v", docs)
		}

		none, err := ListForExtraction(repo, "doc_nonexistent")
		if err != nil {
			t.Fatal(err)
		}
		if len(none) != 0 {
			t.Error("csv filter ignored")
		}
	})
}

func TestListNeedingOA(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo Repo) {
		r := NewResolver(repo)

		// Has OA URL, no file: needs download.
		if _, err := r.UpsertFromSearch(searchResult(func(res *types.SearchResult) {
			res.OAURL = strptr("https://example.org/a.pdf")
		})); err != nil {
			t.Fatal(err)
		}
		// No route at all: excluded.
		if _, err := r.UpsertFromSearch(&types.SearchResult{
			Source: "openalex", Title: "No route", Year: intptr(2020),
		}); err != nil {
			t.Fatal(err)
		}

		docs, err := ListNeedingOA(repo, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 1 {
			t.Fatalf("want 1 doc needing OA, got %d", len(docs))
		}
		if !strings.HasPrefix(docs[0].DocID, "doc_") {
			t.Errorf("unexpected id format %q", docs[0].DocID)
		}
	})
}
