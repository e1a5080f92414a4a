// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

const dbFile = "evidence.db"

// Repo abstracts document persistence so the resolver can be exercised
// against an in-memory fake (R1.4). The SQLite Store is the production
// implementation.
type Repo interface {
	// Get returns the document with the given id, or nil if absent.
	Get(docID string) (*types.Document, error)

	// List returns all documents, newest first.
	List() ([]types.Document, error)

	// FindExisting returns the first document matching the identity key
	// lookup order, or nil when no key matches.
	FindExisting(id Identity) (*types.Document, error)

	// Insert stores a new document.
	Insert(doc *types.Document) error

	// Update replaces the stored document with the same DocID.
	Update(doc *types.Document) error
}

// Store is the SQLite-backed document store. All writes go through a single
// connection; sqlite serializes them, giving the single-writer discipline the
// resolver relies on.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the document database at indexDir/evidence.db,
// creating the schema if needed (R1.2).
func NewStore(indexDir string) (*Store, error) {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS docs (
			doc_id TEXT PRIMARY KEY,
			doi TEXT,
			pmid TEXT,
			title TEXT NOT NULL,
			journal TEXT,
			year INTEGER,
			authors TEXT NOT NULL DEFAULT '[]',
			abstract TEXT,
			oa_status TEXT NOT NULL,
			oa_url TEXT,
			epmc_id TEXT,
			local_pdf_path TEXT,
			local_xml_path TEXT,
			sha256 TEXT,
			added_via TEXT NOT NULL,
			access_needed INTEGER NOT NULL,
			title_hash TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_docs_doi ON docs(doi)`,
		`CREATE INDEX IF NOT EXISTS idx_docs_pmid ON docs(pmid)`,
		`CREATE INDEX IF NOT EXISTS idx_docs_sha256 ON docs(sha256)`,
		`CREATE INDEX IF NOT EXISTS idx_docs_title_hash ON docs(title_hash)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

const docColumns = `doc_id,doi,pmid,title,journal,year,authors,abstract,oa_status,oa_url,epmc_id,local_pdf_path,local_xml_path,sha256,added_via,access_needed,title_hash,created_at,updated_at`

// Get returns the document with the given id, or nil if absent.
func (s *Store) Get(docID string) (*types.Document, error) {
	row := s.db.QueryRow(`SELECT `+docColumns+` FROM docs WHERE doc_id = ?`, docID)
	doc, err := scanDoc(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", docID, err)
	}
	return doc, nil
}

// List returns all documents, newest first.
func (s *Store) List() ([]types.Document, error) {
	rows, err := s.db.Query(`SELECT ` + docColumns + ` FROM docs ORDER BY created_at DESC, doc_id`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []types.Document
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

// FindExisting looks the identity keys up in order: DOI, PMID, SHA256, then
// title hash with a compatible year (R2.1).
func (s *Store) FindExisting(id Identity) (*types.Document, error) {
	queryOne := func(where string, arg any) (*types.Document, error) {
		row := s.db.QueryRow(`SELECT `+docColumns+` FROM docs WHERE `+where+` LIMIT 1`, arg)
		doc, err := scanDoc(row)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return doc, err
	}

	if id.DOI != nil {
		if doc, err := queryOne(`doi = ?`, *id.DOI); doc != nil || err != nil {
			return doc, err
		}
	}
	if id.PMID != nil {
		if doc, err := queryOne(`pmid = ?`, *id.PMID); doc != nil || err != nil {
			return doc, err
		}
	}
	if id.SHA256 != nil {
		if doc, err := queryOne(`sha256 = ?`, *id.SHA256); doc != nil || err != nil {
			return doc, err
		}
	}

	rows, err := s.db.Query(`SELECT `+docColumns+` FROM docs WHERE title_hash = ? ORDER BY created_at, doc_id`, id.TitleHash)
	if err != nil {
		return nil, fmt.Errorf("title hash lookup: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		// The incoming year must be absent or equal; a stored year is never
		// treated as a wildcard.
		if id.Year == nil || (doc.Year != nil && *id.Year == *doc.Year) {
			return doc, nil
		}
	}
	return nil, rows.Err()
}

// Insert stores a new document.
func (s *Store) Insert(doc *types.Document) error {
	authorsJSON, _ := json.Marshal(doc.Authors)
	_, err := s.db.Exec(
		`INSERT INTO docs (`+docColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		doc.DocID, doc.DOI, doc.PMID, doc.Title, doc.Journal, doc.Year,
		string(authorsJSON), doc.Abstract, string(doc.OAStatus), doc.OAURL,
		doc.EPMCID, doc.LocalPDFPath, doc.LocalXMLPath, doc.SHA256,
		doc.AddedVia, boolToInt(doc.AccessNeeded), doc.TitleHash,
		doc.CreatedAt.UTC().Format(time.RFC3339Nano),
		doc.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.DocID, err)
	}
	return nil
}

// Update replaces the stored row for doc.DocID with the full record.
func (s *Store) Update(doc *types.Document) error {
	authorsJSON, _ := json.Marshal(doc.Authors)
	res, err := s.db.Exec(
		`UPDATE docs SET doi=?, pmid=?, title=?, journal=?, year=?, authors=?,
			abstract=?, oa_status=?, oa_url=?, epmc_id=?, local_pdf_path=?,
			local_xml_path=?, sha256=?, added_via=?, access_needed=?,
			title_hash=?, updated_at=? WHERE doc_id=?`,
		doc.DOI, doc.PMID, doc.Title, doc.Journal, doc.Year, string(authorsJSON),
		doc.Abstract, string(doc.OAStatus), doc.OAURL, doc.EPMCID,
		doc.LocalPDFPath, doc.LocalXMLPath, doc.SHA256, doc.AddedVia,
		boolToInt(doc.AccessNeeded), doc.TitleHash,
		doc.UpdatedAt.UTC().Format(time.RFC3339Nano), doc.DocID,
	)
	if err != nil {
		return fmt.Errorf("updating document %s: %w", doc.DocID, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("updating document %s: not found", doc.DocID)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDoc(sc scanner) (*types.Document, error) {
	var (
		doc        types.Document
		authorsRaw string
		oaStatus   string
		access     int
		createdAt  string
		updatedAt  string
	)
	err := sc.Scan(
		&doc.DocID, &doc.DOI, &doc.PMID, &doc.Title, &doc.Journal, &doc.Year,
		&authorsRaw, &doc.Abstract, &oaStatus, &doc.OAURL, &doc.EPMCID,
		&doc.LocalPDFPath, &doc.LocalXMLPath, &doc.SHA256, &doc.AddedVia,
		&access, &doc.TitleHash, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authorsRaw), &doc.Authors); err != nil {
		doc.Authors = nil
	}
	doc.OAStatus = types.ParseOAStatus(oaStatus)
	doc.AccessNeeded = access != 0

	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		doc.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		doc.UpdatedAt = t
	}
	return &doc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
