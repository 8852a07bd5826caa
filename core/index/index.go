// Package index persists a (book, chapter, verse) -> text store so span
// queries run as key-range scans instead of document traversals.
//
// The store is a SQLite database with a single verses table keyed by the
// (book_id, chapter, verse) triple. It is built once from a full corpus pass
// and read many times; a build runs inside one transaction, so readers of
// the same file never observe a partial build. Query results reproduce the
// traversal backend's ordering and completeness semantics exactly.
package index

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/Lectern/core/extract"
	"github.com/FocuswithJustin/Lectern/core/ref"
	"github.com/FocuswithJustin/Lectern/core/sqlite"
	"github.com/FocuswithJustin/Lectern/core/usj"
)

const schema = `
CREATE TABLE IF NOT EXISTS verses (
	book_id TEXT NOT NULL,
	chapter INTEGER NOT NULL,
	verse INTEGER NOT NULL,
	text TEXT NOT NULL,
	PRIMARY KEY (book_id, chapter, verse)
);
CREATE INDEX IF NOT EXISTS idx_book_chapter_verse
	ON verses(book_id, chapter, verse);
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Index is an open verse store.
type Index struct {
	db   *sql.DB
	path string
}

// Create opens the store at path for writing, creating the schema if needed.
func Create(path string) (*Index, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}
	return &Index{db: db, path: path}, nil
}

// Open opens an existing store read-only. Safe for unlimited concurrent
// readers.
func Open(path string) (*Index, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	return &Index{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Path returns the store's file path.
func (ix *Index) Path() string {
	return ix.path
}

// BuildResult summarizes one build pass.
type BuildResult struct {
	BuildID   string
	Documents int
	Verses    int
}

// Build replaces the store's contents from a corpus pass. Every document is
// enumerated in whole-document mode (the same traversal the on-the-fly
// backend runs) and upserted under its (book, chapter, verse) key; when the
// corpus contains duplicate books, the last document in corpus order wins.
// The whole build is one transaction: it either publishes completely or not
// at all. progress, if non-nil, is called once per document.
func (ix *Index) Build(docs []*usj.Document, corpusHash string, progress func(book string, n, total int)) (*BuildResult, error) {
	tx, err := ix.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning index build: %w", err)
	}
	defer tx.Rollback()

	// Rebuilds must not keep rows for books no longer in the corpus.
	if _, err := tx.Exec(`DELETE FROM verses`); err != nil {
		return nil, fmt.Errorf("clearing index: %w", err)
	}

	insert, err := tx.Prepare(`INSERT OR REPLACE INTO verses (book_id, chapter, verse, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()

	result := &BuildResult{BuildID: uuid.NewString()}
	for i, doc := range docs {
		records := extract.All(doc)
		for _, r := range records {
			if _, err := insert.Exec(r.Book, r.Chapter, r.Verse, r.Text); err != nil {
				return nil, fmt.Errorf("inserting %s %d:%d: %w", r.Book, r.Chapter, r.Verse, err)
			}
		}
		result.Documents++
		result.Verses += len(records)
		if progress != nil {
			progress(doc.BookCode(), i+1, len(docs))
		}
	}

	meta := map[string]string{
		"build_id":    result.BuildID,
		"built_at":    time.Now().UTC().Format(time.RFC3339),
		"corpus_hash": corpusHash,
		"verse_count": strconv.Itoa(result.Verses),
	}
	for key, value := range meta {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return nil, fmt.Errorf("writing meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing index build: %w", err)
	}
	return result, nil
}

// Meta describes the store's most recent build.
type Meta struct {
	BuildID    string
	BuiltAt    string
	CorpusHash string
	Verses     int
}

// Meta reads the store's build metadata.
func (ix *Index) Meta() (*Meta, error) {
	rows, err := ix.db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("reading index meta: %w", err)
	}
	defer rows.Close()

	m := &Meta{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		switch key {
		case "build_id":
			m.BuildID = value
		case "built_at":
			m.BuiltAt = value
		case "corpus_hash":
			m.CorpusHash = value
		case "verse_count":
			m.Verses, _ = strconv.Atoi(value)
		}
	}
	return m, rows.Err()
}

// HasBook reports whether the store contains any verse of the book.
func (ix *Index) HasBook(book string) (bool, error) {
	var one int
	err := ix.db.QueryRow(`SELECT 1 FROM verses WHERE book_id = ? LIMIT 1`, book).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Books returns the distinct book identifiers in the store, sorted.
func (ix *Index) Books() ([]string, error) {
	rows, err := ix.db.Query(`SELECT DISTINCT book_id FROM verses ORDER BY book_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Query translates a span into a bounded key range and returns matching
// records in ascending (chapter, verse) order. It enforces the same
// missing-verse semantics the traversal backend does for explicit
// within-chapter ranges.
func (ix *Index) Query(book string, span ref.Span) ([]extract.Record, error) {
	window, err := extract.Resolve(span)
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	switch {
	case window.Cross && window.StartChapter != window.EndChapter:
		rows, err = ix.db.Query(`
			SELECT chapter, verse, text
			FROM verses
			WHERE book_id = ?
			  AND (
			    (chapter = ? AND verse >= ?) OR
			    (chapter > ? AND chapter < ?) OR
			    (chapter = ? AND verse <= ?)
			  )
			ORDER BY chapter, verse`,
			book,
			window.StartChapter, window.StartVerse,
			window.StartChapter, window.EndChapter,
			window.EndChapter, window.EndVerse)
	case window.Whole:
		rows, err = ix.db.Query(`
			SELECT chapter, verse, text
			FROM verses
			WHERE book_id = ? AND chapter = ?
			ORDER BY verse`,
			book, window.StartChapter)
	default:
		rows, err = ix.db.Query(`
			SELECT chapter, verse, text
			FROM verses
			WHERE book_id = ? AND chapter = ? AND verse >= ? AND verse <= ?
			ORDER BY verse`,
			book, window.StartChapter, window.StartVerse, window.EndVerse)
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", book, err)
	}
	defer rows.Close()

	var records []extract.Record
	for rows.Next() {
		r := extract.Record{Book: book}
		if err := rows.Scan(&r.Chapter, &r.Verse, &r.Text); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if missing := extract.Missing(window, records); len(missing) > 0 {
		return nil, &extract.MissingVersesError{Chapter: window.StartChapter, Verses: missing}
	}
	return records, nil
}
