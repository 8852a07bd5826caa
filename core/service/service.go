// Package service resolves verse references against a corpus.
//
// This is the top of the stack: it parses a reference into spans, picks the
// extraction backend for the corpus path (SQLite index or on-the-fly file
// traversal), and renders the results. Both backends produce byte-identical
// output for the same corpus and reference.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/Lectern/core/books"
	"github.com/FocuswithJustin/Lectern/core/cache"
	"github.com/FocuswithJustin/Lectern/core/corpus"
	coreerrors "github.com/FocuswithJustin/Lectern/core/errors"
	"github.com/FocuswithJustin/Lectern/core/extract"
	"github.com/FocuswithJustin/Lectern/core/index"
	"github.com/FocuswithJustin/Lectern/core/ref"
	"github.com/FocuswithJustin/Lectern/core/usj"
)

// UnknownBookError reports a book name the catalog does not recognize.
type UnknownBookError struct {
	Name string
}

func (e *UnknownBookError) Error() string {
	return fmt.Sprintf("unknown book: %q", e.Name)
}

func (e *UnknownBookError) Unwrap() error {
	return coreerrors.ErrNotFound
}

// BookNotFoundError reports a recognized book absent from the corpus.
type BookNotFoundError struct {
	Book   string
	Corpus string
}

func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("book %s not present in corpus %s", e.Book, e.Corpus)
}

func (e *BookNotFoundError) Unwrap() error {
	return coreerrors.ErrNotFound
}

// Service resolves references to verse text. Safe for concurrent use.
type Service struct {
	catalog *books.Catalog
	cache   *cache.DocumentCache
}

// New creates a service with the default document cache.
func New() *Service {
	return &Service{
		catalog: books.NewCatalog(),
		cache:   cache.NewDocumentCache(cache.DefaultMaxSize),
	}
}

// Catalog exposes the book name catalog.
func (s *Service) Catalog() *books.Catalog {
	return s.catalog
}

// CacheStats reports document cache statistics.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Resolve extracts and renders the text for reference from the corpus at
// corpusPath. The whole reference succeeds or fails as a unit: one bad
// segment, unknown book, or missing verse fails the call with no partial
// output.
func (s *Service) Resolve(corpusPath, reference string) (string, error) {
	spans, err := ref.Parse(reference, books.SingleChapterNames())
	if err != nil {
		return "", err
	}

	if corpus.IsIndexPath(corpusPath) {
		return s.resolveIndexed(corpusPath, spans)
	}
	return s.resolveFiles(corpusPath, spans)
}

func (s *Service) resolveIndexed(path string, spans []ref.Span) (string, error) {
	ix, err := index.Open(path)
	if err != nil {
		return "", err
	}
	defer ix.Close()

	var lines []string
	for _, span := range spans {
		id, ok := s.catalog.ID(span.Book)
		if !ok {
			return "", &UnknownBookError{Name: span.Book}
		}
		present, err := ix.HasBook(id)
		if err != nil {
			return "", err
		}
		if !present {
			return "", &BookNotFoundError{Book: id, Corpus: path}
		}
		records, err := ix.Query(id, span)
		if err != nil {
			return "", err
		}
		formatted, err := extract.FormatSpan(span, records)
		if err != nil {
			return "", err
		}
		lines = append(lines, formatted...)
	}
	return extract.Join(lines), nil
}

func (s *Service) resolveFiles(path string, spans []ref.Span) (string, error) {
	fs, err := corpus.Load(path)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, span := range spans {
		id, ok := s.catalog.ID(span.Book)
		if !ok {
			return "", &UnknownBookError{Name: span.Book}
		}
		doc, err := s.findBook(fs, id)
		if err != nil {
			// Absence is a BookNotFoundError; a present-but-malformed book
			// file propagates its parse failure unchanged.
			if errors.Is(err, coreerrors.ErrNotFound) {
				return "", &BookNotFoundError{Book: id, Corpus: path}
			}
			return "", err
		}
		records, err := extract.Extract(doc, span)
		if err != nil {
			return "", err
		}
		formatted, err := extract.FormatSpan(span, records)
		if err != nil {
			return "", err
		}
		lines = append(lines, formatted...)
	}
	return extract.Join(lines), nil
}

// BuildIndex builds the verse index at indexPath from the file corpus at
// corpusPath. progress, if non-nil, is called once per parsed book.
func (s *Service) BuildIndex(corpusPath, indexPath string, progress func(book string, n, total int)) (*index.BuildResult, error) {
	fs, err := corpus.Load(corpusPath)
	if err != nil {
		return nil, err
	}

	docs := make([]*usj.Document, 0, len(fs.Files))
	for _, f := range fs.Files {
		doc, err := corpus.ParseFile(f.Name, f.Data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name, err)
		}
		docs = append(docs, doc)
	}

	ix, err := index.Create(indexPath)
	if err != nil {
		return nil, err
	}
	defer ix.Close()
	return ix.Build(docs, fs.Hash(), progress)
}

// findBook locates and parses the document for a book identifier. When the
// corpus holds duplicate books the last file in corpus order wins, matching
// the index build. The cheap identifier sniff runs per file; the full parse
// runs once per content hash thanks to the document cache.
func (s *Service) findBook(fs *corpus.FileSet, id string) (*usj.Document, error) {
	var match *corpus.File
	for i := range fs.Files {
		code, ok := corpus.BookCode(fs.Files[i].Name, fs.Files[i].Data)
		if ok && strings.EqualFold(code, id) {
			match = &fs.Files[i]
		}
	}
	if match == nil {
		return nil, coreerrors.ErrNotFound
	}

	key := cache.Key(match.Data)
	if doc, ok := s.cache.Get(key); ok {
		return doc, nil
	}
	doc, err := corpus.ParseFile(match.Name, match.Data)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, doc)
	return doc, nil
}
