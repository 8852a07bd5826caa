package index

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/FocuswithJustin/Lectern/core/books"
	"github.com/FocuswithJustin/Lectern/core/extract"
	"github.com/FocuswithJustin/Lectern/core/ref"
	"github.com/FocuswithJustin/Lectern/core/usj"
)

func node(t usj.NodeType, code string, number int, text string) usj.Node {
	return usj.Node{Type: t, Code: code, Number: number, Text: text}
}

func testCorpus() []*usj.Document {
	exodus := &usj.Document{Nodes: []usj.Node{
		node(usj.NodeBook, "EXO", 0, ""),
		node(usj.NodeChapter, "", 15, ""),
		node(usj.NodeVerse, "", 1, ""), node(usj.NodeText, "", 0, "Then sang Moses. "),
		node(usj.NodeVerse, "", 2, ""), node(usj.NodeText, "", 0, "The LORD is my strength. "),
		node(usj.NodeVerse, "", 29, ""), node(usj.NodeText, "", 0, "For the horse went in. "),
		node(usj.NodeChapter, "", 16, ""),
		node(usj.NodeVerse, "", 1, ""), node(usj.NodeText, "", 0, "They took their journey. "),
		node(usj.NodeVerse, "", 2, ""), node(usj.NodeText, "", 0, "The congregation murmured. "),
	}}
	jude := &usj.Document{Nodes: []usj.Node{
		node(usj.NodeBook, "JUD", 0, ""),
		node(usj.NodeChapter, "", 1, ""),
		node(usj.NodeVerse, "", 1, ""), node(usj.NodeText, "", 0, "Jude, a servant. "),
		node(usj.NodeVerse, "", 2, ""), node(usj.NodeText, "", 0, "Mercy unto you. "),
		node(usj.NodeVerse, "", 3, ""), node(usj.NodeText, "", 0, "Beloved, when I gave diligence. "),
	}}
	return []*usj.Document{exodus, jude}
}

func buildIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Create(filepath.Join(t.TempDir(), "verses.db"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { ix.Close() })

	if _, err := ix.Build(testCorpus(), "deadbeef", nil); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return ix
}

func spanFor(t *testing.T, reference string) ref.Span {
	t.Helper()
	spans, err := ref.Parse(reference, books.SingleChapterNames())
	if err != nil {
		t.Fatalf("ref.Parse(%q) error = %v", reference, err)
	}
	return spans[0]
}

func TestBuildAndMeta(t *testing.T) {
	ix := buildIndex(t)

	meta, err := ix.Meta()
	if err != nil {
		t.Fatalf("Meta() error = %v", err)
	}
	if meta.BuildID == "" || meta.BuiltAt == "" {
		t.Errorf("Meta() missing build stamp: %+v", meta)
	}
	if meta.CorpusHash != "deadbeef" {
		t.Errorf("CorpusHash = %q, want deadbeef", meta.CorpusHash)
	}
	if meta.Verses != 8 {
		t.Errorf("Verses = %d, want 8", meta.Verses)
	}

	ids, err := ix.Books()
	if err != nil {
		t.Fatalf("Books() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"EXO", "JUD"}) {
		t.Errorf("Books() = %v", ids)
	}
}

func TestHasBook(t *testing.T) {
	ix := buildIndex(t)
	for book, want := range map[string]bool{"EXO": true, "JUD": true, "GEN": false} {
		got, err := ix.HasBook(book)
		if err != nil {
			t.Fatalf("HasBook(%s) error = %v", book, err)
		}
		if got != want {
			t.Errorf("HasBook(%s) = %v, want %v", book, got, want)
		}
	}
}

func TestQueryRange(t *testing.T) {
	ix := buildIndex(t)
	records, err := ix.Query("EXO", spanFor(t, "Exodus 15:1-2"))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	want := []extract.Record{
		{Book: "EXO", Chapter: 15, Verse: 1, Text: "Then sang Moses."},
		{Book: "EXO", Chapter: 15, Verse: 2, Text: "The LORD is my strength."},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Query() = %+v, want %+v", records, want)
	}
}

func TestQueryMissingVerses(t *testing.T) {
	ix := buildIndex(t)
	_, err := ix.Query("EXO", spanFor(t, "Exodus 15:1-4"))
	var missing *extract.MissingVersesError
	if !errors.As(err, &missing) {
		t.Fatalf("Query() error = %v, want *MissingVersesError", err)
	}
	if !reflect.DeepEqual(missing.Verses, []int{3, 4}) {
		t.Errorf("missing verses = %v, want [3 4]", missing.Verses)
	}
}

// TestBackendEquivalence is the central contract: for a representative set
// of references, index queries and document traversal yield identical
// records and identical formatted text.
func TestBackendEquivalence(t *testing.T) {
	ix := buildIndex(t)
	docs := map[string]*usj.Document{}
	for _, doc := range testCorpus() {
		docs[doc.BookCode()] = doc
	}

	references := []struct {
		reference string
		book      string
	}{
		{"Exodus 15:2", "EXO"},
		{"Exodus 15:1-2", "EXO"},
		{"Exodus 16", "EXO"},
		{"Exodus 15:29-16:2", "EXO"},
		{"Jude 2", "JUD"},
	}
	for _, tt := range references {
		t.Run(tt.reference, func(t *testing.T) {
			span := spanFor(t, tt.reference)

			traversed, err := extract.Extract(docs[tt.book], span)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			queried, err := ix.Query(tt.book, span)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if !reflect.DeepEqual(traversed, queried) {
				t.Errorf("backends diverge:\n traversal: %+v\n index:     %+v", traversed, queried)
			}

			tl, err := extract.FormatSpan(span, traversed)
			if err != nil {
				t.Fatalf("FormatSpan(traversal) error = %v", err)
			}
			ql, err := extract.FormatSpan(span, queried)
			if err != nil {
				t.Fatalf("FormatSpan(index) error = %v", err)
			}
			if extract.Join(tl) != extract.Join(ql) {
				t.Errorf("formatted output diverges:\n%q\nvs\n%q", extract.Join(tl), extract.Join(ql))
			}
		})
	}
}

// TestBuildIdempotent rebuilds the index from the same corpus and checks
// every test query answers identically.
func TestBuildIdempotent(t *testing.T) {
	ix := buildIndex(t)

	before, err := ix.Query("EXO", spanFor(t, "Exodus 15:29-16:2"))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if _, err := ix.Build(testCorpus(), "deadbeef", nil); err != nil {
		t.Fatalf("second Build() error = %v", err)
	}

	after, err := ix.Query("EXO", spanFor(t, "Exodus 15:29-16:2"))
	if err != nil {
		t.Fatalf("Query() after rebuild error = %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("rebuild changed answers:\n before: %+v\n after:  %+v", before, after)
	}
}

// TestDuplicateBookLastWins documents the duplicate-book policy: the last
// document in corpus order replaces earlier ones key for key.
func TestDuplicateBookLastWins(t *testing.T) {
	first := &usj.Document{Nodes: []usj.Node{
		node(usj.NodeBook, "JUD", 0, ""),
		node(usj.NodeChapter, "", 1, ""),
		node(usj.NodeVerse, "", 1, ""), node(usj.NodeText, "", 0, "old text"),
	}}
	second := &usj.Document{Nodes: []usj.Node{
		node(usj.NodeBook, "JUD", 0, ""),
		node(usj.NodeChapter, "", 1, ""),
		node(usj.NodeVerse, "", 1, ""), node(usj.NodeText, "", 0, "new text"),
	}}

	ix, err := Create(filepath.Join(t.TempDir(), "verses.db"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer ix.Close()

	if _, err := ix.Build([]*usj.Document{first, second}, "", nil); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	records, err := ix.Query("JUD", spanFor(t, "Jude 1"))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 1 || records[0].Text != "new text" {
		t.Errorf("Query() = %+v, want the later document's text", records)
	}
}
