package extract

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/FocuswithJustin/Lectern/core/books"
	coreerrors "github.com/FocuswithJustin/Lectern/core/errors"
	"github.com/FocuswithJustin/Lectern/core/ref"
	"github.com/FocuswithJustin/Lectern/core/usj"
)

func book(code string) usj.Node { return usj.Node{Type: usj.NodeBook, Code: code} }
func chapter(n int) usj.Node    { return usj.Node{Type: usj.NodeChapter, Number: n} }
func verse(n int) usj.Node      { return usj.Node{Type: usj.NodeVerse, Number: n} }
func text(s string) usj.Node    { return usj.Node{Type: usj.NodeText, Text: s} }
func doc(nodes ...usj.Node) *usj.Document {
	return &usj.Document{Nodes: nodes}
}

// exodus is a miniature Exodus with a chapter boundary at 15/16.
func exodus() *usj.Document {
	return doc(
		book("EXO"),
		chapter(15),
		verse(1), text("Then sang Moses "), text("this song. "),
		verse(2), text("The LORD is my strength. "),
		verse(29), text("For the horse of Pharaoh went in. "),
		verse(30), text("Thus the LORD saved Israel. "),
		chapter(16),
		verse(1), text("And they took their journey. "),
		verse(2), text("And the whole congregation murmured. "),
		verse(3), text("And the children said. "),
	)
}

func spanFor(t *testing.T, reference string) ref.Span {
	t.Helper()
	spans, err := ref.Parse(reference, books.SingleChapterNames())
	if err != nil {
		t.Fatalf("ref.Parse(%q) error = %v", reference, err)
	}
	if len(spans) != 1 {
		t.Fatalf("ref.Parse(%q) = %d spans, want 1", reference, len(spans))
	}
	return spans[0]
}

func TestExtractSingleVerse(t *testing.T) {
	records, err := Extract(exodus(), spanFor(t, "Exodus 15:2"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := []Record{{Book: "EXO", Chapter: 15, Verse: 2, Text: "The LORD is my strength."}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Extract() = %+v, want %+v", records, want)
	}
}

func TestExtractRange(t *testing.T) {
	records, err := Extract(exodus(), spanFor(t, "Exodus 16:1-3"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Extract() returned %d records, want 3", len(records))
	}
	for i, r := range records {
		if r.Chapter != 16 || r.Verse != i+1 {
			t.Errorf("record[%d] = %d:%d, want 16:%d", i, r.Chapter, r.Verse, i+1)
		}
	}
}

func TestExtractAccumulatesTextRuns(t *testing.T) {
	records, err := Extract(exodus(), spanFor(t, "Exodus 15:1"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	// Two runs concatenated as they appear in the source, trimmed only at
	// the ends.
	if got := records[0].Text; got != "Then sang Moses this song." {
		t.Errorf("Text = %q", got)
	}
}

func TestExtractCrossChapter(t *testing.T) {
	records, err := Extract(exodus(), spanFor(t, "Exodus 15:29-16:2"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	var got []string
	for _, r := range records {
		got = append(got, fmt.Sprintf("%d:%d", r.Chapter, r.Verse))
	}
	want := []string{"15:29", "15:30", "16:1", "16:2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cross-chapter records = %v, want %v", got, want)
	}
}

func TestExtractWholeChapter(t *testing.T) {
	records, err := Extract(exodus(), spanFor(t, "Exodus 16"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	// Every verse of the chapter, no filtering, no completeness demands.
	if len(records) != 3 {
		t.Fatalf("whole chapter returned %d records, want 3", len(records))
	}
}

func TestExtractWholeChapterVsVerseOne(t *testing.T) {
	whole, err := Extract(exodus(), spanFor(t, "Exodus 16"))
	if err != nil {
		t.Fatalf("whole chapter error = %v", err)
	}
	one, err := Extract(exodus(), spanFor(t, "Exodus 16:1"))
	if err != nil {
		t.Fatalf("verse 1 error = %v", err)
	}
	if len(whole) == len(one) {
		t.Error("whole-chapter and verse-1 extractions must differ")
	}
	if whole[0].Text != one[0].Text {
		t.Errorf("verse-1 text %q not contained in whole-chapter first record %q", one[0].Text, whole[0].Text)
	}
}

func TestExtractSingleChapterBook(t *testing.T) {
	jude := doc(
		book("JUD"),
		chapter(1),
		verse(3), text("Beloved, when I gave all diligence. "),
	)
	records, err := Extract(jude, spanFor(t, "Jude 3"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := []Record{{Book: "JUD", Chapter: 1, Verse: 3, Text: "Beloved, when I gave all diligence."}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Extract() = %+v, want %+v", records, want)
	}
}

func TestExtractMissingVerses(t *testing.T) {
	// Verses 3-10 and 11-28 are absent from the miniature Exodus 15.
	_, err := Extract(exodus(), spanFor(t, "Exodus 15:1-4"))
	var missing *MissingVersesError
	if !errors.As(err, &missing) {
		t.Fatalf("Extract() error = %v, want *MissingVersesError", err)
	}
	if missing.Chapter != 15 || !reflect.DeepEqual(missing.Verses, []int{3, 4}) {
		t.Errorf("MissingVersesError = chapter %d verses %v, want chapter 15 verses [3 4]", missing.Chapter, missing.Verses)
	}
	if !errors.Is(err, coreerrors.ErrNotFound) {
		t.Error("MissingVersesError does not unwrap to ErrNotFound")
	}
}

func TestExtractInvalidRange(t *testing.T) {
	_, err := Extract(exodus(), spanFor(t, "Exodus 15:2-1"))
	var invalid *InvalidRangeError
	if !errors.As(err, &invalid) {
		t.Fatalf("Extract() error = %v, want *InvalidRangeError", err)
	}
	if invalid.Start != 2 || invalid.End != 1 {
		t.Errorf("InvalidRangeError = %d-%d, want 2-1", invalid.Start, invalid.End)
	}
	if !errors.Is(err, coreerrors.ErrInvalidInput) {
		t.Error("InvalidRangeError does not unwrap to ErrInvalidInput")
	}
}

func TestExtractNoGapEnforcementAcrossChapters(t *testing.T) {
	// The start chapter's tail and end chapter's head are structurally
	// gapped; cross-chapter extraction must not fail for that.
	if _, err := Extract(exodus(), spanFor(t, "Exodus 15:30-16:1")); err != nil {
		t.Fatalf("cross-chapter Extract() error = %v", err)
	}
}

func TestAll(t *testing.T) {
	records := All(exodus())
	if len(records) != 7 {
		t.Fatalf("All() returned %d records, want 7", len(records))
	}
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		if prev.Chapter > cur.Chapter || (prev.Chapter == cur.Chapter && prev.Verse >= cur.Verse) {
			t.Fatalf("All() not ascending at %d: %d:%d then %d:%d", i, prev.Chapter, prev.Verse, cur.Chapter, cur.Verse)
		}
	}
}

func TestTextBeforeFirstVerseIgnored(t *testing.T) {
	d := doc(
		book("PSA"),
		text("A Psalm of David. "),
		chapter(23),
		text("title text before verse one "),
		verse(1), text("The LORD is my shepherd. "),
	)
	records, err := Extract(d, spanFor(t, "Psalm 23"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(records) != 1 || records[0].Text != "The LORD is my shepherd." {
		t.Errorf("Extract() = %+v", records)
	}
}

func TestFormatSpan(t *testing.T) {
	within, err := FormatSpan(spanFor(t, "Exodus 16:1-2"), []Record{
		{Book: "EXO", Chapter: 16, Verse: 1, Text: "a"},
		{Book: "EXO", Chapter: 16, Verse: 2, Text: "b"},
	})
	if err != nil {
		t.Fatalf("FormatSpan() error = %v", err)
	}
	if !reflect.DeepEqual(within, []string{"1 a", "2 b"}) {
		t.Errorf("within-chapter lines = %v", within)
	}

	cross, err := FormatSpan(spanFor(t, "Exodus 15:30-16:1"), []Record{
		{Book: "EXO", Chapter: 15, Verse: 30, Text: "a"},
		{Book: "EXO", Chapter: 16, Verse: 1, Text: "b"},
	})
	if err != nil {
		t.Fatalf("FormatSpan() error = %v", err)
	}
	if !reflect.DeepEqual(cross, []string{"15:30 a", "16:1 b"}) {
		t.Errorf("cross-chapter lines = %v", cross)
	}

	if got := Join([]string{"1 a", "2 b"}); got != "1 a\n--\n2 b" {
		t.Errorf("Join() = %q", got)
	}
}
