// Package ref parses human-readable scripture references into structured
// verse spans.
//
// A reference is one or more comma-separated segments. Each segment resolves
// against a small grammar, first match wins:
//
//	Book C1:V1-C2:V2   cross-chapter range
//	Book C:V           single verse
//	Book C:V1-V2       verse range within a chapter
//	Book N             verse N for single-chapter books, otherwise the
//	                   whole chapter N
//
// Once a segment establishes a book and chapter, later segments may omit
// them: "Exodus 15:1-2,11-15" continues in Exodus 15, and a segment with a
// colon but no letters ("16:2") re-specifies the chapter within the same
// book. A segment containing letters always names a new book. Whole-chapter
// references are distinct from "verse 1": "Psalm 48" spans every verse of
// the chapter.
package ref

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	coreerrors "github.com/FocuswithJustin/Lectern/core/errors"
)

// EndKind discriminates the end point of a span.
type EndKind int

// End point kinds.
const (
	// SameVerse is a single verse: the span ends where it starts.
	SameVerse EndKind = iota
	// ThroughVerse ends at a later verse in the start chapter.
	ThroughVerse
	// ThroughChapterVerse ends at a verse in a later chapter.
	ThroughChapterVerse
	// WholeChapter spans every verse of the start chapter. Distinct from
	// "verse 1 only"; downstream extraction must tell the two apart.
	WholeChapter
)

// EndPoint is the resolved end of a span. Chapter is set only for
// ThroughChapterVerse; Verse is set for ThroughVerse and ThroughChapterVerse.
type EndPoint struct {
	Kind    EndKind
	Chapter int
	Verse   int
}

// Span is one parsed verse span. Chapter is 0 only for books in the
// single-chapter set, in which case Verse addresses the book's sole chapter.
type Span struct {
	Book    string
	Chapter int
	Verse   int
	End     EndPoint
}

// String returns the canonical rendering of the span.
func (s Span) String() string {
	var sb strings.Builder
	sb.WriteString(s.Book)
	sb.WriteString(" ")
	switch s.End.Kind {
	case WholeChapter:
		fmt.Fprintf(&sb, "%d", s.Chapter)
	case SameVerse:
		if s.Chapter == 0 {
			fmt.Fprintf(&sb, "%d", s.Verse)
		} else {
			fmt.Fprintf(&sb, "%d:%d", s.Chapter, s.Verse)
		}
	case ThroughVerse:
		fmt.Fprintf(&sb, "%d:%d-%d", s.Chapter, s.Verse, s.End.Verse)
	case ThroughChapterVerse:
		fmt.Fprintf(&sb, "%d:%d-%d:%d", s.Chapter, s.Verse, s.End.Chapter, s.End.Verse)
	}
	return sb.String()
}

// InvalidFormatError reports a reference segment matching no grammar rule.
type InvalidFormatError struct {
	Reference string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid verse reference format: %q", e.Reference)
}

func (e *InvalidFormatError) Unwrap() error {
	return coreerrors.ErrInvalidInput
}

// segment is the participle grammar for one reference segment.
// "Exodus 15:29-16:2" parses as Book=Exodus Number=15 Verse=29
// EndNumber=16 EndVerse=2; post-processing decides whether EndNumber is a
// chapter or a verse.
type segment struct {
	Book      string `@Book`
	Number    int    `@Number`
	Verse     *int   `( ":" @Number )?`
	EndNumber *int   `( "-" @Number`
	EndVerse  *int   `  ( ":" @Number )? )?`
}

// segmentLexer tokenizes reference segments. The Book rule admits a single
// leading digit ("1 John") and multi-word names ("Song of Solomon").
var segmentLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+(?:of\s+)?[A-Za-z]+)*\.?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var segmentParser = participle.MustBuild[segment](
	participle.Lexer(segmentLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a full reference string into its ordered spans.
// singleChapterBooks is the closed set of lower-cased book names with exactly
// one chapter; membership alone decides whether a bare number is a verse or a
// chapter. Any unparsable segment fails the entire reference.
func Parse(reference string, singleChapterBooks map[string]bool) ([]Span, error) {
	// En-dashes appear in copied references; treat them as hyphens.
	normalized := strings.ReplaceAll(strings.TrimSpace(reference), "–", "-")
	if normalized == "" {
		return nil, &InvalidFormatError{Reference: reference}
	}

	parts := strings.Split(normalized, ",")
	spans := make([]Span, 0, len(parts))

	var baseBook string
	var baseChapter int
	for i, part := range parts {
		part = strings.TrimSpace(part)
		text := part
		// A segment containing letters names a new book and stands alone.
		// Letter-free segments continue the established book: with a colon
		// they re-specify the chapter, without one they are verses of the
		// established chapter.
		if i > 0 && !containsLetter(part) && baseBook != "" {
			if !strings.Contains(part, ":") && baseChapter != 0 {
				text = fmt.Sprintf("%s %d:%s", baseBook, baseChapter, part)
			} else {
				text = fmt.Sprintf("%s %s", baseBook, part)
			}
		}

		span, err := parseSegment(text, singleChapterBooks)
		if err != nil {
			return nil, &InvalidFormatError{Reference: part}
		}
		baseBook = span.Book
		baseChapter = span.Chapter
		spans = append(spans, span)
	}

	return spans, nil
}

// parseSegment parses one segment into a span.
func parseSegment(text string, singleChapterBooks map[string]bool) (Span, error) {
	seg, err := segmentParser.ParseString("", text)
	if err != nil {
		return Span{}, err
	}

	book := strings.TrimSpace(strings.TrimSuffix(seg.Book, "."))

	switch {
	case seg.Verse != nil && seg.EndNumber != nil && seg.EndVerse != nil:
		// Book C1:V1-C2:V2
		return Span{
			Book:    book,
			Chapter: seg.Number,
			Verse:   *seg.Verse,
			End:     EndPoint{Kind: ThroughChapterVerse, Chapter: *seg.EndNumber, Verse: *seg.EndVerse},
		}, nil

	case seg.Verse != nil && seg.EndNumber != nil:
		// Book C:V1-V2; the number after the dash is a verse, not a chapter.
		return Span{
			Book:    book,
			Chapter: seg.Number,
			Verse:   *seg.Verse,
			End:     EndPoint{Kind: ThroughVerse, Verse: *seg.EndNumber},
		}, nil

	case seg.Verse != nil:
		// Book C:V
		return Span{
			Book:    book,
			Chapter: seg.Number,
			Verse:   *seg.Verse,
			End:     EndPoint{Kind: SameVerse},
		}, nil

	case seg.EndNumber == nil:
		// Book N: a verse for single-chapter books, else the whole chapter.
		if singleChapterBooks[strings.ToLower(book)] {
			return Span{
				Book:  book,
				Verse: seg.Number,
				End:   EndPoint{Kind: SameVerse},
			}, nil
		}
		return Span{
			Book:    book,
			Chapter: seg.Number,
			Verse:   1,
			End:     EndPoint{Kind: WholeChapter},
		}, nil

	default:
		// Book N-M (bare chapter range) is not addressable.
		return Span{}, fmt.Errorf("chapter ranges are not supported: %q", text)
	}
}

func containsLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
