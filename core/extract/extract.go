// Package extract turns a document and a verse span into ordered verse
// records.
//
// Two backends source records (a traversal over the in-memory document
// model, and a range query against the persisted verse index), but both
// resolve the span through the same Window and run the same completeness
// check and formatting, so they agree by construction.
package extract

import (
	"fmt"
	"sort"
	"strings"

	coreerrors "github.com/FocuswithJustin/Lectern/core/errors"
	"github.com/FocuswithJustin/Lectern/core/ref"
	"github.com/FocuswithJustin/Lectern/core/usj"
)

// Record is one extracted verse. The traversal and index backends must
// produce field-for-field interchangeable records.
type Record struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

// Window is a span resolved to concrete chapter/verse bounds. It is the
// single span interpretation shared by both backends.
type Window struct {
	StartChapter int
	StartVerse   int
	EndChapter   int
	EndVerse     int

	// Whole selects every verse of StartChapter with no verse filtering.
	Whole bool
	// Cross marks a cross-chapter range: interior chapters are unbounded
	// and records render with chapter:verse numbers.
	Cross bool
	// Explicit marks a within-chapter range whose completeness is enforced.
	Explicit bool
}

// Resolve translates a span into its window. Books without a chapter in the
// span (single-chapter books) resolve to chapter 1.
func Resolve(span ref.Span) (Window, error) {
	chapter := span.Chapter
	if chapter == 0 {
		chapter = 1
	}

	switch span.End.Kind {
	case ref.WholeChapter:
		return Window{StartChapter: chapter, EndChapter: chapter, Whole: true}, nil
	case ref.SameVerse:
		return Window{
			StartChapter: chapter, StartVerse: span.Verse,
			EndChapter: chapter, EndVerse: span.Verse,
			Explicit: true,
		}, nil
	case ref.ThroughVerse:
		if span.Verse > span.End.Verse {
			return Window{}, &InvalidRangeError{Start: span.Verse, End: span.End.Verse}
		}
		return Window{
			StartChapter: chapter, StartVerse: span.Verse,
			EndChapter: chapter, EndVerse: span.End.Verse,
			Explicit: true,
		}, nil
	case ref.ThroughChapterVerse:
		return Window{
			StartChapter: chapter, StartVerse: span.Verse,
			EndChapter: span.End.Chapter, EndVerse: span.End.Verse,
			Cross: true,
		}, nil
	default:
		return Window{}, fmt.Errorf("%w: end kind %d", coreerrors.ErrUnsupported, span.End.Kind)
	}
}

// ContainsChapter reports whether the chapter lies inside the window.
func (w Window) ContainsChapter(chapter int) bool {
	return chapter >= w.StartChapter && chapter <= w.EndChapter
}

// Contains reports whether (chapter, verse) lies inside the window. The
// start bound applies only on the start chapter and the end bound only on
// the end chapter; interior chapters of a cross-chapter range are unbounded.
func (w Window) Contains(chapter, verse int) bool {
	if !w.ContainsChapter(chapter) {
		return false
	}
	if w.Whole {
		return true
	}
	if chapter == w.StartChapter && verse < w.StartVerse {
		return false
	}
	if chapter == w.EndChapter && verse > w.EndVerse {
		return false
	}
	return true
}

// Missing returns the verse numbers of the window's explicit range that have
// no record, in ascending order. Whole-chapter and cross-chapter windows
// never report gaps (chapter boundaries make them structurally expected).
func Missing(w Window, records []Record) []int {
	if !w.Explicit {
		return nil
	}
	present := make(map[int]bool, len(records))
	for _, r := range records {
		present[r.Verse] = true
	}
	var missing []int
	for v := w.StartVerse; v <= w.EndVerse; v++ {
		if !present[v] {
			missing = append(missing, v)
		}
	}
	return missing
}

// Extract walks the document and returns the records spanned by span, in
// ascending (chapter, verse) order. Explicit within-chapter ranges fail with
// MissingVersesError when a requested verse never appears in the document.
func Extract(doc *usj.Document, span ref.Span) ([]Record, error) {
	window, err := Resolve(span)
	if err != nil {
		return nil, err
	}
	records := collect(doc, window)
	if missing := Missing(window, records); len(missing) > 0 {
		return nil, &MissingVersesError{Chapter: window.StartChapter, Verses: missing}
	}
	return records, nil
}

// All returns every verse record of the document: the whole-document mode
// the index build runs, with every chapter and verse treated as in range.
func All(doc *usj.Document) []Record {
	return collect(doc, Window{})
}

// collect is the traversal shared by Extract and All. A zero window means
// "everything". The chapter/verse context is sticky: a text run belongs to
// the most recently seen chapter and verse markers. Accumulated text is
// trimmed only at emission so internal word boundaries survive.
func collect(doc *usj.Document, window Window) []Record {
	type key struct{ chapter, verse int }
	all := window == Window{}

	book := doc.BookCode()
	texts := make(map[key]*strings.Builder)
	var order []key

	var curChapter, curVerse int
	collecting := all
	open := false

	for _, n := range doc.Nodes {
		switch n.Type {
		case usj.NodeBook:
			if book == "" {
				book = n.Code
			}
		case usj.NodeChapter:
			curChapter = n.Number
			curVerse = 0
			open = false
			if !all {
				collecting = window.ContainsChapter(curChapter)
			}
		case usj.NodeVerse:
			curVerse = n.Number
			open = collecting && curChapter != 0 && (all || window.Contains(curChapter, curVerse))
			if open {
				k := key{curChapter, curVerse}
				if _, ok := texts[k]; !ok {
					texts[k] = &strings.Builder{}
					order = append(order, k)
				}
			}
		case usj.NodeText:
			if open {
				texts[key{curChapter, curVerse}].WriteString(n.Text)
			}
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].chapter != order[j].chapter {
			return order[i].chapter < order[j].chapter
		}
		return order[i].verse < order[j].verse
	})

	records := make([]Record, 0, len(order))
	for _, k := range order {
		records = append(records, Record{
			Book:    book,
			Chapter: k.chapter,
			Verse:   k.verse,
			Text:    strings.TrimSpace(texts[k].String()),
		})
	}
	return records
}
