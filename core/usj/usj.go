// Package usj defines the document model consumed by the extraction engine.
//
// A document is an ordered, read-only sequence of typed nodes: a book marker,
// chapter markers, verse markers, and text runs. The sequence is the output
// schema of USJ ("Unified Scripture JSON") parsers filtered down to
// book/chapter/verse markers plus text, and every corpus reader (USJ, USFM,
// USX) produces it. Text runs belong to the most recently seen chapter/verse
// pair; that context is sticky until the next chapter or verse marker.
package usj

// NodeType identifies the kind of a document node.
type NodeType string

// Node type constants. The string values match the USJ "type" field.
const (
	NodeBook    NodeType = "book"
	NodeChapter NodeType = "chapter"
	NodeVerse   NodeType = "verse"
	NodeText    NodeType = "text"
)

// Node is a single entry in the document sequence. Exactly one of the
// payload fields is meaningful, selected by Type:
//
//   - NodeBook: Code is the 3-letter book identifier (e.g., "GEN").
//   - NodeChapter, NodeVerse: Number is the chapter or verse number.
//   - NodeText: Text is the raw text run, whitespace preserved.
type Node struct {
	Type   NodeType `json:"type"`
	Code   string   `json:"code,omitempty"`
	Number int      `json:"number,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Document is an immutable snapshot of one parsed book. It is built once by
// a corpus reader and never mutated by the engine.
type Document struct {
	// Nodes is the node sequence in document order.
	Nodes []Node
}

// BookCode returns the identifier from the document's first book node, or ""
// if the document carries no book marker.
func (d *Document) BookCode() string {
	for _, n := range d.Nodes {
		if n.Type == NodeBook {
			return n.Code
		}
	}
	return ""
}

// Chapters returns the chapter numbers in document order.
func (d *Document) Chapters() []int {
	var chapters []int
	for _, n := range d.Nodes {
		if n.Type == NodeChapter {
			chapters = append(chapters, n.Number)
		}
	}
	return chapters
}
