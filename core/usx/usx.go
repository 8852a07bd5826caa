// Package usx reads USX (Unified Scripture XML) documents into the
// document model.
//
// USX interleaves milestone markers (<chapter/>, <verse/>) with text inside
// paragraph elements, so the reader walks the XML tree in document order and
// flattens it to the book/chapter/verse/text node sequence. Note subtrees
// are skipped; USX 3 end-milestones (eid attributes without a number) are
// ignored.
package usx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	coreerrors "github.com/FocuswithJustin/Lectern/core/errors"
	"github.com/FocuswithJustin/Lectern/core/usj"
)

var (
	usxExpr  = xpath.MustCompile("//usx")
	bookExpr = xpath.MustCompile("//book[@code]")
)

// BookCode extracts the book identifier from a USX document without a full
// conversion.
func BookCode(data []byte) (string, bool) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	book := xmlquery.QuerySelector(root, bookExpr)
	if book == nil {
		return "", false
	}
	code := strings.ToUpper(book.SelectAttr("code"))
	return code, code != ""
}

// Parse converts a USX document into the node sequence. Malformed XML or a
// missing usx root is a hard failure.
func Parse(data []byte) (*usj.Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing USX: %w", err)
	}
	usx := xmlquery.QuerySelector(root, usxExpr)
	if usx == nil {
		return nil, fmt.Errorf("%w: no usx root element", coreerrors.ErrInvalidInput)
	}

	doc := &usj.Document{}
	if err := walk(usx, doc); err != nil {
		return nil, err
	}
	if doc.BookCode() == "" {
		return nil, fmt.Errorf("%w: USX document has no book element", coreerrors.ErrInvalidInput)
	}
	return doc, nil
}

// walk flattens the element tree in document order.
func walk(n *xmlquery.Node, doc *usj.Document) error {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			switch child.Data {
			case "book":
				doc.Nodes = append(doc.Nodes, usj.Node{
					Type: usj.NodeBook,
					Code: strings.ToUpper(child.SelectAttr("code")),
				})
			case "chapter":
				number := child.SelectAttr("number")
				if number == "" {
					continue // end milestone
				}
				num, err := strconv.Atoi(number)
				if err != nil {
					return fmt.Errorf("%w: chapter number %q", coreerrors.ErrInvalidInput, number)
				}
				doc.Nodes = append(doc.Nodes, usj.Node{Type: usj.NodeChapter, Number: num})
			case "verse":
				number := child.SelectAttr("number")
				if number == "" {
					continue // end milestone
				}
				// Bridged verses ("1-2") address the first number.
				if dash := strings.IndexByte(number, '-'); dash > 0 {
					number = number[:dash]
				}
				num, err := strconv.Atoi(number)
				if err != nil {
					return fmt.Errorf("%w: verse number %q", coreerrors.ErrInvalidInput, number)
				}
				doc.Nodes = append(doc.Nodes, usj.Node{Type: usj.NodeVerse, Number: num})
			case "note":
				// Footnotes and cross-references are not verse text.
			default:
				if err := walk(child, doc); err != nil {
					return err
				}
			}
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if text := child.Data; strings.TrimSpace(text) != "" {
				doc.Nodes = append(doc.Nodes, usj.Node{Type: usj.NodeText, Text: text})
			}
		}
	}
	return nil
}
