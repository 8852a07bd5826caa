// Package usfm reads USFM (Unified Standard Format Markers) text into the
// document model.
//
// This is a deliberately narrow reader: it keeps the book, chapter, and
// verse markers plus verse text, and drops everything else (headers, notes,
// formatting). That is exactly the node sequence the extraction engine
// consumes; full-fidelity USFM parsing stays with external tooling.
package usfm

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	coreerrors "github.com/FocuswithJustin/Lectern/core/errors"
	"github.com/FocuswithJustin/Lectern/core/usj"
)

var (
	chapterRegex  = regexp.MustCompile(`^(\d+)`)
	verseNumRegex = regexp.MustCompile(`^(\d+)(?:-\d+)?\s*`)

	// Inline note bodies (\f ... \f*, \x ... \x*) are not verse text.
	noteRegex = regexp.MustCompile(`\\[fx]\s.*?\\[fx]\*`)
	// Remaining inline character markers (\add, \nd*, \wj ...) are kept as
	// their text content only.
	inlineMarkerRegex = regexp.MustCompile(`\\\+?[a-zA-Z0-9]+\*?\s?`)
)

// textMarkers are paragraph-level markers whose argument is verse text
// continuing the current verse.
var textMarkers = map[string]bool{
	"p": true, "m": true, "pi": true, "mi": true, "nb": true,
	"q": true, "q1": true, "q2": true, "q3": true,
	"qr": true, "qc": true, "qm": true,
}

// BookID extracts the book identifier from the \id marker near the start of
// a USFM text. Only the first 2000 bytes are examined.
func BookID(data []byte) (string, bool) {
	head := data
	if len(head) > 2000 {
		head = head[:2000]
	}
	scanner := bufio.NewScanner(bytes.NewReader(head))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// \id exactly, not \ide (encoding) or other id-prefixed markers.
		if line == `\id` || strings.HasPrefix(line, `\id `) {
			fields := strings.Fields(strings.TrimPrefix(line, `\id`))
			if len(fields) > 0 {
				return strings.ToUpper(fields[0]), true
			}
			return "", false
		}
	}
	return "", false
}

// Parse converts USFM text into a document. A text without an \id marker,
// or with an unparsable chapter or verse number, is a hard failure.
func Parse(data []byte) (*usj.Document, error) {
	doc := &usj.Document{}
	sawVerse := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, `\`) {
			// Continuation of the current verse across a line break.
			if sawVerse {
				doc.Nodes = append(doc.Nodes, textNode(line))
			}
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		marker := strings.TrimPrefix(parts[0], `\`)
		var value string
		if len(parts) > 1 {
			value = strings.TrimSpace(parts[1])
		}

		switch {
		case marker == "id":
			fields := strings.Fields(value)
			if len(fields) == 0 {
				return nil, fmt.Errorf("%w: \\id marker without book code", coreerrors.ErrInvalidInput)
			}
			doc.Nodes = append(doc.Nodes, usj.Node{Type: usj.NodeBook, Code: strings.ToUpper(fields[0])})

		case marker == "c":
			m := chapterRegex.FindStringSubmatch(value)
			if m == nil {
				return nil, fmt.Errorf("%w: chapter marker %q", coreerrors.ErrInvalidInput, line)
			}
			number, _ := strconv.Atoi(m[1])
			doc.Nodes = append(doc.Nodes, usj.Node{Type: usj.NodeChapter, Number: number})
			sawVerse = false

		case marker == "v":
			m := verseNumRegex.FindStringSubmatch(value)
			if m == nil {
				return nil, fmt.Errorf("%w: verse marker %q", coreerrors.ErrInvalidInput, line)
			}
			number, _ := strconv.Atoi(m[1])
			doc.Nodes = append(doc.Nodes, usj.Node{Type: usj.NodeVerse, Number: number})
			sawVerse = true
			if text := value[len(m[0]):]; text != "" {
				doc.Nodes = append(doc.Nodes, textNode(text))
			}

		case textMarkers[marker]:
			if sawVerse && value != "" {
				doc.Nodes = append(doc.Nodes, textNode(value))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading USFM: %w", err)
	}

	if doc.BookCode() == "" {
		return nil, fmt.Errorf("%w: USFM text has no \\id marker", coreerrors.ErrInvalidInput)
	}
	return doc, nil
}

// textNode strips inline markup and emits a text run. A trailing space marks
// the line break so runs concatenate without jamming words together.
func textNode(text string) usj.Node {
	text = noteRegex.ReplaceAllString(text, "")
	text = inlineMarkerRegex.ReplaceAllString(text, "")
	if !strings.HasSuffix(text, " ") {
		text += " "
	}
	return usj.Node{Type: usj.NodeText, Text: text}
}
