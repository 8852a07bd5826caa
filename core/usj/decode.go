package usj

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// envelope is the top-level USJ structure emitted by external USFM parsers.
// Content items are heterogeneous: marker objects or bare text strings.
type envelope struct {
	Type    string            `json:"type"`
	Version string            `json:"version,omitempty"`
	Content []json.RawMessage `json:"content"`
}

// contentItem is the object form of a USJ content entry. Marker numbers are
// strings on the wire ("1", "18"); Text carries attributed text runs.
type contentItem struct {
	Type   string `json:"type"`
	Code   string `json:"code,omitempty"`
	Number string `json:"number,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Decode parses USJ JSON into a Document. Only book, chapter, and verse
// markers plus text runs are retained; other marker types are dropped.
// Malformed input (bad JSON, non-numeric chapter or verse numbers) is a hard
// failure with no partial result.
func Decode(data []byte) (*Document, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding USJ: %w", err)
	}

	doc := &Document{Nodes: make([]Node, 0, len(env.Content))}
	for i, raw := range env.Content {
		trimmed := strings.TrimLeft(string(raw), " \t\r\n")
		if strings.HasPrefix(trimmed, `"`) {
			// Bare string: a text run.
			var text string
			if err := json.Unmarshal(raw, &text); err != nil {
				return nil, fmt.Errorf("decoding USJ content[%d]: %w", i, err)
			}
			doc.Nodes = append(doc.Nodes, Node{Type: NodeText, Text: text})
			continue
		}

		var item contentItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decoding USJ content[%d]: %w", i, err)
		}

		switch NodeType(item.Type) {
		case NodeBook:
			doc.Nodes = append(doc.Nodes, Node{Type: NodeBook, Code: strings.ToUpper(item.Code)})
		case NodeChapter:
			num, err := strconv.Atoi(item.Number)
			if err != nil {
				return nil, fmt.Errorf("decoding USJ content[%d]: chapter number %q: %w", i, item.Number, err)
			}
			doc.Nodes = append(doc.Nodes, Node{Type: NodeChapter, Number: num})
		case NodeVerse:
			num, err := strconv.Atoi(item.Number)
			if err != nil {
				return nil, fmt.Errorf("decoding USJ content[%d]: verse number %q: %w", i, item.Number, err)
			}
			doc.Nodes = append(doc.Nodes, Node{Type: NodeVerse, Number: num})
		default:
			// Char-level markers still carry text worth keeping; anything
			// else (paragraph markers without text, milestones) is dropped.
			if item.Text != "" {
				doc.Nodes = append(doc.Nodes, Node{Type: NodeText, Text: item.Text})
			}
		}
	}

	return doc, nil
}
