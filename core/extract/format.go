package extract

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/Lectern/core/ref"
)

// Separator joins formatted verse records in rendered output.
const Separator = "\n--\n"

// FormatRecord renders one record. Cross-chapter results carry the chapter
// number ("15:29 text"); within-chapter results carry the verse number only
// ("29 text").
func FormatRecord(r Record, withChapter bool) string {
	if withChapter {
		return fmt.Sprintf("%d:%d %s", r.Chapter, r.Verse, r.Text)
	}
	return fmt.Sprintf("%d %s", r.Verse, r.Text)
}

// FormatSpan renders the records of one span. The span decides the record
// shape: cross-chapter spans render chapter:verse, everything else renders
// the bare verse number. Both extraction backends format through here.
func FormatSpan(span ref.Span, records []Record) ([]string, error) {
	window, err := Resolve(span)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = FormatRecord(r, window.Cross)
	}
	return lines, nil
}

// Join joins rendered record lines with the output separator.
func Join(lines []string) string {
	return strings.Join(lines, Separator)
}
