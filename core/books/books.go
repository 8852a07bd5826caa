// Package books maps human book names to canonical identifiers.
//
// The catalog is a static table of the 66 protestant-canon books keyed by
// English name, resolving to the standard 3-letter USFM identifiers. Lookups
// are case-insensitive. Synonyms are enumerated explicitly ("Psalm" and
// "Psalms" both resolve to PSA); there is no general pluralization rule.
package books

import (
	"sort"
	"strings"
)

// idToName is the canonical identifier -> English name table.
var idToName = map[string]string{
	"GEN": "Genesis", "EXO": "Exodus", "LEV": "Leviticus", "NUM": "Numbers",
	"DEU": "Deuteronomy", "JOS": "Joshua", "JDG": "Judges", "RUT": "Ruth",
	"1SA": "1 Samuel", "2SA": "2 Samuel", "1KI": "1 Kings", "2KI": "2 Kings",
	"1CH": "1 Chronicles", "2CH": "2 Chronicles", "EZR": "Ezra", "NEH": "Nehemiah",
	"EST": "Esther", "JOB": "Job", "PSA": "Psalms", "PRO": "Proverbs",
	"ECC": "Ecclesiastes", "SNG": "Song of Solomon", "ISA": "Isaiah", "JER": "Jeremiah",
	"LAM": "Lamentations", "EZK": "Ezekiel", "DAN": "Daniel", "HOS": "Hosea",
	"JOL": "Joel", "AMO": "Amos", "OBA": "Obadiah", "JON": "Jonah",
	"MIC": "Micah", "NAM": "Nahum", "HAB": "Habakkuk", "ZEP": "Zephaniah",
	"HAG": "Haggai", "ZEC": "Zechariah", "MAL": "Malachi",
	"MAT": "Matthew", "MRK": "Mark", "LUK": "Luke", "JHN": "John",
	"ACT": "Acts", "ROM": "Romans", "1CO": "1 Corinthians", "2CO": "2 Corinthians",
	"GAL": "Galatians", "EPH": "Ephesians", "PHP": "Philippians", "COL": "Colossians",
	"1TH": "1 Thessalonians", "2TH": "2 Thessalonians", "1TI": "1 Timothy", "2TI": "2 Timothy",
	"TIT": "Titus", "PHM": "Philemon", "HEB": "Hebrews", "JAS": "James",
	"1PE": "1 Peter", "2PE": "2 Peter", "1JN": "1 John", "2JN": "2 John",
	"3JN": "3 John", "JUD": "Jude", "REV": "Revelation",
}

// synonyms are alternate names resolved in addition to the canonical ones.
// Each entry is deliberate; nothing here is derived.
var synonyms = map[string]string{
	"psalm":         "PSA",
	"song of songs": "SNG",
}

// singleChapterNames is the closed set of books with exactly one chapter.
// A bare number after one of these names is a verse, not a chapter.
var singleChapterNames = map[string]bool{
	"obadiah":  true,
	"philemon": true,
	"jude":     true,
	"2 john":   true,
	"3 john":   true,
}

// Catalog resolves book names to canonical identifiers.
type Catalog struct {
	nameToID map[string]string
}

// NewCatalog builds the static catalog.
func NewCatalog() *Catalog {
	nameToID := make(map[string]string, len(idToName)+len(synonyms))
	for id, name := range idToName {
		nameToID[strings.ToLower(name)] = id
	}
	for name, id := range synonyms {
		nameToID[name] = id
	}
	return &Catalog{nameToID: nameToID}
}

// ID resolves a human book name to its canonical identifier.
// The comparison is case-insensitive.
func (c *Catalog) ID(name string) (string, bool) {
	id, ok := c.nameToID[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Name returns the canonical English name for an identifier.
func (c *Catalog) Name(id string) (string, bool) {
	name, ok := idToName[strings.ToUpper(id)]
	return name, ok
}

// Names returns all canonical English names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(idToName))
	for _, name := range idToName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSingleChapter reports whether the named book has exactly one chapter.
func IsSingleChapter(name string) bool {
	return singleChapterNames[strings.ToLower(strings.TrimSpace(name))]
}

// SingleChapterNames returns the set of single-chapter book names,
// lower-cased, for use by the reference parser.
func SingleChapterNames() map[string]bool {
	set := make(map[string]bool, len(singleChapterNames))
	for name := range singleChapterNames {
		set[name] = true
	}
	return set
}
