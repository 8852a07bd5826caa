// Package corpus loads scripture corpora from the filesystem.
//
// A corpus is either a directory of book files, a zip archive of book files,
// or a prebuilt SQLite verse index. This package handles the first two: it
// enumerates files, transparently decompresses .xz entries, dispatches each
// file to the reader for its format, and fingerprints the whole set with a
// BLAKE3 hash so index builds can record what they were built from.
package corpus

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	coreerrors "github.com/FocuswithJustin/Lectern/core/errors"
	"github.com/FocuswithJustin/Lectern/core/usfm"
	"github.com/FocuswithJustin/Lectern/core/usj"
	"github.com/FocuswithJustin/Lectern/core/usx"
)

// File is one book file from a corpus, already decompressed.
type File struct {
	Name string
	Data []byte
}

// FileSet is an ordered corpus: files sorted by name with numeric runs
// compared as numbers, so book02 sorts before book10.
type FileSet struct {
	Files []File
}

// IsIndexPath reports whether path names a prebuilt SQLite verse index
// rather than a file corpus.
func IsIndexPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Load reads a corpus from a directory or a zip archive. Hidden files and
// unrecognized extensions are skipped; an empty result is an error.
func Load(path string) (*FileSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}

	var fs *FileSet
	if info.IsDir() {
		fs, err = loadDir(path)
	} else if strings.EqualFold(filepath.Ext(path), ".zip") {
		fs, err = loadZip(path)
	} else {
		return nil, fmt.Errorf("%w: corpus %s is neither a directory nor a zip archive", coreerrors.ErrUnsupported, path)
	}
	if err != nil {
		return nil, err
	}
	if len(fs.Files) == 0 {
		return nil, fmt.Errorf("%w: corpus %s contains no book files", coreerrors.ErrNotFound, path)
	}

	sort.Slice(fs.Files, func(i, j int) bool {
		return naturalLess(fs.Files[i].Name, fs.Files[j].Name)
	})
	return fs, nil
}

func loadDir(dir string) (*FileSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus dir: %w", err)
	}
	fs := &FileSet{}
	for _, entry := range entries {
		if entry.IsDir() || !keep(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		name, data, err := decompress(entry.Name(), data)
		if err != nil {
			return nil, err
		}
		fs.Files = append(fs.Files, File{Name: name, Data: data})
	}
	return fs, nil
}

func loadZip(path string) (*FileSet, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus archive: %w", err)
	}
	defer zr.Close()

	fs := &FileSet{}
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		base := filepath.Base(zf.Name)
		if !keep(base) {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("opening archive entry %s: %w", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading archive entry %s: %w", zf.Name, err)
		}
		name, data, err := decompress(base, data)
		if err != nil {
			return nil, err
		}
		fs.Files = append(fs.Files, File{Name: name, Data: data})
	}
	return fs, nil
}

// keep reports whether name looks like a book file, before any .xz suffix
// is considered.
func keep(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	base := strings.TrimSuffix(name, ".xz")
	switch strings.ToLower(filepath.Ext(base)) {
	case ".usfm", ".sfm", ".usj", ".json", ".usx":
		return true
	}
	return false
}

// decompress unwraps an .xz entry, returning the inner file name.
func decompress(name string, data []byte) (string, []byte, error) {
	if !strings.HasSuffix(name, ".xz") {
		return name, data, nil
	}
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("decompressing %s: %w", name, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("decompressing %s: %w", name, err)
	}
	return strings.TrimSuffix(name, ".xz"), out, nil
}

// Hash fingerprints the file set: a BLAKE3 hash over every name and content
// in order. The same files always produce the same hash.
func (fs *FileSet) Hash() string {
	h := blake3.New()
	for _, f := range fs.Files {
		fmt.Fprintf(h, "%s\x00%d\x00", f.Name, len(f.Data))
		h.Write(f.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ParseFile converts one book file into the document model, dispatching on
// the file extension.
func ParseFile(name string, data []byte) (*usj.Document, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".usfm", ".sfm":
		return usfm.Parse(data)
	case ".usj", ".json":
		return usj.Decode(data)
	case ".usx":
		return usx.Parse(data)
	}
	return nil, fmt.Errorf("%w: unrecognized book file %s", coreerrors.ErrUnsupported, name)
}

// BookCode sniffs the book identifier from a file without a full parse.
func BookCode(name string, data []byte) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".usfm", ".sfm":
		return usfm.BookID(data)
	case ".usj", ".json":
		doc, err := usj.Decode(data)
		if err != nil {
			return "", false
		}
		code := doc.BookCode()
		return code, code != ""
	case ".usx":
		return usx.BookCode(data)
	}
	return "", false
}

// naturalLess compares names with embedded numbers compared numerically.
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			an, arest := splitNum(a)
			bn, brest := splitNum(b)
			if an != bn {
				return an < bn
			}
			a, b = arest, brest
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitNum(s string) (int, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	n := 0
	for _, c := range s[:i] {
		n = n*10 + int(c-'0')
	}
	return n, s[i:]
}
