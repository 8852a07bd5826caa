// Command lectern resolves scripture verse references against a corpus.
// A corpus is a directory or zip archive of USFM/USJ/USX book files, or a
// prebuilt SQLite verse index.
package main

import (
	"fmt"
	"log"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/Lectern/core/corpus"
	"github.com/FocuswithJustin/Lectern/core/index"
	"github.com/FocuswithJustin/Lectern/core/service"
	"github.com/FocuswithJustin/Lectern/core/sqlite"
)

const version = "0.1.0"

// CLI defines the command-line interface for lectern.
var CLI struct {
	Extract ExtractCmd `cmd:"" help:"Extract verse text for a reference"`
	Index   IndexGroup `cmd:"" help:"Verse index operations"`
	Books   BooksCmd   `cmd:"" help:"List recognized book names"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ExtractCmd extracts verse text for a reference.
type ExtractCmd struct {
	Corpus    string `arg:"" help:"Corpus path: directory, zip archive, or SQLite index" type:"path"`
	Reference string `arg:"" help:"Verse reference, e.g. 'Exodus 15:1-2,11-15'"`
}

func (c *ExtractCmd) Run() error {
	svc := service.New()
	text, err := svc.Resolve(c.Corpus, c.Reference)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

// IndexGroup contains verse index operations.
type IndexGroup struct {
	Build IndexBuildCmd `cmd:"" help:"Build a SQLite verse index from a file corpus"`
	Info  IndexInfoCmd  `cmd:"" help:"Display index build metadata"`
}

// IndexBuildCmd builds a verse index from a file corpus.
type IndexBuildCmd struct {
	Corpus string `arg:"" help:"Corpus path: directory or zip archive" type:"path"`
	Output string `arg:"" help:"Output SQLite index path" type:"path"`
	Quiet  bool   `short:"q" help:"Suppress per-book progress"`
}

func (c *IndexBuildCmd) Run() error {
	svc := service.New()
	progress := func(book string, n, total int) {
		log.Printf("indexed %s (%d/%d)", book, n, total)
	}
	if c.Quiet {
		progress = nil
	}
	result, err := svc.BuildIndex(c.Corpus, c.Output, progress)
	if err != nil {
		return err
	}
	fmt.Printf("built %s: %d books, %d verses (build %s, %s driver)\n",
		c.Output, result.Documents, result.Verses, result.BuildID, sqlite.DriverType())
	return nil
}

// IndexInfoCmd displays index build metadata.
type IndexInfoCmd struct {
	Path string `arg:"" help:"SQLite index path" type:"existingfile"`
}

func (c *IndexInfoCmd) Run() error {
	if !corpus.IsIndexPath(c.Path) {
		return fmt.Errorf("%s is not an index file", c.Path)
	}
	ix, err := index.Open(c.Path)
	if err != nil {
		return err
	}
	defer ix.Close()

	meta, err := ix.Meta()
	if err != nil {
		return err
	}
	ids, err := ix.Books()
	if err != nil {
		return err
	}
	fmt.Printf("build:       %s\n", meta.BuildID)
	fmt.Printf("built at:    %s\n", meta.BuiltAt)
	fmt.Printf("corpus hash: %s\n", meta.CorpusHash)
	fmt.Printf("verses:      %d\n", meta.Verses)
	fmt.Printf("books:       %d\n", len(ids))
	for _, id := range ids {
		fmt.Printf("  %s\n", id)
	}
	return nil
}

// BooksCmd lists recognized book names.
type BooksCmd struct{}

func (c *BooksCmd) Run() error {
	svc := service.New()
	for _, name := range svc.Catalog().Names() {
		fmt.Println(name)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("lectern version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("lectern"),
		kong.Description("Lectern - verse reference resolution and extraction"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
