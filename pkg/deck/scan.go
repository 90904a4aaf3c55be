package deck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/slidewalk/pkg/model"
)

// Scan lists the slide files of a deck directory: every *.svg file
// with a numeric filename prefix, ordered by prefix value with natural
// name ordering breaking ties. Hidden files and files without a prefix
// are skipped.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type slideFile struct {
		name   string
		number int
	}
	var files []slideFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".svg") {
			continue
		}
		number, err := ExtractPrefix(name)
		if err != nil {
			continue
		}
		files = append(files, slideFile{name: name, number: number})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].number != files[j].number {
			return files[i].number < files[j].number
		}
		return natural.Less(files[i].name, files[j].name)
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Join(dir, f.name)
	}
	return paths, nil
}

// Load reads a whole deck from a directory, parsing the slide files
// concurrently. Slides appear in filename prefix order regardless of
// parse completion order. A deck directory with no slide files is an
// error.
func Load(ctx context.Context, dir string) (*model.Deck, error) {
	paths, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: no slide files found", dir)
	}

	slides := make([]model.Slide, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slide, err := LoadSlide(path)
			if err != nil {
				return err
			}
			slides[i] = slide
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &model.Deck{Slides: slides}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
