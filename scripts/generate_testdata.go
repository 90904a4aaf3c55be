//go:build ignore
// +build ignore

// generate_testdata.go creates synthetic slide decks for benchmarking
// and manual testing.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	tests/testdata/decks/small/   (5 slides)
//	tests/testdata/decks/medium/  (40 slides)
//	tests/testdata/decks/large/   (200 slides)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"
)

type deckSpec struct {
	name   string
	slides int
	steps  int
}

var decks = []deckSpec{
	{"small", 5, 3},
	{"medium", 40, 4},
	{"large", 200, 5},
}

const (
	slideWidth  = 1920
	slideHeight = 1080
)

func main() {
	for _, spec := range decks {
		dir := filepath.Join("tests", "testdata", "decks", spec.name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", dir, err)
			os.Exit(1)
		}
		for i := 0; i < spec.slides; i++ {
			path := filepath.Join(dir, fmt.Sprintf("%03d_slide_%d.svg", (i+1)*100, i+1))
			if err := writeSlide(path, i, spec.steps); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
				os.Exit(1)
			}
		}
		fmt.Printf("Generated %s: %d slides x %d steps\n", spec.name, spec.slides, spec.steps)
	}
}

// writeSlide emits one Inkscape-flavored SVG slide: a base layer, one
// build layer per step, and a speaker note. The first slide of a deck
// also gets a symbolic ID via a magic text block.
func writeSlide(path string, index, steps int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	canvas := svg.New(f)
	canvas.Start(slideWidth, slideHeight,
		`xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape"`)

	canvas.Group(`inkscape:groupmode="layer"`, `inkscape:label="Base"`)
	canvas.Rect(0, 0, slideWidth, slideHeight, "fill:#ffffff")
	canvas.Text(slideWidth/2, 120, fmt.Sprintf("Slide %d", index+1),
		"text-anchor:middle;font-size:72px")
	canvas.Gend()

	for n := 1; n < steps; n++ {
		label := fmt.Sprintf("Bullet %d &lt;%d-&gt;", n, n)
		canvas.Group(`inkscape:groupmode="layer"`,
			fmt.Sprintf(`inkscape:label="%s"`, label))
		canvas.Text(200, 200+n*100, fmt.Sprintf("Point %d of slide %d", n, index+1),
			"font-size:48px")
		canvas.Gend()
	}

	canvas.Group(`inkscape:groupmode="layer"`, `inkscape:label="Notes"`, `style="display:none"`)
	canvas.Text(0, 0, fmt.Sprintf("###\nTalk track for slide %d.", index+1))
	if index == 0 {
		canvas.Text(0, 40, "@@@\nid = \"opening\"")
	}
	canvas.Gend()

	canvas.End()
	return nil
}
