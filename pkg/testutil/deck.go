// Package testutil provides deck fixture builders for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/slidewalk/pkg/model"
)

// DeckWithStepCounts builds a deck whose slides have exactly the given
// step counts. A slide with count n steps gets one layer per extra step
// carrying step numbers 1..n-1; step 0 always exists on its own.
func DeckWithStepCounts(counts ...int) *model.Deck {
	slides := make([]model.Slide, len(counts))
	for i, count := range counts {
		slides[i] = SlideWithStepCount(count)
		slides[i].Source = fmt.Sprintf("%03d_slide.svg", (i+1)*100)
	}
	return &model.Deck{Slides: slides}
}

// SlideWithStepCount builds a slide with exactly count steps, numbered
// 0 through count-1.
func SlideWithStepCount(count int) model.Slide {
	var layers []model.Layer
	for n := 1; n < count; n++ {
		layers = append(layers, model.Layer{
			Label:       fmt.Sprintf("Bullet %d <%d>", n, n),
			StepNumbers: []int{n},
		})
	}
	return model.Slide{Layers: layers}
}

// SlideWithNumbers builds a single-layer slide whose layer is visible
// at the given step numbers.
func SlideWithNumbers(numbers ...int) model.Slide {
	return model.Slide{
		Layers: []model.Layer{{Label: "Content", StepNumbers: numbers}},
	}
}

// TaggedLayer builds a layer visible at the given step numbers and
// bearing the given tags.
func TaggedLayer(tags []string, numbers ...int) model.Layer {
	return model.Layer{Label: "Tagged", StepNumbers: numbers, Tags: tags}
}

// GeneratorConfig controls random deck generation.
type GeneratorConfig struct {
	Seed       int64    // Random seed for determinism (0 = 42)
	SlideCount int      // Number of slides (0 = 5)
	MaxSteps   int      // Maximum steps per slide (0 = 6)
	TagPool    []string // Tags sprinkled over layers (nil = a small default pool)
}

// Generator creates random but reproducible decks, for property tests
// that want more shape variety than the fixed builders give.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// NewGenerator creates a Generator with the given config.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.SlideCount == 0 {
		cfg.SlideCount = 5
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = 6
	}
	if cfg.TagPool == nil {
		cfg.TagPool = []string{"intro", "detail", "summary"}
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Deck generates a deck. Slides get between one and MaxSteps steps;
// roughly a third of the layers are tagged, and some slides use
// negative step numbers so tests exercise offset step sequences.
func (g *Generator) Deck() *model.Deck {
	slides := make([]model.Slide, g.cfg.SlideCount)
	for i := range slides {
		steps := 1 + g.rng.Intn(g.cfg.MaxSteps)
		lo := 0
		if g.rng.Intn(4) == 0 {
			lo = -g.rng.Intn(3)
		}

		var layers []model.Layer
		for n := lo; n < lo+steps; n++ {
			if n == 0 {
				continue // step 0 exists without a layer
			}
			layer := model.Layer{
				Label:       fmt.Sprintf("Layer %d <%d>", n, n),
				StepNumbers: []int{n},
			}
			if g.rng.Intn(3) == 0 {
				layer.Tags = []string{g.cfg.TagPool[g.rng.Intn(len(g.cfg.TagPool))]}
			}
			layers = append(layers, layer)
		}
		slides[i] = model.Slide{
			Source: fmt.Sprintf("%03d_slide.svg", (i+1)*100),
			Layers: layers,
		}
	}
	return &model.Deck{Slides: slides}
}
