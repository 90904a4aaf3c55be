// Package build derives per-slide step lookup tables from layer
// visibility metadata.
//
// Two notions of "step" exist and must never be conflated:
//
//   - A step *number* is the author-facing integer written in a build
//     spec. Numbers may be negative and sparse.
//   - A step *index* is the zero-based position of a step within the
//     slide's derived, contiguous step sequence. Indices are what the
//     viewer iterates over.
//
// This package is the single point where the two are reconciled; every
// other component (the stepper, the address codec, the UI) translates
// through the tables built here rather than re-deriving slide geometry.
package build

import (
	"sort"

	"github.com/vanderheijden86/slidewalk/pkg/model"
)

// StepIndexSequence returns the ordered step numbers of a slide, one per
// step index: the inclusive integer range from the smallest to the
// largest step number used by any layer, with 0 always included. The
// result is never empty, always contiguous, and position i holds the
// step number shown at step index i.
func StepIndexSequence(layers []model.Layer) []int {
	lo, hi := 0, 0
	for _, layer := range layers {
		for _, n := range layer.StepNumbers {
			if n < lo {
				lo = n
			}
			if n > hi {
				hi = n
			}
		}
	}

	seq := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		seq = append(seq, n)
	}
	return seq
}

// TagStepMap returns, for each tag appearing on any layer, the sorted
// set of step indices at which a layer bearing that tag is visible.
// Tags present on no layer do not appear; callers must treat absent
// tags as unknown rather than as errors.
func TagStepMap(layers []model.Layer) map[string][]int {
	seq := StepIndexSequence(layers)
	lo := seq[0]

	indices := make(map[string]map[int]struct{})
	for _, layer := range layers {
		if len(layer.Tags) == 0 {
			continue
		}
		for _, n := range layer.StepNumbers {
			idx := n - lo
			for _, tag := range layer.Tags {
				set, ok := indices[tag]
				if !ok {
					set = make(map[int]struct{})
					indices[tag] = set
				}
				set[idx] = struct{}{}
			}
		}
	}

	out := make(map[string][]int, len(indices))
	for tag, set := range indices {
		steps := make([]int, 0, len(set))
		for idx := range set {
			steps = append(steps, idx)
		}
		sort.Ints(steps)
		out[tag] = steps
	}
	return out
}

// SlideSteps is the precomputed, immutable step lookup table for one
// slide.
type SlideSteps struct {
	numbers  []int
	tagSteps map[string][]int
}

// NewSlideSteps derives the lookup table for a slide's layers.
func NewSlideSteps(layers []model.Layer) SlideSteps {
	return SlideSteps{
		numbers:  StepIndexSequence(layers),
		tagSteps: TagStepMap(layers),
	}
}

// Count returns the number of steps in the slide. Always >= 1.
func (s SlideSteps) Count() int {
	return len(s.numbers)
}

// Numbers returns the step number at each step index.
func (s SlideSteps) Numbers() []int {
	out := make([]int, len(s.numbers))
	copy(out, s.numbers)
	return out
}

// NumberAt returns the author-facing step number at the given step
// index. Out-of-range indices clamp to the nearest valid step.
func (s SlideSteps) NumberAt(index int) int {
	if index < 0 {
		index = 0
	}
	if index >= len(s.numbers) {
		index = len(s.numbers) - 1
	}
	return s.numbers[index]
}

// IndexOf returns the step index showing the given step number.
func (s SlideSteps) IndexOf(number int) (int, bool) {
	lo := s.numbers[0]
	idx := number - lo
	if idx < 0 || idx >= len(s.numbers) {
		return 0, false
	}
	return idx, true
}

// TagSteps returns the sorted step indices at which the tag is visible.
func (s SlideSteps) TagSteps(tag string) ([]int, bool) {
	steps, ok := s.tagSteps[tag]
	if !ok {
		return nil, false
	}
	out := make([]int, len(steps))
	copy(out, steps)
	return out, true
}

// FirstTagStep returns the first step index at which the tag is visible.
func (s SlideSteps) FirstTagStep(tag string) (int, bool) {
	steps, ok := s.tagSteps[tag]
	if !ok || len(steps) == 0 {
		return 0, false
	}
	return steps[0], true
}

// Tags returns all tags known to the slide, sorted.
func (s SlideSteps) Tags() []string {
	tags := make([]string, 0, len(s.tagSteps))
	for tag := range s.tagSteps {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TagsAt returns the sorted set of tags active at the given step index.
func (s SlideSteps) TagsAt(index int) []string {
	var tags []string
	for tag, steps := range s.tagSteps {
		for _, idx := range steps {
			if idx == index {
				tags = append(tags, tag)
				break
			}
			if idx > index {
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// Index is the per-deck arena of slide step tables plus the slide-ID
// lookup. It is built once per deck and shared read-only by the stepper
// and the address codec.
type Index struct {
	slides []SlideSteps
	ids    map[string]int
}

// NewIndex precomputes the step tables for every slide of a deck.
// The deck must pass model.Deck.Validate; invalid decks are reported as
// errors rather than producing a half-built index.
func NewIndex(d *model.Deck) (*Index, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	ids, err := d.SlideIDs()
	if err != nil {
		return nil, err
	}

	slides := make([]SlideSteps, len(d.Slides))
	for i, slide := range d.Slides {
		slides[i] = NewSlideSteps(slide.Layers)
	}
	return &Index{slides: slides, ids: ids}, nil
}

// SlideCount returns the number of slides in the deck.
func (ix *Index) SlideCount() int {
	return len(ix.slides)
}

// StepCount returns the number of steps of the given slide. Out-of-range
// slides report zero steps.
func (ix *Index) StepCount(slide int) int {
	if slide < 0 || slide >= len(ix.slides) {
		return 0
	}
	return ix.slides[slide].Count()
}

// Slide returns the step table for the given slide index.
func (ix *Index) Slide(slide int) (SlideSteps, bool) {
	if slide < 0 || slide >= len(ix.slides) {
		return SlideSteps{}, false
	}
	return ix.slides[slide], true
}

// SlideIndexByID resolves a symbolic slide ID to its slide index.
func (ix *Index) SlideIndexByID(id string) (int, bool) {
	i, ok := ix.ids[id]
	return i, ok
}

// SlideIDs returns the ID lookup map. The returned map is shared and
// must not be mutated.
func (ix *Index) SlideIDs() map[string]int {
	return ix.ids
}
