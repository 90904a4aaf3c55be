// Package model defines the deck data model consumed by the navigation
// engine: an ordered sequence of slides, each owning the per-layer build
// visibility metadata produced by the build-spec compiler.
//
// A deck is immutable for the lifetime of a viewing session. Slides are
// addressed by zero-based index internally and by one-based index (or
// symbolic ID) in URL-hash addresses.
package model

import (
	"fmt"
	"regexp"
)

// Layer is the visibility record for a single visual layer of a slide.
type Layer struct {
	// Label is the layer name as authored (build spec and tag
	// annotations included).
	Label string `json:"label"`

	// StepNumbers lists the author-facing step numbers during which the
	// layer is visible, sorted ascending. Numbers may be negative or
	// sparse. A nil slice means the layer carries no build spec and is
	// always visible.
	StepNumbers []int `json:"steps,omitempty"`

	// Tags names the build tags attached to the layer.
	Tags []string `json:"tags,omitempty"`
}

// AlwaysVisible reports whether the layer has no build spec.
func (l Layer) AlwaysVisible() bool {
	return l.StepNumbers == nil
}

// Note is a speaker note attached to a slide.
type Note struct {
	// Text is the note body (markdown).
	Text string `json:"text"`

	// StepNumbers restricts the note to specific step numbers. Nil means
	// the note applies to every step of the slide.
	StepNumbers []int `json:"steps,omitempty"`
}

// Slide is a single slide of a deck.
type Slide struct {
	// ID is the optional symbolic slide ID used in addresses. Empty when
	// the slide has none. Must satisfy ValidID and be unique per deck.
	ID string `json:"id,omitempty"`

	// Source is the path the slide was loaded from, when known.
	Source string `json:"source,omitempty"`

	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	Date   string `json:"date,omitempty"`

	Layers []Layer `json:"layers,omitempty"`
	Notes  []Note  `json:"notes,omitempty"`
}

// Deck is an ordered, immutable sequence of slides.
type Deck struct {
	Slides []Slide `json:"slides"`
}

// A slide ID must not be confusable with a numeric slide index and must
// not contain any of the address grammar's delimiter characters.
var idRegexp = regexp.MustCompile(`^[^0-9#@<][^#@<]*$`)

// ValidID reports whether s is usable as a symbolic slide ID.
func ValidID(s string) bool {
	return idRegexp.MatchString(s)
}

// SlideIDs returns the slide-ID to slide-index lookup for the deck.
// Duplicate or invalid IDs are reported as errors.
func (d *Deck) SlideIDs() (map[string]int, error) {
	ids := make(map[string]int)
	for i, slide := range d.Slides {
		if slide.ID == "" {
			continue
		}
		if !ValidID(slide.ID) {
			return nil, fmt.Errorf("slide %d: invalid slide ID %q", i, slide.ID)
		}
		if prev, ok := ids[slide.ID]; ok {
			return nil, fmt.Errorf("slide %d: slide ID %q already used by slide %d", i, slide.ID, prev)
		}
		ids[slide.ID] = i
	}
	return ids, nil
}

// Validate checks deck-level invariants: at least one slide, and
// well-formed, unique slide IDs.
func (d *Deck) Validate() error {
	if len(d.Slides) == 0 {
		return fmt.Errorf("deck has no slides")
	}
	if _, err := d.SlideIDs(); err != nil {
		return err
	}
	return nil
}
