package testutil

import (
	"testing"

	"github.com/vanderheijden86/slidewalk/pkg/model"
)

// AssertSlideCount verifies the expected number of slides.
func AssertSlideCount(t *testing.T, d *model.Deck, expected int) {
	t.Helper()
	if len(d.Slides) != expected {
		t.Errorf("expected %d slides, got %d", expected, len(d.Slides))
	}
}

// AssertValidDeck verifies the deck passes validation.
func AssertValidDeck(t *testing.T, d *model.Deck) {
	t.Helper()
	if err := d.Validate(); err != nil {
		t.Errorf("deck invalid: %v", err)
	}
}

// AssertNoDuplicateIDs verifies all slide IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, d *model.Deck) {
	t.Helper()
	seen := make(map[string]bool)
	for i, slide := range d.Slides {
		if slide.ID == "" {
			continue
		}
		if seen[slide.ID] {
			t.Errorf("slide %d: duplicate slide ID %q", i, slide.ID)
		}
		seen[slide.ID] = true
	}
}

// AssertIntsEqual verifies two int slices match element for element.
func AssertIntsEqual(t *testing.T, name string, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s = %v, want %v", name, got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}
