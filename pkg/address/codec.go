// Package address implements the URL-hash address codec: the
// bidirectional mapping between a (slide, step) position and the
// shareable address strings used in links and the browser address bar.
//
// The grammar is the wire-level contract shared with every other slidie
// viewer implementation; bookmarked links must keep resolving
// identically, so the pattern below must not drift.
package address

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/vanderheijden86/slidewalk/pkg/build"
)

// linkRegexp matches the full address grammar:
//
//	# [ slideIndex | slideId ] [ "#" stepIndex | "<" stepNumber ">" | "@" stepTag ]
//
// Slide and step components are both optional. The three step forms are
// mutually exclusive; a second step specifier fails the whole match.
var linkRegexp = regexp.MustCompile(
	`^#` +
		// Slide spec
		`(?:` +
		`([0-9]+)` + // 1: one-based slide index
		`|` +
		`([^0-9#@<][^#@<]*)` + // 2: symbolic slide ID
		`)?` +
		// Build step spec
		`(?:` +
		`(?:#([0-9]+))` + // 3: one-based step index
		`|` +
		`(?:<([-+]?[0-9]+)>)` + // 4: author-facing step number
		`|` +
		`(?:@([^\s<>.@]+))` + // 5: build tag
		`)?` +
		`$`,
)

// Codec translates between addresses and (slide, step) pairs for one
// deck. It holds only read-only precomputed tables and is safe for
// concurrent use.
type Codec struct {
	index *build.Index
}

// NewCodec builds a codec over a deck's step index.
func NewCodec(ix *build.Index) *Codec {
	return &Codec{index: ix}
}

// Encode returns the canonical address of a (slide, step) position:
// "#<slide+1>" when step is 0, "#<slide+1>#<step+1>" otherwise. Encode
// is total; it performs no range checking.
func Encode(slide, step int) string {
	if step == 0 {
		return fmt.Sprintf("#%d", slide+1)
	}
	return fmt.Sprintf("#%d#%d", slide+1, step+1)
}

// Encode returns the canonical address of a (slide, step) position.
func (c *Codec) Encode(slide, step int) string {
	return Encode(slide, step)
}

// Decode resolves an address to a (slide, step) pair.
//
// An empty or "#"-only address means "current slide, step 0". A numeric
// slide or step reference is returned as-is even when out of range for
// the deck; rejecting it is the caller's decision. An unknown symbolic
// slide ID or a string that does not match the grammar fails the decode
// (ok is false). An unknown step number or tag on an otherwise valid
// slide silently resolves to step 0.
func (c *Codec) Decode(hash string, currentSlide int) (slide, step int, ok bool) {
	if hash == "" {
		hash = "#"
	}

	m := linkRegexp.FindStringSubmatch(hash)
	if m == nil {
		return 0, 0, false
	}
	slideIndex, slideID := m[1], m[2]
	stepIndex, stepNumber, stepTag := m[3], m[4], m[5]

	// Work out the slide index.
	slide = currentSlide
	switch {
	case slideIndex != "":
		n, err := strconv.Atoi(slideIndex)
		if err != nil {
			return 0, 0, false
		}
		slide = n - 1
	case slideID != "":
		i, found := c.index.SlideIndexByID(slideID)
		if !found {
			return 0, 0, false
		}
		slide = i
	}

	// Work out the step index. Step number and tag lookups need the
	// slide's step tables, which only exist for in-range slides; for
	// out-of-range slides they fall back to step 0.
	switch {
	case stepIndex != "":
		n, err := strconv.Atoi(stepIndex)
		if err != nil {
			return 0, 0, false
		}
		step = n - 1
	case stepNumber != "":
		n, err := strconv.Atoi(stepNumber)
		if err != nil {
			return 0, 0, false
		}
		if steps, found := c.index.Slide(slide); found {
			if i, known := steps.IndexOf(n); known {
				step = i
			}
		}
	case stepTag != "":
		if steps, found := c.index.Slide(slide); found {
			if i, known := steps.FirstTagStep(stepTag); known {
				step = i
			}
		}
	}

	return slide, step, true
}

// EnumerateAddresses produces every address the deck can resolve: each
// slide's numeric form and, if present, its ID form, crossed with the
// bare slide address plus every step index, step number, and tag form.
// Intended for documentation and autocompletion; the output order is
// deterministic (slides ascending, numeric before symbolic).
func (c *Codec) EnumerateAddresses() []string {
	// Invert the ID map so each slide's symbolic name can be emitted
	// alongside its numeric form.
	idBySlide := make(map[int]string, len(c.index.SlideIDs()))
	for id, i := range c.index.SlideIDs() {
		idBySlide[i] = id
	}

	var out []string
	for slide := 0; slide < c.index.SlideCount(); slide++ {
		slideForms := []string{fmt.Sprintf("#%d", slide+1)}
		if id, ok := idBySlide[slide]; ok {
			slideForms = append(slideForms, "#"+id)
		}

		steps, _ := c.index.Slide(slide)
		numbers := steps.Numbers()
		tags := steps.Tags()

		for _, form := range slideForms {
			out = append(out, form)
			for idx := 0; idx < steps.Count(); idx++ {
				out = append(out, fmt.Sprintf("%s#%d", form, idx+1))
			}
			for _, n := range numbers {
				out = append(out, fmt.Sprintf("%s<%d>", form, n))
			}
			for _, tag := range tags {
				out = append(out, fmt.Sprintf("%s@%s", form, tag))
			}
		}
	}
	return out
}
