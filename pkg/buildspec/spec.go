// Package buildspec parses and evaluates slide build specifications:
// the beamer-inspired annotations in layer names which control how a
// slide's layers are revealed step by step.
//
// A build spec is written in angle brackets anywhere in a layer name
// and lists the steps during which the layer is visible:
//
//	Bullet one <1>
//	Bullet two <2->
//	Highlight  <.>
//	Background <@fg>
//
// Steps may be literal numbers, ranges (with either bound omitted to
// mean the first or last step), the automatic markers "+" (one past the
// previous layer's first step) and "." (same as the previous layer's
// first step), or references to tags declared on other layers with
// "@tag" (optionally suffixed ".before", ".start", ".end" or ".after").
// Layers declare tags by including "@tag" in their name outside any
// spec.
//
// Evaluate resolves all of this into a concrete, sorted list of step
// numbers per layer. Resolution happens in four stages: automatic
// markers, tag references (in dependency order), first/last bounds, and
// finally range expansion.
package buildspec

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Step is one element of a build specification. Concrete types are
// Number, Plus, Dot, Start, End, TagRef and Range; all but Range are
// atoms (Range bounds are always atoms).
type Step interface {
	step()
}

// Number is a concrete step number.
type Number int

// Plus is the "+" automatic marker: one past the previous layer's first
// step number.
type Plus struct{}

// Dot is the "." automatic marker: the previous layer's first step
// number.
type Dot struct{}

// Start references the first step of the slide, whatever it turns out
// to be. It sorts before every number.
type Start struct{}

// End references the last step of the slide. It sorts after every
// number.
type End struct{}

// TagRef references the steps of all layers bearing a tag. An empty
// Suffix copies the referenced steps verbatim; the suffixes "before",
// "start", "end" and "after" select a single step relative to them.
type TagRef struct {
	Name   string
	Suffix string
}

// Range references every step between From and To inclusive.
type Range struct {
	From Step
	To   Step
}

func (Number) step() {}
func (Plus) step()   {}
func (Dot) step()    {}
func (Start) step()  {}
func (End) step()    {}
func (TagRef) step() {}
func (Range) step()  {}

// Parse errors.
var (
	ErrInvalidStep   = errors.New("invalid build spec step")
	ErrInvalidSuffix = errors.New("unknown tag suffix")
)

var validSuffixes = map[string]bool{
	"before": true,
	"start":  true,
	"end":    true,
	"after":  true,
}

var (
	tagAtomRegexp = regexp.MustCompile(`^@\S+$`)
	numberRegexp  = regexp.MustCompile(`^[0-9]+$`)
	specRegexp    = regexp.MustCompile(`<[^>]*>`)
	// Tag declarations are stripped of specs first since specs may
	// reference tags and would confuse the scan.
	specStripRegexp = regexp.MustCompile(`<[^>]+>`)
)

// ParseAtom parses a single step ("123", "+", ".", "@foo",
// "@foo.start"). If empty is non-nil, an empty string parses as that
// value; this is how omitted range bounds become Start/End.
func ParseAtom(s string, empty Step) (Step, error) {
	s = strings.TrimSpace(s)
	switch {
	case tagAtomRegexp.MatchString(s):
		name, suffix, dotted := strings.Cut(s[1:], ".")
		if dotted {
			if !validSuffixes[suffix] {
				return nil, fmt.Errorf("%w: %q", ErrInvalidSuffix, s)
			}
			return TagRef{Name: name, Suffix: suffix}, nil
		}
		return TagRef{Name: name}, nil
	case s == "+":
		return Plus{}, nil
	case s == ".":
		return Dot{}, nil
	case s == "" && empty != nil:
		return empty, nil
	case numberRegexp.MatchString(s):
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStep, s)
		}
		return Number(n), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStep, s)
	}
}

// ParseSpec extracts the build specification from a layer name. When
// several <...> groups are present their steps are concatenated. The
// second return reports whether any spec group was present at all; a
// layer without one is treated by callers as always visible, which is
// different from an explicitly empty "<>".
func ParseSpec(layerName string) ([]Step, bool, error) {
	steps := []Step{}
	present := false

	for _, group := range specRegexp.FindAllString(layerName, -1) {
		present = true
		inner := strings.TrimSpace(group[1 : len(group)-1])
		if inner == "" {
			continue
		}
		for _, part := range strings.Split(inner, ",") {
			if from, to, isRange := strings.Cut(part, "-"); isRange {
				fromStep, err := ParseAtom(from, Start{})
				if err != nil {
					return nil, present, err
				}
				toStep, err := ParseAtom(to, End{})
				if err != nil {
					return nil, present, err
				}
				steps = append(steps, Range{From: fromStep, To: toStep})
			} else {
				step, err := ParseAtom(part, nil)
				if err != nil {
					return nil, present, err
				}
				steps = append(steps, step)
			}
		}
	}

	return steps, present, nil
}

// ParseTags extracts the tags declared in a layer name: "@" followed by
// a run of tag characters, terminated by whitespace, another "@" or the
// end of the name. Tags inside build spec groups are references, not
// declarations, and are ignored. The result is deduplicated and sorted.
func ParseTags(layerName string) []string {
	name := specStripRegexp.ReplaceAllString(layerName, "")

	seen := make(map[string]bool)
	var tags []string

	runes := []rune(name)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '@' {
			continue
		}
		j := i + 1
		for j < len(runes) && !isTagBreak(runes[j]) {
			j++
		}
		if j == i+1 {
			continue // bare "@"
		}
		// The declaration must be followed by whitespace, another tag
		// or the end of the name; anything else (".", "<", ...) makes
		// it a non-declaration.
		if j < len(runes) && runes[j] != '@' && !unicode.IsSpace(runes[j]) {
			continue
		}
		tag := string(runes[i+1 : j])
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
		i = j - 1
	}

	sort.Strings(tags)
	return tags
}

func isTagBreak(r rune) bool {
	return unicode.IsSpace(r) || r == '<' || r == '>' || r == '.' || r == '@'
}
