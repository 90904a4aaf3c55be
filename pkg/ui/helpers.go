package ui

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates a string to max visual width (cells),
// adding suffix if needed. Uses go-runewidth to handle wide characters
// correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// truncate truncates string s to maxWidth cells with an ellipsis.
func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// padRight pads string s with spaces on the right to length width.
func padRight(s string, width int) string {
	runeCount := utf8.RuneCountInString(s)
	if runeCount >= width {
		return s
	}
	return s + strings.Repeat(" ", width-runeCount)
}

// Layer labels carry build annotations the author typed into the layer
// name. They are stripped for display.
var (
	specAnnotationRegexp = regexp.MustCompile(`<[^>]*>`)
	tagAnnotationRegexp  = regexp.MustCompile(`@\S+`)
)

// displayLabel returns a layer label with its build spec and tag
// annotations removed.
func displayLabel(label string) string {
	label = specAnnotationRegexp.ReplaceAllString(label, "")
	label = tagAnnotationRegexp.ReplaceAllString(label, "")
	return strings.Join(strings.Fields(label), " ")
}
