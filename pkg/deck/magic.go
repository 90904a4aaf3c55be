package deck

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/beevik/etree"
)

// magicPrefix marks a <text> element as magic: its remaining lines form
// a TOML document defining exactly one top-level value whose key names
// the functionality invoked.
const magicPrefix = "@@@\n"

// MagicText is one parsed magic <text> element. The element itself is
// removed from the document during extraction.
type MagicText struct {
	// Value is the decoded TOML value of the single top-level key.
	Value interface{}

	// Layers names the enclosing Inkscape layers, outermost first. Used
	// in error messages only.
	Layers []string

	// Text is the raw TOML source, kept for error reporting.
	Text string
}

// MagicError reports a malformed magic <text> element.
type MagicError struct {
	Layers []string
	Text   string
	Reason string
}

func (e *MagicError) Error() string {
	where := "in magic text"
	if len(e.Layers) > 0 {
		where = fmt.Sprintf("on layer %q in magic text", strings.Join(e.Layers, " > "))
	}
	return fmt.Sprintf("%s %q: %s", where, strings.TrimSpace(e.Text), e.Reason)
}

// extractMagic finds, parses and removes all magic text in the
// document, grouped by the top-level key. Each magic element must be a
// valid TOML document defining exactly one top-level value.
func extractMagic(root *etree.Element) (map[string][]MagicText, error) {
	out := make(map[string][]MagicText)

	for _, found := range findTextWithPrefix(root, magicPrefix) {
		layers := layerNames(ancestorLayers(found.elem))
		removeElement(found.elem)

		var parsed map[string]interface{}
		if _, err := toml.Decode(found.body, &parsed); err != nil {
			return nil, &MagicError{
				Layers: layers,
				Text:   found.body,
				Reason: fmt.Sprintf("invalid TOML: %v", err),
			}
		}

		switch len(parsed) {
		case 0:
			return nil, &MagicError{
				Layers: layers,
				Text:   found.body,
				Reason: "expected a value to be defined",
			}
		case 1:
		default:
			keys := make([]string, 0, len(parsed))
			for key := range parsed {
				keys = append(keys, key)
			}
			return nil, &MagicError{
				Layers: layers,
				Text:   found.body,
				Reason: fmt.Sprintf("exactly one value must be defined (got %s)", strings.Join(keys, ", ")),
			}
		}

		for name, value := range parsed {
			out[name] = append(out[name], MagicText{
				Value:  value,
				Layers: layers,
				Text:   found.body,
			})
		}
	}

	return out, nil
}

func layerNames(layers []*etree.Element) []string {
	names := make([]string, len(layers))
	for i, layer := range layers {
		names[i] = layerLabel(layer)
	}
	return names
}

// magicString extracts a string-valued magic entry, erroring on any
// other TOML type.
func magicString(m MagicText, name string) (string, error) {
	s, ok := m.Value.(string)
	if !ok {
		return "", &MagicError{
			Layers: m.Layers,
			Text:   m.Text,
			Reason: fmt.Sprintf("%s must be a string", name),
		}
	}
	return s, nil
}
