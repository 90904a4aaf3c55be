package deck

import (
	"fmt"

	"github.com/beevik/etree"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/slidewalk/pkg/buildspec"
	"github.com/vanderheijden86/slidewalk/pkg/model"
)

// notePrefix marks a <text> element as a speaker note.
const notePrefix = "###\n"

// metadataFields are the magic keys (and <text> element IDs) supplying
// deck metadata.
var metadataFields = []string{"title", "author", "date"}

// LoadSlide parses one SVG file into a slide. The source path is
// recorded on the slide and used to prefix errors.
func LoadSlide(path string) (model.Slide, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return model.Slide{}, fmt.Errorf("%s: %w", path, err)
	}
	slide, err := ParseSlide(doc)
	if err != nil {
		return model.Slide{}, fmt.Errorf("%s: %w", path, err)
	}
	slide.Source = path
	return slide, nil
}

// ParseSlide interprets a parsed SVG document as a slide: layer names
// are evaluated as build specs, magic text supplies the ID and
// metadata, and "###" text elements become speaker notes. Magic and
// note elements are removed from the document. Documents carrying
// slidie annotations from an earlier Annotate pass are trusted as-is
// instead of being re-evaluated.
func ParseSlide(doc *etree.Document) (model.Slide, error) {
	root := doc.Root()
	if root == nil || root.Tag != "svg" || elemNamespace(root) != SVGNamespace {
		return model.Slide{}, fmt.Errorf("not an SVG document")
	}

	magic, err := extractMagic(root)
	if err != nil {
		return model.Slide{}, err
	}

	var slide model.Slide

	if ids := magic["id"]; len(ids) > 0 {
		if len(ids) > 1 {
			return model.Slide{}, fmt.Errorf("id defined %d times", len(ids))
		}
		id, err := magicString(ids[0], "id")
		if err != nil {
			return model.Slide{}, err
		}
		if !model.ValidID(id) {
			return model.Slide{}, fmt.Errorf("invalid slide id %q", id)
		}
		slide.ID = id
	}
	if slide.ID == "" {
		if id, ok := attrNS(root, SlidieNamespace, "id"); ok {
			if !model.ValidID(id) {
				return model.Slide{}, fmt.Errorf("invalid slide id %q", id)
			}
			slide.ID = id
		}
	}

	for _, field := range metadataFields {
		value, err := metadataValue(root, magic, field)
		if err != nil {
			return model.Slide{}, err
		}
		if value == "" {
			value, _ = attrNS(root, SlidieNamespace, field)
		}
		switch field {
		case "title":
			slide.Title = value
		case "author":
			slide.Author = value
		case "date":
			slide.Date = value
		}
	}

	elems := enumerateLayers(root)
	layers, annotated, err := annotatedLayers(elems)
	if err != nil {
		return model.Slide{}, err
	}
	if !annotated {
		names := make([]string, len(elems))
		for i, el := range elems {
			names[i] = layerLabel(el)
		}
		steps, err := buildspec.Evaluate(names)
		if err != nil {
			return model.Slide{}, err
		}
		layers = make([]model.Layer, len(elems))
		for i := range elems {
			layers[i] = model.Layer{
				Label:       names[i],
				StepNumbers: steps[i],
				Tags:        buildspec.ParseTags(names[i]),
			}
		}
	}

	layerSteps := make(map[*etree.Element][]int, len(elems))
	for i, el := range elems {
		layerSteps[el] = layers[i].StepNumbers
	}
	slide.Layers = layers

	slide.Notes = extractNotes(root, layerSteps)
	return slide, nil
}

// annotatedLayers reads the layer records written by a previous
// Annotate pass. A document counts as annotated when any layer carries
// a slidie:steps or slidie:tags attribute; annotated documents are
// consumed as-is, without re-evaluating layer names.
func annotatedLayers(elems []*etree.Element) ([]model.Layer, bool, error) {
	annotated := false
	layers := make([]model.Layer, len(elems))
	for i, el := range elems {
		layer := model.Layer{Label: layerLabel(el)}
		if raw, ok := attrNS(el, SlidieNamespace, "steps"); ok {
			annotated = true
			if err := json.Unmarshal([]byte(raw), &layer.StepNumbers); err != nil {
				return nil, false, fmt.Errorf("layer %d (%q): bad steps annotation: %w", i, layer.Label, err)
			}
		}
		if raw, ok := attrNS(el, SlidieNamespace, "tags"); ok {
			annotated = true
			if err := json.Unmarshal([]byte(raw), &layer.Tags); err != nil {
				return nil, false, fmt.Errorf("layer %d (%q): bad tags annotation: %w", i, layer.Label, err)
			}
		}
		layers[i] = layer
	}
	return layers, annotated, nil
}

// metadataValue resolves one metadata field from its magic entries and
// from <text> elements carrying the field name as their XML ID.
// Defining a field more than once, in any combination of sources, is an
// error.
func metadataValue(root *etree.Element, magic map[string][]MagicText, field string) (string, error) {
	var values []string
	for _, m := range magic[field] {
		value, err := magicString(m, field)
		if err != nil {
			return "", err
		}
		values = append(values, value)
	}
	for _, text := range textElementsByID(root, field) {
		values = append(values, multilineText(text))
	}

	switch len(values) {
	case 0:
		return "", nil
	case 1:
		return values[0], nil
	default:
		return "", fmt.Errorf("%s defined %d times", field, len(values))
	}
}

func textElementsByID(root *etree.Element, id string) []*etree.Element {
	var out []*etree.Element
	var visit func(el *etree.Element)
	visit = func(el *etree.Element) {
		if el.Tag == "text" && elemNamespace(el) == SVGNamespace &&
			el.SelectAttrValue("id", "") == id {
			out = append(out, el)
		}
		for _, child := range el.ChildElements() {
			visit(child)
		}
	}
	visit(root)
	return out
}

// extractNotes finds and removes the "###" speaker note elements, in
// document order. A note inherits the build steps of its enclosing
// layers: the steps at which every ancestor layer with a spec is
// visible. Notes outside any spec-bearing layer apply to every step.
func extractNotes(root *etree.Element, layerSteps map[*etree.Element][]int) []model.Note {
	var notes []model.Note
	for _, found := range findTextWithPrefix(root, notePrefix) {
		var steps []int
		constrained := false
		for _, layer := range ancestorLayers(found.elem) {
			if s, ok := layerSteps[layer]; ok && s != nil {
				if constrained {
					steps = intersect(steps, s)
				} else {
					steps = append([]int(nil), s...)
					constrained = true
				}
			}
		}
		if !constrained {
			steps = nil
		}
		notes = append(notes, model.Note{Text: found.body, StepNumbers: steps})
		removeElement(found.elem)
	}
	return notes
}

// intersect returns the values present in both sorted slices.
func intersect(a, b []int) []int {
	out := []int{}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// Annotate rewrites a parsed SVG document with the results of build
// spec evaluation so downstream tooling need not re-parse layer names:
// each layer with a spec gains slidie:steps (a JSON step number list)
// and slidie:tags attributes, and deck metadata is mirrored onto the
// root element.
func Annotate(doc *etree.Document) error {
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("empty document")
	}

	slide, err := ParseSlide(doc)
	if err != nil {
		return err
	}

	if slide.ID != "" {
		setAttrNS(root, "slidie", SlidieNamespace, "id", slide.ID)
	}
	for _, field := range metadataFields {
		var value string
		switch field {
		case "title":
			value = slide.Title
		case "author":
			value = slide.Author
		case "date":
			value = slide.Date
		}
		if value != "" {
			setAttrNS(root, "slidie", SlidieNamespace, field, value)
		}
	}

	elems := enumerateLayers(root)
	for i, el := range elems {
		layer := slide.Layers[i]
		if layer.StepNumbers != nil {
			encoded, err := json.Marshal(layer.StepNumbers)
			if err != nil {
				return err
			}
			setAttrNS(el, "slidie", SlidieNamespace, "steps", string(encoded))
		}
		if len(layer.Tags) > 0 {
			encoded, err := json.Marshal(layer.Tags)
			if err != nil {
				return err
			}
			setAttrNS(el, "slidie", SlidieNamespace, "tags", string(encoded))
		}
	}
	return nil
}
