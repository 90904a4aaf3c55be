// Package deck loads slide decks from directories of Inkscape SVG
// files.
//
// Each SVG file is one slide; its Inkscape layers carry build
// specifications and tags in their names, and specially-prefixed <text>
// elements supply metadata ("@@@") and speaker notes ("###"). Files are
// ordered by the numeric prefix of their filename.
package deck

import (
	"strings"

	"github.com/beevik/etree"
)

// XML namespace URIs used by Inkscape SVGs and by our own annotations.
const (
	SVGNamespace      = "http://www.w3.org/2000/svg"
	InkscapeNamespace = "http://www.inkscape.org/namespaces/inkscape"
	SodipodiNamespace = "http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd"
	XLinkNamespace    = "http://www.w3.org/1999/xlink"
	SlidieNamespace   = "http://xmlns.jhnet.co.uk/slidie/1.0"
)

// elemNamespace resolves the namespace URI of an element's tag by
// walking the xmlns declarations in scope.
func elemNamespace(el *etree.Element) string {
	return resolvePrefix(el, el.Space)
}

// resolvePrefix resolves a namespace prefix (or the default namespace
// for an empty prefix) at the position of el.
func resolvePrefix(el *etree.Element, prefix string) string {
	for e := el; e != nil; e = e.Parent() {
		for _, attr := range e.Attr {
			if prefix == "" {
				if attr.Space == "" && attr.Key == "xmlns" {
					return attr.Value
				}
			} else if attr.Space == "xmlns" && attr.Key == prefix {
				return attr.Value
			}
		}
	}
	return ""
}

// attrNS returns the value of the attribute with the given namespace
// URI and local name. Unprefixed attributes have no namespace.
func attrNS(el *etree.Element, ns, local string) (string, bool) {
	for _, attr := range el.Attr {
		if attr.Key != local || attr.Space == "" || attr.Space == "xmlns" {
			continue
		}
		if resolvePrefix(el, attr.Space) == ns {
			return attr.Value, true
		}
	}
	return "", false
}

// setAttrNS sets a namespaced attribute, declaring the prefix on the
// root element if it is not already in scope.
func setAttrNS(el *etree.Element, prefix, ns, local, value string) {
	if resolvePrefix(el, prefix) != ns {
		root := el
		for root.Parent() != nil {
			root = root.Parent()
		}
		root.CreateAttr("xmlns:"+prefix, ns)
	}
	el.CreateAttr(prefix+":"+local, value)
}

// isInkscapeLayer reports whether an element is an Inkscape layer: an
// SVG <g> with inkscape:groupmode="layer".
func isInkscapeLayer(el *etree.Element) bool {
	if el.Tag != "g" || elemNamespace(el) != SVGNamespace {
		return false
	}
	mode, ok := attrNS(el, InkscapeNamespace, "groupmode")
	return ok && mode == "layer"
}

// layerLabel returns the name of an Inkscape layer.
func layerLabel(el *etree.Element) string {
	label, _ := attrNS(el, InkscapeNamespace, "label")
	return label
}

// enumerateLayers returns the document's Inkscape layers flattened in
// the order Inkscape's Layers panel shows them: reverse drawing order,
// with a parent layer preceding its sublayers.
func enumerateLayers(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	var visit func(el *etree.Element)
	visit = func(el *etree.Element) {
		children := el.ChildElements()
		for i := len(children) - 1; i >= 0; i-- {
			child := children[i]
			if isInkscapeLayer(child) {
				out = append(out, child)
			}
			visit(child)
		}
	}
	visit(root)
	return out
}

// ancestorLayers returns the chain of Inkscape layers containing el,
// outermost first.
func ancestorLayers(el *etree.Element) []*etree.Element {
	var chain []*etree.Element
	for e := el.Parent(); e != nil; e = e.Parent() {
		if isInkscapeLayer(e) {
			chain = append([]*etree.Element{e}, chain...)
		}
	}
	return chain
}

// multilineText reconstructs the text of an SVG <text> element. Inkscape
// stores each line in its own <tspan>; the lines are rejoined with
// newlines. A <text> without <tspan> children yields its direct text.
func multilineText(text *etree.Element) string {
	var lines []string
	for _, child := range text.ChildElements() {
		if child.Tag == "tspan" && elemNamespace(child) == SVGNamespace {
			lines = append(lines, allText(child))
		}
	}
	if lines == nil {
		return allText(text)
	}
	return strings.Join(lines, "\n")
}

func allText(el *etree.Element) string {
	var b strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			b.WriteString(allText(t))
		}
	}
	return b.String()
}

// prefixedText is a <text> element whose content starts with a magic
// prefix line, paired with the content after that line.
type prefixedText struct {
	elem *etree.Element
	body string
}

// findTextWithPrefix finds every <text> element whose content starts
// with prefix (which must end in a newline), in document order.
func findTextWithPrefix(root *etree.Element, prefix string) []prefixedText {
	var out []prefixedText
	var visit func(el *etree.Element)
	visit = func(el *etree.Element) {
		if el.Tag == "text" && elemNamespace(el) == SVGNamespace {
			if text := multilineText(el); strings.HasPrefix(text, prefix) {
				out = append(out, prefixedText{elem: el, body: text[len(prefix):]})
			}
			return
		}
		for _, child := range el.ChildElements() {
			visit(child)
		}
	}
	visit(root)
	return out
}

// removeElement detaches an element from its parent.
func removeElement(el *etree.Element) {
	if parent := el.Parent(); parent != nil {
		parent.RemoveChild(el)
	}
}
