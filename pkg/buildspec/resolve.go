package buildspec

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// UnknownTagError reports a spec referencing a tag no layer declares.
type UnknownTagError struct {
	Tag        string
	LayerIndex int
	LayerName  string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("layer %d (%q) references unknown tag @%s", e.LayerIndex, e.LayerName, e.Tag)
}

// CycleError reports a dependency cycle between tag references. A layer
// whose spec references one of its own tags forms the degenerate cycle
// of length one.
type CycleError struct {
	LayerIndices []int
	LayerNames   []string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.LayerNames))
	for i, name := range e.LayerNames {
		parts[i] = fmt.Sprintf("%d (%q)", e.LayerIndices[i], name)
	}
	return "tag reference cycle between layers " + strings.Join(parts, " -> ")
}

// resolveAutos replaces the "+" and "." markers with concrete numbers.
// The markers track the most recent layer with a positional first step:
// "." repeats it, "+" is one past it. Before any such layer the tracked
// value is 0.
func resolveAutos(specs [][]Step) [][]Step {
	last := 0
	out := make([][]Step, len(specs))
	for i, spec := range specs {
		resolved := make([]Step, len(spec))
		for j, step := range spec {
			resolved[j] = resolveStepAutos(step, last)
		}
		out[i] = resolved
		if n, ok := firstNumericStep(resolved); ok {
			last = n
		}
	}
	return out
}

func resolveStepAutos(step Step, last int) Step {
	switch s := step.(type) {
	case Plus:
		return Number(last + 1)
	case Dot:
		return Number(last)
	case Range:
		return Range{
			From: resolveStepAutos(s.From, last),
			To:   resolveStepAutos(s.To, last),
		}
	default:
		return step
	}
}

// firstNumericStep finds the first positionally-written number in a
// spec: a literal number, or the numeric bound of a range (preferring
// the start). Tag references never count.
func firstNumericStep(spec []Step) (int, bool) {
	for _, step := range spec {
		switch s := step.(type) {
		case Number:
			return int(s), true
		case Range:
			if n, ok := s.From.(Number); ok {
				return int(n), true
			}
			if n, ok := s.To.(Number); ok {
				return int(n), true
			}
		}
	}
	return 0, false
}

// referencedTags lists the tags a spec references, including those
// buried in range bounds.
func referencedTags(spec []Step) []string {
	var tags []string
	for _, step := range spec {
		switch s := step.(type) {
		case TagRef:
			tags = append(tags, s.Name)
		case Range:
			if ref, ok := s.From.(TagRef); ok {
				tags = append(tags, ref.Name)
			}
			if ref, ok := s.To.(TagRef); ok {
				tags = append(tags, ref.Name)
			}
		}
	}
	return tags
}

// resolutionOrder topologically sorts the layers so that every layer is
// resolved after all layers whose tags it references. Returns an
// UnknownTagError for references no layer can satisfy and a CycleError
// when the references are circular.
func resolutionOrder(layerTags [][]string, specs [][]Step, names []string) ([]int, error) {
	tagLayers := make(map[string][]int)
	for i, tags := range layerTags {
		for _, tag := range tags {
			tagLayers[tag] = append(tagLayers[tag], i)
		}
	}

	g := simple.NewDirectedGraph()
	for i := range specs {
		g.AddNode(simple.Node(i))
	}
	for i, spec := range specs {
		for _, tag := range referencedTags(spec) {
			deps, ok := tagLayers[tag]
			if !ok {
				return nil, &UnknownTagError{Tag: tag, LayerIndex: i, LayerName: names[i]}
			}
			for _, dep := range deps {
				if dep == i {
					// Self-reference; report directly, the graph
					// cannot represent self-edges.
					return nil, &CycleError{
						LayerIndices: []int{i, i},
						LayerNames:   []string{names[i], names[i]},
					}
				}
				g.SetEdge(g.NewEdge(simple.Node(dep), simple.Node(i)))
			}
		}
	}

	sorted, err := topo.Sort(g)
	if err != nil {
		unorderable, ok := err.(topo.Unorderable)
		if !ok || len(unorderable) == 0 {
			return nil, err
		}
		cycle := unorderable[0]
		indices := make([]int, 0, len(cycle)+1)
		for _, node := range cycle {
			indices = append(indices, int(node.ID()))
		}
		sort.Ints(indices)
		indices = append(indices, indices[0])
		cycleNames := make([]string, len(indices))
		for i, idx := range indices {
			cycleNames[i] = names[idx]
		}
		return nil, &CycleError{LayerIndices: indices, LayerNames: cycleNames}
	}

	order := make([]int, len(sorted))
	for i, node := range sorted {
		order[i] = int(node.ID())
	}
	return order, nil
}

// resolveTags replaces tag references with the concrete steps of the
// referenced layers. Layers are processed in dependency order so that a
// reference always sees fully-resolved steps. A tag's steps accumulate
// across every layer declaring it.
func resolveTags(layerTags [][]string, specs [][]Step, names []string) ([][]Step, error) {
	order, err := resolutionOrder(layerTags, specs, names)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string][]Step)
	out := make([][]Step, len(specs))
	for _, i := range order {
		var spec []Step
		for _, step := range specs[i] {
			spec = append(spec, resolveStepTags(step, resolved, "")...)
		}
		out[i] = spec
		for _, tag := range layerTags[i] {
			resolved[tag] = append(resolved[tag], spec...)
		}
	}
	return out, nil
}

// resolveStepTags expands one step into zero or more tag-free steps.
// defaultSuffix is applied to bare tag references in range bounds: a
// range start implies ".start", a range end implies ".end", so a range
// between two tags spans their extremes rather than their full lists. A
// reference to a tag whose layers have no steps vanishes, and a range
// with a vanished bound vanishes with it.
func resolveStepTags(step Step, resolved map[string][]Step, defaultSuffix string) []Step {
	if ref, ok := step.(TagRef); ok && ref.Suffix == "" && defaultSuffix != "" {
		step = TagRef{Name: ref.Name, Suffix: defaultSuffix}
	}

	switch s := step.(type) {
	case TagRef:
		if s.Suffix == "" {
			steps := resolved[s.Name]
			out := make([]Step, len(steps))
			copy(out, steps)
			return out
		}
		atom, ok := resolveSuffix(resolved[s.Name], s.Suffix)
		if !ok {
			return nil
		}
		return []Step{atom}
	case Range:
		from := resolveStepTags(s.From, resolved, "start")
		to := resolveStepTags(s.To, resolved, "end")
		if len(from) == 0 || len(to) == 0 {
			return nil
		}
		return []Step{Range{From: from[0], To: to[0]}}
	default:
		return []Step{step}
	}
}

// resolveSuffix selects a single atom from a tag's resolved steps:
// "start" and "end" pick the extremes, "before" and "after" pick one
// step outside them. Start sorts below every number, End above; before
// Start is still Start, after End is still End.
func resolveSuffix(steps []Step, suffix string) (Step, bool) {
	atoms := flattenAtoms(steps)
	if len(atoms) == 0 {
		return nil, false
	}

	switch suffix {
	case "start":
		return minAtom(atoms), true
	case "end":
		return maxAtom(atoms), true
	case "before":
		atom := minAtom(atoms)
		if n, ok := atom.(Number); ok {
			return Number(n - 1), true
		}
		return atom, true
	case "after":
		atom := maxAtom(atoms)
		if n, ok := atom.(Number); ok {
			return Number(n + 1), true
		}
		return atom, true
	default:
		return nil, false
	}
}

func flattenAtoms(steps []Step) []Step {
	var atoms []Step
	for _, step := range steps {
		if r, ok := step.(Range); ok {
			atoms = append(atoms, r.From, r.To)
		} else {
			atoms = append(atoms, step)
		}
	}
	return atoms
}

// atomRank orders Start < every Number < End.
func atomRank(atom Step) int {
	switch atom.(type) {
	case Start:
		return -1
	case End:
		return 1
	default:
		return 0
	}
}

func atomLess(a, b Step) bool {
	ra, rb := atomRank(a), atomRank(b)
	if ra != rb {
		return ra < rb
	}
	na, aok := a.(Number)
	nb, bok := b.(Number)
	if aok && bok {
		return na < nb
	}
	return false
}

func minAtom(atoms []Step) Step {
	min := atoms[0]
	for _, atom := range atoms[1:] {
		if atomLess(atom, min) {
			min = atom
		}
	}
	return min
}

func maxAtom(atoms []Step) Step {
	max := atoms[0]
	for _, atom := range atoms[1:] {
		if atomLess(max, atom) {
			max = atom
		}
	}
	return max
}

// resolveBounds replaces the Start and End markers with the smallest
// and largest step numbers appearing anywhere on the slide. 0 is always
// included in the bounds, matching the step sequence the viewer derives.
func resolveBounds(specs [][]Step) [][]Step {
	start, end := 0, 0
	for _, spec := range specs {
		for _, atom := range flattenAtoms(spec) {
			if n, ok := atom.(Number); ok {
				if int(n) < start {
					start = int(n)
				}
				if int(n) > end {
					end = int(n)
				}
			}
		}
	}

	sub := func(step Step) Step {
		switch step.(type) {
		case Start:
			return Number(start)
		case End:
			return Number(end)
		default:
			return step
		}
	}

	out := make([][]Step, len(specs))
	for i, spec := range specs {
		resolved := make([]Step, len(spec))
		for j, step := range spec {
			if r, ok := step.(Range); ok {
				resolved[j] = Range{From: sub(r.From), To: sub(r.To)}
			} else {
				resolved[j] = sub(step)
			}
		}
		out[i] = resolved
	}
	return out
}

// resolveRanges expands every range into its steps. A reversed range is
// empty.
func resolveRanges(specs [][]Step) [][]int {
	out := make([][]int, len(specs))
	for i, spec := range specs {
		steps := []int{}
		for _, step := range spec {
			switch s := step.(type) {
			case Number:
				steps = append(steps, int(s))
			case Range:
				from := int(s.From.(Number))
				to := int(s.To.(Number))
				for n := from; n <= to; n++ {
					steps = append(steps, n)
				}
			}
		}
		out[i] = steps
	}
	return out
}

func normalize(specs [][]int) [][]int {
	out := make([][]int, len(specs))
	for i, steps := range specs {
		sort.Ints(steps)
		dedup := steps[:0]
		for j, n := range steps {
			if j == 0 || n != dedup[len(dedup)-1] {
				dedup = append(dedup, n)
			}
		}
		out[i] = dedup
	}
	return out
}

// Evaluate resolves the build specs in a slide's layer names into
// concrete per-layer step numbers, sorted and deduplicated. Layers
// without a spec are returned as nil, meaning visible at every step
// (an explicitly empty "<>" spec instead yields an empty, never-visible
// list). Names are given in the layer order of the slide.
func Evaluate(layerNames []string) ([][]int, error) {
	specs := make([][]Step, len(layerNames))
	present := make([]bool, len(layerNames))
	tags := make([][]string, len(layerNames))

	for i, name := range layerNames {
		spec, hasSpec, err := ParseSpec(name)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%q): %w", i, name, err)
		}
		if !hasSpec {
			// Always visible: internally a full range so the layer
			// still participates in tag resolution.
			spec = []Step{Range{From: Start{}, To: End{}}}
		}
		specs[i] = spec
		present[i] = hasSpec
		tags[i] = ParseTags(name)
	}

	specs = resolveAutos(specs)
	specs, err := resolveTags(tags, specs, layerNames)
	if err != nil {
		return nil, err
	}
	steps := normalize(resolveRanges(resolveBounds(specs)))

	out := make([][]int, len(layerNames))
	for i, s := range steps {
		if present[i] {
			out[i] = s
		}
	}
	return out, nil
}
