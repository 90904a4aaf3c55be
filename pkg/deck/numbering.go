package deck

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Slide files carry BASIC-style numeric name prefixes ("100_intro.svg")
// so slides can usually be inserted or reordered by renaming only the
// file being moved. InsertNumber picks numbers for new slides and,
// when the sequence has no gap at the insertion point, computes a
// minimal renumbering of the neighbours.

// PreferredStepSize is the default gap left between newly assigned
// file numbers.
const PreferredStepSize = 100

var prefixRegexp = regexp.MustCompile(`^[-+]?[0-9]+`)

// Numbering errors.
var (
	ErrNoPrefix     = errors.New("filename has no numeric prefix")
	ErrNoFreeNumber = errors.New("no free file number at position")
	ErrNegative     = errors.New("existing file numbers are negative")
)

// ExtractPrefix returns the value of a filename's numeric prefix.
func ExtractPrefix(filename string) (int, error) {
	m := prefixRegexp.FindString(filepath.Base(filename))
	if m == "" {
		return 0, fmt.Errorf("%s: %w", filename, ErrNoPrefix)
	}
	return strconv.Atoi(m)
}

// ReplacePrefix replaces a filename's numeric prefix with the given
// value, zero-padded to the given number of digits.
func ReplacePrefix(filename string, number, digits int) (string, error) {
	base := filepath.Base(filename)
	m := prefixRegexp.FindString(base)
	if m == "" {
		return "", fmt.Errorf("%s: %w", filename, ErrNoPrefix)
	}
	renamed := fmt.Sprintf("%0*d%s", digits, number, base[len(m):])
	dir := filepath.Dir(filename)
	if dir == "." {
		return renamed, nil
	}
	return filepath.Join(dir, renamed), nil
}

// tryInsertNumber picks a number placing a new file at the given
// position in the sorted existing numbers, without renumbering anything.
// Returns ErrNoFreeNumber when the neighbours leave no gap and
// ErrNegative when allowNegative is false but the sequence already goes
// negative.
func tryInsertNumber(existing []int, position int, allowNegative bool, step int) (int, error) {
	if position < 0 || position > len(existing) {
		return 0, fmt.Errorf("position %d out of range", position)
	}

	// Appending always works, including to an empty sequence.
	if position == len(existing) {
		if len(existing) == 0 {
			return step, nil
		}
		return existing[len(existing)-1] + step, nil
	}

	if !allowNegative && existing[0] < 0 {
		return 0, ErrNegative
	}

	var before, after int
	if position == 0 {
		after = existing[0]
		if allowNegative || after < 0 {
			return after - step, nil
		}
		before = -1
	} else {
		before = existing[position-1]
		after = existing[position]
	}

	if after-before >= 2 {
		return before + (after-before)/2, nil
	}
	return 0, ErrNoFreeNumber
}

// evenlySpacedBetween returns count distinct increasing integers
// strictly between start and end. Requires end-start > count.
func evenlySpacedBetween(start, end, count int) []int {
	out := make([]int, count)
	for i := 1; i <= count; i++ {
		out[i-1] = start + (i*(end-start))/(count+1)
	}
	return out
}

// squeezeInLeadingNumber prepends a new number to a sorted sequence,
// incrementing as few of the existing numbers as necessary to make
// room. The number numbers[0]-1 is assumed taken, so the new number is
// at least numbers[0]. Changed numbers spread evenly within the first
// gap; if the sequence has no gap at all, everything is renumbered with
// the preferred step.
func squeezeInLeadingNumber(numbers []int, step int) []int {
	gapIndex := -1
	last := numbers[0] - 1
	for i, n := range numbers {
		if n != last+1 {
			gapIndex = i
			break
		}
		last = n
	}

	if gapIndex == -1 {
		out := make([]int, len(numbers)+1)
		for i := range out {
			out[i] = numbers[0] - 1 + (i+1)*step
		}
		return out
	}

	start := numbers[0] - 1
	end := numbers[gapIndex]
	out := evenlySpacedBetween(start, end, gapIndex+1)
	return append(out, numbers[gapIndex:]...)
}

// scoreCandidate rates how disruptive a candidate renumbering is:
// primarily by how many files must be renamed, secondarily by how
// tightly the result packs the numbers.
func scoreCandidate(previous []int, position int, candidate []int) (renames int, crowding float64) {
	withNew := make([]int, 0, len(previous)+1)
	withNew = append(withNew, previous[:position]...)
	withNew = append(withNew, candidate[position])
	withNew = append(withNew, previous[position:]...)
	for i := range candidate {
		if withNew[i] != candidate[i] {
			renames++
		}
	}
	for i := 1; i < len(candidate); i++ {
		crowding += 1 / float64(candidate[i]-candidate[i-1])
	}
	return renames, crowding
}

// Renumbering is one required file rename, by prefix number.
type Renumbering struct {
	From int
	To   int
}

// InsertNumber picks a file number placing a new file at the given
// position among the sorted existing numbers. When the neighbouring
// numbers leave no gap, the minimal set of neighbours is renumbered to
// create one; the returned renumberings are ordered so that applying
// them sequentially never collides.
//
// Unless allowNegative is set, new numbers are kept non-negative except
// when squeezing between two already negative numbers.
func InsertNumber(existing []int, position int, allowNegative bool) (int, []Renumbering, error) {
	if !sort.IntsAreSorted(existing) {
		return 0, nil, fmt.Errorf("file numbers out of order")
	}
	for i := 1; i < len(existing); i++ {
		if existing[i] == existing[i-1] {
			return 0, nil, fmt.Errorf("duplicate file number %d", existing[i])
		}
	}

	number, err := tryInsertNumber(existing, position, allowNegative, PreferredStepSize)
	if err == nil {
		return number, nil, nil
	}
	if !errors.Is(err, ErrNoFreeNumber) {
		return 0, nil, err
	}

	// No gap at the insertion point. Either the higher numbers shift up
	// or the lower numbers shift down; try both and keep the less
	// disruptive result.
	var candidates [][]int

	up := append([]int{}, existing[:position]...)
	up = append(up, squeezeInLeadingNumber(existing[position:], PreferredStepSize)...)
	candidates = append(candidates, up)

	// Shifting down reuses squeezeInLeadingNumber by negating and
	// reversing the leading numbers. A sentinel -1 entry (when negative
	// numbers are disallowed) both keeps the spacing anchored at zero
	// and reveals, if it moves, that the shift would go negative.
	leading := append([]int{}, existing[:position]...)
	if !allowNegative {
		leading = append([]int{-1}, leading...)
	}
	inverted := make([]int, len(leading))
	for i := range leading {
		inverted[i] = -leading[len(leading)-1-i]
	}
	invertedOut := squeezeInLeadingNumber(inverted, PreferredStepSize)
	down := make([]int, len(invertedOut))
	for i := range invertedOut {
		down[i] = -invertedOut[len(invertedOut)-1-i]
	}
	if allowNegative || down[0] == -1 {
		if !allowNegative {
			down = down[1:]
		}
		candidates = append(candidates, append(down, existing[position:]...))
	}

	best := candidates[0]
	bestRenames, bestCrowding := scoreCandidate(existing, position, best)
	for _, candidate := range candidates[1:] {
		renames, crowding := scoreCandidate(existing, position, candidate)
		if renames < bestRenames || (renames == bestRenames && crowding < bestCrowding) {
			best, bestRenames, bestCrowding = candidate, renames, crowding
		}
	}

	newNumber := best[position]

	// Decreases lowest-first, then increases highest-first, so no
	// rename ever targets a still-occupied number.
	var decreases, increases []Renumbering
	for i := 0; i < position; i++ {
		if existing[i] != best[i] {
			decreases = append(decreases, Renumbering{From: existing[i], To: best[i]})
		}
	}
	for i := position; i < len(existing); i++ {
		if existing[i] != best[i+1] {
			increases = append(increases, Renumbering{From: existing[i], To: best[i+1]})
		}
	}
	for i, j := 0, len(increases)-1; i < j; i, j = i+1, j-1 {
		increases[i], increases[j] = increases[j], increases[i]
	}
	return newNumber, append(decreases, increases...), nil
}
