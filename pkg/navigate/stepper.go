// Package navigate holds the presentation navigation state machine.
//
// A Stepper tracks the current slide, step, and blanking state of a
// running show and notifies observers synchronously on every change.
// It is the sole mutable core of the viewer; everything else (address
// codec, build tables, UI) is derived or stateless.
//
// The stepper is single-threaded by design: every operation runs to
// completion without yielding, observers always see a fully-updated
// state, and there is no internal locking. Callers that share a Stepper
// across goroutines must serialize access themselves.
package navigate

import (
	"github.com/vanderheijden86/slidewalk/pkg/build"
)

// State is the composite navigation state of a show.
type State struct {
	// Slide and Step are the current position, always in range for the
	// deck the stepper was built over.
	Slide int
	Step  int

	// Blanked hides the show without moving the position.
	Blanked bool

	// UserHash records the address the user actually typed to reach the
	// current position, when they did. It is preserved verbatim (even
	// when it differs from the canonical encoding) until the position
	// changes again, and nil when the position was reached some other
	// way.
	UserHash *string
}

// Snapshot is the state as delivered to observers, extended with the
// author-facing fields derived from the build tables. The derived
// fields are recomputed for every notification, never cached.
type Snapshot struct {
	State

	// StepNumber is the author-facing step number at the current step.
	StepNumber int

	// Tags holds the build tags active at the current step, sorted.
	Tags []string
}

// Observer receives the new and previous state after each change.
// Observers run synchronously, in registration order. A panicking
// observer aborts the remaining notifications for that transition; the
// stepper does not recover it.
type Observer func(current, previous Snapshot)

// Stepper is the navigation state machine for one deck.
type Stepper struct {
	index *build.Index
	state State

	observers []observerEntry
	nextObs   int
}

type observerEntry struct {
	id int
	fn Observer
}

// Option configures the initial state of a new Stepper.
type Option func(*State)

// WithPosition starts the show at the given slide and step instead of
// (0, 0). Out-of-range positions fall back to the default.
func WithPosition(slide, step int) Option {
	return func(s *State) {
		s.Slide, s.Step = slide, step
	}
}

// New creates a Stepper over a deck's precomputed step index.
//
// Panics if the index is nil or covers no slides: a stepper without at
// least one slide cannot satisfy its own invariants, so this is treated
// as a programming error rather than a recoverable one.
func New(ix *build.Index, opts ...Option) *Stepper {
	if ix == nil || ix.SlideCount() == 0 {
		panic("navigate: stepper requires a non-empty deck")
	}

	st := State{}
	for _, opt := range opts {
		opt(&st)
	}
	if st.Slide < 0 || st.Slide >= ix.SlideCount() ||
		st.Step < 0 || st.Step >= ix.StepCount(st.Slide) {
		st.Slide, st.Step = 0, 0
	}
	st.Blanked = false
	st.UserHash = nil

	return &Stepper{index: ix, state: st}
}

// Index returns the build index the stepper was constructed over.
func (s *Stepper) Index() *build.Index {
	return s.index
}

// State returns a copy of the current state.
func (s *Stepper) State() State {
	return s.state
}

// Snapshot returns the current state with its derived fields.
func (s *Stepper) Snapshot() Snapshot {
	return s.snapshot(s.state)
}

func (s *Stepper) snapshot(st State) Snapshot {
	steps, _ := s.index.Slide(st.Slide)
	return Snapshot{
		State:      st,
		StepNumber: steps.NumberAt(st.Step),
		Tags:       steps.TagsAt(st.Step),
	}
}

// OnChange registers an observer and returns a function that removes it
// again. Observers are invoked synchronously, in registration order.
func (s *Stepper) OnChange(fn Observer) (unsubscribe func()) {
	id := s.nextObs
	s.nextObs++
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})
	return func() {
		for i, entry := range s.observers {
			if entry.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Stepper) notify(previous State) {
	cur := s.snapshot(s.state)
	prev := s.snapshot(previous)
	for _, entry := range s.observers {
		entry.fn(cur, prev)
	}
}

// ShowOption modifies a single Show call.
type ShowOption func(*showParams)

type showParams struct {
	userHash    string
	userHashSet bool
}

// WithUserHash stamps the address string the user typed to trigger this
// navigation. The stamp survives no-op re-navigation to the same
// position, so an address box can keep echoing exactly what was typed.
func WithUserHash(hash string) ShowOption {
	return func(p *showParams) {
		p.userHash = hash
		p.userHashSet = true
	}
}

// Show moves to the given slide and step. It is the sole primitive
// mutator; every other navigation operation funnels through it.
//
// Out-of-range positions are rejected: Show returns false and neither
// changes state nor notifies. Otherwise the blanked flag is cleared
// unconditionally, the position is updated, and the user hash is
// updated only if the position actually changed or an explicit hash was
// supplied. Exactly one notification fires if any observable field
// changed; none fires for an identical re-show.
func (s *Stepper) Show(slide, step int, opts ...ShowOption) bool {
	var p showParams
	for _, opt := range opts {
		opt(&p)
	}

	if slide < 0 || slide >= s.index.SlideCount() {
		return false
	}
	if step < 0 || step >= s.index.StepCount(slide) {
		return false
	}

	previous := s.state
	moved := previous.Slide != slide || previous.Step != step

	s.state.Slide = slide
	s.state.Step = step
	s.state.Blanked = false
	switch {
	case p.userHashSet:
		hash := p.userHash
		s.state.UserHash = &hash
	case moved:
		s.state.UserHash = nil
	}

	if moved || previous.Blanked || !sameHash(previous.UserHash, s.state.UserHash) {
		s.notify(previous)
	}
	return true
}

func sameHash(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ToggleBlank flips the blanking flag without moving and returns the
// new value. Blanking is observable state, so a notification always
// fires.
func (s *Stepper) ToggleBlank() bool {
	previous := s.state
	s.state.Blanked = !s.state.Blanked
	s.notify(previous)
	return s.state.Blanked
}

// unblank re-asserts the current position, clearing the blanking flag
// without advancing. Pressing any navigation key while blanked resumes
// the show where it was rather than skipping content.
func (s *Stepper) unblank() bool {
	return s.Show(s.state.Slide, s.state.Step)
}

// NextStep advances one step, rolling onto the first step of the next
// slide when the current slide is exhausted. Returns false at the very
// end of the deck. While blanked it only un-blanks.
func (s *Stepper) NextStep() bool {
	if s.state.Blanked {
		return s.unblank()
	}
	if s.state.Step+1 < s.index.StepCount(s.state.Slide) {
		return s.Show(s.state.Slide, s.state.Step+1)
	}
	if s.state.Slide+1 < s.index.SlideCount() {
		return s.Show(s.state.Slide+1, 0)
	}
	return false
}

// PreviousStep steps back one step, rolling onto the last step of the
// previous slide at a slide boundary. Returns false at the very start
// of the deck. While blanked it only un-blanks.
func (s *Stepper) PreviousStep() bool {
	if s.state.Blanked {
		return s.unblank()
	}
	if s.state.Step > 0 {
		return s.Show(s.state.Slide, s.state.Step-1)
	}
	if s.state.Slide > 0 {
		prev := s.state.Slide - 1
		return s.Show(prev, s.index.StepCount(prev)-1)
	}
	return false
}

// NextSlide jumps to step 0 of the next slide, skipping any remaining
// steps of the current one. Returns false on the last slide, even
// mid-build. While blanked it only un-blanks.
func (s *Stepper) NextSlide() bool {
	if s.state.Blanked {
		return s.unblank()
	}
	if s.state.Slide+1 < s.index.SlideCount() {
		return s.Show(s.state.Slide+1, 0)
	}
	return false
}

// PreviousSlide jumps backwards a slide. Mid-build (step > 0) it first
// returns to step 0 of the current slide; a subsequent call moves to
// step 0 of the previous slide. Returns false at (0, 0). While blanked
// it only un-blanks.
func (s *Stepper) PreviousSlide() bool {
	if s.state.Blanked {
		return s.unblank()
	}
	if s.state.Step > 0 {
		return s.Show(s.state.Slide, 0)
	}
	if s.state.Slide > 0 {
		return s.Show(s.state.Slide-1, 0)
	}
	return false
}

// Start jumps to the first step of the first slide.
func (s *Stepper) Start() bool {
	return s.Show(0, 0)
}

// End jumps to the last step of the last slide.
func (s *Stepper) End() bool {
	last := s.index.SlideCount() - 1
	return s.Show(last, s.index.StepCount(last)-1)
}
