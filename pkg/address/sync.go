package address

import (
	"github.com/vanderheijden86/slidewalk/pkg/navigate"
)

// Bar abstracts the address bar: a single shared string with two
// writers (the user and the stepper). The real implementation lives in
// the host UI; tests use an in-memory fake.
type Bar interface {
	// Get returns the address currently displayed.
	Get() string
	// Set replaces the displayed address.
	Set(hash string)
}

// Sync keeps a Bar and a Stepper consistent without feedback loops.
//
// One-directional rule per event: a stepper-driven change writes the
// bar (using the user's own typed address when one was stamped, the
// canonical encoding otherwise); a user-driven bar edit decodes and
// re-shows without re-writing the bar. Sync marks its own writes so
// HashChanged can tell them apart from user edits.
type Sync struct {
	stepper *navigate.Stepper
	codec   *Codec
	bar     Bar

	writing bool
	unsub   func()
}

// NewSync wires a stepper to a bar. The bar is immediately set to the
// stepper's current address.
func NewSync(stepper *navigate.Stepper, codec *Codec, bar Bar) *Sync {
	s := &Sync{stepper: stepper, codec: codec, bar: bar}
	s.unsub = stepper.OnChange(func(cur, _ navigate.Snapshot) {
		s.write(cur.State)
	})
	s.write(stepper.State())
	return s
}

// Close detaches the sync from the stepper.
func (s *Sync) Close() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

// hashFor returns the address the bar should display for a state: the
// user's own typed address when one was stamped, the canonical encoding
// otherwise.
func (s *Sync) hashFor(st navigate.State) string {
	if st.UserHash != nil {
		return *st.UserHash
	}
	return s.codec.Encode(st.Slide, st.Step)
}

func (s *Sync) write(st navigate.State) {
	hash := s.hashFor(st)
	if s.bar.Get() == hash {
		return
	}
	s.writing = true
	s.bar.Set(hash)
	s.writing = false
}

// HashChanged must be called whenever the bar's value changes,
// regardless of who wrote it. Self-inflicted writes are ignored. For
// user edits, a resolvable address is stamped onto the stepper; an
// unresolvable one leaves the navigation state untouched and reports
// false so the host can flag the input.
func (s *Sync) HashChanged() bool {
	hash := s.bar.Get()
	if s.writing || hash == s.hashFor(s.stepper.State()) {
		return true
	}
	slide, step, ok := s.codec.Decode(hash, s.stepper.State().Slide)
	if !ok {
		return false
	}
	return s.stepper.Show(slide, step, navigate.WithUserHash(hash))
}
