package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/slidewalk/pkg/build"
	"github.com/vanderheijden86/slidewalk/pkg/config"
	"github.com/vanderheijden86/slidewalk/pkg/model"
	"github.com/vanderheijden86/slidewalk/pkg/testutil"
)

func newTestModel(t *testing.T, cfg config.UIConfig, counts ...int) Model {
	t.Helper()
	d := testutil.DeckWithStepCounts(counts...)
	ix, err := build.NewIndex(d)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	m := NewModel(d, ix, cfg)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestModelNavigationKeys(t *testing.T) {
	m := newTestModel(t, config.UIConfig{}, 1, 2, 3)

	m = press(t, m, "l")
	if st := m.State(); st.Slide != 1 || st.Step != 0 {
		t.Fatalf("after l: (%d, %d), want (1, 0)", st.Slide, st.Step)
	}
	if m.Address() != "#2" {
		t.Errorf("address = %q, want #2", m.Address())
	}

	m = press(t, m, " ", " ")
	if st := m.State(); st.Slide != 2 || st.Step != 0 {
		t.Fatalf("after two spaces: (%d, %d), want (2, 0)", st.Slide, st.Step)
	}

	m = press(t, m, "up")
	if st := m.State(); st.Slide != 1 || st.Step != 0 {
		t.Fatalf("after up: (%d, %d), want (1, 0)", st.Slide, st.Step)
	}

	m = press(t, m, "G")
	if st := m.State(); st.Slide != 2 || st.Step != 2 {
		t.Fatalf("after G: (%d, %d), want (2, 2)", st.Slide, st.Step)
	}
	if m.Address() != "#3#3" {
		t.Errorf("address = %q, want #3#3", m.Address())
	}

	m = press(t, m, "g")
	if st := m.State(); st.Slide != 0 || st.Step != 0 {
		t.Fatalf("after g: (%d, %d), want (0, 0)", st.Slide, st.Step)
	}
}

func TestModelQuitKeys(t *testing.T) {
	m := newTestModel(t, config.UIConfig{}, 1)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("expected quit command on q")
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("expected quit command on ctrl+c")
	}
}

func TestModelAddressEntry(t *testing.T) {
	m := newTestModel(t, config.UIConfig{}, 1, 2, 3)

	m = press(t, m, "/", "#3", "enter")
	if st := m.State(); st.Slide != 2 || st.Step != 0 {
		t.Fatalf("state = (%d, %d), want (2, 0)", st.Slide, st.Step)
	}
	if m.addressFocus {
		t.Error("address bar still focused after successful commit")
	}
	if m.Address() != "#3" {
		t.Errorf("address = %q, want #3", m.Address())
	}
}

func TestModelAddressEntryInvalid(t *testing.T) {
	m := newTestModel(t, config.UIConfig{}, 1, 2, 3)

	m = press(t, m, "/", "#nosuch", "enter")
	if !m.addressInvalid {
		t.Error("invalid address not flagged")
	}
	if !m.addressFocus {
		t.Error("address bar should stay focused on invalid input")
	}
	if st := m.State(); st.Slide != 0 || st.Step != 0 {
		t.Errorf("state moved to (%d, %d) on invalid input", st.Slide, st.Step)
	}

	// Escape abandons the edit and restores the canonical address.
	m = press(t, m, "esc")
	if m.addressInvalid || m.addressFocus {
		t.Error("escape did not reset the address bar")
	}
	if m.Address() != "#1" {
		t.Errorf("address = %q, want #1", m.Address())
	}
}

func TestModelBlankToggle(t *testing.T) {
	m := newTestModel(t, config.UIConfig{}, 1, 3)

	m = press(t, m, "b")
	if !m.State().Blanked {
		t.Fatal("b did not blank")
	}
	if !strings.Contains(m.View(), "(screen blanked)") {
		t.Error("blanked view missing blank marker")
	}

	// Navigation while blanked resumes without moving.
	m = press(t, m, "l")
	if st := m.State(); st.Blanked || st.Slide != 0 {
		t.Errorf("state = %+v, want un-blanked at slide 0", st)
	}
}

func TestModelHelpOverlay(t *testing.T) {
	m := newTestModel(t, config.UIConfig{}, 1)

	m = press(t, m, "?")
	if !m.showHelp {
		t.Fatal("help not shown")
	}
	if !strings.Contains(m.View(), "slidewalk keys") {
		t.Error("help view missing key table")
	}

	m = press(t, m, "x")
	if m.showHelp {
		t.Error("help not dismissed")
	}
}

func TestModelInitialHash(t *testing.T) {
	m := newTestModel(t, config.UIConfig{InitialHash: "#2#2"}, 1, 2)
	if st := m.State(); st.Slide != 1 || st.Step != 1 {
		t.Fatalf("state = (%d, %d), want (1, 1)", st.Slide, st.Step)
	}
	if m.Address() != "#2#2" {
		t.Errorf("address = %q, want #2#2", m.Address())
	}
}

func TestModelInitialHashInvalid(t *testing.T) {
	m := newTestModel(t, config.UIConfig{InitialHash: "#bogus slide"}, 1, 2)
	if st := m.State(); st.Slide != 0 || st.Step != 0 {
		t.Fatalf("state = (%d, %d), want (0, 0)", st.Slide, st.Step)
	}
	if m.Address() != "#1" {
		t.Errorf("address = %q, want #1", m.Address())
	}
}

func TestModelDeckReload(t *testing.T) {
	m := newTestModel(t, config.UIConfig{}, 1, 2, 3)
	m = press(t, m, "G")

	updated, _ := m.Update(DeckReloadedMsg{Deck: testutil.DeckWithStepCounts(1, 2)})
	m = updated.(Model)

	// The old position (2, 2) is clamped into the smaller deck.
	if st := m.State(); st.Slide != 1 || st.Step != 1 {
		t.Fatalf("state = (%d, %d), want (1, 1)", st.Slide, st.Step)
	}
	if m.Address() != "#2#2" {
		t.Errorf("address = %q, want #2#2", m.Address())
	}
	if m.statusIsError {
		t.Errorf("reload reported error: %s", m.statusMsg)
	}
}

func TestModelDeckReloadInvalidDeck(t *testing.T) {
	m := newTestModel(t, config.UIConfig{}, 1, 2)
	before := m.State()

	updated, _ := m.Update(DeckReloadedMsg{Deck: &model.Deck{}})
	m = updated.(Model)

	if !m.statusIsError {
		t.Error("invalid reload not reported")
	}
	if st := m.State(); st != before {
		t.Errorf("state changed on failed reload: %+v", st)
	}
}

func TestModelReloadFailedMsg(t *testing.T) {
	m := newTestModel(t, config.UIConfig{}, 1)

	updated, _ := m.Update(ReloadFailedMsg{Err: errors.New("parse error")})
	m = updated.(Model)
	if !m.statusIsError || !strings.Contains(m.statusMsg, "parse error") {
		t.Errorf("status = %q (error=%v)", m.statusMsg, m.statusIsError)
	}
}

func TestViewBeforeReady(t *testing.T) {
	d := testutil.DeckWithStepCounts(1)
	ix, err := build.NewIndex(d)
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(d, ix, config.UIConfig{})
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("pre-size view should show the init placeholder")
	}
}

func TestViewShowsPosition(t *testing.T) {
	m := newTestModel(t, config.UIConfig{}, 1, 3)
	m = press(t, m, "l", "l")

	view := m.View()
	if !strings.Contains(view, "slide 2/2") || !strings.Contains(view, "step 2/3") {
		t.Errorf("view missing position indicator:\n%s", view)
	}
}

func TestViewNotesPane(t *testing.T) {
	d := testutil.DeckWithStepCounts(1, 2)
	d.Slides[0].Notes = []model.Note{{Text: "remember the demo"}}
	ix, err := build.NewIndex(d)
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(d, ix, config.UIConfig{ShowNotes: true, NotesWidth: 40})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	if !strings.Contains(m.View(), "notes") {
		t.Error("notes pane missing")
	}
	if got := m.notesMarkdown(); got != "remember the demo" {
		t.Errorf("notesMarkdown = %q", got)
	}
}

func TestNotesStepScoping(t *testing.T) {
	d := testutil.DeckWithStepCounts(3)
	d.Slides[0].Notes = []model.Note{
		{Text: "always"},
		{Text: "only step two", StepNumbers: []int{1}},
	}
	ix, err := build.NewIndex(d)
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(d, ix, config.UIConfig{ShowNotes: true})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	if got := m.notesMarkdown(); got != "always" {
		t.Errorf("step 0 notes = %q, want only the unscoped note", got)
	}

	m = press(t, m, "l")
	if got := m.notesMarkdown(); got != "always\n\nonly step two" {
		t.Errorf("step 1 notes = %q", got)
	}
}
