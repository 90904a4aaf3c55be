// Package ui implements the terminal deck viewer: a bubbletea program
// that renders the current slide's layer state, speaker notes, and an
// editable address bar wired to the navigation stepper.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/slidewalk/pkg/address"
	"github.com/vanderheijden86/slidewalk/pkg/build"
	"github.com/vanderheijden86/slidewalk/pkg/config"
	"github.com/vanderheijden86/slidewalk/pkg/debug"
	"github.com/vanderheijden86/slidewalk/pkg/model"
	"github.com/vanderheijden86/slidewalk/pkg/navigate"
)

// DeckReloadedMsg is sent when the deck has been reloaded from disk,
// typically after a file watcher event. The host builds the new deck off
// the UI goroutine and hands it over whole.
type DeckReloadedMsg struct {
	Deck *model.Deck
}

// ReloadFailedMsg is sent when a deck reload attempt failed. The viewer
// keeps showing the previous deck.
type ReloadFailedMsg struct {
	Err error
}

// hashBar is the in-process address bar shared between the user (via the
// text input) and the address sync.
type hashBar struct {
	value string
}

func (b *hashBar) Get() string     { return b.value }
func (b *hashBar) Set(hash string) { b.value = hash }

// Model is the bubbletea model of the viewer.
type Model struct {
	theme Theme
	cfg   config.UIConfig

	deck    *model.Deck
	index   *build.Index
	stepper *navigate.Stepper
	codec   *address.Codec
	sync    *address.Sync
	bar     *hashBar

	addressInput   textinput.Model
	addressFocus   bool
	addressInvalid bool

	notes      viewport.Model
	mdRenderer *glamour.TermRenderer
	showNotes  bool

	width  int
	height int
	ready  bool

	showHelp bool

	statusMsg     string
	statusIsError bool
}

// NewModel builds the viewer over a loaded deck and its step index. The
// initial position comes from cfg.InitialHash when it resolves;
// otherwise the show starts at the first slide.
func NewModel(d *model.Deck, ix *build.Index, cfg config.UIConfig) Model {
	m := Model{
		theme:     DefaultTheme(lipgloss.DefaultRenderer()),
		cfg:       cfg,
		deck:      d,
		index:     ix,
		bar:       &hashBar{},
		showNotes: cfg.ShowNotes,
	}

	m.stepper = navigate.New(ix)
	m.codec = address.NewCodec(ix)
	m.sync = address.NewSync(m.stepper, m.codec, m.bar)

	if cfg.InitialHash != "" {
		m.bar.Set(cfg.InitialHash)
		if !m.sync.HashChanged() {
			debug.Log("initial hash %q did not resolve", cfg.InitialHash)
			m.bar.Set(address.Encode(0, 0))
		}
	}

	ti := textinput.New()
	ti.Placeholder = "#slide@tag"
	ti.CharLimit = 64
	ti.SetValue(m.bar.Get())
	m.addressInput = ti

	m.notes = viewport.New(0, 0)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.layout(msg.Width, msg.Height)
		return m, nil

	case DeckReloadedMsg:
		m = m.reload(msg.Deck)
		return m, nil

	case ReloadFailedMsg:
		m.setStatus(fmt.Sprintf("reload failed: %v", msg.Err), true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// layout applies a new terminal size and rebuilds the size-dependent
// renderers.
func (m Model) layout(width, height int) Model {
	m.width, m.height = width, height
	m.ready = true

	notesWidth := m.notesPaneWidth()
	m.notes.Width = notesWidth
	m.notes.Height = max(height-chromeHeight-2, 1)

	// Word wrap tracks the pane's inner width; the renderer is rebuilt
	// on every resize.
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(notesWidth-2, 20)),
	)
	if err == nil {
		m.mdRenderer = renderer
	}

	m.refreshNotes()
	return m
}

// reload swaps in a freshly loaded deck, keeping the current position as
// far as the new deck allows.
func (m Model) reload(d *model.Deck) Model {
	ix, err := build.NewIndex(d)
	if err != nil {
		m.setStatus(fmt.Sprintf("reload failed: %v", err), true)
		return m
	}

	old := m.stepper.State()
	slide := min(old.Slide, ix.SlideCount()-1)
	step := min(old.Step, ix.StepCount(slide)-1)

	m.sync.Close()
	m.deck, m.index = d, ix
	m.stepper = navigate.New(ix, navigate.WithPosition(slide, step))
	m.codec = address.NewCodec(ix)
	m.sync = address.NewSync(m.stepper, m.codec, m.bar)

	m.addressInvalid = false
	m.setStatus("deck reloaded", false)
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.statusMsg = ""
	m.statusIsError = false

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// The help overlay swallows every key.
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.addressFocus {
		return m.handleAddressKey(msg)
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case " ", "right", "l", "enter":
		m.stepper.NextStep()
	case "left", "h", "backspace":
		m.stepper.PreviousStep()
	case "down", "j", "pgdown":
		m.stepper.NextSlide()
	case "up", "k", "pgup":
		m.stepper.PreviousSlide()
	case "home", "g":
		m.stepper.Start()
	case "end", "G":
		m.stepper.End()

	case "b", ".":
		m.stepper.ToggleBlank()

	case "n":
		m.showNotes = !m.showNotes
		m = m.layout(m.width, m.height)

	case "y":
		m = m.copyAddress()

	case "/", "o":
		m.addressFocus = true
		m.addressInput.SetValue(m.bar.Get())
		m.addressInput.CursorEnd()
		return m.refresh(), m.addressInput.Focus()

	case "?", "f1":
		m.showHelp = true
	}

	return m.refresh(), nil
}

// handleAddressKey routes keys while the address bar is being edited.
func (m Model) handleAddressKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.bar.Set(m.addressInput.Value())
		if m.sync.HashChanged() {
			m.addressInvalid = false
			m.addressFocus = false
			m.addressInput.Blur()
		} else {
			m.addressInvalid = true
			m.setStatus(fmt.Sprintf("address %q does not resolve", m.addressInput.Value()), true)
		}
		return m.refresh(), nil

	case "esc":
		// Abandon the edit and restore the canonical address.
		st := m.stepper.State()
		m.bar.Set(m.codec.Encode(st.Slide, st.Step))
		m.addressInvalid = false
		m.addressFocus = false
		m.addressInput.Blur()
		return m.refresh(), nil
	}

	var cmd tea.Cmd
	m.addressInput, cmd = m.addressInput.Update(msg)
	return m, cmd
}

// copyAddress puts the current address on the system clipboard.
func (m Model) copyAddress() Model {
	addr := m.bar.Get()
	if err := clipboard.WriteAll(addr); err != nil {
		m.setStatus(fmt.Sprintf("clipboard: %v", err), true)
		return m
	}
	m.setStatus(fmt.Sprintf("copied %s", addr), false)
	return m
}

// refresh re-syncs the derived widgets after any navigation.
func (m Model) refresh() Model {
	if !m.addressFocus {
		m.addressInput.SetValue(m.bar.Get())
	}
	m.refreshNotes()
	return m
}

// refreshNotes fills the notes viewport with the speaker notes that
// apply to the current step.
func (m *Model) refreshNotes() {
	if !m.showNotes {
		return
	}
	body := m.notesMarkdown()
	if body == "" {
		m.notes.SetContent(m.theme.MutedText.Render("no notes"))
		return
	}
	if m.mdRenderer != nil {
		if rendered, err := m.mdRenderer.Render(body); err == nil {
			m.notes.SetContent(strings.TrimRight(rendered, "\n"))
			return
		}
	}
	m.notes.SetContent(body)
}

// notesMarkdown joins every note applicable at the current step.
func (m *Model) notesMarkdown() string {
	st := m.stepper.State()
	if st.Slide < 0 || st.Slide >= len(m.deck.Slides) {
		return ""
	}
	steps, _ := m.index.Slide(st.Slide)
	number := steps.NumberAt(st.Step)

	var parts []string
	for _, note := range m.deck.Slides[st.Slide].Notes {
		if note.StepNumbers == nil || containsInt(note.StepNumbers, number) {
			parts = append(parts, note.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

// State exposes the navigation state, for the host and for tests.
func (m Model) State() navigate.State {
	return m.stepper.State()
}

// Address returns the address currently shown in the bar.
func (m Model) Address() string {
	return m.bar.Get()
}

func containsInt(ns []int, n int) bool {
	for _, v := range ns {
		if v == n {
			return true
		}
	}
	return false
}
