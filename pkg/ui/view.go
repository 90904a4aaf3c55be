package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// chromeHeight is the number of terminal rows taken by the header and
// the status bar.
const chromeHeight = 2

// notesViewThreshold is the minimum terminal width at which the notes
// pane is shown next to the slide pane.
const notesViewThreshold = 80

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return m.viewHelp()
	}

	body := m.viewBody(m.height - chromeHeight)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		body,
		m.viewStatusBar(),
	)
}

func (m Model) viewHeader() string {
	st := m.stepper.State()
	steps, _ := m.index.Slide(st.Slide)

	position := fmt.Sprintf("slide %d/%d  step %d/%d",
		st.Slide+1, m.index.SlideCount(), st.Step+1, steps.Count())

	title := m.deck.Slides[st.Slide].Title
	if title == "" {
		title = m.deck.Slides[st.Slide].Source
	}

	left := m.theme.Header.Render("slidewalk")
	mid := " " + truncate(title, max(m.width-len(position)-14, 0))
	right := m.theme.SecondaryText.Render(position)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(mid) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + mid + strings.Repeat(" ", gap) + right
}

func (m Model) viewBody(height int) string {
	if height < 1 {
		height = 1
	}

	if m.showNotes && m.width >= notesViewThreshold {
		notesWidth := m.notesPaneWidth()
		slide := m.viewSlidePane(m.width-notesWidth-2, height)
		notes := m.viewNotesPane(notesWidth, height)
		return lipgloss.JoinHorizontal(lipgloss.Top, slide, notes)
	}
	return m.viewSlidePane(m.width, height)
}

// notesPaneWidth returns the configured notes width clamped so the slide
// pane keeps at least half the terminal.
func (m Model) notesPaneWidth() int {
	w := m.cfg.NotesWidth
	if w <= 0 {
		w = 40
	}
	if m.width > 0 && w > m.width/2 {
		w = m.width / 2
	}
	return w
}

func (m Model) viewSlidePane(width, height int) string {
	st := m.stepper.State()

	if st.Blanked {
		blank := m.theme.MutedText.Render("(screen blanked)")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, blank)
	}

	slide := m.deck.Slides[st.Slide]
	steps, _ := m.index.Slide(st.Slide)
	number := steps.NumberAt(st.Step)

	var lines []string
	title := slide.Title
	if title == "" {
		title = slide.Source
	}
	if title != "" {
		lines = append(lines, m.theme.SlideTitle.Render(truncate(title, width-2)), "")
	}

	for _, layer := range slide.Layers {
		visible := layer.AlwaysVisible() || containsInt(layer.StepNumbers, number)
		label := displayLabel(layer.Label)
		if label == "" {
			label = layer.Label
		}
		label = truncate(label, width-4)
		if visible {
			lines = append(lines, m.theme.LayerVisible.Render("▌ "+label))
		} else {
			lines = append(lines, m.theme.LayerHidden.Render("  "+label))
		}
	}

	if tags := steps.TagsAt(st.Step); len(tags) > 0 {
		var badges []string
		for _, tag := range tags {
			badges = append(badges, m.theme.TagBadge.Render("@"+tag))
		}
		lines = append(lines, "", strings.Join(badges, " "))
	}

	body := strings.Join(lines, "\n")
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, body)
}

func (m Model) viewNotesPane(width, height int) string {
	style := m.theme.Panel.Width(width).Height(height - 2)
	title := m.theme.SecondaryText.Render(" notes ")
	return lipgloss.JoinVertical(lipgloss.Left, title, style.Render(m.notes.View()))
}

func (m Model) viewStatusBar() string {
	var addr string
	switch {
	case m.addressFocus:
		addr = m.addressInput.View()
	case m.addressInvalid:
		addr = m.theme.DangerText.Render(m.bar.Get())
	default:
		addr = m.theme.PrimaryBold.Render(m.bar.Get())
	}

	status := m.statusMsg
	if m.statusIsError {
		status = m.theme.DangerText.Render(status)
	} else {
		status = m.theme.MutedText.Render(status)
	}

	hints := m.theme.MutedText.Render("?:help  q:quit")

	gap := m.width - lipgloss.Width(addr) - lipgloss.Width(status) - lipgloss.Width(hints) - 4
	if gap < 1 {
		gap = 1
	}
	return " " + addr + "  " + status + strings.Repeat(" ", gap) + hints
}

func (m Model) viewHelp() string {
	rows := []struct{ keys, action string }{
		{"space, right, l, enter", "next step"},
		{"left, h, backspace", "previous step"},
		{"down, j, pgdn", "next slide"},
		{"up, k, pgup", "previous slide"},
		{"home, g / end, G", "first / last step of deck"},
		{"b, .", "blank or resume the screen"},
		{"/, o", "edit the address"},
		{"y", "copy the current address"},
		{"n", "toggle the notes pane"},
		{"?", "toggle this help"},
		{"q, esc, ctrl+c", "quit"},
	}

	var b strings.Builder
	b.WriteString(m.theme.PrimaryBold.Render("slidewalk keys"))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			m.theme.SecondaryText.Render(padRight(row.keys, 26)),
			row.action))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.MutedText.Render("press any key to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}
