package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// chromeRows is the number of rows used by the title and help lines.
const chromeRows = 3

// defaultPickerHeight is used until the first WindowSizeMsg arrives.
const defaultPickerHeight = 10

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Home   key.Binding
	End    key.Binding
	Choose key.Binding
	Cancel key.Binding
}

func defaultPickerKeys() pickerKeyMap {
	return pickerKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Home:   key.NewBinding(key.WithKeys("home", "g")),
		End:    key.NewBinding(key.WithKeys("end", "G")),
		Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("q", "cancel")),
	}
}

// PickerModel is a single-choice list. Only the rows that fit in the window are rendered.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type PickerModel struct {
	title     string
	items     []string
	keys      pickerKeyMap
	selected  int
	offset    int
	height    int
	chosen    bool
	cancelled bool
}

// NewPickerModel creates a picker over items with the first item selected.
func NewPickerModel(title string, items []string) PickerModel {
	return PickerModel{
		title:  title,
		items:  items,
		keys:   defaultPickerKeys(),
		height: defaultPickerHeight,
	}
}

// Init implements tea.Model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles navigation, selection and resize.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(1, msg.Height-chromeRows)
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Choose):
			if len(m.items) == 0 {
				m.cancelled = true
			} else {
				m.chosen = true
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Home):
			m.move(-len(m.items))
		case key.Matches(msg, m.keys.End):
			m.move(len(m.items))
		}
	}
	return m, nil
}

// View renders the title, the visible rows and a help line.
func (m PickerModel) View() string {
	if m.chosen || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	end := min(len(m.items), m.offset+m.height)
	for i := m.offset; i < end; i++ {
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + m.items[i]))
		} else {
			b.WriteString("  " + m.items[i])
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ move • enter choose • q cancel"))
	return b.String()
}

// Selected returns the highlighted index.
func (m PickerModel) Selected() int {
	return m.selected
}

// Chosen reports whether the user confirmed a choice.
func (m PickerModel) Chosen() bool {
	return m.chosen
}

// Cancelled reports whether the user backed out.
func (m PickerModel) Cancelled() bool {
	return m.cancelled
}

func (m *PickerModel) move(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.items)-1)
	m.clampOffset()
}

// clampOffset keeps the selected row inside the visible window.
func (m *PickerModel) clampOffset() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.height {
		m.offset = m.selected - m.height + 1
	}
	m.offset = max(0, m.offset)
}
