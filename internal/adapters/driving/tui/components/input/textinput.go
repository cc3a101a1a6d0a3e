// Package input provides the query input component for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/styles"
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// SearchInput wraps a bubbles textinput and shows the active query mode.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	mode      domain.QueryMode
	width     int
}

// NewSearchInput creates a focused search input in the given mode.
func NewSearchInput(s *styles.Styles, mode domain.QueryMode) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if !mode.IsValid() {
		mode = domain.QueryModeWeighted
	}

	ti := textinput.New()
	ti.Placeholder = "Search tweets, spaces and messages..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &SearchInput{
		textinput: ti,
		styles:    s,
		mode:      mode,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// View renders the label, mode and input box.
func (s *SearchInput) View() string {
	label := s.styles.Title.Render("Search ")
	mode := s.styles.Muted.Render("[" + s.mode.String() + "] ")
	input := s.styles.InputField.Render(s.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, mode, input)
}

// Value returns the current input value.
func (s *SearchInput) Value() string {
	return s.textinput.Value()
}

// SetValue sets the input value.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// Mode returns the selected query mode.
func (s *SearchInput) Mode() domain.QueryMode {
	return s.mode
}

// CycleMode advances to the next query mode and returns it.
func (s *SearchInput) CycleMode() domain.QueryMode {
	switch s.mode {
	case domain.QueryModeWeighted:
		s.mode = domain.QueryModeRaw
	case domain.QueryModeRaw:
		s.mode = domain.QueryModeFuzzy
	default:
		s.mode = domain.QueryModeWeighted
	}
	return s.mode
}

// Focus sets focus on the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	// Account for label, mode and padding
	inputWidth := width - 24
	if inputWidth < 20 {
		inputWidth = 20
	}
	s.textinput.Width = inputWidth
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}
