// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/keymap"
	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/styles"
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateStarting  State = "starting"
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateError     State = "error"
	StateResults   State = "results"
)

// Bar displays search progress, paging and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	page    *domain.ResultPage
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - s.styles.StatusBar.GetHorizontalFrameSize() - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateStarting:
		return s.styles.Muted.Render("Preparing index...")
	case StateSearching:
		return s.styles.Muted.Render("Searching...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateResults:
		if s.page != nil && s.page.Total > 0 {
			return s.styles.Normal.Render(fmt.Sprintf("Page %d of %d · %d results",
				s.page.Page, s.page.PageCount, s.page.Total))
		}
		return s.styles.Muted.Render("No results")
	case StateReady:
		if s.message != "" {
			return s.styles.Muted.Render(s.message)
		}
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateResults {
		bindings = s.keymap.ResultsHelp()
	} else {
		bindings = s.keymap.InputHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a message shown in the error and ready states.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// SetPage records the page whose position is shown.
func (s *Bar) SetPage(page *domain.ResultPage) {
	s.page = page
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}
