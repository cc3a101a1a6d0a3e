// Package search provides the search view for the TUI.
package search

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/components/input"
	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/components/list"
	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/components/status"
	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/keymap"
	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/messages"
	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/styles"
	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driving"
)

// View is the query input, one page of results and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	width  int
	height int
	ready  bool
	err    error

	// focusInput is true while typing and false while browsing results.
	focusInput bool

	// session is the query being paged, which may differ from the input box.
	session *domain.SearchSession
	page    *domain.ResultPage
	pending int
}

// NewView creates a new search view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	mode domain.QueryMode,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s, mode),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context searches run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.IndexReady:
		v.handleIndexReady(msg)
		return v, nil

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleInputKey(msg)
	}

	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Quit):
		return v, tea.Quit
	case keymap.Matches(key, v.keymap.NewSearch), msg.Type == tea.KeyEsc:
		v.focusInput = true
		return v, v.input.Focus()
	case keymap.Matches(key, v.keymap.NextPage):
		if v.page != nil && v.page.HasMore() {
			return v, v.fetchPage(v.page.Page + 1)
		}
		return v, nil
	case keymap.Matches(key, v.keymap.PrevPage):
		if v.page != nil && v.page.Page > 1 {
			return v, v.fetchPage(v.page.Page - 1)
		}
		return v, nil
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		query := v.input.Value()
		if query == "" {
			return v, nil
		}
		v.focusInput = false
		v.input.Blur()
		return v, v.startSearch(query, v.input.Mode())

	case tea.KeyTab:
		v.input.CycleMode()
		return v, nil

	case tea.KeyEsc:
		if v.page != nil {
			v.focusInput = false
			v.input.Blur()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// startSearch compiles the query into a new session and fetches its first page.
// Compile errors are shown at once and return focus to the input.
func (v *View) startSearch(query string, mode domain.QueryMode) tea.Cmd {
	if v.searchService == nil {
		v.setError(ErrNoSearchService)
		return nil
	}
	session, err := v.searchService.NewSession(query, mode)
	if err != nil {
		v.setError(err)
		v.focusInput = true
		return v.input.Focus()
	}
	v.session = session
	return v.fetchPage(1)
}

// fetchPage loads a page of the current session in the background.
func (v *View) fetchPage(page int) tea.Cmd {
	v.pending = page
	v.statusbar.SetState(status.StateSearching)

	search := v.searchService
	session := v.session
	ctx := v.ctx
	return func() tea.Msg {
		result, err := search.Page(ctx, session, page)
		return messages.SearchCompleted{SessionID: session.ID, PageNum: page, Page: result, Err: err}
	}
}

func (v *View) handleIndexReady(msg messages.IndexReady) {
	if msg.Err != nil {
		v.setError(fmt.Errorf("index not ready: %w", msg.Err))
		return
	}
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	switch msg.Status.Outcome {
	case domain.IndexOutcomeCreated:
		v.statusbar.SetMessage(fmt.Sprintf("Index created, %d documents indexed", msg.Status.Reindexed))
	case domain.IndexOutcomeRecreated:
		v.statusbar.SetMessage(fmt.Sprintf("Index recreated, %d documents indexed", msg.Status.Reindexed))
	case domain.IndexOutcomeAlreadyExists:
		v.statusbar.SetMessage("")
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if v.session == nil || msg.SessionID != v.session.ID || msg.PageNum != v.pending {
		return
	}
	if msg.Err != nil {
		v.setError(msg.Err)
		if errors.Is(msg.Err, domain.ErrQueryRejected) {
			// Let the user fix the query.
			v.focusInput = true
			v.input.Focus()
		}
		return
	}

	v.err = nil
	v.page = msg.Page
	v.list.SetPage(msg.Page)
	v.statusbar.SetPage(msg.Page)
	v.statusbar.SetState(status.StateResults)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("searchdash"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the text in the input box.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the text in the input box.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Mode returns the mode selected in the input box.
func (v *View) Mode() domain.QueryMode {
	return v.input.Mode()
}

// Session returns the session being paged, or nil before the first search.
func (v *View) Session() *domain.SearchSession {
	return v.session
}

// Page returns the displayed page, or nil before the first search.
func (v *View) Page() *domain.ResultPage {
	return v.page
}

// SelectedItem returns the highlighted hit.
func (v *View) SelectedItem() *domain.ResultItem {
	return v.list.SelectedItem()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
