package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/messages"
	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/styles"
	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/views/search"
	"github.com/creativedestruction/searchdash/internal/core/ports/driving"
)

// App is the TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	ctx   context.Context

	searchView *search.View

	// indexReady is set once EnsureIndexReady succeeded.
	indexReady bool
	err        error
}

var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		searchView: search.NewView(styles.DefaultStyles(), nil, ports.Search, ports.Mode),
	}, nil
}

// WithContext sets the context for index preparation and searches.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// Init prepares the index in the background while the input is shown.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("searchdash"),
		a.searchView.Init(),
		ensureIndex(a.ctx, a.ports.Index),
	)
}

func ensureIndex(ctx context.Context, index driving.IndexService) tea.Cmd {
	return func() tea.Msg {
		status, err := index.EnsureIndexReady(ctx)
		return messages.IndexReady{Status: status, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case messages.IndexReady:
		a.indexReady = msg.Err == nil
		a.err = msg.Err
	}

	var cmd tea.Cmd
	a.searchView, cmd = a.searchView.Update(msg)
	if err := a.searchView.Err(); err != nil {
		a.err = err
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	return a.searchView.View()
}

// Run starts the TUI on the alternate screen.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// IndexReady returns whether the index was prepared successfully.
func (a *App) IndexReady() bool {
	return a.indexReady
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// SearchView returns the search view.
func (a *App) SearchView() *search.View {
	return a.searchView
}
