// Package list provides the result list component for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/styles"
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// ResultList displays one page of hits in a navigable list.
type ResultList struct {
	items    []domain.ResultItem
	offset   int
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the visible part of the page.
func (r *ResultList) View() string {
	if len(r.items) == 0 {
		return r.styles.Muted.Render("No results")
	}

	// Each hit takes three lines.
	visibleCount := r.height / 3
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.items))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, r.renderItem(i, r.items[i]))
	}
	return strings.Join(lines, "\n")
}

// renderItem formats a hit as a numbered headline with a detail line.
func (r *ResultList) renderItem(index int, item domain.ResultItem) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	headline := truncate(singleLine(item.Headline()), max(r.width-30, 10))
	number := fmt.Sprintf("%s%d. ", indicator, r.offset+index+1)

	var title string
	if index == r.selected {
		title = r.styles.Selected.Render(number+headline) + " " + r.styles.Badge(item.Shape)
	} else {
		title = r.styles.Normal.Render(number+headline) + " " + r.styles.Badge(item.Shape)
	}
	if item.Score > 0 {
		title += r.styles.Muted.Render(fmt.Sprintf("  %.2f", item.Score))
	}

	detail := r.styles.Muted.Render("    " + truncate(Detail(item), max(r.width-6, 20)))
	return title + "\n" + detail + "\n"
}

// Detail is the secondary line of a hit: who posted it and where.
func Detail(item domain.ResultItem) string {
	var parts []string
	add := func(name string) {
		if v, ok := item.Get(name); ok && v != "" {
			parts = append(parts, singleLine(v))
		}
	}
	switch item.Shape {
	case domain.ShapeTweet, domain.ShapeSpace:
		add("username")
		if v, ok := item.Get("handle"); ok && v != "" {
			parts = append(parts, "@"+v)
		}
		add("source")
	case domain.ShapeDiscordMessage:
		add("author")
		if v, ok := item.Get("guild"); ok && v != "" {
			parts = append(parts, v+"#"+item.Fields["channel"])
		}
		add("message_link")
	case domain.ShapeUnknown:
	}
	if len(parts) == 0 {
		return item.Key
	}
	return strings.Join(parts, " · ")
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetPage replaces the list with the hits of a page.
func (r *ResultList) SetPage(page *domain.ResultPage) {
	r.selected = 0
	if page == nil {
		r.items, r.offset = nil, 0
		return
	}
	r.items = page.Items
	r.offset = page.Offset
}

// Items returns the current hits.
func (r *ResultList) Items() []domain.ResultItem {
	return r.items
}

// Selected returns the index of the selected hit.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedItem returns the selected hit, or nil if the list is empty.
func (r *ResultList) SelectedItem() *domain.ResultItem {
	if r.selected < 0 || r.selected >= len(r.items) {
		return nil
	}
	return &r.items[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.items)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}
