package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui/messages"
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

type searchCall struct {
	query string
	mode  domain.QueryMode
	page  int
}

// fakeSearch pages through total hits two at a time, honouring the session's
// first total like the real service.
type fakeSearch struct {
	calls      []searchCall
	sessions   int
	total      int
	err        error
	compileErr error
}

func (f *fakeSearch) NewSession(q string, mode domain.QueryMode) (*domain.SearchSession, error) {
	if f.compileErr != nil {
		return nil, f.compileErr
	}
	f.sessions++
	return &domain.SearchSession{
		ID:    fmt.Sprintf("session-%d", f.sessions),
		Query: domain.CompiledQuery{RawText: q, Mode: mode},
	}, nil
}

func (f *fakeSearch) Page(_ context.Context, s *domain.SearchSession, page int) (*domain.ResultPage, error) {
	f.calls = append(f.calls, searchCall{s.Query.RawText, s.Query.Mode, page})
	if f.err != nil {
		return nil, f.err
	}
	if f.total == 0 {
		f.total = 5
	}
	const size = 2
	total := s.Record(f.total, false)
	offset := (page - 1) * size
	p := &domain.ResultPage{
		SessionID:  s.ID,
		Query:      s.Query.RawText,
		Total:      total,
		Offset:     offset,
		Page:       page,
		PageCount:  domain.PageCountFor(total, size),
		NextOffset: domain.NextOffsetFor(offset, size, total),
	}
	for i := offset; i < min(offset+size, total); i++ {
		p.Items = append(p.Items, domain.ResultItem{
			Key:    fmt.Sprintf("Tweet:%d", i),
			Shape:  domain.ShapeTweet,
			Fields: map[string]string{"content": fmt.Sprintf("hit %d", i)},
		})
	}
	return p, nil
}

func (f *fakeSearch) Search(context.Context, string, domain.QueryMode, int) (*domain.ResultPage, error) {
	return nil, errors.New("not used by the view")
}

func (f *fakeSearch) Compile(string, domain.QueryMode) (domain.CompiledQuery, error) {
	return domain.CompiledQuery{}, nil
}

func (f *fakeSearch) PageSize() int { return 2 }

func newTestView(svc *fakeSearch) *View {
	v := NewView(nil, nil, svc, domain.QueryModeWeighted)
	v.SetDimensions(100, 40)
	return v
}

func typeText(v *View, text string) {
	for _, r := range text {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// press sends a key and runs the resulting command back through the view.
func press(t *testing.T, v *View, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := v.Update(msg)
	if cmd == nil {
		return
	}
	if out := cmd(); out != nil {
		if _, ok := out.(messages.SearchCompleted); ok {
			v.Update(out)
		}
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_NotReady(t *testing.T) {
	v := NewView(nil, nil, &fakeSearch{}, domain.QueryModeWeighted)

	assert.Equal(t, "Initialising...", v.View())
}

func TestView_SubmitSearch(t *testing.T) {
	svc := &fakeSearch{}
	v := newTestView(svc)

	typeText(v, "redis")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, svc.calls, 1)
	assert.Equal(t, searchCall{"redis", domain.QueryModeWeighted, 1}, svc.calls[0])
	assert.False(t, v.InputFocused())
	require.NotNil(t, v.Page())
	assert.Len(t, v.Page().Items, 2)
	assert.Contains(t, v.View(), "hit 0")
	assert.Contains(t, v.View(), "Page 1 of 3")
}

func TestView_EmptyQueryIgnored(t *testing.T) {
	svc := &fakeSearch{}
	v := newTestView(svc)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, svc.calls)
	assert.True(t, v.InputFocused())
}

func TestView_TabCyclesMode(t *testing.T) {
	svc := &fakeSearch{}
	v := newTestView(svc)

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(v, "ada")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, domain.QueryModeFuzzy, v.Mode())
	require.Len(t, svc.calls, 1)
	assert.Equal(t, domain.QueryModeFuzzy, svc.calls[0].mode)
}

func TestView_Paging(t *testing.T) {
	svc := &fakeSearch{}
	v := newTestView(svc)
	typeText(v, "redis")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	// Previous on the first page does nothing.
	press(t, v, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Len(t, svc.calls, 1)

	press(t, v, tea.KeyMsg{Type: tea.KeyRight})
	press(t, v, runes("l"))
	assert.Equal(t, 3, v.Page().Page)
	assert.Len(t, v.Page().Items, 1)
	assert.Contains(t, v.View(), "5. hit 4")

	// The last page has no next.
	press(t, v, tea.KeyMsg{Type: tea.KeyRight})
	assert.Len(t, svc.calls, 3)

	press(t, v, runes("h"))
	assert.Equal(t, 2, v.Page().Page)
	assert.Equal(t, searchCall{"redis", domain.QueryModeWeighted, 2}, svc.calls[3])
}

func TestView_PagingKeepsSubmittedQuery(t *testing.T) {
	svc := &fakeSearch{}
	v := newTestView(svc)
	typeText(v, "redis")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	v.Update(runes("n"))
	assert.True(t, v.InputFocused())
	typeText(v, "x")
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.InputFocused())

	press(t, v, tea.KeyMsg{Type: tea.KeyRight})

	assert.Equal(t, searchCall{"redis", domain.QueryModeWeighted, 2}, svc.calls[1])
}

func TestView_StaleResultsDropped(t *testing.T) {
	svc := &fakeSearch{}
	v := newTestView(svc)
	typeText(v, "first")
	_, first := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v.Update(runes("n"))
	typeText(v, "second")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(first())

	assert.Equal(t, "firstsecond", v.Page().Query)
	assert.Equal(t, v.Session().ID, v.Page().SessionID)
}

func TestView_StalePageTurnDropped(t *testing.T) {
	v := newTestView(&fakeSearch{})
	typeText(v, "redis")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	press(t, v, tea.KeyMsg{Type: tea.KeyRight})

	_, toPage3 := v.Update(tea.KeyMsg{Type: tea.KeyRight})
	late := toPage3()
	// Still showing page 2, so left asks for page 1 before page 3 lands.
	press(t, v, tea.KeyMsg{Type: tea.KeyLeft})
	v.Update(late)

	assert.Equal(t, 1, v.Page().Page)
}

func TestView_PagingKeepsFirstTotal(t *testing.T) {
	svc := &fakeSearch{total: 5}
	v := newTestView(svc)
	typeText(v, "redis")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})
	session := v.Session()

	svc.total = 40
	press(t, v, tea.KeyMsg{Type: tea.KeyRight})

	assert.Same(t, session, v.Session())
	assert.Equal(t, 5, v.Page().Total)
	assert.Equal(t, 3, v.Page().PageCount)
	assert.Equal(t, 1, svc.sessions)
}

func TestView_CompileErrorRefocusesInput(t *testing.T) {
	svc := &fakeSearch{compileErr: fmt.Errorf("%w: bad mode", domain.ErrInvalidInput)}
	v := newTestView(svc)
	typeText(v, "redis")

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, svc.calls)
	assert.ErrorIs(t, v.Err(), domain.ErrInvalidInput)
	assert.True(t, v.InputFocused())
	assert.Nil(t, v.Session())
}

func TestView_SyntaxErrorRefocusesInput(t *testing.T) {
	svc := &fakeSearch{err: fmt.Errorf("%w: unbalanced", domain.ErrQueryRejected)}
	v := newTestView(svc)
	typeText(v, "@content:(")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	assert.ErrorIs(t, v.Err(), domain.ErrQueryRejected)
	assert.True(t, v.InputFocused())
	assert.Contains(t, v.View(), "Error:")
}

func TestView_StoreErrorKeepsResultsMode(t *testing.T) {
	svc := &fakeSearch{err: domain.ErrStoreTimeout}
	v := newTestView(svc)
	typeText(v, "redis")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	assert.ErrorIs(t, v.Err(), domain.ErrStoreTimeout)
	assert.False(t, v.InputFocused())
	assert.Nil(t, v.Page())
}

func TestView_NoSearchService(t *testing.T) {
	v := NewView(nil, nil, nil, domain.QueryModeWeighted)
	v.SetDimensions(80, 24)
	typeText(v, "x")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	assert.ErrorIs(t, v.Err(), ErrNoSearchService)
}

func TestView_IndexReady(t *testing.T) {
	v := newTestView(&fakeSearch{})

	v.Update(messages.IndexReady{Status: domain.IndexStatus{Outcome: domain.IndexOutcomeCreated, Reindexed: 7}})
	assert.NoError(t, v.Err())
	assert.Contains(t, v.View(), "Index created, 7 documents indexed")

	v.Update(messages.IndexReady{Err: errors.New("connection refused")})
	assert.ErrorContains(t, v.Err(), "index not ready")
}

func TestView_QuitFromResults(t *testing.T) {
	v := newTestView(&fakeSearch{})
	typeText(v, "redis")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := v.Update(runes("q"))

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestView_SelectionMoves(t *testing.T) {
	v := newTestView(&fakeSearch{})
	typeText(v, "redis")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	v.Update(runes("j"))

	require.NotNil(t, v.SelectedItem())
	assert.Equal(t, "Tweet:1", v.SelectedItem().Key)
}
