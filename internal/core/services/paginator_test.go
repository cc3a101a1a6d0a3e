package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativedestruction/searchdash/internal/adapters/driven/storage/memory"
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

func TestPaginator_PagesCoverEveryMatchOnce(t *testing.T) {
	f := newFixture(t, 10, false)
	f.putMany(t, "Tweet:", 23, "go")
	f.ready(t)

	session, err := f.search.NewSession("go", domain.QueryModeWeighted)
	require.NoError(t, err)

	seen := map[string]bool{}
	wantNext := []int{10, 20, -1}
	for page := 1; page <= 3; page++ {
		result, err := f.search.Page(context.Background(), session, page)
		require.NoError(t, err)
		assert.Equal(t, 23, result.Total)
		assert.Equal(t, 3, result.PageCount)
		assert.Equal(t, page, result.Page)
		assert.Equal(t, (page-1)*10, result.Offset)
		assert.Equal(t, wantNext[page-1], result.NextOffset)
		for _, item := range result.Items {
			assert.False(t, seen[item.Key], "duplicate %s", item.Key)
			seen[item.Key] = true
		}
	}
	assert.Len(t, seen, 23)
}

func TestPaginator_BeyondLastPage(t *testing.T) {
	f := newFixture(t, 10, false)
	f.putMany(t, "Tweet:", 23, "go")
	f.ready(t)
	session, err := f.search.NewSession("go", domain.QueryModeWeighted)
	require.NoError(t, err)
	_, err = f.search.Page(context.Background(), session, 1)
	require.NoError(t, err)
	searches := f.store.Calls(memory.OpSearch)

	result, err := f.search.Page(context.Background(), session, 4)

	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 23, result.Total)
	assert.Equal(t, -1, result.NextOffset)
	assert.False(t, result.HasMore())
	assert.Equal(t, searches, f.store.Calls(memory.OpSearch))
}

func TestPaginator_BeyondLastPageWithoutTotal(t *testing.T) {
	f := newFixture(t, 10, false)
	f.putMany(t, "Tweet:", 3, "go")
	f.ready(t)

	result, err := f.search.Search(context.Background(), "go", domain.QueryModeWeighted, 5)

	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.PageCount)
}

func TestPaginator_InvalidPage(t *testing.T) {
	f := newFixture(t, 10, false)
	f.ready(t)

	for _, page := range []int{0, -1} {
		_, err := f.search.Search(context.Background(), "go", domain.QueryModeWeighted, page)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestPaginator_FirstTotalIsAuthoritative(t *testing.T) {
	f := newFixture(t, 10, false)
	f.putMany(t, "Tweet:", 12, "go")
	f.ready(t)
	session, err := f.search.NewSession("go", domain.QueryModeWeighted)
	require.NoError(t, err)

	first, err := f.search.Page(context.Background(), session, 1)
	require.NoError(t, err)
	f.putMany(t, "Spaces:", 15, "go")
	second, err := f.search.Page(context.Background(), session, 2)
	require.NoError(t, err)

	assert.Equal(t, 12, first.Total)
	assert.Equal(t, 12, second.Total)
	assert.Equal(t, 2, second.PageCount)
	assert.Equal(t, -1, second.NextOffset)
	total, ok := session.Total()
	assert.True(t, ok)
	assert.Equal(t, 12, total)
}

func TestPaginator_StrictTotalsRefresh(t *testing.T) {
	f := newFixture(t, 10, true)
	f.putMany(t, "Tweet:", 12, "go")
	f.ready(t)
	session, err := f.search.NewSession("go", domain.QueryModeWeighted)
	require.NoError(t, err)

	_, err = f.search.Page(context.Background(), session, 1)
	require.NoError(t, err)
	f.putMany(t, "Spaces:", 15, "go")
	second, err := f.search.Page(context.Background(), session, 2)
	require.NoError(t, err)

	assert.Equal(t, 27, second.Total)
	assert.Equal(t, 3, second.PageCount)
	assert.Equal(t, 20, second.NextOffset)
}

func TestPaginator_ExactMultiple(t *testing.T) {
	f := newFixture(t, 5, false)
	f.putMany(t, "Tweet:", 10, "go")
	f.ready(t)

	last, err := f.search.Search(context.Background(), "go", domain.QueryModeWeighted, 2)

	require.NoError(t, err)
	assert.Len(t, last.Items, 5)
	assert.Equal(t, 2, last.PageCount)
	assert.Equal(t, -1, last.NextOffset)
}

func TestNewPaginator_DefaultPageSize(t *testing.T) {
	assert.Equal(t, domain.DefaultPageSize, NewPaginator(nil, 0, false).PageSize())
}

func TestSearchService_SessionKeepsTotalAcrossWrites(t *testing.T) {
	f := newFixture(t, 10, false)
	f.putMany(t, "Tweet:", 15, "go")
	f.ready(t)
	ctx := context.Background()

	session, err := f.search.NewSession("go", domain.QueryModeWeighted)
	require.NoError(t, err)
	first, err := f.search.Page(ctx, session, 1)
	require.NoError(t, err)

	f.putMany(t, "Spaces:", 20, "go")
	second, err := f.search.Page(ctx, session, 2)
	require.NoError(t, err)

	assert.Equal(t, session.ID, first.SessionID)
	assert.Equal(t, session.ID, second.SessionID)
	assert.Equal(t, 15, second.Total)
	assert.Equal(t, 2, second.PageCount)
	assert.False(t, second.HasMore())

	// A fresh search is a new session and sees the new documents.
	fresh, err := f.search.Search(ctx, "go", domain.QueryModeWeighted, 2)
	require.NoError(t, err)
	assert.NotEqual(t, session.ID, fresh.SessionID)
	assert.Equal(t, 35, fresh.Total)
}
