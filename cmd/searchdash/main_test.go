package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativedestruction/searchdash/internal/adapters/driving/cli"
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

func TestBootstrap_Offline(t *testing.T) {
	svc, err := bootstrap(context.Background(), cli.Options{ConfigDir: t.TempDir(), Offline: true})

	require.NoError(t, err)
	assert.NotNil(t, svc.Settings)
	assert.Nil(t, svc.Search)
	assert.Nil(t, svc.Close)
}

func TestBootstrap_MemorySearch(t *testing.T) {
	ctx := context.Background()
	svc, err := bootstrap(ctx, cli.Options{ConfigDir: t.TempDir(), Memory: true})
	require.NoError(t, err)
	defer svc.Close()

	status, err := svc.Index.EnsureIndexReady(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexOutcomeCreated, status.Outcome)
	assert.Equal(t, len(demoDocuments), status.Reindexed)

	page, err := svc.Search.Search(ctx, "grace", domain.QueryModeWeighted, 1)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	page, err = svc.Search.Search(ctx, "compilers", domain.QueryModeFuzzy, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	stats, err := svc.Stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(demoDocuments)), stats.Keys)
}
