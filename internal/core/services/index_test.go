package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativedestruction/searchdash/internal/adapters/driven/storage/memory"
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

func requireIndexErr(t *testing.T, err error, kind domain.IndexErrorKind) {
	t.Helper()
	var ierr *domain.IndexError
	require.True(t, errors.As(err, &ierr), "expected *domain.IndexError, got %v", err)
	assert.Equal(t, kind, ierr.Kind)
}

func TestIndexManager_Defaults(t *testing.T) {
	store := memory.NewSearchStore()
	m := NewIndexManager(store, NewDefaultSchemaRegistry(), NewReindexer(store, 0), domain.IndexSettings{})

	assert.Equal(t, domain.DefaultIndexName, m.Name())
	assert.False(t, m.Ready())
}

func TestIndexManager_EnsureIndex_CreatesThenReuses(t *testing.T) {
	f := newFixture(t, 10, false)

	first := f.ready(t)
	second := f.ready(t)

	assert.Equal(t, domain.IndexOutcomeCreated, first.Outcome)
	assert.Equal(t, domain.IndexOutcomeAlreadyExists, second.Outcome)
	assert.Equal(t, 1, f.store.Calls(memory.OpCreate))
	assert.Zero(t, f.store.Calls(memory.OpDrop))
	assert.True(t, f.index.Ready())
}

func TestIndexManager_EnsureIndex_ZeroDocuments(t *testing.T) {
	f := newFixture(t, 10, false)

	status := f.ready(t)

	assert.Equal(t, domain.IndexOutcomeCreated, status.Outcome)
	assert.Zero(t, status.Reindexed)
	assert.Zero(t, status.ReindexFailed)
}

func TestIndexManager_EnsureIndex_ReindexesExistingDocuments(t *testing.T) {
	f := newFixture(t, 10, false)
	f.put(t, "Tweet:1", map[string]string{"content": "go"})
	f.put(t, "Spaces:1", map[string]string{"title": "go"})
	f.put(t, "Other:1", map[string]string{"content": "go"})

	status := f.ready(t)
	assert.Equal(t, 2, status.Reindexed)

	info, err := f.index.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, info.NumDocs)

	page, err := f.search.Search(context.Background(), "go", domain.QueryModeRaw, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestIndexManager_EnsureIndex_ReindexesOnReuse(t *testing.T) {
	f := newFixture(t, 10, false)
	f.ready(t)

	require.NoError(t, f.store.DropIndex(context.Background(), "idx:test"))
	require.NoError(t, f.store.CreateIndex(context.Background(), domain.IndexDefinition{Name: "idx:test", Schema: testSchema()}))
	f.put(t, "Tweet:1", map[string]string{"content": "go"})

	status := f.ready(t)

	assert.Equal(t, domain.IndexOutcomeAlreadyExists, status.Outcome)
	assert.Equal(t, 1, status.Reindexed)
}

func TestIndexManager_EnsureIndex_ForceFresh(t *testing.T) {
	store := memory.NewSearchStore()
	registry, err := NewSchemaRegistry(testSchema())
	require.NoError(t, err)
	require.NoError(t, store.CreateIndex(context.Background(), domain.IndexDefinition{Name: "idx", Schema: testSchema()}))

	m := NewIndexManager(store, registry, NewReindexer(store, 0), domain.IndexSettings{
		Name:   "idx",
		Policy: domain.IndexPolicyForceFresh,
	})
	status, err := m.EnsureIndexReady(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.IndexOutcomeRecreated, status.Outcome)
	assert.Equal(t, 1, store.Calls(memory.OpDrop))
	assert.Equal(t, 2, store.Calls(memory.OpCreate))
}

func TestIndexManager_EnsureIndex_SchemaMismatchRecreates(t *testing.T) {
	f := newFixture(t, 10, false)
	stale := testSchema()
	stale.Fields[0].Weight = 1
	require.NoError(t, f.store.CreateIndex(context.Background(), domain.IndexDefinition{Name: "idx:test", Schema: stale}))

	status := f.ready(t)

	assert.Equal(t, domain.IndexOutcomeRecreated, status.Outcome)
	info, err := f.index.Info(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Matches(testSchema()))
}

func TestIndexManager_EnsureIndex_LostCreationRace(t *testing.T) {
	f := newFixture(t, 10, false)
	f.store.Fail(memory.OpCreate, fmt.Errorf("Index already exists: %w", domain.ErrIndexExists))

	status, err := f.index.EnsureIndexReady(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.IndexOutcomeCreated, status.Outcome)
	assert.True(t, f.index.Ready())
}

func TestIndexManager_EnsureIndex_Failures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		op   memory.Op
		err  error
		kind domain.IndexErrorKind
	}{
		{"probe", memory.OpDescribe, domain.ErrConnectionLost, domain.IndexProbeFailed},
		{"probe unauthorized", memory.OpDescribe, domain.ErrUnauthorized, domain.IndexProbeFailed},
		{"create", memory.OpCreate, boom, domain.IndexCreateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 10, false)
			f.store.Fail(tt.op, tt.err)

			_, err := f.index.EnsureIndexReady(context.Background())

			requireIndexErr(t, err, tt.kind)
			assert.ErrorIs(t, err, tt.err)
			assert.False(t, f.index.Ready())
		})
	}
}

func TestIndexManager_EnsureIndex_DropFailure(t *testing.T) {
	f := newFixture(t, 10, false)
	stale := testSchema()
	stale.Fields = stale.Fields[:1]
	require.NoError(t, f.store.CreateIndex(context.Background(), domain.IndexDefinition{Name: "idx:test", Schema: stale}))
	f.store.Fail(memory.OpDrop, domain.ErrStoreTimeout)

	_, err := f.index.EnsureIndexReady(context.Background())

	requireIndexErr(t, err, domain.IndexDropFailed)
}

func TestIndexManager_EnsureIndex_InvalidSchema(t *testing.T) {
	f := newFixture(t, 10, false)
	bad := testSchema()
	bad.Fields = append(bad.Fields, domain.FieldSpec{Name: "content", Weight: 1})

	_, err := f.index.EnsureIndex(context.Background(), bad)

	requireIndexErr(t, err, domain.IndexCreateFailed)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.store.Calls(memory.OpDescribe))
}

func TestIndexManager_Info_Missing(t *testing.T) {
	f := newFixture(t, 10, false)

	_, err := f.index.Info(context.Background())

	requireIndexErr(t, err, domain.IndexNotFound)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestIndexManager_CheckIndexReady(t *testing.T) {
	f := newFixture(t, 10, false)
	ctx := context.Background()

	_, err := f.index.CheckIndexReady(ctx)
	requireIndexErr(t, err, domain.IndexNotFound)
	assert.False(t, f.index.Ready())
	assert.Zero(t, f.store.Calls(memory.OpCreate))

	stale := testSchema()
	stale.Fields[0].Weight = 1
	require.NoError(t, f.store.CreateIndex(ctx, domain.IndexDefinition{Name: "idx:test", Schema: stale}))
	_, err = f.index.CheckIndexReady(ctx)
	requireIndexErr(t, err, domain.IndexSchemaMismatch)
	assert.False(t, f.index.Ready())

	require.NoError(t, f.store.DropIndex(ctx, "idx:test"))
	require.NoError(t, f.store.CreateIndex(ctx, domain.IndexDefinition{Name: "idx:test", Schema: testSchema()}))
	f.putMany(t, "Tweet:", 2, "go")
	writes := f.store.Calls(memory.OpWrite)

	status, err := f.index.CheckIndexReady(ctx)

	require.NoError(t, err)
	assert.Equal(t, domain.IndexOutcomeAlreadyExists, status.Outcome)
	assert.Zero(t, status.Reindexed)
	assert.True(t, f.index.Ready())
	assert.Equal(t, writes, f.store.Calls(memory.OpWrite))
	assert.Zero(t, f.store.Calls(memory.OpScan))
}

func TestIndexManager_Reindex(t *testing.T) {
	f := newFixture(t, 10, false)
	f.ready(t)
	require.NoError(t, f.store.DropIndex(context.Background(), "idx:test"))

	_, err := f.index.Reindex(context.Background())
	requireIndexErr(t, err, domain.IndexNotFound)

	require.NoError(t, f.store.CreateIndex(context.Background(), domain.IndexDefinition{Name: "idx:test", Schema: testSchema()}))
	f.putMany(t, "Tweet:", 3, "go")
	status, err := f.index.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, status.Reindexed)
}

func TestIndexManager_Drop(t *testing.T) {
	f := newFixture(t, 10, false)
	f.ready(t)

	require.NoError(t, f.index.Drop(context.Background()))
	assert.False(t, f.index.Ready())

	err := f.index.Drop(context.Background())
	requireIndexErr(t, err, domain.IndexNotFound)

	_, err = f.search.Search(context.Background(), "go", domain.QueryModeRaw, 1)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}
