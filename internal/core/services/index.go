package services

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
	"github.com/creativedestruction/searchdash/internal/core/ports/driving"
	"github.com/creativedestruction/searchdash/internal/logger"
)

// Ensure IndexManager implements the interface.
var _ driving.IndexService = (*IndexManager)(nil)

// IndexManager keeps exactly one index matching the schema registry.
// A schema change is applied by dropping and recreating the index,
// never by altering it field by field.
type IndexManager struct {
	store     driven.SearchStore
	registry  *SchemaRegistry
	reindexer *Reindexer
	name      string
	policy    domain.IndexPolicy
	ready     atomic.Bool
}

// NewIndexManager creates an index manager for the index named in settings.
func NewIndexManager(
	store driven.SearchStore,
	registry *SchemaRegistry,
	reindexer *Reindexer,
	settings domain.IndexSettings,
) *IndexManager {
	name := settings.Name
	if name == "" {
		name = domain.DefaultIndexName
	}
	policy := settings.Policy
	if !policy.IsValid() {
		policy = domain.IndexPolicyReuse
	}
	return &IndexManager{
		store:     store,
		registry:  registry,
		reindexer: reindexer,
		name:      name,
		policy:    policy,
	}
}

// Name returns the managed index name.
func (m *IndexManager) Name() string {
	return m.name
}

// Ready returns true once EnsureIndexReady or CheckIndexReady has succeeded.
func (m *IndexManager) Ready() bool {
	return m.ready.Load()
}

// EnsureIndexReady ensures the index for the registry's schema.
func (m *IndexManager) EnsureIndexReady(ctx context.Context) (domain.IndexStatus, error) {
	status, err := m.EnsureIndex(ctx, m.registry.Describe())
	if err != nil {
		return status, err
	}
	m.ready.Store(true)
	return status, nil
}

// CheckIndexReady is the fast path for callers that trust the store to be
// indexed already. A missing or mismatched index is an error; nothing is
// created and no document is re-written.
func (m *IndexManager) CheckIndexReady(ctx context.Context) (domain.IndexStatus, error) {
	info, err := m.Info(ctx)
	if err != nil {
		return domain.IndexStatus{}, err
	}
	if !info.Matches(m.registry.Describe()) {
		return domain.IndexStatus{}, &domain.IndexError{Kind: domain.IndexSchemaMismatch, Index: m.name}
	}
	m.ready.Store(true)
	return domain.IndexStatus{Outcome: domain.IndexOutcomeAlreadyExists}, nil
}

// EnsureIndex makes the index match schema and then reindexes every document
// under the schema's prefixes. The reindex runs on every path, including when
// the index already existed, because documents written before the index was
// created are not picked up by creation alone.
//
// A missing index when describing it and a concurrent creator winning the race
// are normal outcomes. Any other store failure is returned without retrying.
func (m *IndexManager) EnsureIndex(ctx context.Context, schema domain.Schema) (domain.IndexStatus, error) {
	logger.Section("Index Lifecycle")
	logger.Debug("Index: %s, policy: %s", m.name, m.policy)

	if err := schema.Validate(); err != nil {
		return domain.IndexStatus{}, &domain.IndexError{Kind: domain.IndexCreateFailed, Index: m.name, Err: err}
	}

	var status domain.IndexStatus
	info, err := m.store.DescribeIndex(ctx, m.name)
	switch {
	case err == nil:
		switch {
		case m.policy == domain.IndexPolicyForceFresh:
			logger.Info("Policy %s: recreating index %s", m.policy, m.name)
			if err := m.recreate(ctx, schema); err != nil {
				return status, err
			}
			status.Outcome = domain.IndexOutcomeRecreated

		case info.Matches(schema):
			logger.Info("Index %s already exists", m.name)
			status.Outcome = domain.IndexOutcomeAlreadyExists

		default:
			logger.Warn("%v: recreating", &domain.IndexError{Kind: domain.IndexSchemaMismatch, Index: m.name})
			if err := m.recreate(ctx, schema); err != nil {
				return status, err
			}
			status.Outcome = domain.IndexOutcomeRecreated
		}

	case errors.Is(err, domain.ErrIndexNotFound):
		logger.Debug("Index %s not found, creating", m.name)
		if err := m.create(ctx, schema); err != nil {
			return status, err
		}
		status.Outcome = domain.IndexOutcomeCreated

	default:
		return status, &domain.IndexError{Kind: domain.IndexProbeFailed, Index: m.name, Err: err}
	}

	res := m.reindexer.Reindex(ctx, schema.PrefixList())
	status.Reindexed = res.Touched
	status.ReindexFailed = res.Failed
	return status, nil
}

func (m *IndexManager) recreate(ctx context.Context, schema domain.Schema) error {
	if err := m.drop(ctx); err != nil {
		return err
	}
	return m.create(ctx, schema)
}

// create tolerates losing a creation race to another process.
func (m *IndexManager) create(ctx context.Context, schema domain.Schema) error {
	err := m.store.CreateIndex(ctx, domain.IndexDefinition{Name: m.name, Schema: schema})
	if err == nil {
		logger.Info("Index %s created", m.name)
		return nil
	}
	if errors.Is(err, domain.ErrIndexExists) {
		logger.Info("Index %s was created concurrently", m.name)
		return nil
	}
	return &domain.IndexError{Kind: domain.IndexCreateFailed, Index: m.name, Err: err}
}

// drop tolerates an index that is already gone.
func (m *IndexManager) drop(ctx context.Context) error {
	err := m.store.DropIndex(ctx, m.name)
	if err == nil || errors.Is(err, domain.ErrIndexNotFound) {
		return nil
	}
	return &domain.IndexError{Kind: domain.IndexDropFailed, Index: m.name, Err: err}
}

// Info describes the live index.
func (m *IndexManager) Info(ctx context.Context) (*domain.IndexInfo, error) {
	info, err := m.store.DescribeIndex(ctx, m.name)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotFound) {
			return nil, &domain.IndexError{Kind: domain.IndexNotFound, Index: m.name, Err: err}
		}
		return nil, &domain.IndexError{Kind: domain.IndexProbeFailed, Index: m.name, Err: err}
	}
	return info, nil
}

// Reindex re-writes every document under the registry's prefixes without
// touching the index definition.
func (m *IndexManager) Reindex(ctx context.Context) (domain.IndexStatus, error) {
	if _, err := m.Info(ctx); err != nil {
		return domain.IndexStatus{}, err
	}
	res := m.reindexer.Reindex(ctx, m.registry.Describe().PrefixList())
	return domain.IndexStatus{
		Outcome:       domain.IndexOutcomeAlreadyExists,
		Reindexed:     res.Touched,
		ReindexFailed: res.Failed,
	}, nil
}

// Drop removes the index definition. Unlike startup, a missing index is reported.
func (m *IndexManager) Drop(ctx context.Context) error {
	m.ready.Store(false)
	err := m.store.DropIndex(ctx, m.name)
	switch {
	case err == nil:
		logger.Info("Index %s dropped", m.name)
		return nil
	case errors.Is(err, domain.ErrIndexNotFound):
		return &domain.IndexError{Kind: domain.IndexNotFound, Index: m.name, Err: err}
	default:
		return &domain.IndexError{Kind: domain.IndexDropFailed, Index: m.name, Err: err}
	}
}
