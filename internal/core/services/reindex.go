package services

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
	"github.com/creativedestruction/searchdash/internal/logger"
)

// ReindexResult counts the documents touched by a reindex pass.
type ReindexResult struct {
	Touched int
	Failed  int
}

// Err returns an IngestError if any document failed, else nil.
func (r ReindexResult) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return &domain.IngestError{Failed: r.Failed, Touched: r.Touched}
}

// Reindexer re-writes stored documents unchanged so the store's
// write-triggered indexing picks them up.
type Reindexer struct {
	store   driven.SearchStore
	limiter *rate.Limiter
}

// NewReindexer creates a reindexer. writesPerSecond caps the write rate;
// zero or less means unlimited.
func NewReindexer(store driven.SearchStore, writesPerSecond float64) *Reindexer {
	r := &Reindexer{store: store}
	if writesPerSecond > 0 {
		burst := int(writesPerSecond)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(writesPerSecond), burst)
	}
	return r
}

// Reindex touches every document under the given prefixes and returns how
// many were re-written. Individual failures are logged and counted; they
// never abort the pass. Only context cancellation stops it early.
func (r *Reindexer) Reindex(ctx context.Context, prefixes []string) ReindexResult {
	logger.Section("Reindex")

	var res ReindexResult
	for _, prefix := range prefixes {
		if ctx.Err() != nil {
			break
		}

		scanned := 0
		err := r.store.ScanKeys(ctx, prefix, func(keys []string) error {
			scanned += len(keys)
			for _, key := range keys {
				if err := ctx.Err(); err != nil {
					return err
				}
				r.reindexKey(ctx, key, &res)
			}
			return nil
		})
		if err != nil {
			// Keys handed over before the failure are already reindexed.
			if ctx.Err() == nil {
				logger.WithFields(logger.Fields{"prefix": prefix, "scanned": scanned}).Warnf("enumerate keys: %v", err)
			}
			continue
		}
		logger.Debug("Prefix %q: %d keys", prefix, scanned)
	}

	if err := res.Err(); err != nil {
		logger.Warn("%v", err)
	}
	logger.Info("Reindexed %d documents", res.Touched)
	return res
}

func (r *Reindexer) reindexKey(ctx context.Context, key string, res *ReindexResult) {
	err := r.touch(ctx, key)
	switch {
	case err == nil:
		res.Touched++
	case errors.Is(err, domain.ErrNotFound):
		// Deleted between scan and read.
		logger.Debug("Key %s vanished during reindex", key)
	default:
		res.Failed++
		logger.WithFields(logger.Fields{"key": key}).Warnf("reindex document: %v", err)
	}
}

func (r *Reindexer) touch(ctx context.Context, key string) error {
	doc, err := r.store.ReadDocument(ctx, key)
	if err != nil {
		return err
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return r.store.WriteDocument(ctx, *doc)
}
