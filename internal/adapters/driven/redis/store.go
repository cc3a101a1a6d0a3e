package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
	"github.com/creativedestruction/searchdash/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.SearchStore = (*Store)(nil)

const (
	defaultScanCount = 500
	sampleKeyCount   = 5
)

// Options tune a Store.
type Options struct {
	// CommandTimeout bounds every command. Zero leaves only the caller's deadline.
	CommandTimeout time.Duration

	// ScanCount is the COUNT hint passed to SCAN.
	ScanCount int64
}

// Store is a RediSearch-backed driven.SearchStore.
type Store struct {
	client  goredis.UniversalClient
	timeout time.Duration
	count   int64
}

// NewStore wraps an existing client.
func NewStore(client goredis.UniversalClient, opts Options) *Store {
	count := opts.ScanCount
	if count <= 0 {
		count = defaultScanCount
	}
	return &Store{
		client:  client,
		timeout: opts.CommandTimeout,
		count:   count,
	}
}

// SetScanCount changes the SCAN COUNT hint.
func (s *Store) SetScanCount(count int64) {
	if count > 0 {
		s.count = count
	}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) do(ctx context.Context, args ...any) (any, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	res, err := s.client.Do(ctx, args...).Result()
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

// DescribeIndex runs FT.INFO.
func (s *Store) DescribeIndex(ctx context.Context, name string) (*domain.IndexInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.FTInfo(ctx, name).Result()
	if err != nil {
		return nil, fmt.Errorf("FT.INFO %s: %w", name, mapError(err))
	}
	return indexInfo(name, res), nil
}

// CreateIndex runs FT.CREATE over HASH documents under the schema's prefixes.
func (s *Store) CreateIndex(ctx context.Context, def domain.IndexDefinition) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts, schema := createOptions(def)
	logger.Debug("FT.CREATE %s ON HASH PREFIX %v (%d fields)", def.Name, def.Schema.PrefixList(), len(schema))
	if err := s.client.FTCreate(ctx, def.Name, opts, schema...).Err(); err != nil {
		return fmt.Errorf("FT.CREATE %s: %w", def.Name, mapError(err))
	}
	return nil
}

// DropIndex runs FT.DROPINDEX without DD, so documents are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.FTDropIndex(ctx, name).Err(); err != nil {
		return fmt.Errorf("FT.DROPINDEX %s: %w", name, mapError(err))
	}
	return nil
}

// ScanKeys walks SCAN MATCH prefix* one cursor page at a time. Each SCAN
// call gets its own command timeout, and every page is handed to fn before
// the next one is requested. SCAN may report a key more than once;
// duplicates are dropped.
func (s *Store) ScanKeys(ctx context.Context, prefix string, fn func(keys []string) error) error {
	match := escapeGlob(prefix) + "*"
	seen := make(map[string]bool)

	var cursor uint64
	for {
		page, next, err := s.scanPage(ctx, cursor, match)
		if err != nil {
			return fmt.Errorf("SCAN %s*: %w", prefix, err)
		}

		fresh := make([]string, 0, len(page))
		for _, key := range page {
			if !seen[key] {
				seen[key] = true
				fresh = append(fresh, key)
			}
		}
		if len(fresh) > 0 {
			if err := fn(fresh); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *Store) scanPage(ctx context.Context, cursor uint64, match string) ([]string, uint64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	keys, next, err := s.client.Scan(ctx, cursor, match, s.count).Result()
	if err != nil {
		return nil, 0, mapError(err)
	}
	return keys, next, nil
}

// ReadDocument runs HGETALL. An empty hash means the key is gone.
func (s *Store) ReadDocument(ctx context.Context, key string) (*domain.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("HGETALL %s: %w", key, mapError(err))
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	return &domain.Document{Key: key, Fields: fields}, nil
}

// WriteDocument runs HSET with every field of the document.
func (s *Store) WriteDocument(ctx context.Context, doc domain.Document) error {
	if doc.Key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInput)
	}
	if len(doc.Fields) == 0 {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	values := make([]any, 0, 2*len(doc.Fields))
	for k, v := range doc.Fields {
		values = append(values, k, v)
	}
	if err := s.client.HSet(ctx, doc.Key, values...).Err(); err != nil {
		return fmt.Errorf("HSET %s: %w", doc.Key, mapError(err))
	}
	return nil
}

// Search runs FT.SEARCH with the query's window and options.
func (s *Store) Search(ctx context.Context, index string, q domain.CompiledQuery) (*driven.SearchReply, error) {
	args := searchArgs(index, q)
	logger.Debug("%s", formatCommand(args))

	reply, err := s.do(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("FT.SEARCH %s: %w", index, err)
	}
	return parseSearchReply(reply, q.WithScores, q.NoContent)
}

// Stats collects DBSIZE, one SCAN page, RANDOMKEY and that key's hash.
func (s *Store) Stats(ctx context.Context) (*domain.StoreStats, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stats := &domain.StoreStats{}

	size, err := s.client.DBSize(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("DBSIZE: %w", mapError(err))
	}
	stats.Keys = size

	sample, _, err := s.client.Scan(ctx, 0, "", sampleKeyCount).Result()
	if err != nil {
		return nil, fmt.Errorf("SCAN: %w", mapError(err))
	}
	if len(sample) > sampleKeyCount {
		sample = sample[:sampleKeyCount]
	}
	stats.SampleKeys = sample

	key, err := s.client.RandomKey(ctx).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		return stats, nil
	case err != nil:
		return nil, fmt.Errorf("RANDOMKEY: %w", mapError(err))
	}
	stats.RandomKey = key

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		// Not every key is a hash.
		logger.Debug("HGETALL %s: %v", key, err)
		return stats, nil
	}
	stats.RandomDocument = fields
	return stats, nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob quotes the SCAN MATCH metacharacters in a literal prefix.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

func formatCommand(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = toString(a)
		if parts[i] == "" || strings.ContainsAny(parts[i], " \t") {
			parts[i] = fmt.Sprintf("%q", parts[i])
		}
	}
	return strings.Join(parts, " ")
}
