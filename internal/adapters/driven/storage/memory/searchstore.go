package memory

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
)

// Ensure SearchStore implements the interface.
var _ driven.SearchStore = (*SearchStore)(nil)

// Op names a SearchStore operation for fault injection and call counting.
type Op string

// Store operations.
const (
	OpDescribe Op = "describe"
	OpCreate   Op = "create"
	OpDrop     Op = "drop"
	OpScan     Op = "scan"
	OpRead     Op = "read"
	OpWrite    Op = "write"
	OpSearch   Op = "search"
	OpStats    Op = "stats"
)

const (
	sampleKeyCount   = 5
	defaultScanBatch = 100
)

type memIndex struct {
	def     domain.IndexDefinition
	indexed map[string]bool
}

// SearchStore is an in-memory implementation of driven.SearchStore.
// Documents written before an index exists are not visible to it until
// they are written again.
type SearchStore struct {
	mu      sync.RWMutex
	docs    map[string]map[string]string
	order   []string
	indexes map[string]*memIndex

	faults    map[Op]error
	keyFaults map[Op]map[string]error
	calls     map[Op]int
	closed    bool
	scanBatch int
}

// NewSearchStore creates an empty in-memory search store.
func NewSearchStore() *SearchStore {
	return &SearchStore{
		docs:      make(map[string]map[string]string),
		indexes:   make(map[string]*memIndex),
		faults:    make(map[Op]error),
		keyFaults: make(map[Op]map[string]error),
		calls:     make(map[Op]int),
		scanBatch: defaultScanBatch,
	}
}

// SetScanBatch changes how many keys each ScanKeys batch carries.
func (s *SearchStore) SetScanBatch(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.scanBatch = n
	}
}

// Fail makes every call to op return err. A nil err clears the fault.
func (s *SearchStore) Fail(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// FailKey makes calls touching a single key return err.
func (s *SearchStore) FailKey(op Op, key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyFaults[op] == nil {
		s.keyFaults[op] = make(map[string]error)
	}
	if err == nil {
		delete(s.keyFaults[op], key)
		return
	}
	s.keyFaults[op][key] = err
}

// Calls returns how many times op was invoked.
func (s *SearchStore) Calls(op Op) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// Delete removes a document and drops it from every index.
func (s *SearchStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[key]; !ok {
		return
	}
	delete(s.docs, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	for _, idx := range s.indexes {
		delete(idx.indexed, key)
	}
}

// begin records the call and returns any injected fault. Caller holds mu.
func (s *SearchStore) begin(ctx context.Context, op Op, key string) error {
	s.calls[op]++
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", domain.ErrStoreTimeout, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrConnectionLost, err)
	}
	if s.closed {
		return fmt.Errorf("%w: store closed", domain.ErrConnectionLost)
	}
	if err := s.faults[op]; err != nil {
		return err
	}
	if key != "" {
		if err := s.keyFaults[op][key]; err != nil {
			return err
		}
	}
	return nil
}

// DescribeIndex reports the definition of an existing index.
func (s *SearchStore) DescribeIndex(ctx context.Context, name string) (*domain.IndexInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpDescribe, ""); err != nil {
		return nil, err
	}

	idx, ok := s.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrIndexNotFound)
	}
	schema := idx.def.Schema
	return &domain.IndexInfo{
		Name:     name,
		Fields:   append([]domain.FieldSpec(nil), schema.Fields...),
		Prefixes: schema.PrefixList(),
		NumDocs:  len(idx.indexed),
		Raw:      map[string]string{"index_name": name},
	}, nil
}

// CreateIndex creates an index. Existing documents are not backfilled.
func (s *SearchStore) CreateIndex(ctx context.Context, def domain.IndexDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpCreate, ""); err != nil {
		return err
	}

	if _, ok := s.indexes[def.Name]; ok {
		return fmt.Errorf("%s: %w", def.Name, domain.ErrIndexExists)
	}
	s.indexes[def.Name] = &memIndex{
		def:     domain.IndexDefinition{Name: def.Name, Schema: def.Schema.Clone()},
		indexed: make(map[string]bool),
	}
	return nil
}

// DropIndex removes the index and keeps its documents.
func (s *SearchStore) DropIndex(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpDrop, ""); err != nil {
		return err
	}

	if _, ok := s.indexes[name]; !ok {
		return fmt.Errorf("%s: %w", name, domain.ErrIndexNotFound)
	}
	delete(s.indexes, name)
	return nil
}

// ScanKeys hands the keys starting with prefix to fn in write order.
// Every batch counts as one scan call, and a FailKey(OpScan, key) fault
// fails the batch that would carry key.
func (s *SearchStore) ScanKeys(ctx context.Context, prefix string, fn func(keys []string) error) error {
	s.mu.RLock()
	var keys []string
	for _, k := range s.order {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	size := s.scanBatch
	s.mu.RUnlock()

	if len(keys) == 0 {
		return s.beginScan(ctx, nil)
	}
	for start := 0; start < len(keys); start += size {
		batch := keys[start:min(start+size, len(keys))]
		if err := s.beginScan(ctx, batch); err != nil {
			return err
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}

func (s *SearchStore) beginScan(ctx context.Context, batch []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpScan, ""); err != nil {
		return err
	}
	for _, k := range batch {
		if err := s.keyFaults[OpScan][k]; err != nil {
			return err
		}
	}
	return nil
}

// ReadDocument returns a copy of the hash stored at key.
func (s *SearchStore) ReadDocument(ctx context.Context, key string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpRead, key); err != nil {
		return nil, err
	}

	fields, ok := s.docs[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	return &domain.Document{Key: key, Fields: copyFields(fields)}, nil
}

// WriteDocument merges the fields into the hash at key and indexes it
// into every index whose prefixes cover the key.
func (s *SearchStore) WriteDocument(ctx context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpWrite, doc.Key); err != nil {
		return err
	}
	if doc.Key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInput)
	}

	existing, ok := s.docs[doc.Key]
	if !ok {
		existing = make(map[string]string, len(doc.Fields))
		s.docs[doc.Key] = existing
		s.order = append(s.order, doc.Key)
	}
	for k, v := range doc.Fields {
		existing[k] = v
	}

	for _, idx := range s.indexes {
		if covers(idx.def.Schema, doc.Key) {
			idx.indexed[doc.Key] = true
		}
	}
	return nil
}

// Search evaluates the compiled expression against the index.
// Hits are ordered by descending score, ties in write order.
func (s *SearchStore) Search(ctx context.Context, index string, q domain.CompiledQuery) (*driven.SearchReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpSearch, ""); err != nil {
		return nil, err
	}

	idx, ok := s.indexes[index]
	if !ok {
		return nil, fmt.Errorf("%s: %w", index, domain.ErrIndexNotFound)
	}
	expr, err := parseQuery(q.Expression, idx.def.Schema)
	if err != nil {
		return nil, err
	}

	type match struct {
		key   string
		score float64
	}
	var matches []match
	for _, key := range s.order {
		if !idx.indexed[key] {
			continue
		}
		if ok, score := expr.eval(s.docs[key], idx.def.Schema.Fields); ok {
			matches = append(matches, match{key: key, score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	reply := &driven.SearchReply{Total: len(matches)}
	start := min(max(q.Offset, 0), len(matches))
	end := len(matches)
	if q.Limit >= 0 {
		end = min(start+q.Limit, len(matches))
	}
	for _, m := range matches[start:end] {
		hit := driven.SearchHit{Key: m.key}
		if q.WithScores {
			hit.Score = m.score
		}
		if !q.NoContent {
			hit.Fields = copyFields(s.docs[m.key])
		}
		reply.Hits = append(reply.Hits, hit)
	}
	return reply, nil
}

// Stats returns a snapshot of the store.
func (s *SearchStore) Stats(ctx context.Context) (*domain.StoreStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpStats, ""); err != nil {
		return nil, err
	}

	stats := &domain.StoreStats{Keys: int64(len(s.order))}
	stats.SampleKeys = append([]string(nil), s.order[:min(sampleKeyCount, len(s.order))]...)
	if len(s.order) > 0 {
		stats.RandomKey = s.order[rand.Intn(len(s.order))]
		stats.RandomDocument = copyFields(s.docs[stats.RandomKey])
	}
	return stats, nil
}

// Close marks the store closed; later calls report a lost connection.
func (s *SearchStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func covers(schema domain.Schema, key string) bool {
	for _, p := range schema.Prefixes {
		if strings.HasPrefix(key, p.Prefix) {
			return true
		}
	}
	return false
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
