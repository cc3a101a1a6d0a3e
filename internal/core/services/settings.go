package services

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
	"github.com/creativedestruction/searchdash/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyRedisAddr         = "redis.addr"
	keyRedisHost         = "redis.host"
	keyRedisPort         = "redis.port"
	keyRedisUsername     = "redis.username"
	keyRedisPassword     = "redis.password"
	keyRedisDB           = "redis.db"
	keyRedisDialTimeout  = "redis.dial_timeout"
	keyRedisReadTimeout  = "redis.read_timeout"
	keyRedisWriteTimeout = "redis.write_timeout"
	keyRedisCmdTimeout   = "redis.command_timeout"
	keyIndexName         = "index.name"
	keyIndexPolicy       = "index.policy"
	keyIndexReindexRate  = "index.reindex_rate"
	keyIndexScanCount    = "index.scan_count"
	keySearchMode        = "search.mode"
	keySearchPageSize    = "search.page_size"
	keySearchWithScores  = "search.with_scores"
	keySearchStrict      = "search.strict_totals"
	keyLogLevel          = "log.level"
	keyLogFormat         = "log.format"
	keySchemaFields      = "schema.fields"
	keySchemaPrefixes    = "schema.prefixes"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvRedisEndpoint = "REDIS_ENDPOINT"
	EnvRedisPort     = "REDIS_PORT"
	EnvRedisPassword = "REDIS_PASSWORD"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. Useful for testing.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	s.lookupEnv = lookup
}

// Get retrieves current application settings.
// Environment variables take precedence over the config file.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	addr, err := s.redisAddr(defaults.Redis.Addr)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		Redis: domain.RedisSettings{
			Addr:           addr,
			Username:       s.configStore.GetString(keyRedisUsername),
			Password:       s.getEnvOr(EnvRedisPassword, s.configStore.GetString(keyRedisPassword)),
			DB:             s.configStore.GetInt(keyRedisDB),
			DialTimeout:    s.getDuration(keyRedisDialTimeout, defaults.Redis.DialTimeout),
			ReadTimeout:    s.getDuration(keyRedisReadTimeout, defaults.Redis.ReadTimeout),
			WriteTimeout:   s.getDuration(keyRedisWriteTimeout, defaults.Redis.WriteTimeout),
			CommandTimeout: s.getDuration(keyRedisCmdTimeout, defaults.Redis.CommandTimeout),
		},
		Index: domain.IndexSettings{
			Name:        s.getString(keyIndexName, defaults.Index.Name),
			Policy:      s.getIndexPolicy(defaults.Index.Policy),
			ReindexRate: s.configStore.GetFloat(keyIndexReindexRate),
			ScanCount:   int64(s.getInt(keyIndexScanCount, int(defaults.Index.ScanCount))),
		},
		Search: domain.SearchSettings{
			Mode:         s.getQueryMode(defaults.Search.Mode),
			PageSize:     s.getInt(keySearchPageSize, defaults.Search.PageSize),
			WithScores:   s.getBool(keySearchWithScores, defaults.Search.WithScores),
			StrictTotals: s.getBool(keySearchStrict, defaults.Search.StrictTotals),
		},
		Log: domain.LogSettings{
			Level:  s.getString(keyLogLevel, defaults.Log.Level),
			Format: s.getString(keyLogFormat, defaults.Log.Format),
		},
	}

	schema, err := s.getSchema()
	if err != nil {
		return nil, err
	}
	settings.Schema = schema

	return settings, nil
}

// Save persists application settings. The schema is a deployment-time edit
// of the config file and is not written back.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyRedisAddr, settings.Redis.Addr},
		{keyRedisUsername, settings.Redis.Username},
		{keyRedisDB, settings.Redis.DB},
		{keyRedisDialTimeout, settings.Redis.DialTimeout.String()},
		{keyRedisReadTimeout, settings.Redis.ReadTimeout.String()},
		{keyRedisWriteTimeout, settings.Redis.WriteTimeout.String()},
		{keyRedisCmdTimeout, settings.Redis.CommandTimeout.String()},
		{keyIndexName, settings.Index.Name},
		{keyIndexPolicy, string(settings.Index.Policy)},
		{keyIndexReindexRate, settings.Index.ReindexRate},
		{keyIndexScanCount, settings.Index.ScanCount},
		{keySearchMode, settings.Search.Mode.String()},
		{keySearchPageSize, settings.Search.PageSize},
		{keySearchWithScores, settings.Search.WithScores},
		{keySearchStrict, settings.Search.StrictTotals},
		{keyLogLevel, settings.Log.Level},
		{keyLogFormat, settings.Log.Format},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if settings.Redis.Password != "" {
		if err := s.configStore.Set(keyRedisPassword, settings.Redis.Password); err != nil {
			return fmt.Errorf("save %s: %w", keyRedisPassword, err)
		}
	}
	return nil
}

// SetQueryMode updates the default query mode.
func (s *SettingsService) SetQueryMode(mode domain.QueryMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: unknown query mode %q", domain.ErrInvalidInput, mode)
	}
	return s.configStore.Set(keySearchMode, mode.String())
}

// SetIndexPolicy updates the startup index policy.
func (s *SettingsService) SetIndexPolicy(policy domain.IndexPolicy) error {
	if !policy.IsValid() {
		return fmt.Errorf("%w: unknown index policy %q", domain.ErrInvalidInput, policy)
	}
	return s.configStore.Set(keyIndexPolicy, string(policy))
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// redisAddr resolves host and port from redis.addr, redis.host, redis.port
// and then REDIS_ENDPOINT / REDIS_PORT, later sources winning.
func (s *SettingsService) redisAddr(defaultAddr string) (string, error) {
	addr := s.getString(keyRedisAddr, defaultAddr)
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q: %v", domain.ErrInvalidInput, keyRedisAddr, addr, err)
	}

	host = s.getString(keyRedisHost, host)
	if p := s.configStore.GetInt(keyRedisPort); p != 0 {
		port = strconv.Itoa(p)
	}

	host = s.getEnvOr(EnvRedisEndpoint, host)
	port = s.getEnvOr(EnvRedisPort, port)
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("%w: redis port %q", domain.ErrInvalidInput, port)
	}

	return net.JoinHostPort(host, port), nil
}

// getSchema reads [[schema.fields]] and [[schema.prefixes]].
// No fields means the built-in schema is used.
func (s *SettingsService) getSchema() (domain.Schema, error) {
	tables := s.configStore.GetTables(keySchemaFields)
	if len(tables) == 0 {
		return domain.Schema{}, nil
	}

	schema := domain.Schema{Fields: make([]domain.FieldSpec, 0, len(tables))}
	for _, t := range tables {
		name, _ := t["name"].(string)
		schema.Fields = append(schema.Fields, domain.FieldSpec{
			Name:   name,
			Weight: toFloat(t["weight"]),
			Type:   domain.FieldTypeText,
		})
	}

	prefixes := s.configStore.GetTables(keySchemaPrefixes)
	if len(prefixes) == 0 {
		schema.Prefixes = DefaultPrefixes()
	}
	for _, t := range prefixes {
		prefix, _ := t["prefix"].(string)
		shapeName, _ := t["shape"].(string)
		shape, err := domain.ParseShape(shapeName)
		if err != nil {
			return domain.Schema{}, fmt.Errorf("schema prefix %q: %w", prefix, err)
		}
		schema.Prefixes = append(schema.Prefixes, domain.PrefixBinding{Prefix: prefix, Shape: shape})
	}

	if err := schema.Validate(); err != nil {
		return domain.Schema{}, fmt.Errorf("schema: %w", err)
	}
	return schema, nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getEnvOr(name, fallback string) string {
	if s.lookupEnv == nil {
		return fallback
	}
	if val, ok := s.lookupEnv(name); ok && val != "" {
		return val
	}
	return fallback
}

func (s *SettingsService) getQueryMode(defaultVal domain.QueryMode) domain.QueryMode {
	val := s.configStore.GetString(keySearchMode)
	if val == "" {
		return defaultVal
	}
	mode := domain.QueryMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getIndexPolicy(defaultVal domain.IndexPolicy) domain.IndexPolicy {
	val := s.configStore.GetString(keyIndexPolicy)
	if val == "" {
		return defaultVal
	}
	policy := domain.IndexPolicy(val)
	if !policy.IsValid() {
		return defaultVal
	}
	return policy
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
