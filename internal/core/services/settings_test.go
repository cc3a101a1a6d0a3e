package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativedestruction/searchdash/internal/adapters/driven/storage/memory"
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func newSettings(store *memory.ConfigStore, lookup func(string) (string, bool)) *SettingsService {
	service := NewSettingsService(store)
	service.SetEnvLookup(lookup)
	return service
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := newSettings(memory.NewConfigStore(), noEnv)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Redis.Addr, settings.Redis.Addr)
	assert.Equal(t, defaults.Redis.CommandTimeout, settings.Redis.CommandTimeout)
	assert.Equal(t, defaults.Index.Name, settings.Index.Name)
	assert.Equal(t, defaults.Index.Policy, settings.Index.Policy)
	assert.Equal(t, defaults.Search.Mode, settings.Search.Mode)
	assert.Equal(t, defaults.Search.PageSize, settings.Search.PageSize)
	assert.True(t, settings.Search.WithScores)
	assert.False(t, settings.Search.StrictTotals)
	assert.Empty(t, settings.Schema.Fields)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("redis.addr", "redis.internal:6380")
	_ = store.Set("redis.db", 2)
	_ = store.Set("redis.command_timeout", "750ms")
	_ = store.Set("index.name", "idx:custom")
	_ = store.Set("index.policy", "force-fresh")
	_ = store.Set("index.reindex_rate", 250.0)
	_ = store.Set("search.mode", "fuzzy")
	_ = store.Set("search.page_size", 25)
	_ = store.Set("search.with_scores", false)
	_ = store.Set("search.strict_totals", true)
	_ = store.Set("log.level", "debug")

	settings, err := newSettings(store, noEnv).Get()

	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", settings.Redis.Addr)
	assert.Equal(t, 2, settings.Redis.DB)
	assert.Equal(t, 750*time.Millisecond, settings.Redis.CommandTimeout)
	assert.Equal(t, "idx:custom", settings.Index.Name)
	assert.Equal(t, domain.IndexPolicyForceFresh, settings.Index.Policy)
	assert.Equal(t, 250.0, settings.Index.ReindexRate)
	assert.Equal(t, domain.QueryModeFuzzy, settings.Search.Mode)
	assert.Equal(t, 25, settings.Search.PageSize)
	assert.False(t, settings.Search.WithScores)
	assert.True(t, settings.Search.StrictTotals)
	assert.Equal(t, "debug", settings.Log.Level)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("search.mode", "semantic")
	_ = store.Set("index.policy", "sometimes")

	settings, err := newSettings(store, noEnv).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.QueryModeWeighted, settings.Search.Mode)
	assert.Equal(t, domain.IndexPolicyReuse, settings.Index.Policy)
}

func TestSettingsService_Get_HostAndPortKeys(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("redis.host", "cache")
	_ = store.Set("redis.port", 7000)

	settings, err := newSettings(store, noEnv).Get()

	require.NoError(t, err)
	assert.Equal(t, "cache:7000", settings.Redis.Addr)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("redis.addr", "file-host:6379")
	_ = store.Set("redis.password", "from-file")

	settings, err := newSettings(store, envMap(map[string]string{
		EnvRedisEndpoint: "env-host",
		EnvRedisPort:     "16379",
		EnvRedisPassword: "from-env",
	})).Get()

	require.NoError(t, err)
	assert.Equal(t, "env-host:16379", settings.Redis.Addr)
	assert.Equal(t, "from-env", settings.Redis.Password)
}

func TestSettingsService_Get_InvalidAddress(t *testing.T) {
	tests := []struct {
		name   string
		addr   string
		envVal map[string]string
	}{
		{"no port", "localhost", nil},
		{"bad env port", "localhost:6379", map[string]string{EnvRedisPort: "redis"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			_ = store.Set("redis.addr", tt.addr)

			_, err := newSettings(store, envMap(tt.envVal)).Get()

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Get_SchemaTables(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("schema.fields", []any{
		map[string]any{"name": "username", "weight": int64(5)},
		map[string]any{"name": "content", "weight": 2.5},
	})
	_ = store.Set("schema.prefixes", []any{
		map[string]any{"prefix": "Tweet:", "shape": "tweet"},
		map[string]any{"prefix": "discord_message:", "shape": "discord_message"},
	})

	settings, err := newSettings(store, noEnv).Get()

	require.NoError(t, err)
	assert.Equal(t, []string{"username", "content"}, settings.Schema.FieldNames())
	content, ok := settings.Schema.Field("content")
	require.True(t, ok)
	assert.Equal(t, 2.5, content.Weight)
	assert.Equal(t, domain.ShapeDiscordMessage, settings.Schema.Classify("discord_message:1"))
	assert.Equal(t, domain.ShapeUnknown, settings.Schema.Classify("Spaces:1"))
}

func TestSettingsService_Get_SchemaDefaultsPrefixes(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("schema.fields", []map[string]any{{"name": "content", "weight": 1.0}})

	settings, err := newSettings(store, noEnv).Get()

	require.NoError(t, err)
	assert.Equal(t, DefaultSchema().PrefixList(), settings.Schema.PrefixList())
}

func TestSettingsService_Get_InvalidSchema(t *testing.T) {
	tests := []struct {
		name     string
		fields   []any
		prefixes []any
	}{
		{
			name:   "zero weight",
			fields: []any{map[string]any{"name": "content", "weight": 0.0}},
		},
		{
			name:     "unknown shape",
			fields:   []any{map[string]any{"name": "content", "weight": 1.0}},
			prefixes: []any{map[string]any{"prefix": "Post:", "shape": "post"}},
		},
		{
			name:   "duplicate field",
			fields: []any{map[string]any{"name": "a", "weight": 1.0}, map[string]any{"name": "a", "weight": 2.0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			_ = store.Set("schema.fields", tt.fields)
			if tt.prefixes != nil {
				_ = store.Set("schema.prefixes", tt.prefixes)
			}

			_, err := newSettings(store, noEnv).Get()

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := newSettings(store, noEnv)

	settings := domain.DefaultAppSettings()
	settings.Redis.Addr = "cache:7000"
	settings.Redis.Password = "secret"
	settings.Search.Mode = domain.QueryModeRaw
	settings.Search.PageSize = 20
	settings.Index.Policy = domain.IndexPolicyForceFresh

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "cache:7000", store.GetString("redis.addr"))
	assert.Equal(t, "secret", store.GetString("redis.password"))
	assert.Equal(t, "raw", store.GetString("search.mode"))
	assert.Equal(t, 20, store.GetInt("search.page_size"))
	assert.Equal(t, "force-fresh", store.GetString("index.policy"))

	reloaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings.Redis, reloaded.Redis)
	assert.Equal(t, settings.Search, reloaded.Search)
	assert.Equal(t, settings.Index, reloaded.Index)
}

func TestSettingsService_Save_OmitsEmptyPassword(t *testing.T) {
	store := memory.NewConfigStore()
	settings := domain.DefaultAppSettings()

	require.NoError(t, newSettings(store, noEnv).Save(&settings))

	_, ok := store.Get("redis.password")
	assert.False(t, ok)
}

func TestSettingsService_SetQueryMode(t *testing.T) {
	store := memory.NewConfigStore()
	service := newSettings(store, noEnv)

	require.NoError(t, service.SetQueryMode(domain.QueryModeFuzzy))
	assert.Equal(t, "fuzzy", store.GetString("search.mode"))

	err := service.SetQueryMode("semantic")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetIndexPolicy(t *testing.T) {
	store := memory.NewConfigStore()
	service := newSettings(store, noEnv)

	require.NoError(t, service.SetIndexPolicy(domain.IndexPolicyForceFresh))
	assert.Equal(t, "force-fresh", store.GetString("index.policy"))

	err := service.SetIndexPolicy("never")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := newSettings(memory.NewConfigStore(), noEnv)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
