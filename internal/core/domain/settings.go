package domain

import "time"

const unknownDescription = "Unknown"

// RedisSettings holds connection parameters for the backing store.
type RedisSettings struct {
	// Addr is host:port of the Redis server.
	Addr string

	Username string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// CommandTimeout bounds every individual store call.
	CommandTimeout time.Duration
}

// IndexSettings controls the index lifecycle at startup.
type IndexSettings struct {
	// Name is the index name, e.g. "idx:all".
	Name string

	// Policy decides whether an existing index is reused.
	Policy IndexPolicy

	// ReindexRate caps document re-writes per second. Zero means unlimited.
	ReindexRate float64

	// ScanCount is the COUNT hint for each key scan round trip.
	ScanCount int64
}

// SearchSettings controls query execution.
type SearchSettings struct {
	// Mode is the default query mode.
	Mode QueryMode

	// PageSize is the fixed number of results per page.
	PageSize int

	// WithScores requests relevance scores with each hit.
	WithScores bool

	// StrictTotals re-queries the match total on every page.
	StrictTotals bool
}

// LogSettings controls logger output.
type LogSettings struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is "text" or "json".
	Format string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Redis  RedisSettings
	Index  IndexSettings
	Search SearchSettings
	Log    LogSettings

	// Schema overrides the built-in schema when it has fields.
	Schema Schema
}

// Default values.
const (
	DefaultIndexName      = "idx:all"
	DefaultPageSize       = 10
	DefaultRedisHost      = "localhost"
	DefaultRedisPort      = 6379
	DefaultCommandTimeout = 5 * time.Second
	DefaultScanCount      = 500
)

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Redis: RedisSettings{
			Addr:           "localhost:6379",
			DialTimeout:    5 * time.Second,
			ReadTimeout:    3 * time.Second,
			WriteTimeout:   3 * time.Second,
			CommandTimeout: DefaultCommandTimeout,
		},
		Index: IndexSettings{
			Name:      DefaultIndexName,
			Policy:    IndexPolicyReuse,
			ScanCount: DefaultScanCount,
		},
		Search: SearchSettings{
			Mode:       QueryModeWeighted,
			PageSize:   DefaultPageSize,
			WithScores: true,
		},
		Log: LogSettings{
			Level:  "warn",
			Format: "text",
		},
	}
}

// AllQueryModes returns all available query modes.
func AllQueryModes() []QueryMode {
	return []QueryMode{
		QueryModeWeighted,
		QueryModeRaw,
		QueryModeFuzzy,
	}
}
