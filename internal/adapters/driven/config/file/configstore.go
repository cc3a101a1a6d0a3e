package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

const (
	configFile = "config.toml"
	dirMode    = 0o700
	fileMode   = 0o600
)

// ConfigStore keeps searchdash settings in ~/.searchdash/config.toml.
//
// Tables are addressed with dotted keys: [redis] addr is "redis.addr" and
// [[schema.fields]] is "schema.fields". Writes go through a temp file and a
// rename, so a crash never leaves a half-written config behind. The file
// holds the Redis password and is created owner-only.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens the config under configDir, creating the directory
// if needed. An empty configDir means ~/.searchdash. A missing file is an
// empty config; an unparsable one is an error.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".searchdash")
	}
	if err := os.MkdirAll(configDir, dirMode); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, configFile),
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// lookup reads key and converts it; missing or mistyped values yield the zero value.
func lookup[T any](s *ConfigStore, key string, convert func(any) (T, bool)) T {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero
	}
	out, ok := convert(val)
	if !ok {
		return zero
	}
	return out
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	return lookup(s, key, func(v any) (string, bool) {
		str, ok := v.(string)
		return str, ok
	})
}

// GetInt retrieves an integer configuration value, e.g. redis.db.
func (s *ConfigStore) GetInt(key string) int {
	return lookup(s, key, asInt)
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	return lookup(s, key, func(v any) (bool, bool) {
		b, ok := v.(bool)
		return b, ok
	})
}

// GetFloat retrieves a number such as a field weight or index.reindex_rate.
// Whole numbers written without a decimal point are accepted.
func (s *ConfigStore) GetFloat(key string) float64 {
	return lookup(s, key, func(v any) (float64, bool) {
		if f, ok := v.(float64); ok {
			return f, true
		}
		n, ok := asInt(v)
		return float64(n), ok
	})
}

// GetDuration retrieves a timeout such as redis.dial_timeout. Strings use
// time.ParseDuration syntax ("5s", "250ms"); bare integers are seconds.
func (s *ConfigStore) GetDuration(key string) time.Duration {
	return lookup(s, key, func(v any) (time.Duration, bool) {
		if str, ok := v.(string); ok {
			d, err := time.ParseDuration(strings.TrimSpace(str))
			return d, err == nil
		}
		n, ok := asInt(v)
		return time.Duration(n) * time.Second, ok
	})
}

// GetTables retrieves an array of tables, e.g. schema.fields. Entries
// that are not tables are skipped.
func (s *ConfigStore) GetTables(key string) []map[string]any {
	return lookup(s, key, func(v any) ([]map[string]any, bool) {
		switch list := v.(type) {
		case []map[string]any:
			return list, true
		case []any:
			tables := make([]map[string]any, 0, len(list))
			for _, item := range list {
				if table, ok := item.(map[string]any); ok {
					tables = append(tables, table)
				}
			}
			return tables, true
		default:
			return nil, false
		}
	})
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes the config through a temp file in the same directory.
// Caller holds mu.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nest(s.data))
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.filePath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), configFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}

// Load re-reads the file. On a parse error the previous values are kept.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, s.filePath, err)
	}

	s.data = make(map[string]any, len(loaded))
	flatten(loaded, "", s.data)
	return nil
}

// flatten copies tables into out under dotted keys. Arrays of tables
// stay whole.
func flatten(m map[string]any, prefix string, out map[string]any) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flatten(table, key, out)
			continue
		}
		out[key] = value
	}
}

// nest rebuilds tables from dotted keys. A key whose parent is already a
// scalar is written as a quoted dotted key.
func nest(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	// Parents sort before their dotted children.
	sort.Strings(keys)

	root := make(map[string]any)
	for _, key := range keys {
		value := flat[key]
		parts := strings.Split(key, ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				child = make(map[string]any)
				node[part] = child
			}
			table, ok := child.(map[string]any)
			if !ok {
				node = nil
				break
			}
			node = table
		}
		if node == nil {
			root[key] = value
			continue
		}
		node[parts[len(parts)-1]] = value
	}
	return root
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
