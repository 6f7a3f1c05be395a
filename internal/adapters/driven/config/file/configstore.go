package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// configFile is the name of the configuration file in the config directory.
const configFile = "config.toml"

// ConfigStore keeps config.toml as a tree of tables. Keys are dotted paths
// through the tree, so "github.token" is the token key of the [github]
// table.
type ConfigStore struct {
	path string

	mu   sync.RWMutex
	root map[string]any
}

// NewConfigStore opens config.toml in configDir, which defaults to
// ~/.gridview. A missing file is an empty configuration.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".gridview")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		path: filepath.Join(configDir, configFile),
		root: map[string]any{},
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// lookup walks key through the tree. The caller holds the lock.
func (s *ConfigStore) lookup(key string) (any, bool) {
	var node any = s.root
	for _, part := range strings.Split(key, ".") {
		table, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = table[part]; !ok {
			return nil, false
		}
	}
	return node, true
}

// Get returns the value at key. Tables come back as map[string]any.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(key)
}

// GetString returns the string at key, or "".
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt returns the number at key truncated to an int, or 0.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int64: // TOML integers
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// GetBool returns the boolean at key, or false.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// GetStringMap returns the string entries of the table at key. Nested
// tables and non-string values are skipped.
func (s *ConfigStore) GetStringMap(key string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, _ := s.lookup(key)
	table, _ := v.(map[string]any)
	var out map[string]string
	for name, entry := range table {
		str, ok := entry.(string)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(table))
		}
		out[name] = str
	}
	return out
}

// Set stores value at key, creating intermediate tables, and writes the
// file. Setting below a key that holds a plain value is an error.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(key, ".")
	table := s.root
	for i, part := range parts[:len(parts)-1] {
		switch child := table[part].(type) {
		case map[string]any:
			table = child
		case nil:
			next := map[string]any{}
			table[part] = next
			table = next
		default:
			return fmt.Errorf("%w: config key %s is not a table", domain.ErrInvalidInput, strings.Join(parts[:i+1], "."))
		}
	}
	table[parts[len(parts)-1]] = value
	return s.write()
}

// Save writes the configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// write replaces the file through a temporary file in the same directory so
// readers never see a partial config. The caller holds the lock.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(s.root)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), configFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load re-reads the file, discarding unsaved changes.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.root = map[string]any{}
		return nil
	}
	if err != nil {
		return err
	}

	root := map[string]any{}
	if err := toml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}
	s.root = root
	return nil
}

// Path is the location of config.toml.
func (s *ConfigStore) Path() string {
	return s.path
}
