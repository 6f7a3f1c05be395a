package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

// Ensure SchemaStore implements the interface.
var _ driven.SchemaStore = (*SchemaStore)(nil)

const schemaExt = ".toml"

// SchemaStore keeps one user-editable TOML file per dataset schema.
//
// The directory is created lazily on first write, so reading from a fresh
// install performs no I/O beyond a stat.
type SchemaStore struct {
	mu  sync.Mutex
	dir string
}

// NewSchemaStore creates a schema store rooted at dir.
// If dir is empty, defaults to ~/.gridview/schemas/.
func NewSchemaStore(dir string) (*SchemaStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".gridview", "schemas")
	}
	return &SchemaStore{dir: dir}, nil
}

// Dir returns the schema directory path.
func (s *SchemaStore) Dir() string {
	return s.dir
}

func (s *SchemaStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid schema name %q", domain.ErrInvalidInput, name)
	}
	return filepath.Join(s.dir, name+schemaExt), nil
}

// Get reads the schema file of name. Returns nil and no error if absent.
func (s *SchemaStore) Get(_ context.Context, name string) (*domain.Schema, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	schema, err := readSchema(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if schema.Name == "" {
		schema.Name = name
	}
	return &schema, nil
}

func readSchema(path string) (domain.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Schema{}, err
	}
	var schema domain.Schema
	if err := toml.Unmarshal(data, &schema); err != nil {
		return domain.Schema{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if schema.RowKey == "" {
		schema.RowKey = domain.DefaultRowKey
	}
	return schema, nil
}

// Save writes schema to <dir>/<name>.toml, replacing any existing file.
func (s *SchemaStore) Save(_ context.Context, schema domain.Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	path, err := s.path(schema.Name)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshalling schema %s: %w", schema.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// List reads every schema file in the directory, ordered by name.
func (s *SchemaStore) List(_ context.Context) ([]domain.Schema, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading schema directory: %w", err)
	}

	var schemas []domain.Schema
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != schemaExt {
			continue
		}
		schema, err := readSchema(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if schema.Name == "" {
			schema.Name = strings.TrimSuffix(entry.Name(), schemaExt)
		}
		schemas = append(schemas, schema)
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })
	return schemas, nil
}

// Delete removes the schema file of name. Deleting a missing schema is not
// an error.
func (s *SchemaStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
