package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

func TestDatasetName(t *testing.T) {
	tests := []struct {
		location string
		expected string
	}{
		{"people.csv", "people"},
		{"data/people.csv.zst", "people"},
		{"./logs/app log.jsonl", "app_log"},
		{"s3://bucket/exports/", "exports"},
		{"s3://bucket/exports/orders.json", "orders"},
		{"sheets://1AbC/Sheet1!A1:D", "Sheet1"},
		{"github://golang/go", "go"},
		{"github://golang/go/pulls", "go_pulls"},
		{"sqlite://people", "people"},
		{"glob:logs/**/*.json", "glob"},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.expected, datasetName(tt.location))
		})
	}
}

func TestResolveDataset(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.config.Set("datasets.staff", "memory://people"))

	t.Run("configured name", func(t *testing.T) {
		name, location := resolveDataset("staff", "")
		assert.Equal(t, "staff", name)
		assert.Equal(t, "memory://people", location)
	})

	t.Run("configured name with override", func(t *testing.T) {
		name, location := resolveDataset("staff", "crew")
		assert.Equal(t, "crew", name)
		assert.Equal(t, "memory://people", location)
	})

	t.Run("location", func(t *testing.T) {
		name, location := resolveDataset("orders.csv", "")
		assert.Equal(t, "orders", name)
		assert.Equal(t, "orders.csv", location)
	})

	t.Run("location with override", func(t *testing.T) {
		name, location := resolveDataset("orders.csv", "sales")
		assert.Equal(t, "sales", name)
		assert.Equal(t, "orders.csv", location)
	})
}

func TestDatasetLocations(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.config.Set("datasets.staff", "memory://people"))

	assert.Equal(t, map[string]string{"staff": "memory://people"}, datasetLocations(nil))
	assert.Equal(t, map[string]string{"orders": "orders.csv"}, datasetLocations([]string{"orders.csv"}))
}

func TestParseFilterFlag(t *testing.T) {
	t.Run("field and value", func(t *testing.T) {
		f, err := parseFilterFlag("name=ann")
		require.NoError(t, err)
		assert.Equal(t, "name", f.field)
		assert.Equal(t, "ann", f.value)
		assert.False(t, f.explicit)
	})

	t.Run("explicit kind", func(t *testing.T) {
		f, err := parseFilterFlag("age:numeric=42")
		require.NoError(t, err)
		assert.Equal(t, "age", f.field)
		assert.Equal(t, domain.FilterNumeric, f.kind)
		assert.True(t, f.explicit)
	})

	t.Run("value may contain equals", func(t *testing.T) {
		f, err := parseFilterFlag("expr=a=b")
		require.NoError(t, err)
		assert.Equal(t, "a=b", f.value)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := parseFilterFlag("name")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = parseFilterFlag("=ann")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = parseFilterFlag("name:fuzzy=ann")
		assert.Error(t, err)
	})
}

func TestFilterFlag_Resolve(t *testing.T) {
	schema := domain.Schema{
		Name:   "people",
		RowKey: "id",
		Fields: []domain.FieldSpec{
			{Name: "name", Filter: domain.FilterContains, Filterable: true},
			{Name: "age", Filter: domain.FilterNumeric, Filterable: true},
		},
	}

	tests := []struct {
		flag  string
		value any
		kind  domain.FilterKind
	}{
		{"name=ann", "ann", domain.FilterContains},
		{"name=/^a/i", "(?i)^a", domain.FilterRegex},
		{"age=42", "42", domain.FilterNumeric},
		{"name:exact=Ann", "Ann", domain.FilterExact},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f, err := parseFilterFlag(tt.flag)
			require.NoError(t, err)
			value, kind, err := f.resolve(schema)
			require.NoError(t, err)
			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.kind, kind)
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		f, err := parseFilterFlag("nope=x")
		require.NoError(t, err)
		_, _, err = f.resolve(schema)
		assert.ErrorIs(t, err, domain.ErrUnknownField)
	})
}

func TestParseSortFlag(t *testing.T) {
	field, dir, err := parseSortFlag("name")
	require.NoError(t, err)
	assert.Equal(t, "name", field)
	assert.Equal(t, domain.SortAsc, dir)

	field, dir, err = parseSortFlag("age:desc")
	require.NoError(t, err)
	assert.Equal(t, "age", field)
	assert.Equal(t, domain.SortDesc, dir)

	_, _, err = parseSortFlag(":desc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = parseSortFlag("age:sideways")
	assert.Error(t, err)
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(map[string]string{"c": "", "a": "", "b": ""}))
	assert.Empty(t, sortedKeys(nil))
}
