package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	for _, name := range []string{
		"view", "options", "import", "datasets", "schema", "refresh",
		"watch", "tui", "mcp", "version",
	} {
		assert.True(t, hasCommand(rootCmd, name), "%s command should be registered", name)
	}
	assert.True(t, hasCommand(schemaCmd, "infer"))
	assert.True(t, hasCommand(refreshCmd, "history"))
	assert.True(t, hasCommand(mcpCmd, "serve"))
	assert.True(t, hasCommand(datasetsCmd, "delete"))
}

func TestCommands_NotConfigured(t *testing.T) {
	SetServices(Services{})

	tests := [][]string{
		{"view", "people.csv"},
		{"options", "people.csv", "name"},
		{"import", "people.csv"},
		{"datasets"},
		{"watch"},
		{"tui"},
		{"mcp", "serve"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := execute(t, args...)
			assert.ErrorIs(t, err, errNotConfigured)
		})
	}

	_, err := execute(t, "schema", "list")
	assert.ErrorIs(t, err, errNoSchemaStore)

	_, err = execute(t, "refresh", "list")
	assert.ErrorIs(t, err, errNoSchedule)
}

func TestViewCmd(t *testing.T) {
	t.Run("prints every row", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "view", "memory://people")

		require.NoError(t, err)
		assert.Contains(t, out, "id  name  age  team")
		assert.Contains(t, out, "4 of 4 rows\n")
	})

	t.Run("sorts and summarizes", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "view", "memory://people", "--sort", "name")

		require.NoError(t, err)
		ann, bob := strings.Index(out, "Ann"), strings.Index(out, "Bob")
		cid, dee := strings.Index(out, "cid"), strings.Index(out, "dee")
		assert.Less(t, ann, bob)
		assert.Less(t, bob, cid)
		assert.Less(t, cid, dee)
		assert.Contains(t, out, "(sorted by name asc)")
	})

	t.Run("filters", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "view", "memory://people", "--filter", "name=b")

		require.NoError(t, err)
		assert.Contains(t, out, "Bob")
		assert.NotContains(t, out, "Ann")
		assert.Contains(t, out, "1 of 4 rows (1 match)")
	})

	t.Run("multi-sort as JSON", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "view", "memory://people",
			"--sort", "age:desc", "--sort", "name", "--columns", "name", "--json")

		require.NoError(t, err)
		var rows []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		names := make([]any, len(rows))
		for i, row := range rows {
			names[i] = row["name"]
			assert.Len(t, row, 1)
		}
		assert.Equal(t, []any{"cid", "dee", "Ann", "Bob"}, names)
	})

	t.Run("numeric filter and limit", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "view", "memory://people", "--filter", "age:numeric=25", "--limit", "1")

		require.NoError(t, err)
		assert.Contains(t, out, "1 of 4 rows (2 match)")
	})

	t.Run("marks selected rows", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "view", "memory://people", "--select", "2")

		require.NoError(t, err)
		assert.Contains(t, out, "* 2   Ann")
		assert.Contains(t, out, "  1   dee")
	})

	t.Run("configured limit", func(t *testing.T) {
		env := setupTestServices(t)
		require.NoError(t, env.config.Set(driven.ConfigViewLimit, 3))

		out, err := execute(t, "view", "memory://people")
		require.NoError(t, err)
		assert.Contains(t, out, "3 of 4 rows")

		out, err = execute(t, "view", "memory://people", "--limit", "0")
		require.NoError(t, err)
		assert.Contains(t, out, "4 of 4 rows")
	})

	t.Run("configured dataset name", func(t *testing.T) {
		env := setupTestServices(t)
		require.NoError(t, env.config.Set("datasets.staff", "memory://people"))

		out, err := execute(t, "view", "staff", "--columns", "name", "--limit", "2")

		require.NoError(t, err)
		assert.Contains(t, out, "2 of 4 rows")
	})

	t.Run("unknown column", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "view", "memory://people", "--columns", "nope")
		assert.ErrorIs(t, err, domain.ErrUnknownField)
	})

	t.Run("unknown location", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "view", "memory://nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "failed to load memory://nope")
	})

	t.Run("bad filter", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "view", "memory://people", "--filter", "name")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestOptionsCmd(t *testing.T) {
	t.Run("all values in first-occurrence order", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "options", "memory://people", "team")

		require.NoError(t, err)
		assert.Equal(t, "red\nblue\n(Blank)\n", out)
	})

	t.Run("picker values are sorted", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "options", "memory://people", "team", "--picker")

		require.NoError(t, err)
		assert.Equal(t, "(Blank)\nblue\nred\n", out)
	})

	t.Run("available values follow filters", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "options", "memory://people", "team", "--available", "--filter", "name=ann")

		require.NoError(t, err)
		assert.Equal(t, "blue\n", out)
	})

	t.Run("no values", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "options", "memory://people", "team", "--available", "--filter", "name=zed")

		require.NoError(t, err)
		assert.Equal(t, "No values.\n", out)
	})

	t.Run("JSON", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "options", "memory://people", "age", "--json")

		require.NoError(t, err)
		var opts []domain.FieldOption
		require.NoError(t, json.Unmarshal([]byte(out), &opts))
		require.Len(t, opts, 3)
		assert.Equal(t, "31", opts[0].Label)
	})

	t.Run("unknown field", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "options", "memory://people", "nope")
		assert.ErrorIs(t, err, domain.ErrUnknownField)
	})
}

func TestImportAndDatasetsCmds(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.config.Set("datasets.staff", "memory://people"))

	out, err := execute(t, "import", "staff", "--name", "crew")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 4 rows from memory://people as crew")
	assert.Contains(t, out, "gridview view sqlite://crew")

	out, err = execute(t, "datasets")
	require.NoError(t, err)
	assert.Contains(t, out, "Configured:")
	assert.Contains(t, out, "staff")
	assert.Contains(t, out, "Stored:")
	assert.Contains(t, out, "crew")
	assert.Contains(t, out, "4 rows")

	out, err = execute(t, "datasets", "delete", "crew")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted stored dataset crew")

	out, err = execute(t, "datasets")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored:\n  (none)")

	_, err = execute(t, "import", "memory://nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSchemaCmds(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "schema", "list")
	require.NoError(t, err)
	assert.Equal(t, "No stored schemas.\n", out)

	out, err = execute(t, "schema", "infer", "memory://people", "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "row_key")
	assert.Contains(t, out, "numeric")
	assert.Contains(t, out, "contains")
	assert.Contains(t, out, "Saved schema people")

	out, err = execute(t, "schema", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "people")
	assert.Contains(t, out, "4 fields")

	out, err = execute(t, "schema", "show", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "row_key")

	out, err = execute(t, "schema", "delete", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted schema people")

	_, err = execute(t, "schema", "show", "people")
	assert.ErrorContains(t, err, "no stored schema named people")
}

func TestRefreshCmds(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "refresh", "list")
	require.NoError(t, err)
	assert.Equal(t, "No scheduled reloads.\n", out)

	out, err = execute(t, "refresh", "add", "memory://people", "--cron", "0 * * * *")
	require.NoError(t, err)
	assert.Contains(t, out, "Scheduled people from memory://people")

	out, err = execute(t, "refresh", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "people")
	assert.Contains(t, out, "0 * * * *")
	assert.Contains(t, out, "pending")

	out, err = execute(t, "refresh", "run", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "Reloaded people: 4 rows in")

	out, err = execute(t, "refresh", "history", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "4 rows")

	out, err = execute(t, "refresh", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	out, err = execute(t, "refresh", "remove", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed scheduled reload of people")

	out, err = execute(t, "refresh", "list")
	require.NoError(t, err)
	assert.Equal(t, "No scheduled reloads.\n", out)

	_, err = execute(t, "refresh", "run", "people")
	assert.ErrorContains(t, err, "reload of people failed")

	_, err = execute(t, "refresh", "add", "memory://people", "--cron", "every tuesday")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWatchCmd(t *testing.T) {
	t.Run("nothing to watch", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "watch")
		assert.ErrorContains(t, err, "nothing to watch")
	})

	t.Run("no notifier", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "watch", "memory://people")

		assert.ErrorIs(t, err, domain.ErrNotImplemented)
		assert.Contains(t, out, "Loaded people: 4 rows from memory://people")
	})
}

func TestTUICmd_HelpOutput(t *testing.T) {
	out, err := execute(t, "tui", "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "Controls:")
	assert.Contains(t, out, "--watch")
	assert.Contains(t, out, "--schedule")
}

func TestMCPServeCmd_HelpOutput(t *testing.T) {
	out, err := execute(t, "mcp", "serve", "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "gridview mcp serve")
	assert.Contains(t, out, "--port")
}
