package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gridview/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/services"
)

// testEnv holds the stores behind the services wired for a test.
type testEnv struct {
	source  *memory.RecordSource
	config  *memory.ConfigStore
	schemas *memory.SchemaStore
	stored  *memory.DatasetStore
}

// setupTestServices wires real services over in-memory adapters. The people
// dataset is served at memory://people.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		source:  memory.NewRecordSource(),
		config:  memory.NewConfigStore(),
		schemas: memory.NewSchemaStore(),
		stored:  memory.NewDatasetStore(),
	}
	env.source.Put("people", domain.RecordSet{
		Columns: []string{"id", "name", "age", "team"},
		Records: []domain.Record{
			{"id": 1, "name": "dee", "age": 31, "team": "red"},
			{"id": 2, "name": "Ann", "age": 25, "team": "blue"},
			{"id": 3, "name": "cid", "age": 40, "team": "red"},
			{"id": 4, "name": "Bob", "age": 25, "team": ""},
		},
	})

	datasets := services.NewDatasetService(nil)
	loader := services.NewLoaderService(datasets, env.schemas, env.stored, nil, env.source)
	sched, err := services.NewRefreshScheduler(domain.DefaultRefreshConfig(), memory.NewRefreshStore(), loader)
	require.NoError(t, err)

	SetServices(Services{
		Datasets:  datasets,
		Loader:    loader,
		Scheduler: sched,
		Schemas:   env.schemas,
		Stored:    env.stored,
		Config:    env.config,
	})
	t.Cleanup(func() {
		_ = sched.Close()
		SetServices(Services{})
	})
	return env
}

// resetFlags restores every flag of cmd and its children to its default so
// values do not leak between executions of the shared root command.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns everything written.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func hasCommand(parent *cobra.Command, use string) bool {
	for _, cmd := range parent.Commands() {
		if cmd.Name() == use {
			return true
		}
	}
	return false
}
