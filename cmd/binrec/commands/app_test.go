package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSchema(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schema.json")
	err := os.WriteFile(path, []byte(`{"records": [
		{"name": "Person", "fields": [
			{"name": "name", "type": "varchar"},
			{"name": "age", "type": "int8"}
		]}
	]}`), 0o600)
	require.NoError(t, err)

	return path
}

func TestApp(t *testing.T) {
	schema := writeSchema(t)
	dbPath := filepath.Join(t.TempDir(), "db")

	tests := []struct {
		name  string
		args  []string
		fails bool
	}{
		{"encode", []string{"encode", "--hex", `{"name": "Bob", "age": 25}`}, false},
		{"encode invalid", []string{"encode", `{"name": "Bob", "age": 250}`}, true},
		{"unknown record", []string{"encode", "-r", "Pet", `{"name": "Bob"}`}, true},
		{"put", []string{"put", "-p", dbPath, `{"name": "Bob", "age": 25}`}, false},
		{"dump", []string{"dump", "-p", dbPath, "-f", filepath.Join(t.TempDir(), "dump.jsonl")}, false},
		{"get without id", []string{"get", "-p", dbPath}, true},
		{"bench", []string{"bench", "-n", "10", "-w", "2", `{"name": "Bob", "age": 25}`}, false},
		{"bench without record", []string{"bench"}, true},
		{"version", []string{"version"}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			args := append([]string{"binrec", "-s", schema}, test.args...)
			err := NewApp().Run(context.Background(), args)
			if test.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAppSchemaFromEnv(t *testing.T) {
	t.Setenv("BINREC_SCHEMA", writeSchema(t))

	err := NewApp().Run(context.Background(), []string{"binrec", "encode", "--hex", `{"name": "Bob", "age": 25}`})
	require.NoError(t, err)

	t.Setenv("BINREC_SCHEMA", "")
	err = NewApp().Run(context.Background(), []string{"binrec", "encode", `{"name": "Bob", "age": 25}`})
	require.Error(t, err)
}
