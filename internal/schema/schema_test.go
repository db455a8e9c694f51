package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chaisql/binrec/internal/codec"
	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/schema"
	"github.com/chaisql/binrec/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const petsSchema = `{
	"records": [
		{"name": "Pet", "fields": [
			{"name": "name", "type": "varchar"},
			{"name": "age", "type": "int8", "default": 1}
		]},
		{"name": "Person", "fields": [
			{"name": "name", "type": "varchar"},
			{"name": "age", "type": "int8"},
			{"name": "id", "type": "long"},
			{"name": "pets", "type": "vector[Pet]", "default": []},
			{"name": "tag", "type": "fixedstring[2]", "default": "ab"}
		]}
	]
}`

func TestLoad(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)

	schemas, err := schema.Load(r, []byte(petsSchema))
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	require.Equal(t, "Pet", schemas[0].Name())
	require.Equal(t, "Person", schemas[1].Name())

	f, ok := schemas[1].Field("id")
	require.True(t, ok)
	require.Equal(t, types.Int64, f.Type)

	f, ok = schemas[0].Field("age")
	require.True(t, ok)
	require.True(t, f.HasDefault)
	require.Equal(t, int8(1), f.Default)

	// records are registered
	_, err = r.Resolve(types.Vector(types.Record("Person")))
	require.NoError(t, err)

	rec, err := schemas[1].New(map[string]any{"name": "Bob", "age": 25, "id": 69696969})
	require.NoError(t, err)
	data, err := rec.Build()
	require.NoError(t, err)
	require.Equal(t, []byte("\x03Bob\x19\xc9\x7d\x27\x04\x00\x00\x00\x00\x00\x00\x00\x00ab"), data)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(petsSchema), 0o600))

	schemas, err := schema.LoadFile(codec.NewDefaultRegistry(nil), path)
	require.NoError(t, err)
	require.Len(t, schemas, 2)

	_, err = schema.LoadFile(codec.NewDefaultRegistry(nil), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		target error
	}{
		{"not json", `{`, errors.ErrUsage},
		{"no records", `{}`, errors.ErrUsage},
		{"empty records", `{"records": []}`, errors.ErrUsage},
		{"record not an object", `{"records": [1]}`, errors.ErrUsage},
		{"missing name", `{"records": [{"fields": [{"name": "a", "type": "int8"}]}]}`, errors.ErrUsage},
		{"missing fields", `{"records": [{"name": "A"}]}`, errors.ErrUsage},
		{"no fields", `{"records": [{"name": "A", "fields": []}]}`, errors.ErrUsage},
		{"missing type", `{"records": [{"name": "A", "fields": [{"name": "a"}]}]}`, errors.ErrUsage},
		{"invalid type", `{"records": [{"name": "A", "fields": [{"name": "a", "type": "array[int8"}]}]}`, errors.ErrUsage},
		{"invalid default", `{"records": [{"name": "A", "fields": [{"name": "a", "type": "int8", "default": "x"}]}]}`, errors.ErrUsage},
		{"default out of range", `{"records": [{"name": "A", "fields": [{"name": "a", "type": "int8", "default": 300}]}]}`, errors.ErrUsage},
		{"forward reference", `{"records": [
			{"name": "A", "fields": [{"name": "b", "type": "B"}]},
			{"name": "B", "fields": [{"name": "a", "type": "int8"}]}
		]}`, errors.ErrLookup},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := schema.Load(codec.NewDefaultRegistry(nil), []byte(test.data))
			require.ErrorIs(t, err, test.target)
		})
	}
}

func TestLoadErrorPath(t *testing.T) {
	_, err := schema.Load(codec.NewDefaultRegistry(nil), []byte(`{"records": [
		{"name": "A", "fields": [{"name": "a", "type": "int8"}]},
		{"name": "B", "fields": [{"name": "a", "type": "int8"}, {"name": "b", "type": "nope[", "default": 1}]}
	]}`))
	require.ErrorIs(t, err, errors.ErrUsage)
	require.Contains(t, err.Error(), "records[1].B.fields[1]")
}

func TestRecordFromJSON(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)
	schemas, err := schema.Load(r, []byte(petsSchema))
	require.NoError(t, err)
	person := schemas[1]

	rec, err := schema.RecordFromJSON(r, person, []byte(`{
		"name": "Alice",
		"age": 30,
		"id": 1,
		"pets": [{"name": "Rex"}, {"name": "Tom", "age": 7}],
		"tag": null
	}`))
	require.NoError(t, err)
	require.False(t, rec.IsSet("tag"))

	want := map[string]any{
		"name": "Alice",
		"age":  int8(30),
		"id":   int64(1),
		"pets": []any{
			map[string]any{"name": "Rex", "age": int8(1)},
			map[string]any{"name": "Tom", "age": int8(7)},
		},
		"tag": "ab",
	}
	if diff := cmp.Diff(want, rec.Map()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	data, err := rec.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Alice","age":30,"id":1,"pets":[{"name":"Rex","age":1},{"name":"Tom","age":7}],"tag":"ab"}`, string(data))

	// the JSON output can be read back
	again, err := schema.RecordFromJSON(r, person, data)
	require.NoError(t, err)
	require.Equal(t, rec.Map(), again.Map())
}

func TestRecordFromJSONErrors(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)
	schemas, err := schema.Load(r, []byte(petsSchema))
	require.NoError(t, err)
	person := schemas[1]

	tests := []struct {
		name string
		data string
		path string
		hint string
	}{
		{"not an object", `[1]`, "", ""},
		{"unknown field", `{"nam": "x"}`, "", `did you mean "name"?`},
		{"wrong type", `{"name": 1}`, "name", ""},
		{"out of range", `{"age": 1000}`, "age", "use int16"},
		{"not an integer", `{"age": 1.5}`, "age", ""},
		{"nested", `{"pets": [{"name": "Rex"}, {"name": 1}]}`, "pets[1].name", ""},
		{"fixedstring length", `{"tag": "abc"}`, "tag", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := schema.RecordFromJSON(r, person, []byte(test.data))
			require.ErrorIs(t, err, errors.ErrUsage)
			if test.path != "" {
				require.Contains(t, err.Error(), "usage error at "+test.path+":")
			}
			if test.hint != "" {
				require.Equal(t, test.hint, errors.Hints(err))
			}
		})
	}
}

func TestValueFromJSON(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)
	_, err := schema.Load(r, []byte(petsSchema))
	require.NoError(t, err)

	tests := []struct {
		typ  string
		json string
		want any
	}{
		{"int16", `-12`, int64(-12)},
		{"float32", `1.5`, 1.5},
		{"bool", `true`, true},
		{"char", `"x"`, "x"},
		{"string", `"a\"bé"`, "a\"bé"},
		{"null", `null`, nil},
		{"ignore", `{"anything": 1}`, nil},
		{"array[int8,2]", `[1, 2]`, []any{int64(1), int64(2)}},
		{"vector[vector[bool]]", `[[true], []]`, []any{[]any{true}, []any{}}},
	}

	for _, test := range tests {
		t.Run(test.typ, func(t *testing.T) {
			v, err := schema.ValueFromJSON(r, types.MustParse(test.typ), []byte(test.json))
			require.NoError(t, err)
			require.Equal(t, test.want, v)

			// the value can be built
			c, err := r.Resolve(types.MustParse(test.typ))
			require.NoError(t, err)
			_, err = codec.Build(c, v)
			require.NoError(t, err)
		})
	}

	v, err := schema.ValueFromJSON(r, types.Record("Pet"), []byte(`{"name": "Rex"}`))
	require.NoError(t, err)
	c, err := r.Resolve(types.Record("Pet"))
	require.NoError(t, err)
	data, err := codec.Build(c, v)
	require.NoError(t, err)
	require.Equal(t, []byte("\x03Rex\x01"), data)

	_, err = schema.ValueFromJSON(r, types.Int8, []byte(`"1"`))
	require.ErrorIs(t, err, errors.ErrUsage)

	_, err = schema.ValueFromJSON(r, types.Record("Unknown"), []byte(`{}`))
	require.ErrorIs(t, err, errors.ErrLookup)
}
