package record_test

import (
	"math"
	"testing"

	"github.com/chaisql/binrec/internal/codec"
	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/record"
	"github.com/chaisql/binrec/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func definePerson(t *testing.T, r *codec.Registry) *record.Schema {
	t.Helper()

	s, err := record.Define(r, "Person",
		record.NewField("name", types.Varchar),
		record.NewField("age", types.Int8),
		record.NewField("id", types.Int64),
	)
	require.NoError(t, err)
	return s
}

func TestBuildParse(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)
	s := definePerson(t, r)

	rec, err := s.New(map[string]any{"name": "Bob", "age": 25, "id": 69696969})
	require.NoError(t, err)

	data, err := rec.Build()
	require.NoError(t, err)
	require.Equal(t, []byte("\x03Bob\x19\xc9\x7d\x27\x04\x00\x00\x00\x00"), data)

	got, n, err := s.ParseWithSize(append(data, "trailing"...))
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.True(t, rec.Equal(got), "want %s, got %s", rec, got)

	name, err := got.Get("name")
	require.NoError(t, err)
	require.Equal(t, "Bob", name)

	age, err := got.Get("age")
	require.NoError(t, err)
	require.Equal(t, int8(25), age)

	id, err := got.Get("id")
	require.NoError(t, err)
	require.Equal(t, int64(69696969), id)
}

func TestFieldOrder(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)

	s, err := record.NewBuilder("PairInt2Char").
		Field("a", types.Int32).
		Field("b", types.Char).
		Define(r)
	require.NoError(t, err)

	rec, err := s.New(map[string]any{"b": "2", "a": 1})
	require.NoError(t, err)

	data, err := rec.Build()
	require.NoError(t, err)
	require.Equal(t, []byte("\x01\x00\x00\x002"), data)
}

func TestNestedRecords(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)

	inner, err := record.Define(r, "Inner",
		record.NewField("name", types.Varchar),
		record.NewField("id", types.Int32),
	)
	require.NoError(t, err)

	outer, err := record.Define(r, "Outer",
		record.NewField("inner", types.Record("Inner")),
		record.NewField("code", types.Varchar),
	)
	require.NoError(t, err)

	in, err := inner.New(map[string]any{"name": "Bob", "id": 1})
	require.NoError(t, err)

	want := []byte("\x03Bob\x01\x00\x00\x00\x03123")

	// nested records can be set with a record or a map
	for _, v := range []any{in, map[string]any{"name": "Bob", "id": 1}} {
		rec, err := outer.New(map[string]any{"inner": v, "code": "123"})
		require.NoError(t, err)

		data, err := rec.Build()
		require.NoError(t, err)
		require.Equal(t, want, data)

		got, err := outer.Parse(data)
		require.NoError(t, err)
		require.True(t, rec.Equal(got))

		v, err := got.Get("inner")
		require.NoError(t, err)
		require.IsType(t, &record.Record{}, v)
		require.True(t, in.Equal(v.(*record.Record)))
	}

	_, err = outer.New(map[string]any{"inner": map[string]any{"name": "Bob"}})
	require.ErrorIs(t, err, errors.ErrUsage)
	require.Contains(t, err.Error(), "at inner.id")

	_, err = outer.New(map[string]any{"inner": "Bob"})
	require.ErrorIs(t, err, errors.ErrUsage)
}

func TestVectorOfRecords(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)

	_, err := record.Define(r, "Pet",
		record.NewField("name", types.Varchar),
		record.NewField("age", types.Int8),
	)
	require.NoError(t, err)

	owner, err := record.Define(r, "Owner",
		record.NewField("name", types.Varchar),
		record.NewField("pets", types.Vector(types.Record("Pet"))),
	)
	require.NoError(t, err)

	rec, err := owner.New(map[string]any{
		"name": "Alice",
		"pets": []any{
			map[string]any{"name": "Rex", "age": 3},
			map[string]any{"name": "Tom", "age": 7},
			map[string]any{"name": "Kit", "age": 1},
		},
	})
	require.NoError(t, err)

	data, err := rec.Build()
	require.NoError(t, err)
	require.Equal(t, []byte("\x05Alice\x03\x00\x00\x00\x03Rex\x03\x03Tom\x07\x03Kit\x01"), data)

	got, n, err := owner.ParseWithSize(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.True(t, rec.Equal(got))

	want := map[string]any{
		"name": "Alice",
		"pets": []any{
			map[string]any{"name": "Rex", "age": int8(3)},
			map[string]any{"name": "Tom", "age": int8(7)},
			map[string]any{"name": "Kit", "age": int8(1)},
		},
	}
	if diff := cmp.Diff(want, got.Map()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	// truncated input
	_, err = owner.Parse(data[:len(data)-1])
	require.ErrorIs(t, err, errors.ErrDecoding)
	require.Contains(t, err.Error(), "decoding error at pets[2].age")

	// the declared count implies more bytes than available
	_, err = owner.Parse([]byte("\x05Alice\xff\x00\x00\x00\x03Rex\x03"))
	require.ErrorIs(t, err, errors.ErrDecoding)

	// invalid element
	err = rec.Set("pets", []any{map[string]any{"name": "Rex", "age": 300}})
	require.ErrorIs(t, err, errors.ErrUsage)
	require.Contains(t, err.Error(), "usage error at pets[0].age")
	require.Equal(t, "use int16", errors.Hints(err))
}

func TestArrayOfVarchars(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)

	s, err := record.Define(r, "Words", record.NewField("words", types.Array(types.Varchar, 3)))
	require.NoError(t, err)

	rec, err := s.New(map[string]any{"words": []string{"hello", "world", "!"}})
	require.NoError(t, err)

	data, err := rec.Build()
	require.NoError(t, err)
	require.Equal(t, []byte("\x05hello\x05world\x01!"), data)

	_, err = s.New(map[string]any{"words": []string{"hello", "world"}})
	require.ErrorIs(t, err, errors.ErrUsage)
}

func TestUnsetFields(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)

	s, err := record.NewBuilder("Account").
		Field("name", types.Varchar).
		FieldWithDefault("balance", types.Int64, 100).
		FieldWithDefault("active", types.Bool, true).
		Define(r)
	require.NoError(t, err)

	rec, err := s.New(map[string]any{"balance": 5})
	require.NoError(t, err)
	require.True(t, rec.IsSet("balance"))
	require.False(t, rec.IsSet("name"))

	_, err = rec.Build()
	require.ErrorIs(t, err, errors.ErrUsage)
	require.EqualError(t, err, "usage error at name: field is not set")
	require.NotEmpty(t, errors.Hints(err))

	_, err = rec.Get("name")
	require.ErrorIs(t, err, errors.ErrUsage)

	require.NoError(t, rec.Set("name", "a"))
	data, err := rec.Build()
	require.NoError(t, err)
	require.Equal(t, []byte("\x01a\x05\x00\x00\x00\x00\x00\x00\x00\x01"), data)

	// defaults are used once the field is unset
	require.NoError(t, rec.Unset("balance"))
	data, err = rec.Build()
	require.NoError(t, err)
	require.Equal(t, []byte("\x01a\x64\x00\x00\x00\x00\x00\x00\x00\x01"), data)

	balance, err := rec.Get("balance")
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)

	require.ErrorIs(t, rec.Unset("unknown"), errors.ErrUsage)
}

func TestUnknownField(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)
	s := definePerson(t, r)

	_, err := s.New(map[string]any{"nmae": "Bob"})
	require.ErrorIs(t, err, errors.ErrUsage)
	require.Contains(t, err.Error(), `unknown field "nmae" in record Person`)
	require.Equal(t, `did you mean "name"?`, errors.Hints(err))

	rec, err := s.New(nil)
	require.NoError(t, err)

	err = rec.Set("zzzzzzzz", 1)
	require.ErrorIs(t, err, errors.ErrUsage)
	require.Empty(t, errors.Hints(err))

	_, err = rec.Get("agee")
	require.ErrorIs(t, err, errors.ErrUsage)
	require.Equal(t, `did you mean "age"?`, errors.Hints(err))
}

func TestSetNormalizes(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)
	s := definePerson(t, r)

	rec, err := s.New(nil)
	require.NoError(t, err)

	require.NoError(t, rec.Set("age", uint16(25)))
	age, err := rec.Get("age")
	require.NoError(t, err)
	require.Equal(t, int8(25), age)

	err = rec.Set("age", 300)
	require.ErrorIs(t, err, errors.ErrUsage)
	require.Contains(t, err.Error(), "usage error at age")
	require.Equal(t, "use int16", errors.Hints(err))

	// a failed Set leaves the previous value
	age, err = rec.Get("age")
	require.NoError(t, err)
	require.Equal(t, int8(25), age)

	err = rec.Set("name", 42)
	require.ErrorIs(t, err, errors.ErrUsage)
}

func TestDefine(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)
	definePerson(t, r)

	tests := []struct {
		name   string
		record string
		fields []record.Field
		target error
	}{
		{"reserved name", "int8", []record.Field{record.NewField("a", types.Int8)}, errors.ErrUsage},
		{"reserved alias", "Double", []record.Field{record.NewField("a", types.Int8)}, errors.ErrUsage},
		{"empty name", "", []record.Field{record.NewField("a", types.Int8)}, errors.ErrUsage},
		{"invalid name", "my-record", []record.Field{record.NewField("a", types.Int8)}, errors.ErrUsage},
		{"already defined", "Person", []record.Field{record.NewField("a", types.Int8)}, errors.ErrUsage},
		{"no fields", "Empty", nil, errors.ErrUsage},
		{"empty field name", "R", []record.Field{record.NewField("", types.Int8)}, errors.ErrUsage},
		{"invalid field name", "R", []record.Field{record.NewField("a.b", types.Int8)}, errors.ErrUsage},
		{"duplicate field", "R", []record.Field{record.NewField("a", types.Int8), record.NewField("a", types.Int16)}, errors.ErrUsage},
		{"ignore not last", "R", []record.Field{record.NewField("a", types.Ignore), record.NewField("b", types.Int8)}, errors.ErrUsage},
		{"invalid type", "R", []record.Field{record.NewField("a", types.Type{Kind: types.KindArray})}, errors.ErrUsage},
		{"unknown record", "R", []record.Field{record.NewField("a", types.Record("Pet"))}, errors.ErrLookup},
		{"self reference", "Node", []record.Field{record.NewField("next", types.Vector(types.Record("Node")))}, errors.ErrLookup},
		{"invalid default", "R", []record.Field{record.NewField("a", types.Int8).WithDefault(1000)}, errors.ErrUsage},
		{"ignore only", "R", []record.Field{record.NewField("a", types.Int8), record.NewField("v", types.Vector(types.Record("OnlyIgnore")))}, errors.ErrLookup},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, err := record.Define(r, test.record, test.fields...)
			require.ErrorIs(t, err, test.target)
			require.Nil(t, s)
		})
	}

	// failed definitions are not registered
	_, err := r.Resolve(types.Record("R"))
	require.ErrorIs(t, err, errors.ErrLookup)

	_, err = r.Resolve(types.Record("Node"))
	require.ErrorIs(t, err, errors.ErrLookup)
}

func TestLargeMinSize(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)

	large := types.Array(types.Int64, math.MaxInt/8)
	s, err := record.Define(r, "Large",
		record.NewField("a", large),
		record.NewField("b", large),
	)
	require.NoError(t, err)
	require.Equal(t, math.MaxInt, s.MinSize())

	rec, n, err := s.ParseWithSize([]byte{1, 2, 3})
	require.ErrorIs(t, err, errors.ErrDecoding)
	require.Nil(t, rec)
	require.Zero(t, n)

	c, err := r.Resolve(types.Vector(types.Record("Large")))
	require.NoError(t, err)
	v, n, err := c.ParseWithSize([]byte{0xff, 0xff, 0xff, 0xff, 1})
	require.ErrorIs(t, err, errors.ErrDecoding)
	require.Nil(t, v)
	require.Zero(t, n)
}

func TestIgnoreAndNull(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)

	s, err := record.Define(r, "Header",
		record.NewField("version", types.Int8),
		record.NewField("reserved", types.Null),
		record.NewField("rest", types.Ignore),
	)
	require.NoError(t, err)
	require.Equal(t, 2, s.MinSize())

	rec, err := s.New(map[string]any{"version": 2, "reserved": nil, "rest": "whatever"})
	require.NoError(t, err)

	data, err := rec.Build()
	require.NoError(t, err)
	require.Equal(t, []byte("\x02\x00\x00"), data)

	got, n, err := s.ParseWithSize([]byte("\x02\x00payload to skip"))
	require.NoError(t, err)
	require.Equal(t, 17, n)
	require.True(t, rec.Equal(got))

	// a record that can be encoded in zero bytes cannot be a composite element
	_, err = record.Define(r, "OnlyIgnore", record.NewField("rest", types.Ignore))
	require.NoError(t, err)
	_, err = r.Resolve(types.Vector(types.Record("OnlyIgnore")))
	require.ErrorIs(t, err, errors.ErrUsage)
}

func TestEqual(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)
	s := definePerson(t, r)

	other, err := record.Define(r, "Other",
		record.NewField("name", types.Varchar),
		record.NewField("age", types.Int8),
		record.NewField("id", types.Int64),
	)
	require.NoError(t, err)

	values := map[string]any{"name": "Bob", "age": 25, "id": 1}

	a, err := s.New(values)
	require.NoError(t, err)
	b, err := s.New(values)
	require.NoError(t, err)
	c, err := other.New(values)
	require.NoError(t, err)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(nil))

	require.NoError(t, b.Set("id", 2))
	require.False(t, a.Equal(b))

	require.NoError(t, b.Unset("id"))
	require.False(t, a.Equal(b))
}

func TestString(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)
	s := definePerson(t, r)

	_, err := record.Define(r, "Team",
		record.NewField("members", types.Vector(types.Record("Person"))),
		record.NewField("score", types.Float32),
		record.NewField("lead", types.Record("Person")),
	)
	require.NoError(t, err)

	rec, err := s.New(map[string]any{"name": "Bob", "age": 25})
	require.NoError(t, err)
	require.Equal(t, `Person{name: "Bob", age: 25, id: <unset>}`, rec.String())

	require.NoError(t, rec.Set("id", 7))

	team, err := r.Resolve(types.Record("Team"))
	require.NoError(t, err)
	v, err := codec.Parse(team, mustBuild(t, team, map[string]any{
		"members": []any{rec, rec},
		"score":   1.5,
		"lead":    rec,
	}))
	require.NoError(t, err)
	require.Equal(t,
		`Team{members: [Person{name: "Bob", age: 25, id: 7}, Person{name: "Bob", age: 25, id: 7}], score: 1.5, lead: Person{name: "Bob", age: 25, id: 7}}`,
		v.(*record.Record).String(),
	)
}

func mustBuild(t *testing.T, c codec.Codec, v any) []byte {
	t.Helper()

	data, err := codec.Build(c, v)
	require.NoError(t, err)
	return data
}

func TestSchemaAccessors(t *testing.T) {
	r := codec.NewDefaultRegistry(nil)
	s := definePerson(t, r)

	require.Equal(t, "Person", s.Name())
	require.Equal(t, "Person", s.Type().String())
	require.Equal(t, 3, s.NumFields())
	require.Equal(t, 1+1+8, s.MinSize())

	f, ok := s.Field("age")
	require.True(t, ok)
	require.Equal(t, types.Int8, f.Type)

	_, ok = s.Field("unknown")
	require.False(t, ok)

	fields := s.Fields()
	fields[0].Name = "changed"
	f, ok = s.Field("name")
	require.True(t, ok)
	require.Equal(t, "name", f.Name)

	c, err := r.Resolve(types.Record("Person"))
	require.NoError(t, err)
	require.Equal(t, s.MinSize(), c.MinSize())
	require.Equal(t, s.Type(), s.Codec().Type())
}
