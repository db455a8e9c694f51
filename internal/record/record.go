package record

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/chaisql/binrec/internal/errors"
	"golang.org/x/exp/maps"
)

// A Record holds the values of the fields of a schema.
// Values are checked and normalized when they are set: a value read
// from a record always has the type the field would be parsed as,
// e.g. int32 for an int32 field set with an int.
type Record struct {
	schema *Schema
	values []any
	set    []bool
}

func (s *Schema) newRecord() *Record {
	return &Record{
		schema: s,
		values: make([]any, len(s.fields)),
		set:    make([]bool, len(s.fields)),
	}
}

// New returns a record with the given field values.
// Fields missing from values are left unset.
// It returns a usage error if a key is not a field of the schema or
// if a value cannot be encoded with the type of its field.
func (s *Schema) New(values map[string]any) (*Record, error) {
	rec := s.newRecord()

	keys := maps.Keys(values)
	slices.Sort(keys)

	for _, k := range keys {
		if err := rec.Set(k, values[k]); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

func (s *Schema) fieldIndex(name string) (int, error) {
	if i, ok := s.index[name]; ok {
		return i, nil
	}

	err := errors.Usagef("unknown field %q in record %s", name, s.name)
	if suggestion := s.closestField(name); suggestion != "" {
		err = errors.WithHintf(err, "did you mean %q?", suggestion)
	}

	return 0, err
}

// FieldByName returns the field with the given name.
// Unlike Field, it returns a usage error suggesting the closest field name
// if there is no such field.
func (s *Schema) FieldByName(name string) (Field, error) {
	i, err := s.fieldIndex(name)
	if err != nil {
		return Field{}, err
	}

	return s.fields[i], nil
}

// closestField returns the name of the field closest to name, if it is close enough.
func (s *Schema) closestField(name string) string {
	var best string
	bestDist := -1

	for _, f := range s.fields {
		d := levenshtein.ComputeDistance(f.Name, name)
		if d > len(f.Name)/2 {
			continue
		}
		if bestDist == -1 || d < bestDist {
			best, bestDist = f.Name, d
		}
	}

	return best
}

// Schema returns the schema of the record.
func (r *Record) Schema() *Schema {
	return r.schema
}

// Set the value of a field.
// Nested records can be set using a *Record or a map[string]any.
func (r *Record) Set(name string, v any) error {
	i, err := r.schema.fieldIndex(name)
	if err != nil {
		return err
	}

	v, err = canonical(r.schema.codecs[i], v)
	if err != nil {
		return errors.WithPath(err, name)
	}

	r.values[i] = v
	r.set[i] = true
	return nil
}

// Get returns the value of a field, or its default value if the field is not set.
// It returns a usage error if the field doesn't exist or is neither set nor defaulted.
func (r *Record) Get(name string) (any, error) {
	i, err := r.schema.fieldIndex(name)
	if err != nil {
		return nil, err
	}

	if v, ok := r.value(i); ok {
		return v, nil
	}

	return nil, errors.WithPath(errors.Usagef("field is not set"), name)
}

func (r *Record) value(i int) (any, bool) {
	if r.set[i] {
		return r.values[i], true
	}

	if f := r.schema.fields[i]; f.HasDefault {
		return f.Default, true
	}

	return nil, false
}

// IsSet returns true if the field was explicitly set.
func (r *Record) IsSet(name string) bool {
	i, ok := r.schema.index[name]
	return ok && r.set[i]
}

// Unset removes the value of a field.
func (r *Record) Unset(name string) error {
	i, err := r.schema.fieldIndex(name)
	if err != nil {
		return err
	}

	r.values[i] = nil
	r.set[i] = false
	return nil
}

// Build encodes the fields of the record in declaration order.
// Unset fields are encoded using their default value, if any,
// otherwise Build returns a usage error.
func (r *Record) Build() ([]byte, error) {
	return r.schema.Build(r)
}

// Equal compares the records field by field.
// Records of different schemas are never equal.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}

	if r.schema != other.schema {
		return false
	}

	for i := range r.values {
		a, aok := r.value(i)
		b, bok := other.value(i)
		if aok != bok || !valuesEqual(a, b) {
			return false
		}
	}

	return true
}

func valuesEqual(a, b any) bool {
	switch x := a.(type) {
	case *Record:
		y, ok := b.(*Record)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valuesEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	}

	return a == b
}

// Map returns the values of the record, including default values, keyed by field name.
// Nested records are returned as maps. Fields neither set nor defaulted are omitted.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))

	for i, f := range r.schema.fields {
		if v, ok := r.value(i); ok {
			m[f.Name] = toPlain(v)
		}
	}

	return m
}

func toPlain(v any) any {
	switch x := v.(type) {
	case *Record:
		return x.Map()
	case []any:
		l := make([]any, len(x))
		for i := range x {
			l[i] = toPlain(x[i])
		}
		return l
	}

	return v
}

// String returns a representation of the record, e.g. Person{name: "Bob", age: 25}.
func (r *Record) String() string {
	var sb strings.Builder
	r.writeTo(&sb)
	return sb.String()
}

func (r *Record) writeTo(sb *strings.Builder) {
	sb.WriteString(r.schema.name)
	sb.WriteByte('{')

	for i, f := range r.schema.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(": ")

		v, ok := r.value(i)
		if !ok {
			sb.WriteString("<unset>")
			continue
		}
		writeValue(sb, v)
	}

	sb.WriteByte('}')
}

func writeValue(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("null")
	case string:
		sb.WriteString(strconv.Quote(x))
	case *Record:
		x.writeTo(sb)
	case []any:
		sb.WriteByte('[')
		for i := range x {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, x[i])
		}
		sb.WriteByte(']')
	default:
		b, err := appendJSON(nil, v)
		if err != nil {
			fmt.Fprint(sb, v)
			return
		}
		sb.Write(b)
	}
}
