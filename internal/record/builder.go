package record

import (
	"github.com/chaisql/binrec/internal/codec"
	"github.com/chaisql/binrec/internal/types"
)

// A Builder collects the fields of a record before defining it.
//
//	s, err := record.NewBuilder("Person").
//		Field("name", types.Varchar).
//		FieldWithDefault("age", types.Int8, 0).
//		Define(r)
type Builder struct {
	name   string
	fields []Field
}

// NewBuilder returns a builder for the record with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Field appends a field.
func (b *Builder) Field(name string, t types.Type) *Builder {
	b.fields = append(b.fields, NewField(name, t))
	return b
}

// FieldWithDefault appends a field with a default value.
func (b *Builder) FieldWithDefault(name string, t types.Type, v any) *Builder {
	b.fields = append(b.fields, NewField(name, t).WithDefault(v))
	return b
}

// Define calls Define with the collected fields.
func (b *Builder) Define(r *codec.Registry) (*Schema, error) {
	return Define(r, b.name, b.fields...)
}
