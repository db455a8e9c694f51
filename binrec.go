package binrec

import (
	"github.com/chaisql/binrec/internal/codec"
	"github.com/chaisql/binrec/internal/record"
	"github.com/chaisql/binrec/internal/schema"
	"github.com/chaisql/binrec/internal/types"
	"go.uber.org/zap"
)

type (
	// Type describes how a value is encoded.
	Type = types.Type
	// Kind is the family of a Type.
	Kind = types.Kind
	// Codec builds and parses the values of one Type.
	Codec = codec.Codec
	// Registry maps types to codecs.
	Registry = codec.Registry
	// Schema describes the fields of a record.
	Schema = record.Schema
	// Record is a set of values bound to a Schema.
	Record = record.Record
	// Field is a named and typed member of a record.
	Field = record.Field
	// Builder defines a record schema field by field.
	Builder = record.Builder
)

var (
	Int8    = types.Int8
	Int16   = types.Int16
	Int32   = types.Int32
	Int     = types.Int
	Int64   = types.Int64
	Float16 = types.Float16
	Float32 = types.Float32
	Float64 = types.Float64
	Bool    = types.Bool
	Char    = types.Char
	Varchar = types.Varchar
	String  = types.String
	Null    = types.Null
	Ignore  = types.Ignore
)

// FixedString returns the type of strings of exactly n bytes.
func FixedString(n int) Type { return types.FixedString(n) }

// Array returns the type of sequences of exactly n elements of type elem.
func Array(elem Type, n int) Type { return types.Array(elem, n) }

// Vector returns the type of length-prefixed sequences of elements of type elem.
func Vector(elem Type) Type { return types.Vector(elem) }

// RecordType returns the type referencing the record called name.
func RecordType(name string) Type { return types.Record(name) }

// ParseType parses the textual form of a type, e.g. "vector[array[int8,3]]".
func ParseType(s string) (Type, error) { return types.Parse(s) }

// NewField returns a field without default value.
func NewField(name string, t Type) Field { return record.NewField(name, t) }

// NewBuilder returns a builder for the record called name.
func NewBuilder(name string) *Builder { return record.NewBuilder(name) }

// NewRegistry returns a registry where every builtin type is registered.
// Most programs use the default registry through the package functions.
func NewRegistry(logger *zap.Logger) *Registry {
	return codec.NewDefaultRegistry(&codec.Options{Logger: logger})
}

var defaultRegistry = codec.NewDefaultRegistry(nil)

// DefaultRegistry returns the registry used by the package functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// SetLogger sets the logger of the default registry.
func SetLogger(logger *zap.Logger) {
	defaultRegistry.SetLogger(logger)
}

// Define defines a record in the default registry.
// Fields may only reference records that were already defined.
func Define(name string, fields ...Field) (*Schema, error) {
	return record.Define(defaultRegistry, name, fields...)
}

// LoadSchema defines the records of the JSON schema file at path in the
// default registry, in file order.
func LoadSchema(path string) ([]*Schema, error) {
	return schema.LoadFile(defaultRegistry, path)
}

// Register associates a custom codec with the exact type t in the default registry.
func Register(t Type, c Codec) error {
	return defaultRegistry.Register(t, c)
}

// Resolve returns the codec of t from the default registry.
func Resolve(t Type) (Codec, error) {
	return defaultRegistry.Resolve(t)
}

// Freeze makes the default registry read-only.
// Defining records or registering codecs afterwards fails.
func Freeze() {
	defaultRegistry.Freeze()
}

// Build returns the encoding of v as a value of type t.
func Build(t Type, v any) ([]byte, error) {
	c, err := defaultRegistry.Resolve(t)
	if err != nil {
		return nil, err
	}

	return codec.Build(c, v)
}

// Parse decodes a value of type t from the start of src.
func Parse(t Type, src []byte) (any, error) {
	v, _, err := ParseWithSize(t, src)
	return v, err
}

// MarshalJSON returns the JSON representation of a parsed value.
func MarshalJSON(v any) ([]byte, error) {
	return record.AppendJSON(nil, v)
}

// ParseWithSize decodes a value of type t from the start of src and
// returns the number of bytes it occupied.
func ParseWithSize(t Type, src []byte) (any, int, error) {
	c, err := defaultRegistry.Resolve(t)
	if err != nil {
		return nil, 0, err
	}

	return c.ParseWithSize(src)
}
