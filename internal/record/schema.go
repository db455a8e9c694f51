// Package record defines named records: ordered lists of typed fields that are
// encoded back to back, in declaration order, without any header.
//
// A record schema is defined once against a codec.Registry, which validates
// every field, resolves its codec and registers the record so that other records,
// arrays and vectors can reference it by name.
package record

import (
	"math"
	"unicode"

	"github.com/chaisql/binrec/internal/codec"
	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/types"
	"go.uber.org/zap"
)

// A Field is a named and typed member of a record.
type Field struct {
	Name string
	Type types.Type
	// Default is encoded when the field is not set.
	// It is only used when HasDefault is true.
	Default    any
	HasDefault bool
}

// NewField returns a field without default.
func NewField(name string, t types.Type) Field {
	return Field{Name: name, Type: t}
}

// WithDefault returns a copy of f using v as default value.
func (f Field) WithDefault(v any) Field {
	f.Default = v
	f.HasDefault = true
	return f
}

// A Schema describes the fields of a record.
// Schemas are immutable and safe for concurrent use.
type Schema struct {
	name    string
	fields  []Field
	codecs  []codec.Codec
	index   map[string]int
	minSize int
}

// Define validates the fields, resolves their codecs using r and registers
// the record under types.Record(name).
// Fields may only reference records that were already defined.
func Define(r *codec.Registry, name string, fields ...Field) (*Schema, error) {
	if err := validateRecordName(name); err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, errors.Usagef("record %s has no fields", name)
	}

	s := Schema{
		name:   name,
		fields: make([]Field, len(fields)),
		codecs: make([]codec.Codec, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)

	for i := range s.fields {
		f := &s.fields[i]

		if !isIdent(f.Name) {
			return nil, errors.Usagef("record %s: invalid field name %q", name, f.Name)
		}
		if _, ok := s.index[f.Name]; ok {
			return nil, errors.Usagef("record %s: duplicate field %q", name, f.Name)
		}
		if f.Type.Kind == types.KindIgnore && i != len(s.fields)-1 {
			return nil, errors.WithPath(errors.Usagef("ignore must be the last field of record %s", name), f.Name)
		}

		c, err := r.Resolve(f.Type)
		if err != nil {
			return nil, errors.WithPath(err, f.Name)
		}

		if f.HasDefault {
			f.Default, err = canonical(c, f.Default)
			if err != nil {
				return nil, errors.WithPath(err, f.Name)
			}
		}

		s.index[f.Name] = i
		s.codecs[i] = c
		if s.minSize > math.MaxInt-c.MinSize() {
			s.minSize = math.MaxInt
		} else {
			s.minSize += c.MinSize()
		}
	}

	if err := r.Register(s.Type(), &recordCodec{s: &s}); err != nil {
		return nil, err
	}

	r.Logger().Debug("record defined", zap.String("record", name), zap.Int("fields", len(s.fields)))

	return &s, nil
}

func validateRecordName(name string) error {
	if types.IsReserved(name) {
		return errors.WithHintf(
			errors.Usagef("record name %q is a builtin type name", name),
			"choose another name",
		)
	}

	if !isIdent(name) {
		return errors.Usagef("invalid record name %q", name)
	}

	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', r < unicode.MaxASCII && unicode.IsLetter(r):
		case i > 0 && r < unicode.MaxASCII && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return true
}

// Name of the record.
func (s *Schema) Name() string {
	return s.name
}

// Type returns the descriptor referencing the record.
func (s *Schema) Type() types.Type {
	return types.Record(s.name)
}

// Fields returns a copy of the fields, in declaration order.
func (s *Schema) Fields() []Field {
	fields := make([]Field, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// NumFields returns the number of fields.
func (s *Schema) NumFields() int {
	return len(s.fields)
}

// Field returns the field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}

	return s.fields[i], true
}

// MinSize returns the smallest number of bytes an encoded record can occupy.
func (s *Schema) MinSize() int {
	return s.minSize
}

// Codec returns the codec registered for the record.
func (s *Schema) Codec() codec.Codec {
	return &recordCodec{s: s}
}

// Build returns the encoding of rec. See Record.Build.
func (s *Schema) Build(rec *Record) ([]byte, error) {
	return s.append(nil, rec)
}

// Parse decodes a record from the start of src.
func (s *Schema) Parse(src []byte) (*Record, error) {
	rec, _, err := s.ParseWithSize(src)
	return rec, err
}

// ParseWithSize decodes a record from the start of src and returns the
// number of bytes it occupied. Trailing bytes are ignored.
func (s *Schema) ParseWithSize(src []byte) (*Record, int, error) {
	rec := s.newRecord()

	var off int
	for i, c := range s.codecs {
		v, n, err := c.ParseWithSize(src[off:])
		if err != nil {
			return nil, 0, errors.WithPath(err, s.fields[i].Name)
		}

		rec.values[i] = v
		rec.set[i] = true
		off += n
	}

	return rec, off, nil
}

func (s *Schema) append(dst []byte, rec *Record) ([]byte, error) {
	if rec == nil {
		return nil, errors.Usagef("cannot build record %s from nil", s.name)
	}
	if rec.schema != s {
		return nil, errors.Usagef("cannot build record %s from a %s record", s.name, rec.schema.name)
	}

	var err error
	for i, f := range s.fields {
		v := rec.values[i]
		if !rec.set[i] {
			if !f.HasDefault {
				return nil, errors.WithPath(
					errors.WithHintf(errors.Usagef("field is not set"), "set the field or declare a default value"),
					f.Name,
				)
			}
			v = f.Default
		}

		dst, err = s.codecs[i].Build(dst, v)
		if err != nil {
			return nil, errors.WithPath(err, f.Name)
		}
	}

	return dst, nil
}

// recordCodec exposes a schema to the registry.
// It builds *Record values of the same schema and map[string]any values,
// and parses *Record values.
type recordCodec struct {
	s *Schema
}

func (c *recordCodec) Type() types.Type { return c.s.Type() }
func (c *recordCodec) MinSize() int     { return c.s.minSize }

func (c *recordCodec) Build(dst []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case *Record:
		return c.s.append(dst, x)
	case map[string]any:
		rec, err := c.s.New(x)
		if err != nil {
			return nil, err
		}
		return c.s.append(dst, rec)
	}

	return nil, errors.Usagef("cannot build record %s from %T", c.s.name, v)
}

func (c *recordCodec) ParseWithSize(src []byte) (any, int, error) {
	rec, n, err := c.s.ParseWithSize(src)
	if err != nil {
		return nil, 0, err
	}

	return rec, n, nil
}

// SchemaOf returns the schema of a record codec.
func SchemaOf(c codec.Codec) (*Schema, bool) {
	rc, ok := c.(*recordCodec)
	if !ok {
		return nil, false
	}

	return rc.s, true
}

// canonical returns v as it would be parsed back after being built with c.
func canonical(c codec.Codec, v any) (any, error) {
	b, err := c.Build(nil, v)
	if err != nil {
		return nil, err
	}

	v, _, err = c.ParseWithSize(b)
	return v, err
}
