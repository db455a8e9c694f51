package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chaisql/binrec/internal/errors"
)

// Kind is the closed list of wire types.
type Kind uint8

// List of supported kinds.
const (
	// KindInvalid denotes the absence of kind
	KindInvalid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat16
	KindFloat32
	KindFloat64
	KindBool
	KindChar
	KindVarchar
	KindFixedString
	KindString
	KindArray
	KindVector
	KindRecord
	KindNull
	KindIgnore

	kindEnd
)

func (k Kind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat16:
		return "float16"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindVarchar:
		return "varchar"
	case KindFixedString:
		return "fixedstring"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindVector:
		return "vector"
	case KindRecord:
		return "record"
	case KindNull:
		return "null"
	case KindIgnore:
		return "ignore"
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsValid returns false for KindInvalid and unknown kinds.
func (k Kind) IsValid() bool {
	return k > KindInvalid && k < kindEnd
}

// IsParameterized returns true for the kinds whose descriptors carry metadata:
// a length, an element type or a record name.
func (k Kind) IsParameterized() bool {
	switch k {
	case KindFixedString, KindArray, KindVector, KindRecord:
		return true
	}

	return false
}

// IsComposite returns true for arrays and vectors.
func (k Kind) IsComposite() bool {
	return k == KindArray || k == KindVector
}

// Type describes how a field is encoded.
// Primitive types only set Kind, parameterized types also carry
// their metadata: Len for fixed strings and arrays, Elem for arrays and vectors,
// Name for records.
type Type struct {
	Kind Kind
	Len  int
	Elem *Type
	Name string
}

// Primitive and unparameterized types.
var (
	Int8    = Type{Kind: KindInt8}
	Int16   = Type{Kind: KindInt16}
	Int32   = Type{Kind: KindInt32}
	Int64   = Type{Kind: KindInt64}
	Float16 = Type{Kind: KindFloat16}
	Float32 = Type{Kind: KindFloat32}
	Float64 = Type{Kind: KindFloat64}
	Bool    = Type{Kind: KindBool}
	Char    = Type{Kind: KindChar}
	Varchar = Type{Kind: KindVarchar}
	String  = Type{Kind: KindString}
	Null    = Type{Kind: KindNull}
	Ignore  = Type{Kind: KindIgnore}

	// Int is the default integer type.
	Int = Int32
)

// FixedString returns the type of strings of exactly n bytes.
func FixedString(n int) Type {
	return Type{Kind: KindFixedString, Len: n}
}

// Array returns the type of sequences of exactly n elements of type elem.
func Array(elem Type, n int) Type {
	return Type{Kind: KindArray, Len: n, Elem: &elem}
}

// Vector returns the type of count-prefixed sequences of elements of type elem.
func Vector(elem Type) Type {
	return Type{Kind: KindVector, Elem: &elem}
}

// Record returns the type referencing the record defined with the given name.
func Record(name string) Type {
	return Type{Kind: KindRecord, Name: name}
}

// Generic returns the descriptor shared by every instance of a parameterized family,
// e.g. fixedstring for fixedstring[5]. Records and primitive types are their own generic.
func (t Type) Generic() Type {
	switch t.Kind {
	case KindFixedString, KindArray, KindVector:
		return Type{Kind: t.Kind}
	}

	return t
}

// IsGeneric returns true if t is the unparameterized form of a parameterized family.
func (t Type) IsGeneric() bool {
	switch t.Kind {
	case KindFixedString:
		return t.Len <= 0
	case KindArray:
		return t.Elem == nil || t.Len <= 0
	case KindVector:
		return t.Elem == nil
	case KindRecord:
		return t.Name == ""
	}

	return false
}

// String returns the canonical representation of t, which can be read back with Parse.
func (t Type) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t Type) write(sb *strings.Builder) {
	switch t.Kind {
	case KindFixedString:
		sb.WriteString("fixedstring")
		if t.Len > 0 {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(t.Len))
			sb.WriteByte(']')
		}
	case KindArray:
		sb.WriteString("array")
		if t.Elem != nil {
			sb.WriteByte('[')
			t.Elem.write(sb)
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(t.Len))
			sb.WriteByte(']')
		}
	case KindVector:
		sb.WriteString("vector")
		if t.Elem != nil {
			sb.WriteByte('[')
			t.Elem.write(sb)
			sb.WriteByte(']')
		}
	case KindRecord:
		if t.Name == "" {
			sb.WriteString("record")
			return
		}
		sb.WriteString(t.Name)
	default:
		sb.WriteString(t.Kind.String())
	}
}

// Equal compares the kind and the metadata of both types.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind || t.Len != other.Len || t.Name != other.Name {
		return false
	}

	if t.Elem == nil || other.Elem == nil {
		return t.Elem == other.Elem
	}

	return t.Elem.Equal(*other.Elem)
}

// Validate returns a usage error if t is not a valid type marker: unknown kind,
// generic family used without its parameters, or invalid element type.
func (t Type) Validate() error {
	if !t.Kind.IsValid() {
		return errors.Usagef("invalid wire type %s", t.Kind)
	}

	switch t.Kind {
	case KindFixedString:
		if t.Len <= 0 {
			return errors.WithHintf(errors.Usagef("length of fixedstring not specified"), "use fixedstring[N]")
		}
	case KindArray, KindVector:
		if t.Elem == nil {
			return errors.WithHintf(errors.Usagef("element type of %s not specified", t.Kind), "use %s", usage(t.Kind))
		}
		if t.Kind == KindArray && t.Len <= 0 {
			return errors.WithHintf(errors.Usagef("length of %s not specified", t.Kind), "use %s", usage(t.Kind))
		}
		if t.Elem.Kind == KindIgnore {
			return errors.Usagef("ignore cannot be used as the element type of %s", t.Kind)
		}
		return t.Elem.Validate()
	case KindRecord:
		if t.Name == "" {
			return errors.Usagef("record name not specified")
		}
		if IsReserved(t.Name) {
			return errors.Usagef("%q is a builtin type name, not a record", t.Name)
		}
	}

	return nil
}

func usage(k Kind) string {
	switch k {
	case KindArray:
		return "array[T,N]"
	case KindVector:
		return "vector[T]"
	case KindFixedString:
		return "fixedstring[N]"
	}

	return k.String()
}
