package types

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/chaisql/binrec/internal/errors"
)

// builtins maps every reserved type name to its kind.
// Aliases resolve to the same kind as their canonical name.
var builtins = map[string]Kind{
	"int8":        KindInt8,
	"byte":        KindInt8,
	"int16":       KindInt16,
	"short":       KindInt16,
	"int32":       KindInt32,
	"int":         KindInt32,
	"int64":       KindInt64,
	"long":        KindInt64,
	"float16":     KindFloat16,
	"half":        KindFloat16,
	"float32":     KindFloat32,
	"float":       KindFloat32,
	"float64":     KindFloat64,
	"double":      KindFloat64,
	"bool":        KindBool,
	"char":        KindChar,
	"varchar":     KindVarchar,
	"fixedstring": KindFixedString,
	"string":      KindString,
	"str":         KindString,
	"array":       KindArray,
	"vector":      KindVector,
	"record":      KindRecord,
	"null":        KindNull,
	"ignore":      KindIgnore,
}

// IsReserved returns true if name is a builtin type name or alias.
// Records cannot use reserved names.
func IsReserved(name string) bool {
	_, ok := builtins[strings.ToLower(name)]
	return ok
}

// Parse reads a type from its textual representation:
//
//	type := name | name '[' args ']'
//
// e.g. "int8", "fixedstring[5]", "array[varchar, 3]", "vector[Person]".
// Names that are not builtin types are record references.
func Parse(s string) (Type, error) {
	p := parser{s: s}

	t, err := p.parseType()
	if err != nil {
		return Type{}, err
	}

	p.skipSpaces()
	if p.pos != len(p.s) {
		return Type{}, p.errorf("unexpected %q", p.s[p.pos:])
	}

	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return t
}

type parser struct {
	s   string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	err := errors.Usagef(format, args...)
	return errors.WithPath(err, strconv.Quote(p.s))
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) accept(c byte) bool {
	p.skipSpaces()
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}

	return false
}

func (p *parser) expect(c byte) error {
	if !p.accept(c) {
		return p.errorf("expected %q at position %d", c, p.pos)
	}

	return nil
}

func (p *parser) scanWhile(fn func(r rune) bool) string {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.s) && fn(rune(p.s[p.pos])) {
		p.pos++
	}

	return p.s[start:p.pos]
}

func (p *parser) parseIdent() (string, error) {
	name := p.scanWhile(func(r rune) bool {
		return r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	if name == "" || unicode.IsDigit(rune(name[0])) {
		return "", p.errorf("expected a type name at position %d", p.pos)
	}

	return name, nil
}

func (p *parser) parseLength() (int, error) {
	digits := p.scanWhile(func(r rune) bool { return r >= '0' && r <= '9' })
	if digits == "" {
		return 0, p.errorf("expected a length at position %d", p.pos)
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, p.errorf("invalid length %q", digits)
	}

	return n, nil
}

func (p *parser) parseType() (Type, error) {
	name, err := p.parseIdent()
	if err != nil {
		return Type{}, err
	}

	kind, ok := builtins[strings.ToLower(name)]
	if !ok {
		return Record(name), nil
	}

	switch kind {
	case KindFixedString:
		if !p.accept('[') {
			return Type{Kind: KindFixedString}, nil
		}
		n, err := p.parseLength()
		if err != nil {
			return Type{}, err
		}
		return FixedString(n), p.expect(']')
	case KindArray:
		if !p.accept('[') {
			return Type{Kind: KindArray}, nil
		}
		elem, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(','); err != nil {
			return Type{}, err
		}
		n, err := p.parseLength()
		if err != nil {
			return Type{}, err
		}
		return Array(elem, n), p.expect(']')
	case KindVector:
		if !p.accept('[') {
			return Type{Kind: KindVector}, nil
		}
		elem, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		return Vector(elem), p.expect(']')
	case KindRecord:
		if !p.accept('[') {
			return Type{Kind: KindRecord}, nil
		}
		name, err := p.parseIdent()
		if err != nil {
			return Type{}, err
		}
		return Record(name), p.expect(']')
	}

	return Type{Kind: kind}, nil
}
