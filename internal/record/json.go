package record

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/chaisql/binrec/internal/errors"
)

// MarshalJSON implements the json.Marshaler interface.
// Fields are written in declaration order, fields neither set nor
// defaulted are omitted.
func (r *Record) MarshalJSON() ([]byte, error) {
	return r.appendJSON(nil)
}

func (r *Record) appendJSON(buf []byte) ([]byte, error) {
	var err error

	buf = append(buf, '{')
	first := true
	for i, f := range r.schema.fields {
		v, ok := r.value(i)
		if !ok {
			continue
		}

		if !first {
			buf = append(buf, ',')
		}
		first = false

		buf, err = appendJSONString(buf, f.Name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, ':')

		buf, err = appendJSON(buf, v)
		if err != nil {
			return nil, errors.WithPath(err, f.Name)
		}
	}

	return append(buf, '}'), nil
}

// AppendJSON appends the JSON representation of a parsed value to buf.
func AppendJSON(buf []byte, v any) ([]byte, error) {
	return appendJSON(buf, v)
}

func appendJSON(buf []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return append(buf, "null"...), nil
	case bool:
		return strconv.AppendBool(buf, x), nil
	case int8:
		return strconv.AppendInt(buf, int64(x), 10), nil
	case int16:
		return strconv.AppendInt(buf, int64(x), 10), nil
	case int32:
		return strconv.AppendInt(buf, int64(x), 10), nil
	case int64:
		return strconv.AppendInt(buf, x, 10), nil
	case float32:
		return appendJSONFloat(buf, float64(x), 32)
	case float64:
		return appendJSONFloat(buf, x, 64)
	case string:
		return appendJSONString(buf, x)
	case *Record:
		return x.appendJSON(buf)
	case []any:
		var err error

		buf = append(buf, '[')
		for i := range x {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf, err = appendJSON(buf, x[i])
			if err != nil {
				return nil, errors.WithPath(err, "["+strconv.Itoa(i)+"]")
			}
		}
		return append(buf, ']'), nil
	}

	return nil, errors.Usagef("unexpected value of type %T", v)
}

func appendJSONFloat(buf []byte, f float64, bitSize int) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.Usagef("%v cannot be represented in JSON", f)
	}

	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}

	return strconv.AppendFloat(buf, f, format, -1, bitSize), nil
}

func appendJSONString(buf []byte, s string) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	return append(buf, b...), nil
}
