package codec

import (
	"math"
	"reflect"

	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/types"
)

func mismatch(t types.Type, v any) error {
	return errors.Usagef("cannot build %s from %T", t, v)
}

// toInt64 accepts any Go integer, including named integer types.
func toInt64(t types.Type, v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case nil:
		return 0, mismatch(t, v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, errors.Usagef("value %d out of range for %s", u, t)
		}
		return int64(u), nil
	}

	return 0, mismatch(t, v)
}

// toFloat64 accepts any Go float or integer.
func toFloat64(t types.Type, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case nil:
		return 0, mismatch(t, v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	}

	return 0, mismatch(t, v)
}

func toBool(t types.Type, v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}

	if v != nil {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	}

	return false, mismatch(t, v)
}

func toString(t types.Type, v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}

	if v != nil {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	}

	return "", mismatch(t, v)
}

// toElements accepts []any and any other slice or array.
func toElements(t types.Type, v any) ([]any, error) {
	if s, ok := v.([]any); ok {
		return s, nil
	}

	if v == nil {
		return nil, mismatch(t, v)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, mismatch(t, v)
	}

	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}

	return elems, nil
}
