package schema

import (
	"strconv"

	"github.com/buger/jsonparser"
	"github.com/chaisql/binrec/internal/codec"
	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/record"
	"github.com/chaisql/binrec/internal/types"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

// ValueFromJSON converts a JSON document to a value of type t.
// Records are resolved in r.
func ValueFromJSON(r *codec.Registry, t types.Type, data []byte) (any, error) {
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, errors.Usagef("invalid JSON: %v", err)
	}

	return convert(r, t, value, dataType)
}

// RecordFromJSON converts a JSON object to a record of s.
// Keys set to null are left unset.
func RecordFromJSON(r *codec.Registry, s *record.Schema, data []byte) (*record.Record, error) {
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, errors.Usagef("invalid JSON: %v", err)
	}

	return recordFromJSON(r, s, value, dataType)
}

func recordFromJSON(r *codec.Registry, s *record.Schema, data []byte, dataType jsonparser.ValueType) (*record.Record, error) {
	if dataType != jsonparser.Object {
		return nil, errors.Usagef("record %s must be a JSON object, got %s", s.Name(), dataType)
	}

	rec, err := s.New(nil)
	if err != nil {
		return nil, err
	}

	err = jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		f, err := s.FieldByName(string(key))
		if err != nil {
			return err
		}

		if dataType == jsonparser.Null && f.Type.Kind != types.KindNull {
			return nil
		}

		v, err := convert(r, f.Type, value, dataType)
		if err != nil {
			return errors.WithPath(err, f.Name)
		}

		return rec.Set(f.Name, v)
	})
	if err != nil {
		if errors.KindOf(err) == 0 {
			return nil, errors.Usagef("invalid JSON object: %v", err)
		}
		return nil, err
	}

	return rec, nil
}

func convert(r *codec.Registry, t types.Type, data []byte, dataType jsonparser.ValueType) (any, error) {
	mismatch := func() error {
		return errors.Usagef("cannot convert JSON %s to %s", dataType, t)
	}

	switch t.Kind {
	case types.KindIgnore:
		return nil, nil
	case types.KindNull:
		if dataType != jsonparser.Null {
			return nil, mismatch()
		}
		return nil, nil
	case types.KindInt8, types.KindInt16, types.KindInt32, types.KindInt64:
		if dataType != jsonparser.Number {
			return nil, mismatch()
		}
		i, err := jsonparser.ParseInt(data)
		if err != nil {
			return nil, errors.Usagef("invalid integer %s for %s", data, t)
		}
		return i, nil
	case types.KindFloat16, types.KindFloat32, types.KindFloat64:
		if dataType != jsonparser.Number {
			return nil, mismatch()
		}
		f, err := jsonparser.ParseFloat(data)
		if err != nil {
			return nil, errors.Usagef("invalid number %s for %s", data, t)
		}
		return f, nil
	case types.KindBool:
		if dataType != jsonparser.Boolean {
			return nil, mismatch()
		}
		return jsonparser.ParseBoolean(data)
	case types.KindChar, types.KindVarchar, types.KindFixedString, types.KindString:
		if dataType != jsonparser.String {
			return nil, mismatch()
		}
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return nil, errors.Usagef("invalid string for %s: %v", t, err)
		}
		return s, nil
	case types.KindArray, types.KindVector:
		if dataType != jsonparser.Array {
			return nil, mismatch()
		}
		return convertArray(r, t, data)
	case types.KindRecord:
		c, err := r.Resolve(t)
		if err != nil {
			return nil, err
		}
		s, ok := record.SchemaOf(c)
		if !ok {
			return nil, errors.Lookupf("%s is not a record", t)
		}
		return recordFromJSON(r, s, data, dataType)
	}

	return nil, errors.Usagef("unsupported type %s", t)
}

func convertArray(r *codec.Registry, t types.Type, data []byte) ([]any, error) {
	values := []any{}
	var ferr error

	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if ferr != nil {
			return
		}
		if err != nil {
			ferr = errors.Usagef("invalid JSON array: %v", err)
			return
		}

		v, err := convert(r, *t.Elem, value, dataType)
		if err != nil {
			ferr = errors.WithPath(err, "["+itoa(len(values))+"]")
			return
		}

		values = append(values, v)
	})
	if ferr != nil {
		return nil, ferr
	}
	if err != nil {
		return nil, errors.Usagef("invalid JSON array: %v", err)
	}

	return values, nil
}
