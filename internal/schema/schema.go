// Package schema loads record definitions from JSON schema files
// and converts JSON documents to values that can be built by codecs.
//
// A schema file lists records in definition order:
//
//	{
//	  "records": [
//	    {"name": "Pet", "fields": [{"name": "name", "type": "varchar"}]},
//	    {"name": "Person", "fields": [
//	      {"name": "name", "type": "varchar"},
//	      {"name": "age", "type": "int8", "default": 0},
//	      {"name": "pets", "type": "vector[Pet]"}
//	    ]}
//	  ]
//	}
package schema

import (
	"os"

	"github.com/buger/jsonparser"
	"github.com/chaisql/binrec/internal/codec"
	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/record"
	"github.com/chaisql/binrec/internal/types"
	"go.uber.org/zap"
)

// LoadFile reads the schema file at path and defines its records in r.
func LoadFile(r *codec.Registry, path string) ([]*record.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	schemas, err := Load(r, data)
	if err != nil {
		return nil, err
	}

	r.Logger().Info("schema file loaded", zap.String("path", path), zap.Int("records", len(schemas)))
	return schemas, nil
}

// Load defines the records of a schema file in r, in file order.
// Records can only reference records defined before them.
func Load(r *codec.Registry, data []byte) ([]*record.Schema, error) {
	var schemas []*record.Schema
	var ferr error
	var i int

	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if ferr != nil {
			return
		}

		switch {
		case err != nil:
			ferr = errors.Usagef("invalid schema file: %v", err)
		case dataType != jsonparser.Object:
			ferr = errors.Usagef("expected a record object, got %s", dataType)
		default:
			var s *record.Schema
			s, ferr = defineRecord(r, value)
			if ferr == nil {
				schemas = append(schemas, s)
			}
		}

		ferr = errors.WithPath(ferr, "records["+itoa(i)+"]")
		i++
	}, "records")
	if ferr != nil {
		return nil, ferr
	}
	if err != nil {
		return nil, errors.Usagef("invalid schema file: %v", err)
	}

	if len(schemas) == 0 {
		return nil, errors.Usagef("schema file defines no records")
	}

	return schemas, nil
}

func defineRecord(r *codec.Registry, data []byte) (*record.Schema, error) {
	name, err := jsonparser.GetString(data, "name")
	if err != nil {
		return nil, errors.Usagef("record name: %v", err)
	}

	var fields []record.Field
	var ferr error

	_, err = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if ferr != nil {
			return
		}
		if err != nil {
			ferr = errors.Usagef("invalid fields: %v", err)
			return
		}

		var f record.Field
		f, ferr = parseField(r, value)
		if ferr != nil {
			ferr = errors.WithPath(ferr, name+".fields["+itoa(len(fields))+"]")
			return
		}

		fields = append(fields, f)
	}, "fields")
	if ferr != nil {
		return nil, ferr
	}
	if err != nil {
		return nil, errors.Usagef("fields of record %s: %v", name, err)
	}

	return record.Define(r, name, fields...)
}

func parseField(r *codec.Registry, data []byte) (record.Field, error) {
	name, err := jsonparser.GetString(data, "name")
	if err != nil {
		return record.Field{}, errors.Usagef("field name: %v", err)
	}

	typ, err := jsonparser.GetString(data, "type")
	if err != nil {
		return record.Field{}, errors.Usagef("type of field %s: %v", name, err)
	}

	t, err := types.Parse(typ)
	if err != nil {
		return record.Field{}, err
	}

	f := record.NewField(name, t)

	value, dataType, _, err := jsonparser.Get(data, "default")
	if dataType == jsonparser.NotExist {
		return f, nil
	}
	if err != nil {
		return record.Field{}, errors.Usagef("default value of field %s: %v", name, err)
	}

	v, err := convert(r, t, value, dataType)
	if err != nil {
		return record.Field{}, errors.WithPath(err, name)
	}

	return f.WithDefault(v), nil
}
