package dbutil

import (
	"github.com/chaisql/binrec"
	"github.com/chaisql/binrec/internal/record"
	"github.com/chaisql/binrec/internal/schema"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Env holds the records loaded from a schema file.
type Env struct {
	Registry *binrec.Registry
	Schemas  []*binrec.Schema
	Logger   *zap.Logger
}

// LoadEnv loads the schema file at path in a new registry, then freezes it.
func LoadEnv(path string, logger *zap.Logger) (*Env, error) {
	if path == "" {
		return nil, errors.New("no schema file, use --schema or BINREC_SCHEMA")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := binrec.NewRegistry(logger)
	schemas, err := schema.LoadFile(r, path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load %s", path)
	}
	r.Freeze()

	return &Env{
		Registry: r,
		Schemas:  schemas,
		Logger:   logger,
	}, nil
}

// Record returns the schema of the record called name.
// If name is empty, the last record of the schema file is returned.
func (e *Env) Record(name string) (*binrec.Schema, error) {
	if name == "" {
		return e.Schemas[len(e.Schemas)-1], nil
	}

	c, err := e.Registry.Resolve(binrec.RecordType(name))
	if err != nil {
		return nil, err
	}

	s, ok := record.SchemaOf(c)
	if !ok {
		return nil, errors.Newf("%s is not a record", name)
	}

	return s, nil
}

// Records returns the schemas of the records called names,
// or every record of the schema file if names is empty.
func (e *Env) Records(names ...string) ([]*binrec.Schema, error) {
	if len(names) == 0 {
		return e.Schemas, nil
	}

	schemas := make([]*binrec.Schema, 0, len(names))
	for _, name := range names {
		s, err := e.Record(name)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}

	return schemas, nil
}
