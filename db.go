package binrec

import (
	"sync"

	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/kv"
	"github.com/chaisql/binrec/internal/record"
	"github.com/chaisql/binrec/internal/table"
	"go.uber.org/zap"
)

// Table stores the records of one schema in a DB.
type Table = table.Table

// InMemory is the path of databases that are never written to disk.
const InMemory = kv.InMemory

// Options of a DB.
type Options struct {
	// Registry in which record names are resolved.
	// Defaults to the default registry.
	Registry *Registry

	// Logger receives the database events.
	// Defaults to the logger of the registry.
	Logger *zap.Logger

	// Sync makes every write durable before returning.
	Sync bool
}

// DB stores encoded records in a Pebble database.
// Each record type is stored in its own table.
type DB struct {
	store    *kv.Store
	registry *Registry

	mu     sync.Mutex
	tables map[string]*Table
}

// Open opens the database located at path, creating it if needed.
// If path is InMemory, records are kept in memory and lost on Close.
func Open(path string, opts *Options) (*DB, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Registry == nil {
		o.Registry = defaultRegistry
	}
	if o.Logger == nil {
		o.Logger = o.Registry.Logger()
	}

	store, err := kv.Open(path, &kv.Options{
		Logger: o.Logger,
		Sync:   o.Sync,
	})
	if err != nil {
		return nil, err
	}

	return &DB{
		store:    store,
		registry: o.Registry,
		tables:   make(map[string]*Table),
	}, nil
}

// Registry returns the registry in which record names are resolved.
func (db *DB) Registry() *Registry {
	return db.registry
}

// Table returns the table storing the records called name.
// It returns a lookup error if no such record is defined.
func (db *DB) Table(name string) (*Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if t, ok := db.tables[name]; ok {
		return t, nil
	}

	c, err := db.registry.Resolve(RecordType(name))
	if err != nil {
		return nil, err
	}

	s, ok := record.SchemaOf(c)
	if !ok {
		return nil, errors.Lookupf("%s is not a record", name)
	}

	t := table.New(db.store, s)
	db.tables[name] = t
	return t, nil
}

// Close the database.
func (db *DB) Close() error {
	return db.store.Close()
}
