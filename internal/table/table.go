// Package table persists encoded records in a kv.Store.
// Every record of a table shares the same schema and is identified by a KSUID,
// which makes scans return records in insertion order.
package table

import (
	"context"
	"strconv"
	"sync"

	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/kv"
	"github.com/chaisql/binrec/internal/record"
	"github.com/segmentio/ksuid"
)

// A Table stores the records of one schema.
// The namespace of the table is the name of the record.
type Table struct {
	store  *kv.Store
	schema *record.Schema
	ns     *kv.Namespace

	mu   sync.Mutex
	last ksuid.KSUID
}

// New returns the table storing records of s in store.
func New(store *kv.Store, s *record.Schema) *Table {
	return &Table{
		store:  store,
		schema: s,
		ns:     store.Namespace(s.Name()),
	}
}

// Schema returns the schema of the records of the table.
func (t *Table) Schema() *record.Schema {
	return t.schema
}

func (t *Table) encode(rec *record.Record) ([]byte, error) {
	if rec == nil || rec.Schema() != t.schema {
		return nil, errors.Usagef("table %s only stores %s records", t.schema.Name(), t.schema.Name())
	}

	return rec.Build()
}

// nextID returns a new id, greater than every id returned before.
// KSUIDs generated during the same second are not ordered, the successor
// of the previous id is used instead.
func (t *Table) nextID() ksuid.KSUID {
	id := ksuid.New()

	t.mu.Lock()
	defer t.mu.Unlock()

	if ksuid.Compare(id, t.last) <= 0 {
		id = t.last.Next()
	}
	t.last = id

	return id
}

// Insert encodes rec and stores it under a new id.
func (t *Table) Insert(rec *record.Record) (ksuid.KSUID, error) {
	data, err := t.encode(rec)
	if err != nil {
		return ksuid.Nil, err
	}

	id := t.nextID()
	if err := t.ns.Put(id.Bytes(), data); err != nil {
		return ksuid.Nil, err
	}

	return id, nil
}

// InsertMany encodes all the records and stores them atomically.
// If any record cannot be encoded, nothing is stored.
func (t *Table) InsertMany(recs ...*record.Record) ([]ksuid.KSUID, error) {
	b := t.store.Batch()

	ids := make([]ksuid.KSUID, len(recs))
	for i, rec := range recs {
		data, err := t.encode(rec)
		if err != nil {
			_ = b.Rollback()
			return nil, errors.WithPath(err, "["+strconv.Itoa(i)+"]")
		}

		ids[i] = t.nextID()
		if err := b.Put(t.ns, ids[i].Bytes(), data); err != nil {
			_ = b.Rollback()
			return nil, err
		}
	}

	if err := b.Commit(); err != nil {
		return nil, err
	}

	return ids, nil
}

// Replace overrides the record stored under id.
func (t *Table) Replace(id ksuid.KSUID, rec *record.Record) error {
	data, err := t.encode(rec)
	if err != nil {
		return err
	}

	ok, err := t.ns.Exists(id.Bytes())
	if err != nil {
		return err
	}
	if !ok {
		return errors.Lookupf("no %s record with id %s", t.schema.Name(), id)
	}

	return t.ns.Put(id.Bytes(), data)
}

// Get returns the record stored under id.
// It returns kv.ErrKeyNotFound if there is none.
func (t *Table) Get(id ksuid.KSUID) (*record.Record, error) {
	data, err := t.ns.Get(id.Bytes())
	if err != nil {
		return nil, err
	}

	return t.decode(data)
}

// GetRaw returns the encoded record stored under id.
func (t *Table) GetRaw(id ksuid.KSUID) ([]byte, error) {
	return t.ns.Get(id.Bytes())
}

func (t *Table) decode(data []byte) (*record.Record, error) {
	rec, n, err := t.schema.ParseWithSize(data)
	if err != nil {
		return nil, err
	}

	if n != len(data) {
		return nil, errors.Decodingf("%d unexpected trailing bytes after %s record", len(data)-n, t.schema.Name())
	}

	return rec, nil
}

// Delete the record stored under id.
// It returns kv.ErrKeyNotFound if there is none.
func (t *Table) Delete(id ksuid.KSUID) error {
	return t.ns.Delete(id.Bytes())
}

// Truncate deletes all the records of the table.
func (t *Table) Truncate() error {
	return t.ns.Truncate()
}

// Scan calls fn for every record of the table, in insertion order.
// The scan stops when ctx is done or when fn returns an error.
func (t *Table) Scan(ctx context.Context, fn func(id ksuid.KSUID, rec *record.Record) error) error {
	return t.ns.Iterate(func(k, v []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		id, err := ksuid.FromBytes(k)
		if err != nil {
			return errors.Decodingf("invalid record id %x", k)
		}

		rec, err := t.decode(v)
		if err != nil {
			return errors.WithPath(err, id.String())
		}

		return fn(id, rec)
	})
}

// Count returns the number of records of the table.
func (t *Table) Count(ctx context.Context) (int, error) {
	var n int
	err := t.ns.Iterate(func(k, v []byte) error {
		n++
		return ctx.Err()
	})

	return n, err
}
