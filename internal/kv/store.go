// Package kv stores key value pairs in Pebble, grouped in namespaces.
package kv

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"go.uber.org/zap"
)

// InMemory is the path of stores that live in memory.
const InMemory = ":memory:"

const separator byte = 0x1E

var bufferPool = sync.Pool{
	New: func() interface{} {
		return &[]byte{}
	},
}

// Options of a Store.
type Options struct {
	// Logger receives the store events and the Pebble logs.
	// Defaults to a no-op logger.
	Logger *zap.Logger

	// Sync makes every write durable before returning.
	Sync bool
}

// A Store is a Pebble database.
type Store struct {
	DB     *pebble.DB
	path   string
	wopts  *pebble.WriteOptions
	logger *zap.Logger
	closed atomic.Bool
}

// Open the Pebble database located at path.
// If path is InMemory, the database is kept in memory and lost on Close.
func Open(path string, opts *Options) (*Store, error) {
	logger := zap.NewNop()
	wopts := pebble.NoSync
	if opts != nil {
		if opts.Logger != nil {
			logger = opts.Logger
		}
		if opts.Sync {
			wopts = pebble.Sync
		}
	}

	popts := pebble.Options{
		Logger: logger.Named("pebble").Sugar(),
	}

	dirname := path
	if path == InMemory {
		popts.FS = vfs.NewMem()
		dirname = ""
	}

	db, err := pebble.Open(dirname, &popts)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open store at %q", path)
	}

	logger.Info("store opened", zap.String("path", path))

	return &Store{
		DB:     db,
		path:   path,
		wopts:  wopts,
		logger: logger,
	}, nil
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close the underlying Pebble database.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return errors.WithStack(ErrStoreClosed)
	}

	s.logger.Info("store closed", zap.String("path", s.path))
	return s.DB.Close()
}

// Namespace returns the namespace with the given name.
// Namespaces don't need to be created, they are empty until a key is stored.
// The name must not contain the 0x1E byte.
func (s *Store) Namespace(name string) *Namespace {
	return &Namespace{
		store:  s,
		name:   name,
		prefix: []byte(name),
	}
}

// Batch returns a batch of writes, applied atomically by Commit.
func (s *Store) Batch() *Batch {
	return &Batch{
		store: s,
		batch: s.DB.NewBatch(),
	}
}

func (s *Store) check() error {
	if s.closed.Load() {
		return errors.WithStack(ErrStoreClosed)
	}

	return nil
}

// BuildKey builds the key of k in the namespace prefix,
// in the form: prefix + <sep> + 0 + k.
// The 0 separates the key from the prefix and leaves room
// to compute an upper bound for the whole namespace by replacing it.
func BuildKey(prefix, k []byte) []byte {
	buf := bufferPool.Get().(*[]byte)
	if cap(*buf) < len(prefix)+len(k)+2 {
		*buf = make([]byte, 0, len(prefix)+len(k)+2)
	}
	key := (*buf)[:0]
	key = append(key, prefix...)
	key = append(key, separator)
	key = append(key, 0)
	key = append(key, k...)
	return key
}

// TrimPrefix returns the key of a namespace from a key built by BuildKey.
func TrimPrefix(k []byte, prefix []byte) []byte {
	return k[len(prefix)+2:]
}

func bounds(prefix []byte) (lower, upper []byte) {
	lower = append(append(append([]byte{}, prefix...), separator), 0)
	upper = append(append(append([]byte{}, prefix...), separator), 1)
	return lower, upper
}

// A Namespace is a set of keys sharing the same prefix.
type Namespace struct {
	store  *Store
	name   string
	prefix []byte
}

// Name of the namespace.
func (n *Namespace) Name() string {
	return n.name
}

// Put stores a key value pair. If it already exists, it overrides it.
func (n *Namespace) Put(k, v []byte) error {
	if err := n.store.check(); err != nil {
		return err
	}

	if len(k) == 0 {
		return errors.New("cannot store empty key")
	}

	if len(v) == 0 {
		return errors.New("cannot store empty value")
	}

	key := BuildKey(n.prefix, k)
	err := n.store.DB.Set(key, v, n.store.wopts)
	bufferPool.Put(&key)
	return err
}

// Get returns a value associated with the given key. If not found, returns ErrKeyNotFound.
func (n *Namespace) Get(k []byte) ([]byte, error) {
	if err := n.store.check(); err != nil {
		return nil, err
	}

	key := BuildKey(n.prefix, k)
	value, closer, err := n.store.DB.Get(key)
	bufferPool.Put(&key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.WithStack(ErrKeyNotFound)
		}

		return nil, err
	}

	cp := make([]byte, len(value))
	copy(cp, value)

	err = closer.Close()
	if err != nil {
		return nil, err
	}

	return cp, nil
}

// Exists returns whether a key exists.
func (n *Namespace) Exists(k []byte) (bool, error) {
	if err := n.store.check(); err != nil {
		return false, err
	}

	var closer io.Closer
	var err error

	key := BuildKey(n.prefix, k)
	_, closer, err = n.store.DB.Get(key)
	bufferPool.Put(&key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, closer.Close()
}

// Delete a key. If not found, returns ErrKeyNotFound.
func (n *Namespace) Delete(k []byte) error {
	ok, err := n.Exists(k)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithStack(ErrKeyNotFound)
	}

	key := BuildKey(n.prefix, k)
	err = n.store.DB.Delete(key, n.store.wopts)
	bufferPool.Put(&key)
	return err
}

// Truncate deletes all the keys of the namespace.
func (n *Namespace) Truncate() error {
	if err := n.store.check(); err != nil {
		return err
	}

	lower, upper := bounds(n.prefix)
	return n.store.DB.DeleteRange(lower, upper, n.store.wopts)
}

// Iterate calls fn for every key of the namespace, in key order.
// k and v are only valid until fn returns.
// If fn returns an error, the iteration stops and the error is returned.
func (n *Namespace) Iterate(fn func(k, v []byte) error) (err error) {
	if err := n.store.check(); err != nil {
		return err
	}

	lower, upper := bounds(n.prefix)
	it := n.store.DB.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	defer func() {
		if cerr := it.Close(); err == nil {
			err = cerr
		}
	}()

	for it.First(); it.Valid(); it.Next() {
		if err := fn(TrimPrefix(it.Key(), n.prefix), it.Value()); err != nil {
			return err
		}
	}

	return it.Error()
}

// A Batch groups writes to any namespace of a store.
type Batch struct {
	store *Store
	batch *pebble.Batch
}

// Put stores a key value pair in the given namespace.
func (b *Batch) Put(n *Namespace, k, v []byte) error {
	if len(k) == 0 {
		return errors.New("cannot store empty key")
	}

	if len(v) == 0 {
		return errors.New("cannot store empty value")
	}

	key := BuildKey(n.prefix, k)
	err := b.batch.Set(key, v, nil)
	bufferPool.Put(&key)
	return err
}

// Len returns the number of writes in the batch.
func (b *Batch) Len() int {
	return int(b.batch.Count())
}

// Commit applies the writes of the batch and releases it.
func (b *Batch) Commit() error {
	defer b.batch.Close()

	if err := b.store.check(); err != nil {
		return err
	}

	return b.batch.Commit(b.store.wopts)
}

// Rollback discards the writes of the batch.
func (b *Batch) Rollback() error {
	return b.batch.Close()
}
