package codec

import (
	"sync"
	"sync/atomic"

	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/types"
	"go.uber.org/zap"
)

// A Factory returns the codec of one member of a parameterized family,
// e.g. array[int8,3], configured with the metadata of t.
type Factory func(r *Registry, t types.Type) (Codec, error)

// Options of a Registry.
type Options struct {
	// Logger receives registration and resolution events.
	// Defaults to a no-op logger.
	Logger *zap.Logger
}

// Registry maps wire types to codecs.
// Exact descriptors are registered with Register, parameterized families
// with RegisterGeneric. Registration is append-only.
// Resolved codecs are memoized, resolving the same type twice returns the same codec.
type Registry struct {
	mu       sync.RWMutex
	codecs   map[string]Codec
	generics map[types.Kind]Factory
	frozen   atomic.Bool

	cache  sync.Map
	logger atomic.Pointer[zap.Logger]
}

// NewRegistry returns an empty registry.
func NewRegistry(opts *Options) *Registry {
	r := Registry{
		codecs:   make(map[string]Codec),
		generics: make(map[types.Kind]Factory),
	}

	logger := zap.NewNop()
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}
	r.logger.Store(logger)

	return &r
}

// NewDefaultRegistry returns a registry where every builtin wire type is registered.
func NewDefaultRegistry(opts *Options) *Registry {
	r := NewRegistry(opts)
	registerBuiltins(r)
	return r
}

// Logger returns the logger of the registry.
func (r *Registry) Logger() *zap.Logger {
	return r.logger.Load()
}

// SetLogger replaces the logger of the registry.
// A nil logger disables logging.
func (r *Registry) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	r.logger.Store(l)
}

// Register associates the exact descriptor t with c.
// It returns a usage error if t is not a valid type marker, if a codec
// is already registered for t or if the registry is frozen.
func (r *Registry) Register(t types.Type, c Codec) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if c == nil {
		return errors.Usagef("cannot register a nil codec for %s", t)
	}

	key := t.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return errors.Usagef("cannot register %s: registry is frozen", key)
	}
	if _, ok := r.codecs[key]; ok {
		return errors.Usagef("a codec is already registered for %s", key)
	}

	r.codecs[key] = c
	r.Logger().Debug("codec registered", zap.String("type", key))
	return nil
}

// RegisterGeneric registers the factory shared by every member of the
// parameterized family k: fixed strings, arrays or vectors.
func (r *Registry) RegisterGeneric(k types.Kind, f Factory) error {
	if !k.IsParameterized() || k == types.KindRecord {
		return errors.Usagef("%s is not a generic wire type", k)
	}
	if f == nil {
		return errors.Usagef("cannot register a nil factory for %s", k)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return errors.Usagef("cannot register %s: registry is frozen", k)
	}
	if _, ok := r.generics[k]; ok {
		return errors.Usagef("a factory is already registered for %s", k)
	}

	r.generics[k] = f
	r.Logger().Debug("generic codec registered", zap.Stringer("kind", k))
	return nil
}

// Freeze makes the registry read-only. Later registrations fail with a usage error.
// Resolving types of a frozen registry never takes a lock.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()

	r.Logger().Debug("registry frozen")
}

// IsFrozen reports whether Freeze was called.
func (r *Registry) IsFrozen() bool {
	return r.frozen.Load()
}

// Resolve returns the codec of t.
// An exact registration wins, otherwise resolution is redirected to the
// factory of t's generic family, which binds t's own metadata.
// It returns a usage error if t is invalid and a lookup error if no codec can serve t.
func (r *Registry) Resolve(t types.Type) (Codec, error) {
	// record references and builtins can share a name, so the
	// cache is only read once t is known to be valid
	if err := t.Validate(); err != nil {
		return nil, err
	}

	key := t.String()

	if c, ok := r.cache.Load(key); ok {
		return c.(Codec), nil
	}

	c, err := r.resolve(t, key)
	if err != nil {
		return nil, err
	}

	actual, _ := r.cache.LoadOrStore(key, c)
	return actual.(Codec), nil
}

func (r *Registry) resolve(t types.Type, key string) (Codec, error) {
	var c Codec
	var f Factory
	var ok bool

	if r.frozen.Load() {
		c, ok = r.codecs[key]
		f = r.generics[t.Generic().Kind]
	} else {
		r.mu.RLock()
		c, ok = r.codecs[key]
		f = r.generics[t.Generic().Kind]
		r.mu.RUnlock()
	}

	if ok {
		return c, nil
	}

	if f != nil && t.Kind != types.KindRecord {
		r.Logger().Debug("resolving generic codec", zap.String("type", key), zap.Stringer("generic", t.Generic()))
		return f(r, t)
	}

	return nil, errors.Lookupf("no codec registered for %s", key)
}

func registerBuiltins(r *Registry) {
	for _, c := range []Codec{
		newInt8Codec(),
		newInt16Codec(),
		newInt32Codec(),
		newInt64Codec(),
		newFloat16Codec(),
		newFloat32Codec(),
		newFloat64Codec(),
		boolCodec{},
		charCodec{},
		varcharCodec{},
		stringCodec{},
		nullCodec{},
		ignoreCodec{},
	} {
		if err := r.Register(c.Type(), c); err != nil {
			panic(err)
		}
	}

	for k, f := range map[types.Kind]Factory{
		types.KindFixedString: newFixedStringCodec,
		types.KindArray:       newArrayCodec,
		types.KindVector:      newVectorCodec,
	} {
		if err := r.RegisterGeneric(k, f); err != nil {
			panic(err)
		}
	}
}
