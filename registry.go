package fixturekit

import (
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/fixturekit/fixturekit/fake"
	"github.com/fixturekit/fixturekit/identity"
	"github.com/fixturekit/fixturekit/sequence"
)

// Registry owns factory definitions and sequence counters.
//
// A Registry is an explicit, injectable context object: parallel test
// suites construct isolated registries with New instead of sharing the
// package-level default, which removes any cross-suite coupling through
// shared sequence counters. Definitions are never removed, only replaced
// by re-registration; sequence counters reset only via ResetSequences.
type Registry struct {
	logger *slog.Logger
	tracer trace.Tracer
	source *fake.Source

	mu   sync.RWMutex
	defs map[string]*Definition
	seqs *sequence.Store
}

// New constructs an empty Registry configured by the provided options.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger: slog.Default(),
		source: fake.New(),
		defs:   make(map[string]*Definition),
		seqs:   sequence.NewStore(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Define registers a generator for the entity type and returns a Builder
// for attaching states, hooks and associations to the new definition.
//
// Defining an entity key that already exists replaces the whole prior
// definition: previously attached states, hooks and associations are
// discarded along with it, and builder handles from the earlier
// registration keep mutating the discarded definition only.
func (r *Registry) Define(entityType any, generator GeneratorFunc) (*Builder, error) {
	const op = "Registry.Define"

	key, typ, err := resolveEntity(entityType)
	if err != nil {
		return nil, NewValidationError(op, err)
	}

	def := &Definition{
		key:       key,
		typ:       typ,
		generator: generator,
		states:    make(map[string]StateFunc),
	}

	r.mu.Lock()
	r.defs[key] = def
	r.mu.Unlock()

	r.seqs.Track(key)

	r.logger.Debug("factory definition registered",
		slog.String("entity", key),
	)

	return &Builder{registry: r, def: def}, nil
}

// MustDefine is like Define but panics on error. It is intended for
// package-level registration in test helpers, where a resolution failure
// is a programming mistake.
func (r *Registry) MustDefine(entityType any, generator GeneratorFunc) *Builder {
	b, err := r.Define(entityType, generator)
	if err != nil {
		panic(err)
	}
	return b
}

// Factory returns an ephemeral EntityFactory bound to the entity's
// definition. At most one settings value may be provided; it is passed
// through to the generator unmodified.
//
// The factory holds the definition by reference, so states, hooks and
// associations attached after this call are visible to it. The generator,
// however, is captured now: a later re-registration of the same key does
// not retarget an already-constructed factory.
func (r *Registry) Factory(entityType any, settings ...any) (*EntityFactory, error) {
	const op = "Registry.Factory"

	key, _, err := resolveEntity(entityType)
	if err != nil {
		return nil, NewValidationError(op, err)
	}

	r.mu.RLock()
	def, ok := r.defs[key]
	r.mu.RUnlock()
	if !ok {
		return nil, newUndefinedFactoryError(op, key)
	}

	var s any
	if len(settings) > 0 {
		s = settings[0]
	}

	return &EntityFactory{
		registry:  r,
		key:       key,
		def:       def,
		generator: def.generator,
		settings:  s,
	}, nil
}

// ResetSequences rewinds every tracked sequence counter to zero.
// Definitions are untouched.
func (r *Registry) ResetSequences() {
	r.seqs.ResetAll()
}

// Definitions returns the sorted entity keys with a registered definition.
func (r *Registry) Definitions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.defs))
	for key := range r.defs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// resolveEntity resolves the entity key and the underlying struct type of
// an entity type handle (an instance, a pointer to one, or a reflect.Type).
func resolveEntity(entityType any) (string, reflect.Type, error) {
	key, err := identity.Resolve(entityType)
	if err != nil {
		return "", nil, err
	}

	var typ reflect.Type
	if t, ok := entityType.(reflect.Type); ok {
		typ = identity.Unwrap(t)
	} else {
		typ = identity.Unwrap(reflect.TypeOf(entityType))
	}
	return key, typ, nil
}

// defaultRegistry backs the package-level convenience API. Test binaries
// that run suites in parallel should prefer isolated registries from New.
var defaultRegistry = New()

// Default returns the process-wide registry used by the package-level
// Define, Factory and ResetSequences functions.
func Default() *Registry {
	return defaultRegistry
}

// Define registers a generator on the default registry.
func Define(entityType any, generator GeneratorFunc) (*Builder, error) {
	return defaultRegistry.Define(entityType, generator)
}

// MustDefine registers a generator on the default registry, panicking on error.
func MustDefine(entityType any, generator GeneratorFunc) *Builder {
	return defaultRegistry.MustDefine(entityType, generator)
}

// Factory returns an EntityFactory from the default registry.
func Factory(entityType any, settings ...any) (*EntityFactory, error) {
	return defaultRegistry.Factory(entityType, settings...)
}

// ResetSequences rewinds every sequence counter of the default registry.
func ResetSequences() {
	defaultRegistry.ResetSequences()
}
