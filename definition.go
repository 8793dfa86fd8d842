package fixturekit

import (
	"context"
	"reflect"
	"sync"

	"github.com/fixturekit/fixturekit/fake"
)

// GeneratorFunc produces a freshly populated entity.
//
// src is the registry's value source, settings is the opaque value passed
// to Factory (nil when omitted), and seq is the entity's sequence number
// for this production.
type GeneratorFunc func(ctx context.Context, src *fake.Source, settings any, seq int) (any, error)

// StateFunc is a named, reusable mutation applied on demand to a produced
// entity. It returns the entity to continue the pipeline with, which may
// be the input mutated in place or a replacement.
type StateFunc func(ctx context.Context, entity any) (any, error)

// HookFunc is a before/after side-effect point in the production pipeline.
// Hooks mutate the entity in place; their return value is only an error.
type HookFunc func(ctx context.Context, entity any) error

// MapFunc is a one-off post-processing transform recorded on an
// EntityFactory via Map.
type MapFunc func(ctx context.Context, entity any) (any, error)

// Association declares a related entity (or slice of entities) that is
// produced automatically during Make and assigned to a field.
type Association struct {
	// Field is the name of the field the produced entity is assigned to.
	Field string

	// Target is the entity type handle of the associated entity. Each
	// production resolves it through a fresh Factory call, so the target's
	// definition is looked up at make time, not declaration time.
	Target any

	// Count is the number of entities to produce.
	Count int

	// IsArray reports whether the field receives a slice. It is true iff
	// a count greater than 1 was requested at declaration time.
	IsArray bool
}

// Definition is one registered entity blueprint: the generator plus the
// states, hooks and associations attached through its Builder.
//
// Definitions are held by the registry and referenced by entity factories.
// Re-registering an entity key replaces the whole definition; builder
// handles obtained before the replacement keep mutating the discarded
// definition and have no effect on the new one.
type Definition struct {
	key string
	typ reflect.Type

	mu           sync.RWMutex
	generator    GeneratorFunc
	states       map[string]StateFunc
	beforeHooks  []HookFunc
	afterHooks   []HookFunc
	associations []Association
}

// Key returns the entity key this definition is registered under.
func (d *Definition) Key() string {
	return d.key
}

// stateFunc looks up a named state on the live definition, so states added
// after an EntityFactory was constructed are still visible to it.
func (d *Definition) stateFunc(name string) (StateFunc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn, ok := d.states[name]
	return fn, ok
}

// snapshot copies the hook and association lists for one pipeline run.
func (d *Definition) snapshot() (before, after []HookFunc, assocs []Association) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	before = make([]HookFunc, len(d.beforeHooks))
	copy(before, d.beforeHooks)
	after = make([]HookFunc, len(d.afterHooks))
	copy(after, d.afterHooks)
	assocs = make([]Association, len(d.associations))
	copy(assocs, d.associations)
	return before, after, assocs
}
