package fixturekit

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"
)

// Awaitable is a lazily computed field value. When a generator places an
// Awaitable in an entity field, Make resolves it and replaces the field
// with the awaited value before any hook runs.
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// Producer produces a finished entity on demand. *EntityFactory implements
// Producer, so a generator can embed a sub-factory directly in a field and
// Make will replace it with a produced entity.
//
// Resolution checks Awaitable first, then Producer, so an Awaitable that
// yields a Producer resolves all the way down to an entity.
type Producer interface {
	Produce(ctx context.Context) (any, error)
}

// Produce implements Producer by running the full Make pipeline with no
// overrides.
func (f *EntityFactory) Produce(ctx context.Context) (any, error) {
	return f.Make(ctx)
}

// Lazy wraps fn as an Awaitable field value:
//
//	return &Post{PublishedAt: now, Slug: fixturekit.Lazy(slugFor(title))}, nil
func Lazy(fn func(ctx context.Context) (any, error)) Awaitable {
	return lazyValue{fn: fn}
}

type lazyValue struct {
	fn func(ctx context.Context) (any, error)
}

func (l lazyValue) Await(ctx context.Context) (any, error) {
	return l.fn(ctx)
}

// resolveNested resolves Awaitable and Producer values held in the fields
// of a raw entity. Struct entities are walked field by field; map record
// entities are walked key by key in sorted order. time.Time values are
// excluded by a fixed-type check that precedes both capability checks.
func resolveNested(ctx context.Context, entity any) (any, error) {
	if entity == nil {
		return entity, nil
	}

	if rec, ok := entity.(map[string]any); ok {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			resolved, changed, err := resolveValue(ctx, rec[k])
			if err != nil {
				return nil, err
			}
			if changed {
				rec[k] = resolved
			}
		}
		return entity, nil
	}

	rv := reflect.ValueOf(entity)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return entity, nil
	}

	elem := rv.Elem()
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Field(i)
		if !field.CanSet() || !field.CanInterface() {
			continue
		}

		resolved, changed, err := resolveValue(ctx, field.Interface())
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}

		value, err := coerce(resolved, field.Type())
		if err != nil {
			return nil, NewValidationError("EntityFactory.Make",
				fmt.Errorf("field %q on %s: %w", elem.Type().Field(i).Name, elem.Type(), err))
		}
		field.Set(value)
	}
	return entity, nil
}

// resolveValue resolves one field value through the capability chain.
// The returned bool reports whether the value was replaced.
func resolveValue(ctx context.Context, v any) (any, bool, error) {
	if v == nil {
		return v, false, nil
	}

	// Fixed-type exclusion: timestamps are plain data, never capabilities.
	switch v.(type) {
	case time.Time, *time.Time:
		return v, false, nil
	}

	changed := false
	if a, ok := v.(Awaitable); ok {
		resolved, err := a.Await(ctx)
		if err != nil {
			return nil, false, err
		}
		v = resolved
		changed = true

		switch v.(type) {
		case time.Time, *time.Time:
			return v, changed, nil
		}
	}

	if p, ok := v.(Producer); ok {
		produced, err := p.Produce(ctx)
		if err != nil {
			return nil, false, newNestedResolutionError(p, err)
		}
		v = produced
		changed = true
	}

	return v, changed, nil
}

// newNestedResolutionError names the failing sub-factory and keeps the
// original error as the cause.
func newNestedResolutionError(p Producer, cause error) *Error {
	name := "unknown"
	if k, ok := p.(interface{ Key() string }); ok {
		name = k.Key()
	}
	return NewResolutionError("EntityFactory.Make",
		fmt.Errorf("%w: sub-factory %q: %w", ErrNestedResolution, name, cause))
}
