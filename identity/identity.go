// Package identity derives stable string keys for entity types.
//
// Every factory definition is stored under an entity key. The key is the
// declared name of the entity's Go type ("User", "Comment"), reached by
// unwrapping pointer indirections. A type can override its key by
// implementing the Namer interface, which always takes precedence over
// reflection.
//
// Keys are case-sensitive. Two differently-packaged types with the same
// declared name collide silently; the last registration for a key wins.
package identity

import (
	"errors"
	"fmt"
	"reflect"
)

// Namer lets an entity choose its own registry key.
//
// EntityName describes the kind of entity, not a particular instance: the
// returned name must be independent of instance state and stable across
// runs. When a value implements Namer, resolution uses it and skips the
// reflection fallback entirely.
type Namer interface {
	EntityName() string
}

var (
	// ErrUndefinedEntity is returned when resolution receives a nil entity
	// reference or a nil reflect.Type.
	ErrUndefinedEntity = errors.New("entity type is undefined")

	// ErrUnnamedType is returned when the entity's type has no declared
	// name (e.g. an anonymous struct) and does not implement Namer.
	ErrUnnamedType = errors.New("entity type has no declared name")
)

// Resolve returns the entity key for v.
//
// v may be an entity instance, a pointer to one, or a reflect.Type handle.
// Resolution order: Namer fast path, then the declared name of the
// pointer-unwrapped type.
func Resolve(v any) (string, error) {
	if v == nil {
		return "", ErrUndefinedEntity
	}
	if n, ok := v.(Namer); ok {
		return n.EntityName(), nil
	}
	if t, ok := v.(reflect.Type); ok {
		return ResolveType(t)
	}
	return ResolveType(reflect.TypeOf(v))
}

// ResolveType returns the entity key for the type t.
func ResolveType(t reflect.Type) (string, error) {
	if t == nil {
		return "", ErrUndefinedEntity
	}
	base := Unwrap(t)
	if n, ok := reflect.New(base).Interface().(Namer); ok {
		return n.EntityName(), nil
	}
	if base.Name() == "" {
		return "", fmt.Errorf("%w: %s", ErrUnnamedType, t.String())
	}
	return base.Name(), nil
}

// Unwrap strips pointer indirections down to the underlying type.
func Unwrap(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
