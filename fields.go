package fixturekit

import (
	"fmt"
	"reflect"
)

// applyFields assigns a map of field-name to value onto an entity.
//
// Map records get direct writes. Struct entities get validated reflective
// writes: the named field must exist on the declared field set and the
// value must be assignable (or safely convertible) to its type, so a typo
// in an override map fails instead of silently doing nothing.
func applyFields(entity any, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	if rec, ok := entity.(map[string]any); ok {
		for name, value := range fields {
			rec[name] = value
		}
		return nil
	}

	rv := reflect.ValueOf(entity)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("entity %T does not support field assignment", entity)
	}

	elem := rv.Elem()
	for name, value := range fields {
		if err := setStructField(elem, name, value); err != nil {
			return err
		}
	}
	return nil
}

// setStructField writes one named field on a struct value.
func setStructField(elem reflect.Value, name string, value any) error {
	field := elem.FieldByName(name)
	if !field.IsValid() {
		return fmt.Errorf("%w: %q on %s", ErrUnknownField, name, elem.Type())
	}
	if !field.CanSet() {
		return fmt.Errorf("field %q on %s is not settable", name, elem.Type())
	}

	converted, err := coerce(value, field.Type())
	if err != nil {
		return fmt.Errorf("field %q on %s: %w", name, elem.Type(), err)
	}
	field.Set(converted)
	return nil
}

// coerce converts value into a reflect.Value assignable to target.
//
// Beyond direct assignability it handles the two shapes the pipeline
// produces: nil (zero value) and []any from MakeMany, which converts
// element-wise into typed slices. Numeric conversions are allowed;
// numeric-to-string is rejected because reflect would produce a rune
// string rather than a formatted number.
func coerce(value any, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(target), nil
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(target) {
		return rv, nil
	}

	if target.Kind() == reflect.Slice {
		if items, ok := value.([]any); ok {
			out := reflect.MakeSlice(target, 0, len(items))
			for i, item := range items {
				converted, err := coerce(item, target.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
				}
				out = reflect.Append(out, converted)
			}
			return out, nil
		}
	}

	if target.Kind() == reflect.String && isNumericKind(rv.Kind()) {
		return reflect.Value{}, fmt.Errorf("cannot assign %s to %s", rv.Type(), target)
	}
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot assign %s to %s", rv.Type(), target)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
