package fixturekit

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EntityFactory produces entities for one entity key.
//
// Factories are ephemeral: obtain one per production site via
// Registry.Factory, configure it with State/States/Map, then call Make,
// MakeMany or Build. Configuration methods mutate the factory and return
// it for chaining; a factory is not safe for concurrent use.
type EntityFactory struct {
	registry  *Registry
	key       string
	def       *Definition
	generator GeneratorFunc
	settings  any
	states    []string
	mapFn     MapFunc
}

// Key returns the entity key this factory is bound to.
func (f *EntityFactory) Key() string {
	return f.key
}

// State appends a state name to the activation list. States apply in
// activation order during Make; duplicates are allowed and re-applied.
func (f *EntityFactory) State(name string) *EntityFactory {
	f.states = append(f.states, name)
	return f
}

// States appends several state names to the activation list in the given
// order.
func (f *EntityFactory) States(names ...string) *EntityFactory {
	f.states = append(f.states, names...)
	return f
}

// Map records a post-processing transform applied after states and before
// overrides. At most the last recorded transform is used.
func (f *EntityFactory) Map(fn MapFunc) *EntityFactory {
	f.mapFn = fn
	return f
}

// Build constructs a bare instance of the entity type and assigns the
// provided fields directly. It bypasses the entire pipeline: the generator
// is not invoked, no sequence number is drawn, and hooks, states,
// associations and the map transform all stay dormant. Use it for plain
// fixtures that need no randomized data.
func (f *EntityFactory) Build(fields map[string]any) (any, error) {
	const op = "EntityFactory.Build"

	entity := reflect.New(f.def.typ).Interface()
	if err := applyFields(entity, fields); err != nil {
		return nil, NewValidationError(op, err)
	}
	return entity, nil
}

// Make runs the full production pipeline and returns one finished entity.
//
// Pipeline order: draw sequence number, invoke generator, resolve nested
// field values, before-hooks, associations, activated states, map
// transform, overrides, after-hooks. Overrides apply before after-hooks so
// those hooks observe final field values. Any failure aborts the remaining
// steps and no partial entity is returned.
//
// Several override maps may be passed; they apply in argument order, so
// later maps win on conflicting fields.
func (f *EntityFactory) Make(ctx context.Context, overrides ...map[string]any) (any, error) {
	const op = "EntityFactory.Make"

	if f.generator == nil {
		return nil, newUndefinedFactoryError(op, f.key)
	}

	seq := f.registry.seqs.Next(f.key)

	if f.registry.tracer == nil {
		return f.produce(ctx, seq, overrides)
	}

	ctx, span := f.registry.tracer.Start(ctx, "fixturekit.make",
		trace.WithAttributes(
			attribute.String("entity.key", f.key),
			attribute.Int("entity.sequence", seq),
		),
	)
	defer span.End()

	entity, err := f.produce(ctx, seq, overrides)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return entity, err
}

// MakeMany invokes Make exactly count times, strictly sequentially, and
// collects the results in call order. Sequential execution keeps sequence
// numbers gap-free and strictly increasing within the batch.
//
// The batch is all-or-nothing: the first failing production aborts the
// call and entities produced before the failure are discarded.
func (f *EntityFactory) MakeMany(ctx context.Context, count int, overrides ...map[string]any) ([]any, error) {
	const op = "EntityFactory.MakeMany"

	if count < 0 {
		return nil, NewValidationError(op, fmt.Errorf("%w: %d", ErrInvalidCount, count))
	}

	entities := make([]any, 0, count)
	for i := 0; i < count; i++ {
		entity, err := f.Make(ctx, overrides...)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// produce is the pipeline body shared by the traced and untraced paths.
func (f *EntityFactory) produce(ctx context.Context, seq int, overrides []map[string]any) (any, error) {
	const op = "EntityFactory.Make"

	entity, err := f.generator(ctx, f.registry.source, f.settings, seq)
	if err != nil {
		return nil, err
	}

	if entity, err = resolveNested(ctx, entity); err != nil {
		return nil, err
	}

	before, after, assocs := f.def.snapshot()

	for _, hook := range before {
		if err := hook(ctx, entity); err != nil {
			return nil, err
		}
	}

	for _, assoc := range assocs {
		related, err := f.registry.Factory(assoc.Target)
		if err != nil {
			return nil, err
		}

		var value any
		if assoc.IsArray {
			value, err = related.MakeMany(ctx, assoc.Count)
		} else {
			value, err = related.Make(ctx)
		}
		if err != nil {
			return nil, err
		}

		if err := applyFields(entity, map[string]any{assoc.Field: value}); err != nil {
			return nil, NewValidationError(op, err)
		}
	}

	for _, name := range f.states {
		fn, ok := f.def.stateFunc(name)
		if !ok {
			return nil, newUndefinedStateError(op, f.key, name)
		}
		if entity, err = fn(ctx, entity); err != nil {
			return nil, err
		}
	}

	if f.mapFn != nil {
		if entity, err = f.mapFn(ctx, entity); err != nil {
			return nil, err
		}
	}

	for _, ov := range overrides {
		if err := applyFields(entity, ov); err != nil {
			return nil, NewValidationError(op, err)
		}
	}

	for _, hook := range after {
		if err := hook(ctx, entity); err != nil {
			return nil, err
		}
	}

	f.registry.logger.Debug("entity produced",
		slog.String("entity", f.key),
		slog.Int("sequence", seq),
	)

	return entity, nil
}

// MakeAs runs Make on f and asserts the produced entity to T.
func MakeAs[T any](ctx context.Context, f *EntityFactory, overrides ...map[string]any) (T, error) {
	var zero T
	entity, err := f.Make(ctx, overrides...)
	if err != nil {
		return zero, err
	}
	typed, ok := entity.(T)
	if !ok {
		return zero, NewValidationError("MakeAs",
			fmt.Errorf("entity %q is %T, not %T", f.key, entity, zero))
	}
	return typed, nil
}

// BuildAs runs Build on f and asserts the bare entity to T.
func BuildAs[T any](f *EntityFactory, fields map[string]any) (T, error) {
	var zero T
	entity, err := f.Build(fields)
	if err != nil {
		return zero, err
	}
	typed, ok := entity.(T)
	if !ok {
		return zero, NewValidationError("BuildAs",
			fmt.Errorf("entity %q is %T, not %T", f.key, entity, zero))
	}
	return typed, nil
}
