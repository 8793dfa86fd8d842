// Package fixturekit generates populated entity instances for unit tests.
//
// A registry maps an entity key to a generator definition; an ephemeral
// EntityFactory runs the production pipeline that composes the generator,
// lifecycle hooks, named states, auto-generated associations, nested-value
// resolution and field overrides into one finished entity.
//
// # Core Concepts
//
//   - Generator: user-supplied function producing a freshly populated entity
//     from a value source, an opaque settings value and a sequence number
//   - State: a named, reusable mutation applied on demand to a produced entity
//   - Hook: a before/after side-effect point in the production pipeline
//   - Association: a declared related entity (or slice) produced
//     automatically and attached to a field
//   - Override: caller-supplied field values applied last, winning over all
//     generated content
//
// # Getting Started
//
// Register a definition once, then produce entities wherever a test needs
// them:
//
//	reg := fixturekit.New()
//
//	reg.MustDefine(User{}, func(ctx context.Context, src *fake.Source, _ any, seq int) (any, error) {
//		return &User{
//			Name:  src.Name(),
//			Email: fmt.Sprintf("user%d@example.com", seq),
//		}, nil
//	}).
//		State("admin", func(ctx context.Context, e any) (any, error) {
//			e.(*User).Role = "admin"
//			return e, nil
//		}).
//		Association("Comments", Comment{}, 3)
//
//	f, err := reg.Factory(User{})
//	if err != nil {
//		t.Fatal(err)
//	}
//	admin, err := f.State("admin").Make(ctx, map[string]any{"Email": "fixed@example.com"})
//
// Every production draws a per-entity sequence number: N sequential Make
// calls for a key yield 0..N-1, independent of every other key, until
// ResetSequences rewinds all counters.
//
// # Pipeline Order
//
// Make runs, in strict order: generator, nested-value resolution,
// before-hooks, associations, states (in activation order), the Map
// transform, overrides, after-hooks. Overrides land before after-hooks so
// those hooks observe final field values; states land after associations
// so a state can depend on or overwrite association output. Build bypasses
// the pipeline entirely and only assigns fields onto a bare instance.
//
// # Registries
//
// New returns an isolated Registry, which parallel test suites should
// prefer. The package-level Define/Factory/ResetSequences operate on one
// process-wide default registry for the common single-suite case.
//
// # Errors
//
// Failures surface as *Error values wrapping sentinel errors
// (ErrUndefinedFactory, ErrUndefinedState, ...) with messages naming the
// entity key or state involved, so tests can assert with errors.Is or on
// message content. Errors returned by user generators, hooks, states and
// map transforms propagate unmodified and abort the remaining pipeline
// steps; MakeMany is all-or-nothing.
package fixturekit
