package fixturekit

// Builder attaches states, hooks and associations to a definition already
// stored in the registry. Every method mutates the bound definition in
// place and returns the builder, enabling chained configuration:
//
//	reg.MustDefine(User{}, newUser).
//		State("admin", makeAdmin).
//		BeforeMake(hashPassword).
//		Association("Comments", Comment{}, 3)
//
// A Builder stays valid until its entity key is re-registered; after that
// it mutates the discarded definition and has no further effect.
type Builder struct {
	registry *Registry
	def      *Definition
}

// Key returns the entity key of the bound definition.
func (b *Builder) Key() string {
	return b.def.key
}

// State registers a named state function, overwriting any previous state
// registered under the same name.
func (b *Builder) State(name string, fn StateFunc) *Builder {
	b.def.mu.Lock()
	b.def.states[name] = fn
	b.def.mu.Unlock()
	return b
}

// BeforeMake appends a hook that runs before associations, states,
// map functions and overrides. Hooks run in insertion order.
func (b *Builder) BeforeMake(fn HookFunc) *Builder {
	b.def.mu.Lock()
	b.def.beforeHooks = append(b.def.beforeHooks, fn)
	b.def.mu.Unlock()
	return b
}

// AfterMake appends a hook that runs last, after overrides have been
// applied, so it observes final field values. Hooks run in insertion order.
func (b *Builder) AfterMake(fn HookFunc) *Builder {
	b.def.mu.Lock()
	b.def.afterHooks = append(b.def.afterHooks, fn)
	b.def.mu.Unlock()
	return b
}

// Association declares a related entity produced automatically during Make
// and assigned to the named field, overwriting whatever the generator put
// there. The optional count requests a slice of entities; the field
// receives a slice iff the count is greater than 1.
//
// The target's own definition is resolved at make time, so it may be
// registered after this declaration.
func (b *Builder) Association(field string, target any, count ...int) *Builder {
	n := 1
	if len(count) > 0 {
		n = count[0]
	}

	b.def.mu.Lock()
	b.def.associations = append(b.def.associations, Association{
		Field:   field,
		Target:  target,
		Count:   n,
		IsArray: len(count) > 0 && n > 1,
	})
	b.def.mu.Unlock()
	return b
}
