// Package fake provides the value source handed to generator functions.
//
// The factory core treats the value source as opaque: it constructs one
// per registry and passes it into every generator call. Wrapping gofakeit
// behind this package keeps generator signatures stable if the underlying
// faker library is ever swapped, and gives tests a single place to pin
// the seed for deterministic runs.
package fake

import "github.com/brianvoe/gofakeit/v6"

// Source generates fake field values for entity generators.
//
// It embeds a gofakeit faker, so generators call the full gofakeit
// surface directly:
//
//	func(ctx context.Context, src *fake.Source, settings any, seq int) (any, error) {
//		return &User{Name: src.Name(), Email: src.Email()}, nil
//	}
type Source struct {
	*gofakeit.Faker
}

// New returns a Source with a randomized seed.
func New() *Source {
	return &Source{Faker: gofakeit.New(0)}
}

// NewSeeded returns a Source producing a deterministic value stream for
// the given seed. Two sources with the same seed yield the same values in
// the same call order.
func NewSeeded(seed int64) *Source {
	return &Source{Faker: gofakeit.New(seed)}
}
