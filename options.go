package fixturekit

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/fixturekit/fixturekit/fake"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets a custom logger for the registry.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets an OpenTelemetry tracer for the registry.
// When set, every Make runs inside a span carrying the entity key and
// sequence number, so slow hooks and generators show up in traces.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		r.tracer = tracer
	}
}

// WithValueSource sets the value source handed to every generator call.
// Use fake.NewSeeded to make generator randomness deterministic:
//
//	reg := fixturekit.New(fixturekit.WithValueSource(fake.NewSeeded(42)))
func WithValueSource(src *fake.Source) Option {
	return func(r *Registry) {
		if src != nil {
			r.source = src
		}
	}
}
