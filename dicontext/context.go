package dicontext

import (
	"context"
	"reflect"

	"github.com/sectrean/di-activator"
	"github.com/sectrean/di-activator/internal/errors"
)

type dependenciesContextKey struct{}

// WithDependencies returns a new [context.Context] that carries the provided [di.Dependencies].
func WithDependencies(ctx context.Context, deps di.Dependencies) context.Context {
	return context.WithValue(ctx, dependenciesContextKey{}, deps)
}

// Dependencies returns the [di.Dependencies] stored on the [context.Context], if present.
func Dependencies(ctx context.Context) di.Dependencies {
	if deps, ok := ctx.Value(dependenciesContextKey{}).(di.Dependencies); ok {
		return deps
	}
	return nil
}

// Resolve a dependency of type T from the [di.Dependencies] stored on the
// [context.Context].
func Resolve[T any](ctx context.Context, opts ...di.KeyOption) (T, error) {
	var val T

	deps := Dependencies(ctx)
	if deps == nil {
		return val, errors.Errorf("resolve %s from context: dependencies not found on context",
			reflect.TypeFor[T]())
	}

	val, err := di.Resolve[T](deps, opts...)
	return val, errors.Wrap(err, "resolve from context")
}

// MustResolve resolves a dependency of type T from the [di.Dependencies] stored on the
// [context.Context]. It panics if the dependency cannot be resolved.
func MustResolve[T any](ctx context.Context, opts ...di.KeyOption) T {
	val, err := Resolve[T](ctx, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// Activate activates instance with [di.DefaultRegistry] using the dependencies stored on the
// [context.Context].
func Activate(ctx context.Context, instance any) error {
	deps := Dependencies(ctx)
	if deps == nil {
		return errors.Errorf("activate %T from context: dependencies not found on context", instance)
	}

	return errors.Wrap(di.Activate(instance, deps), "activate from context")
}

// MergeDependencies returns a child context carrying the dependencies stored on ctx merged
// with the values instance exposes. See [di.MergeDependencies].
func MergeDependencies(ctx context.Context, instance any) (context.Context, error) {
	deps := Dependencies(ctx)
	if deps == nil {
		return ctx, errors.Errorf("merge %T from context: dependencies not found on context", instance)
	}

	merged, err := di.MergeDependencies(instance, deps)
	if err != nil {
		return ctx, errors.Wrap(err, "merge from context")
	}

	return WithDependencies(ctx, merged), nil
}
