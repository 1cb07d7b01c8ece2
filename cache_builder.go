package di

import (
	"reflect"

	"github.com/sectrean/di-activator/internal/errors"
)

// cacheStep contributes one value of target to deps and returns the extended set.
type cacheStep func(target reflect.Value, deps Dependencies) (Dependencies, error)

// buildCachePlan builds the cache plan for t: one step for each `di:"cache"` field in field
// order, followed by the declared providers in the order they were declared.
func buildCachePlan(t reflect.Type, tf *typeFields, decls *declarations) ([]cacheStep, []Member) {
	var steps []cacheStep
	var members []Member

	for _, f := range tf.fields {
		if !f.cache {
			continue
		}

		m := Member{
			Name: f.name,
			Kind: MemberCached,
			Key:  f.key(),
			read: fieldReader(f.index),
		}
		steps = append(steps, newCacheStep(t, m))
		members = append(members, m)
	}

	if decls == nil {
		return steps, members
	}

	for _, c := range decls.caches {
		m := Member{
			Name: c.name,
			Key:  c.key,
		}

		switch c.kind {
		case cacheSelf:
			m.Kind = MemberSelf
			m.read = selfReader
		case cacheProvided:
			m.Kind = MemberProvided
			m.read = providerReader(c)
		}

		steps = append(steps, newCacheStep(t, m))
		members = append(members, m)
	}

	return steps, members
}

func newCacheStep(t reflect.Type, m Member) cacheStep {
	return func(target reflect.Value, deps Dependencies) (Dependencies, error) {
		val, err := m.read(target, deps)
		if err != nil {
			return nil, &EvaluationError{
				Type:   t,
				Member: m.Name,
				Err:    err,
			}
		}

		return Extend(deps, m.Key, val), nil
	}
}

func selfReader(target reflect.Value, _ Dependencies) (any, error) {
	return target.Addr().Interface(), nil
}

func providerReader(c *cacheDecl) func(reflect.Value, Dependencies) (any, error) {
	return func(target reflect.Value, deps Dependencies) (any, error) {
		in := []reflect.Value{target.Addr()}
		if c.withDeps {
			in = append(in, safeReflectValue(typeDependencies, deps))
		}

		out, err := call(c.fn, in)
		if err != nil {
			return nil, err
		}
		if err := errorResult(c.fn.Type(), out); err != nil {
			return nil, err
		}

		val := out[0].Interface()
		if isNil(val) {
			return nil, errors.Errorf("%s returned nil", c.name)
		}
		return val, nil
	}
}
