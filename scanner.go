package di

import (
	"reflect"

	"github.com/sectrean/di-activator/internal/errors"
)

// injectStep writes one resolved value into target, the struct value of the declaring type.
type injectStep func(target reflect.Value, deps Dependencies) error

// scanInjections builds the injection plan for t: one step for each `di:"resolve"` field
// in field order, followed by the loader if one is declared.
func scanInjections(t reflect.Type, tf *typeFields, decls *declarations) ([]injectStep, []Member, error) {
	var steps []injectStep
	var members []Member

	for _, f := range tf.fields {
		if !f.resolve {
			continue
		}

		steps = append(steps, newFieldInjection(t, f))
		members = append(members, Member{
			Name: f.name,
			Kind: MemberResolved,
			Key:  f.key(),
			read: fieldReader(f.index),
		})
	}

	if decls == nil || len(decls.loaders) == 0 {
		return steps, members, nil
	}

	if len(decls.loaders) > 1 {
		return nil, nil, &MultipleLoadersError{
			Type:  t,
			Count: len(decls.loaders),
		}
	}

	l := decls.loaders[0]
	steps = append(steps, newLoaderStep(t, l))
	members = append(members, Member{
		Name: l.name,
		Kind: MemberLoader,
	})

	return steps, members, nil
}

func newFieldInjection(t reflect.Type, f fieldSpec) injectStep {
	key := f.key()

	return func(target reflect.Value, deps Dependencies) error {
		var val any
		var found bool
		if deps != nil {
			val, found = deps.Get(key)
		}

		if !found {
			if f.optional {
				return nil
			}
			return &DependencyNotRegisteredError{
				Type:       t,
				Dependency: key,
			}
		}

		rv := safeReflectValue(f.typ, val)
		if !rv.Type().AssignableTo(f.typ) {
			return errors.Errorf("field %s: value of type %s is not assignable to %s", f.name, rv.Type(), f.typ)
		}

		target.Field(f.index).Set(rv)
		return nil
	}
}

func newLoaderStep(t reflect.Type, l *loaderDecl) injectStep {
	return func(target reflect.Value, deps Dependencies) error {
		params, err := resolveParams(t, l.params, deps, l.permitMissing)
		if err != nil {
			return errors.Wrapf(err, "loader %s", l.name)
		}

		in := make([]reflect.Value, 0, len(params)+1)
		in = append(in, target.Addr())
		in = append(in, params...)

		out, err := call(l.fn, in)
		if err != nil {
			return errors.Wrapf(err, "loader %s", l.name)
		}

		return errors.Wrapf(errorResult(l.fn.Type(), out), "loader %s", l.name)
	}
}

func fieldReader(index int) func(reflect.Value, Dependencies) (any, error) {
	return func(target reflect.Value, _ Dependencies) (any, error) {
		return target.Field(index).Interface(), nil
	}
}
