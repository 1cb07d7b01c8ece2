package di

import (
	"reflect"

	"github.com/sectrean/di-activator/internal/errors"
)

// Invoke calls the given function with parameters resolved from the provided [Dependencies].
//
// The function may take any number of parameters which will be resolved from deps,
// and may return any number of results. A parameter of type [Dependencies] receives deps itself.
// An [error] return parameter will be passed along and any other return parameters are ignored.
//
// Available options:
//   - [WithTagged] specifies a tag for a parameter.
func Invoke(deps Dependencies, fn any, opts ...InvokeOption) error {
	if fn == nil {
		return errors.New("di.Invoke: fn is nil")
	}

	fnType := reflect.TypeOf(fn)
	fnVal := reflect.ValueOf(fn)

	// Make sure fn is a function
	if fnType.Kind() != reflect.Func {
		return errors.Errorf("di.Invoke %T: fn must be a function", fn)
	}

	params := make([]Key, fnType.NumIn())
	for i := range fnType.NumIn() {
		params[i] = Key{Type: fnType.In(i)}
	}

	config := &invokeConfig{
		params: params,
	}

	err := applyOptions(opts, func(opt InvokeOption) error {
		return opt.applyInvokeConfig(config)
	})
	if err != nil {
		return errors.Wrapf(err, "di.Invoke %T", fn)
	}

	in, err := resolveParams(nil, config.params, deps, false)
	if err != nil {
		return errors.Wrapf(err, "di.Invoke %T", fn)
	}

	var out []reflect.Value
	if fnType.IsVariadic() {
		out = fnVal.CallSlice(in)
	} else {
		out = fnVal.Call(in)
	}

	// Return the first error return value, if any.
	// Don't wrap the error, return it as-is.
	for i := range fnType.NumOut() {
		if fnType.Out(i) == typeError {
			err, _ := out[i].Interface().(error)
			return err
		}
	}

	return nil
}

// InvokeOption is used to configure the behavior of [Invoke].
//
// Available options:
//   - [WithTagged]
type InvokeOption interface {
	applyInvokeConfig(*invokeConfig) error
}

type invokeConfig struct {
	params []Key
}

// resolveParams resolves a value for each parameter key.
//
// owner is the struct type requesting the parameters, used in errors. It may be nil.
// A [Dependencies] parameter without a tag receives deps itself.
func resolveParams(owner reflect.Type, params []Key, deps Dependencies, permitMissing bool) ([]reflect.Value, error) {
	in := make([]reflect.Value, len(params))

	for i, key := range params {
		if key.Type == typeDependencies && key.Tag == nil {
			in[i] = safeReflectValue(key.Type, deps)
			continue
		}

		var val any
		var found bool
		if deps != nil {
			val, found = deps.Get(key)
		}

		if !found {
			if permitMissing {
				in[i] = reflect.Zero(key.Type)
				continue
			}

			// Stop at the first error
			if owner == nil {
				return nil, errors.Wrapf(ErrDependencyNotRegistered, "resolve %s", key)
			}
			return nil, &DependencyNotRegisteredError{
				Type:       owner,
				Dependency: key,
			}
		}

		rv := safeReflectValue(key.Type, val)
		if !rv.Type().AssignableTo(key.Type) {
			return nil, errors.Errorf("resolve %s: value of type %s is not assignable", key, rv.Type())
		}
		in[i] = rv
	}

	return in, nil
}
