package di

import (
	"reflect"
	"unsafe"

	"github.com/sectrean/di-activator/internal/errors"
)

// These are commonly used types.
var (
	typeError        = reflect.TypeFor[error]()
	typeDependencies = reflect.TypeFor[Dependencies]()
)

func safeReflectValue(t reflect.Type, val any) reflect.Value {
	if val == nil {
		return reflect.Zero(t)
	}

	return reflect.ValueOf(val)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// Apply functional options and join any errors together.
func applyOptions[O any](opts []O, f func(O) error) error {
	var errs errors.MultiError

	for _, o := range opts {
		errs = errs.Append(f(o))
	}

	return errs.Join()
}

// call invokes fn and turns a panic into an error.
// The last argument of a variadic fn is passed as the slice.
func call(fn reflect.Value, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = errors.Wrap(rErr, "panic")
				return
			}
			err = errors.Errorf("panic: %v", r)
		}
	}()

	if fn.Type().IsVariadic() {
		return fn.CallSlice(in), nil
	}
	return fn.Call(in), nil
}

// errorResult returns the error out value of a function with an error as its last result.
func errorResult(fnType reflect.Type, out []reflect.Value) error {
	n := fnType.NumOut()
	if n == 0 || fnType.Out(n-1) != typeError {
		return nil
	}

	err, _ := out[n-1].Interface().(error)
	return err
}

// structTarget validates instance and returns the addressable struct value it points to.
func structTarget(instance any) (reflect.Value, error) {
	if instance == nil {
		return reflect.Value{}, errorf(ErrInvalidInstance, "instance is nil: %s", ErrInvalidInstance)
	}

	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Ptr || v.Type().Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errorf(ErrInvalidInstance, "%T: %s", instance, ErrInvalidInstance)
	}
	if v.IsNil() {
		return reflect.Value{}, errorf(ErrInvalidInstance, "%T is nil: %s", instance, ErrInvalidInstance)
	}

	return v.Elem(), nil
}

// baseValue returns the embedded base struct at index of the addressable struct v.
//
// An unexported base is reached through its address so that its methods can be called and
// its address exposed like an exported one.
func baseValue(v reflect.Value, index int) reflect.Value {
	f := v.Field(index)
	if f.CanInterface() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}
