package di

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/sectrean/di-activator/internal/errors"
)

// Declaration declares an activation member for a struct type.
//
// Declarations are registered with [Declare] or [Registry.Declare], usually from an init
// function, before the first instance of the type is activated.
//
// Available declarations:
//   - [Loader] declares the function called after fields have been injected.
//   - [Provide] declares a computed value exposed to descendants.
//   - [CacheSelf] exposes the instance itself to descendants.
//   - [CacheSelfAs] exposes the instance itself to descendants as another type.
//   - [Module] groups declarations.
type Declaration interface {
	declare(*declarationSet)
}

// A Module is a collection of declarations.
// It can be used to export a re-usable group of declarations for related types.
//
// Example:
//
//	var SceneModule = di.Module{
//		di.Loader((*Sprite).Load),
//		di.Provide((*Screen).Clock),
//		di.CacheSelf[*Screen](),
//	}
type Module []Declaration

func (m Module) declare(s *declarationSet) {
	for _, d := range m {
		if d == nil {
			s.errs = s.errs.Append(errorf(ErrInvalidDeclaration, "module: declaration is nil"))
			continue
		}
		d.declare(s)
	}
}

// declarationSet collects declarations passed to a single Declare call, grouped by type.
type declarationSet struct {
	order []reflect.Type
	types map[reflect.Type]*declarations
	errs  errors.MultiError
}

func (s *declarationSet) add(t reflect.Type, err error, fn func(*declarations)) {
	if err != nil {
		s.errs = s.errs.Append(err)
		return
	}

	d, ok := s.types[t]
	if !ok {
		d = &declarations{}
		s.types[t] = d
		s.order = append(s.order, t)
	}
	fn(d)
}

// declarations holds the explicit declarations for one struct type.
//
// A published declarations value is never modified; Declare copies it before appending.
type declarations struct {
	loaders []*loaderDecl
	caches  []*cacheDecl

	// sealed is set once an activator has been built from these declarations.
	sealed bool
}

func (d *declarations) merge(other *declarations) *declarations {
	if d == nil {
		return other
	}
	return &declarations{
		loaders: append(append([]*loaderDecl(nil), d.loaders...), other.loaders...),
		caches:  append(append([]*cacheDecl(nil), d.caches...), other.caches...),
	}
}

func (d *declarations) isSealed() bool {
	return d != nil && d.sealed
}

func (d *declarations) sealedCopy() *declarations {
	if d == nil {
		return &declarations{sealed: true}
	}
	if d.sealed {
		return d
	}
	return &declarations{
		loaders: d.loaders,
		caches:  d.caches,
		sealed:  true,
	}
}

type declaration func(*declarationSet)

func (d declaration) declare(s *declarationSet) {
	d(s)
}

type loaderDecl struct {
	name          string
	fn            reflect.Value
	params        []Key
	permitMissing bool
}

// Loader declares the function called once for each instance after its fields, and the
// fields of the structs it embeds, have been injected.
//
// fn must take a pointer to the struct as its first parameter, usually by passing a method
// expression such as (*Sprite).Load. Any additional parameters are resolved from the
// [Dependencies] the instance is activated with. A parameter of type [Dependencies] receives
// the set itself. fn may return nothing or an error.
//
// At most one Loader may be declared for a type.
//
// Available options:
//   - [PermitMissing] passes zero values for parameters that are not registered.
//   - [WithTagged] specifies a tag for a parameter.
func Loader(fn any, opts ...LoaderOption) Declaration {
	return declaration(func(s *declarationSet) {
		t, l, err := newLoaderDecl(fn, opts)
		s.add(t, err, func(d *declarations) {
			d.loaders = append(d.loaders, l)
		})
	})
}

func newLoaderDecl(fn any, opts []LoaderOption) (reflect.Type, *loaderDecl, error) {
	if fn == nil {
		return nil, nil, errorf(ErrInvalidDeclaration, "loader: fn is nil")
	}

	fnType := reflect.TypeOf(fn)
	if fnType.Kind() != reflect.Func {
		return nil, nil, errorf(ErrInvalidDeclaration, "loader %T: fn must be a function", fn)
	}

	t, err := receiverType(fnType)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loader %s", fnType)
	}

	if fnType.NumOut() > 1 || (fnType.NumOut() == 1 && fnType.Out(0) != typeError) {
		return nil, nil, errorf(ErrInvalidDeclaration, "loader %s: function must return nothing or error", fnType)
	}

	params := make([]Key, fnType.NumIn()-1)
	for i := range params {
		params[i] = Key{Type: fnType.In(i + 1)}
	}

	l := &loaderDecl{
		name:   funcName(fn),
		fn:     reflect.ValueOf(fn),
		params: params,
	}

	err = applyOptions(opts, func(opt LoaderOption) error {
		return opt.applyLoader(l)
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loader %s", fnType)
	}

	return t, l, nil
}

// LoaderOption is used to configure a [Loader].
//
// Available options:
//   - [PermitMissing]
//   - [WithTagged]
type LoaderOption interface {
	applyLoader(*loaderDecl) error
}

type loaderOption func(*loaderDecl) error

func (o loaderOption) applyLoader(l *loaderDecl) error {
	return o(l)
}

// PermitMissing specifies that [Loader] parameters which are not registered receive their
// zero value instead of failing activation.
func PermitMissing() LoaderOption {
	return loaderOption(func(l *loaderDecl) error {
		l.permitMissing = true
		return nil
	})
}

type cacheKind uint8

const (
	cacheProvided cacheKind = iota
	cacheSelf
)

type cacheDecl struct {
	kind     cacheKind
	name     string
	key      Key
	fn       reflect.Value
	withDeps bool
}

// Provide declares a computed value exposed to the descendants of each instance.
//
// fn must take a pointer to the struct as its first parameter and may take a [Dependencies]
// as its second parameter, which receives the set merged so far. It must return the value,
// or the value and an error. The value is keyed by the return type of fn.
//
// A returned error, or a panic, fails the merge with an [EvaluationError].
//
// Available options:
//   - [WithTag] specifies the tag associated with the value.
func Provide(fn any, opts ...KeyOption) Declaration {
	return declaration(func(s *declarationSet) {
		t, c, err := newProvideDecl(fn, opts)
		s.add(t, err, func(d *declarations) {
			d.caches = append(d.caches, c)
		})
	})
}

func newProvideDecl(fn any, opts []KeyOption) (reflect.Type, *cacheDecl, error) {
	if fn == nil {
		return nil, nil, errorf(ErrInvalidDeclaration, "provide: fn is nil")
	}

	fnType := reflect.TypeOf(fn)
	if fnType.Kind() != reflect.Func {
		return nil, nil, errorf(ErrInvalidDeclaration, "provide %T: fn must be a function", fn)
	}

	t, err := receiverType(fnType)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "provide %s", fnType)
	}

	withDeps := false
	switch {
	case fnType.NumIn() == 1:
	case fnType.NumIn() == 2 && fnType.In(1) == typeDependencies:
		withDeps = true
	default:
		return nil, nil, errorf(ErrInvalidDeclaration, "provide %s: function must take (*T) or (*T, di.Dependencies)", fnType)
	}

	var valType reflect.Type
	switch {
	case fnType.NumOut() == 1 && fnType.Out(0) != typeError:
		valType = fnType.Out(0)
	case fnType.NumOut() == 2 && fnType.Out(1) == typeError:
		valType = fnType.Out(0)
	default:
		return nil, nil, errorf(ErrInvalidDeclaration, "provide %s: function must return V or (V, error)", fnType)
	}

	return t, &cacheDecl{
		kind:     cacheProvided,
		name:     funcName(fn),
		key:      newKey(valType, opts),
		fn:       reflect.ValueOf(fn),
		withDeps: withDeps,
	}, nil
}

// CacheSelf exposes each instance of T to its descendants, keyed by T.
//
// T must be a pointer to a struct.
//
// Available options:
//   - [WithTag] specifies the tag associated with the value.
func CacheSelf[T any](opts ...KeyOption) Declaration {
	return cacheSelfAs(reflect.TypeFor[T](), reflect.TypeFor[T](), opts)
}

// CacheSelfAs exposes each instance of T to its descendants, keyed by As.
//
// T must be a pointer to a struct that is assignable to As.
//
// Available options:
//   - [WithTag] specifies the tag associated with the value.
func CacheSelfAs[T, As any](opts ...KeyOption) Declaration {
	return cacheSelfAs(reflect.TypeFor[T](), reflect.TypeFor[As](), opts)
}

func cacheSelfAs(ptrType, asType reflect.Type, opts []KeyOption) Declaration {
	return declaration(func(s *declarationSet) {
		var t reflect.Type
		var err error

		switch {
		case ptrType.Kind() != reflect.Ptr || ptrType.Elem().Kind() != reflect.Struct:
			err = errorf(ErrInvalidDeclaration, "cache self %s: type must be a pointer to a struct", ptrType)
		case !ptrType.AssignableTo(asType):
			err = errorf(ErrInvalidDeclaration, "cache self %s: type not assignable to %s", ptrType, asType)
		default:
			t = ptrType.Elem()
		}

		s.add(t, err, func(d *declarations) {
			d.caches = append(d.caches, &cacheDecl{
				kind: cacheSelf,
				name: "self",
				key:  newKey(asType, opts),
			})
		})
	})
}

// receiverType returns the struct type of the first parameter of a loader or provider function.
func receiverType(fnType reflect.Type) (reflect.Type, error) {
	if fnType.NumIn() == 0 {
		return nil, errorf(ErrInvalidDeclaration, "function must take a pointer to a struct as its first parameter")
	}

	recv := fnType.In(0)
	if recv.Kind() != reflect.Ptr || recv.Elem().Kind() != reflect.Struct {
		return nil, errorf(ErrInvalidDeclaration, "first parameter %s must be a pointer to a struct", recv)
	}

	return recv.Elem(), nil
}

// funcName returns the short name of a function, e.g. "Load" for (*Sprite).Load.
func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return reflect.TypeOf(fn).String()
	}

	name := f.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")

	// Function literals are named func1, func2.1, etc.
	if strings.HasPrefix(name, "func") || strings.Trim(name, "0123456789") == "" {
		return reflect.TypeOf(fn).String()
	}
	return name
}
