package di

import (
	"fmt"
	"reflect"
)

// Key identifies a dependency in a [Dependencies] set.
//
// Type is the type the dependency is resolved as. Tag is optional and can be used to
// differentiate between dependencies of the same type.
type Key struct {
	Type reflect.Type
	Tag  any
}

// KeyFor returns the [Key] for type T with the provided options applied.
func KeyFor[T any](opts ...KeyOption) Key {
	return newKey(reflect.TypeFor[T](), opts)
}

func newKey(t reflect.Type, opts []KeyOption) Key {
	key := Key{Type: t}
	for _, opt := range opts {
		key = opt.applyKey(key)
	}
	return key
}

func (k Key) String() string {
	if k.Tag == nil {
		return k.Type.String()
	}
	return fmt.Sprintf("%s (Tag %v)", k.Type, k.Tag)
}

// KeyOption is used to modify the [Key] of a dependency.
//
// Available options:
//   - [WithTag]
type KeyOption interface {
	applyKey(Key) Key
}

// WithTag is used to specify the tag associated with a dependency.
//
// WithTag can be used with:
//   - [WithValue]
//   - [WithValueAs]
//   - [Resolve]
//   - [MustResolve]
//   - [Dependencies.Contains]
//   - [Dependencies.Resolve]
//   - [Provide]
//   - [CacheSelf]
//   - [CacheSelfAs]
func WithTag(tag any) KeyOption {
	return tagOption{tag: tag}
}

type tagOption struct {
	tag any
}

func (o tagOption) applyKey(key Key) Key {
	return Key{
		Type: key.Type,
		Tag:  o.tag,
	}
}

// WithTagged is used to specify a tag for a function parameter when calling [Invoke]
// or declaring a [Loader].
//
// This option can be used multiple times to specify tags for several parameters.
//
// Example:
//
//	err := di.Invoke(deps, func(primary, replica *sql.DB) {},
//		di.WithTagged[*sql.DB]("primary"),
//		di.WithTagged[*sql.DB]("replica"),
//	)
//
// This option will return an error if the function does not have a parameter of type Dependency.
func WithTagged[Dependency any](tag any) ParamTagOption {
	return paramTagOption{
		t:   reflect.TypeFor[Dependency](),
		tag: tag,
	}
}

// ParamTagOption is used to specify a tag for a function parameter when calling [Invoke] or [Loader].
type ParamTagOption interface {
	InvokeOption
	LoaderOption
}

type paramTagOption struct {
	t   reflect.Type
	tag any
}

// applyParams assigns the tag to the first parameter of the right type that does not already have a tag.
// If no parameter is found, an error is returned.
//
// The slice is modified in place.
func (o paramTagOption) applyParams(params []Key) error {
	for i := 0; i < len(params); i++ {
		// Skip past any that have already been assigned a tag
		if params[i].Type == o.t && params[i].Tag == nil {
			params[i].Tag = o.tag
			return nil
		}
	}
	return errorf(ErrInvalidDeclaration, "with tagged %s: parameter not found", o.t)
}

func (o paramTagOption) applyInvokeConfig(c *invokeConfig) error {
	return o.applyParams(c.params)
}

func (o paramTagOption) applyLoader(l *loaderDecl) error {
	return o.applyParams(l.params)
}

var _ ParamTagOption = paramTagOption{}
