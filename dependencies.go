package di

import (
	"reflect"

	"github.com/sectrean/di-activator/internal/errors"
)

// Dependencies is a read-only set of values keyed by type (and optional tag).
//
// A Dependencies set is never modified after it is created. Merging dependencies for an
// instance returns a new set layered over the original, so the same set can safely be
// shared by many goroutines.
//
// Dependencies is implemented by *DependencySet.
type Dependencies interface {
	// Get returns the value stored for key, and whether it was found.
	Get(key Key) (any, bool)

	// Contains returns true if the set has a value of the given type.
	//
	// Available options:
	// 	- [WithTag] specifies the tag associated with the value.
	Contains(t reflect.Type, opts ...KeyOption) bool

	// Resolve returns the value of the given type.
	// It returns an error matching [ErrDependencyNotRegistered] if the value is not present.
	//
	// Available options:
	// 	- [WithTag] specifies the tag associated with the value.
	Resolve(t reflect.Type, opts ...KeyOption) (any, error)
}

// DependencySet is the persistent implementation of [Dependencies].
//
// Each DependencySet is a layer of entries over an optional parent. Lookups check the
// newest layer first, so entries shadow same-keyed entries of their parents.
type DependencySet struct {
	parent  Dependencies
	entries map[Key]any
}

var _ Dependencies = (*DependencySet)(nil)

// NewDependencies creates a new root [DependencySet] with the provided options.
//
// Available options:
//   - [WithValue] adds a value keyed by its dynamic type.
//   - [WithValueAs] adds a value keyed by type T.
func NewDependencies(opts ...DependencyOption) (*DependencySet, error) {
	s, err := newLayer(nil, opts)
	if err != nil {
		return nil, errors.Wrap(err, "di.NewDependencies")
	}
	return s, nil
}

// Extend returns a new [DependencySet] over parent that contains val for key.
//
// parent is not modified. A nil parent creates a root set.
func Extend(parent Dependencies, key Key, val any) *DependencySet {
	return &DependencySet{
		parent:  parent,
		entries: map[Key]any{key: val},
	}
}

// With returns a child [DependencySet] with the provided options applied.
//
// The receiver is not modified.
func (s *DependencySet) With(opts ...DependencyOption) (*DependencySet, error) {
	child, err := newLayer(s, opts)
	if err != nil {
		return nil, errors.Wrap(err, "di.DependencySet.With")
	}
	return child, nil
}

func newLayer(parent Dependencies, opts []DependencyOption) (*DependencySet, error) {
	s := &DependencySet{
		parent:  parent,
		entries: make(map[Key]any, len(opts)),
	}

	err := applyOptions(opts, func(opt DependencyOption) error {
		return opt.applyDependencies(s)
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Get implements [Dependencies].
func (s *DependencySet) Get(key Key) (any, bool) {
	var layer Dependencies = s
	for layer != nil {
		ds, ok := layer.(*DependencySet)
		if !ok {
			// A foreign implementation; let it do its own lookup.
			return layer.Get(key)
		}
		if ds == nil {
			return nil, false
		}

		if val, found := ds.entries[key]; found {
			return val, true
		}
		layer = ds.parent
	}

	return nil, false
}

// Contains implements [Dependencies].
func (s *DependencySet) Contains(t reflect.Type, opts ...KeyOption) bool {
	_, found := s.Get(newKey(t, opts))
	return found
}

// Resolve implements [Dependencies].
func (s *DependencySet) Resolve(t reflect.Type, opts ...KeyOption) (any, error) {
	key := newKey(t, opts)
	val, found := s.Get(key)
	if !found {
		return nil, errors.Wrapf(ErrDependencyNotRegistered, "resolve %s", key)
	}
	return val, nil
}

// Len returns the number of entries in this layer, not counting parents.
func (s *DependencySet) Len() int {
	return len(s.entries)
}

// Parent returns the set this layer extends, or nil for a root set.
func (s *DependencySet) Parent() Dependencies {
	return s.parent
}

// Resolve a value of type T from the [Dependencies].
func Resolve[T any](deps Dependencies, opts ...KeyOption) (T, error) {
	var val T
	if deps == nil {
		return val, errors.Wrapf(ErrDependencyNotRegistered, "resolve %s: dependencies are nil", KeyFor[T](opts...))
	}

	anyVal, err := deps.Resolve(reflect.TypeFor[T](), opts...)
	if err != nil || anyVal == nil {
		return val, err
	}

	val, ok := anyVal.(T)
	if !ok {
		return val, errors.Errorf("resolve %s: value of type %T is not assignable to %s",
			KeyFor[T](opts...), anyVal, reflect.TypeFor[T]())
	}

	return val, nil
}

// MustResolve resolves a value of type T from the [Dependencies].
//
// If the value cannot be resolved, this function will panic.
func MustResolve[T any](deps Dependencies, opts ...KeyOption) T {
	val, err := Resolve[T](deps, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// DependencyOption is used to add values when calling [NewDependencies] or [DependencySet.With].
type DependencyOption interface {
	applyDependencies(*DependencySet) error
}

type dependencyOption func(*DependencySet) error

func (o dependencyOption) applyDependencies(s *DependencySet) error {
	return o(s)
}

// WithValue adds val keyed by its dynamic type.
//
// The value will be keyed by the actual type even if the variable was declared as an interface.
// Use [WithValueAs] to key a value by an interface type.
//
// Available options:
//   - [WithTag] specifies the tag associated with the value.
func WithValue(val any, opts ...KeyOption) DependencyOption {
	return dependencyOption(func(s *DependencySet) error {
		if isNil(val) {
			return errorf(ErrInvalidDeclaration, "with value: val is nil")
		}
		if _, ok := val.(KeyOption); ok {
			return errorf(ErrInvalidDeclaration, "with value %T: unexpected KeyOption as val", val)
		}

		s.entries[newKey(reflect.TypeOf(val), opts)] = val
		return nil
	})
}

// WithValueAs adds val keyed by type T.
//
// Available options:
//   - [WithTag] specifies the tag associated with the value.
func WithValueAs[T any](val T, opts ...KeyOption) DependencyOption {
	return dependencyOption(func(s *DependencySet) error {
		if isNil(val) {
			return errorf(ErrInvalidDeclaration, "with value as %s: val is nil", reflect.TypeFor[T]())
		}

		s.entries[newKey(reflect.TypeFor[T](), opts)] = val
		return nil
	})
}
