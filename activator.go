package di

import (
	"reflect"
)

// typeActivator activates and merges dependencies for the members declared directly on one
// struct type. The members of its embedded base struct are handled by base.
//
// A typeActivator is fully built before it is published and never changes afterwards.
type typeActivator struct {
	typ        reflect.Type
	base       *typeActivator
	baseIndex  int
	injections []injectStep
	caches     []cacheStep
	members    []Member

	// err is set when the plan for this type, or one of its bases, could not be built.
	err error
}

// activate injects the base struct first, then runs this type's steps in order.
// It stops at the first error.
func (a *typeActivator) activate(v reflect.Value, deps Dependencies) error {
	if a.err != nil {
		return a.err
	}

	if a.base != nil {
		if err := a.base.activate(baseValue(v, a.baseIndex), deps); err != nil {
			return err
		}
	}

	for _, step := range a.injections {
		if err := step(v, deps); err != nil {
			return err
		}
	}

	return nil
}

// merge applies the base struct's contributions first, then this type's contributions in
// order. deps is returned as-is when nothing in the chain contributes.
func (a *typeActivator) merge(v reflect.Value, deps Dependencies) (Dependencies, error) {
	if a.err != nil {
		return nil, a.err
	}

	if a.base != nil {
		var err error
		deps, err = a.base.merge(baseValue(v, a.baseIndex), deps)
		if err != nil {
			return nil, err
		}
	}

	for _, step := range a.caches {
		var err error
		deps, err = step(v, deps)
		if err != nil {
			return nil, err
		}
	}

	return deps, nil
}

// inspect lists the members of the chain, base first.
func (a *typeActivator) inspect(v reflect.Value, deps Dependencies, members []Member) []Member {
	if a.base != nil {
		members = a.base.inspect(baseValue(v, a.baseIndex), deps, members)
	}

	for _, m := range a.members {
		members = append(members, m.describe(a.typ, v, deps))
	}

	return members
}
