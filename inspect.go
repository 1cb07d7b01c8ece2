package di

import (
	"fmt"
	"reflect"
)

// MemberKind describes how a struct member takes part in activation.
type MemberKind uint8

const (
	// MemberResolved is a field injected from the dependencies.
	MemberResolved MemberKind = iota
	// MemberCached is a field exposed to descendants.
	MemberCached
	// MemberProvided is a computed value exposed to descendants.
	MemberProvided
	// MemberSelf is the instance itself exposed to descendants.
	MemberSelf
	// MemberLoader is the function called after injection.
	MemberLoader
)

func (k MemberKind) String() string {
	switch k {
	case MemberResolved:
		return "Resolved"
	case MemberCached:
		return "Cached"
	case MemberProvided:
		return "Provided"
	case MemberSelf:
		return "Self"
	case MemberLoader:
		return "Loader"
	default:
		return fmt.Sprintf("Unknown MemberKind %d", k)
	}
}

// Member describes one activation member of an instance, as returned by [Inspect].
type Member struct {
	// Type is the struct type that declares the member.
	Type reflect.Type
	Name string
	Kind MemberKind
	// Key is the dependency key the member is resolved or cached as. It is empty for loaders.
	Key Key
	// Value is the current value of the member. It is an [EvaluationFailure] if the value
	// could not be produced, and nil for loaders.
	Value any

	read func(reflect.Value, Dependencies) (any, error)
}

func (m Member) describe(t reflect.Type, v reflect.Value, deps Dependencies) Member {
	d := Member{
		Type: t,
		Name: m.Name,
		Kind: m.Kind,
		Key:  m.Key,
	}

	if m.read != nil {
		val, err := m.read(v, deps)
		if err != nil {
			d.Value = EvaluationFailure{Err: &EvaluationError{Type: t, Member: m.Name, Err: err}}
		} else {
			d.Value = val
		}
	}

	return d
}

func (m Member) String() string {
	if m.Kind == MemberLoader {
		return fmt.Sprintf("%s.%s (%s)", m.Type, m.Name, m.Kind)
	}
	return fmt.Sprintf("%s.%s (%s %s) = %v", m.Type, m.Name, m.Kind, m.Key, m.Value)
}

// EvaluationFailure is the placeholder value [Inspect] reports for a member whose value
// could not be produced.
type EvaluationFailure struct {
	Err error
}

func (f EvaluationFailure) String() string {
	return fmt.Sprintf("<%v>", f.Err)
}
