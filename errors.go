package di

import (
	"fmt"
	"reflect"

	"github.com/sectrean/di-activator/internal/errors"
)

var (
	// ErrDependencyNotRegistered is returned when a dependency is not present in the [Dependencies].
	ErrDependencyNotRegistered = errors.New("dependency not registered")
	// ErrMultipleLoaders is returned when more than one [Loader] is declared for a type.
	ErrMultipleLoaders = errors.New("multiple loaders declared")
	// ErrEvaluation is returned when a cached value could not be produced.
	ErrEvaluation = errors.New("evaluation failed")
	// ErrInvalidInstance is returned when an instance is not a non-nil pointer to a struct.
	ErrInvalidInstance = errors.New("instance must be a non-nil pointer to a struct")
	// ErrInvalidDeclaration is returned for struct tags or declarations that cannot be used.
	ErrInvalidDeclaration = errors.New("invalid declaration")
	// ErrTypeSealed is returned when declaring members for a type that has already been activated.
	ErrTypeSealed = errors.New("type already activated")
)

// DependencyNotRegisteredError is returned when Type requires a dependency that is not present
// in the [Dependencies] it is activated with.
//
// It matches [ErrDependencyNotRegistered] with errors.Is.
type DependencyNotRegisteredError struct {
	// Type is the struct type that requested the dependency.
	Type reflect.Type
	// Dependency is the key that was not found.
	Dependency Key
}

func (e *DependencyNotRegisteredError) Error() string {
	return fmt.Sprintf("%s requires %s: %s", e.Type, e.Dependency, ErrDependencyNotRegistered)
}

func (e *DependencyNotRegisteredError) Unwrap() error {
	return ErrDependencyNotRegistered
}

// MultipleLoadersError is returned when Type declares more than one [Loader].
//
// It matches [ErrMultipleLoaders] with errors.Is.
type MultipleLoadersError struct {
	Type  reflect.Type
	Count int
}

func (e *MultipleLoadersError) Error() string {
	return fmt.Sprintf("%s: %d loaders declared, at most one is allowed", e.Type, e.Count)
}

func (e *MultipleLoadersError) Unwrap() error {
	return ErrMultipleLoaders
}

// EvaluationError is returned when the value of a cached member could not be produced.
//
// It matches [ErrEvaluation] with errors.Is, and the underlying error with errors.Is or errors.As.
type EvaluationError struct {
	Type   reflect.Type
	Member string
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s.%s: %s: %v", e.Type, e.Member, ErrEvaluation, e.Err)
}

func (e *EvaluationError) Unwrap() []error {
	return []error{ErrEvaluation, e.Err}
}

// sentinelError carries its own message and matches a sentinel error.
type sentinelError struct {
	msg      string
	sentinel error
}

func errorf(sentinel error, format string, args ...any) error {
	return &sentinelError{
		msg:      fmt.Sprintf(format, args...),
		sentinel: sentinel,
	}
}

func (e *sentinelError) Error() string {
	return e.msg
}

func (e *sentinelError) Unwrap() error {
	return e.sentinel
}
