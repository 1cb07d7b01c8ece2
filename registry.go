package di

import (
	"reflect"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/sectrean/di-activator/internal/errors"
)

// Registry holds member declarations and the activators built from them.
//
// An activator is built for a struct type the first time an instance of that type is
// activated, merged or inspected. It is never rebuilt or evicted. Concurrent first use of a
// type may build more than one activator, but only the first one stored is ever used.
//
// A Registry is safe for concurrent use.
type Registry struct {
	activators *xsync.MapOf[reflect.Type, *typeActivator]
	declared   *xsync.MapOf[reflect.Type, *declarations]
	logger     *zap.Logger

	// mu serializes Declare with the sealing of a type's declarations by build.
	mu sync.Mutex
}

// DefaultRegistry is the Registry used by the package-level functions.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a new [Registry] with the provided options.
//
// Available options:
//   - [WithLogger] sets the logger used to report activator builds.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		activators: xsync.NewMapOf[reflect.Type, *typeActivator](),
		declared:   xsync.NewMapOf[reflect.Type, *declarations](),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt.applyRegistry(r)
	}

	return r
}

// RegistryOption is used to configure a [Registry] when calling [NewRegistry].
type RegistryOption interface {
	applyRegistry(*Registry)
}

type registryOption func(*Registry)

func (o registryOption) applyRegistry(r *Registry) {
	o(r)
}

// WithLogger sets the logger used by the [Registry].
// Activator builds are logged at debug level.
func WithLogger(logger *zap.Logger) RegistryOption {
	return registryOption(func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// Declare registers declarations with the [Registry].
//
// Declarations for a type must be registered before the first instance of the type is
// activated. Declaring members for a type whose declarations have already been read to build
// its activator returns an error matching [ErrTypeSealed].
//
// Declare is all or nothing: if any declaration is invalid or any type is sealed, no
// declaration from the call is registered.
func (r *Registry) Declare(decls ...Declaration) error {
	set := &declarationSet{
		types: make(map[reflect.Type]*declarations),
	}
	Module(decls).declare(set)

	if err := set.errs.Join(); err != nil {
		return errors.Wrap(err, "di.Declare")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var errs errors.MultiError
	for _, t := range set.order {
		if old, _ := r.declared.Load(t); old.isSealed() {
			errs = errs.Append(errorf(ErrTypeSealed, "%s: %s", t, ErrTypeSealed))
		}
	}
	if err := errs.Wrap("di.Declare"); err != nil {
		return err
	}

	for _, t := range set.order {
		old, _ := r.declared.Load(t)
		r.declared.Store(t, old.merge(set.types[t]))
	}

	return nil
}

// seal returns the declarations for t and prevents any more from being added.
func (r *Registry) seal(t reflect.Type) *declarations {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, _ := r.declared.Load(t)
	sealed := old.sealedCopy()
	r.declared.Store(t, sealed)
	return sealed
}

// Activate injects dependencies into instance, which must be a non-nil pointer to a struct.
//
// The embedded base struct is activated before the fields declared on the struct itself.
// Each struct's `di:"resolve"` fields are injected in field order, then its [Loader] is called.
// Activation stops at the first error.
func (r *Registry) Activate(instance any, deps Dependencies) error {
	v, err := structTarget(instance)
	if err != nil {
		return errors.Wrap(err, "di.Activate")
	}

	err = r.activator(v.Type()).activate(v, deps)
	return errors.Wrapf(err, "di.Activate %T", instance)
}

// MergeDependencies returns deps extended with the values instance exposes to its descendants.
//
// The embedded base struct's values are added first, so values of the struct itself shadow
// same-keyed values of its base. If nothing is exposed, deps is returned unchanged.
// deps is never modified.
func (r *Registry) MergeDependencies(instance any, deps Dependencies) (Dependencies, error) {
	v, err := structTarget(instance)
	if err != nil {
		return nil, errors.Wrap(err, "di.MergeDependencies")
	}

	merged, err := r.activator(v.Type()).merge(v, deps)
	if err != nil {
		return nil, errors.Wrapf(err, "di.MergeDependencies %T", instance)
	}

	return merged, nil
}

// Inspect lists the activation members of instance and their current values, base struct first.
//
// Inspect is meant for display. A provided value that cannot be produced is reported as an
// [EvaluationFailure] value rather than an error. deps is passed to providers that accept it
// and may be nil.
func (r *Registry) Inspect(instance any, deps Dependencies) ([]Member, error) {
	v, err := structTarget(instance)
	if err != nil {
		return nil, errors.Wrap(err, "di.Inspect")
	}

	a := r.activator(v.Type())
	if a.err != nil {
		return nil, errors.Wrapf(a.err, "di.Inspect %T", instance)
	}

	return a.inspect(v, deps, nil), nil
}

// activator returns the published activator for the struct type t, building it if needed.
func (r *Registry) activator(t reflect.Type) *typeActivator {
	if a, ok := r.activators.Load(t); ok {
		return a
	}

	a := r.build(t)
	actual, _ := r.activators.LoadOrStore(t, a)
	return actual
}

func (r *Registry) build(t reflect.Type) *typeActivator {
	a := &typeActivator{
		typ:       t,
		baseIndex: -1,
	}
	a.err = r.buildPlans(a)

	if a.err != nil {
		r.logger.Debug("activator built",
			zap.Stringer("type", t),
			zap.Error(a.err),
		)
		return a
	}

	fields := []zap.Field{
		zap.Stringer("type", t),
		zap.Int("injections", len(a.injections)),
		zap.Int("caches", len(a.caches)),
	}
	if a.base != nil {
		fields = append(fields, zap.Stringer("base", a.base.typ))
	}
	r.logger.Debug("activator built", fields...)

	return a
}

func (r *Registry) buildPlans(a *typeActivator) error {
	decls := r.seal(a.typ)

	tf, err := scanFields(a.typ)
	if err != nil {
		return errors.Wrapf(err, "scan %s", a.typ)
	}

	injections, injectMembers, err := scanInjections(a.typ, tf, decls)
	if err != nil {
		return err
	}

	caches, cacheMembers := buildCachePlan(a.typ, tf, decls)

	a.injections = injections
	a.caches = caches
	a.members = append(injectMembers, cacheMembers...)

	if tf.baseType != nil {
		a.base = r.activator(tf.baseType)
		a.baseIndex = tf.baseIndex

		if a.base.err != nil {
			return a.base.err
		}
	}

	return nil
}

// Declare registers declarations with the [DefaultRegistry].
func Declare(decls ...Declaration) error {
	return DefaultRegistry.Declare(decls...)
}

// MustDeclare registers declarations with the [DefaultRegistry] and panics on error.
//
// It is intended for use in init functions.
func MustDeclare(decls ...Declaration) {
	if err := DefaultRegistry.Declare(decls...); err != nil {
		panic(err)
	}
}

// Activate injects dependencies into instance using the [DefaultRegistry].
func Activate(instance any, deps Dependencies) error {
	return DefaultRegistry.Activate(instance, deps)
}

// MergeDependencies returns deps extended with the values instance exposes, using the [DefaultRegistry].
func MergeDependencies(instance any, deps Dependencies) (Dependencies, error) {
	return DefaultRegistry.MergeDependencies(instance, deps)
}

// Inspect lists the activation members of instance using the [DefaultRegistry].
func Inspect(instance any, deps Dependencies) ([]Member, error) {
	return DefaultRegistry.Inspect(instance, deps)
}
