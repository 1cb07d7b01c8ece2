package dihttp

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sectrean/di-activator"
	"github.com/sectrean/di-activator/dicontext"
	"github.com/sectrean/di-activator/internal/errors"
)

// NewRequestMiddleware returns middleware that extends deps for each request.
//
// The current [*http.Request] is added to a new layer over deps, followed by any values from
// [WithDependencyOptions] and [WithRequestDependencies]. deps itself is never modified.
//
// The per-request dependencies are stored on the request context and can be accessed using
// [dicontext.Dependencies], [dicontext.Resolve], [dicontext.MustResolve] or [dicontext.Activate].
//
// Available options:
//   - [WithDependencyOptions]: Add fixed values to each request's dependencies.
//   - [WithRequestDependencies]: Add values computed from the request.
//   - [WithErrorHandler]: Set the handler called when the request dependencies cannot be built.
//   - [WithLogger]: Set the logger used by the default error handler.
func NewRequestMiddleware(
	deps di.Dependencies,
	opts ...RequestMiddlewareOption,
) (func(http.Handler) http.Handler, error) {
	if deps == nil {
		return nil, errors.New("dihttp.NewRequestMiddleware: deps is nil")
	}

	cfg := &requestMiddlewareConfig{
		deps:   deps,
		logger: zap.NewNop(),
	}

	var errs errors.MultiError
	for _, opt := range opts {
		err := opt.applyRequestMiddleware(cfg)
		errs = errs.Append(err)
	}
	if err := errs.Wrap("dihttp.NewRequestMiddleware"); err != nil {
		return nil, err
	}

	if cfg.errorHandler == nil {
		cfg.errorHandler = defaultErrorHandler(cfg.logger)
	}

	return func(next http.Handler) http.Handler {
		return &requestMiddleware{
			requestMiddlewareConfig: cfg,
			next:                    next,
		}
	}, nil
}

// ErrorHandler writes an error response to the client.
// This is called by the request middleware when the request dependencies cannot be built.
//
// The default handler logs the error and writes a 500 Internal Server Error response.
type ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

func defaultErrorHandler(logger *zap.Logger) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("error building HTTP request dependencies",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type requestMiddlewareConfig struct {
	deps         di.Dependencies
	opts         []di.DependencyOption
	requestFuncs []RequestDependenciesFunc
	errorHandler ErrorHandler
	logger       *zap.Logger
}

type requestMiddleware struct {
	*requestMiddlewareConfig
	next http.Handler
}

func (m *requestMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deps, err := m.requestDependencies(r)
	if err != nil {
		m.errorHandler(w, r, err)
		return
	}

	ctx := dicontext.WithDependencies(r.Context(), deps)
	m.next.ServeHTTP(w, r.WithContext(ctx))
}

func (m *requestMiddleware) requestDependencies(r *http.Request) (di.Dependencies, error) {
	deps := di.Extend(m.deps, di.KeyFor[*http.Request](), r)

	opts := m.opts
	for _, fn := range m.requestFuncs {
		reqOpts, err := fn(r)
		if err != nil {
			return nil, errors.Wrapf(err, "dihttp: request dependencies %s %s", r.Method, r.URL.Path)
		}
		opts = append(opts[:len(opts):len(opts)], reqOpts...)
	}

	if len(opts) == 0 {
		return deps, nil
	}

	withOpts, err := deps.With(opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "dihttp: request dependencies %s %s", r.Method, r.URL.Path)
	}

	return withOpts, nil
}
