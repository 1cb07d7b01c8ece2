package dihttp

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sectrean/di-activator"
	"github.com/sectrean/di-activator/internal/errors"
)

// RequestMiddlewareOption is an option used to configure the middleware when calling
// [NewRequestMiddleware].
type RequestMiddlewareOption interface {
	applyRequestMiddleware(*requestMiddlewareConfig) error
}

type requestMiddlewareOption func(*requestMiddlewareConfig) error

func (o requestMiddlewareOption) applyRequestMiddleware(c *requestMiddlewareConfig) error {
	return o(c)
}

// RequestDependenciesFunc returns values to add to the dependencies of the request r.
type RequestDependenciesFunc = func(r *http.Request) ([]di.DependencyOption, error)

// WithDependencyOptions adds the values to the dependencies of every request.
//
// The options are validated when the middleware is created.
func WithDependencyOptions(opts ...di.DependencyOption) RequestMiddlewareOption {
	return requestMiddlewareOption(func(c *requestMiddlewareConfig) error {
		if _, err := di.NewDependencies(opts...); err != nil {
			return errors.Wrap(err, "WithDependencyOptions")
		}

		c.opts = append(c.opts, opts...)
		return nil
	})
}

// WithRequestDependencies adds the values returned by fn to the dependencies of each request.
//
// If fn returns an error, the [ErrorHandler] is called and the next handler is not.
func WithRequestDependencies(fn RequestDependenciesFunc) RequestMiddlewareOption {
	return requestMiddlewareOption(func(c *requestMiddlewareConfig) error {
		if fn == nil {
			return errors.New("WithRequestDependencies: fn is nil")
		}

		c.requestFuncs = append(c.requestFuncs, fn)
		return nil
	})
}

// WithErrorHandler sets the handler for when the request dependencies cannot be built.
func WithErrorHandler(h ErrorHandler) RequestMiddlewareOption {
	return requestMiddlewareOption(func(c *requestMiddlewareConfig) error {
		if h == nil {
			return errors.New("WithErrorHandler: h is nil")
		}

		c.errorHandler = h
		return nil
	})
}

// WithLogger sets the logger used by the default [ErrorHandler].
func WithLogger(logger *zap.Logger) RequestMiddlewareOption {
	return requestMiddlewareOption(func(c *requestMiddlewareConfig) error {
		if logger == nil {
			return errors.New("WithLogger: logger is nil")
		}

		c.logger = logger
		return nil
	})
}
