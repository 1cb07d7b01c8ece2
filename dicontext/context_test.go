package dicontext_test

import (
	"context"
	"testing"

	"github.com/sectrean/di-activator"
	"github.com/sectrean/di-activator/dicontext"
	"github.com/sectrean/di-activator/internal/errors"
	"github.com/sectrean/di-activator/internal/testtypes"
	"github.com/sectrean/di-activator/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Dependencies(t *testing.T) {
	t.Run("with dependencies", func(t *testing.T) {
		deps, err := di.NewDependencies()
		require.NoError(t, err)

		ctx := dicontext.WithDependencies(context.Background(), deps)
		got := dicontext.Dependencies(ctx)

		assert.Same(t, deps, got)
	})

	t.Run("no dependencies", func(t *testing.T) {
		got := dicontext.Dependencies(context.Background())
		assert.Nil(t, got)
	})
}

func Test_Resolve(t *testing.T) {
	t.Run("resolve", func(t *testing.T) {
		logger := &testtypes.MemoryLogger{}
		deps, err := di.NewDependencies(
			di.WithValueAs[testtypes.Logger](logger),
		)
		require.NoError(t, err)

		ctx := dicontext.WithDependencies(context.Background(), deps)

		got, err := dicontext.Resolve[testtypes.Logger](ctx)
		assert.Same(t, logger, got)
		assert.NoError(t, err)
	})

	t.Run("resolve with tag", func(t *testing.T) {
		game := &testtypes.Clock{Now: 1}
		deps, err := di.NewDependencies(
			di.WithValue(&testtypes.Clock{Now: 2}),
			di.WithValue(game, di.WithTag("game")),
		)
		require.NoError(t, err)

		ctx := dicontext.WithDependencies(context.Background(), deps)

		got, err := dicontext.Resolve[*testtypes.Clock](ctx, di.WithTag("game"))
		assert.Same(t, game, got)
		assert.NoError(t, err)
	})

	t.Run("not registered", func(t *testing.T) {
		deps, err := di.NewDependencies()
		require.NoError(t, err)

		ctx := dicontext.WithDependencies(context.Background(), deps)

		got, err := dicontext.Resolve[testtypes.Logger](ctx)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.True(t, errors.Is(err, di.ErrDependencyNotRegistered))
		assert.EqualError(t, err,
			"resolve from context: resolve testtypes.Logger: dependency not registered")
	})

	t.Run("no dependencies", func(t *testing.T) {
		got, err := dicontext.Resolve[testtypes.Logger](context.Background())
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.EqualError(t, err,
			"resolve testtypes.Logger from context: dependencies not found on context")
	})
}

func Test_MustResolve(t *testing.T) {
	t.Run("resolve", func(t *testing.T) {
		clock := &testtypes.Clock{}
		deps, err := di.NewDependencies(di.WithValue(clock))
		require.NoError(t, err)

		ctx := dicontext.WithDependencies(context.Background(), deps)

		got := dicontext.MustResolve[*testtypes.Clock](ctx)
		assert.Same(t, clock, got)
	})

	t.Run("no dependencies", func(t *testing.T) {
		assert.PanicsWithError(t,
			"resolve *testtypes.Clock from context: dependencies not found on context",
			func() {
				_ = dicontext.MustResolve[*testtypes.Clock](context.Background())
			},
		)
	})
}

func Test_Activate(t *testing.T) {
	t.Run("activate", func(t *testing.T) {
		logger := &testtypes.MemoryLogger{}
		deps, err := di.NewDependencies(
			di.WithValueAs[testtypes.Logger](logger),
		)
		require.NoError(t, err)

		ctx := dicontext.WithDependencies(context.Background(), deps)

		w := &testtypes.Widget{}
		err = dicontext.Activate(ctx, w)
		assert.NoError(t, err)
		assert.Same(t, logger, w.Logger)
	})

	t.Run("missing dependency", func(t *testing.T) {
		deps, err := di.NewDependencies()
		require.NoError(t, err)

		ctx := dicontext.WithDependencies(context.Background(), deps)

		err = dicontext.Activate(ctx, &testtypes.Widget{})
		testutils.LogError(t, err)

		var notRegistered *di.DependencyNotRegisteredError
		require.True(t, errors.As(err, &notRegistered))
		assert.Equal(t, testtypes.TypeWidget, notRegistered.Type)
	})

	t.Run("no dependencies", func(t *testing.T) {
		err := dicontext.Activate(context.Background(), &testtypes.Widget{})
		testutils.LogError(t, err)

		assert.EqualError(t, err,
			"activate *testtypes.Widget from context: dependencies not found on context")
	})
}

func Test_MergeDependencies(t *testing.T) {
	t.Run("merge", func(t *testing.T) {
		deps, err := di.NewDependencies()
		require.NoError(t, err)

		ctx := dicontext.WithDependencies(context.Background(), deps)

		child, err := dicontext.MergeDependencies(ctx, &testtypes.Derived{
			Base: testtypes.Base{Name: "base"},
			Name: "derived",
		})
		require.NoError(t, err)

		got, err := dicontext.Resolve[string](child)
		assert.NoError(t, err)
		assert.Equal(t, "derived", got)

		// The parent context is unchanged
		assert.Same(t, deps, dicontext.Dependencies(ctx))
	})

	t.Run("no dependencies", func(t *testing.T) {
		ctx := context.Background()

		got, err := dicontext.MergeDependencies(ctx, &testtypes.Plain{})
		testutils.LogError(t, err)

		assert.Equal(t, ctx, got)
		assert.EqualError(t, err,
			"merge *testtypes.Plain from context: dependencies not found on context")
	})
}
