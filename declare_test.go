package di_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectrean/di-activator"
	"github.com/sectrean/di-activator/internal/testtypes"
	"github.com/sectrean/di-activator/internal/testutils"
)

func Test_Declare_Errors(t *testing.T) {
	tests := []struct {
		name string
		decl di.Declaration
		want string
	}{
		{
			name: "loader nil",
			decl: di.Loader(nil),
			want: "di.Declare: loader: fn is nil",
		},
		{
			name: "loader not func",
			decl: di.Loader(1234),
			want: "di.Declare: loader int: fn must be a function",
		},
		{
			name: "loader no receiver",
			decl: di.Loader(func() {}),
			want: "di.Declare: loader func(): function must take a pointer to a struct as its first parameter",
		},
		{
			name: "loader struct receiver",
			decl: di.Loader(func(testtypes.Plain) {}),
			want: "di.Declare: loader func(testtypes.Plain): first parameter testtypes.Plain must be a pointer to a struct",
		},
		{
			name: "loader returns value",
			decl: di.Loader(func(*testtypes.Plain) int { return 0 }),
			want: "di.Declare: loader func(*testtypes.Plain) int: function must return nothing or error",
		},
		{
			name: "loader tagged parameter not found",
			decl: di.Loader(func(*testtypes.Plain, string) {}, di.WithTagged[int]("tag")),
			want: "di.Declare: loader func(*testtypes.Plain, string): with tagged int: parameter not found",
		},
		{
			name: "provide nil",
			decl: di.Provide(nil),
			want: "di.Declare: provide: fn is nil",
		},
		{
			name: "provide not func",
			decl: di.Provide("value"),
			want: "di.Declare: provide string: fn must be a function",
		},
		{
			name: "provide no result",
			decl: di.Provide(func(*testtypes.Plain) {}),
			want: "di.Declare: provide func(*testtypes.Plain): function must return V or (V, error)",
		},
		{
			name: "provide only error",
			decl: di.Provide(func(*testtypes.Plain) error { return nil }),
			want: "di.Declare: provide func(*testtypes.Plain) error: function must return V or (V, error)",
		},
		{
			name: "provide extra parameter",
			decl: di.Provide(func(*testtypes.Plain, int) string { return "" }),
			want: "di.Declare: provide func(*testtypes.Plain, int) string: function must take (*T) or (*T, di.Dependencies)",
		},
		{
			name: "cache self not pointer",
			decl: di.CacheSelf[testtypes.Plain](),
			want: "di.Declare: cache self testtypes.Plain: type must be a pointer to a struct",
		},
		{
			name: "cache self not assignable",
			decl: di.CacheSelfAs[*testtypes.Plain, testtypes.Drawable](),
			want: "di.Declare: cache self *testtypes.Plain: type not assignable to testtypes.Drawable",
		},
		{
			name: "module with nil",
			decl: di.Module{nil},
			want: "di.Declare: module: declaration is nil",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := di.NewRegistry()

			err := r.Declare(tt.decl)
			testutils.LogError(t, err)

			assert.EqualError(t, err, tt.want)
			assert.ErrorIs(t, err, di.ErrInvalidDeclaration)
		})
	}
}

func Test_Declare_JoinsErrors(t *testing.T) {
	r := di.NewRegistry()

	err := r.Declare(
		di.Loader(nil),
		di.CacheSelf[*testtypes.Plain](),
		di.Provide(nil),
	)
	testutils.LogError(t, err)

	assert.EqualError(t, err, "di.Declare: loader: fn is nil; provide: fn is nil")

	// Nothing was declared, so Plain still has no members
	merged, err := r.MergeDependencies(&testtypes.Plain{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, merged)
}
