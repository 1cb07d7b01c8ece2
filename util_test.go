package di

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-activator/internal/errors"
	"github.com/sectrean/di-activator/internal/testtypes"
)

func Test_isNil(t *testing.T) {
	var nilLogger testtypes.Logger
	var nilClock *testtypes.Clock

	tests := []struct {
		name string
		val  any
		want bool
	}{
		{name: "nil", val: nil, want: true},
		{name: "nil interface", val: nilLogger, want: true},
		{name: "nil pointer", val: nilClock, want: true},
		{name: "nil map", val: map[string]int(nil), want: true},
		{name: "nil func", val: (func())(nil), want: true},
		{name: "pointer", val: &testtypes.Clock{}, want: false},
		{name: "struct", val: testtypes.Theme{}, want: false},
		{name: "zero int", val: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNil(tt.val))
		})
	}
}

func Test_structTarget(t *testing.T) {
	t.Run("pointer to struct", func(t *testing.T) {
		clock := &testtypes.Clock{}

		v, err := structTarget(clock)
		require.NoError(t, err)

		assert.True(t, v.CanSet())
		v.Field(0).SetFloat(2)
		assert.Equal(t, 2.0, clock.Now)
	})

	tests := []struct {
		name    string
		val     any
		wantErr string
	}{
		{
			name:    "nil",
			val:     nil,
			wantErr: "instance is nil: instance must be a non-nil pointer to a struct",
		},
		{
			name:    "struct value",
			val:     testtypes.Clock{},
			wantErr: "testtypes.Clock: instance must be a non-nil pointer to a struct",
		},
		{
			name:    "pointer to int",
			val:     new(int),
			wantErr: "*int: instance must be a non-nil pointer to a struct",
		},
		{
			name:    "nil pointer",
			val:     (*testtypes.Clock)(nil),
			wantErr: "*testtypes.Clock is nil: instance must be a non-nil pointer to a struct",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := structTarget(tt.val)

			assert.EqualError(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, ErrInvalidInstance))
		})
	}
}

func Test_baseValue(t *testing.T) {
	t.Run("exported base", func(t *testing.T) {
		d := &testtypes.Derived{}
		v := baseValue(reflect.ValueOf(d).Elem(), 0)

		assert.True(t, v.CanInterface())
		assert.Same(t, &d.Base, v.Addr().Interface())
	})

	t.Run("unexported base", func(t *testing.T) {
		leaf := &testtypes.Leaf{}
		v := baseValue(reflect.ValueOf(leaf).Elem(), 0)

		require.True(t, v.CanInterface())
		require.True(t, v.CanSet())
		assert.Same(t, leaf.Base(), v.Addr().Interface())

		out, err := call(reflect.ValueOf((*testtypes.Node).Load),
			[]reflect.Value{v.Addr(), reflect.ValueOf(testtypes.Theme{Name: "light"})})
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Equal(t, []string{"node.Load light"}, leaf.Loaded)
	})
}

func Test_call(t *testing.T) {
	t.Run("results", func(t *testing.T) {
		fn := reflect.ValueOf(func(n int) (int, error) { return n * 2, nil })

		out, err := call(fn, []reflect.Value{reflect.ValueOf(21)})
		require.NoError(t, err)

		assert.Equal(t, 42, out[0].Interface())
		assert.NoError(t, errorResult(fn.Type(), out))
	})

	t.Run("error result", func(t *testing.T) {
		fn := reflect.ValueOf(func() (int, error) { return 0, errors.New("failed") })

		out, err := call(fn, nil)
		require.NoError(t, err)

		assert.EqualError(t, errorResult(fn.Type(), out), "failed")
	})

	t.Run("no error result", func(t *testing.T) {
		fn := reflect.ValueOf(func() int { return 1 })

		out, err := call(fn, nil)
		require.NoError(t, err)

		assert.NoError(t, errorResult(fn.Type(), out))
	})

	t.Run("panic value", func(t *testing.T) {
		fn := reflect.ValueOf(func() { panic("boom") })

		_, err := call(fn, nil)
		assert.EqualError(t, err, "panic: boom")
	})

	t.Run("variadic", func(t *testing.T) {
		fn := reflect.ValueOf(func(values ...int) int { return len(values) })

		out, err := call(fn, []reflect.Value{reflect.ValueOf([]int{1, 2, 3})})
		require.NoError(t, err)

		assert.Equal(t, 3, out[0].Interface())
	})

	t.Run("panic error", func(t *testing.T) {
		sentinel := errors.New("boom")
		fn := reflect.ValueOf(func() { panic(sentinel) })

		_, err := call(fn, nil)
		assert.EqualError(t, err, "panic: boom")
		assert.True(t, errors.Is(err, sentinel))
	})
}
