package di_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-activator"
	"github.com/sectrean/di-activator/internal/errors"
	"github.com/sectrean/di-activator/internal/testtypes"
	"github.com/sectrean/di-activator/internal/testutils"
)

func Test_Inspect(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		r := di.NewRegistry()
		require.NoError(t, r.Declare(
			di.Loader((*testtypes.Panel).Load),
			di.Provide((*testtypes.Screen).Caption),
		))

		clock := &testtypes.Clock{}
		s := &testtypes.Screen{
			Theme: testtypes.Theme{Name: "dark"},
			Title: "Menu",
		}
		s.Clock = clock

		members, err := r.Inspect(s, nil)
		require.NoError(t, err)

		type row struct {
			Type string
			Name string
			Kind di.MemberKind
		}
		rows := make([]row, len(members))
		for i, m := range members {
			rows[i] = row{m.Type.String(), m.Name, m.Kind}
		}

		assert.Equal(t, []row{
			{"testtypes.Box", "Clock", di.MemberResolved},
			{"testtypes.Panel", "Logger", di.MemberResolved},
			{"testtypes.Panel", "Load", di.MemberLoader},
			{"testtypes.Screen", "Theme", di.MemberResolved},
			{"testtypes.Screen", "Theme", di.MemberCached},
			{"testtypes.Screen", "Caption", di.MemberProvided},
		}, rows)

		assert.Same(t, clock, members[0].Value)
		assert.Nil(t, members[2].Value)
		assert.Equal(t, "Menu (dark)", members[5].Value)
		assert.Equal(t, "testtypes.Screen.Caption (Provided string) = Menu (dark)", members[5].String())
		assert.Equal(t, "testtypes.Panel.Load (Loader)", members[2].String())
	})

	t.Run("evaluation failure placeholder", func(t *testing.T) {
		r := di.NewRegistry()
		require.NoError(t, r.Declare(
			di.Provide((*testtypes.Faulty).Value),
		))

		members, err := r.Inspect(&testtypes.Faulty{Err: errors.New("boom")}, nil)
		require.NoError(t, err)
		require.Len(t, members, 1)

		failure, ok := members[0].Value.(di.EvaluationFailure)
		require.True(t, ok)
		assert.ErrorIs(t, failure.Err, di.ErrEvaluation)
		assert.Equal(t, "<testtypes.Faulty.Value: evaluation failed: boom>", failure.String())
	})

	t.Run("build error", func(t *testing.T) {
		r := di.NewRegistry()

		members, err := r.Inspect(&testtypes.Misconfigured{}, nil)
		testutils.LogError(t, err)

		assert.Nil(t, members)
		assert.ErrorIs(t, err, di.ErrInvalidDeclaration)
	})

	t.Run("invalid instance", func(t *testing.T) {
		r := di.NewRegistry()

		_, err := r.Inspect(1, nil)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "di.Inspect: int: instance must be a non-nil pointer to a struct")
	})
}

func Test_MemberKind_String(t *testing.T) {
	tests := []struct {
		kind di.MemberKind
		want string
	}{
		{di.MemberResolved, "Resolved"},
		{di.MemberCached, "Cached"},
		{di.MemberProvided, "Provided"},
		{di.MemberSelf, "Self"},
		{di.MemberLoader, "Loader"},
		{di.MemberKind(99), "Unknown MemberKind 99"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}
