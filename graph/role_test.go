package graph

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestInvert(t *testing.T) {
	require.Equal(t, Target, Invert(Source))
	require.Equal(t, Source, Invert(Target))
	require.Equal(t, Unknown, Invert(Any))
	require.Equal(t, Any, Invert(Unknown))
	for _, r := range []Role{Source, Target, Any, Unknown} {
		require.Equal(t, r, Invert(Invert(r)))
		require.NotEqual(t, r, Invert(r))
		p, err := ParseRole(r.String())
		require.NoError(t, err)
		require.Equal(t, r, p)
	}
	for _, r := range []Role{Unknown + 1, 5, 255} {
		require.Equal(t, r, Invert(r))
		require.Equal(t, "invalid", r.String())
		_, err := r.sides()
		require.True(t, errors.Is(err, ErrUnknownRole))
	}
	_, err := Unknown.sides()
	require.True(t, errors.Is(err, ErrUnknownRole))
	_, err = ParseRole("sideways")
	require.Error(t, err)
}
