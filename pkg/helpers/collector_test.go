package helpers_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/helpers"
	"github.com/stretchr/testify/require"
)

func TestCollectorFiresExactlyOnceAtThreshold(t *testing.T) {
	c := helpers.NewCollector[int](3)

	_, ok := c.Combine(1)
	require.False(t, ok)
	_, ok = c.Combine(2)
	require.False(t, ok)

	values, ok := c.Combine(3)
	require.True(t, ok)
	require.Equal(t, []int{1, 2, 3}, values)

	values, ok = c.Combine(4)
	require.False(t, ok)
	require.Nil(t, values)
	require.True(t, c.Delivered())
}

func TestNewCollectorPanicsOnNonPositiveThreshold(t *testing.T) {
	require.Panics(t, func() { helpers.NewCollector[string](0) })
	require.Panics(t, func() { helpers.NewCollector[string](-1) })
}
