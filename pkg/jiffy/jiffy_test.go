package jiffy_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	a := jiffy.Jiffies(10)
	b := jiffy.Jiffies(22)

	require.Equal(t, jiffy.Jiffies(32), a.Add(b))
	require.Equal(t, jiffy.Jiffies(12), b.Sub(a))
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.Equal(t, a, jiffy.Min(a, b))
	require.Equal(t, "10", a.String())
}

func TestAddRejectsNegativeDelta(t *testing.T) {
	a := jiffy.Jiffies(10)
	require.Panics(t, func() { a.Add(jiffy.Jiffies(-1)) })
}
