package timer_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/timer"
	"github.com/stretchr/testify/require"
)

func TestFiresInTimeOrder(t *testing.T) {
	m := timer.New()
	m.Schedule(jiffy.Jiffies(0), core.Rank(1), jiffy.Jiffies(50), core.TimerId(1))
	m.Schedule(jiffy.Jiffies(0), core.Rank(2), jiffy.Jiffies(10), core.TimerId(2))
	m.Schedule(jiffy.Jiffies(0), core.Rank(3), jiffy.Jiffies(30), core.TimerId(3))

	next, ok := m.PeekClosest()
	require.True(t, ok)
	require.Equal(t, jiffy.Jiffies(10), next)

	rank, id, ok := m.Step()
	require.True(t, ok)
	require.Equal(t, core.Rank(2), rank)
	require.Equal(t, core.TimerId(2), id)

	rank, id, ok = m.Step()
	require.True(t, ok)
	require.Equal(t, core.Rank(3), rank)
	require.Equal(t, core.TimerId(3), id)
}

func TestTiesBrokenByInsertionOrder(t *testing.T) {
	m := timer.New()
	m.Schedule(jiffy.Jiffies(0), core.Rank(1), jiffy.Jiffies(10), core.TimerId(100))
	m.Schedule(jiffy.Jiffies(0), core.Rank(2), jiffy.Jiffies(10), core.TimerId(200))

	_, id1, _ := m.Step()
	_, id2, _ := m.Step()
	require.Equal(t, core.TimerId(100), id1)
	require.Equal(t, core.TimerId(200), id2)
}

func TestEmptyManager(t *testing.T) {
	m := timer.New()
	require.True(t, m.Empty())
	_, ok := m.PeekClosest()
	require.False(t, ok)
	_, _, ok = m.Step()
	require.False(t, ok)
}
