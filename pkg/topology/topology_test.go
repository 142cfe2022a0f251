package topology_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/random"
	"github.com/jihwankim/dscale-sim/pkg/topology"
	"github.com/stretchr/testify/require"
)

func TestWithinPoolCoversAllOrderedPairs(t *testing.T) {
	b := topology.NewBuilder()
	b.AddPool("nodes", []core.Rank{1, 2, 3})
	dist := random.Uniform(jiffy.Jiffies(10), jiffy.Jiffies(10))
	b.AddDescription(topology.WithinPool("nodes", dist))

	topo, err := b.Build()
	require.NoError(t, err)

	for _, src := range []core.Rank{1, 2, 3} {
		for _, dst := range []core.Rank{1, 2, 3} {
			got, err := topo.Distribution(src, dst)
			require.NoError(t, err)
			require.Equal(t, dist, got)
		}
	}
}

func TestBetweenPoolsIsSymmetric(t *testing.T) {
	b := topology.NewBuilder()
	b.AddPool("a", []core.Rank{1})
	b.AddPool("b", []core.Rank{2})
	dist := random.Normal(jiffy.Jiffies(50), jiffy.Jiffies(10))
	b.AddDescription(topology.BetweenPools("a", "b", dist))

	topo, err := b.Build()
	require.NoError(t, err)

	got, err := topo.Distribution(1, 2)
	require.NoError(t, err)
	require.Equal(t, dist, got)

	got, err = topo.Distribution(2, 1)
	require.NoError(t, err)
	require.Equal(t, dist, got)
}

func TestMissingPairIsConfigurationError(t *testing.T) {
	b := topology.NewBuilder()
	b.AddPool("a", []core.Rank{1, 2})
	topo, err := b.Build()
	require.NoError(t, err)

	_, err = topo.Distribution(1, 2)
	require.ErrorIs(t, err, topology.ErrNoDistribution)
}

func TestUnknownPoolIsConfigurationError(t *testing.T) {
	b := topology.NewBuilder()
	b.AddDescription(topology.WithinPool("ghost", random.Uniform(0, 0)))
	_, err := b.Build()
	require.ErrorIs(t, err, topology.ErrUnknownPool)
}

func TestGlobalPoolAggregatesEveryRank(t *testing.T) {
	b := topology.NewBuilder()
	b.AddPool("a", []core.Rank{1, 2})
	b.AddPool("b", []core.Rank{3})
	topo, err := b.Build()
	require.NoError(t, err)

	members, err := topo.ListPool(topology.GlobalPool)
	require.NoError(t, err)
	require.ElementsMatch(t, []core.Rank{1, 2, 3}, members)
}
