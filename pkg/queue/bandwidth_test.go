package queue_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/queue"
	"github.com/jihwankim/dscale-sim/pkg/random"
	"github.com/jihwankim/dscale-sim/pkg/topology"
	"github.com/stretchr/testify/require"
)

type sizedMessage struct{ size int }

func (m sizedMessage) VirtualSize() int { return m.size }

func newTopo(t *testing.T, dist random.Distribution) *topology.Topology {
	t.Helper()
	b := topology.NewBuilder()
	b.AddPool("nodes", []core.Rank{1, 2})
	b.AddDescription(topology.WithinPool("nodes", dist))
	topo, err := b.Build()
	require.NoError(t, err)
	return topo
}

func drainOne(t *testing.T, bq *queue.BandwidthQueue) core.RoutedMessage {
	t.Helper()
	for {
		res, msg := bq.Deliver()
		switch res {
		case queue.ResultDelivered:
			return msg
		case queue.ResultAdvanced:
			continue
		default:
			t.Fatalf("expected a delivery, queue went empty")
		}
	}
}

func TestUnboundedDeliversAtSampledArrival(t *testing.T) {
	dist := random.Uniform(jiffy.Jiffies(10), jiffy.Jiffies(10))
	topo := newTopo(t, dist)
	rnd := random.New(1)
	lat := queue.NewLatencyQueue(rnd, topo)
	bq := queue.NewBandwidthQueue(queue.Unbounded(), lat)

	require.NoError(t, bq.Push(jiffy.Jiffies(100), 1, 2, sizedMessage{size: 1000}))

	msg := drainOne(t, bq)
	require.Equal(t, jiffy.Jiffies(110), msg.ArrivalTime)
}

func TestBoundedFIFOPerDestination(t *testing.T) {
	dist := random.Uniform(jiffy.Jiffies(10), jiffy.Jiffies(10))
	topo := newTopo(t, dist)
	rnd := random.New(1)
	lat := queue.NewLatencyQueue(rnd, topo)
	bq := queue.NewBandwidthQueue(queue.Bounded(1), lat)

	const s = 100
	const k = 5
	for i := 0; i < k; i++ {
		require.NoError(t, bq.Push(jiffy.Jiffies(0), 1, 2, sizedMessage{size: s}))
	}

	var times []jiffy.Jiffies
	for i := 0; i < k; i++ {
		times = append(times, drainOne(t, bq).ArrivalTime)
	}

	for i := 0; i < k; i++ {
		expected := jiffy.Jiffies(10 + (i+1)*s)
		require.Equal(t, expected, times[i], "message %d delivered at unexpected time", i)
	}
	for i := 1; i < k; i++ {
		require.Greater(t, int64(times[i]), int64(times[i-1]))
	}
}

func TestLargeMessageCannotBeOvertaken(t *testing.T) {
	dist := random.Uniform(jiffy.Jiffies(5), jiffy.Jiffies(5))
	topo := newTopo(t, dist)
	rnd := random.New(2)
	lat := queue.NewLatencyQueue(rnd, topo)
	bq := queue.NewBandwidthQueue(queue.Bounded(1), lat)

	require.NoError(t, bq.Push(jiffy.Jiffies(0), 1, 2, sizedMessage{size: 1000}))
	require.NoError(t, bq.Push(jiffy.Jiffies(0), 1, 2, sizedMessage{size: 1}))

	first := drainOne(t, bq)
	second := drainOne(t, bq)

	require.Equal(t, 1000, first.VirtualSize())
	require.Equal(t, 1, second.VirtualSize())
	require.Less(t, int64(first.ArrivalTime), int64(second.ArrivalTime))
}

func TestPeekClosestMatchesDeliverTiming(t *testing.T) {
	dist := random.Uniform(jiffy.Jiffies(10), jiffy.Jiffies(10))
	topo := newTopo(t, dist)
	rnd := random.New(3)
	lat := queue.NewLatencyQueue(rnd, topo)
	bq := queue.NewBandwidthQueue(queue.Bounded(1), lat)

	require.NoError(t, bq.Push(jiffy.Jiffies(0), 1, 2, sizedMessage{size: 5}))

	next, ok := bq.PeekClosest()
	require.True(t, ok)
	require.Equal(t, jiffy.Jiffies(10), next)

	res, _ := bq.Deliver()
	require.Equal(t, queue.ResultAdvanced, res)

	next, ok = bq.PeekClosest()
	require.True(t, ok)
	require.Equal(t, jiffy.Jiffies(15), next)

	res, msg := bq.Deliver()
	require.Equal(t, queue.ResultDelivered, res)
	require.Equal(t, jiffy.Jiffies(15), msg.ArrivalTime)
}

func TestEmptyQueueHasNoNextEvent(t *testing.T) {
	dist := random.Uniform(jiffy.Jiffies(1), jiffy.Jiffies(1))
	topo := newTopo(t, dist)
	rnd := random.New(4)
	lat := queue.NewLatencyQueue(rnd, topo)
	bq := queue.NewBandwidthQueue(queue.Unbounded(), lat)

	_, ok := bq.PeekClosest()
	require.False(t, ok)

	res, _ := bq.Deliver()
	require.Equal(t, queue.ResultNone, res)
}
