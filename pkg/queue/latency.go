// Package queue implements the latency queue and the bandwidth-aware queue
// that wraps it. Both are priority queues keyed by planned arrival time,
// built on github.com/emirpasic/gods's binary-heap PriorityQueue instead of
// a hand-rolled container/heap implementation (see DESIGN.md).
package queue

import (
	"github.com/emirpasic/gods/queues/priorityqueue"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/random"
	"github.com/jihwankim/dscale-sim/pkg/topology"
)

// byArrivalThenSeq breaks ties between equally-timed messages by insertion
// order, so delivery within a time bucket stays stable and reproducible.
func byArrivalThenSeq(a, b interface{}) int {
	ma := a.(core.RoutedMessage)
	mb := b.(core.RoutedMessage)
	if ma.ArrivalTime != mb.ArrivalTime {
		if ma.ArrivalTime < mb.ArrivalTime {
			return -1
		}
		return 1
	}
	if ma.Seq < mb.Seq {
		return -1
	}
	if ma.Seq > mb.Seq {
		return 1
	}
	return 0
}

// LatencyQueue holds messages still "in flight": each push samples the
// (src, dst) latency distribution from the topology and adds it to the
// submission time to compute the planned arrival time.
type LatencyQueue struct {
	rnd     *random.Randomizer
	topo    *topology.Topology
	heap    *priorityqueue.Queue
	nextSeq uint64
}

// NewLatencyQueue creates an empty latency queue drawing samples from rnd
// according to topo.
func NewLatencyQueue(rnd *random.Randomizer, topo *topology.Topology) *LatencyQueue {
	return &LatencyQueue{
		rnd:  rnd,
		topo: topo,
		heap: priorityqueue.NewWith(byArrivalThenSeq),
	}
}

// Push samples the (src, dst) distribution, adds it to submittedAt, and
// enqueues the resulting RoutedMessage. A sampled delay of zero is bumped
// to one Jiffy: no message may be observed to arrive in the same tick it
// was sent, which would otherwise let a zero-latency self-send loop
// forever without the clock ever advancing.
func (q *LatencyQueue) Push(submittedAt jiffy.Jiffies, src, dst core.Rank, payload core.Message) error {
	dist, err := q.topo.Distribution(src, dst)
	if err != nil {
		return err
	}
	sample := q.rnd.Sample(dist)
	if sample < 1 {
		sample = 1
	}
	msg := core.RoutedMessage{
		ArrivalTime: submittedAt.Add(sample),
		Src:         src,
		Dst:         dst,
		Payload:     payload,
		Seq:         q.nextSeq,
	}
	q.nextSeq++
	q.heap.Enqueue(msg)
	return nil
}

// Peek returns the arrival time of the earliest in-flight message.
func (q *LatencyQueue) Peek() (jiffy.Jiffies, bool) {
	v, ok := q.heap.Peek()
	if !ok {
		return 0, false
	}
	return v.(core.RoutedMessage).ArrivalTime, true
}

// Pop removes and returns the earliest in-flight message.
func (q *LatencyQueue) Pop() (core.RoutedMessage, bool) {
	v, ok := q.heap.Dequeue()
	if !ok {
		return core.RoutedMessage{}, false
	}
	return v.(core.RoutedMessage), true
}

// Empty reports whether the queue holds no messages.
func (q *LatencyQueue) Empty() bool {
	return q.heap.Empty()
}
