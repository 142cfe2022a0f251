package queue

import (
	"github.com/emirpasic/gods/queues/priorityqueue"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
)

// BandwidthType selects how the bandwidth queue shapes delivery.
type BandwidthType struct {
	unbounded     bool
	bytesPerJiffy int
}

// Unbounded returns a pass-through bandwidth mode: messages are released
// from the latency queue directly, with no NIC shaping.
func Unbounded() BandwidthType {
	return BandwidthType{unbounded: true}
}

// Bounded returns a bandwidth mode that serializes each destination's
// buffered bytes at bytesPerJiffy bytes per Jiffy.
func Bounded(bytesPerJiffy int) BandwidthType {
	return BandwidthType{bytesPerJiffy: bytesPerJiffy}
}

// DeliverResult classifies what BandwidthQueue.Deliver produced.
type DeliverResult int

const (
	// ResultNone means both underlying heaps were empty.
	ResultNone DeliverResult = iota
	// ResultAdvanced means a message moved from the latency queue into a
	// NIC buffer — book-keeping only, not a user-visible delivery.
	ResultAdvanced
	// ResultDelivered means a message left its NIC buffer and should be
	// dispatched to its destination process.
	ResultDelivered
)

// BandwidthQueue wraps a LatencyQueue with per-destination NIC
// serialization. In Unbounded mode it is a pure pass-through; in Bounded
// mode it maintains a second "released" heap of messages parked in their
// destination's FIFO buffer, plus a per-destination buffered-byte counter.
type BandwidthQueue struct {
	bandwidth BandwidthType
	latency   *LatencyQueue
	released  *priorityqueue.Queue
	buffered  map[core.Rank]int
	nextSeq   uint64
}

// NewBandwidthQueue wraps latency with the given bandwidth shaping mode.
func NewBandwidthQueue(bandwidth BandwidthType, latency *LatencyQueue) *BandwidthQueue {
	return &BandwidthQueue{
		bandwidth: bandwidth,
		latency:   latency,
		released:  priorityqueue.NewWith(byArrivalThenSeq),
		buffered:  make(map[core.Rank]int),
	}
}

// Push submits a message into the underlying latency queue.
func (q *BandwidthQueue) Push(submittedAt jiffy.Jiffies, src, dst core.Rank, payload core.Message) error {
	return q.latency.Push(submittedAt, src, dst, payload)
}

// PeekClosest returns the earliest time at which Deliver would produce a
// non-None result: the minimum of the latency queue's top and the released
// heap's top.
func (q *BandwidthQueue) PeekClosest() (jiffy.Jiffies, bool) {
	lt, lok := q.latency.Peek()
	if q.bandwidth.unbounded {
		return lt, lok
	}
	rt, rok := q.peekReleased()
	switch {
	case lok && rok:
		return jiffy.Min(lt, rt), true
	case lok:
		return lt, true
	case rok:
		return rt, true
	default:
		return 0, false
	}
}

// Deliver advances the bandwidth model by exactly one step. In Unbounded
// mode every step is a direct delivery. In Bounded mode it prefers
// releasing from the latency queue whenever the latency queue's top is at
// or before the released heap's top — this is the tie-break documented as
// the spec's resolved open question, and is what keeps per-destination
// delivery FIFO.
func (q *BandwidthQueue) Deliver() (DeliverResult, core.RoutedMessage) {
	if q.bandwidth.unbounded {
		msg, ok := q.latency.Pop()
		if !ok {
			return ResultNone, core.RoutedMessage{}
		}
		return ResultDelivered, msg
	}

	lt, lok := q.latency.Peek()
	rt, rok := q.peekReleased()

	switch {
	case !lok && !rok:
		return ResultNone, core.RoutedMessage{}
	case lok && (!rok || lt <= rt):
		q.release()
		return ResultAdvanced, core.RoutedMessage{}
	default:
		return ResultDelivered, q.deliverFromReleased()
	}
}

func (q *BandwidthQueue) peekReleased() (jiffy.Jiffies, bool) {
	v, ok := q.released.Peek()
	if !ok {
		return 0, false
	}
	return v.(core.RoutedMessage).ArrivalTime, true
}

// release pops the latency queue's top, buffers its bytes at its
// destination's NIC, and re-queues it into the released heap at the time
// its FIFO position lets it clear the buffer: arrival time plus the time
// needed to drain everything currently ahead of it (including itself).
func (q *BandwidthQueue) release() {
	msg, ok := q.latency.Pop()
	if !ok {
		return
	}
	size := msg.VirtualSize()
	q.buffered[msg.Dst] += size
	drainTime := jiffy.Jiffies(int64(q.buffered[msg.Dst]) / int64(q.bandwidth.bytesPerJiffy))
	msg.ArrivalTime = msg.ArrivalTime.Add(drainTime)
	msg.Seq = q.nextSeq
	q.nextSeq++
	q.released.Enqueue(msg)
}

func (q *BandwidthQueue) deliverFromReleased() core.RoutedMessage {
	v, ok := q.released.Dequeue()
	if !ok {
		panic("bandwidth queue: released heap unexpectedly empty")
	}
	msg := v.(core.RoutedMessage)
	q.buffered[msg.Dst] -= msg.VirtualSize()
	return msg
}
