// Package network implements the network actor: it owns the
// bandwidth-aware latency queue, expands broadcasts against the topology,
// and dispatches deliveries into the process pool.
package network

import (
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/pool"
	"github.com/jihwankim/dscale-sim/pkg/queue"
	"github.com/jihwankim/dscale-sim/pkg/simcontext"
	"github.com/jihwankim/dscale-sim/pkg/topology"
)

// Network is the simulation's network actor. It satisfies
// pkg/actor.Actor: PeekClosest/Step drive message delivery, one message at
// a time, including any intermediate "advanced from latency into NIC
// buffer" bookkeeping steps the bandwidth model needs.
type Network struct {
	topo      *topology.Topology
	bandwidth *queue.BandwidthQueue
	pool      *pool.Pool
	ctx       *simcontext.Context
}

// New creates a network actor over topo's topology, shaping delivery with
// bandwidth, dispatching into pool, and sharing ctx with the rest of the
// simulation loop.
func New(topo *topology.Topology, bandwidth *queue.BandwidthQueue, p *pool.Pool, ctx *simcontext.Context) *Network {
	return &Network{topo: topo, bandwidth: bandwidth, pool: p, ctx: ctx}
}

// Start is a no-op: the network actor has nothing to prime before the
// loop starts. Per-process Start callbacks are driven directly by
// pkg/sim, once, before the event loop begins.
func (n *Network) Start() {}

// PeekClosest returns the time of the network actor's next event.
func (n *Network) PeekClosest() (jiffy.Jiffies, bool) {
	return n.bandwidth.PeekClosest()
}

// Step advances the bandwidth model by exactly one Deliver() call and
// returns the time PeekClosest reported for it. If that call was an actual
// delivery, OnMessage is dispatched on the destination rank. An internal
// "advanced from latency into NIC buffer" step dispatches nothing: the
// message it moved is delivered by a later Step, at its NIC-adjusted time.
func (n *Network) Step() jiffy.Jiffies {
	at, _ := n.bandwidth.PeekClosest()
	result, msg := n.bandwidth.Deliver()
	switch result {
	case queue.ResultDelivered:
		n.ctx.BeginDispatch(msg.ArrivalTime, msg.Dst)
		n.pool.Dispatch(msg.Dst, func(h pool.ProcessHandle) {
			h.OnMessage(n.ctx, msg.Src, msg.Payload)
		})
		return msg.ArrivalTime
	case queue.ResultAdvanced:
		return at
	default:
		panic("network: Step called with no pending event")
	}
}

// Submit enqueues a message staged by a process callback. A broadcast
// destination is expanded to every other member of the simulation's
// global pool; each resulting unicast is submitted independently, so they
// may arrive in different orders and at different times.
func (n *Network) Submit(now jiffy.Jiffies, send simcontext.PendingSend) error {
	if !send.Dest.Broadcast {
		return n.bandwidth.Push(now, send.From, send.Dest.To, send.Payload)
	}
	members, err := n.topo.ListPool(topology.GlobalPool)
	if err != nil {
		return err
	}
	for _, dst := range members {
		if dst == send.From {
			continue
		}
		if err := n.bandwidth.Push(now, send.From, dst, send.Payload); err != nil {
			return err
		}
	}
	return nil
}

// SubmitAll submits every staged send in order.
func (n *Network) SubmitAll(now jiffy.Jiffies, sends []simcontext.PendingSend) error {
	for _, s := range sends {
		if err := n.Submit(now, s); err != nil {
			return err
		}
	}
	return nil
}
