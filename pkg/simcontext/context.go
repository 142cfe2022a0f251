// Package simcontext supplies the ambient state a running process sees
// during a callback: the logical clock, a total-order sequence number, a
// shared KV store, and the routing operations (send/broadcast/schedule
// timer/list pool/fresh id) a process uses to act on the world.
//
// The original implementation threads this state through thread-locals so
// process code can reach the clock without a parameter. Go has no
// equivalent that is both safe and idiomatic, so here it is a single
// value — *Context — passed explicitly into every ProcessHandle callback.
// It is only valid for the duration of the callback it was passed to;
// nothing should retain it past that call.
package simcontext

import (
	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/random"
	"github.com/jihwankim/dscale-sim/pkg/topology"
)

// PendingSend is a message staged during a callback, to be handed to the
// network actor once the callback returns.
type PendingSend struct {
	From core.Rank
	Dest core.Destination
	Pool string // non-empty when Dest came from SendRandomFromPool
	Payload core.Message
}

// PendingTimer is a timer staged during a callback.
type PendingTimer struct {
	Rank  core.Rank
	Delay jiffy.Jiffies
	ID    core.TimerId
}

// Context is the ambient state threaded through a single simulation run.
// The simulation loop owns one Context for its whole lifetime and rebinds
// its current rank before every dispatch; a process must not store a
// Context it was handed and use it outside the callback.
type Context struct {
	now  jiffy.Jiffies
	tso  uint64
	rank core.Rank

	kv   *KV
	topo *topology.Topology
	rnd  *random.Randomizer

	sends  []PendingSend
	timers []PendingTimer
}

// New creates a Context bound to topo for pool lookups and rnd for the
// random choices SendRandomFromPool makes. rnd is the same Randomizer
// instance the network actor draws latency samples from: the simulator
// has exactly one PRNG, not one per concern.
func New(topo *topology.Topology, rnd *random.Randomizer) *Context {
	return &Context{kv: NewKV(), topo: topo, rnd: rnd}
}

// KV returns the shared key-value store. It outlives any single callback.
func (c *Context) KV() *KV { return c.kv }

// Now returns the current simulation time.
func (c *Context) Now() jiffy.Jiffies { return c.now }

// Rank returns the rank of the process currently being dispatched.
func (c *Context) Rank() core.Rank { return c.rank }

// GlobalUniqueID hands out a fresh, monotonically increasing identifier,
// unique across the whole run regardless of which rank requests it.
func (c *Context) GlobalUniqueID() uint64 {
	id := c.tso
	c.tso++
	return id
}

// SendTo stages a unicast message to dst, to be delivered once the current
// callback returns.
func (c *Context) SendTo(dst core.Rank, payload core.Message) {
	c.sends = append(c.sends, PendingSend{From: c.rank, Dest: core.To(dst), Payload: payload})
}

// Broadcast stages a message to every rank in the topology's global pool
// except the sender.
func (c *Context) Broadcast(payload core.Message) {
	c.sends = append(c.sends, PendingSend{From: c.rank, Dest: core.Broadcast(), Payload: payload})
}

// SendRandomFromPool picks one member of the named pool uniformly at
// random and stages a unicast to it. The pick is made now, using the
// shared Randomizer, so it is captured in the deterministic event stream
// at the point the callback runs, not at delivery time.
func (c *Context) SendRandomFromPool(pool string, payload core.Message) error {
	members, err := c.topo.ListPool(pool)
	if err != nil {
		return err
	}
	dst := random.Choose(c.rnd, members)
	c.sends = append(c.sends, PendingSend{From: c.rank, Dest: core.To(dst), Pool: pool, Payload: payload})
	return nil
}

// ScheduleTimerAfter stages a timer that will fire id for the current rank
// after delay Jiffies have elapsed.
func (c *Context) ScheduleTimerAfter(delay jiffy.Jiffies, id core.TimerId) {
	c.timers = append(c.timers, PendingTimer{Rank: c.rank, Delay: delay, ID: id})
}

// ListPool returns the ranks belonging to the named pool.
func (c *Context) ListPool(pool string) ([]core.Rank, error) {
	return c.topo.ListPool(pool)
}

// BeginDispatch rebinds the context to the rank about to be dispatched at
// time now. Called once by the simulation loop immediately before each
// ProcessHandle callback. It panics if now is earlier than the current
// time: the clock never moves backwards.
func (c *Context) BeginDispatch(now jiffy.Jiffies, rank core.Rank) {
	if now < c.now {
		panic("simcontext: BeginDispatch would move the clock backwards")
	}
	c.now = now
	c.rank = rank
}

// DrainSends removes and returns every message staged since the last
// drain. Called by the simulation loop immediately after a callback
// returns.
func (c *Context) DrainSends() []PendingSend {
	out := c.sends
	c.sends = nil
	return out
}

// DrainTimers removes and returns every timer staged since the last drain.
func (c *Context) DrainTimers() []PendingTimer {
	out := c.timers
	c.timers = nil
	return out
}

// Reset clears the KV store and any staged-but-undrained work, returning
// the Context to its initial state. Used between independent runs that
// reuse the same Context value.
func (c *Context) Reset() {
	c.now = 0
	c.tso = 0
	c.rank = 0
	c.kv.reset()
	c.sends = nil
	c.timers = nil
}
