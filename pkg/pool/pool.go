// Package pool holds the simulation's process table: one ProcessHandle per
// Rank, dispatched in deterministic rank order and never re-entered while
// already borrowed.
package pool

import (
	"fmt"
	"sort"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/simcontext"
)

// ProcessHandle is the interface user protocol code implements. Every
// callback is handed the ambient Context for its rank and duration only;
// any sends, broadcasts, or timer schedules made during the call are
// staged and flushed by the simulation loop once the call returns.
type ProcessHandle interface {
	// Start runs once, before the simulation clock advances past zero.
	Start(ctx *simcontext.Context)
	// OnMessage is invoked when a message addressed to this rank is
	// delivered.
	OnMessage(ctx *simcontext.Context, from core.Rank, payload core.Message)
	// OnTimer is invoked when a timer previously scheduled for this rank
	// fires. Ids from timers that no longer mean anything to the process
	// (because it has since moved on) are simply ignored by the process's
	// own logic — there is no cancellation API.
	OnTimer(ctx *simcontext.Context, id core.TimerId)
}

// Pool is the map of every process in the run, plus a cached rank-sorted
// key slice so iteration order (used for Start and for any "for every
// rank" operation) never depends on Go's randomized map iteration.
type Pool struct {
	handles map[core.Rank]ProcessHandle
	ranks   []core.Rank

	borrowed bool
}

// New creates a pool from a rank-to-handle mapping.
func New(handles map[core.Rank]ProcessHandle) *Pool {
	ranks := make([]core.Rank, 0, len(handles))
	for r := range handles {
		ranks = append(ranks, r)
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })
	return &Pool{handles: handles, ranks: ranks}
}

// Ranks returns every rank in the pool, sorted ascending. The returned
// slice is owned by Pool and must not be mutated by the caller.
func (p *Pool) Ranks() []core.Rank {
	return p.ranks
}

// Len reports how many processes the pool holds.
func (p *Pool) Len() int {
	return len(p.ranks)
}

// Handle returns the handle registered for rank, or nil if rank is not in
// the pool.
func (p *Pool) Handle(rank core.Rank) ProcessHandle {
	return p.handles[rank]
}

// Dispatch borrows the handle for rank for the duration of fn. Calling
// Dispatch again while a previous call is still in progress (the only way
// that can happen is a bug in the simulation loop, since process code
// never has a reference to the Pool) panics rather than silently
// re-entering — a reentrant dispatch would break the "exactly one
// in-flight callback" assumption the ambient Context relies on.
func (p *Pool) Dispatch(rank core.Rank, fn func(ProcessHandle)) {
	if p.borrowed {
		panic("pool: re-entrant Dispatch — a handle is already borrowed")
	}
	handle, ok := p.handles[rank]
	if !ok {
		panic(fmt.Sprintf("pool: no process registered for rank %d", rank))
	}
	p.borrowed = true
	defer func() { p.borrowed = false }()
	fn(handle)
}
