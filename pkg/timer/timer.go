// Package timer implements the simulator's ordered timer wheel: a priority
// queue of (fire-time, rank, timer-id) entries with no cancellation API —
// stale ids are simply ignored by user process code.
package timer

import (
	"github.com/emirpasic/gods/queues/priorityqueue"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
)

type entry struct {
	fireAt jiffy.Jiffies
	rank   core.Rank
	id     core.TimerId
	seq    uint64
}

func byFireTimeThenSeq(a, b interface{}) int {
	ea, eb := a.(entry), b.(entry)
	if ea.fireAt != eb.fireAt {
		if ea.fireAt < eb.fireAt {
			return -1
		}
		return 1
	}
	if ea.seq < eb.seq {
		return -1
	}
	if ea.seq > eb.seq {
		return 1
	}
	return 0
}

// Manager is the min-heap over scheduled timers. It owns no reference to
// the process pool: firing a timer is the caller's job (see pkg/sim), which
// keeps Manager a leaf dependency.
type Manager struct {
	heap    *priorityqueue.Queue
	nextSeq uint64
}

// New creates an empty timer manager.
func New() *Manager {
	return &Manager{heap: priorityqueue.NewWith(byFireTimeThenSeq)}
}

// Schedule records a timer that fires at now+delay for rank, identified by
// id. Ties at the same Jiffy are broken by insertion order.
func (m *Manager) Schedule(now jiffy.Jiffies, rank core.Rank, delay jiffy.Jiffies, id core.TimerId) {
	m.heap.Enqueue(entry{fireAt: now.Add(delay), rank: rank, id: id, seq: m.nextSeq})
	m.nextSeq++
}

// PeekClosest returns the fire time of the next timer to fire.
func (m *Manager) PeekClosest() (jiffy.Jiffies, bool) {
	v, ok := m.heap.Peek()
	if !ok {
		return 0, false
	}
	return v.(entry).fireAt, true
}

// Step pops the next timer and returns the rank and id the caller should
// dispatch on_timer to.
func (m *Manager) Step() (core.Rank, core.TimerId, bool) {
	v, ok := m.heap.Dequeue()
	if !ok {
		return 0, 0, false
	}
	e := v.(entry)
	return e.rank, e.id, true
}

// Empty reports whether any timers remain scheduled.
func (m *Manager) Empty() bool {
	return m.heap.Empty()
}
