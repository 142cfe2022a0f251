package sim

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/network"
	"github.com/jihwankim/dscale-sim/pkg/pool"
	"github.com/jihwankim/dscale-sim/pkg/progress"
	"github.com/jihwankim/dscale-sim/pkg/simcontext"
	"github.com/jihwankim/dscale-sim/pkg/timer"
	"github.com/jihwankim/dscale-sim/pkg/topology"
)

// ErrDeadlock is returned by Run when neither actor has a pending event
// and the stop condition still has not been satisfied: the scenario
// being simulated will never reach whatever state the caller is waiting
// for, because nothing is left to happen.
var ErrDeadlock = errors.New("sim: deadlock — no pending events and stop condition not met")

// Simulation is a fully built, runnable scenario: a process pool, a
// topology, a network actor, and a timer manager, all sharing one
// simcontext.Context and one seeded Randomizer. Construct one with
// Builder.Build.
type Simulation struct {
	topo   *topology.Topology
	pool   *pool.Pool
	ctx    *simcontext.Context
	net    *network.Network
	timers *timer.Manager

	timeBudget jiffy.Jiffies
	logger     zerolog.Logger
	progress   progress.Reporter

	started bool
}

// Context returns the simulation's ambient Context, primarily so a test
// or host application can inspect the KV store after Run returns.
func (s *Simulation) Context() *simcontext.Context {
	return s.ctx
}

// Ranks returns every rank in the simulation, sorted ascending.
func (s *Simulation) Ranks() []core.Rank {
	return s.pool.Ranks()
}

// Run drives the simulation loop until until reports true, the time
// budget is reached, or no actor has a pending event. The first two are
// both normal termination (nil returned); only a true deadlock — nothing
// left to happen with the stop condition still unmet — is an error
// (ErrDeadlock). A negative time budget (the Builder default) disables
// the budget check.
//
// On the first call, Run dispatches Start to every process, in rank
// order, before entering the event loop.
func (s *Simulation) Run(until func(*simcontext.Context) bool) error {
	if !s.started {
		s.started = true
		for _, r := range s.pool.Ranks() {
			s.ctx.BeginDispatch(0, r)
			s.pool.Dispatch(r, func(h pool.ProcessHandle) {
				h.Start(s.ctx)
			})
			if err := s.drain(0); err != nil {
				return err
			}
		}
	}

	for {
		if until(s.ctx) {
			s.progress.Converged(s.ctx.Now())
			return nil
		}

		netTime, netOK := s.net.PeekClosest()
		timerTime, timerOK := s.timers.PeekClosest()

		if !netOK && !timerOK {
			s.progress.Deadlocked(s.ctx.Now())
			return ErrDeadlock
		}

		var now jiffy.Jiffies
		var actor string
		switch {
		case netOK && (!timerOK || netTime <= timerTime):
			now, actor = netTime, "network"
		default:
			now, actor = timerTime, "timer"
		}

		if s.timeBudget >= 0 && now > s.timeBudget {
			s.progress.BudgetExhausted(now, s.timeBudget)
			return nil
		}

		if actor == "network" {
			s.net.Step()
		} else {
			s.stepTimer()
		}
		s.progress.StepAdvanced(now, actor)

		if err := s.drain(now); err != nil {
			return err
		}
	}
}

func (s *Simulation) stepTimer() {
	now, ok := s.timers.PeekClosest()
	if !ok {
		panic("sim: stepTimer called with no pending timer")
	}
	rank, id, _ := s.timers.Step()
	s.ctx.BeginDispatch(now, rank)
	s.pool.Dispatch(rank, func(h pool.ProcessHandle) {
		h.OnTimer(s.ctx, id)
	})
}

// drain flushes every send and timer staged during the callback that just
// ran, submitting sends into the network actor and registering timers
// with the timer manager. Sends are submitted at now+1, so a message sent
// at time T cannot arrive at T.
func (s *Simulation) drain(now jiffy.Jiffies) error {
	for _, send := range s.ctx.DrainSends() {
		if err := s.net.Submit(now.Add(1), send); err != nil {
			return err
		}
	}
	for _, t := range s.ctx.DrainTimers() {
		s.timers.Schedule(now, t.Rank, t.Delay, t.ID)
	}
	return nil
}
