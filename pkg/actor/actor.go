// Package actor defines the minimal interface of an event source. The
// network actor satisfies it; the timer manager does not (its Step returns
// the rank and id to dispatch), and pkg/sim drives both of them directly,
// choosing which one to step by name.
package actor

import "github.com/jihwankim/dscale-sim/pkg/jiffy"

// Actor is one source of discrete events in the simulation. PeekClosest
// reports when the actor's next event would fire without consuming it;
// Step consumes and dispatches exactly one event, advancing whatever
// internal state the actor owns.
type Actor interface {
	// Start runs once at the beginning of the simulation, before any Step.
	Start()
	// PeekClosest returns the time of this actor's next pending event. The
	// second return value is false if the actor has nothing pending.
	PeekClosest() (jiffy.Jiffies, bool)
	// Step dispatches exactly one event — the one PeekClosest reported —
	// and returns the time it occurred at. Calling Step when PeekClosest
	// would report false is a programming error.
	Step() jiffy.Jiffies
}
