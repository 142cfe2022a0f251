// Package core defines the small value types shared by every simulator
// package: process ranks, timer identifiers, the message contract, and the
// routed-message tuple that flows through the latency and bandwidth queues.
package core

import "github.com/jihwankim/dscale-sim/pkg/jiffy"

// Rank identifies a process within a simulation run. Ranks start at 1 and
// are assigned globally in pool declaration order.
type Rank int

// TimerId is a unique identifier drawn from the simulation's TSO.
type TimerId uint64

// Message is the contract user protocol code implements for anything sent
// over the simulated network. VirtualSize reports the byte cost consumed by
// the bandwidth model; returning 0 is valid for messages that should not
// count against a NIC's budget.
type Message interface {
	VirtualSize() int
}

// Destination distinguishes a broadcast submission (expanded by the network
// actor to every global pool member except the sender) from a
// point-to-point send.
type Destination struct {
	Broadcast bool
	To        Rank
}

// To builds a point-to-point Destination.
func To(rank Rank) Destination {
	return Destination{To: rank}
}

// Broadcast builds a broadcast Destination.
func Broadcast() Destination {
	return Destination{Broadcast: true}
}

// RoutedMessage is a single (planned-arrival-time, src, dst, payload) tuple
// as it travels through the latency and bandwidth queues. seq is a
// monotonically increasing push counter used only to break ties between
// messages scheduled for the same Jiffy, so delivery order is stable and
// reproducible across runs with identical inputs.
type RoutedMessage struct {
	ArrivalTime jiffy.Jiffies
	Src         Rank
	Dst         Rank
	Payload     Message
	Seq         uint64
}

// VirtualSize is a convenience accessor mirroring Payload.VirtualSize().
func (m RoutedMessage) VirtualSize() int {
	return m.Payload.VirtualSize()
}
