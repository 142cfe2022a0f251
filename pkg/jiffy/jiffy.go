// Package jiffy defines the discrete time unit used throughout the simulator.
package jiffy

import "fmt"

// Jiffies is a discrete, non-negative tick of simulation time. All durations
// and timestamps in the simulator are expressed in Jiffies; there is no
// floating-point time, so two runs on different machines stay reproducible.
type Jiffies int64

// Zero is the start of simulated time.
const Zero Jiffies = 0

// Add returns the sum of two Jiffies values. other must be non-negative —
// every delta in this simulator (latency samples, timer delays, drain
// times) is a forward offset, and a negative one would move time backward,
// which nothing downstream is prepared to handle.
func (j Jiffies) Add(other Jiffies) Jiffies {
	if other < 0 {
		panic("jiffy: Add called with a negative delta")
	}
	return j + other
}

// Sub returns j - other. Callers that might underflow below zero should
// check with Less first; Sub itself does not clamp.
func (j Jiffies) Sub(other Jiffies) Jiffies {
	return j - other
}

// Less reports whether j occurs strictly before other.
func (j Jiffies) Less(other Jiffies) bool {
	return j < other
}

// Min returns the earlier of two Jiffies values.
func Min(a, b Jiffies) Jiffies {
	if a < b {
		return a
	}
	return b
}

func (j Jiffies) String() string {
	return fmt.Sprintf("%d", int64(j))
}
