package main

import (
	"fmt"

	"github.com/jihwankim/dscale-sim/examples/broadcast"
	"github.com/jihwankim/dscale-sim/examples/pingpong"
	"github.com/jihwankim/dscale-sim/pkg/pool"
)

// processFactory builds one process handle. The CLI carries no protocol
// code of its own (out of scope for the library), so the shipped binary
// can only run the bundled example protocols: a scenario file's pool name
// selects which factory runs in that pool.
type processFactory func() pool.ProcessHandle

var registry = map[string]processFactory{
	"pinger":   func() pool.ProcessHandle { return &pingpong.Pinger{MaxRounds: 10} },
	"ponger":   func() pool.ProcessHandle { return &pingpong.Ponger{} },
	"leader":   func() pool.ProcessHandle { return broadcast.NewLeader(3) },
	"follower": func() pool.ProcessHandle { return &broadcast.Follower{} },
}

func buildHandles(poolName string, count int) ([]pool.ProcessHandle, error) {
	factory, ok := registry[poolName]
	if !ok {
		return nil, fmt.Errorf("no bundled process factory registered for pool %q (known: pinger, ponger, leader, follower)", poolName)
	}
	handles := make([]pool.ProcessHandle, count)
	for i := range handles {
		handles[i] = factory()
	}
	return handles, nil
}
