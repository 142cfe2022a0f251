// Package sim wires the topology, queue, timer, pool, and network
// packages into a runnable Simulation, mirroring the orchestrator's
// phased build-then-run shape from the chaos runner, generalized from
// "run a chaos scenario against live infrastructure" to "run a scenario
// against a deterministic discrete-event model".
package sim

import (
	"github.com/rs/zerolog"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/logging"
	"github.com/jihwankim/dscale-sim/pkg/network"
	"github.com/jihwankim/dscale-sim/pkg/pool"
	"github.com/jihwankim/dscale-sim/pkg/progress"
	"github.com/jihwankim/dscale-sim/pkg/queue"
	"github.com/jihwankim/dscale-sim/pkg/random"
	"github.com/jihwankim/dscale-sim/pkg/simcontext"
	"github.com/jihwankim/dscale-sim/pkg/timer"
	"github.com/jihwankim/dscale-sim/pkg/topology"
)

// Builder assembles a Simulation: pools of processes, the latency
// topology between them, NIC bandwidth shaping, the run's seed, and the
// ambient logging/progress sinks. Build() freezes all of it into a
// Simulation ready to Run.
type Builder struct {
	topo     *topology.Builder
	handles  map[core.Rank]pool.ProcessHandle
	nextRank core.Rank

	bandwidth  queue.BandwidthType
	seed       uint64
	timeBudget jiffy.Jiffies

	logger   zerolog.Logger
	progress progress.Reporter
}

// NewBuilder creates a Builder with an unbounded NIC, seed 0, no time
// budget (Run's budget check stays disabled until TimeBudget is called),
// the default text logger, and a no-op progress reporter.
func NewBuilder() *Builder {
	return &Builder{
		topo:       topology.NewBuilder(),
		handles:    make(map[core.Rank]pool.ProcessHandle),
		bandwidth:  queue.Unbounded(),
		logger:     logging.Default(),
		progress:   progress.Noop{},
		timeBudget: -1,
	}
}

// AddPool registers a named pool of processes. Ranks are assigned
// globally in declaration order across every AddPool call on this
// Builder, starting at 1, and are returned in the same order as handles.
func (b *Builder) AddPool(name string, handles ...pool.ProcessHandle) []core.Rank {
	ranks := make([]core.Rank, len(handles))
	for i, h := range handles {
		b.nextRank++
		r := b.nextRank
		b.handles[r] = h
		ranks[i] = r
	}
	b.topo.AddPool(name, ranks)
	return ranks
}

// Topology exposes the Builder's internal topology.Builder, so config.
// Scenario.ApplyTopology can wire scenario-file latency descriptions onto
// the same pool registrations AddPool already made.
func (b *Builder) Topology() *topology.Builder {
	return b.topo
}

// LatencyWithinPool configures the latency distribution for every ordered
// pair drawn from the named pool.
func (b *Builder) LatencyWithinPool(poolName string, dist random.Distribution) *Builder {
	b.topo.AddDescription(topology.WithinPool(poolName, dist))
	return b
}

// LatencyBetweenPools configures the latency distribution, symmetrically,
// between two named pools.
func (b *Builder) LatencyBetweenPools(a, bName string, dist random.Distribution) *Builder {
	b.topo.AddDescription(topology.BetweenPools(a, bName, dist))
	return b
}

// NICBandwidth sets the per-destination bandwidth shaping mode. Defaults
// to Unbounded.
func (b *Builder) NICBandwidth(bandwidth queue.BandwidthType) *Builder {
	b.bandwidth = bandwidth
	return b
}

// Seed sets the PRNG seed driving every latency sample and random pool
// pick in the run. Two Builders configured identically and run with the
// same seed produce an identical event stream.
func (b *Builder) Seed(seed uint64) *Builder {
	b.seed = seed
	return b
}

// TimeBudget caps how far the simulation clock may advance. Run stops and
// returns nil, same as convergence, once the next pending event would
// cross it.
func (b *Builder) TimeBudget(budget jiffy.Jiffies) *Builder {
	b.timeBudget = budget
	return b
}

// Logger overrides the default logger.
func (b *Builder) Logger(l zerolog.Logger) *Builder {
	b.logger = l
	return b
}

// Progress overrides the default no-op progress reporter.
func (b *Builder) Progress(r progress.Reporter) *Builder {
	b.progress = r
	return b
}

// Build validates the accumulated topology and returns a Simulation ready
// to Run. The Builder may be reused afterward; Build does not consume it.
func (b *Builder) Build() (*Simulation, error) {
	topo, err := b.topo.Build()
	if err != nil {
		return nil, err
	}

	rnd := random.New(b.seed)
	ctx := simcontext.New(topo, rnd)
	procs := pool.New(b.handles)

	lat := queue.NewLatencyQueue(rnd, topo)
	bw := queue.NewBandwidthQueue(b.bandwidth, lat)
	net := network.New(topo, bw, procs, ctx)
	tm := timer.New()

	return &Simulation{
		topo:       topo,
		pool:       procs,
		ctx:        ctx,
		net:        net,
		timers:     tm,
		timeBudget: b.timeBudget,
		logger:     b.logger,
		progress:   b.progress,
	}, nil
}
