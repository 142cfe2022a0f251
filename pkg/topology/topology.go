// Package topology configures the simulated network's latency distributions
// between processes and the named pools used for broadcast/random routing.
// A Topology is immutable once built, shared read-only by the network actor,
// and total over every rank pair that a runtime lookup actually uses: a miss
// is a configuration error, never a silently-defaulted distribution.
package topology

import (
	"errors"
	"fmt"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/random"
)

// GlobalPool is the implicit pool containing every registered rank. It
// backs broadcast routing when the caller does not name a pool explicitly.
const GlobalPool = "global_pool"

// ErrNoDistribution is returned when a (src, dst) pair has no configured
// latency distribution. This is a configuration error the builder should
// have caught, not a runtime fallback.
var ErrNoDistribution = errors.New("topology: no distribution configured for (src, dst) pair")

// ErrUnknownPool is returned when a pool name does not exist.
var ErrUnknownPool = errors.New("topology: unknown pool")

type pairKey struct {
	src core.Rank
	dst core.Rank
}

// LatencyDescription is a single topology configuration entry. Build one
// with WithinPool or BetweenPools.
type LatencyDescription struct {
	kind         descKind
	poolA, poolB string
	dist         random.Distribution
}

type descKind int

const (
	kindWithinPool descKind = iota
	kindBetweenPools
)

// WithinPool applies dist to every ordered pair drawn from the named pool,
// including self-pairs (a rank may self-send only if its pool's WithinPool
// distribution covers the self pair; the builder applies it uniformly).
func WithinPool(pool string, dist random.Distribution) LatencyDescription {
	return LatencyDescription{kind: kindWithinPool, poolA: pool, dist: dist}
}

// BetweenPools applies dist symmetrically to every ordered pair with one
// endpoint in a and one in b.
func BetweenPools(a, b string, dist random.Distribution) LatencyDescription {
	return LatencyDescription{kind: kindBetweenPools, poolA: a, poolB: b, dist: dist}
}

// Topology is the immutable, whole-run latency and pool configuration.
type Topology struct {
	pools     map[string][]core.Rank
	latencies map[pairKey]random.Distribution
}

// Builder accumulates pools and latency descriptions before Build validates
// and freezes them into a Topology.
type Builder struct {
	pools []poolEntry
	descs []LatencyDescription
}

type poolEntry struct {
	name  string
	ranks []core.Rank
}

// NewBuilder creates an empty topology builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddPool registers a named pool of ranks. Pools may overlap; the implicit
// GlobalPool is derived automatically at Build time from every rank added
// across all pools.
func (b *Builder) AddPool(name string, ranks []core.Rank) *Builder {
	b.pools = append(b.pools, poolEntry{name: name, ranks: ranks})
	return b
}

// AddDescription records one latency configuration entry.
func (b *Builder) AddDescription(desc LatencyDescription) *Builder {
	b.descs = append(b.descs, desc)
	return b
}

// Build validates and freezes the topology. Unknown pool names referenced
// by a LatencyDescription are configuration errors.
func (b *Builder) Build() (*Topology, error) {
	pools := make(map[string][]core.Rank, len(b.pools)+1)
	var all []core.Rank
	seenAll := make(map[core.Rank]struct{})
	for _, p := range b.pools {
		pools[p.name] = append(pools[p.name], p.ranks...)
		for _, r := range p.ranks {
			if _, ok := seenAll[r]; !ok {
				seenAll[r] = struct{}{}
				all = append(all, r)
			}
		}
	}
	pools[GlobalPool] = all

	latencies := make(map[pairKey]random.Distribution)
	for _, d := range b.descs {
		switch d.kind {
		case kindWithinPool:
			ranks, ok := pools[d.poolA]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownPool, d.poolA)
			}
			for _, src := range ranks {
				for _, dst := range ranks {
					latencies[pairKey{src, dst}] = d.dist
				}
			}
		case kindBetweenPools:
			ranksA, ok := pools[d.poolA]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownPool, d.poolA)
			}
			ranksB, ok := pools[d.poolB]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownPool, d.poolB)
			}
			for _, src := range ranksA {
				for _, dst := range ranksB {
					latencies[pairKey{src, dst}] = d.dist
					latencies[pairKey{dst, src}] = d.dist
				}
			}
		}
	}

	return &Topology{pools: pools, latencies: latencies}, nil
}

// Distribution looks up the configured latency distribution for (src, dst).
// A miss returns ErrNoDistribution: the topology is total over every pair a
// caller should actually use, so a miss indicates a missing configuration
// entry rather than a condition to recover from at runtime.
func (t *Topology) Distribution(src, dst core.Rank) (random.Distribution, error) {
	d, ok := t.latencies[pairKey{src, dst}]
	if !ok {
		return random.Distribution{}, fmt.Errorf("%w: %d -> %d", ErrNoDistribution, src, dst)
	}
	return d, nil
}

// ListPool returns the (read-only) members of a named pool.
func (t *Topology) ListPool(name string) ([]core.Rank, error) {
	ranks, ok := t.pools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPool, name)
	}
	out := make([]core.Rank, len(ranks))
	copy(out, ranks)
	return out, nil
}
