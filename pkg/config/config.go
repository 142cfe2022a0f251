// Package config loads a simulation scenario from a YAML file into typed
// Go values and translates them into a topology.Builder and the other
// Builder settings pkg/sim needs. The envelope (apiVersion/kind/metadata/
// spec) mirrors the teacher's scenario.Scenario shape, narrowed to what a
// deterministic simulation run needs instead of a live chaos-injection run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/queue"
	"github.com/jihwankim/dscale-sim/pkg/random"
	"github.com/jihwankim/dscale-sim/pkg/topology"
)

// Scenario is the root of a scenario YAML document.
type Scenario struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
	Progress   Progress `yaml:"progress"`
	Logging    Logging  `yaml:"logging"`
}

// Metadata names the scenario, for logging and reporting.
type Metadata struct {
	Name string `yaml:"name"`
}

// Spec is the part of a Scenario that maps onto sim.Builder.
type Spec struct {
	Seed       uint64           `yaml:"seed"`
	TimeBudget int64            `yaml:"timeBudget"`
	Bandwidth  string           `yaml:"bandwidth"`
	Pools      []PoolSpec       `yaml:"pools"`
	Topology   []TopologyEntry  `yaml:"topology"`
}

// PoolSpec declares a named pool and how many processes it has. The
// config layer does not know how to construct a ProcessHandle — the
// caller builds the handles for each pool itself and passes the ranks
// they were assigned to Scenario.ApplyTopology.
type PoolSpec struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// TopologyEntry is one latency-configuration line: either "withinPool" (one
// pool name) or "betweenPools" (two pool names).
type TopologyEntry struct {
	Kind         string             `yaml:"kind"`
	Pool         string             `yaml:"pool,omitempty"`
	PoolA        string             `yaml:"poolA,omitempty"`
	PoolB        string             `yaml:"poolB,omitempty"`
	Distribution DistributionSpec   `yaml:"distribution"`
}

// DistributionSpec is the YAML encoding of a random.Distribution.
type DistributionSpec struct {
	Type  string  `yaml:"type"`
	Lo    int64   `yaml:"lo,omitempty"`
	Hi    int64   `yaml:"hi,omitempty"`
	Mu    int64   `yaml:"mu,omitempty"`
	Sigma int64   `yaml:"sigma,omitempty"`
	P     float64 `yaml:"p,omitempty"`
	Value int64   `yaml:"value,omitempty"`
}

// Progress configures the CLI's progress reporter.
type Progress struct {
	Format string `yaml:"format"`
}

// Logging configures the CLI's logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses a scenario YAML file, then validates it.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the scenario for the configuration errors the builder
// itself cannot catch ahead of time: zero-count pools and unknown
// distribution types. Unknown pool references inside a topology entry are
// left for topology.Builder.Build to catch, since that is already its job.
func (s *Scenario) Validate() error {
	if len(s.Spec.Pools) == 0 {
		return fmt.Errorf("config: spec.pools must declare at least one pool")
	}
	seen := make(map[string]struct{}, len(s.Spec.Pools))
	for _, p := range s.Spec.Pools {
		if p.Name == "" {
			return fmt.Errorf("config: pool entry missing a name")
		}
		if p.Count <= 0 {
			return fmt.Errorf("config: pool %q must have count > 0", p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("config: duplicate pool name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	for _, e := range s.Spec.Topology {
		if _, err := e.Distribution.toRandom(); err != nil {
			return err
		}
		switch e.Kind {
		case "withinPool":
			if e.Pool == "" {
				return fmt.Errorf("config: withinPool entry missing pool")
			}
		case "betweenPools":
			if e.PoolA == "" || e.PoolB == "" {
				return fmt.Errorf("config: betweenPools entry missing poolA/poolB")
			}
		default:
			return fmt.Errorf("config: unknown topology entry kind %q", e.Kind)
		}
	}
	return nil
}

func (d DistributionSpec) toRandom() (random.Distribution, error) {
	switch d.Type {
	case "uniform":
		return random.Uniform(jiffy.Jiffies(d.Lo), jiffy.Jiffies(d.Hi)), nil
	case "normal":
		return random.Normal(jiffy.Jiffies(d.Mu), jiffy.Jiffies(d.Sigma)), nil
	case "bernoulli":
		return random.Bernoulli(d.P, jiffy.Jiffies(d.Value)), nil
	default:
		return random.Distribution{}, fmt.Errorf("config: unknown distribution type %q", d.Type)
	}
}

// BuildBandwidth parses the spec.bandwidth field: "unbounded" or
// "bounded:<bytesPerJiffy>".
func (s *Spec) BuildBandwidth() (queue.BandwidthType, error) {
	if s.Bandwidth == "" || s.Bandwidth == "unbounded" {
		return queue.Unbounded(), nil
	}
	var bytesPerJiffy int
	if _, err := fmt.Sscanf(s.Bandwidth, "bounded:%d", &bytesPerJiffy); err != nil {
		return queue.BandwidthType{}, fmt.Errorf("config: invalid bandwidth %q", s.Bandwidth)
	}
	if bytesPerJiffy <= 0 {
		return queue.BandwidthType{}, fmt.Errorf("config: bounded bandwidth must be > 0, got %q", s.Bandwidth)
	}
	return queue.Bounded(bytesPerJiffy), nil
}

// ApplyTopology registers the scenario's latency descriptions onto topo —
// normally the topology.Builder obtained from sim.Builder.Topology(),
// whose pool membership was already populated by the sim.Builder.AddPool
// calls that created each pool's process handles. poolRanks supplies
// those already-assigned ranks purely so ApplyTopology can check the
// scenario's declared count against reality before wiring latency.
func (s *Scenario) ApplyTopology(topo *topology.Builder, poolRanks map[string][]core.Rank) error {
	for _, p := range s.Spec.Pools {
		ranks, ok := poolRanks[p.Name]
		if !ok {
			return fmt.Errorf("config: no ranks supplied for pool %q", p.Name)
		}
		if len(ranks) != p.Count {
			return fmt.Errorf("config: pool %q declared count %d but got %d ranks", p.Name, p.Count, len(ranks))
		}
	}
	for _, e := range s.Spec.Topology {
		dist, err := e.Distribution.toRandom()
		if err != nil {
			return err
		}
		switch e.Kind {
		case "withinPool":
			topo.AddDescription(topology.WithinPool(e.Pool, dist))
		case "betweenPools":
			topo.AddDescription(topology.BetweenPools(e.PoolA, e.PoolB, dist))
		}
	}
	return nil
}

// TimeBudgetJiffies converts the scenario's integer time budget to a
// jiffy.Jiffies value, or -1 (no budget) if unset.
func (s *Spec) TimeBudgetJiffies() jiffy.Jiffies {
	if s.TimeBudget <= 0 {
		return -1
	}
	return jiffy.Jiffies(s.TimeBudget)
}
