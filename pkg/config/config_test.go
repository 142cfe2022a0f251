package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/config"
	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/queue"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
apiVersion: dscale/v1
kind: Simulation
metadata:
  name: ping-pong-demo
spec:
  seed: 5
  timeBudget: 100000
  bandwidth: unbounded
  pools:
    - name: nodes
      count: 2
  topology:
    - kind: withinPool
      pool: nodes
      distribution: {type: uniform, lo: 10, hi: 10}
progress:
  format: text
logging:
  level: info
  format: text
`

func writeTempScenario(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParsesAndValidates(t *testing.T) {
	path := writeTempScenario(t, sampleYAML)
	s, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "ping-pong-demo", s.Metadata.Name)
	require.Equal(t, uint64(5), s.Spec.Seed)
	require.Equal(t, "nodes", s.Spec.Pools[0].Name)
	require.Equal(t, 2, s.Spec.Pools[0].Count)

	bw, err := s.Spec.BuildBandwidth()
	require.NoError(t, err)
	require.Equal(t, queue.Unbounded(), bw)
}

func TestLoadRejectsZeroCountPool(t *testing.T) {
	bad := `
apiVersion: dscale/v1
kind: Simulation
metadata: {name: bad}
spec:
  pools:
    - name: nodes
      count: 0
`
	path := writeTempScenario(t, bad)
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnknownDistributionType(t *testing.T) {
	bad := `
apiVersion: dscale/v1
kind: Simulation
metadata: {name: bad}
spec:
  pools:
    - name: nodes
      count: 1
  topology:
    - kind: withinPool
      pool: nodes
      distribution: {type: exponential}
`
	path := writeTempScenario(t, bad)
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestApplyTopologyChecksDeclaredCount(t *testing.T) {
	path := writeTempScenario(t, sampleYAML)
	s, err := config.Load(path)
	require.NoError(t, err)

	err = s.ApplyTopology(nil, map[string][]core.Rank{"nodes": {1}})
	require.Error(t, err)
}

func TestBoundedBandwidthParsing(t *testing.T) {
	spec := config.Spec{Bandwidth: "bounded:100"}
	bw, err := spec.BuildBandwidth()
	require.NoError(t, err)
	require.Equal(t, queue.Bounded(100), bw)

	spec = config.Spec{Bandwidth: "bounded:0"}
	_, err = spec.BuildBandwidth()
	require.Error(t, err)
}
