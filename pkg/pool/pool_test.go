package pool_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/core"
	"github.com/jihwankim/dscale-sim/pkg/pool"
	"github.com/jihwankim/dscale-sim/pkg/simcontext"
	"github.com/stretchr/testify/require"
)

type recordingHandle struct {
	started bool
}

func (h *recordingHandle) Start(ctx *simcontext.Context)                                  { h.started = true }
func (h *recordingHandle) OnMessage(ctx *simcontext.Context, from core.Rank, p core.Message) {}
func (h *recordingHandle) OnTimer(ctx *simcontext.Context, id core.TimerId)                {}

func TestRanksAreSortedRegardlessOfInsertionOrder(t *testing.T) {
	p := pool.New(map[core.Rank]pool.ProcessHandle{
		5: &recordingHandle{},
		1: &recordingHandle{},
		3: &recordingHandle{},
	})
	require.Equal(t, []core.Rank{1, 3, 5}, p.Ranks())
}

func TestDispatchBorrowsAndReleases(t *testing.T) {
	h := &recordingHandle{}
	p := pool.New(map[core.Rank]pool.ProcessHandle{1: h})

	p.Dispatch(1, func(handle pool.ProcessHandle) {
		handle.Start(nil)
	})
	require.True(t, h.started)

	// A second, independent dispatch after the first returned must not panic.
	require.NotPanics(t, func() {
		p.Dispatch(1, func(handle pool.ProcessHandle) {})
	})
}

func TestReentrantDispatchPanics(t *testing.T) {
	h := &recordingHandle{}
	p := pool.New(map[core.Rank]pool.ProcessHandle{1: h})

	require.Panics(t, func() {
		p.Dispatch(1, func(handle pool.ProcessHandle) {
			p.Dispatch(1, func(pool.ProcessHandle) {})
		})
	})
}

func TestDispatchUnknownRankPanics(t *testing.T) {
	p := pool.New(map[core.Rank]pool.ProcessHandle{1: &recordingHandle{}})
	require.Panics(t, func() {
		p.Dispatch(99, func(pool.ProcessHandle) {})
	})
}
