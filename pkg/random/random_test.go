package random_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/random"
	"github.com/stretchr/testify/require"
)

func TestUniformDegenerate(t *testing.T) {
	r := random.New(42)
	d := random.Uniform(jiffy.Jiffies(7), jiffy.Jiffies(7))
	for i := 0; i < 50; i++ {
		require.Equal(t, jiffy.Jiffies(7), r.Sample(d))
	}
}

func TestBernoulliCertainty(t *testing.T) {
	r := random.New(1)
	always := random.Bernoulli(1.0, jiffy.Jiffies(9))
	never := random.Bernoulli(0.0, jiffy.Jiffies(9))
	for i := 0; i < 50; i++ {
		require.Equal(t, jiffy.Jiffies(9), r.Sample(always))
		require.Equal(t, jiffy.Jiffies(0), r.Sample(never))
	}
}

func TestUniformBounds(t *testing.T) {
	r := random.New(99)
	d := random.Uniform(jiffy.Jiffies(10), jiffy.Jiffies(20))
	for i := 0; i < 500; i++ {
		v := r.Sample(d)
		require.GreaterOrEqual(t, int64(v), int64(10))
		require.LessOrEqual(t, int64(v), int64(20))
	}
}

func TestNormalNonNegative(t *testing.T) {
	r := random.New(7)
	d := random.Normal(jiffy.Jiffies(0), jiffy.Jiffies(5))
	for i := 0; i < 500; i++ {
		require.GreaterOrEqual(t, int64(r.Sample(d)), int64(0))
	}
}

func TestDeterministicStream(t *testing.T) {
	d := random.Uniform(jiffy.Jiffies(0), jiffy.Jiffies(1_000_000))

	r1 := random.New(123)
	r2 := random.New(123)

	for i := 0; i < 100; i++ {
		require.Equal(t, r1.Sample(d), r2.Sample(d))
	}
}

func TestChoose(t *testing.T) {
	r := random.New(5)
	items := []int{10, 20, 30}
	for i := 0; i < 20; i++ {
		v := random.Choose(r, items)
		require.Contains(t, items, v)
	}
}

func TestChooseEmptyPanics(t *testing.T) {
	r := random.New(5)
	require.Panics(t, func() {
		random.Choose(r, []int{})
	})
}
