package golden

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstants(t *testing.T) {
	t.Run("phi satisfies its defining equation", func(t *testing.T) {
		assert.InDelta(t, Phi+1, Phi*Phi, 1e-12)
	})

	t.Run("psi is the negative reciprocal of phi", func(t *testing.T) {
		assert.InDelta(t, -1/Phi, Psi, 1e-12)
	})

	t.Run("rotation angle stays within one turn", func(t *testing.T) {
		assert.Greater(t, Angle, 0.0)
		assert.Less(t, Angle, 2*math.Pi)
	})
}

func TestFib(t *testing.T) {
	tests := []struct {
		name string
		k    int
		want uint64
	}{
		{name: "f0", k: 0, want: 0},
		{name: "f1", k: 1, want: 1},
		{name: "f2", k: 2, want: 1},
		{name: "f10", k: 10, want: 55},
		{name: "f20", k: 20, want: 6765},
		{name: "f50", k: 50, want: 12586269025},
		{name: "f93", k: 93, want: 12200160415121876738},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fib(tt.k))
		})
	}

	t.Run("recurrence holds", func(t *testing.T) {
		for k := 2; k <= 90; k++ {
			assert.Equal(t, Fib(k-1)+Fib(k-2), Fib(k), "k=%d", k)
		}
	})

	t.Run("invalid index panics", func(t *testing.T) {
		assert.Panics(t, func() { Fib(-1) })
		assert.Panics(t, func() { Fib(MaxFibIndex + 1) })
	})
}

func TestFibsUpTo(t *testing.T) {
	tests := []struct {
		name  string
		limit uint64
		want  []uint64
	}{
		{name: "zero", limit: 0, want: nil},
		{name: "one", limit: 1, want: []uint64{1}},
		{name: "hundred", limit: 100, want: []uint64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FibsUpTo(tt.limit))
		})
	}

	t.Run("unbounded limit stops at the uint64 ceiling", func(t *testing.T) {
		fibs := FibsUpTo(math.MaxUint64)
		require.NotEmpty(t, fibs)
		assert.Equal(t, Fib(MaxFibIndex), fibs[len(fibs)-1])
	})
}

func TestFibWave(t *testing.T) {
	t.Run("passes through integer fibonacci values", func(t *testing.T) {
		for k := 0; k <= 30; k++ {
			want := float64(Fib(k))
			got := FibWave(float64(k))
			assert.InDelta(t, want, got, math.Max(1e-6, want*1e-12), "k=%d", k)
		}
	})

	t.Run("is smooth between integers", func(t *testing.T) {
		mid := FibWave(10.5)
		assert.Greater(t, mid, float64(Fib(10)))
		assert.Less(t, mid, float64(Fib(11)))
	})
}

func TestLucas(t *testing.T) {
	want := []uint64{2, 1, 3, 4, 7, 11, 18, 29, 47, 76}
	for k, w := range want {
		assert.Equal(t, w, Lucas(k), "k=%d", k)
	}

	assert.Panics(t, func() { Lucas(-1) })
}

func TestIsFibonacci(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want bool
	}{
		{name: "zero", n: 0, want: true},
		{name: "one", n: 1, want: true},
		{name: "small member", n: 21, want: true},
		{name: "small non-member", n: 22, want: false},
		{name: "large member", n: 12586269025, want: true},
		{name: "large non-member", n: 12586269026, want: false},
		{name: "largest uint64 member", n: 12200160415121876738, want: true},
		{name: "max uint64", n: math.MaxUint64, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFibonacci(tt.n))
		})
	}
}
