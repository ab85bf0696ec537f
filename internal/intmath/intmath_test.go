package intmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsqrt(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want uint64
	}{
		{name: "zero", n: 0, want: 0},
		{name: "one", n: 1, want: 1},
		{name: "three", n: 3, want: 1},
		{name: "four", n: 4, want: 2},
		{name: "exact square", n: 144, want: 12},
		{name: "below square", n: 143, want: 11},
		{name: "large exact", n: 1 << 62, want: 1 << 31},
		{name: "max uint64", n: math.MaxUint64, want: math.MaxUint32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Isqrt(tt.n))
		})
	}

	t.Run("result brackets n", func(t *testing.T) {
		for n := uint64(0); n < 5000; n++ {
			r := Isqrt(n)
			assert.LessOrEqual(t, r*r, n, "n=%d", n)
			assert.Greater(t, (r+1)*(r+1), n, "n=%d", n)
		}
	})
}
