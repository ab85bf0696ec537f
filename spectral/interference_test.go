package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterference(t *testing.T) {
	t.Run("spans the factor domain", func(t *testing.T) {
		spectrum := Interference(2310)
		assert.Len(t, spectrum, 47) // positions 2..48
		for i, v := range spectrum {
			assert.False(t, math.IsNaN(v), "NaN at %d", i)
		}
	})

	t.Run("too small to sample", func(t *testing.T) {
		assert.Nil(t, Interference(3))
	})

	t.Run("large domains sample at a coarser stride", func(t *testing.T) {
		spectrum := Interference(uint64(1) << 40)
		assert.Len(t, spectrum, maxInterferenceSamples)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Interference(143), Interference(143))
	})
}

func TestInterferenceExtrema(t *testing.T) {
	t.Run("positions fall inside the domain", func(t *testing.T) {
		extrema := InterferenceExtrema(2310, 30)
		require.NotEmpty(t, extrema)
		assert.LessOrEqual(t, len(extrema), 30)
		for _, x := range extrema {
			assert.GreaterOrEqual(t, x, uint64(3))
			assert.LessOrEqual(t, x, uint64(47))
		}
	})

	t.Run("strongest first", func(t *testing.T) {
		spectrum := Interference(2310)
		extrema := InterferenceExtrema(2310, 30)
		require.Greater(t, len(extrema), 1)
		for i := 1; i < len(extrema); i++ {
			prev := math.Abs(spectrum[extrema[i-1]-2])
			cur := math.Abs(spectrum[extrema[i]-2])
			assert.GreaterOrEqual(t, prev, cur)
		}
	})

	t.Run("top limits the count", func(t *testing.T) {
		assert.LessOrEqual(t, len(InterferenceExtrema(10403, 5)), 5)
		assert.Nil(t, InterferenceExtrema(10403, 0))
	})

	t.Run("tiny domain yields nothing", func(t *testing.T) {
		assert.Nil(t, InterferenceExtrema(8, 10))
	})
}

func TestResonanceSource(t *testing.T) {
	t.Run("returns wave members", func(t *testing.T) {
		p, f := ResonanceSource(11, 143)
		assert.True(t, p >= 2)
		assert.True(t, f >= 1)
	})

	t.Run("prime avoids divisors of the position", func(t *testing.T) {
		p, _ := ResonanceSource(10, 2310)
		assert.NotZero(t, 10%p, "10 mod %d", p)
	})

	t.Run("deterministic", func(t *testing.T) {
		p1, f1 := ResonanceSource(33, 429)
		p2, f2 := ResonanceSource(33, 429)
		assert.Equal(t, p1, p2)
		assert.Equal(t, f1, f2)
	})

	t.Run("degenerate target falls back", func(t *testing.T) {
		p, f := ResonanceSource(5, 0)
		assert.Equal(t, uint64(2), p)
		assert.Equal(t, uint64(2), f)
	})
}
