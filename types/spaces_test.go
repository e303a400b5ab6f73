package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestDiscreteSpace(t *testing.T) {
	d := NewDiscrete(3, 2)
	require.Equal(t, []int{2}, d.Shape())
	require.Equal(t, 2, Width(d))

	require.True(t, d.Contains([]float64{2, 1}))
	require.False(t, d.Contains([]float64{3, 0}))
	require.False(t, d.Contains([]float64{0.5, 0}))
	require.False(t, d.Contains([]float64{0}))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		require.True(t, d.Contains(d.Sample(rng)))
	}
}

func TestDiscreteEnum(t *testing.T) {
	d := NewDiscrete(2, 3)
	enum := d.Enum()
	require.Len(t, enum, 6)
	require.Equal(t, []float64{0, 0}, enum[0])
	require.Equal(t, []float64{1, 2}, enum[5])

	seen := make(map[string]bool)
	for _, a := range enum {
		seen[VecAction(a).Hash()] = true
	}
	require.Len(t, seen, 6)
}

func TestBoxSpace(t *testing.T) {
	b := NewBox(-1, 1, 3)
	require.Equal(t, []int{3}, b.Shape())

	require.True(t, b.Contains([]float64{-1, 0, 1}))
	require.False(t, b.Contains([]float64{-1.1, 0, 0}))
	require.False(t, b.Contains([]float64{0, 0}))

	require.False(t, b.Contains([]float64{math.NaN(), 0, 0}))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		require.True(t, b.Contains(b.Sample(rng)))
	}
}

func TestVecActionHash(t *testing.T) {
	require.Equal(t, "0,1.5", VecAction{0, 1.5}.Hash())
	require.Equal(t, "", VecAction{}.Hash())
	require.NotEqual(t, VecAction{1, 0}.Hash(), VecAction{0, 1}.Hash())
}
