package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform(t *testing.T) {
	d, err := Uniform(10)
	require.NoError(t, err)
	assert.Equal(t, 11, d.Len())
	assert.Equal(t, 0.0, d.At(d.First()))
	assert.Equal(t, 1.0, d.At(d.Last()))
	for i := 1; i < d.Len(); i++ {
		assert.Greater(t, d.At(i), d.At(i-1))
	}
	assert.InDelta(t, 0.5, d.At(5), 1e-15)
}

func TestUniformRejectsBadCount(t *testing.T) {
	_, err := Uniform(0)
	assert.ErrorIs(t, err, ErrElementCount)
	_, err = Uniform(-3)
	assert.ErrorIs(t, err, ErrElementCount)
}

func TestFromPoints(t *testing.T) {
	d, err := FromPoints([]float64{0, 0.3, 0.6, 1})
	require.NoError(t, err)
	assert.Equal(t, 4, d.Len())

	cases := [][]float64{
		{0, 1, 0.5},        // not increasing
		{0, 0.5, 0.5, 1},   // repeated point
		{0.1, 0.5, 1},      // missing left endpoint
		{0, 0.5, 0.9},      // missing right endpoint
		{1},                // too short
	}
	for _, c := range cases {
		_, err := FromPoints(c)
		assert.ErrorIs(t, err, ErrPointSet, "points %v", c)
	}
}

func TestWithCollocation(t *testing.T) {
	d, err := WithCollocation(10, 3)
	require.NoError(t, err)
	assert.Equal(t, 31, d.Len())
	assert.Equal(t, 0.0, d.At(0))
	assert.Equal(t, 1.0, d.At(30))
	// element boundaries stay in the set
	assert.InDelta(t, 0.1, d.At(3), 1e-12)
	assert.InDelta(t, 0.5, d.At(15), 1e-12)
	// interior Radau point of the first element
	assert.InDelta(t, 0.0155051025721682, d.At(1), 1e-12)

	_, err = WithCollocation(10, 9)
	assert.ErrorIs(t, err, ErrCollocation)
}

func TestCollocateElements(t *testing.T) {
	d, err := CollocateElements([]float64{0, 0.25, 1}, 2)
	require.NoError(t, err)
	require.Equal(t, 5, d.Len())
	assert.Equal(t, 0.25, d.At(2))
	assert.Equal(t, 1.0, d.At(4))
	assert.InDelta(t, 0.25/3.0, d.At(1), 1e-12)

	_, err = CollocateElements([]float64{0, 0.25}, 9)
	assert.ErrorIs(t, err, ErrCollocation)

	_, err = CollocateElements([]float64{0.1, 1}, 2)
	assert.ErrorIs(t, err, ErrPointSet)
}

func TestNavigation(t *testing.T) {
	d, err := Uniform(4)
	require.NoError(t, err)

	n, ok := d.Next(0)
	assert.True(t, ok)
	assert.Equal(t, 1, n)
	_, ok = d.Next(d.Last())
	assert.False(t, ok)

	p, ok := d.Prev(d.Last())
	assert.True(t, ok)
	assert.Equal(t, 3, p)
	_, ok = d.Prev(d.First())
	assert.False(t, ok)
}

func TestSamePoints(t *testing.T) {
	a, err := Uniform(10)
	require.NoError(t, err)
	b, err := Uniform(10)
	require.NoError(t, err)
	c, err := Uniform(8)
	require.NoError(t, err)

	assert.True(t, a.SamePoints(b), "separately built equal domains")
	assert.False(t, a == b, "distinct objects")
	assert.False(t, a.SamePoints(c))
	assert.False(t, a.SamePoints(nil))
}

func TestRadauDerivativeMatrix(t *testing.T) {
	for ncp := 1; ncp <= 5; ncp++ {
		d, err := RadauDerivativeMatrix(ncp)
		require.NoError(t, err)
		require.Len(t, d, ncp)

		roots, err := RadauRoots(ncp)
		require.NoError(t, err)
		nodes := append([]float64{0}, roots...)

		for k := 0; k < ncp; k++ {
			require.Len(t, d[k], ncp+1)
			cSum, xSum := 0.0, 0.0
			for j, w := range d[k] {
				cSum += w
				xSum += w * nodes[j]
			}
			// exact for constants and linears
			assert.InDelta(t, 0.0, cSum, 1e-10, "ncp=%d k=%d", ncp, k)
			assert.InDelta(t, 1.0, xSum, 1e-10, "ncp=%d k=%d", ncp, k)
		}
	}
}

func TestRadauOrderOneIsBackwardDifference(t *testing.T) {
	d, err := RadauDerivativeMatrix(1)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, d[0][0], 1e-14)
	assert.InDelta(t, 1.0, d[0][1], 1e-14)
}
