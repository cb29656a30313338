package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobs returns n tight points around each center.
func blobs(centers [][]float64, n int) [][]float64 {
	var pts [][]float64
	for _, c := range centers {
		for i := range n {
			off := float64(i%5)*0.01 - 0.02
			pts = append(pts, []float64{c[0] + off, c[1] - off})
		}
	}
	return pts
}

func TestKMeans_SeparatedBlobs(t *testing.T) {
	pts := blobs([][]float64{{0, 0}, {100, 0}, {0, 100}}, 10)
	p, err := KMeans(pts, KMeansOptions{K: 3, MaxIterations: 100, Tolerance: 1e-4, Seed: 42})
	require.NoError(t, err)

	require.Len(t, p.Labels, len(pts))
	require.Len(t, p.Centers, 3)
	assert.Equal(t, []int{10, 10, 10}, p.Sizes)

	for b := range 3 {
		first := p.Labels[b*10]
		for i := range 10 {
			assert.Equal(t, first, p.Labels[b*10+i], "blob %d split", b)
		}
	}
	assert.Less(t, p.Inertia, 1.0)
	assert.GreaterOrEqual(t, p.Iterations, 1)
}

func TestKMeans_Deterministic(t *testing.T) {
	pts := blobs([][]float64{{0, 0}, {5, 5}, {-3, 8}, {9, -2}}, 7)
	opts := KMeansOptions{K: 4, MaxIterations: 300, Tolerance: 1e-4, Seed: 42}

	a, err := KMeans(pts, opts)
	require.NoError(t, err)
	b, err := KMeans(pts, opts)
	require.NoError(t, err)
	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Centers, b.Centers)
}

func TestKMeans_LabelsInRange(t *testing.T) {
	pts := [][]float64{{0, 1}, {1, 0}, {2, 3}, {5, 5}, {8, 1}, {3, 9}, {4, 4}}
	p, err := KMeans(pts, KMeansOptions{K: 4, Seed: 7})
	require.NoError(t, err)
	for _, l := range p.Labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 4)
	}
}

func TestKMeans_ExactlyKDistinct(t *testing.T) {
	pts := [][]float64{{0, 0}, {1, 1}, {0, 0}, {5, 5}, {9, 0}}
	p, err := KMeans(pts, KMeansOptions{K: 4, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, p.Labels[0], p.Labels[2])
	assert.InDelta(t, 0, p.Inertia, 1e-12)

	seen := map[int]bool{}
	for _, l := range p.Labels {
		seen[l] = true
	}
	assert.Len(t, seen, 4)
}

func TestKMeans_Errors(t *testing.T) {
	tests := []struct {
		name string
		pts  [][]float64
		opts KMeansOptions
	}{
		{name: "k zero", pts: [][]float64{{1}}, opts: KMeansOptions{K: 0}},
		{name: "no points", opts: KMeansOptions{K: 2}},
		{name: "too few distinct", pts: [][]float64{{1, 1}, {1, 1}, {2, 2}}, opts: KMeansOptions{K: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := KMeans(tt.pts, tt.opts)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestKMeans_MoreInitsNeverWorse(t *testing.T) {
	pts := blobs([][]float64{{0, 0}, {3, 0}, {0, 3}, {3, 3}, {1.5, 1.5}}, 6)
	one, err := KMeans(pts, KMeansOptions{K: 4, Seed: 1, Inits: 1})
	require.NoError(t, err)
	many, err := KMeans(pts, KMeansOptions{K: 4, Seed: 1, Inits: 10})
	require.NoError(t, err)
	assert.LessOrEqual(t, many.Inertia, one.Inertia+1e-9)
}

func TestReseedEmpty(t *testing.T) {
	points := [][]float64{{0, 0}, {1, 0}, {10, 0}}
	centers := [][]float64{{0.5, 0}, {100, 100}}
	labels := []int{0, 0, 0}
	next := [][]float64{{11.0 / 3, 0}, {0, 0}}
	sizes := []int{3, 0}

	reseedEmpty(points, centers, labels, next, sizes)
	assert.Equal(t, []int{0, 0, 1}, labels)
	assert.Equal(t, []int{2, 1}, sizes)
	assert.Equal(t, []float64{10, 0}, next[1])
}
