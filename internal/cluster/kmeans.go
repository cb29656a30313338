package cluster

import (
	"math"
	"math/rand/v2"
)

// KMeansOptions configures Partition.
type KMeansOptions struct {
	K             int
	MaxIterations int
	Tolerance     float64 // relative to the mean feature variance
	Inits         int
	Seed          uint64
}

// Partition is the output of one k-means fit in standardized space.
type Partition struct {
	Labels     []int
	Centers    [][]float64
	Sizes      []int
	Inertia    float64
	Iterations int
}

// KMeans partitions points into opts.K clusters with Lloyd's algorithm,
// seeded by k-means++. The generator is derived from opts.Seed only, so the
// same input and seed always yield the same labels. With several inits the
// fit with the lowest inertia wins; ties keep the earliest.
func KMeans(points [][]float64, opts KMeansOptions) (*Partition, error) {
	if opts.K < 1 {
		return nil, invalid("k", "must be at least 1, got %d", opts.K)
	}
	if len(points) == 0 {
		return nil, invalid("", "no rows to cluster")
	}
	if d := distinctPoints(points, opts.K); d < opts.K {
		return nil, invalid("k", "%d clusters requested but only %d distinct points", opts.K, d)
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = 300
	}
	if opts.Inits < 1 {
		opts.Inits = 1
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	tol := opts.Tolerance * meanVariance(points)

	var best *Partition
	for range opts.Inits {
		centers := seedCenters(points, opts.K, rng)
		p := lloyd(points, centers, opts.MaxIterations, tol)
		if best == nil || p.Inertia < best.Inertia {
			best = p
		}
	}
	return best, nil
}

// seedCenters picks k initial centers with k-means++ D² sampling.
func seedCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(points[rng.IntN(n)]))

	dist := make([]float64, n)
	for i, p := range points {
		dist[i] = sqDist(p, centers[0])
	}

	for len(centers) < k {
		var total float64
		for _, d := range dist {
			total += d
		}

		pick := -1
		r := rng.Float64() * total
		for i, d := range dist {
			if d == 0 {
				continue
			}
			pick = i
			r -= d
			if r < 0 {
				break
			}
		}

		c := clone(points[pick])
		centers = append(centers, c)
		for i, p := range points {
			if d := sqDist(p, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centers
}

func lloyd(points, centers [][]float64, maxIter int, tol float64) *Partition {
	k := len(centers)
	dim := len(points[0])
	labels := make([]int, len(points))

	iter := 0
	for iter < maxIter {
		iter++
		assign(points, centers, labels)

		next := make([][]float64, k)
		sizes := make([]int, k)
		for j := range next {
			next[j] = make([]float64, dim)
		}
		for i, p := range points {
			l := labels[i]
			sizes[l]++
			for d, v := range p {
				next[l][d] += v
			}
		}
		for j := range next {
			if sizes[j] == 0 {
				continue
			}
			for d := range next[j] {
				next[j][d] /= float64(sizes[j])
			}
		}
		reseedEmpty(points, centers, labels, next, sizes)

		var shift float64
		for j := range centers {
			shift += sqDist(centers[j], next[j])
		}
		centers = next
		if shift <= tol {
			break
		}
	}

	assign(points, centers, labels)
	p := &Partition{
		Labels:     labels,
		Centers:    centers,
		Sizes:      make([]int, k),
		Iterations: iter,
	}
	for i, pt := range points {
		p.Sizes[labels[i]]++
		p.Inertia += sqDist(pt, centers[labels[i]])
	}
	return p
}

// assign sets each label to its nearest center. Ties go to the lower id.
func assign(points, centers [][]float64, labels []int) {
	for i, p := range points {
		best, bestD := 0, math.Inf(1)
		for j, c := range centers {
			if d := sqDist(p, c); d < bestD {
				best, bestD = j, d
			}
		}
		labels[i] = best
	}
}

// reseedEmpty moves each empty cluster's center onto the point farthest from
// its current center, taking it from a cluster that keeps at least one member.
func reseedEmpty(points, centers [][]float64, labels []int, next [][]float64, sizes []int) {
	taken := make(map[int]bool)
	for j := range next {
		if sizes[j] > 0 {
			continue
		}
		far, farD := -1, -1.0
		for i, p := range points {
			if taken[i] || sizes[labels[i]] < 2 {
				continue
			}
			if d := sqDist(p, centers[labels[i]]); d > farD {
				far, farD = i, d
			}
		}
		if far < 0 {
			continue
		}
		taken[far] = true
		sizes[labels[far]]--
		sizes[j] = 1
		labels[far] = j
		next[j] = clone(points[far])
	}
}

func distinctPoints(points [][]float64, limit int) int {
	var seen [][]float64
	for _, p := range points {
		dup := false
		for _, s := range seen {
			if sqDist(p, s) == 0 {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, p)
			if len(seen) >= limit {
				break
			}
		}
	}
	return len(seen)
}

func meanVariance(points [][]float64) float64 {
	n := float64(len(points))
	dim := len(points[0])
	var total float64
	for d := range dim {
		var sum, ss float64
		for _, p := range points {
			sum += p[d]
		}
		mean := sum / n
		for _, p := range points {
			diff := p[d] - mean
			ss += diff * diff
		}
		total += ss / n
	}
	return total / float64(dim)
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func clone(p []float64) []float64 {
	return append([]float64(nil), p...)
}
