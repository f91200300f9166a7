package flock

import "gonum.org/v1/gonum/mat"

// cohesion computes u1: attraction of each particle toward the
// centroid of its visible neighbors (those at distance in (0, dMax]).
// Isolated particles (no neighbor in range) contribute zero.
func cohesion(p, dists *mat.Dense, dMax, u1p float64, w *mat.Dense, eps *mat.Dense) *mat.Dense {
	n, _ := dists.Dims()
	h := mat.NewDense(n, n, nil)
	isolated := make([]bool, n)
	for i := 0; i < n; i++ {
		count := 0
		for j := 0; j < n; j++ {
			d := dists.At(i, j)
			if d > 0 && d <= dMax {
				count++
			}
		}
		if count == 0 {
			isolated[i] = true
			continue
		}
		inv := 1.0 / float64(count)
		for j := 0; j < n; j++ {
			d := dists.At(i, j)
			if d > 0 && d <= dMax {
				h.Set(i, j, inv)
			}
		}
	}

	centroid := weightedSum(h, p)
	// An isolated row's centroid is the zero field, not p_i itself; copy p_i
	// in so the subtraction below yields zero rather than a pull toward the
	// origin.
	for i := 0; i < n; i++ {
		if isolated[i] {
			copy(centroid.RawRowView(i), p.RawRowView(i))
		}
	}

	_, d := p.Dims()
	u1 := mat.NewDense(n, d, nil)
	u1.Sub(centroid, p)
	u1 = hadamard(u1, eps)
	u1 = scaleRowsByColumn(u1, w, 0)
	u1.Scale(u1p, u1)
	return u1
}

// personalSpace computes u2: a repulsive vector away from every
// neighbor closer than u2Dopt, zero at and beyond u2Dopt.
func personalSpace(p, dists *mat.Dense, u2Dopt, u2p float64, w *mat.Dense, eps *mat.Dense) *mat.Dense {
	n, _ := dists.Dims()
	h := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := dists.At(i, j)
			if d > 0 && d <= u2Dopt {
				h.Set(i, j, (u2Dopt-d)/(u2Dopt*d))
			}
		}
	}

	u2 := weightedRelativeSum(h, p, p)
	u2 = hadamard(u2, eps)
	u2 = scaleRowsByColumn(u2, w, 1)
	u2.Scale(u2p, u2)
	return u2
}

// predatorEscape computes u3: a repulsive vector away from every
// predator within u3Dmax. If there are no predators, the result is
// the zero field and no distance computation occurs.
func predatorEscape(p, predatorP *mat.Dense, u3Dmax, u3p float64, w *mat.Dense, eps *mat.Dense) *mat.Dense {
	n, d := p.Dims()
	m, _ := predatorP.Dims()
	if m == 0 {
		return mat.NewDense(n, d, nil)
	}

	dists := cdist(p, predatorP)
	h := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for k := 0; k < m; k++ {
			dk := dists.At(i, k)
			if dk > 0 && dk <= u3Dmax {
				h.Set(i, k, (u3Dmax-dk)/(u3Dmax*dk))
			}
		}
	}

	u3 := weightedRelativeSum(h, p, predatorP)
	u3 = hadamard(u3, eps)
	u3 = scaleRowsByColumn(u3, w, 2)
	u3.Scale(u3p, u3)
	return u3
}
