package flock

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// pdist returns the symmetric (N,N) pairwise Euclidean distance
// matrix of the rows of p, with a zero diagonal. Each entry is
// computed directly from the per-dimension differences rather than
// via the sum-of-squares expansion, which stays accurate for rows
// that are nearly identical.
func pdist(p *mat.Dense) *mat.Dense {
	n, d := p.Dims()
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		pi := p.RawRowView(i)
		for j := i + 1; j < n; j++ {
			pj := p.RawRowView(j)
			dist := rowDistance(pi, pj, d)
			out.Set(i, j, dist)
			out.Set(j, i, dist)
		}
	}
	return out
}

// cdist returns the (N,M) cross Euclidean distance matrix between the
// rows of p and the rows of q.
func cdist(p, q *mat.Dense) *mat.Dense {
	n, d := p.Dims()
	m, _ := q.Dims()
	out := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		pi := p.RawRowView(i)
		for k := 0; k < m; k++ {
			qk := q.RawRowView(k)
			out.Set(i, k, rowDistance(pi, qk, d))
		}
	}
	return out
}

func rowDistance(a, b []float64, d int) float64 {
	var sumSq float64
	for k := 0; k < d; k++ {
		diff := a[k] - b[k]
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq)
}

// clipRowAbs scales, in place, every row of x whose Euclidean norm
// exceeds r down to norm r. Rows within bound are left untouched.
func clipRowAbs(x *mat.Dense, r float64) {
	n, _ := x.Dims()
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		norm := floats.Norm(row, 2)
		if norm > r {
			scale := r / norm
			floats.Scale(scale, row)
		}
	}
}

// weightedRelativeSum computes R(N,d) with R_i = sum_j weights[i,j] *
// (p_i - q_j), without materializing the (N,M,d) relative-vector
// tensor: it accumulates directly into each output row.
func weightedRelativeSum(weights *mat.Dense, p, q *mat.Dense) *mat.Dense {
	n, d := p.Dims()
	m, _ := q.Dims()
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		pi := p.RawRowView(i)
		acc := out.RawRowView(i)
		for j := 0; j < m; j++ {
			w := weights.At(i, j)
			if w == 0 {
				continue
			}
			qj := q.RawRowView(j)
			for k := 0; k < d; k++ {
				acc[k] += w * (pi[k] - qj[k])
			}
		}
	}
	return out
}

// weightedSum computes R(N,d) with R_i = sum_j weights[i,j] * q_j.
func weightedSum(weights *mat.Dense, q *mat.Dense) *mat.Dense {
	n, _ := weights.Dims()
	m, d := q.Dims()
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		acc := out.RawRowView(i)
		for j := 0; j < m; j++ {
			w := weights.At(i, j)
			if w == 0 {
				continue
			}
			qj := q.RawRowView(j)
			for k := 0; k < d; k++ {
				acc[k] += w * qj[k]
			}
		}
	}
	return out
}

// hadamard multiplies a and b element-wise, returning a new matrix.
func hadamard(a, b *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	out.MulElem(a, b)
	return out
}

// scaleRowsByColumn multiplies every row i of x by column col of w
// (broadcast over the row's entries), returning a new matrix.
func scaleRowsByColumn(x *mat.Dense, w *mat.Dense, col int) *mat.Dense {
	n, d := x.Dims()
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		xi := x.RawRowView(i)
		oi := out.RawRowView(i)
		wi := w.At(i, col)
		for k := 0; k < d; k++ {
			oi[k] = xi[k] * wi
		}
	}
	return out
}
