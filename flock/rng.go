package flock

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// DefaultSeed is the fixed seed used when no seed is supplied, so
// consecutive runs over identical inputs reproduce the same
// trajectory.
const DefaultSeed int64 = 133713371337

// Epsilon is the half-width of the multiplicative noise band
// [1-Epsilon, 1+Epsilon] applied to urgency vectors and acceleration.
const Epsilon = 1e-3

// RandomSource is a seedable, deterministic source of uniform scalar
// matrices. It is not safe for concurrent use; each Engine owns one.
type RandomSource struct {
	rng *rand.Rand
}

// NewRandomSource constructs a deterministic PRNG from seed.
func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewSource(seed))}
}

// UniformMatrix returns a fresh (rows, cols) matrix of i.i.d. samples
// drawn uniformly from [lo, hi).
func (s *RandomSource) UniformMatrix(rows, cols int, lo, hi float64) *mat.Dense {
	data := make([]float64, rows*cols)
	span := hi - lo
	for i := range data {
		data[i] = lo + span*s.rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

// EpsilonMatrix returns uniform_matrix(rows, cols, 1-Epsilon, 1+Epsilon).
func (s *RandomSource) EpsilonMatrix(rows, cols int) *mat.Dense {
	return s.UniformMatrix(rows, cols, 1-Epsilon, 1+Epsilon)
}
