package flock

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/flocksim/config"
)

// NumUrgencyComponents is K, the fixed number of urgency components
// (cohesion, personal-space, predator-escape). An earlier iteration
// of this engine carried a fourth, unused slot; K=3 is canonical.
const NumUrgencyComponents = 3

// Config is the immutable bundle of species-wide scalar parameters
// plus the per-individual (N,K) urgency-weight matrix.
type Config struct {
	Scalars config.ScalarParams
	W       *mat.Dense
}

// NewConfig validates that w has N rows and K columns and that the
// scalar parameters are well-formed.
func NewConfig(scalars config.ScalarParams, w *mat.Dense, n int) (*Config, error) {
	if err := scalars.Prepare(); err != nil {
		return nil, err
	}
	rows, cols := w.Dims()
	if rows != n || cols != NumUrgencyComponents {
		return nil, fmt.Errorf("flock: W must be (%d,%d), got (%d,%d)", n, NumUrgencyComponents, rows, cols)
	}
	return &Config{Scalars: scalars, W: w}, nil
}

// OnesWeights returns an (n, K) matrix of all-ones weights, the
// default a scenario builder uses when no per-individual weighting is
// required.
func OnesWeights(n int) *mat.Dense {
	w := mat.NewDense(n, NumUrgencyComponents, nil)
	for i := 0; i < n; i++ {
		for k := 0; k < NumUrgencyComponents; k++ {
			w.Set(i, k, 1)
		}
	}
	return w
}
