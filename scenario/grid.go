// Package scenario provides thin factory routines that build an
// initial flock.State and flock.Config — the "external collaborator"
// role spec.md assigns to example scenarios, kept deliberately free
// of any engine logic.
package scenario

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/flocksim/config"
	"github.com/pthm-cable/flocksim/flock"
)

// Grid builds a d-dimensional Cartesian lattice of side length
// `side`, centered on the origin, giving N = side^dims rows. The unit
// lattice has integer coordinates for odd side and half-integer
// coordinates for even side; spacing scales it.
func Grid(side, dims int, spacing float64) *mat.Dense {
	n := 1
	for i := 0; i < dims; i++ {
		n *= side
	}
	p := mat.NewDense(n, dims, nil)
	offset := float64(side-1) / 2.0
	for i := 0; i < n; i++ {
		row := p.RawRowView(i)
		idx := i
		for k := 0; k < dims; k++ {
			coord := idx % side
			idx /= side
			row[k] = (float64(coord) - offset) * spacing
		}
	}
	return p
}

// Flock composes a Grid with zero velocity/acceleration and a
// default all-ones weight matrix into an engine-ready state and
// config, with no predators.
func Flock(side, dims int, spacing float64, scalars config.ScalarParams) (*flock.State, *flock.Config, error) {
	p := Grid(side, dims, spacing)
	n, d := p.Dims()
	v := mat.NewDense(n, d, nil)
	a := mat.NewDense(n, d, nil)

	state, err := flock.NewState(p, v, a, nil, nil, nil)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := flock.NewConfig(scalars, flock.OnesWeights(n), n)
	if err != nil {
		return nil, nil, err
	}

	return state, cfg, nil
}

// WithPredators attaches a predator block (position, velocity, zero
// acceleration) to an existing state.
func WithPredators(state *flock.State, predatorP, predatorV *mat.Dense) (*flock.State, error) {
	m, d := predatorP.Dims()
	predA := mat.NewDense(m, d, nil)
	return flock.NewState(state.P, state.V, state.A, predatorP, predatorV, predA)
}
