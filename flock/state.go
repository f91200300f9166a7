package flock

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// State is the mutable particle/predator triple the engine advances
// each step: positions, velocities, accelerations for N particles in
// d dimensions, plus the same triple for M predators (M may be 0).
type State struct {
	P, V, A *mat.Dense
	PredP   *mat.Dense
	PredV   *mat.Dense
	PredA   *mat.Dense
}

// NewState validates shape consistency (P, V, A share shape; PredP,
// PredV, PredA share shape) and returns a State. A nil predator
// matrix is replaced by an empty mat.Dense (zero rows), giving M = 0;
// gonum does not allow a (0, d) Dense to be allocated.
func NewState(p, v, a, predP, predV, predA *mat.Dense) (*State, error) {
	n, d := p.Dims()
	if nv, dv := v.Dims(); nv != n || dv != d {
		return nil, fmt.Errorf("flock: shape mismatch: p=(%d,%d) v=(%d,%d)", n, d, nv, dv)
	}
	if na, da := a.Dims(); na != n || da != d {
		return nil, fmt.Errorf("flock: shape mismatch: p=(%d,%d) a=(%d,%d)", n, d, na, da)
	}

	if predP == nil {
		predP = &mat.Dense{}
	}
	if predV == nil {
		predV = &mat.Dense{}
	}
	if predA == nil {
		predA = &mat.Dense{}
	}
	m, dp := predP.Dims()
	if dp != d && m != 0 {
		return nil, fmt.Errorf("flock: shape mismatch: particles have d=%d, predators have d=%d", d, dp)
	}
	if mv, dv := predV.Dims(); mv != m || (m != 0 && dv != d) {
		return nil, fmt.Errorf("flock: shape mismatch: predP=(%d,%d) predV=(%d,%d)", m, d, mv, dv)
	}
	if ma, da := predA.Dims(); ma != m || (m != 0 && da != d) {
		return nil, fmt.Errorf("flock: shape mismatch: predP=(%d,%d) predA=(%d,%d)", m, d, ma, da)
	}

	return &State{P: p, V: v, A: a, PredP: predP, PredV: predV, PredA: predA}, nil
}

// N returns the number of particles.
func (s *State) N() int {
	n, _ := s.P.Dims()
	return n
}

// D returns the number of spatial dimensions.
func (s *State) D() int {
	_, d := s.P.Dims()
	return d
}

// M returns the number of predators.
func (s *State) M() int {
	m, _ := s.PredP.Dims()
	return m
}

// Clone returns a deep copy of s, so mutating the result cannot
// affect s or any other snapshot derived from it.
func (s *State) Clone() *State {
	clone := func(m *mat.Dense) *mat.Dense {
		var c mat.Dense
		c.CloneFrom(m)
		return &c
	}
	return &State{
		P:     clone(s.P),
		V:     clone(s.V),
		A:     clone(s.A),
		PredP: clone(s.PredP),
		PredV: clone(s.PredV),
		PredA: clone(s.PredA),
	}
}
