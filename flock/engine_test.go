package flock

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/flocksim/config"
)

func testScalars(t *testing.T, overrides func(*config.ScalarParams)) config.ScalarParams {
	t.Helper()
	p := config.ScalarParams{
		VMax: 10, VDecay: 1, AMax: 10, DMax: 2, UMax: 10,
		U1P: 1, U2P: 1, U2Dopt: 1, U3P: 1, U3Dmax: 1,
	}
	if overrides != nil {
		overrides(&p)
	}
	if err := p.Prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	return p
}

func twoParticleState(t *testing.T) *State {
	t.Helper()
	p := mat.NewDense(2, 2, []float64{0, 0, 1, 0})
	v := mat.NewDense(2, 2, nil)
	a := mat.NewDense(2, 2, nil)
	s, err := NewState(p, v, a, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return s
}

// --- Construction validation ---

func TestNewStateRejectsShapeMismatch(t *testing.T) {
	p := mat.NewDense(2, 2, nil)
	v := mat.NewDense(3, 2, nil)
	a := mat.NewDense(2, 2, nil)
	if _, err := NewState(p, v, a, nil, nil, nil); err == nil {
		t.Fatal("expected error for shape mismatch")
	}
}

func TestNewConfigRejectsWrongWeightShape(t *testing.T) {
	scalars := testScalars(t, nil)
	w := mat.NewDense(3, 3, nil) // wrong row count for N=2
	if _, err := NewConfig(scalars, w, 2); err == nil {
		t.Fatal("expected error for W shape mismatch")
	}
}

func TestNewEngineRejectsStateConfigMismatch(t *testing.T) {
	scalars := testScalars(t, nil)
	state := twoParticleState(t)
	cfg, err := NewConfig(scalars, OnesWeights(3), 3)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if _, err := New(state, cfg, DefaultSeed, nil); err == nil {
		t.Fatal("expected error for state/config N mismatch")
	}
}

func TestValidateRejectsBadVDecay(t *testing.T) {
	p := config.ScalarParams{VMax: 1, VDecay: 1.5, AMax: 1, DMax: 1, UMax: 1, U1P: 1, U2P: 1, U2Dopt: 1, U3P: 1, U3Dmax: 1}
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for v_decay > 1")
	}
}

// --- Shape invariants, clipping, history ---

func TestRunShapeInvariants(t *testing.T) {
	scalars := testScalars(t, nil)
	state := twoParticleState(t)
	cfg, err := NewConfig(scalars, OnesWeights(2), 2)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	e, err := New(state, cfg, DefaultSeed, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Run(RunOptions{Timestep: 0.1, Iterations: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for idx, s := range result.States {
		if n, d := s.P.Dims(); n != 2 || d != 2 {
			t.Errorf("snapshot %d: P shape (%d,%d), want (2,2)", idx, n, d)
		}
		if n, d := s.V.Dims(); n != 2 || d != 2 {
			t.Errorf("snapshot %d: V shape (%d,%d), want (2,2)", idx, n, d)
		}
		if n, d := s.A.Dims(); n != 2 || d != 2 {
			t.Errorf("snapshot %d: A shape (%d,%d), want (2,2)", idx, n, d)
		}
	}
}

func TestRunClipping(t *testing.T) {
	scalars := testScalars(t, func(p *config.ScalarParams) {
		p.AMax = 0.01
		p.VMax = 0.01
		p.UMax = 1
	})
	state := twoParticleState(t)
	cfg, err := NewConfig(scalars, OnesWeights(2), 2)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	e, err := New(state, cfg, DefaultSeed, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Run(RunOptions{Timestep: 0.1, Iterations: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tol := 1 + Epsilon
	for idx, s := range result.States[1:] {
		for i := 0; i < s.N(); i++ {
			aNorm := math.Hypot(s.A.At(i, 0), s.A.At(i, 1))
			if aNorm > scalars.AMax*tol {
				t.Errorf("snapshot %d particle %d: |A|=%v exceeds a_max*(1+eps)=%v", idx, i, aNorm, scalars.AMax*tol)
			}
			vNorm := math.Hypot(s.V.At(i, 0), s.V.At(i, 1))
			if vNorm > scalars.VMax*tol {
				t.Errorf("snapshot %d particle %d: |V|=%v exceeds v_max*(1+eps)=%v", idx, i, vNorm, scalars.VMax*tol)
			}
		}
	}
}

func TestHistoryLength(t *testing.T) {
	cases := []struct {
		iterations, skip, want int
	}{
		{iterations: 10, skip: 0, want: 11},
		{iterations: 10, skip: 1, want: 10},
		{iterations: 10, skip: 3, want: 8},
		{iterations: 2, skip: 5, want: 0},
	}
	for _, c := range cases {
		scalars := testScalars(t, nil)
		state := twoParticleState(t)
		cfg, _ := NewConfig(scalars, OnesWeights(2), 2)
		e, _ := New(state, cfg, DefaultSeed, nil)
		result, err := e.Run(RunOptions{Timestep: 0.1, Iterations: c.iterations, SkipInitialStates: c.skip})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(result.States) != c.want {
			t.Errorf("iterations=%d skip=%d: history length = %d, want %d", c.iterations, c.skip, len(result.States), c.want)
		}
	}
}

func TestHistoryIsolation(t *testing.T) {
	scalars := testScalars(t, nil)
	state := twoParticleState(t)
	cfg, _ := NewConfig(scalars, OnesWeights(2), 2)
	e, _ := New(state, cfg, DefaultSeed, nil)
	result, err := e.Run(RunOptions{Timestep: 0.1, Iterations: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	before := result.States[0].P.At(0, 0)
	result.States[1].P.Set(0, 0, 999)
	after := result.States[0].P.At(0, 0)
	if before != after {
		t.Errorf("mutating snapshot 1 affected snapshot 0: before=%v after=%v", before, after)
	}
}

// --- Determinism ---

func TestDeterminism(t *testing.T) {
	run := func() *RunResult {
		scalars := testScalars(t, nil)
		state := twoParticleState(t)
		cfg, _ := NewConfig(scalars, OnesWeights(2), 2)
		e, _ := New(state, cfg, DefaultSeed, nil)
		result, err := e.Run(RunOptions{Timestep: 0.1, Iterations: 5, ReturnUrgencyVectors: true})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return result
	}
	r1 := run()
	r2 := run()
	if len(r1.States) != len(r2.States) {
		t.Fatalf("history length differs: %d vs %d", len(r1.States), len(r2.States))
	}
	for idx := range r1.States {
		if !mat.Equal(r1.States[idx].P, r2.States[idx].P) {
			t.Errorf("snapshot %d: P differs between runs", idx)
		}
		if !mat.Equal(r1.States[idx].V, r2.States[idx].V) {
			t.Errorf("snapshot %d: V differs between runs", idx)
		}
		if !mat.Equal(r1.States[idx].A, r2.States[idx].A) {
			t.Errorf("snapshot %d: A differs between runs", idx)
		}
	}
}

// --- Zero-predator equivalence ---

func TestZeroPredatorEquivalence(t *testing.T) {
	runWithPredators := func(predP, predV *mat.Dense) *RunResult {
		scalars := testScalars(t, nil)
		p := mat.NewDense(2, 2, []float64{0, 0, 1, 0})
		v := mat.NewDense(2, 2, nil)
		a := mat.NewDense(2, 2, nil)
		var predA *mat.Dense
		if predP != nil {
			predA = &mat.Dense{}
		}
		s, err := NewState(p, v, a, predP, predV, predA)
		if err != nil {
			t.Fatalf("NewState: %v", err)
		}
		cfg, _ := NewConfig(scalars, OnesWeights(2), 2)
		e, _ := New(s, cfg, DefaultSeed, nil)
		result, err := e.Run(RunOptions{Timestep: 0.1, Iterations: 4})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return result
	}

	withNil := runWithPredators(nil, nil)
	withEmpty := runWithPredators(&mat.Dense{}, &mat.Dense{})

	for idx := range withNil.States {
		if !mat.Equal(withNil.States[idx].P, withEmpty.States[idx].P) {
			t.Errorf("snapshot %d: P differs between nil-predator and empty-predator runs", idx)
		}
	}
}

// --- Concrete end-to-end scenarios (spec.md §8) ---

func TestScenarioS1TwoParticleAttraction(t *testing.T) {
	scalars := testScalars(t, func(p *config.ScalarParams) {
		p.DMax = 2
		p.U2Dopt = 0.01 // effectively disables u2 at D=1
		p.U3Dmax = 0
		p.AMax = 10
		p.UMax = 10
		p.U1P = 1
		p.VMax = 10
		p.VDecay = 1
	})
	state := twoParticleState(t)
	cfg, err := NewConfig(scalars, OnesWeights(2), 2)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	e, err := New(state, cfg, DefaultSeed, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Run(RunOptions{Timestep: 0.1, Iterations: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	final := result.States[1]

	aNorm0 := math.Hypot(final.A.At(0, 0), final.A.At(0, 1))
	aNorm1 := math.Hypot(final.A.At(1, 0), final.A.At(1, 1))
	tol := 3 * Epsilon
	if !approxEqual(aNorm0, 1.0, tol) {
		t.Errorf("|A_0| = %v, want ~1.0", aNorm0)
	}
	if !approxEqual(aNorm1, 1.0, tol) {
		t.Errorf("|A_1| = %v, want ~1.0", aNorm1)
	}
	// particle 0 accelerates toward (1,0): positive x, ~zero y
	if final.A.At(0, 0) <= 0 {
		t.Errorf("A_0.x = %v, want > 0 (toward particle 1)", final.A.At(0, 0))
	}
	// particle 1 accelerates toward (0,0): negative x
	if final.A.At(1, 0) >= 0 {
		t.Errorf("A_1.x = %v, want < 0 (toward particle 0)", final.A.At(1, 0))
	}
}

func TestScenarioS3IsolatedParticleStationary(t *testing.T) {
	scalars := testScalars(t, nil)
	p := mat.NewDense(1, 2, []float64{0, 0})
	v := mat.NewDense(1, 2, nil)
	a := mat.NewDense(1, 2, nil)
	state, err := NewState(p, v, a, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	cfg, err := NewConfig(scalars, OnesWeights(1), 1)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	e, err := New(state, cfg, DefaultSeed, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Run(RunOptions{Timestep: 0.1, Iterations: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for idx, s := range result.States {
		if s.A.At(0, 0) != 0 || s.A.At(0, 1) != 0 {
			t.Errorf("snapshot %d: isolated particle should have zero acceleration, got (%v,%v)", idx, s.A.At(0, 0), s.A.At(0, 1))
		}
		if s.P.At(0, 0) != 0 || s.P.At(0, 1) != 0 {
			t.Errorf("snapshot %d: isolated particle with zero initial V should stay put, got (%v,%v)", idx, s.P.At(0, 0), s.P.At(0, 1))
		}
	}
}

func TestScenarioS4PredatorSweep(t *testing.T) {
	scalars := testScalars(t, func(p *config.ScalarParams) {
		p.DMax = 0
		p.U2Dopt = 0
		p.U3Dmax = 5
		p.U3P = 1
		p.AMax = 100
		p.UMax = 1
	})
	p := mat.NewDense(1, 2, []float64{0, 0})
	v := mat.NewDense(1, 2, nil)
	a := mat.NewDense(1, 2, nil)
	predP := mat.NewDense(1, 2, []float64{2, 0})
	predV := mat.NewDense(1, 2, []float64{-1, 0})
	predA := mat.NewDense(1, 2, nil)
	state, err := NewState(p, v, a, predP, predV, predA)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	cfg, err := NewConfig(scalars, OnesWeights(1), 1)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	e, err := New(state, cfg, DefaultSeed, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Run(RunOptions{Timestep: 0.1, Iterations: 1, ReturnUrgencyVectors: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	u3 := result.Urgencies[1].PredatorEscape
	want := 0.6
	tol := 3 * Epsilon
	if !approxEqual(u3.At(0, 0), -want, tol) {
		t.Errorf("u3.x = %v, want ~-0.6", u3.At(0, 0))
	}
}
