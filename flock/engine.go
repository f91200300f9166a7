// Package flock implements the particle-flocking simulation engine:
// a tight per-step loop over pairwise-distance-driven urgency fields,
// assembled into acceleration, integrated forward by explicit Euler.
package flock

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Engine owns a State and Config for the duration of a Run and
// advances them in fixed timesteps.
type Engine struct {
	state  *State
	cfg    *Config
	rng    *RandomSource
	logger *slog.Logger
}

// New constructs an Engine, rejecting inconsistent state/config
// shapes. seed selects the RNG; pass DefaultSeed for reproducible
// runs across ports. A nil logger defaults to slog.Default().
func New(state *State, cfg *Config, seed int64, logger *slog.Logger) (*Engine, error) {
	if state.N() != cfg.W.RawMatrix().Rows {
		return nil, fmt.Errorf("flock: state has N=%d particles, config W has %d rows", state.N(), cfg.W.RawMatrix().Rows)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		state:  state,
		cfg:    cfg,
		rng:    NewRandomSource(seed),
		logger: logger,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(state *State, cfg *Config, seed int64, logger *slog.Logger) *Engine {
	e, err := New(state, cfg, seed, logger)
	if err != nil {
		panic(fmt.Sprintf("flock: failed to construct engine: %v", err))
	}
	return e
}

// RunOptions configures a Run invocation.
type RunOptions struct {
	Timestep             float64
	Iterations           int
	SkipInitialStates    int
	ReturnUrgencyVectors bool
}

// UrgencySnapshot holds the pre-clipped, noise-multiplied (u1,u2,u3)
// fields for one recorded step, each of shape (N,d).
type UrgencySnapshot struct {
	Cohesion       *mat.Dense
	PersonalSpace  *mat.Dense
	PredatorEscape *mat.Dense
}

// RunResult is the output of Run: an always-present state history,
// plus an optional parallel urgency history.
type RunResult struct {
	States    []*State
	Urgencies []UrgencySnapshot
}

// Run advances the engine opts.Iterations steps of size
// opts.Timestep and returns the recorded history. See spec.md §4.4
// for the per-step procedure and history/skip semantics.
func (e *Engine) Run(opts RunOptions) (*RunResult, error) {
	if opts.Timestep <= 0 {
		return nil, fmt.Errorf("flock: timestep must be positive, got %v", opts.Timestep)
	}
	if opts.Iterations < 0 {
		return nil, fmt.Errorf("flock: iterations must be non-negative, got %d", opts.Iterations)
	}

	result := &RunResult{}
	start := time.Now()
	e.logger.Info("run starting", "iterations", opts.Iterations, "timestep", opts.Timestep, "particles", e.state.N(), "predators", e.state.M())

	zeroSnapshot := func() UrgencySnapshot {
		n, d := e.state.N(), e.state.D()
		return UrgencySnapshot{
			Cohesion:       mat.NewDense(n, d, nil),
			PersonalSpace:  mat.NewDense(n, d, nil),
			PredatorEscape: mat.NewDense(n, d, nil),
		}
	}

	record := func(urgencies *UrgencySnapshot) {
		result.States = append(result.States, e.state.Clone())
		if opts.ReturnUrgencyVectors {
			if urgencies == nil {
				result.Urgencies = append(result.Urgencies, zeroSnapshot())
			} else {
				result.Urgencies = append(result.Urgencies, *urgencies)
			}
		}
	}

	if opts.SkipInitialStates == 0 {
		record(nil)
	}

	for i := 1; i <= opts.Iterations; i++ {
		urgencies := e.step(opts.Timestep)
		e.logger.Debug("step complete", "iteration", i, "iterations", opts.Iterations, "elapsed_s", time.Since(start).Seconds())

		if i > opts.SkipInitialStates-1 {
			if opts.ReturnUrgencyVectors {
				record(&urgencies)
			} else {
				record(nil)
			}
		}
	}

	e.logger.Info("run complete", "history_len", len(result.States), "elapsed_s", time.Since(start).Seconds())
	return result, nil
}

// step executes one iteration of the integrator, in the order
// spec.md §4.4/§5 requires: distances, three urgencies (each drawing
// its own epsilon matrix, in order u1/u2/u3), acceleration assembly
// and clipping, a second epsilon draw on the clipped acceleration,
// velocity decay and update and clip, position update, and an
// independent predator sub-step with its own epsilon draw.
func (e *Engine) step(timestep float64) UrgencySnapshot {
	s := e.state
	n, d := s.N(), s.D()

	dists := pdist(s.P)

	epsU1 := e.rng.EpsilonMatrix(n, d)
	u1 := cohesion(s.P, dists, e.cfg.Scalars.DMax, e.cfg.Scalars.U1P, e.cfg.W, epsU1)

	epsU2 := e.rng.EpsilonMatrix(n, d)
	u2 := personalSpace(s.P, dists, e.cfg.Scalars.U2Dopt, e.cfg.Scalars.U2P, e.cfg.W, epsU2)

	epsU3 := e.rng.EpsilonMatrix(n, d)
	u3 := predatorEscape(s.P, s.PredP, e.cfg.Scalars.U3Dmax, e.cfg.Scalars.U3P, e.cfg.W, epsU3)

	snapshot := UrgencySnapshot{Cohesion: u1, PersonalSpace: u2, PredatorEscape: u3}

	a := mat.NewDense(n, d, nil)
	a.Add(u1, u2)
	a.Add(a, u3)
	a.Scale(e.cfg.Scalars.Derived.AccelScale, a)
	clipRowAbs(a, e.cfg.Scalars.AMax)

	epsA := e.rng.EpsilonMatrix(n, d)
	a.MulElem(a, epsA)
	s.A = a

	decay := math.Pow(e.cfg.Scalars.VDecay, timestep)
	s.V.Scale(decay, s.V)
	scaledA := mat.NewDense(n, d, nil)
	scaledA.Scale(timestep, s.A)
	s.V.Add(s.V, scaledA)
	clipRowAbs(s.V, e.cfg.Scalars.VMax)

	scaledV := mat.NewDense(n, d, nil)
	scaledV.Scale(timestep, s.V)
	s.P.Add(s.P, scaledV)

	e.stepPredators(timestep)

	return snapshot
}

// stepPredators advances the predator sub-state independently:
// predators have no urgencies, no decay, no clipping, only a fresh
// multiplicative noise draw on acceleration.
func (e *Engine) stepPredators(timestep float64) {
	s := e.state
	m, d := s.M(), s.D()
	if m == 0 {
		return
	}

	epsPred := e.rng.EpsilonMatrix(m, d)
	s.PredA.MulElem(s.PredA, epsPred)

	scaledA := mat.NewDense(m, d, nil)
	scaledA.Scale(timestep, s.PredA)
	s.PredV.Add(s.PredV, scaledA)

	scaledV := mat.NewDense(m, d, nil)
	scaledV.Scale(timestep, s.PredV)
	s.PredP.Add(s.PredP, scaledV)
}
