// Command sweep searches for scalar parameters that produce a flock
// with a target mean inter-particle spacing, in the same spirit as
// the teacher's cmd/optimize: gonum/optimize's CMA-ES evaluates
// candidate parameters by running the simulation and scoring the
// result, logging every evaluation to CSV.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/flocksim/config"
	"github.com/pthm-cable/flocksim/flock"
	"github.com/pthm-cable/flocksim/scenario"
	"github.com/pthm-cable/flocksim/telemetry"
)

// params is the subset of ScalarParams the search tunes: u1_p, u2_p,
// u2_dopt. Everything else is held at the base config's value.
type params struct {
	U1P, U2P, U2Dopt float64
}

func (p params) apply(base config.ScalarParams) config.ScalarParams {
	base.U1P, base.U2P, base.U2Dopt = p.U1P, p.U2P, p.U2Dopt
	return base
}

func evaluate(base config.ScalarParams, p params, side, dims int, seeds []int64, targetGap float64, timestep float64, iterations int) float64 {
	scalars := p.apply(base)
	if err := scalars.Validate(); err != nil {
		return 1e9
	}

	var total float64
	for _, seed := range seeds {
		state, cfg, err := scenario.Flock(side, dims, 1.5, scalars)
		if err != nil {
			return 1e9
		}
		engine, err := flock.New(state, cfg, seed, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
		if err != nil {
			return 1e9
		}
		result, err := engine.Run(flock.RunOptions{Timestep: timestep, Iterations: iterations})
		if err != nil {
			return 1e9
		}
		summary := telemetry.Summarize(seed, iterations, result, scalars.AMax)
		diff := summary.FinalMeanGap - targetGap
		total += diff*diff + summary.ClipRate
	}
	return total / float64(len(seeds))
}

func main() {
	configPath := flag.String("config", "", "base scalar parameter YAML (empty = embedded defaults)")
	side := flag.Int("side", 4, "lattice side length")
	dims := flag.Int("dims", 2, "spatial dimensions")
	timestep := flag.Float64("dt", 1.0/60.0, "integration timestep")
	iterations := flag.Int("iterations", 300, "steps per evaluation")
	seedCount := flag.Int("seeds", 3, "seeds averaged per evaluation")
	maxEvals := flag.Int("max-evals", 100, "maximum CMA-ES evaluations")
	targetGap := flag.Float64("target-gap", 1.0, "desired final mean inter-particle spacing")
	outputDir := flag.String("output", "", "directory for sweep_log.csv and best_config.yaml (required)")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	base, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	seeds := make([]int64, *seedCount)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}

	init := []float64{base.U1P, base.U2P, base.U2Dopt}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p := params{U1P: x[0], U2P: x[1], U2Dopt: x[2]}
			return evaluate(base, p, *side, *dims, seeds, *targetGap, *timestep, *iterations)
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: 8}

	logPath := filepath.Join(*outputDir, "sweep_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()
	logWriter.Write([]string{"eval", "fitness", "u1_p", "u2_p", "u2_dopt"})

	evalCount := 0
	bestFitness := 1e18
	var bestParams []float64

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = append([]float64(nil), x...)
		}
		row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness)}
		for _, v := range x {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		logWriter.Write(row)
		logWriter.Flush()
		return fitness
	}

	result, err := optimize.Minimize(problem, init, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil {
		bestParams = result.X
	}

	best := params{U1P: bestParams[0], U2P: bestParams[1], U2Dopt: bestParams[2]}.apply(base)
	if err := best.WriteYAML(filepath.Join(*outputDir, "best_config.yaml")); err != nil {
		log.Fatalf("failed to write best config: %v", err)
	}

	fmt.Printf("best fitness=%.6f u1_p=%.4f u2_p=%.4f u2_dopt=%.4f (evals=%d)\n",
		bestFitness, best.U1P, best.U2P, best.U2Dopt, evalCount)
}
