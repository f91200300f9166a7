// Package telemetry computes per-run summary statistics and writes
// them to CSV, the ambient stack spec.md's core engine intentionally
// leaves to an external collaborator. Run progress is logged by the
// engine itself, not here.
package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/flocksim/flock"
)

// Summary is a per-run statistics record, the shape cmd/sweep uses to
// compare configurations across many seeds.
type Summary struct {
	Seed           int64   `csv:"seed"`
	Iterations     int     `csv:"iterations"`
	Particles      int     `csv:"particles"`
	Predators      int     `csv:"predators"`
	FinalMeanSpeed float64 `csv:"final_mean_speed"`
	FinalMeanGap   float64 `csv:"final_mean_gap"`
	ClipRate       float64 `csv:"clip_rate"`
}

// Summarize computes a Summary from a completed run. iterations is the
// opts.Iterations the run was asked to advance — len(result.States)-1
// only equals that when SkipInitialStates is 0, so it's passed through
// rather than derived from history length. aMax is the config's
// acceleration bound, used to estimate how often the acceleration clip
// actually engaged across the run.
func Summarize(seed int64, iterations int, result *flock.RunResult, aMax float64) Summary {
	s := Summary{Seed: seed, Iterations: iterations}
	if len(result.States) == 0 {
		return s
	}

	final := result.States[len(result.States)-1]
	s.Particles = final.N()
	s.Predators = final.M()
	s.FinalMeanSpeed = meanRowNorm(final.V)
	s.FinalMeanGap = meanPairwiseGap(final.P)

	var clipped, total int
	for _, st := range result.States {
		n := st.N()
		for i := 0; i < n; i++ {
			total++
			if floats.Norm(st.A.RawRowView(i), 2) >= aMax*(1-flock.Epsilon) {
				clipped++
			}
		}
	}
	if total > 0 {
		s.ClipRate = float64(clipped) / float64(total)
	}
	return s
}

func meanRowNorm(m *mat.Dense) float64 {
	n, _ := m.Dims()
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += floats.Norm(m.RawRowView(i), 2)
	}
	return sum / float64(n)
}

func meanPairwiseGap(p *mat.Dense) float64 {
	n, _ := p.Dims()
	if n < 2 {
		return 0
	}
	var sum float64
	var count int
	for i := 0; i < n; i++ {
		pi := p.RawRowView(i)
		for j := i + 1; j < n; j++ {
			pj := p.RawRowView(j)
			sum += floats.Distance(pi, pj, 2)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
