package flock

import "gonum.org/v1/gonum/mat"

// Trajectories is the egress repacking of an iterations-major state
// history into per-particle (and per-predator) trajectories, the
// shape a rendering/animation front-end consumes: H snapshots, N
// particles, (H,d) per particle.
type Trajectories struct {
	Particles []*mat.Dense // N entries, each (H,d)
	Predators []*mat.Dense // M entries, each (H,d)

	// Urgencies, when the run captured urgency vectors, holds one
	// (K,H,d) trajectory per particle, represented as K (H,d)
	// matrices: [cohesion, personalSpace, predatorEscape].
	Urgencies [][3]*mat.Dense
}

// Repack transposes states (iterations-major) into per-particle and
// per-predator trajectories.
func Repack(result *RunResult) Trajectories {
	h := len(result.States)
	if h == 0 {
		return Trajectories{}
	}
	n := result.States[0].N()
	m := result.States[0].M()
	d := result.States[0].D()

	out := Trajectories{
		Particles: make([]*mat.Dense, n),
		Predators: make([]*mat.Dense, m),
	}
	for i := 0; i < n; i++ {
		traj := mat.NewDense(h, d, nil)
		for t, s := range result.States {
			row := traj.RawRowView(t)
			copy(row, s.P.RawRowView(i))
		}
		out.Particles[i] = traj
	}
	for i := 0; i < m; i++ {
		traj := mat.NewDense(h, d, nil)
		for t, s := range result.States {
			row := traj.RawRowView(t)
			copy(row, s.PredP.RawRowView(i))
		}
		out.Predators[i] = traj
	}

	if len(result.Urgencies) == len(result.States) && len(result.Urgencies) > 0 {
		out.Urgencies = make([][3]*mat.Dense, n)
		for i := 0; i < n; i++ {
			u1 := mat.NewDense(h, d, nil)
			u2 := mat.NewDense(h, d, nil)
			u3 := mat.NewDense(h, d, nil)
			for t, snap := range result.Urgencies {
				copy(u1.RawRowView(t), snap.Cohesion.RawRowView(i))
				copy(u2.RawRowView(t), snap.PersonalSpace.RawRowView(i))
				copy(u3.RawRowView(t), snap.PredatorEscape.RawRowView(i))
			}
			out.Urgencies[i] = [3]*mat.Dense{u1, u2, u3}
		}
	}

	return out
}
