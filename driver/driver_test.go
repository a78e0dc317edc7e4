package driver

import (
	"testing"

	"mpsfluid/mps"

	"github.com/stretchr/testify/require"
)

// TestSingleParticleFreeFall exercises the degenerate n0=0 path end to end:
// one fluid particle with no neighbours ever, under gravity only. Viscosity
// and pressure-gradient contribute nothing (no neighbours), so velocity
// after N steps of symplectic predictor/corrector integration is exactly
// N * g * dt; the corrector's dt^2 term never fires since acc_p is zero.
func TestSingleParticleFreeFall(t *testing.T) {
	params := mps.DefaultParameters()
	params.DomainMin = mps.Vec{-10, -10, 0}
	params.DomainMax = mps.Vec{10, 10, 0}
	params.Dt = 5e-4

	ps := mps.NewParticleSystem(2, 1)
	ps.Add(mps.Particle{Pos: mps.Vec{0, 0, 0}, Kind: mps.Fluid})

	sim, err := NewSimulation(ps, params)
	require.NoError(t, err)

	const steps = 1000
	for i := 0; i < steps; i++ {
		require.NoError(t, sim.Step())
	}

	want := float64(steps) * params.Gravity[1] * params.Dt
	require.InDelta(t, want, ps.Particles[0].Vel[1], 1e-9)
	require.False(t, ps.Particles[0].Pos.HasNaN())
	require.Equal(t, mps.Fluid, ps.Particles[0].Kind, "a particle falling inside a generous domain must never retire")
}

// TestDamBreakMassConservationAndBounds drives a small 2D dam-break for a
// handful of steps and checks the invariants named independently of any
// specific trajectory: fluid count never increases, no particle position or
// velocity goes NaN, and every fluid particle stays inside the wall clamp box
// [domain_min+l0/2, domain_max-l0/2] on x and above domain_min+l0/2 on y
// (the top face is exempt).
func TestDamBreakMassConservationAndBounds(t *testing.T) {
	params := mps.DefaultParameters()
	params.ParticleDistance = 0.05
	params.DomainMin = mps.Vec{0, 0, 0}
	params.DomainMax = mps.Vec{0.6, 0.6, 0}
	params.Dt = 1e-3
	params.MaxNeighbors = 64

	ps := mps.NewParticleSystem(2, 0)
	l0 := params.ParticleDistance
	for j := 0; j < 6; j++ {
		for i := 0; i < 4; i++ {
			ps.Add(mps.Particle{Pos: mps.Vec{float64(i) * l0, float64(j) * l0, 0}, Kind: mps.Fluid})
		}
	}
	for layer := 1; layer <= params.WallLayers; layer++ {
		for i := -2; i < 14; i++ {
			ps.Add(mps.Particle{Pos: mps.Vec{float64(i) * l0, -float64(layer) * l0, 0}, Kind: mps.Wall})
		}
	}
	for layer := 0; layer < params.WallLayers; layer++ {
		for j := -2; j < 14; j++ {
			ps.Add(mps.Particle{Pos: mps.Vec{-float64(layer+1) * l0, float64(j) * l0, 0}, Kind: mps.Wall})
			ps.Add(mps.Particle{Pos: mps.Vec{params.DomainMax[0] + float64(layer+1)*l0, float64(j) * l0, 0}, Kind: mps.Wall})
		}
	}

	sim, err := NewSimulation(ps, params)
	require.NoError(t, err)

	fluidBefore := ps.FluidCount()
	for step := 0; step < 20; step++ {
		require.NoError(t, sim.Step())
		require.LessOrEqual(t, ps.FluidCount(), fluidBefore)
		for i := range ps.Particles {
			p := &ps.Particles[i]
			require.False(t, p.Pos.HasNaN(), "step %d particle %d position went NaN", step, i)
			require.False(t, p.Vel.HasNaN(), "step %d particle %d velocity went NaN", step, i)
			if p.Kind == mps.Fluid {
				require.GreaterOrEqual(t, p.Pos[0], params.DomainMin[0]+l0/2, "step %d particle %d crossed the left wall", step, i)
				require.LessOrEqual(t, p.Pos[0], params.DomainMax[0]-l0/2, "step %d particle %d crossed the right wall", step, i)
				require.GreaterOrEqual(t, p.Pos[1], params.DomainMin[1]+l0/2, "step %d particle %d crossed the floor", step, i)
			}
		}
	}
}

func TestRunEmitsSnapshotsAtInterval(t *testing.T) {
	params := mps.DefaultParameters()
	params.DomainMin = mps.Vec{-10, -10, 0}
	params.DomainMax = mps.Vec{10, 10, 0}
	params.Dt = 0.1
	params.TEnd = 0.5
	params.OutputInterval = 2

	ps := mps.NewParticleSystem(2, 1)
	ps.Add(mps.Particle{Pos: mps.Vec{0, 0, 0}, Kind: mps.Fluid})

	sim, err := NewSimulation(ps, params)
	require.NoError(t, err)

	sink := &recordingSink{}
	require.NoError(t, sim.Run(sink))

	// step 0 plus every 2nd of 5 total steps (2, 4) -> three writes.
	require.Equal(t, []int{0, 2, 4}, sink.steps)
}

type recordingSink struct {
	steps []int
}

func (s *recordingSink) Write(step int, ps *mps.ParticleSystem) error {
	s.steps = append(s.steps, step)
	return nil
}
