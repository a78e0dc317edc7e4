package mps

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollisionTwoApproachingParticles(t *testing.T) {
	l0 := 0.025
	ps := NewParticleSystem(2, 2)
	ps.Add(Particle{Pos: Vec{0, 0, 0}, Vel: Vec{1, 0, 0}, Kind: Fluid})
	ps.Add(Particle{Pos: Vec{0.01, 0, 0}, Vel: Vec{-1, 0, 0}, Kind: Fluid})

	nl := NewNeighborList(2, 8)
	require.NoError(t, BruteForceSearch(ps, 1.0, nl))

	Collision(ps, nl, 0.5*l0, 0.2)

	require.InDelta(t, -0.2, ps.Particles[0].Vel[0], 1e-9)
	require.InDelta(t, 0.2, ps.Particles[1].Vel[0], 1e-9)
}

func TestCollisionIgnoresSeparatingPairs(t *testing.T) {
	ps := NewParticleSystem(2, 2)
	ps.Add(Particle{Pos: Vec{0, 0, 0}, Vel: Vec{-1, 0, 0}, Kind: Fluid})
	ps.Add(Particle{Pos: Vec{0.01, 0, 0}, Vel: Vec{1, 0, 0}, Kind: Fluid})

	nl := NewNeighborList(2, 8)
	require.NoError(t, BruteForceSearch(ps, 1.0, nl))

	Collision(ps, nl, 0.0125, 0.2)

	require.Equal(t, -1.0, ps.Particles[0].Vel[0])
	require.Equal(t, 1.0, ps.Particles[1].Vel[0])
}

func TestNumberDensityIsolatedParticleIsZero(t *testing.T) {
	ps := NewParticleSystem(2, 1)
	ps.Add(Particle{Pos: Vec{0, 0, 0}, Kind: Fluid})
	nl := NewNeighborList(1, 8)
	require.NoError(t, BruteForceSearch(ps, 1.0, nl))

	NumberDensity(ps, nl, NewKernel(1.0, 0.025))
	require.Equal(t, 0.0, ps.Particles[0].N)
}

func TestViscosityAndPressureGradientNoNeighborsNoNaN(t *testing.T) {
	ps := NewParticleSystem(2, 1)
	ps.Add(Particle{Pos: Vec{0, 0, 0}, Kind: Fluid})
	nl := NewNeighborList(1, 8)
	require.NoError(t, BruteForceSearch(ps, 1.0, nl))

	// n0=0, lambda undefined: this must not poison acceleration with NaN/Inf.
	ps.N0 = 0
	ps.Lambda = 0

	Viscosity(ps, nl, NewKernel(1.0, 0.025), 1e-6)
	require.False(t, math.IsNaN(ps.Particles[0].Acc[0]))
	require.False(t, math.IsInf(ps.Particles[0].Acc[0], 0))

	PressureGradient(ps, nl, NewKernel(1.0, 0.025), 1000)
	require.False(t, math.IsNaN(ps.Particles[0].Acc[0]))
	require.False(t, math.IsInf(ps.Particles[0].Acc[0], 0))
}

func TestPressureGradientPushesAwayFromHigherPressureNeighbor(t *testing.T) {
	ps := NewParticleSystem(2, 2)
	ps.Add(Particle{Pos: Vec{0, 0, 0}, Pressure: 0, Kind: Fluid})
	ps.Add(Particle{Pos: Vec{1, 0, 0}, Pressure: 10, Kind: Fluid})
	ps.N0 = 10 // isolated-operator test; bypasses CalcInitialParams

	nl := NewNeighborList(2, 8)
	require.NoError(t, BruteForceSearch(ps, 2.0, nl))

	PressureGradient(ps, nl, NewKernel(2.0, 0.025), 1000)

	require.Less(t, ps.Particles[0].Acc[0], 0.0, "particle at lower pressure must accelerate away from the higher-pressure neighbor")
}
