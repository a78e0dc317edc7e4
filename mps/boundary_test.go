package mps

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyWallBoundaryZeroesWallAndGhost(t *testing.T) {
	ps := NewParticleSystem(2, 3)
	ps.Add(Particle{Vel: Vec{1, 1, 0}, Acc: Vec{1, 1, 0}, Kind: Fluid})
	ps.Add(Particle{Vel: Vec{1, 1, 0}, Acc: Vec{1, 1, 0}, Kind: Wall})
	ps.Add(Particle{Vel: Vec{1, 1, 0}, Acc: Vec{1, 1, 0}, Kind: Ghost})

	ApplyWallBoundary(ps)

	require.Equal(t, Vec{1, 1, 0}, ps.Particles[0].Vel, "fluid particles are untouched")
	require.Equal(t, Vec{}, ps.Particles[1].Vel)
	require.Equal(t, Vec{}, ps.Particles[1].Acc)
	require.Equal(t, Vec{}, ps.Particles[2].Vel)
	require.Equal(t, Vec{}, ps.Particles[2].Acc)
}

func TestClampToWallsTopFaceExempt(t *testing.T) {
	params := DefaultParameters()
	params.DomainMin = Vec{0, 0, 0}
	params.DomainMax = Vec{1, 1, 0}
	params.ParticleDistance = 0.02
	params.WallRestitution = 0.5

	ps := NewParticleSystem(2, 1)
	// above the top face: must NOT be clamped, free surface is allowed to
	// exceed domain_max on the y axis.
	ps.Add(Particle{Pos: Vec{0.5, 1.2, 0}, Vel: Vec{0, 1, 0}, Kind: Fluid})
	ClampToWalls(ps, params)
	require.Equal(t, 1.2, ps.Particles[0].Pos[1])
	require.Equal(t, 1.0, ps.Particles[0].Vel[1])
}

func TestClampToWallsFloorAndSides(t *testing.T) {
	params := DefaultParameters()
	params.DomainMin = Vec{0, 0, 0}
	params.DomainMax = Vec{1, 1, 0}
	params.ParticleDistance = 0.02
	params.WallRestitution = 0.5

	ps := NewParticleSystem(2, 2)
	// below the floor: must be clamped and reflected.
	ps.Add(Particle{Pos: Vec{0.5, -0.1, 0}, Vel: Vec{0, -2, 0}, Kind: Fluid})
	// past the right wall: must be clamped and reflected.
	ps.Add(Particle{Pos: Vec{1.2, 0.5, 0}, Vel: Vec{3, 0, 0}, Kind: Fluid})

	ClampToWalls(ps, params)

	half := params.ParticleDistance / 2
	require.InDelta(t, half, ps.Particles[0].Pos[1], 1e-12)
	require.InDelta(t, 1.0, ps.Particles[0].Vel[1], 1e-12)

	require.InDelta(t, 1-half, ps.Particles[1].Pos[0], 1e-12)
	require.InDelta(t, -1.5, ps.Particles[1].Vel[0], 1e-12)
}

func TestClampToWallsIgnoresNonFluid(t *testing.T) {
	params := DefaultParameters()
	params.DomainMin = Vec{0, 0, 0}
	params.DomainMax = Vec{1, 1, 0}

	ps := NewParticleSystem(2, 1)
	ps.Add(Particle{Pos: Vec{-1, -1, 0}, Vel: Vec{-1, -1, 0}, Kind: Wall})
	ClampToWalls(ps, params)
	require.Equal(t, Vec{-1, -1, 0}, ps.Particles[0].Pos)
}

func TestApplyWallRepulsionPushesFluidAwayFromWall(t *testing.T) {
	l0 := 0.025
	ps := NewParticleSystem(2, 2)
	ps.Add(Particle{Pos: Vec{0, 0.01, 0}, Kind: Fluid})
	ps.Add(Particle{Pos: Vec{0, 0, 0}, Kind: Wall})

	nl := NewNeighborList(2, 8)
	require.NoError(t, BruteForceSearch(ps, 1.0, nl))

	ApplyWallRepulsion(ps, nl, l0, 10.0, 1e-3)

	require.Greater(t, ps.Particles[0].Vel[1], 0.0, "fluid must be pushed away from the wall along +y")
	require.Equal(t, Vec{}, ps.Particles[1].Vel, "wall velocity is never modified by repulsion")
}

func TestApplyWallRepulsionNoopWhenCoeffZero(t *testing.T) {
	ps := NewParticleSystem(2, 2)
	ps.Add(Particle{Pos: Vec{0, 0.01, 0}, Kind: Fluid})
	ps.Add(Particle{Pos: Vec{0, 0, 0}, Kind: Wall})
	nl := NewNeighborList(2, 8)
	require.NoError(t, BruteForceSearch(ps, 1.0, nl))

	ApplyWallRepulsion(ps, nl, 0.025, 0, 1e-3)
	require.Equal(t, Vec{}, ps.Particles[0].Vel)
}

func TestRemoveOutOfBoundsRetiresToGhost(t *testing.T) {
	params := DefaultParameters()
	params.DomainMin = Vec{0, 0, 0}
	params.DomainMax = Vec{1, 1, 0}
	params.ParticleDistance = 0.02
	params.WallLayers = 2

	ps := NewParticleSystem(2, 2)
	ps.Add(Particle{Pos: Vec{0.5, 0.5, 0}, Vel: Vec{1, 0, 0}, Kind: Fluid}) // inside
	ps.Add(Particle{Pos: Vec{100, 100, 0}, Vel: Vec{1, 0, 0}, Kind: Fluid}) // far out

	events := RemoveOutOfBounds(ps, params)

	require.Len(t, events, 1)
	require.Equal(t, 1, events[0].ParticleIndex)
	require.Equal(t, Fluid, ps.Particles[0].Kind)
	require.Equal(t, Ghost, ps.Particles[1].Kind)
	require.Equal(t, Vec{}, ps.Particles[1].Vel)
}

func TestRemoveOutOfBoundsCatchesNaN(t *testing.T) {
	params := DefaultParameters()
	params.DomainMin = Vec{0, 0, 0}
	params.DomainMax = Vec{1, 1, 0}

	ps := NewParticleSystem(2, 1)
	ps.Add(Particle{Pos: Vec{0.5, 0.5, 0}, Kind: Fluid})
	ps.Particles[0].Vel[0] = nan()

	events := RemoveOutOfBounds(ps, params)
	require.Len(t, events, 1)
	require.Equal(t, "nan", events[0].Cause)
	require.Equal(t, Ghost, ps.Particles[0].Kind)
}

func nan() float64 {
	var z float64
	return z / z
}
