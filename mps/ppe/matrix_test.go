package ppe

import (
	"testing"

	"mpsfluid/mps"

	"github.com/stretchr/testify/require"
)

func lattice(n int, l0 float64) *mps.ParticleSystem {
	ps := mps.NewParticleSystem(2, n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			ps.Add(mps.Particle{Pos: mps.Vec{float64(i) * l0, float64(j) * l0, 0}, Kind: mps.Fluid})
		}
	}
	return ps
}

func assembledLattice(t *testing.T, n int) (*mps.ParticleSystem, *System) {
	t.Helper()
	l0 := 0.025
	ps := lattice(n, l0)
	params := mps.DefaultParameters()
	params.ParticleDistance = l0
	require.NoError(t, ps.CalcInitialParams(params))

	kernel := mps.NewKernel(params.ReLap(), l0)
	nl := mps.NewNeighborList(len(ps.Particles), 64)
	require.NoError(t, mps.BruteForceSearch(ps, params.ReLap(), nl))
	mps.NumberDensity(ps, nl, mps.NewKernel(params.ReN(), l0))

	sys := Assemble(ps, nl, kernel, params.Density, params.Dt, params.Relaxation, DensityRHS{})
	return ps, sys
}

func TestAssembleProducesSymmetricMatrix(t *testing.T) {
	_, sys := assembledLattice(t, 4)
	require.Greater(t, sys.A.N(), 0)
	require.True(t, sys.A.IsSymmetric(1e-9))
}

func TestAssembleIsWeaklyDiagonallyDominant(t *testing.T) {
	_, sys := assembledLattice(t, 4)
	n := sys.A.N()
	for i := 0; i < n; i++ {
		var offDiagSum float64
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			v := sys.A.At(i, j)
			if v < 0 {
				v = -v
			}
			offDiagSum += v
		}
		require.GreaterOrEqual(t, sys.A.At(i, i)+1e-9, offDiagSum, "row %d must be weakly diagonally dominant", i)
	}
}

func TestAssembleSkipsSurfaceRows(t *testing.T) {
	ps, sys := assembledLattice(t, 4)
	for _, i := range sys.RowToParticle {
		require.False(t, ps.Particles[i].OnSurface)
		require.Equal(t, mps.Fluid, ps.Particles[i].Kind)
	}
}

func TestWritePressureZerosNonInteriorRows(t *testing.T) {
	ps, sys := assembledLattice(t, 3)
	x := make([]float64, sys.A.N())
	for i := range x {
		x[i] = float64(i + 1)
	}
	WritePressure(ps, sys, x)

	seen := make(map[int]bool)
	for row, i := range sys.RowToParticle {
		require.Equal(t, x[row], ps.Particles[i].Pressure)
		seen[i] = true
	}
	for i := range ps.Particles {
		if !seen[i] {
			require.Equal(t, 0.0, ps.Particles[i].Pressure)
		}
	}
}

func TestClampNegativePressureZeroesOnlyNegative(t *testing.T) {
	ps := mps.NewParticleSystem(2, 2)
	ps.Add(mps.Particle{Kind: mps.Fluid, Pressure: -5})
	ps.Add(mps.Particle{Kind: mps.Fluid, Pressure: 3})
	ClampNegativePressure(ps)
	require.Equal(t, 0.0, ps.Particles[0].Pressure)
	require.Equal(t, 3.0, ps.Particles[1].Pressure)
}
