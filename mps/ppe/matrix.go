// Package ppe assembles and solves the Pressure Poisson Equation: one
// symmetric positive-definite linear system per step, built from the
// current particle neighbourhoods, solved by CG or ICCG.
package ppe

import (
	"math"
	"mpsfluid/mps"
)

// Matrix is a dense symmetric matrix addressed by PPE row index (not
// particle index - see System.EqIndex). The source used O(n_eq^2) storage
// for the same reason: at the particle counts this core targets the dense
// representation is simpler to get bit-exact, and any representation
// satisfying "y <- A*x through this operator" is spec-conformant (SPEC_FULL.md
// §9 Design Notes).
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix allocates a zeroed n x n dense matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, data: make([]float64, n*n)}
}

func (m *Matrix) N() int { return m.n }

func (m *Matrix) At(i, j int) float64 { return m.data[i*m.n+j] }

func (m *Matrix) Set(i, j int, v float64) { m.data[i*m.n+j] = v }

func (m *Matrix) Add(i, j int, v float64) { m.data[i*m.n+j] += v }

// MulVec computes y <- A*x. CG/ICCG never touch m.data directly, only
// through this operator, so a future sparse Matrix can replace this one
// without changing the solvers. Parallelized over output rows: row i only
// ever writes y[i] and only reads x and its own row of m.data, so this holds
// the same single-writer-per-row discipline as the particle operators.
func (m *Matrix) MulVec(x, y []float64) {
	mps.ParallelFor(0, m.n, func(i int) {
		var sum float64
		row := m.data[i*m.n : i*m.n+m.n]
		for j, xj := range x {
			sum += row[j] * xj
		}
		y[i] = sum
	})
}

// IsSymmetric reports whether A[i][j] == A[j][i] within tol for every pair;
// used by tests exercising the §8 symmetry property, not by the solvers.
func (m *Matrix) IsSymmetric(tol float64) bool {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			d := m.At(i, j) - m.At(j, i)
			if d < 0 {
				d = -d
			}
			if d > tol {
				return false
			}
		}
	}
	return true
}

// System is the assembled linear system A x = b for the interior-fluid rows
// I, plus the mapping back to particle indices needed to write the solution
// to Particle.Pressure.
type System struct {
	A           *Matrix
	B           []float64
	RowToParticle []int // row -> particle index
	EqIndex     []int   // particle index -> row, or -1 if not interior
}

// Assemble builds the PPE system per §4.6. c = 2d/(n0*lambda) is the shared
// Laplacian-model coefficient; kernel must be the re_lap kernel.
func Assemble(ps *mps.ParticleSystem, nl *mps.NeighborList, kernel mps.Kernel, rho, dt, relaxation float64, rhs RHSPolicy) *System {
	n := len(ps.Particles)
	eqIndex := make([]int, n)
	for i := range eqIndex {
		eqIndex[i] = -1
	}
	rowToParticle := make([]int, 0, n)
	for i := range ps.Particles {
		p := &ps.Particles[i]
		if p.Kind == mps.Fluid && !p.OnSurface {
			eqIndex[i] = len(rowToParticle)
			rowToParticle = append(rowToParticle, i)
		}
	}

	nEq := len(rowToParticle)
	sys := &System{
		A:             NewMatrix(nEq),
		B:             make([]float64, nEq),
		RowToParticle: rowToParticle,
		EqIndex:       eqIndex,
	}
	if nEq == 0 {
		return sys
	}

	d := float64(ps.Dim)
	var c float64
	if ps.N0 > 0 && ps.Lambda != 0 && !math.IsNaN(ps.Lambda) {
		c = (2 * d) / (ps.N0 * ps.Lambda)
	}

	for row, i := range rowToParticle {
		p := &ps.Particles[i]
		var diagSum float64
		for _, j := range nl.Neighbors(i) {
			r := p.Pos.Sub(ps.Particles[j].Pos).Norm()
			w := kernel.Weight(r)
			diagSum += w
			if ej := eqIndex[j]; ej != -1 {
				sys.A.Add(row, ej, -c*w)
			}
		}
		sys.A.Set(row, row, sys.A.At(row, row)+c*diagSum)
		sys.B[row] = rhs.RHS(ps, i, rho, dt, relaxation)
	}
	return sys
}

// WritePressure writes the solved vector x back to Particle.Pressure for
// interior rows, zero for every other particle (§4.6 "write x back to
// pressure[i] for i in I; set pressure[i] = 0 for all other particles").
func WritePressure(ps *mps.ParticleSystem, sys *System, x []float64) {
	for i := range ps.Particles {
		ps.Particles[i].Pressure = 0
	}
	for row, i := range sys.RowToParticle {
		ps.Particles[i].Pressure = x[row]
	}
}

// ClampNegativePressure zeroes negative pressure on fluid particles; the
// optional post-step named in §4.6.
func ClampNegativePressure(ps *mps.ParticleSystem) {
	for i := range ps.Particles {
		p := &ps.Particles[i]
		if p.Kind == mps.Fluid && p.Pressure < 0 {
			p.Pressure = 0
		}
	}
}
