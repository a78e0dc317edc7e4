package ppe

import (
	"mpsfluid/mps"

	"gonum.org/v1/gonum/floats"
)

// diagEpsilon is the floor sqrtPositive applies to an IC(0) diagonal: a
// value at or below it gives L_kk = diagEpsilon instead of a square root.
// The "diagonal-saving heuristic" of §4.6 (a computed diagonal <= 0 falls
// back to the original A_kk) is applied in Factorize before this floor.
const diagEpsilon = 1e-10

// ICFactor is the IC(0) incomplete Cholesky factor L, dense but only ever
// written at positions where A's sparsity pattern is nonzero (§9 "Two
// IC(0) variants": fill positions where A_ik = 0 are skipped exactly, so
// ICCG agrees bit-for-bit with the source on structured inputs).
type ICFactor struct {
	n      int
	L      *Matrix
	nonzero func(i, j int) bool
}

// Factorize computes L such that L L^T approximates A, preserving A's
// sparsity pattern.
func Factorize(A *Matrix) *ICFactor {
	n := A.N()
	nz := make([][]bool, n)
	for i := 0; i < n; i++ {
		nz[i] = make([]bool, n)
		for j := 0; j < n; j++ {
			nz[i][j] = A.At(i, j) != 0
		}
	}
	L := NewMatrix(n)

	for k := 0; k < n; k++ {
		var sum float64
		for j := 0; j < k; j++ {
			if nz[k][j] {
				lkj := L.At(k, j)
				sum += lkj * lkj
			}
		}
		diag := A.At(k, k) - sum
		if diag <= 0 {
			diag = A.At(k, k)
		}
		Lkk := sqrtPositive(diag)
		L.Set(k, k, Lkk)

		for i := k + 1; i < n; i++ {
			if !nz[i][k] {
				continue
			}
			var s float64
			for j := 0; j < k; j++ {
				if nz[i][j] && nz[k][j] {
					s += L.At(i, j) * L.At(k, j)
				}
			}
			if Lkk == 0 {
				continue
			}
			L.Set(i, k, (A.At(i, k)-s)/Lkk)
		}
	}

	return &ICFactor{n: n, L: L, nonzero: func(i, j int) bool { return nz[i][j] }}
}

func sqrtPositive(v float64) float64 {
	if v <= diagEpsilon {
		return diagEpsilon
	}
	return sqrtSafe(v)
}

// Solve applies forward then backward substitution: L y = r, then L^T z = y.
func (f *ICFactor) Solve(r []float64) []float64 {
	n := f.n
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := r[i]
		for j := 0; j < i; j++ {
			sum -= f.L.At(i, j) * y[j]
		}
		y[i] = sum / f.L.At(i, i)
	}
	z := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < n; j++ {
			sum -= f.L.At(j, i) * z[j]
		}
		z[i] = sum / f.L.At(i, i)
	}
	return z
}

// SolveICCG runs preconditioned CG: z = M^-1 r via the IC(0) factor, with
// rz = dot(r,z) replacing dot(r,r) in the recurrence.
func SolveICCG(A *Matrix, b []float64, maxIter int, tol float64) ([]float64, error) {
	n := len(b)
	x := make([]float64, n)
	if n == 0 {
		return x, nil
	}
	factor := Factorize(A)

	r := append([]float64(nil), b...)
	z := factor.Solve(r)
	p := append([]float64(nil), z...)
	ap := make([]float64, n)

	rz := floats.Dot(r, z)
	if sqrtSafe(floats.Dot(r, r)) < tol {
		return x, nil
	}

	for iter := 0; iter < maxIter; iter++ {
		A.MulVec(p, ap)
		pAp := floats.Dot(p, ap)
		if abs(pAp) < stallGuard {
			return x, &mps.SolverStalled{Iteration: iter, Residual: sqrtSafe(floats.Dot(r, r))}
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		if sqrtSafe(floats.Dot(r, r)) < tol {
			return x, nil
		}

		z = factor.Solve(r)
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
		rz = rzNew
	}
	return x, nil
}

// Solve dispatches to CG or ICCG per Parameters.SolverType.
func Solve(A *Matrix, b []float64, solver mps.SolverType, maxIter int, tol float64) ([]float64, error) {
	if solver == mps.SolverICCG {
		return SolveICCG(A, b, maxIter, tol)
	}
	return SolveCG(A, b, maxIter, tol)
}
