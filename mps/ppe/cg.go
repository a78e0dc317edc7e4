package ppe

import (
	"math"
	"mpsfluid/mps"

	"gonum.org/v1/gonum/floats"
)

// stallGuard is the |p^T A p| threshold below which CG/ICCG cannot safely
// divide; the source aborts at this same 1e-30.
const stallGuard = 1e-30

// SolveCG runs the standard three-term conjugate-gradient recurrence:
// x=0, r=b, p=b; stop when ||r|| < tol or after maxIter. Returns the
// solution and, if the solver stalled, a *mps.SolverStalled describing
// where — the caller (the driver) treats this as non-fatal per §7 and
// proceeds with the last iterate.
func SolveCG(A *Matrix, b []float64, maxIter int, tol float64) ([]float64, error) {
	n := len(b)
	x := make([]float64, n)
	if n == 0 {
		return x, nil
	}
	r := append([]float64(nil), b...)
	p := append([]float64(nil), b...)
	ap := make([]float64, n)

	rr := floats.Dot(r, r)
	if sqrtSafe(rr) < tol {
		return x, nil
	}

	for iter := 0; iter < maxIter; iter++ {
		A.MulVec(p, ap)
		pAp := floats.Dot(p, ap)
		if abs(pAp) < stallGuard {
			return x, &mps.SolverStalled{Iteration: iter, Residual: sqrtSafe(rr)}
		}
		alpha := rr / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		rrNew := floats.Dot(r, r)
		if sqrtSafe(rrNew) < tol {
			return x, nil
		}
		beta := rrNew / rr
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
		rr = rrNew
	}
	return x, nil
}

func sqrtSafe(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
