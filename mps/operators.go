package mps

import "math"

// NumberDensity computes n_i = sum_{j in N(i)} w(|r_ij|, re) for every
// particle and writes it to Particle.N. All particles are evaluated (not
// just fluid) since the value is a diagnostic for walls/ghosts, but the sum
// itself already only ever ranges over neighbours the search populated
// (which never include Ghost).
func NumberDensity(ps *ParticleSystem, nl *NeighborList, kernel Kernel) {
	ParallelFor(0, len(ps.Particles), func(i int) {
		p := &ps.Particles[i]
		var n float64
		for _, j := range nl.Neighbors(i) {
			r := p.Pos.Sub(ps.Particles[j].Pos).Norm()
			n += kernel.Weight(r)
		}
		p.N = n
	})
}

// Viscosity adds the Laplacian-of-velocity term to the acceleration of every
// fluid particle:
//
//	acc_i += nu * (2d / (n0*lambda)) * sum_j (u_j - u_i) * w(|r_ij|, re_lap)
func Viscosity(ps *ParticleSystem, nl *NeighborList, kernel Kernel, nu float64) {
	d := float64(ps.Dim)
	coeff := nu * (2 * d) / (ps.N0 * ps.Lambda)
	ParallelFor(0, len(ps.Particles), func(i int) {
		p := &ps.Particles[i]
		if p.Kind != Fluid {
			return
		}
		neighbors := nl.Neighbors(i)
		if len(neighbors) == 0 {
			return // no contribution; avoids 0*coeff turning into NaN when n0 is 0
		}
		var sum Vec
		for _, j := range neighbors {
			q := &ps.Particles[j]
			r := p.Pos.Sub(q.Pos).Norm()
			w := kernel.Weight(r)
			sum = sum.Add(q.Vel.Sub(p.Vel).Scale(w))
		}
		p.Acc = p.Acc.Add(sum.Scale(coeff))
	})
}

// PressureGradient overwrites the acceleration of every fluid particle with
// the pressure-gradient term, including the tensile-instability stabiliser
// that subtracts the local minimum pressure before weighting:
//
//	p_min_i = min(p_i, min_j p_j)
//	acc_i   = -(d/n0) * (1/rho) * sum_j [(p_j - p_min_i)/|r_ij|^2] * r_ij * w(|r_ij|, re_lap)
//
// Pairs with |r_ij|^2 < 1e-20 are skipped.
func PressureGradient(ps *ParticleSystem, nl *NeighborList, kernel Kernel, rho float64) {
	d := float64(ps.Dim)
	gradCoeff := d / ps.N0
	ParallelFor(0, len(ps.Particles), func(i int) {
		p := &ps.Particles[i]
		if p.Kind != Fluid {
			return
		}
		neighbors := nl.Neighbors(i)
		if len(neighbors) == 0 {
			p.Acc = Vec{} // no contribution; avoids 0*coeff turning into NaN when n0 is 0
			return
		}

		pMin := p.Pressure
		for _, j := range neighbors {
			if ps.Particles[j].Pressure < pMin {
				pMin = ps.Particles[j].Pressure
			}
		}

		var sum Vec
		for _, j := range neighbors {
			q := &ps.Particles[j]
			rij := q.Pos.Sub(p.Pos)
			rSq := rij.NormSq()
			if rSq < 1e-20 {
				continue
			}
			w := kernel.Weight(math.Sqrt(rSq))
			factor := (q.Pressure - pMin) / rSq * w
			sum = sum.Add(rij.Scale(factor))
		}
		p.Acc = sum.Scale(-gradCoeff / rho)
	})
}

// Collision applies the short-range symmetric impulse of §4.4 to every
// mutually-approaching fluid pair within collisionDist. Run sequentially:
// unlike the other operators it writes two rows per interaction (v_i and
// v_j), so it does not have the single-writer-per-row property the
// concurrency model requires for safe parallel execution.
func Collision(ps *ParticleSystem, nl *NeighborList, collisionDist, restitution float64) {
	collisionSq := collisionDist * collisionDist
	n := len(ps.Particles)
	for i := 0; i < n; i++ {
		pi := &ps.Particles[i]
		if pi.Kind != Fluid {
			continue
		}
		for _, j := range nl.Neighbors(i) {
			pj := &ps.Particles[j]
			if pj.Kind == Fluid && j <= i {
				continue // each fluid-fluid pair handled once, from the lower index; wall pairs always fire
			}
			rij := pi.Pos.Sub(pj.Pos)
			distSq := rij.NormSq()
			if distSq >= collisionSq || distSq < 1e-20 {
				continue
			}
			dist := math.Sqrt(distSq)
			normal := rij.Scale(1 / dist)
			relVel := pi.Vel.Sub(pj.Vel)
			vn := relVel.Dot(normal)
			if vn >= 0 {
				continue // separating or stationary, no collision
			}
			// normal points from j to i (r_ij = pos_i - pos_j); the impulse
			// that arrests the approach therefore subtracts from i and adds
			// to j (verified against the two-particle worked example: heads
			// (0,0)/v=(1,0) and (0.01,0)/v=(-1,0), e=0.2 -> v_i=-0.2, v_j=0.2).
			delta := normal.Scale(0.5 * (1 + restitution) * vn)
			pi.Vel = pi.Vel.Sub(delta)
			if pj.Kind == Fluid {
				pj.Vel = pj.Vel.Add(delta)
			}
		}
	}
}
